package dispatch

import (
	"context"
	"sync"

	"github.com/danmuck/ratree/internal/wire"
)

// Handler executes one command's params against baton (the server-side
// state the loop was started with — a repository oracle, a session,
// whatever the caller wired in) and reports its outcome by writing a
// response with WriteCmdResponse/WriteCmdFailure on conn before
// returning. Returning a non-nil error that is not a *CmdErr aborts the
// whole connection; wrap business-logic failures with Fail.
type Handler func(ctx context.Context, conn *wire.Conn, arena *wire.Arena, params []wire.Item, baton any) error

// Entry is one registered command.
type Entry struct {
	Name    string
	Handler Handler
	// Terminate ends the dispatch loop after this command completes,
	// success or failure — used for a session's closing handshake.
	Terminate bool
}

// Table is a name-keyed command registry, grounded on the teacher's
// plugins.Register/Get/All (mutex-guarded map keyed by name). Unlike a
// plugin registry, entries are also kept in registration order so a
// server can list its capabilities deterministically.
type Table struct {
	mu      sync.RWMutex
	entries []Entry
	byName  map[string]int
}

// NewTable returns an empty command table.
func NewTable() *Table {
	return &Table{byName: make(map[string]int)}
}

// Register adds an entry for name. A name that is already registered
// keeps its first entry, so lookup behaves as a first-match-wins scan.
func (t *Table) Register(name string, h Handler, terminate bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry := Entry{Name: name, Handler: h, Terminate: terminate}
	if _, ok := t.byName[name]; ok {
		return
	}
	t.byName[name] = len(t.entries)
	t.entries = append(t.entries, entry)
}

// Lookup returns the entry registered for name.
func (t *Table) Lookup(name string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.byName[name]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Names returns the registered command names in registration order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.Name
	}
	return names
}
