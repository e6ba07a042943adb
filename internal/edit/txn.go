package edit

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Transaction is one open tree-edit against a RepositoryOracle,
// identified by its base revision and root node-branch id (spec §3,
// "Transaction model"). Every path-addressed and id-addressed op in
// ops_path.go/ops_id.go is a method on *Transaction.
type Transaction struct {
	mu sync.Mutex

	repo RepositoryOracle
	caps Capabilities

	BaseRev  int64
	RootNbid string

	nodes      map[string]*node
	pathIndex  map[string]string // current relpath -> nbid, txn-local nodes only
	childIndex map[string]map[string]string // parent nbid -> name -> child nbid

	putDone map[string]bool // nbid -> content already set once this edit (spec §4.3.1 put precondition)

	pendingChecks []sinceRevCheck // rebase obligations verified at Complete, not at op time

	terminal  bool
	committed bool
}

// NewTransaction opens a transaction against repo at baseRev, rooted at
// rootNbid, with caps advertised to the sender.
func NewTransaction(repo RepositoryOracle, caps Capabilities, baseRev int64, rootNbid string) *Transaction {
	t := &Transaction{
		repo:       repo,
		caps:       caps,
		BaseRev:    baseRev,
		RootNbid:   rootNbid,
		nodes:      make(map[string]*node),
		pathIndex:  make(map[string]string),
		childIndex: make(map[string]map[string]string),
		putDone:    make(map[string]bool),
	}
	t.nodes[rootNbid] = &node{nbid: rootNbid, kind: KindDir}
	t.pathIndex[""] = rootNbid
	return t
}

func newNbid() string {
	return uuid.NewString()
}

func splitPath(relpath string) (dir, base string) {
	clean := strings.Trim(path.Clean("/"+relpath), "/")
	if clean == "" || clean == "." {
		return "", ""
	}
	dir, base = path.Split(clean)
	return strings.TrimSuffix(dir, "/"), base
}

// resolveLoc resolves a path-addressed op's PegPath to the nbid it
// currently names in this transaction, tracing a committed peg forward
// (spec §4.3.1: "paths are traced forward to the current transaction by
// the receiver before each op is applied").
func (t *Transaction) resolveLoc(ctx context.Context, loc PegPath) (string, error) {
	if loc.Rev == CurrentTxn {
		nbid, ok := t.pathIndex[strings.Trim(loc.RelPath, "/")]
		if !ok {
			return "", fmt.Errorf("%w: %s not present in transaction", ErrUnknownNodeBranch, loc)
		}
		return nbid, nil
	}
	return t.ensureLoaded(ctx, loc)
}

// ensureLoaded materializes the committed node-branch at peg into the
// transaction's node table if it is not already known, recursively
// loading ancestor directories as needed.
func (t *Transaction) ensureLoaded(ctx context.Context, peg PegPath) (string, error) {
	relpath := strings.Trim(peg.RelPath, "/")
	if relpath == "" {
		return t.RootNbid, nil
	}
	if nbid, ok := t.pathIndex[relpath]; ok {
		return nbid, nil
	}
	nbid, err := t.repo.ResolvePeg(ctx, PegPath{Rev: peg.Rev, RelPath: relpath})
	if err != nil {
		return "", preconditionErr(PreSourceCommitted, err.Error())
	}
	if existing, ok := t.nodes[nbid]; ok && !existing.deleted {
		// Known by id but not yet path-indexed under this path (e.g.
		// it moved within the txn already); trust the live location.
		return nbid, nil
	}
	dir, base := splitPath(relpath)
	parentID, err := t.ensureLoaded(ctx, PegPath{Rev: peg.Rev, RelPath: dir})
	if err != nil {
		return "", err
	}
	content, err := t.repo.Content(ctx, PegPath{Rev: peg.Rev, RelPath: relpath})
	if err != nil {
		return "", fmt.Errorf("%w: loading %s: %v", ErrMalformedContent, relpath, err)
	}
	n := &node{nbid: nbid, parent: parentID, name: base, kind: content.Kind, content: content}
	t.upsertNode(n)
	return nbid, nil
}

// requireNotTerminal rejects any op after complete/abort (spec §4.3.4).
func (t *Transaction) requireNotTerminal() error {
	if t.terminal {
		return ErrTerminated
	}
	return nil
}

// Complete attempts to commit the transaction, returning the new
// revision number on success or ErrOutOfDate/ErrNameConflict on a
// rebase conflict (spec §4.3.4, §8 scenario 6).
func (t *Transaction) Complete(ctx context.Context) (int64, error) {
	t.mu.Lock()
	if err := t.requireNotTerminal(); err != nil {
		t.mu.Unlock()
		return 0, err
	}
	if err := t.checkTreeInvariants(); err != nil {
		t.mu.Unlock()
		return 0, err
	}
	if err := t.verifyPendingSinceRevs(ctx); err != nil {
		t.mu.Unlock()
		return 0, err
	}
	t.mu.Unlock()

	// Commit is called with the lock released: it calls back into
	// Nodes() to snapshot live state, and Transaction's lock is not
	// reentrant.
	rev, err := t.repo.Commit(ctx, t)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.terminal = true
	t.committed = true
	return rev, nil
}

// Abort discards the transaction; no further ops are accepted (spec
// §4.3.4).
func (t *Transaction) Abort(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireNotTerminal(); err != nil {
		return err
	}
	t.terminal = true
	return nil
}

// NodeView is a read-only snapshot of one node-branch's live state,
// exposed for a RepositoryOracle's Commit to persist.
type NodeView struct {
	Parent  string
	Name    string
	Content Content
	Deleted bool
}

// Nodes returns a snapshot of every node-branch currently known to the
// transaction, live or deleted.
func (t *Transaction) Nodes() map[string]NodeView {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]NodeView, len(t.nodes))
	for id, n := range t.nodes {
		out[id] = NodeView{Parent: n.parent, Name: n.name, Content: n.content, Deleted: n.deleted}
	}
	return out
}

// checkTreeInvariants re-checks sibling-name uniqueness under every live
// parent in the child index. It does not check that the tree is
// connected.
func (t *Transaction) checkTreeInvariants() error {
	for parent, children := range t.childIndex {
		if _, ok := t.nodes[parent]; !ok || t.nodes[parent].deleted {
			continue
		}
		seen := make(map[string]struct{}, len(children))
		for name := range children {
			if _, dup := seen[name]; dup {
				return fmt.Errorf("%w: duplicate sibling name %q under %s", ErrNameConflict, name, parent)
			}
			seen[name] = struct{}{}
		}
	}
	return nil
}
