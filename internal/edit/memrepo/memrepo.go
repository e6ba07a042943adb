// Package memrepo is a reference, in-memory edit.RepositoryOracle: each
// commit snapshots the whole tree by value, keyed by revision number.
// It exists so internal/edit's Transaction logic can be exercised and
// tested without a real durable backing store (spec's Non-goals exclude
// on-disk storage), grounded on internal/protocol/session/outbox.go's
// mutex-guarded map-by-id pattern.
package memrepo

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/danmuck/ratree/internal/edit"
)

type storedNode struct {
	parent  string
	name    string
	content edit.Content
}

type snapshot struct {
	nodes map[string]*storedNode // nbid -> node
	root  string
}

// Repo is an in-memory revision history. The zero value is not usable;
// construct with New.
type Repo struct {
	mu        sync.RWMutex
	revisions []snapshot // index 0 is revision 0
}

// New creates a Repo with an empty revision 0 rooted at rootNbid.
func New(rootNbid string) *Repo {
	return &Repo{
		revisions: []snapshot{{
			nodes: map[string]*storedNode{rootNbid: {}},
			root:  rootNbid,
		}},
	}
}

// RootNbid returns the identity of revision 0's root, for opening the
// first edit.Transaction.
func (r *Repo) RootNbid() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.revisions[0].root
}

func (r *Repo) at(rev int64) (snapshot, error) {
	if rev < 0 || int(rev) >= len(r.revisions) {
		return snapshot{}, fmt.Errorf("no such revision %d", rev)
	}
	return r.revisions[rev], nil
}

func (r *Repo) head() snapshot {
	return r.revisions[len(r.revisions)-1]
}

func (r *Repo) relpathOf(snap snapshot, nbid string) (string, bool) {
	n, ok := snap.nodes[nbid]
	if !ok {
		return "", false
	}
	if n.parent == "" {
		return "", true
	}
	parentPath, ok := r.relpathOf(snap, n.parent)
	if !ok {
		return "", false
	}
	if parentPath == "" {
		return n.name, true
	}
	return parentPath + "/" + n.name, true
}

// ResolvePeg implements edit.RepositoryOracle.
func (r *Repo) ResolvePeg(ctx context.Context, peg edit.PegPath) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, err := r.at(peg.Rev)
	if err != nil {
		return "", err
	}
	target := strings.Trim(path.Clean("/"+peg.RelPath), "/")
	if target == "." {
		target = ""
	}
	for nbid := range snap.nodes {
		if p, ok := r.relpathOf(snap, nbid); ok && p == target {
			return nbid, nil
		}
	}
	return "", fmt.Errorf("no such path %q at r%d", peg.RelPath, peg.Rev)
}

// ChangedSince implements edit.RepositoryOracle.
func (r *Repo) ChangedSince(ctx context.Context, nbid string, sinceRev int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	base, err := r.at(sinceRev)
	if err != nil {
		return false, err
	}
	head := r.head()
	baseNode, baseOK := base.nodes[nbid]
	headNode, headOK := head.nodes[nbid]
	if baseOK != headOK {
		return true, nil
	}
	if !baseOK {
		return false, nil
	}
	if baseNode.parent != headNode.parent || baseNode.name != headNode.name {
		return true, nil
	}
	bc, hc := baseNode.content, headNode.content
	if bc.Kind != hc.Kind || bc.Ref != hc.Ref || bc.HasChecksum != hc.HasChecksum ||
		bc.Checksum != hc.Checksum || !bytes.Equal(bc.Target, hc.Target) || len(bc.Props) != len(hc.Props) {
		return true, nil
	}
	for k, v := range bc.Props {
		if hv, ok := hc.Props[k]; !ok || !bytes.Equal(v, hv) {
			return true, nil
		}
	}
	return false, nil
}

// Content implements edit.RepositoryOracle.
func (r *Repo) Content(ctx context.Context, peg edit.PegPath) (edit.Content, error) {
	nbid, err := r.ResolvePeg(ctx, peg)
	if err != nil {
		return edit.Content{}, err
	}
	return r.ContentOf(ctx, nbid, peg.Rev)
}

// ContentOf implements edit.RepositoryOracle.
func (r *Repo) ContentOf(ctx context.Context, nbid string, rev int64) (edit.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, err := r.at(rev)
	if err != nil {
		return edit.Content{}, err
	}
	n, ok := snap.nodes[nbid]
	if !ok {
		return edit.Content{}, fmt.Errorf("no such node-branch %s at r%d", nbid, rev)
	}
	return n.content, nil
}

// Locate implements edit.RepositoryOracle.
func (r *Repo) Locate(ctx context.Context, nbid string, rev int64) (string, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, err := r.at(rev)
	if err != nil {
		return "", "", err
	}
	n, ok := snap.nodes[nbid]
	if !ok {
		return "", "", fmt.Errorf("no such node-branch %s at r%d", nbid, rev)
	}
	return n.parent, n.name, nil
}

// Children implements edit.RepositoryOracle.
func (r *Repo) Children(ctx context.Context, nbid string, rev int64) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, err := r.at(rev)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for id, n := range snap.nodes {
		if n.parent == nbid {
			out[n.name] = id
		}
	}
	return out, nil
}

// Head implements edit.RepositoryOracle.
func (r *Repo) Head(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.revisions) - 1), nil
}

// Commit implements edit.RepositoryOracle: it overlays txn's live node
// table onto a copy of the head snapshot, provided txn.BaseRev still
// matches head (a stricter, whole-tree version of the per-node §4.3.3
// rebase check, adequate for this reference oracle). Only node-branches
// the transaction actually touched are present in txn.Nodes(); anything
// else carries over from head untouched.
func (r *Repo) Commit(ctx context.Context, txn *edit.Transaction) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	headRev := int64(len(r.revisions) - 1)
	if txn.BaseRev != headRev {
		return 0, fmt.Errorf("%w: base revision %d is not head %d", edit.ErrOutOfDate, txn.BaseRev, headRev)
	}
	nodes := make(map[string]*storedNode, len(r.head().nodes))
	for nbid, n := range r.head().nodes {
		nodes[nbid] = &storedNode{parent: n.parent, name: n.name, content: n.content}
	}
	for nbid, n := range txn.Nodes() {
		if n.Deleted {
			delete(nodes, nbid)
			continue
		}
		nodes[nbid] = &storedNode{parent: n.Parent, name: n.Name, content: n.Content}
	}
	r.revisions = append(r.revisions, snapshot{nodes: nodes, root: txn.RootNbid})
	return headRev + 1, nil
}
