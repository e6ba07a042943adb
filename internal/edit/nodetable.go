package edit

import "context"

// node is one entry in a Transaction's working node-branch table,
// grounded on internal/protocol/session/outbox.go's EventOutbox: a
// mutex-guarded map keyed by a stable id, with Upsert/Remove/Get/List
// verbs — here keyed by node-branch id instead of event id, and carrying
// tree-shape fields (parent, name) instead of delivery-attempt fields.
type node struct {
	nbid   string
	parent string // "" only for the root
	name   string // "" only for the root
	kind   Kind
	content Content

	createdInTxn bool // minted by this edit, not present at BaseRev
	deleted      bool
}

// upsertNode installs n into the node table and (re)indexes it by
// current path, replacing any prior entry under that path.
func (t *Transaction) upsertNode(n *node) {
	t.nodes[n.nbid] = n
	t.pathIndex[t.relpathOf(n.nbid)] = n.nbid
	if n.parent != "" {
		children, ok := t.childIndex[n.parent]
		if !ok {
			children = make(map[string]string)
			t.childIndex[n.parent] = children
		}
		children[n.name] = n.nbid
	}
}

// removeFromParent detaches nbid from its parent's child index without
// deleting the node-branch itself (used by mv before re-parenting).
func (t *Transaction) removeFromParent(nbid string) {
	n, ok := t.nodes[nbid]
	if !ok || n.parent == "" {
		return
	}
	if children, ok := t.childIndex[n.parent]; ok {
		delete(children, n.name)
	}
	delete(t.pathIndex, t.relpathOf(nbid))
}

// markDeleted removes nbid and, recursively, every descendant from the
// live node table: each descendant is itself marked deleted.
func (t *Transaction) markDeleted(nbid string) {
	n, ok := t.nodes[nbid]
	if !ok || n.deleted {
		return
	}
	t.removeFromParent(nbid)
	n.deleted = true
	n.parent = ""
	for _, childID := range t.childrenOf(nbid) {
		t.markDeleted(childID)
	}
}

func (t *Transaction) childrenOf(nbid string) []string {
	children, ok := t.childIndex[nbid]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(children))
	for _, id := range children {
		out = append(out, id)
	}
	return out
}

func (t *Transaction) nameTaken(parent, name string) bool {
	children, ok := t.childIndex[parent]
	if !ok {
		return false
	}
	_, taken := children[name]
	return taken
}

// wouldCycle walks candidateParent's ancestor chain back to the root,
// loading any ancestor not yet known to the transaction from the
// repository by id, and reports whether nbid itself appears in that
// chain. A true result means reparenting nbid under candidateParent
// would make nbid its own ancestor, violating spec §4.3.2's "connected
// tree ... no cycles" invariant — callers must reject the reparent
// rather than call upsertNode, whose relpathOf walk would otherwise
// recurse forever across the cycle.
func (t *Transaction) wouldCycle(ctx context.Context, nbid, candidateParent string) (bool, error) {
	for cur := candidateParent; cur != ""; {
		if cur == nbid {
			return true, nil
		}
		n, ok := t.nodes[cur]
		if !ok {
			if err := t.loadByNbid(ctx, cur, t.BaseRev); err != nil {
				return false, err
			}
			n = t.nodes[cur]
		}
		cur = n.parent
	}
	return false, nil
}

// relpathOf walks parent pointers up to the root to build nbid's current
// repository-relative path. Used only to keep pathIndex consistent;
// callers on the hot path should prefer pathIndex lookups.
func (t *Transaction) relpathOf(nbid string) string {
	n, ok := t.nodes[nbid]
	if !ok || n.parent == "" {
		return ""
	}
	parentPath := t.relpathOf(n.parent)
	if parentPath == "" {
		return n.name
	}
	return parentPath + "/" + n.name
}
