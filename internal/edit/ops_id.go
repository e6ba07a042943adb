package edit

import (
	"context"
	"fmt"
)

// Id-addressed ops (spec §4.3.2). Unlike the path-addressed style,
// callers assign or already know each node-branch's id; these ops are
// unordered/commutative as long as the final tree is valid, so none of
// them requires the others to have already run.

// Add creates a new node-branch under newParentNbid/name, with the
// caller-assigned identity localNbid.
func (t *Transaction) Add(ctx context.Context, localNbid string, kind Kind, newParentNbid, name string, content Content) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireNotTerminal(); err != nil {
		return err
	}
	if err := t.requireIdAddressed(); err != nil {
		return err
	}
	if !kind.valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedContent, kind)
	}
	if err := t.ensureIdKnown(ctx, newParentNbid); err != nil {
		return err
	}
	if t.nameTaken(newParentNbid, name) {
		return fmt.Errorf("%w: %s", ErrNameConflict, name)
	}
	t.upsertNode(&node{nbid: localNbid, parent: newParentNbid, name: name, kind: kind, content: content, createdInTxn: true})
	return nil
}

// CopyOne copies srcNbid (as it existed at srcRev, or the current
// transaction's final state when srcRev == CurrentTxn) to
// newParentNbid/name as a new, independently-addressable identity
// localNbid. Non-recursive: children are not copied.
func (t *Transaction) CopyOne(ctx context.Context, localNbid string, srcRev int64, srcNbid, newParentNbid, name string, content Content) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireNotTerminal(); err != nil {
		return err
	}
	if err := t.requireIdAddressed(); err != nil {
		return err
	}
	if srcRev == CurrentTxn && !t.caps.TxnSourcedCopy {
		return fmt.Errorf("%w: txn-sourced copy", ErrNotCapable)
	}
	src, err := t.sourceByNbid(ctx, srcNbid, srcRev)
	if err != nil {
		return err
	}
	if content.Kind == "" {
		content = src
	}
	if err := t.ensureIdKnown(ctx, newParentNbid); err != nil {
		return err
	}
	if t.nameTaken(newParentNbid, name) {
		return fmt.Errorf("%w: %s", ErrNameConflict, name)
	}
	t.upsertNode(&node{nbid: localNbid, parent: newParentNbid, name: name, kind: content.Kind, content: content, createdInTxn: true})
	return nil
}

// CopyTree recursively, immutably copies the subtree rooted at srcNbid
// (at srcRev) to newParentNbid/name. Receiver-minted identities; children
// are not individually addressable afterward.
func (t *Transaction) CopyTree(ctx context.Context, srcRev int64, srcNbid, newParentNbid, name string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireNotTerminal(); err != nil {
		return "", err
	}
	if err := t.requireIdAddressed(); err != nil {
		return "", err
	}
	if err := t.ensureIdKnown(ctx, newParentNbid); err != nil {
		return "", err
	}
	if t.nameTaken(newParentNbid, name) {
		return "", fmt.Errorf("%w: %s", ErrNameConflict, name)
	}
	return t.copySubtree(ctx, srcRev, srcNbid, newParentNbid, name)
}

func (t *Transaction) copySubtree(ctx context.Context, srcRev int64, srcNbid, newParent, name string) (string, error) {
	content, err := t.repo.ContentOf(ctx, srcNbid, srcRev)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownNodeBranch, err)
	}
	newID := newNbid()
	t.upsertNode(&node{nbid: newID, parent: newParent, name: name, kind: content.Kind, content: content, createdInTxn: true})
	children, err := t.repo.Children(ctx, srcNbid, srcRev)
	if err != nil {
		return "", err
	}
	for childName, childNbid := range children {
		if _, err := t.copySubtree(ctx, srcRev, childNbid, newID, childName); err != nil {
			return "", err
		}
	}
	return newID, nil
}

// sourceByNbid resolves srcNbid's content either from the live
// transaction state (srcRev == CurrentTxn) or from the repository at
// srcRev.
func (t *Transaction) sourceByNbid(ctx context.Context, nbid string, rev int64) (Content, error) {
	if rev == CurrentTxn {
		n, ok := t.nodes[nbid]
		if !ok || n.deleted {
			return Content{}, fmt.Errorf("%w: %s", ErrUnknownNodeBranch, nbid)
		}
		return n.content, nil
	}
	return t.repo.ContentOf(ctx, nbid, rev)
}

// Delete recursively deletes nbid, subject to the same rebase rule as
// mv/alter: nbid must be unchanged since sinceRev (spec §4.3.3).
func (t *Transaction) Delete(ctx context.Context, sinceRev int64, nbid string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireNotTerminal(); err != nil {
		return err
	}
	if err := t.requireIdAddressed(); err != nil {
		return err
	}
	t.recordSinceRev(nbid, sinceRev)
	if _, ok := t.nodes[nbid]; !ok {
		if err := t.loadByNbid(ctx, nbid, t.BaseRev); err != nil {
			return err
		}
	}
	t.markDeleted(nbid)
	return nil
}

// Alter reparents/renames/recontents nbid, or resurrects it if it is
// currently deleted or unknown. A call that changes nothing MUST be
// accepted as a no-op (spec §4.3.2), though senders should suppress it.
func (t *Transaction) Alter(ctx context.Context, sinceRev int64, nbid, newParentNbid, name string, content Content) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireNotTerminal(); err != nil {
		return err
	}
	if err := t.requireIdAddressed(); err != nil {
		return err
	}
	t.recordSinceRev(nbid, sinceRev)
	n, ok := t.nodes[nbid]
	if !ok || n.deleted {
		if err := t.loadByNbid(ctx, nbid, t.BaseRev); err != nil {
			return err
		}
		n = t.nodes[nbid]
	}
	if newParentNbid == n.parent && name == n.name && content.Kind == "" {
		return nil // no-op, accepted per spec §4.3.2
	}
	if newParentNbid != "" && newParentNbid != n.parent {
		if err := t.ensureIdKnown(ctx, newParentNbid); err != nil {
			return err
		}
	}
	targetParent, targetName := n.parent, n.name
	if newParentNbid != "" {
		targetParent = newParentNbid
	}
	if name != "" {
		targetName = name
	}
	if (targetParent != n.parent || targetName != n.name) && t.nameTaken(targetParent, targetName) {
		return fmt.Errorf("%w: %s", ErrNameConflict, targetName)
	}
	if targetParent != n.parent {
		cyclic, err := t.wouldCycle(ctx, nbid, targetParent)
		if err != nil {
			return err
		}
		if cyclic {
			return fmt.Errorf("%w: reparenting %s under %s would create a cycle", ErrPreconditionViolated, nbid, targetParent)
		}
	}
	t.removeFromParent(nbid)
	n.parent, n.name, n.deleted = targetParent, targetName, false
	if content.Kind != "" {
		n.content = content
	}
	t.upsertNode(n)
	return nil
}

// ensureIdKnown loads nbid from the transaction's base revision if it
// isn't already present in the live node table. Per spec §4.3.3, an
// id-addressed op's target parent need only exist "in the final state",
// so this always resolves against BaseRev rather than any op-specific
// since_rev.
func (t *Transaction) ensureIdKnown(ctx context.Context, nbid string) error {
	if n, ok := t.nodes[nbid]; ok && !n.deleted {
		return nil
	}
	return t.loadByNbid(ctx, nbid, t.BaseRev)
}

// loadByNbid materializes a node the transaction has not yet seen,
// fetched from the repository by id rather than by path.
func (t *Transaction) loadByNbid(ctx context.Context, nbid string, rev int64) error {
	parentNbid, name, err := t.repo.Locate(ctx, nbid, rev)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownNodeBranch, err)
	}
	content, err := t.repo.ContentOf(ctx, nbid, rev)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownNodeBranch, err)
	}
	t.upsertNode(&node{nbid: nbid, parent: parentNbid, name: name, kind: content.Kind, content: content})
	return nil
}
