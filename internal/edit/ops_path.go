package edit

import (
	"context"
	"fmt"
)

// Path-addressed ops (spec §4.3.1). Each method traces its PegPath
// arguments forward into the current transaction before applying, and
// enforces the numbered preconditions named in the spec's op table.

// Mk creates a new node-branch of kind under parentLoc/name.
// Preconditions: [1] parent resolves in the current txn, [2] name is
// free among the parent's children.
func (t *Transaction) Mk(ctx context.Context, kind Kind, parentLoc PegPath, name string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireNotTerminal(); err != nil {
		return "", err
	}
	if err := t.requirePathAddressed(); err != nil {
		return "", err
	}
	if !kind.valid() {
		return "", fmt.Errorf("%w: unknown kind %q", ErrMalformedContent, kind)
	}
	parentID, err := t.resolveLoc(ctx, parentLoc)
	if err != nil {
		return "", preconditionErr(PreParentInTxn, err.Error())
	}
	if t.nameTaken(parentID, name) {
		return "", preconditionErr(PreNameFree, name)
	}
	nbid := newNbid()
	t.upsertNode(&node{nbid: nbid, parent: parentID, name: name, kind: kind, content: Content{Kind: kind}, createdInTxn: true})
	return nbid, nil
}

// Cp copies fromLoc to parentLoc/name as a new node-branch identity.
// fromLoc may reference a committed revision (precondition [3]) or, when
// Capabilities.TxnSourcedCopy is advertised, the current transaction
// (precondition [4]).
func (t *Transaction) Cp(ctx context.Context, fromLoc, parentLoc PegPath, name string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireNotTerminal(); err != nil {
		return "", err
	}
	if err := t.requirePathAddressed(); err != nil {
		return "", err
	}
	content, err := t.sourceContent(ctx, fromLoc, PreSourceCommitted)
	if err != nil {
		return "", err
	}
	parentID, err := t.resolveLoc(ctx, parentLoc)
	if err != nil {
		return "", preconditionErr(PreParentInTxn, err.Error())
	}
	if t.nameTaken(parentID, name) {
		return "", preconditionErr(PreNameFree, name)
	}
	nbid := newNbid()
	t.upsertNode(&node{nbid: nbid, parent: parentID, name: name, kind: content.Kind, content: content, createdInTxn: true})
	return nbid, nil
}

// sourceContent resolves fromLoc's content, honoring the txn-sourced-copy
// capability gate when fromLoc points at the current transaction.
func (t *Transaction) sourceContent(ctx context.Context, fromLoc PegPath, committedPre Precondition) (Content, error) {
	if fromLoc.Rev == CurrentTxn {
		if !t.caps.TxnSourcedCopy {
			return Content{}, fmt.Errorf("%w: txn-sourced copy", ErrNotCapable)
		}
		nbid, err := t.resolveLoc(ctx, fromLoc)
		if err != nil {
			return Content{}, preconditionErr(PreSourceInTxn, err.Error())
		}
		return t.nodes[nbid].content, nil
	}
	nbid, err := t.ensureLoaded(ctx, fromLoc)
	if err != nil {
		return Content{}, preconditionErr(committedPre, err.Error())
	}
	return t.nodes[nbid].content, nil
}

// Mv moves fromLoc, which must already be traceable into the current
// transaction via a committed peg (precondition [4]), to
// newParentLoc/name (preconditions [1][2] on the destination).
func (t *Transaction) Mv(ctx context.Context, fromLoc, newParentLoc PegPath, name string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireNotTerminal(); err != nil {
		return "", err
	}
	if err := t.requirePathAddressed(); err != nil {
		return "", err
	}
	nbid, err := t.resolveLoc(ctx, fromLoc)
	if err != nil {
		return "", preconditionErr(PreSourceInTxn, err.Error())
	}
	newParentID, err := t.resolveLoc(ctx, newParentLoc)
	if err != nil {
		return "", preconditionErr(PreParentInTxn, err.Error())
	}
	if t.nameTaken(newParentID, name) {
		return "", preconditionErr(PreNameFree, name)
	}
	if newParentID != t.nodes[nbid].parent {
		cyclic, err := t.wouldCycle(ctx, nbid, newParentID)
		if err != nil {
			return "", err
		}
		if cyclic {
			return "", fmt.Errorf("%w: moving %s under %s would create a cycle", ErrPreconditionViolated, nbid, newParentID)
		}
	}
	t.recordSinceRev(nbid, fromLoc.Rev)
	n := t.nodes[nbid]
	t.removeFromParent(nbid)
	n.parent = newParentID
	n.name = name
	t.upsertNode(n)
	return nbid, nil
}

// Res resurrects the node-branch previously addressed by fromLoc (which
// may currently be deleted, or not yet loaded) back into the live tree
// at parentLoc/name, keeping its original identity (spec §4.3.1:
// "source previously-existing node-branch").
func (t *Transaction) Res(ctx context.Context, fromLoc, parentLoc PegPath, name string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireNotTerminal(); err != nil {
		return "", err
	}
	if err := t.requirePathAddressed(); err != nil {
		return "", err
	}
	relpath := fromLoc.RelPath
	nbid, err := t.repo.ResolvePeg(ctx, PegPath{Rev: fromLoc.Rev, RelPath: relpath})
	if err != nil {
		return "", preconditionErr(PreSourceCommitted, err.Error())
	}
	content, err := t.repo.Content(ctx, PegPath{Rev: fromLoc.Rev, RelPath: relpath})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}
	parentID, err := t.resolveLoc(ctx, parentLoc)
	if err != nil {
		return "", preconditionErr(PreParentInTxn, err.Error())
	}
	if t.nameTaken(parentID, name) {
		return "", preconditionErr(PreNameFree, name)
	}
	n := &node{nbid: nbid, parent: parentID, name: name, kind: content.Kind, content: content}
	t.upsertNode(n)
	return nbid, nil
}

// Rm recursively removes loc, which must be in the current transaction
// (precondition [5]). Every descendant still under loc is marked deleted
// as well; children already moved elsewhere are not affected. A node
// created or copy-rooted in this same edit is not rejected as a target.
func (t *Transaction) Rm(ctx context.Context, loc PegPath) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireNotTerminal(); err != nil {
		return err
	}
	if err := t.requirePathAddressed(); err != nil {
		return err
	}
	nbid, err := t.resolveLoc(ctx, loc)
	if err != nil {
		return preconditionErr(PreTargetInTxn, err.Error())
	}
	if nbid == t.RootNbid {
		return fmt.Errorf("%w: cannot remove transaction root", ErrPreconditionViolated)
	}
	t.recordSinceRev(nbid, loc.Rev)
	t.markDeleted(nbid)
	return nil
}

// Put sets loc's file content. loc must be in the current transaction
// (precondition [5]), its kind must match content.Kind, and at most one
// Put may apply to a given node-branch per edit.
func (t *Transaction) Put(ctx context.Context, loc PegPath, content Content) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireNotTerminal(); err != nil {
		return err
	}
	if err := t.requirePathAddressed(); err != nil {
		return err
	}
	if err := content.Validate(); err != nil {
		return err
	}
	nbid, err := t.resolveLoc(ctx, loc)
	if err != nil {
		return preconditionErr(PreTargetInTxn, err.Error())
	}
	n := t.nodes[nbid]
	if n.kind != content.Kind {
		return fmt.Errorf("%w: put kind %q does not match node-branch kind %q", ErrPreconditionViolated, content.Kind, n.kind)
	}
	if t.putDone[nbid] {
		return fmt.Errorf("%w: put already applied to node-branch %s this edit", ErrPreconditionViolated, nbid)
	}
	checksummed, err := content.Checksummed()
	if err != nil {
		return err
	}
	n.content = checksummed
	t.putDone[nbid] = true
	t.recordSinceRev(nbid, loc.Rev)
	return nil
}
