package edit

import "context"

// RepositoryOracle is the collaborator a Transaction consults for
// anything outside its own in-progress state: resolving a committed peg
// path to a node-branch, checking whether a node-branch changed since a
// revision, fetching committed content, and finally durably committing a
// completed transaction (spec §6, "RepositoryOracle").
type RepositoryOracle interface {
	// ResolvePeg resolves a committed PegPath (Rev != CurrentTxn) to the
	// node-branch id that occupied it at that revision.
	ResolvePeg(ctx context.Context, peg PegPath) (nbid string, err error)

	// ChangedSince reports whether nbid's own name, parent, or content
	// changed in any revision after sinceRev (spec §4.3.3's "unchanged
	// since base" rebase check).
	ChangedSince(ctx context.Context, nbid string, sinceRev int64) (bool, error)

	// Content fetches the committed content a node-branch had at peg.
	Content(ctx context.Context, peg PegPath) (Content, error)

	// ContentOf fetches the committed content nbid had at rev, for
	// id-addressed ops that never carry a path.
	ContentOf(ctx context.Context, nbid string, rev int64) (Content, error)

	// Locate reports the parent node-branch id and sibling name nbid
	// had at rev (id-addressed alter/copy_one's resurrection path).
	Locate(ctx context.Context, nbid string, rev int64) (parentNbid, name string, err error)

	// Children lists nbid's direct children at rev, keyed by sibling
	// name, for copy_tree's recursive materialization.
	Children(ctx context.Context, nbid string, rev int64) (map[string]string, error)

	// Head reports the latest committed revision number.
	Head(ctx context.Context) (int64, error)

	// Commit durably applies txn's accumulated changes on top of
	// txn.BaseRev and returns the new revision number, or ErrOutOfDate
	// if the commit can no longer be applied cleanly.
	Commit(ctx context.Context, txn *Transaction) (newRev int64, err error)
}

// WorkingCopyOracle lets a driven client reshape its own working copy in
// response to a completed or in-progress edit (spec §6,
// "WorkingCopyOracle"). ratreed's server role only ever plays
// RepositoryOracle; this interface exists so the same Transaction type
// can drive a client-side consumer, per spec §4.3's "the driven side may
// be either the repository or a working copy".
type WorkingCopyOracle interface {
	// BaseState reports the working copy's own notion of its base
	// revision and root node-branch, used to open a Transaction against
	// it rather than against a repository.
	BaseState(ctx context.Context) (baseRev int64, rootNbid string, err error)

	// Apply receives one driven operation, as an untyped value, to
	// reshape the working copy.
	Apply(ctx context.Context, op any) error
}
