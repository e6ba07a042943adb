package edit

import (
	"errors"
	"fmt"
)

// Sentinel errors for the taxonomy in spec §7. Transport-level members of
// that taxonomy (IoError, ConnectionClosed, MalformedData, UnknownCmd,
// CmdErr) live in internal/wire and internal/dispatch; these are the
// edit-layer members, reported to the peer as ordinary command failures.
var (
	// ErrPreconditionViolated wraps an unmet path-addressed-op
	// precondition ([1]-[5] in spec §4.3.1).
	ErrPreconditionViolated = errors.New("precondition violated")

	// ErrOutOfDate wraps a rebase conflict: the op's source or target
	// changed, since the op's stated base revision, in a way its
	// op-kind does not tolerate (spec §4.3.3).
	ErrOutOfDate = errors.New("out of date")

	// ErrTerminated is returned by any op attempted after complete or
	// abort (spec §4.3.4: "further ops rejected after either terminal").
	ErrTerminated = errors.New("transaction already terminated")

	ErrMalformedContent = errors.New("malformed content")
	ErrUnknownNodeBranch = errors.New("unknown node-branch")
	ErrNameConflict      = errors.New("name already in use")
	ErrNotCapable        = errors.New("capability not advertised")
)

// Precondition identifies which numbered precondition in spec §4.3.1 a
// path-addressed op failed.
type Precondition int

const (
	PreParentInTxn Precondition = iota + 1 // [1] parent_loc resolves inside the current txn
	PreNameFree                            // [2] name not already used among parent's children
	PreSourceCommitted                     // [3] from_loc resolves to a committed revision
	PreSourceInTxn                         // [4] from_loc resolves via a committed peg into the current txn
	PreTargetInTxn                         // [5] loc resolves inside the current txn
)

func (p Precondition) String() string {
	switch p {
	case PreParentInTxn:
		return "[1] parent not in transaction"
	case PreNameFree:
		return "[2] name already taken"
	case PreSourceCommitted:
		return "[3] source not a committed revision"
	case PreSourceInTxn:
		return "[4] source not reachable in transaction"
	case PreTargetInTxn:
		return "[5] target not in transaction"
	default:
		return "unknown precondition"
	}
}

func preconditionErr(p Precondition, detail string) error {
	if detail == "" {
		return fmt.Errorf("%w: %s", ErrPreconditionViolated, p)
	}
	return fmt.Errorf("%w: %s: %s", ErrPreconditionViolated, p, detail)
}

func outOfDateErr(nbid, detail string) error {
	return fmt.Errorf("%w: node-branch %s: %s", ErrOutOfDate, nbid, detail)
}
