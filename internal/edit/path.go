package edit

import "fmt"

// CurrentTxn is the Rev sentinel meaning "resolve within the current
// transaction" rather than against a committed revision (spec §3, Peg-Path
// Location: "rev=-1 means current transaction").
const CurrentTxn int64 = -1

// PegPath addresses a node by a stable coordinate: a revision (or
// CurrentTxn) plus the repository-relative path it had there.
type PegPath struct {
	Rev     int64
	RelPath string
}

func (p PegPath) String() string {
	if p.Rev == CurrentTxn {
		return fmt.Sprintf("(^/%s@txn)", p.RelPath)
	}
	return fmt.Sprintf("(^/%s@%d)", p.RelPath, p.Rev)
}

// TxnPath extends a PegPath with the relpath a path-addressed op creates
// the result under, once the sender's peg has been traced forward into
// the current transaction (spec §3, Txn-Path).
type TxnPath struct {
	Peg            PegPath
	RelPathCreated string
}
