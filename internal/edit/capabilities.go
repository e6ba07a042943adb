package edit

import "fmt"

// Capabilities is negotiated up front (spec §9 open question ii: "copy-
// from-current-txn MUST be advertised as a capability"). A Transaction
// rejects any op that exercises a capability its Capabilities doesn't
// grant.
type Capabilities struct {
	// PathAddressed/IdAddressed advertise which op styles the sender
	// may use against this transaction. Both may be true; spec §4.3
	// allows mixing styles on the same edit.
	PathAddressed bool
	IdAddressed   bool

	// TxnSourcedCopy allows cp/copy_one to source from the current
	// transaction (PegPath.Rev == CurrentTxn) rather than only from a
	// committed revision.
	TxnSourcedCopy bool

	// PermissiveRebase records the configured rebase policy. No op or
	// Complete consults it: a conflicting change is rejected as out of
	// date whether it is set or not, and no null merge is attempted.
	PermissiveRebase bool
}

// DefaultCapabilities matches the conservative default in
// internal/config: both addressing styles, strict rebase, no
// txn-sourced copy.
func DefaultCapabilities() Capabilities {
	return Capabilities{PathAddressed: true, IdAddressed: true}
}

// requirePathAddressed rejects a path-addressed op (mk/cp/mv/res/rm/put)
// when the transaction's sender was not advertised PathAddressed.
func (t *Transaction) requirePathAddressed() error {
	if !t.caps.PathAddressed {
		return fmt.Errorf("%w: path-addressed ops not advertised for this transaction", ErrNotCapable)
	}
	return nil
}

// requireIdAddressed rejects an id-addressed op (add/copy_one/copy_tree/
// delete/alter) when the transaction's sender was not advertised
// IdAddressed.
func (t *Transaction) requireIdAddressed() error {
	if !t.caps.IdAddressed {
		return fmt.Errorf("%w: id-addressed ops not advertised for this transaction", ErrNotCapable)
	}
	return nil
}
