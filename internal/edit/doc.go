// Package edit implements the tree-edit transactional state machine: a
// server-side working tree, built up by a sequence of path-addressed
// (mk/cp/mv/rm/put/res) or id-addressed (add/copy_one/copy_tree/delete/
// alter) operations against a txn-base revision, and either committed
// (complete) or discarded (abort).
//
// The package is transport-agnostic: it knows nothing about the wire
// item/tuple grammar in internal/wire. A dispatch handler decodes wire
// parameters into the op types here, calls the matching Transaction
// method, and re-encodes the result (or error) back onto the wire.
package edit
