package ratreed

import (
	"context"

	"github.com/danmuck/ratree/internal/dispatch"
	"github.com/danmuck/ratree/internal/edit"
	"github.com/danmuck/ratree/internal/edit/schema"
	"github.com/danmuck/ratree/internal/wire"
)

// NewTable builds the dispatch.Table driving the tree-edit state
// machine: one entry per command in internal/edit/schema's command
// list, each decoding its wire params with the format schema.FormatFor
// reports for that command (a single source of truth shared with
// schema.Validate) and invoking the matching *edit.Transaction method
// against the connection's session baton.
func NewTable() *dispatch.Table {
	table := dispatch.NewTable()
	table.Register(schema.CmdMk, handleMk, false)
	table.Register(schema.CmdCp, handleCp, false)
	table.Register(schema.CmdMv, handleMv, false)
	table.Register(schema.CmdRes, handleRes, false)
	table.Register(schema.CmdRm, handleRm, false)
	table.Register(schema.CmdPut, handlePut, false)
	table.Register(schema.CmdAdd, handleAdd, false)
	table.Register(schema.CmdCopyOne, handleCopyOne, false)
	table.Register(schema.CmdCopyTree, handleCopyTree, false)
	table.Register(schema.CmdDelete, handleDelete, false)
	table.Register(schema.CmdAlter, handleAlter, false)
	table.Register(schema.CmdComplete, handleComplete, true)
	table.Register(schema.CmdAbort, handleAbort, true)
	return table
}

// decodeParams parses a handler's raw parameter items against command's
// registered format.
func decodeParams(command string, params []wire.Item, dest ...any) error {
	format, ok := schema.FormatFor(command)
	if !ok {
		return &schema.ValidationError{Command: command, Got: "", Want: "<unknown command>"}
	}
	return wire.ParseTuple(wire.Lst(params...), format, dest...)
}

func txnOf(ctx context.Context, baton any) (*edit.Transaction, error) {
	sess, ok := baton.(*session)
	if !ok {
		return nil, dispatch.NewFault(0, "ratreed: dispatch baton is not a *session")
	}
	return sess.transaction(ctx)
}

func handleMk(ctx context.Context, conn *wire.Conn, arena *wire.Arena, params []wire.Item, baton any) error {
	var kindWord string
	var parentRev wire.OptRevision
	var parentRelpath, name []byte
	if err := decodeParams(schema.CmdMk, params, &kindWord, &parentRev, &parentRelpath, &name); err != nil {
		return dispatch.Fail(err)
	}
	kind, err := kindFromWire(kindWord)
	if err != nil {
		return dispatch.Fail(err)
	}
	txn, err := txnOf(ctx, baton)
	if err != nil {
		return err
	}
	nbid, err := txn.Mk(ctx, kind, decodePeg(parentRev, parentRelpath), string(name))
	if err != nil {
		return dispatch.Fail(err)
	}
	return dispatch.WriteCmdResponse(conn, "s", []byte(nbid))
}

func handleCp(ctx context.Context, conn *wire.Conn, arena *wire.Arena, params []wire.Item, baton any) error {
	var fromRev, parentRev wire.OptRevision
	var fromRelpath, parentRelpath, name []byte
	if err := decodeParams(schema.CmdCp, params, &fromRev, &fromRelpath, &parentRev, &parentRelpath, &name); err != nil {
		return dispatch.Fail(err)
	}
	txn, err := txnOf(ctx, baton)
	if err != nil {
		return err
	}
	nbid, err := txn.Cp(ctx, decodePeg(fromRev, fromRelpath), decodePeg(parentRev, parentRelpath), string(name))
	if err != nil {
		return dispatch.Fail(err)
	}
	return dispatch.WriteCmdResponse(conn, "s", []byte(nbid))
}

func handleMv(ctx context.Context, conn *wire.Conn, arena *wire.Arena, params []wire.Item, baton any) error {
	var fromRev, newParentRev wire.OptRevision
	var fromRelpath, newParentRelpath, name []byte
	if err := decodeParams(schema.CmdMv, params, &fromRev, &fromRelpath, &newParentRev, &newParentRelpath, &name); err != nil {
		return dispatch.Fail(err)
	}
	txn, err := txnOf(ctx, baton)
	if err != nil {
		return err
	}
	nbid, err := txn.Mv(ctx, decodePeg(fromRev, fromRelpath), decodePeg(newParentRev, newParentRelpath), string(name))
	if err != nil {
		return dispatch.Fail(err)
	}
	return dispatch.WriteCmdResponse(conn, "s", []byte(nbid))
}

func handleRes(ctx context.Context, conn *wire.Conn, arena *wire.Arena, params []wire.Item, baton any) error {
	var fromRev, parentRev wire.OptRevision
	var fromRelpath, parentRelpath, name []byte
	if err := decodeParams(schema.CmdRes, params, &fromRev, &fromRelpath, &parentRev, &parentRelpath, &name); err != nil {
		return dispatch.Fail(err)
	}
	txn, err := txnOf(ctx, baton)
	if err != nil {
		return err
	}
	nbid, err := txn.Res(ctx, decodePeg(fromRev, fromRelpath), decodePeg(parentRev, parentRelpath), string(name))
	if err != nil {
		return dispatch.Fail(err)
	}
	return dispatch.WriteCmdResponse(conn, "s", []byte(nbid))
}

func handleRm(ctx context.Context, conn *wire.Conn, arena *wire.Arena, params []wire.Item, baton any) error {
	var locRev wire.OptRevision
	var locRelpath []byte
	if err := decodeParams(schema.CmdRm, params, &locRev, &locRelpath); err != nil {
		return dispatch.Fail(err)
	}
	txn, err := txnOf(ctx, baton)
	if err != nil {
		return err
	}
	if err := txn.Rm(ctx, decodePeg(locRev, locRelpath)); err != nil {
		return dispatch.Fail(err)
	}
	return dispatch.WriteCmdResponse(conn, "")
}

func handlePut(ctx context.Context, conn *wire.Conn, arena *wire.Arena, params []wire.Item, baton any) error {
	var locRev wire.OptRevision
	var locRelpath []byte
	var contentItems []wire.Item
	if err := decodeParams(schema.CmdPut, params, &locRev, &locRelpath, &contentItems); err != nil {
		return dispatch.Fail(err)
	}
	content, err := decodeContent(contentItems)
	if err != nil {
		return dispatch.Fail(err)
	}
	txn, err := txnOf(ctx, baton)
	if err != nil {
		return err
	}
	if err := txn.Put(ctx, decodePeg(locRev, locRelpath), content); err != nil {
		return dispatch.Fail(err)
	}
	return dispatch.WriteCmdResponse(conn, "")
}

func handleAdd(ctx context.Context, conn *wire.Conn, arena *wire.Arena, params []wire.Item, baton any) error {
	var localNbid []byte
	var kindWord string
	var newParentNbid, name []byte
	var contentItems []wire.Item
	if err := decodeParams(schema.CmdAdd, params, &localNbid, &kindWord, &newParentNbid, &name, &contentItems); err != nil {
		return dispatch.Fail(err)
	}
	kind, err := kindFromWire(kindWord)
	if err != nil {
		return dispatch.Fail(err)
	}
	content, err := decodeContent(contentItems)
	if err != nil {
		return dispatch.Fail(err)
	}
	txn, err := txnOf(ctx, baton)
	if err != nil {
		return err
	}
	if err := txn.Add(ctx, string(localNbid), kind, string(newParentNbid), string(name), content); err != nil {
		return dispatch.Fail(err)
	}
	return dispatch.WriteCmdResponse(conn, "")
}

func handleCopyOne(ctx context.Context, conn *wire.Conn, arena *wire.Arena, params []wire.Item, baton any) error {
	var localNbid []byte
	var srcRev wire.OptRevision
	var srcNbid, newParentNbid, name []byte
	var contentItems []wire.Item
	if err := decodeParams(schema.CmdCopyOne, params, &localNbid, &srcRev, &srcNbid, &newParentNbid, &name, &contentItems); err != nil {
		return dispatch.Fail(err)
	}
	content, err := decodeContent(contentItems)
	if err != nil {
		return dispatch.Fail(err)
	}
	txn, err := txnOf(ctx, baton)
	if err != nil {
		return err
	}
	if err := txn.CopyOne(ctx, string(localNbid), int64(srcRev.Value), string(srcNbid), string(newParentNbid), string(name), content); err != nil {
		return dispatch.Fail(err)
	}
	return dispatch.WriteCmdResponse(conn, "")
}

func handleCopyTree(ctx context.Context, conn *wire.Conn, arena *wire.Arena, params []wire.Item, baton any) error {
	var srcRev wire.OptRevision
	var srcNbid, newParentNbid, name []byte
	if err := decodeParams(schema.CmdCopyTree, params, &srcRev, &srcNbid, &newParentNbid, &name); err != nil {
		return dispatch.Fail(err)
	}
	txn, err := txnOf(ctx, baton)
	if err != nil {
		return err
	}
	nbid, err := txn.CopyTree(ctx, int64(srcRev.Value), string(srcNbid), string(newParentNbid), string(name))
	if err != nil {
		return dispatch.Fail(err)
	}
	return dispatch.WriteCmdResponse(conn, "s", []byte(nbid))
}

func handleDelete(ctx context.Context, conn *wire.Conn, arena *wire.Arena, params []wire.Item, baton any) error {
	var sinceRev wire.OptRevision
	var nbid []byte
	if err := decodeParams(schema.CmdDelete, params, &sinceRev, &nbid); err != nil {
		return dispatch.Fail(err)
	}
	txn, err := txnOf(ctx, baton)
	if err != nil {
		return err
	}
	if err := txn.Delete(ctx, int64(sinceRev.Value), string(nbid)); err != nil {
		return dispatch.Fail(err)
	}
	return dispatch.WriteCmdResponse(conn, "")
}

func handleAlter(ctx context.Context, conn *wire.Conn, arena *wire.Arena, params []wire.Item, baton any) error {
	var sinceRev wire.OptRevision
	var nbid, newParentNbid, name []byte
	var contentItems []wire.Item
	if err := decodeParams(schema.CmdAlter, params, &sinceRev, &nbid, &newParentNbid, &name, &contentItems); err != nil {
		return dispatch.Fail(err)
	}
	content, err := decodeContent(contentItems)
	if err != nil {
		return dispatch.Fail(err)
	}
	txn, err := txnOf(ctx, baton)
	if err != nil {
		return err
	}
	if err := txn.Alter(ctx, int64(sinceRev.Value), string(nbid), string(newParentNbid), string(name), content); err != nil {
		return dispatch.Fail(err)
	}
	return dispatch.WriteCmdResponse(conn, "")
}

func handleComplete(ctx context.Context, conn *wire.Conn, arena *wire.Arena, params []wire.Item, baton any) error {
	txn, err := txnOf(ctx, baton)
	if err != nil {
		return err
	}
	rev, err := txn.Complete(ctx)
	if err != nil {
		return dispatch.Fail(err)
	}
	return dispatch.WriteCmdResponse(conn, "n", uint64(rev))
}

func handleAbort(ctx context.Context, conn *wire.Conn, arena *wire.Arena, params []wire.Item, baton any) error {
	sess, ok := baton.(*session)
	if !ok {
		return dispatch.NewFault(0, "ratreed: dispatch baton is not a *session")
	}
	if sess.txn == nil {
		return dispatch.WriteCmdResponse(conn, "")
	}
	if err := sess.txn.Abort(ctx); err != nil {
		return dispatch.Fail(err)
	}
	return dispatch.WriteCmdResponse(conn, "")
}
