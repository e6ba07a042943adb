package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/danmuck/ratree/internal/wire"
)

// Loop drives one connection's request/response cycle: read a "wl"
// command tuple, dispatch to the matching Table entry, write the
// outcome, repeat. Control flow ported from svn_ra_svn_handle_commands.
type Loop struct {
	Table             *Table
	Metrics           *Metrics
	PassThroughErrors bool
}

// NewLoop builds a Loop bound to table. metrics may be nil to disable
// instrumentation.
func NewLoop(table *Table, metrics *Metrics) *Loop {
	return &Loop{Table: table, Metrics: metrics}
}

// Run executes the command loop against conn until a command entry
// marked Terminate completes, the connection is closed, or a handler
// returns a fatal (non-CmdErr) error. baton is passed through to every
// handler unchanged — typically the server's repository oracle plus
// any per-connection session state.
func (l *Loop) Run(ctx context.Context, conn *wire.Conn, baton any) error {
	arena := wire.NewArena(wire.DefaultArenaSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		arena.Reset()

		var cmdname string
		var params []wire.Item
		if err := conn.ReadTuple(arena, "wl", &cmdname, &params); err != nil {
			return err
		}

		entry, ok := l.Table.Lookup(cmdname)
		start := time.Now()

		var err error
		if ok {
			err = entry.Handler(ctx, conn, arena, params, baton)
			var ce *CmdErr
			if errors.As(err, &ce) {
				err = ce.Err
			} else if err != nil {
				return err
			}
		} else {
			err = &UnknownCmdError{Name: cmdname}
		}

		if l.Metrics != nil {
			l.Metrics.Observe(cmdname, err == nil, time.Since(start))
		}

		if err != nil {
			if werr := WriteCmdFailure(conn, err); werr != nil {
				return werr
			}
			if l.PassThroughErrors {
				_ = conn.Flush()
				return err
			}
		}

		if ok && entry.Terminate {
			return conn.Flush()
		}
	}
}
