package dispatch

import (
	"errors"

	"github.com/danmuck/ratree/internal/wire"
)

// WriteCmd writes a "( word tuple... )" command invocation, the shape
// a client sends to invoke a server command. Ported from
// svn_ra_svn_write_cmd.
func WriteCmd(conn *wire.Conn, name, format string, args ...any) error {
	if err := conn.StartList(); err != nil {
		return err
	}
	if err := conn.WriteWord(name); err != nil {
		return err
	}
	if err := conn.WriteTuple(format, args...); err != nil {
		return err
	}
	return conn.EndList()
}

// WriteCmdResponse writes "( success ( tuple... ) )", the normal
// completion response for a handled command. Ported from
// svn_ra_svn_write_cmd_response.
func WriteCmdResponse(conn *wire.Conn, format string, args ...any) error {
	if err := conn.StartList(); err != nil {
		return err
	}
	if err := conn.WriteWord("success"); err != nil {
		return err
	}
	if err := conn.WriteTuple(format, args...); err != nil {
		return err
	}
	return conn.EndList()
}

// WriteCmdFailure writes "( failure ( (n c c n) (n c c n) ... ) )": one
// nested nccn tuple per Fault frame in err's chain, outermost first.
// If err is not built from *Fault, it is reported as a single frame
// with code 0 and err.Error() as the message. Ported from
// svn_ra_svn_write_cmd_failure.
func WriteCmdFailure(conn *wire.Conn, err error) error {
	if err == nil {
		return errors.New("dispatch: WriteCmdFailure called with nil error")
	}
	if err := conn.StartList(); err != nil {
		return err
	}
	if err := conn.WriteWord("failure"); err != nil {
		return err
	}
	if err := conn.StartList(); err != nil {
		return err
	}
	for _, f := range faultChain(err) {
		msg := f.Message
		file := f.File
		if werr := conn.WriteTuple("nccn", f.Code, &msg, &file, f.Line); werr != nil {
			return werr
		}
	}
	if err := conn.EndList(); err != nil {
		return err
	}
	return conn.EndList()
}

// faultChain flattens err's Fault chain outer-to-inner. A non-Fault
// error becomes a single synthetic frame.
func faultChain(err error) []*Fault {
	var f *Fault
	if errors.As(err, &f) {
		var chain []*Fault
		for cur := f; cur != nil; {
			chain = append(chain, cur)
			var next *Fault
			if errors.As(cur.Cause, &next) {
				cur = next
			} else {
				cur = nil
			}
		}
		return chain
	}
	return []*Fault{NewFault(0, err.Error())}
}

// ReadCmdResponse reads a "( success (tuple) )" / "( failure (...) )"
// response and either parses the success tuple into dest or returns
// the reconstructed *Fault chain as an error. Ported from
// svn_ra_svn_read_cmd_response.
func ReadCmdResponse(conn *wire.Conn, arena *wire.Arena, format string, dest ...any) error {
	var status string
	var params []wire.Item
	if err := conn.ReadTuple(arena, "wl", &status, &params); err != nil {
		return err
	}

	switch status {
	case "success":
		return wire.ParseTuple(wire.Lst(params...), format, dest...)
	case "failure":
		if len(params) == 0 {
			return &wire.MalformedError{Reason: "empty failure error list"}
		}
		var chained error
		for i := len(params) - 1; i >= 0; i-- {
			elt := params[i]
			if !elt.IsList() {
				return &wire.MalformedError{Reason: "malformed failure error list"}
			}
			var code, line uint64
			var message, file string
			if err := wire.ParseTuple(elt, "nccn", &code, &message, &file, &line); err != nil {
				return err
			}
			chained = &Fault{Code: code, Message: message, File: file, Line: line, Cause: chained}
		}
		return chained
	default:
		return &wire.MalformedError{Reason: "unknown response status " + status}
	}
}
