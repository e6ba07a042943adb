package dispatch

import "fmt"

// CmdErr marks a handler error as a normal command failure: it is
// reported to the peer as a failure response and the dispatch loop
// continues to the next command. Any other error a handler returns is
// treated as fatal to the connection — the loop returns immediately
// without writing a response, mirroring marshal.c's distinction
// between SVN_ERR_RA_SVN_CMD_ERR and every other apr_err.
type CmdErr struct {
	Err error
}

func (e *CmdErr) Error() string { return e.Err.Error() }

func (e *CmdErr) Unwrap() error { return e.Err }

// Fail wraps err as a CmdErr, the common case for handlers translating
// a business-logic failure (out-of-date, precondition violated, schema
// mismatch) into a wire failure response instead of a fatal error.
func Fail(err error) error {
	if err == nil {
		return nil
	}
	return &CmdErr{Err: err}
}

// UnknownCmdError is produced by the loop itself when a command word
// has no matching Table entry.
type UnknownCmdError struct {
	Name string
}

func (e *UnknownCmdError) Error() string { return fmt.Sprintf("dispatch: unknown command %q", e.Name) }

// Fault is one frame of a failure response's error chain: a numeric
// code, a human-readable message, and the reporting location, matching
// the wire's "nccn" (code, message, file, line) tuple shape written by
// write_cmd_failure. Cause chains to the next-innermost Fault, if any.
type Fault struct {
	Code    uint64
	Message string
	File    string
	Line    uint64
	Cause   error
}

func (f *Fault) Error() string {
	if f.File != "" {
		return fmt.Sprintf("%s (%s:%d)", f.Message, f.File, f.Line)
	}
	return f.Message
}

func (f *Fault) Unwrap() error { return f.Cause }

// NewFault builds a single-frame Fault with no cause.
func NewFault(code uint64, message string) *Fault {
	return &Fault{Code: code, Message: message}
}

// Wrap builds a new outer Fault whose Cause is f.
func (f *Fault) Wrap(code uint64, message string) *Fault {
	return &Fault{Code: code, Message: message, Cause: f}
}
