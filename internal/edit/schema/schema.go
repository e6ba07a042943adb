// Package schema validates that a decoded command's wire tuple format
// matches what its op expects, re-grounded from
// internal/protocol/schema/schema.go's TLV per-message-type field
// requirement table onto internal/wire's tuple format letters
// (spec §3, "Tuple format letter") keyed by command name instead of a
// numeric message type.
package schema

import (
	"fmt"

	"github.com/danmuck/ratree/internal/logging"
)

// Command names, spec §4.3.1/§4.3.2.
const (
	CmdMk       = "mk"
	CmdCp       = "cp"
	CmdMv       = "mv"
	CmdRes      = "res"
	CmdRm       = "rm"
	CmdPut      = "put"
	CmdAdd      = "add"
	CmdCopyOne  = "copy_one"
	CmdCopyTree = "copy_tree"
	CmdDelete   = "delete"
	CmdAlter    = "alter"
	CmdComplete = "complete"
	CmdAbort    = "abort"
)

// ValidationError reports a command whose param tuple format does not
// match what its op requires.
type ValidationError struct {
	Command string
	Got     string
	Want    string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("schema: command=%q: got format %q, want %q", e.Command, e.Got, e.Want)
}

// formats gives the expected internal/wire tuple format string for each
// command's parameter list. w=word (kind only — a node-branch id is an
// opaque sender-assigned token and MAY start with a digit, so every
// nbid field travels as a string 's', never a word), r=revision,
// s=string (relpaths, names, nbids), l=nested list (content). A peg path
// travels as a flat revision-then-relpath pair, not as a nested list.
var formats = map[string]string{
	CmdMk:       "wrss",   // kind, parent_rev, parent_relpath, name
	CmdCp:       "rsrss",  // from_rev, from_relpath, parent_rev, parent_relpath, name
	CmdMv:       "rsrss",  // from_rev, from_relpath, new_parent_rev, new_parent_relpath, name
	CmdRes:      "rsrss",  // from_rev, from_relpath, parent_rev, parent_relpath, name
	CmdRm:       "rs",     // loc_rev, loc_relpath
	CmdPut:      "rsl",    // loc_rev, loc_relpath, content
	CmdAdd:      "swssl",  // local_nbid, kind, new_parent_nbid, name, content
	CmdCopyOne:  "srsssl", // local_nbid, src_rev, src_nbid, new_parent_nbid, name, content
	CmdCopyTree: "rsss",   // src_rev, src_nbid, new_parent_nbid, name
	CmdDelete:   "rs",     // since_rev, nbid
	CmdAlter:    "rsssl",  // since_rev, nbid, new_parent_nbid, name, content
	CmdComplete: "",
	CmdAbort:    "",
}

// FormatFor returns the expected parameter-tuple format for command, so
// that callers decoding a command's params (internal/ratreed's handler
// table) and Validate share one table rather than keeping two format
// strings in sync by hand.
func FormatFor(command string) (string, bool) {
	f, ok := formats[command]
	return f, ok
}

// Validate reports whether format is what command expects. Unknown
// commands are a validation error, not silently ignored, since an
// unrecognized edit command indicates a protocol mismatch rather than a
// forward-compatible extension.
func Validate(command, format string) error {
	logging.Debugf("schema.Validate command=%s format=%s", command, format)
	want, ok := formats[command]
	if !ok {
		logging.Errf("schema.Validate unknown command=%s", command)
		return ValidationError{Command: command, Got: format, Want: "<unknown command>"}
	}
	if format != want {
		logging.Errf("schema.Validate mismatch command=%s got=%s want=%s", command, format, want)
		return ValidationError{Command: command, Got: format, Want: want}
	}
	return nil
}

// Commands lists every command Validate recognizes.
func Commands() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	return names
}
