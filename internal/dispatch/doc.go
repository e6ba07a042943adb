// Package dispatch runs the per-connection command loop: read a "wl"
// tuple (command word + parameter list), look the word up in a Table,
// invoke its Handler, and report the outcome back over the wire as
// either a success or failure response (spec §4.2). Loop control flow,
// the CmdErr/fatal-error distinction, and the failure-chain wire format
// are ported from svn_ra_svn_handle_commands and its write_cmd_*/
// read_cmd_response siblings in marshal.c.
package dispatch
