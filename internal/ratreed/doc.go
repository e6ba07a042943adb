// Package ratreed wires internal/wire's connection, internal/dispatch's
// command loop, and internal/edit's transaction into a server: one
// dispatch.Table of handlers translating wire tuples into
// *edit.Transaction calls, and an accept loop running one such loop per
// connection. Grounded on the teacher's internal/mirage.Service
// (internal/mirage/service.go) for the listener/accept-loop shape.
package ratreed
