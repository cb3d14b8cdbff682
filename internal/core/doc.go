// Package core provides the business logic for payroll CSV transformation.
//
// This package contains all domain logic independent of any UI or transport
// layer. It is used by the web server, the CLI and tests without modification.
//
// # Pipeline
//
// A payroll export flows through three stages:
//
//  1. [Decode] turns the uploaded bytes into [InputRow] values plus
//     non-fatal [DecodeError] diagnostics.
//  2. [Pipeline.Transform] filters blank rows, censors SSNs, rewrites
//     names to "Last, First", sorts by name, applies [OverrideRule]s and
//     yields [PayrollRow] values.
//  3. [Encoder] writes the rows followed by the sign-off [TrailerRow].
//
// The transform stage is synchronous and does no I/O. [Service] wraps the
// three stages, bounds concurrent uploads, and holds the current result
// set, replacing it wholesale on every accepted file.
//
// # Override Rules
//
// [DefaultRules] forces K. Compton's hours to "40.0". Other rules can be
// loaded from YAML with [LoadRules]:
//
//	rules:
//	  - name: compton-full-time
//	    match: contains
//	    pattern: "compton, k"
//	    field: Hours Per Week
//	    value: "40.0"
//
// # Error Handling
//
// Nothing inside the transform stage fails. Errors from decoding, encoding
// and the upload limiter are mapped to user messages with [MapError].
package core
