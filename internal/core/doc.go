// Package core drives a mirror run across the owner × kind matrix.
//
// For every requested owner and collection kind a [Fleet] lists the remote
// collection, maps the items to repositories and reconciles each one
// against its local bare mirror, writing sidecar metadata and a journal
// record afterwards. A failure is confined to the smallest unit it touches:
// one item for a mapping error, one repository for a git or metadata
// error, one owner/kind pass for a listing error. The run itself only stops
// when its context is canceled.
//
// # Output
//
// Progress goes to FleetOptions.Out, one line per repository:
//
//	+ repos/kb-dk/site - The public web site
//	! gists/alice/8498...: git fetch: exit status 128: fatal: ...
//
// Diagnostics go to the slog logger, tagged with the run id.
package core
