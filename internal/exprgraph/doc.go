// Package exprgraph is the symbolic computation layer of the application.
// It builds expression graphs over flat float64 buffers, and evaluates a
// scalar output together with its gradient using reverse-mode automatic
// differentiation.
//
// Graph construction is panic-based: an op constructor panics with a
// *BuildError on shape violations. Callers that assemble graphs from
// untrusted input recover the panic at their boundary (see RecoverBuildError).
package exprgraph
