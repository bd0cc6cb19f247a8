// Package observe provides observability primitives for the async runtime.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers wire the Observer (or the narrow Events
// interface) into the runner and client packages; the runtime behaves
// identically when observability is absent or no-op.
package observe
