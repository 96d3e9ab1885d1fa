// Package host declares the capabilities the bridge consumes from the
// modelling application it drives.
//
// Ownership boundary:
// - tool registry lookup and tool resolution
// - parameter binding and invocation of one tool
// - optional live progress of a running tool
// - run-history (logbook) maintenance and verbosity
// - toolbox integrity scanning
//
// The bridge never implements these; host/local is one concrete provider.
package host
