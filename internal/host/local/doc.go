// Package local is a host session backed by a project file, a directory of
// tool manifests and a SQLite logbook. Tools run as child processes.
//
// Ownership boundary:
// - project and data bank resolution
// - toolbox scanning and namespace registry
// - tool process execution and its stdout conventions
// - run-history purge and restart
//
// Tool stdout conventions:
// - "##progress <current> <low> <high>" updates live progress
// - "##result <text>" sets the return value
// - any other line is console output
package local
