// Package bridge owns the orchestrator session: the signal loop, its
// handlers, and every outbound message.
//
// Ownership boundary:
// - Start/Terminate lifecycle of one orchestrator session
// - run-tool handling: payload read, tool wait, marshalling, invocation
// - progress reporting while a tool runs
// - outcome and error messages
//
// Lifecycle order:
// - Start -> AwaitingSignal -> (handler -> AwaitingSignal)* -> Terminated
//
// - Terminated is reached by a Terminate signal, an unknown signal, a closed
//   inbound stream, or a fatal wire error. It is never left.
//
// All outbound writes go through one mutex held for signal, payload and flush,
// so the progress goroutine can never split another message.
package bridge
