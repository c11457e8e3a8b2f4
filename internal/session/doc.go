// Package session drives a live trace session.
//
// Live owns the session: it allocates the trace store, installs the signal
// guard and binds the store to Options.DirName. It then hands over to one of
// two paths:
//   - Launcher lists event sources (--list-event).
//   - Sequencer runs record, report (--report) and replay in that order.
//
// Phase statuses combine with CombineStatus: the first failure is the final
// status, later phases still run. With Options.Nop only record runs.
//
// Between record and replay, Options.ResetCaptureOnly drops the filter,
// depth, disabled and threshold options so replay does not apply them again.
//
// The trace store is removed on every exit path: Sequencer removes it after
// the last phase, Live closes it again on return (a no-op by then) and the
// signal guard removes it when a fatal signal arrives.
package session
