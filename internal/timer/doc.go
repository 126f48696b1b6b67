// Package timer implements the one-shot scheduling service behind the alert
// countdown.
//
// A Scheduler issues cancellable Tokens; cancellation is idempotent and safe
// after the callback has fired, so the state machine can unconditionally
// cancel the prior token before scheduling a new tick. The Real scheduler
// runs on wall-clock delays; Manual fires only on demand and exists for
// deterministic tests.
package timer
