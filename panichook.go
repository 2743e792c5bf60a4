package sentrynative

import "fmt"

// HandlePanic captures a panicking goroutine's panic value as a fatal
// event and then resumes the panic. Meant to be deferred near the top of a
// goroutine:
//
//	go func() {
//	    defer sentrynative.HandlePanic()
//	    work()
//	}()
//
// The panic is re-raised after capture, so program behavior is unchanged;
// whether the event actually leaves the process depends on the transport
// flushing before the runtime exits. When in doubt, recover explicitly and
// shut down through the guard.
//
// A no-panic return is a no-op, and capture failures (client not
// initialized) are ignored.
func HandlePanic() {
	r := recover()
	if r == nil {
		return
	}
	_, _ = CaptureMessage(LevelFatal, "panic", fmt.Sprint(r))
	panic(r)
}
