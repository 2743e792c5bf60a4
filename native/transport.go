package native

import "unsafe"

// SendFunc delivers one envelope. It is invoked from engine-managed worker
// goroutines, potentially several at a time. The envelope is only
// guaranteed to stay alive for the duration of the call; see EnvelopeIncref.
type SendFunc func(envelope *Envelope, state unsafe.Pointer)

// StartupFunc is invoked exactly once during Init, after the engine has
// accepted the configuration and before any envelope is dispatched.
type StartupFunc func(options *Options, state unsafe.Pointer)

// ShutdownFunc is invoked exactly once during Shutdown. It receives the
// flush timeout in milliseconds and reports whether all pending envelopes
// were sent in time.
type ShutdownFunc func(timeoutMillis uint64, state unsafe.Pointer) bool

// FreeFunc releases the transport state. It is the engine's last use of
// the state pointer; the pointee may be reclaimed by the callee.
type FreeFunc func(state unsafe.Pointer)

// Transport is the descriptor for a custom transport: four callback entry
// points plus one opaque state pointer threaded through all of them.
type Transport struct {
	send     SendFunc
	startup  StartupFunc
	shutdown ShutdownFunc
	free     FreeFunc
	state    unsafe.Pointer
}

// TransportNew creates a transport descriptor around a send callback. The
// remaining hooks default to no-ops and are installed with the
// TransportSet functions.
func TransportNew(send SendFunc) *Transport {
	return &Transport{send: send}
}

// TransportSetState attaches the opaque state pointer passed to every
// callback. Ownership of the pointee transfers to the engine; it is
// released through the free hook, never by the caller.
func TransportSetState(t *Transport, state unsafe.Pointer) {
	t.state = state
}

// TransportSetStartupFunc installs the startup hook.
func TransportSetStartupFunc(t *Transport, startup StartupFunc) {
	t.startup = startup
}

// TransportSetShutdownFunc installs the shutdown hook.
func TransportSetShutdownFunc(t *Transport, shutdown ShutdownFunc) {
	t.shutdown = shutdown
}

// TransportSetFreeFunc installs the state release hook.
func TransportSetFreeFunc(t *Transport, free FreeFunc) {
	t.free = free
}
