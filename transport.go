package sentrynative

import (
	"sync"
	"time"
	"unsafe"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/sentrynative/native"
)

// Transport delivers outgoing envelopes. Implementations are invoked from
// engine-managed goroutines, several at a time; Send must be safe for
// concurrent use.
//
// Send receives a borrowed Envelope that is only valid until Send returns.
// To process it later (for example on a delivery queue of its own), a
// transport promotes it with Envelope.Take.
//
// A transport may additionally implement TransportStartup and
// TransportShutdown to hook engine startup and teardown.
type Transport interface {
	Send(envelope Envelope)
}

// TransportStartup is implemented by transports that want a one-time
// startup call. Startup runs during Init, after the engine accepted the
// configuration and before any envelope is dispatched.
type TransportStartup interface {
	Startup(options *Options)
}

// TransportShutdown is implemented by transports that need to flush
// pending work during engine teardown. Shutdown should try to flush all
// pending envelopes within the timeout and report whether it managed to.
type TransportShutdown interface {
	Shutdown(timeout time.Duration) bool
}

// transportState is the pointee behind the opaque state pointer handed to
// the native engine. The engine only ever sees an integer handle; the Go
// object stays in the registry below until the engine's free callback
// runs.
type transportState struct {
	transport Transport
	options   *Options
}

// Registry mapping opaque handles to transport state. The native engine
// holds the handle from Init until its free callback; entries leave the
// map only through bridgeFree.
var (
	transportHandles = make(map[int]*transportState)
	nextTransportID  = 1
	transportMu      sync.Mutex
)

// bindTransport converts a Transport into the engine's four-callback
// descriptor. The returned release function reclaims the state handle and
// must be called if, and only if, the engine never took ownership of the
// descriptor (that is, Init failed).
func bindTransport(transport Transport, options *Options) (*native.Transport, func()) {
	transportMu.Lock()
	id := nextTransportID
	nextTransportID++
	transportHandles[id] = &transportState{transport: transport, options: options}
	transportMu.Unlock()

	handle := new(int)
	*handle = id
	state := unsafe.Pointer(handle)

	raw := native.TransportNew(bridgeSend)
	native.TransportSetState(raw, state)
	native.TransportSetStartupFunc(raw, bridgeStartup)
	native.TransportSetShutdownFunc(raw, bridgeShutdown)
	native.TransportSetFreeFunc(raw, bridgeFree)

	return raw, func() { bridgeFree(state) }
}

// lookupTransport resolves the opaque state pointer back to the registered
// transport. Returns nil for handles already reclaimed by bridgeFree.
func lookupTransport(state unsafe.Pointer) *transportState {
	if state == nil {
		return nil
	}
	id := *(*int)(state)

	transportMu.Lock()
	defer transportMu.Unlock()
	return transportHandles[id]
}

// bridgeSend is the send entry point registered with the engine. It wraps
// the native envelope in a borrowed view, forwards it to the caller's
// transport and revokes the view when the callback returns. Panics in the
// caller's code are contained here; the engine always sees a clean return
// and the envelope counts as dropped.
func bridgeSend(raw *native.Envelope, state unsafe.Pointer) {
	ts := lookupTransport(state)
	if ts == nil {
		return
	}

	envelope, invalidate := borrowEnvelope(raw)
	defer invalidate()
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"function": "bridgeSend",
				"event_id": envelope.EventID(),
				"panic":    r,
			}).Error("Transport Send panicked, envelope dropped")
		}
	}()

	ts.transport.Send(envelope)
}

// bridgeStartup forwards the engine's startup call to transports that
// implement TransportStartup.
func bridgeStartup(_ *native.Options, state unsafe.Pointer) {
	ts := lookupTransport(state)
	if ts == nil {
		return
	}
	starter, ok := ts.transport.(TransportStartup)
	if !ok {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"function": "bridgeStartup",
				"panic":    r,
			}).Error("Transport Startup panicked")
		}
	}()

	starter.Startup(ts.options)
}

// bridgeShutdown forwards the engine's flush request to transports that
// implement TransportShutdown. A panicking transport counts as timed out.
func bridgeShutdown(timeoutMillis uint64, state unsafe.Pointer) (flushed bool) {
	ts := lookupTransport(state)
	if ts == nil {
		return true
	}
	flusher, ok := ts.transport.(TransportShutdown)
	if !ok {
		return true
	}

	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"function": "bridgeShutdown",
				"panic":    r,
			}).Error("Transport Shutdown panicked")
			flushed = false
		}
	}()

	return flusher.Shutdown(time.Duration(timeoutMillis) * time.Millisecond)
}

// bridgeFree reclaims the transport handle. This is the engine's last call
// on the descriptor; afterwards the state pointer is dead and later
// callbacks with it resolve to nothing.
func bridgeFree(state unsafe.Pointer) {
	if state == nil {
		return
	}
	id := *(*int)(state)

	transportMu.Lock()
	delete(transportHandles, id)
	transportMu.Unlock()
}
