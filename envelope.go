package sentrynative

import (
	"sync/atomic"

	"github.com/opd-ai/sentrynative/native"
)

// Envelope is a borrowed view of one outgoing report batch, delivered to
// Transport.Send. It stays valid only for the dynamic extent of that call;
// the bridge invalidates it when the callback returns. A transport that
// wants to keep the envelope, for example to queue it for another
// goroutine, must promote it with Take before returning.
type Envelope struct {
	raw   *native.Envelope
	valid *atomic.Bool
}

// borrowEnvelope wraps a native envelope for the duration of a send
// callback. invalidate revokes the view; the returned flag lets the bridge
// do so exactly once per callback.
func borrowEnvelope(raw *native.Envelope) (Envelope, func()) {
	valid := &atomic.Bool{}
	valid.Store(true)
	env := Envelope{raw: raw, valid: valid}
	return env, func() { valid.Store(false) }
}

// EventID returns the id of the event embedded in the envelope, or an
// empty string for envelopes without one (sessions).
func (e Envelope) EventID() string {
	if e.valid == nil || !e.valid.Load() {
		return ""
	}
	return native.EnvelopeGetEventID(e.raw)
}

// Bytes serializes the envelope while it is still borrowed. The returned
// slice is owned by the caller and outlives the envelope.
func (e Envelope) Bytes() ([]byte, error) {
	if e.valid == nil || !e.valid.Load() {
		return nil, ErrEnvelopeConsumed
	}
	return native.EnvelopeSerialize(e.raw)
}

// Take promotes the borrowed envelope to an owned one by bumping the
// native reference count. The owned envelope may cross goroutines and must
// be released exactly once with Free. Take fails with ErrEnvelopeConsumed
// once the originating send callback has returned.
func (e Envelope) Take() (*OwnedEnvelope, error) {
	if e.valid == nil || !e.valid.Load() {
		return nil, ErrEnvelopeConsumed
	}
	native.EnvelopeIncref(e.raw)
	return &OwnedEnvelope{raw: e.raw}, nil
}

// OwnedEnvelope is an envelope the caller holds a reference on. It is safe
// to move across goroutines. Free releases the reference; the release
// happens at most once no matter how often Free is called.
type OwnedEnvelope struct {
	raw      *native.Envelope
	released atomic.Bool
}

// EventID returns the id of the event embedded in the envelope.
func (o *OwnedEnvelope) EventID() string {
	if o.released.Load() {
		return ""
	}
	return native.EnvelopeGetEventID(o.raw)
}

// Bytes serializes the envelope to its wire representation.
func (o *OwnedEnvelope) Bytes() ([]byte, error) {
	if o.released.Load() {
		return nil, ErrEnvelopeReleased
	}
	return native.EnvelopeSerialize(o.raw)
}

// Free releases the caller's reference on the envelope. Calling Free more
// than once is a no-op; the native free function runs exactly once.
func (o *OwnedEnvelope) Free() {
	if !o.released.CompareAndSwap(false, true) {
		return
	}
	native.EnvelopeFree(o.raw)
}
