package sentrynative

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// retainingTransport promotes every envelope to owned and keeps it past
// the callback, the way a transport with its own delivery queue would.
type retainingTransport struct {
	mu       sync.Mutex
	owned    []*OwnedEnvelope
	borrowed []Envelope
	takeErrs []error
}

func (r *retainingTransport) Send(envelope Envelope) {
	owned, err := envelope.Take()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.borrowed = append(r.borrowed, envelope)
	if err != nil {
		r.takeErrs = append(r.takeErrs, err)
		return
	}
	r.owned = append(r.owned, owned)
}

func TestEnvelopeTakeOutlivesCallback(t *testing.T) {
	transport := &retainingTransport{}
	options := newTestOptions(t)
	require.NoError(t, options.SetTransport(transport))

	guard, err := Init(options)
	require.NoError(t, err)

	eventID, err := CaptureMessage(LevelError, "retain", "keep me")
	require.NoError(t, err)

	guard.Shutdown()

	require.Empty(t, transport.takeErrs)
	require.Len(t, transport.owned, 1)

	// The owned envelope stays readable after the engine tore down.
	owned := transport.owned[0]
	assert.Equal(t, eventID, owned.EventID())
	data, err := owned.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(data), "keep me")

	owned.Free()
}

func TestBorrowedEnvelopeInvalidAfterCallback(t *testing.T) {
	transport := &retainingTransport{}
	options := newTestOptions(t)
	require.NoError(t, options.SetTransport(transport))

	guard, err := Init(options)
	require.NoError(t, err)

	_, err = CaptureMessage(LevelInfo, "borrow", "short lived")
	require.NoError(t, err)

	guard.Shutdown()
	require.Len(t, transport.borrowed, 1)

	// The callback has long returned; the borrowed view must refuse
	// every operation instead of touching freed native memory.
	stale := transport.borrowed[0]
	_, err = stale.Take()
	assert.ErrorIs(t, err, ErrEnvelopeConsumed)
	_, err = stale.Bytes()
	assert.ErrorIs(t, err, ErrEnvelopeConsumed)
	assert.Empty(t, stale.EventID())

	// The owned copy taken during the callback is unaffected.
	for _, owned := range transport.owned {
		owned.Free()
	}
}

func TestOwnedEnvelopeFreeIdempotent(t *testing.T) {
	transport := &retainingTransport{}
	options := newTestOptions(t)
	require.NoError(t, options.SetTransport(transport))

	guard, err := Init(options)
	require.NoError(t, err)

	_, err = CaptureMessage(LevelInfo, "free", "release once")
	require.NoError(t, err)

	guard.Shutdown()
	require.Len(t, transport.owned, 1)
	owned := transport.owned[0]

	owned.Free()
	owned.Free()
	owned.Free()

	_, err = owned.Bytes()
	assert.ErrorIs(t, err, ErrEnvelopeReleased)
	assert.Empty(t, owned.EventID())
}

func TestOwnedEnvelopeConcurrentFree(t *testing.T) {
	transport := &retainingTransport{}
	options := newTestOptions(t)
	require.NoError(t, options.SetTransport(transport))

	guard, err := Init(options)
	require.NoError(t, err)

	_, err = CaptureMessage(LevelInfo, "race", "free race")
	require.NoError(t, err)

	guard.Shutdown()
	require.Len(t, transport.owned, 1)
	owned := transport.owned[0]

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			owned.Free()
		}()
	}
	wg.Wait()
}
