package sentrynative

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelStrings(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "warning", LevelWarning.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "fatal", LevelFatal.String())
	assert.Equal(t, "unknown", Level(42).String())
}

func TestSessionsProduceEnvelopes(t *testing.T) {
	transport := &recordingTransport{}
	options := newTestOptions(t)
	require.NoError(t, options.SetTransport(transport))

	guard, err := Init(options)
	require.NoError(t, err)

	require.NoError(t, StartSession())
	require.NoError(t, EndSession())
	guard.Shutdown()

	// Delivery happens on concurrent workers, so only the set of
	// envelopes is deterministic, not their order.
	require.Equal(t, 2, transport.delivered())
	all := string(transport.envelopes[0]) + string(transport.envelopes[1])
	assert.Contains(t, all, "started")
	assert.Contains(t, all, "exited")
}

func TestAutoSessionTracking(t *testing.T) {
	transport := &recordingTransport{}
	options := newTestOptions(t)
	require.NoError(t, options.SetTransport(transport))
	require.NoError(t, options.SetAutoSessionTracking(true))

	guard, err := Init(options)
	require.NoError(t, err)
	guard.Shutdown()

	require.Equal(t, 2, transport.delivered())
	all := string(transport.envelopes[0]) + string(transport.envelopes[1])
	assert.Contains(t, all, "started")
	assert.Contains(t, all, "exited")
}

func TestEndSessionWithoutStartIsQuiet(t *testing.T) {
	transport := &recordingTransport{}
	options := newTestOptions(t)
	require.NoError(t, options.SetTransport(transport))

	guard, err := Init(options)
	require.NoError(t, err)

	require.NoError(t, EndSession())
	guard.Shutdown()
	assert.Equal(t, 0, transport.delivered())
}

func TestSampleRateZeroDiscardsEverything(t *testing.T) {
	transport := &recordingTransport{}
	options := newTestOptions(t)
	require.NoError(t, options.SetTransport(transport))
	require.NoError(t, options.SetSampleRate(0.0))

	guard, err := Init(options)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		id, err := CaptureMessage(LevelInfo, "sampled", "discard")
		require.NoError(t, err)
		assert.Empty(t, id)
	}
	guard.Shutdown()

	assert.Equal(t, 0, transport.delivered())
}

func TestEventPayloadCarriesMetadata(t *testing.T) {
	transport := &recordingTransport{}
	options := newTestOptions(t)
	require.NoError(t, options.SetTransport(transport))
	require.NoError(t, options.SetRelease("my-app@1.4.0"))
	require.NoError(t, options.SetEnvironment("staging"))

	guard, err := Init(options)
	require.NoError(t, err)

	_, err = CaptureMessage(LevelWarning, "metadata", "tagged event")
	require.NoError(t, err)
	guard.Shutdown()

	require.Equal(t, 1, transport.delivered())
	payload := string(transport.envelopes[0])
	assert.Contains(t, payload, "my-app@1.4.0")
	assert.Contains(t, payload, "staging")
	assert.Contains(t, payload, "tagged event")
}

func TestHandlePanicCapturesAndRepanics(t *testing.T) {
	transport := &recordingTransport{}
	options := newTestOptions(t)
	require.NoError(t, options.SetTransport(transport))

	guard, err := Init(options)
	require.NoError(t, err)

	var repanicked interface{}
	func() {
		defer func() { repanicked = recover() }()
		defer HandlePanic()
		panic("boom")
	}()

	guard.Shutdown()

	assert.Equal(t, "boom", repanicked, "panic must be re-raised after capture")
	require.Equal(t, 1, transport.delivered())
	assert.Contains(t, string(transport.envelopes[0]), "boom")
}

func TestHandlePanicWithoutPanicIsNoop(t *testing.T) {
	func() {
		defer HandlePanic()
	}()
}

func TestDebugLoggerReceivesEngineOutput(t *testing.T) {
	var mu sync.Mutex
	var messages []string

	options := newTestOptions(t)
	require.NoError(t, options.SetDebug(true))
	require.NoError(t, options.SetLogger(func(level Level, message string) {
		mu.Lock()
		messages = append(messages, fmt.Sprintf("[%s] %s", level, message))
		mu.Unlock()
	}))

	guard, err := Init(options)
	require.NoError(t, err)
	guard.Shutdown()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, messages)
	assert.True(t, strings.Contains(messages[0], "initialized"))
}

func TestPanickingLoggerIsContained(t *testing.T) {
	options := newTestOptions(t)
	require.NoError(t, options.SetDebug(true))
	require.NoError(t, options.SetLogger(func(Level, string) {
		panic("logger boom")
	}))

	guard, err := Init(options)
	require.NoError(t, err, "a panicking logger must not break init")
	guard.Shutdown()
}
