package native

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UserConsent is the tri-state consent flag gating envelope dispatch.
type UserConsent int32

const (
	ConsentUnknown UserConsent = iota
	ConsentRevoked
	ConsentGiven
)

// Log levels used by the engine and its events.
const (
	LevelDebug   int32 = -1
	LevelInfo    int32 = 0
	LevelWarning int32 = 1
	LevelError   int32 = 2
	LevelFatal   int32 = 3
)

const (
	// Number of worker goroutines delivering envelopes to the transport.
	// Deliberately more than one: transports must tolerate concurrent
	// send callbacks.
	transportConcurrency = 4

	// Capacity of the outgoing envelope queue. Capture drops envelopes
	// instead of blocking once the queue is full.
	queueCapacity = 128

	// Bound on the flush performed during Shutdown.
	shutdownFlushTimeout = 2 * time.Second

	// File under the database path that persists consent across runs.
	consentFileName = "user-consent"
)

// engine is the single running instance. Lifecycle serialization is the
// caller's job; Init and Shutdown must never run concurrently.
type engine struct {
	opts      *Options
	transport *Transport

	queue   chan *Envelope
	workers sync.WaitGroup
	closing atomic.Bool

	consent atomic.Int32

	sessionMu   sync.Mutex
	sessionOpen bool
}

var current atomic.Pointer[engine]

// Init starts the engine with the given configuration, taking ownership of
// it. Returns 0 on success and a non-zero code when the configuration is
// rejected. On success the engine owns background goroutines that invoke
// the transport callbacks until Shutdown.
func Init(opts *Options) int {
	if opts == nil {
		return 1
	}

	if opts.databasePath != "" {
		if err := os.MkdirAll(opts.databasePath, 0o700); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Init",
				"path":     opts.databasePath,
				"error":    err.Error(),
			}).Error("Failed to create database directory")
			return 1
		}
	}
	if opts.backend == BackendCrashpad && opts.handlerPath != "" {
		if _, err := os.Stat(opts.handlerPath); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Init",
				"path":     opts.handlerPath,
				"error":    err.Error(),
			}).Error("Crash handler executable not found")
			return 1
		}
	}

	transport := opts.transport
	if transport == nil {
		transport = builtinTransport()
	}

	e := &engine{
		opts:      opts,
		transport: transport,
		queue:     make(chan *Envelope, queueCapacity),
	}
	consent := loadConsent(opts.databasePath)
	if opts.initialConsent != ConsentUnknown {
		consent = opts.initialConsent
		persistConsent(opts.databasePath, consent)
	}
	e.consent.Store(int32(consent))

	if transport.startup != nil {
		transport.startup(opts, transport.state)
	}

	for i := 0; i < transportConcurrency; i++ {
		e.workers.Add(1)
		go e.deliver()
	}

	current.Store(e)
	e.debugf(LevelDebug, "engine initialized")

	if opts.autoSessionTracking {
		StartSession()
	}

	return 0
}

// Shutdown flushes pending envelopes, tears the transport down and stops
// the engine. It blocks up to the engine's flush timeout; pending
// envelopes past that point are dropped.
func Shutdown() {
	e := current.Swap(nil)
	if e == nil {
		return
	}

	if e.opts.autoSessionTracking {
		e.endSession()
	}

	e.closing.Store(true)
	close(e.queue)

	drained := make(chan struct{})
	go func() {
		e.workers.Wait()
		close(drained)
	}()

	flushed := true
	select {
	case <-drained:
	case <-time.After(shutdownFlushTimeout):
		flushed = false
	}

	if e.transport.shutdown != nil {
		ok := e.transport.shutdown(uint64(shutdownFlushTimeout/time.Millisecond), e.transport.state)
		flushed = flushed && ok
	}
	if e.transport.free != nil {
		e.transport.free(e.transport.state)
	}

	e.debugf(LevelDebug, "engine shut down, flushed=%v", flushed)
}

// deliver is the worker loop handing envelopes to the transport. The
// engine's reference on each envelope is released after the callback
// returns.
func (e *engine) deliver() {
	defer e.workers.Done()
	for env := range e.queue {
		e.transport.send(env, e.transport.state)
		EnvelopeFree(env)
	}
}

// dispatch enqueues an envelope for delivery, dropping it when dispatch is
// gated off or the queue is saturated.
func (e *engine) dispatch(env *Envelope) bool {
	if e.opts.requireUserConsent && UserConsent(e.consent.Load()) != ConsentGiven {
		EnvelopeFree(env)
		return false
	}
	if e.closing.Load() {
		EnvelopeFree(env)
		return false
	}
	select {
	case e.queue <- env:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"function": "dispatch",
			"event_id": env.eventID,
		}).Warn("Envelope queue full, dropping envelope")
		EnvelopeFree(env)
		return false
	}
}

func (e *engine) debugf(level int32, format string, args ...interface{}) {
	if !e.opts.debug {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if e.opts.logger != nil {
		e.opts.logger(level, msg)
		return
	}
	logrus.WithField("source", "native-engine").Debug(msg)
}

// CaptureMessage captures a message event and queues it for delivery.
// Returns the event id, or an empty string when the event was sampled out
// or dispatch is gated off.
func CaptureMessage(level int32, logger, message string) string {
	e := current.Load()
	if e == nil {
		return ""
	}
	if e.opts.sampleRate < 1.0 && rand.Float64() >= e.opts.sampleRate {
		return ""
	}

	eventID := uuid.NewString()
	payload, err := json.Marshal(map[string]interface{}{
		"event_id":    eventID,
		"level":       level,
		"logger":      logger,
		"message":     message,
		"release":     e.opts.release,
		"environment": e.opts.environment,
		"dist":        e.opts.dist,
		"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return ""
	}

	if !e.dispatch(newEnvelope(eventID, envelopeItem{Type: "event", Payload: payload})) {
		return ""
	}
	return eventID
}

// StartSession starts a new release health session.
func StartSession() {
	e := current.Load()
	if e == nil {
		return
	}

	e.sessionMu.Lock()
	e.sessionOpen = true
	e.sessionMu.Unlock()

	e.dispatch(sessionEnvelope("started", e.opts))
}

// EndSession ends the current session, if one is open.
func EndSession() {
	e := current.Load()
	if e == nil {
		return
	}
	e.endSession()
}

func (e *engine) endSession() {
	e.sessionMu.Lock()
	open := e.sessionOpen
	e.sessionOpen = false
	e.sessionMu.Unlock()
	if !open {
		return
	}

	e.dispatch(sessionEnvelope("exited", e.opts))
}

func sessionEnvelope(status string, opts *Options) *Envelope {
	payload, _ := json.Marshal(map[string]interface{}{
		"sid":       uuid.NewString(),
		"status":    status,
		"release":   opts.release,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
	return newEnvelope("", envelopeItem{Type: "session", Payload: payload})
}

// UserConsentGive records that the user consented to data upload.
func UserConsentGive() { setConsent(ConsentGiven) }

// UserConsentRevoke records that the user revoked consent.
func UserConsentRevoke() { setConsent(ConsentRevoked) }

// UserConsentReset resets consent back to unknown.
func UserConsentReset() { setConsent(ConsentUnknown) }

// UserConsentGet returns the current consent state. Unknown while the
// engine is not running.
func UserConsentGet() UserConsent {
	e := current.Load()
	if e == nil {
		return ConsentUnknown
	}
	return UserConsent(e.consent.Load())
}

func setConsent(c UserConsent) {
	e := current.Load()
	if e == nil {
		return
	}
	e.consent.Store(int32(c))
	persistConsent(e.opts.databasePath, c)
}

// loadConsent reads the consent state persisted under the database path.
func loadConsent(databasePath string) UserConsent {
	if databasePath == "" {
		return ConsentUnknown
	}
	data, err := os.ReadFile(filepath.Join(databasePath, consentFileName))
	if err != nil {
		return ConsentUnknown
	}
	switch string(data) {
	case "given":
		return ConsentGiven
	case "revoked":
		return ConsentRevoked
	default:
		return ConsentUnknown
	}
}

func persistConsent(databasePath string, c UserConsent) {
	if databasePath == "" {
		return
	}
	var state string
	switch c {
	case ConsentGiven:
		state = "given"
	case ConsentRevoked:
		state = "revoked"
	default:
		state = "unknown"
	}
	path := filepath.Join(databasePath, consentFileName)
	if err := os.WriteFile(path, []byte(state), 0o600); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "persistConsent",
			"path":     path,
			"error":    err.Error(),
		}).Warn("Failed to persist user consent")
	}
}

// builtinTransport is the fallback used when no custom transport is
// configured. The engine has no network stack of its own, so outgoing
// envelopes are only logged.
func builtinTransport() *Transport {
	return TransportNew(func(env *Envelope, _ unsafe.Pointer) {
		logrus.WithFields(logrus.Fields{
			"transport": "builtin",
			"event_id":  env.eventID,
		}).Debug("Discarding envelope, no transport configured")
	})
}
