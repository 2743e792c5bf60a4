// Package sentrynative is a safe Go layer around a native, globally
// stateful crash-reporting engine.
//
// The engine (package native) exposes a C-shaped surface: process-wide
// initialization and shutdown, a pluggable transport invoked from
// background goroutines, and reference-counted envelope buffers handed
// across that boundary. This package makes that surface safe to use:
// single-initialization semantics, a scoped shutdown guard, fail-fast
// state checking on every mutating call, panic containment at every
// callback crossing, and an ownership type for envelopes that makes
// double-free and use-after-return structurally hard.
//
// Example:
//
//	options := sentrynative.NewOptions()
//	options.SetDSN("https://key@example.com/1")
//	options.SetRelease("my-app@1.4.0")
//
//	guard, err := sentrynative.Init(options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer guard.Shutdown()
//
//	sentrynative.CaptureMessage(sentrynative.LevelError, "app", "something broke")
package sentrynative

import (
	"github.com/opd-ai/sentrynative/native"
)

// Level classifies events and log messages.
type Level int32

const (
	LevelDebug   Level = -1
	LevelInfo    Level = 0
	LevelWarning Level = 1
	LevelError   Level = 2
	LevelFatal   Level = 3
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Consent is the tri-state user consent flag gating data upload when
// Options.SetRequireUserConsent is enabled.
type Consent int

const (
	ConsentUnknown Consent = iota
	ConsentRevoked
	ConsentGiven
)

func (c Consent) String() string {
	switch c {
	case ConsentGiven:
		return "given"
	case ConsentRevoked:
		return "revoked"
	default:
		return "unknown"
	}
}

// SetConsent records the user's consent decision. The change takes effect
// immediately: with consent required and not given, the engine stops
// dispatching new envelopes. Fails with a StateError unless the client is
// initialized; the pre-init consent state is staged through
// Options.SetConsent instead.
func SetConsent(consent Consent) error {
	return withInitialized("SetConsent", func() {
		switch consent {
		case ConsentGiven:
			native.UserConsentGive()
		case ConsentRevoked:
			native.UserConsentRevoke()
		default:
			native.UserConsentReset()
		}
	})
}

// CurrentConsent returns the consent state the engine currently holds.
// ConsentUnknown while the client is not initialized.
func CurrentConsent() Consent {
	return Consent(native.UserConsentGet())
}

// CaptureMessage captures a message event and queues it for delivery
// through the configured transport. Returns the event id, or an empty id
// when the event was sampled out or gated off by consent. Fails with a
// StateError unless the client is initialized.
func CaptureMessage(level Level, logger, message string) (string, error) {
	var eventID string
	err := withInitialized("CaptureMessage", func() {
		eventID = native.CaptureMessage(int32(level), logger, message)
	})
	return eventID, err
}

// StartSession starts a release health session. Fails with a StateError
// unless the client is initialized.
func StartSession() error {
	return withInitialized("StartSession", native.StartSession)
}

// EndSession ends the current release health session. Fails with a
// StateError unless the client is initialized.
func EndSession() error {
	return withInitialized("EndSession", native.EndSession)
}
