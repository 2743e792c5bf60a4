package sentrynative

import (
	"strings"
	"sync"

	"github.com/opd-ai/sentrynative/native"
)

// Backend selects the crash-capture mechanism.
type Backend int

const (
	// BackendDefault lets the engine pick the platform default.
	BackendDefault Backend = iota
	// BackendInproc uses an in-process signal handler.
	BackendInproc
	// BackendCrashpad uses the out-of-process crashpad handler; see
	// SetHandlerPath.
	BackendCrashpad
	// BackendNone disables crash capture; only API-captured events are
	// reported.
	BackendNone
)

// LoggerFunc receives the engine's debug log output. It may be invoked
// from engine-managed goroutines; implementations must be safe for
// concurrent use.
type LoggerFunc func(level Level, message string)

// Options stages the client configuration. All values are accumulated on
// the caller's side and handed to the native engine in one atomic step by
// Init; the engine never observes a partially configured state.
//
// A successful Init consumes the Options: every later setter call fails
// with a StateError. Options may be shared across goroutines.
//
// Example:
//
//	options := sentrynative.NewOptions()
//	if err := options.SetDSN("https://key@example.com/1"); err != nil {
//	    log.Fatal(err)
//	}
//	options.SetRelease("my-app@1.4.0")
//
//	guard, err := sentrynative.Init(options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer guard.Shutdown()
type Options struct {
	mu       sync.Mutex
	consumed bool

	dsn                 string
	release             string
	environment         string
	dist                string
	sampleRate          float64
	debug               bool
	backend             Backend
	transport           Transport
	requireUserConsent  bool
	maxBreadcrumbs      int
	autoSessionTracking bool
	databasePath        string
	handlerPath         string
	attachments         []string
	systemCrashReporter bool
	logger              LoggerFunc
	initialConsent      Consent
}

// NewOptions creates Options with the engine defaults.
func NewOptions() *Options {
	return &Options{
		sampleRate:     1.0,
		maxBreadcrumbs: 100,
		databasePath:   ".sentry-native",
	}
}

// set runs fn under the options lock unless the options were already
// consumed by Init.
func (o *Options) set(op string, fn func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.consumed {
		return &StateError{Op: op, State: "options consumed by Init"}
	}
	fn()
	return nil
}

// checkString rejects values the native string representation cannot
// carry.
func checkString(field, value string) error {
	if strings.ContainsRune(value, '\x00') {
		return &ConfigError{Field: field, Reason: "contains embedded NUL byte"}
	}
	return nil
}

// SetDSN sets the DSN envelopes are addressed to. An empty DSN disables
// sending.
func (o *Options) SetDSN(dsn string) error {
	if err := checkString("dsn", dsn); err != nil {
		return err
	}
	return o.set("SetDSN", func() { o.dsn = dsn })
}

// DSN returns the staged DSN.
func (o *Options) DSN() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dsn
}

// SetRelease sets the release identifier attached to events.
func (o *Options) SetRelease(release string) error {
	if err := checkString("release", release); err != nil {
		return err
	}
	return o.set("SetRelease", func() { o.release = release })
}

// Release returns the staged release identifier.
func (o *Options) Release() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.release
}

// SetEnvironment sets the environment attached to events.
func (o *Options) SetEnvironment(environment string) error {
	if err := checkString("environment", environment); err != nil {
		return err
	}
	return o.set("SetEnvironment", func() { o.environment = environment })
}

// Environment returns the staged environment.
func (o *Options) Environment() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.environment
}

// SetDistribution sets the distribution attached to events.
func (o *Options) SetDistribution(dist string) error {
	if err := checkString("distribution", dist); err != nil {
		return err
	}
	return o.set("SetDistribution", func() { o.dist = dist })
}

// SetSampleRate sets the event sample rate, a value between 0.0 and 1.0.
func (o *Options) SetSampleRate(rate float64) error {
	if rate < 0.0 || rate > 1.0 {
		return &ConfigError{Field: "sample rate", Reason: "outside of the range 0.0 to 1.0"}
	}
	return o.set("SetSampleRate", func() { o.sampleRate = rate })
}

// SampleRate returns the staged sample rate.
func (o *Options) SampleRate() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sampleRate
}

// SetDebug toggles engine debug logging; see SetLogger.
func (o *Options) SetDebug(debug bool) error {
	return o.set("SetDebug", func() { o.debug = debug })
}

// Debug returns the staged debug flag.
func (o *Options) Debug() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.debug
}

// SetBackend selects the crash-capture backend.
func (o *Options) SetBackend(backend Backend) error {
	if backend < BackendDefault || backend > BackendNone {
		return &ConfigError{Field: "backend", Reason: "unknown backend selector"}
	}
	return o.set("SetBackend", func() { o.backend = backend })
}

// SetTransport installs a custom transport invoked for every outgoing
// envelope. The transport must be safe for concurrent Send calls; the
// engine delivers envelopes from several of its own goroutines. Ownership
// of the transport passes to the engine at Init and it is released only
// after the engine's own teardown.
func (o *Options) SetTransport(transport Transport) error {
	return o.set("SetTransport", func() { o.transport = transport })
}

// SetConsent stages the initial consent state applied at Init. It takes
// precedence over the consent the engine persisted under the database
// path. Post-init changes go through the package-level SetConsent.
func (o *Options) SetConsent(consent Consent) error {
	if consent < ConsentUnknown || consent > ConsentGiven {
		return &ConfigError{Field: "consent", Reason: "unknown consent state"}
	}
	return o.set("SetConsent", func() { o.initialConsent = consent })
}

// SetRequireUserConsent gates envelope dispatch on user consent; see
// SetConsent.
func (o *Options) SetRequireUserConsent(required bool) error {
	return o.set("SetRequireUserConsent", func() { o.requireUserConsent = required })
}

// RequireUserConsent returns the staged consent requirement.
func (o *Options) RequireUserConsent() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.requireUserConsent
}

// SetMaxBreadcrumbs caps the number of breadcrumbs retained per event.
func (o *Options) SetMaxBreadcrumbs(max int) error {
	if max < 0 {
		return &ConfigError{Field: "max breadcrumbs", Reason: "must not be negative"}
	}
	return o.set("SetMaxBreadcrumbs", func() { o.maxBreadcrumbs = max })
}

// SetAutoSessionTracking makes Init start a release health session and
// shutdown end it.
func (o *Options) SetAutoSessionTracking(enabled bool) error {
	return o.set("SetAutoSessionTracking", func() { o.autoSessionTracking = enabled })
}

// SetDatabasePath sets the directory the engine persists state under
// (consent, queued crash reports). Created by Init if missing.
func (o *Options) SetDatabasePath(path string) error {
	if err := checkString("database path", path); err != nil {
		return err
	}
	return o.set("SetDatabasePath", func() { o.databasePath = path })
}

// SetHandlerPath sets the path of the crashpad handler executable. Only
// meaningful with BackendCrashpad.
func (o *Options) SetHandlerPath(path string) error {
	if err := checkString("handler path", path); err != nil {
		return err
	}
	return o.set("SetHandlerPath", func() { o.handlerPath = path })
}

// AddAttachment registers a file to be sent along with crash reports.
func (o *Options) AddAttachment(path string) error {
	if err := checkString("attachment path", path); err != nil {
		return err
	}
	return o.set("AddAttachment", func() { o.attachments = append(o.attachments, path) })
}

// SetSystemCrashReporter forwards crashes to the system crash reporter in
// addition to the engine's own handling.
func (o *Options) SetSystemCrashReporter(enabled bool) error {
	return o.set("SetSystemCrashReporter", func() { o.systemCrashReporter = enabled })
}

// SetLogger installs a callback receiving the engine's debug log. Only
// effective together with SetDebug(true). Panics inside the callback are
// contained and logged; they never reach the engine.
func (o *Options) SetLogger(logger LoggerFunc) error {
	return o.set("SetLogger", func() { o.logger = logger })
}

// consume marks the options as taken by Init and returns the native
// configuration built from the staged values, plus a cleanup function that
// reclaims the transport handle if the engine ends up rejecting the
// configuration. The caller must hold no expectation of using the Options
// afterwards.
func (o *Options) consume() (*native.Options, func(), error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.consumed {
		return nil, nil, &StateError{Op: "Init", State: "options consumed by Init"}
	}

	raw := native.OptionsNew()
	native.OptionsSetDSN(raw, o.dsn)
	native.OptionsSetRelease(raw, o.release)
	native.OptionsSetEnvironment(raw, o.environment)
	native.OptionsSetDist(raw, o.dist)
	native.OptionsSetSampleRate(raw, o.sampleRate)
	native.OptionsSetDebug(raw, o.debug)
	native.OptionsSetBackend(raw, native.Backend(o.backend))
	native.OptionsSetRequireUserConsent(raw, o.requireUserConsent)
	native.OptionsSetMaxBreadcrumbs(raw, o.maxBreadcrumbs)
	native.OptionsSetAutoSessionTracking(raw, o.autoSessionTracking)
	native.OptionsSetDatabasePath(raw, o.databasePath)
	native.OptionsSetHandlerPath(raw, o.handlerPath)
	for _, attachment := range o.attachments {
		native.OptionsAddAttachment(raw, attachment)
	}
	native.OptionsSetSystemCrashReporterEnabled(raw, o.systemCrashReporter)
	native.OptionsSetUserConsent(raw, native.UserConsent(o.initialConsent))
	if o.logger != nil {
		native.OptionsSetLogger(raw, containLogger(o.logger))
	}
	cleanup := func() {}
	if o.transport != nil {
		transport, release := bindTransport(o.transport, o)
		native.OptionsSetTransport(raw, transport)
		cleanup = release
	}

	o.consumed = true
	return raw, cleanup, nil
}

// unconsume reverts a consume after the native engine rejected the
// configuration, so the caller can fix the options and retry.
func (o *Options) unconsume() {
	o.mu.Lock()
	o.consumed = false
	o.mu.Unlock()
}
