package native

// Backend identifies the crash-capture mechanism the engine should use.
type Backend int32

const (
	// BackendDefault picks the platform default.
	BackendDefault Backend = iota
	// BackendInproc captures crashes with an in-process signal handler.
	BackendInproc
	// BackendCrashpad captures crashes with an out-of-process handler
	// executable, configured through OptionsSetHandlerPath.
	BackendCrashpad
	// BackendNone disables crash capture entirely; only events captured
	// through the API are reported.
	BackendNone
)

// LoggerFunc receives the engine's own debug log lines. It is invoked from
// engine-managed goroutines.
type LoggerFunc func(level int32, message string)

// Options is the engine configuration. It is built with OptionsNew and the
// OptionsSet functions and consumed by Init; the engine takes ownership of
// it at that point.
type Options struct {
	dsn                 string
	release             string
	environment         string
	dist                string
	sampleRate          float64
	debug               bool
	backend             Backend
	transport           *Transport
	requireUserConsent  bool
	maxBreadcrumbs      int
	autoSessionTracking bool
	databasePath        string
	handlerPath         string
	attachments         []string
	systemCrashReporter bool
	logger              LoggerFunc
	initialConsent      UserConsent
}

// OptionsNew creates a configuration with engine defaults.
func OptionsNew() *Options {
	return &Options{
		sampleRate:     1.0,
		maxBreadcrumbs: 100,
		databasePath:   ".sentry-native",
	}
}

// OptionsSetDSN sets the DSN envelopes are addressed to. An empty DSN
// disables sending but Init still succeeds.
func OptionsSetDSN(o *Options, dsn string) {
	o.dsn = dsn
}

// OptionsGetDSN returns the configured DSN.
func OptionsGetDSN(o *Options) string {
	return o.dsn
}

// OptionsSetRelease sets the release identifier attached to events.
func OptionsSetRelease(o *Options, release string) {
	o.release = release
}

// OptionsSetEnvironment sets the environment attached to events.
func OptionsSetEnvironment(o *Options, environment string) {
	o.environment = environment
}

// OptionsSetDist sets the distribution attached to events.
func OptionsSetDist(o *Options, dist string) {
	o.dist = dist
}

// OptionsSetSampleRate sets the event sample rate. The value is used as
// given; range validation belongs to the caller.
func OptionsSetSampleRate(o *Options, rate float64) {
	o.sampleRate = rate
}

// OptionsSetDebug toggles engine debug logging.
func OptionsSetDebug(o *Options, debug bool) {
	o.debug = debug
}

// OptionsSetBackend selects the crash-capture backend.
func OptionsSetBackend(o *Options, backend Backend) {
	o.backend = backend
}

// OptionsSetTransport installs a custom transport descriptor. The engine
// takes ownership of the descriptor and its state at Init.
func OptionsSetTransport(o *Options, t *Transport) {
	o.transport = t
}

// OptionsSetRequireUserConsent makes envelope dispatch conditional on
// consent having been given.
func OptionsSetRequireUserConsent(o *Options, required bool) {
	o.requireUserConsent = required
}

// OptionsSetMaxBreadcrumbs caps the number of breadcrumbs retained per
// event.
func OptionsSetMaxBreadcrumbs(o *Options, max int) {
	o.maxBreadcrumbs = max
}

// OptionsSetAutoSessionTracking makes Init start a session and Shutdown
// end it.
func OptionsSetAutoSessionTracking(o *Options, enabled bool) {
	o.autoSessionTracking = enabled
}

// OptionsSetDatabasePath sets the directory the engine persists state
// under (consent, queued reports).
func OptionsSetDatabasePath(o *Options, path string) {
	o.databasePath = path
}

// OptionsSetHandlerPath sets the path of the out-of-process crash handler
// executable used by the crashpad backend.
func OptionsSetHandlerPath(o *Options, path string) {
	o.handlerPath = path
}

// OptionsAddAttachment registers a file to be sent along with crash
// reports.
func OptionsAddAttachment(o *Options, path string) {
	o.attachments = append(o.attachments, path)
}

// OptionsSetSystemCrashReporterEnabled forwards crashes to the system
// crash reporter in addition to the engine's own handling.
func OptionsSetSystemCrashReporterEnabled(o *Options, enabled bool) {
	o.systemCrashReporter = enabled
}

// OptionsSetLogger installs a callback for the engine's debug log. Only
// effective together with OptionsSetDebug.
func OptionsSetLogger(o *Options, logger LoggerFunc) {
	o.logger = logger
}

// OptionsSetUserConsent stages an initial consent state applied at Init.
// It takes precedence over the consent persisted under the database path.
func OptionsSetUserConsent(o *Options, consent UserConsent) {
	o.initialConsent = consent
}
