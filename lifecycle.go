package sentrynative

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/sentrynative/native"
)

// lifecycleState tracks the process-wide engine state.
type lifecycleState int

const (
	stateUninitialized lifecycleState = iota
	stateInitialized
	stateShuttingDown
)

func (s lifecycleState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateInitialized:
		return "initialized"
	case stateShuttingDown:
		return "shutting down"
	default:
		return "unknown"
	}
}

// The single native engine instance is the one shared resource of this
// package. Every transition and every state-mutating native call goes
// through globalMu; no caller ever observes a half-finished transition.
var (
	globalMu     sync.Mutex
	globalState  = stateUninitialized
	shutdownDone chan struct{}
)

// Init hands the staged configuration to the native engine in one atomic
// step and starts it. On success the Options are consumed and the engine
// may invoke transport callbacks from its own goroutines until shutdown.
//
// The returned Guard owns the shutdown transition: releasing it with
// Guard.Shutdown (typically deferred) tears the engine down exactly once.
//
// Init fails with ErrAlreadyInitialized while a previous initialization is
// live, and with ErrInitFailed when the engine rejects the configuration.
// An ErrInitFailed leaves the Options usable so the caller can correct
// them and retry.
func Init(options *Options) (*Guard, error) {
	if options == nil {
		options = NewOptions()
	}

	globalMu.Lock()
	defer globalMu.Unlock()

	if globalState != stateUninitialized {
		return nil, ErrAlreadyInitialized
	}

	raw, cleanup, err := options.consume()
	if err != nil {
		return nil, err
	}

	if code := native.Init(raw); code != 0 {
		cleanup()
		options.unconsume()
		return nil, fmt.Errorf("%w (code %d)", ErrInitFailed, code)
	}

	globalState = stateInitialized
	logrus.WithField("function", "Init").Debug("Sentry client initialized")
	return &Guard{}, nil
}

// Guard is the single-owner handle produced by a successful Init. Its
// release triggers engine shutdown exactly once, on every exit path:
//
//	guard, err := sentrynative.Init(options)
//	if err != nil {
//	    return err
//	}
//	defer guard.Shutdown()
type Guard struct {
	once sync.Once
}

// Shutdown releases the guard, shutting the engine down and blocking until
// its flush and teardown complete. Safe to call any number of times from
// any goroutine; only the first call does work.
func (g *Guard) Shutdown() {
	g.once.Do(shutdown)
}

// Forget disables the guard without shutting down. The engine then runs
// until the package-level Shutdown is called explicitly.
func (g *Guard) Forget() {
	g.once.Do(func() {})
}

// Shutdown shuts the engine down and forces transports to flush out. It is
// the free-function twin of Guard.Shutdown for callers that used
// Guard.Forget. Idempotent: concurrent and repeated calls coalesce into
// one native teardown, and every caller returns only once the teardown has
// completed.
func Shutdown() {
	shutdown()
}

func shutdown() {
	globalMu.Lock()
	switch globalState {
	case stateUninitialized:
		globalMu.Unlock()
		return
	case stateShuttingDown:
		// Another goroutine is mid-teardown; wait for it so every
		// caller observes completion.
		done := shutdownDone
		globalMu.Unlock()
		if done != nil {
			<-done
		}
		return
	}

	globalState = stateShuttingDown
	done := make(chan struct{})
	shutdownDone = done
	globalMu.Unlock()

	// The native call blocks until the engine's own flush and teardown
	// finish, bounded by the engine's timeout. Mutating calls made in
	// the meantime fail fast on the ShuttingDown state instead of
	// racing the teardown.
	native.Shutdown()

	globalMu.Lock()
	globalState = stateUninitialized
	shutdownDone = nil
	globalMu.Unlock()
	close(done)

	logrus.WithField("function", "Shutdown").Debug("Sentry client shut down")
}

// withInitialized runs fn under the global lock if the engine is live,
// failing fast with a StateError otherwise. This is the gate every
// state-mutating call passes through; it is what keeps misuse from ever
// reaching the native engine in the wrong state.
func withInitialized(op string, fn func()) error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalState != stateInitialized {
		return &StateError{Op: op, State: globalState.String()}
	}
	fn()
	return nil
}
