package sentrynative

import (
	"fmt"
	"sync"
	"testing"
)

// TestThreadedStress hammers the public surface from many goroutines at
// once. Nothing here asserts ordering; the point is that no interleaving
// of mutators, captures and consent flips can corrupt the lifecycle or
// reach the engine in a bad state (run with -race).
func TestThreadedStress(t *testing.T) {
	transport := &recordingTransport{}
	options := newTestOptions(t)
	if err := options.SetTransport(transport); err != nil {
		t.Fatalf("SetTransport failed: %v", err)
	}
	if err := options.SetRequireUserConsent(true); err != nil {
		t.Fatalf("SetRequireUserConsent failed: %v", err)
	}

	guard, err := Init(options)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	ops := []func(i int){
		func(i int) { _ = SetConsent(ConsentGiven) },
		func(i int) { _ = SetConsent(ConsentRevoked) },
		func(i int) { _ = SetConsent(ConsentUnknown) },
		func(i int) { _ = CurrentConsent() },
		func(i int) { _, _ = CaptureMessage(LevelInfo, "stress", fmt.Sprintf("event %d", i)) },
		func(i int) { _ = StartSession() },
		func(i int) { _ = EndSession() },
	}

	var wg sync.WaitGroup
	for _, op := range ops {
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(op func(int), i int) {
				defer wg.Done()
				op(i)
			}(op, i)
		}
	}
	wg.Wait()

	guard.Shutdown()

	if got := transport.shutdowns.Load(); got != 1 {
		t.Errorf("expected exactly one transport shutdown, got %d", got)
	}
}

// TestStressShutdownRace mixes captures with a concurrent shutdown. Late
// captures must fail fast with a StateError instead of racing teardown.
func TestStressShutdownRace(t *testing.T) {
	transport := &recordingTransport{}
	options := newTestOptions(t)
	if err := options.SetTransport(transport); err != nil {
		t.Fatalf("SetTransport failed: %v", err)
	}

	guard, err := Init(options)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Errors are expected once shutdown wins the race; what
			// must not happen is a panic or a deadlock.
			_, _ = CaptureMessage(LevelInfo, "race", fmt.Sprintf("event %d", i))
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		guard.Shutdown()
	}()
	wg.Wait()

	if got := transport.shutdowns.Load(); got != 1 {
		t.Errorf("expected exactly one transport shutdown, got %d", got)
	}
}
