// Package native implements the crash-reporting engine behind a C-shaped
// function surface: integer return codes, opaque state pointers and a
// four-callback transport descriptor.
//
// The package mirrors the entry points of a native crash-reporting library
// (configuration constructor and setters, Init/Shutdown, transport
// registration, envelope accessor and free functions, consent setters).
// Callers are expected to go through the safety layer in the parent
// package rather than call into this one directly; the engine performs no
// lifecycle checking of its own and misuse (double Init, mutation after
// Shutdown) is undefined.
//
// Envelopes handed to a transport's send callback are reference counted.
// The engine holds one reference for the duration of the callback; a
// callback that wants to keep an envelope past its own return must take a
// reference with EnvelopeIncref and release it later with EnvelopeFree.
//
// Example:
//
//	opts := native.OptionsNew()
//	native.OptionsSetDSN(opts, "https://key@example.com/1")
//
//	tr := native.TransportNew(func(env *native.Envelope, state unsafe.Pointer) {
//	    data, _ := native.EnvelopeSerialize(env)
//	    fmt.Printf("outgoing envelope: %d bytes\n", len(data))
//	})
//	native.OptionsSetTransport(opts, tr)
//
//	if native.Init(opts) != 0 {
//	    log.Fatal("engine rejected configuration")
//	}
//	defer native.Shutdown()
package native
