package native

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync/atomic"
)

// Envelope is one batch of telemetry data ready for transmission. It is
// reference counted; every holder must balance its reference with
// EnvelopeFree. The engine creates envelopes with a single reference that
// it releases itself after the transport's send callback returns.
type Envelope struct {
	eventID string
	items   []envelopeItem

	refs atomic.Int32
}

// envelopeItem is a single typed payload inside an envelope.
type envelopeItem struct {
	Type    string
	Payload []byte
}

// newEnvelope creates an envelope holding one reference.
func newEnvelope(eventID string, items ...envelopeItem) *Envelope {
	e := &Envelope{
		eventID: eventID,
		items:   items,
	}
	e.refs.Store(1)
	return e
}

// EnvelopeGetEventID returns the id of the event embedded in the envelope,
// or an empty string for session-only envelopes.
func EnvelopeGetEventID(e *Envelope) string {
	if e == nil {
		return ""
	}
	return e.eventID
}

// EnvelopeIncref takes an additional reference on the envelope.
func EnvelopeIncref(e *Envelope) {
	if e == nil {
		return
	}
	e.refs.Add(1)
}

// EnvelopeFree releases one reference on the envelope. The payload is
// reclaimed once the last reference is gone; any use after that point is
// undefined.
func EnvelopeFree(e *Envelope) {
	if e == nil {
		return
	}
	if e.refs.Add(-1) == 0 {
		// Poison the payload so misuse surfaces in tests instead of
		// silently reading stale data.
		e.items = nil
		e.eventID = ""
	}
}

// EnvelopeSerialize renders the envelope in the standard envelope wire
// format: a JSON header line followed by a JSON item header and raw
// payload per item.
func EnvelopeSerialize(e *Envelope) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("serialize: nil envelope")
	}
	if e.refs.Load() <= 0 {
		return nil, fmt.Errorf("serialize: envelope already freed")
	}

	var buf bytes.Buffer
	header := map[string]string{}
	if e.eventID != "" {
		header["event_id"] = e.eventID
	}
	head, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("serialize envelope header: %w", err)
	}
	buf.Write(head)
	buf.WriteByte('\n')

	for _, item := range e.items {
		ih, err := json.Marshal(map[string]interface{}{
			"type":   item.Type,
			"length": len(item.Payload),
		})
		if err != nil {
			return nil, fmt.Errorf("serialize envelope item header: %w", err)
		}
		buf.Write(ih)
		buf.WriteByte('\n')
		buf.Write(item.Payload)
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}
