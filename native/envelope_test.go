package native

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeSerializeFormat(t *testing.T) {
	env := newEnvelope("abc123",
		envelopeItem{Type: "event", Payload: []byte(`{"message":"hi"}`)})
	defer EnvelopeFree(env)

	data, err := EnvelopeSerialize(env)
	require.NoError(t, err)

	lines := strings.Split(string(data), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[0], `"event_id":"abc123"`)
	assert.Contains(t, lines[1], `"type":"event"`)
	assert.Contains(t, lines[1], `"length":16`)
	assert.Equal(t, `{"message":"hi"}`, lines[2])
}

func TestEnvelopeRefcount(t *testing.T) {
	env := newEnvelope("id-1", envelopeItem{Type: "event", Payload: []byte("{}")})

	EnvelopeIncref(env)
	EnvelopeFree(env)

	// One reference left; the envelope is still readable.
	data, err := EnvelopeSerialize(env)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, "id-1", EnvelopeGetEventID(env))

	EnvelopeFree(env)

	_, err = EnvelopeSerialize(env)
	assert.Error(t, err, "serialize after the last free must fail, not read stale data")
	assert.Empty(t, EnvelopeGetEventID(env))
}

func TestEnvelopeNilSafety(t *testing.T) {
	EnvelopeIncref(nil)
	EnvelopeFree(nil)
	assert.Empty(t, EnvelopeGetEventID(nil))
	_, err := EnvelopeSerialize(nil)
	assert.Error(t, err)
}
