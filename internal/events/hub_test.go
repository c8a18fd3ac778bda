package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub()

	a := h.Subscribe()
	b := h.Subscribe()
	assert.Equal(t, 2, h.ClientCount())

	h.Publish("one")
	assert.Equal(t, "one", <-a)
	assert.Equal(t, "one", <-b)

	h.Unsubscribe(b)
	assert.Equal(t, 1, h.ClientCount())

	h.Publish("two")
	assert.Equal(t, "two", <-a)
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	// fill the buffer and then some; Publish must never block
	for i := 0; i < 100; i++ {
		h.Publish("evt")
	}
	assert.Equal(t, cap(ch), len(ch))
}

func TestMakeEventEnvelope(t *testing.T) {
	s := MakeEvent("req-1", TypeApplicationMoved, 1, map[string]any{"id": 7})

	var e Event
	require.NoError(t, json.Unmarshal([]byte(s), &e))
	assert.Equal(t, TypeApplicationMoved, e.Type)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, "req-1", e.RequestID)
	assert.False(t, e.At.IsZero())
	assert.JSONEq(t, `{"id":7}`, string(e.Data))
}
