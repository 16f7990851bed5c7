package events

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeEvent(t *testing.T) {
	raw := MakeEvent("req-1", TypeRunFinished, 1, map[string]int{"new": 3})

	var e Event
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Equal(t, TypeRunFinished, e.Type)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, "req-1", e.RequestID)
	assert.JSONEq(t, `{"new":3}`, string(e.Data))
	assert.False(t, e.At.IsZero())

	assert.NotContains(t, MakeEvent("", TypePing, 1, nil), "data")
}

func TestHub_FanOutAndDrop(t *testing.T) {
	h := NewHub()
	a, b := h.Subscribe(), h.Subscribe()
	assert.Equal(t, 2, h.Subscribers())

	h.Publish("one")
	assert.Equal(t, "one", <-a)
	assert.Equal(t, "one", <-b)

	// a is never drained past its buffer; publishing must not block
	for i := 0; i < 25; i++ {
		h.Publish(fmt.Sprint(i))
	}
	assert.Len(t, a, cap(a))

	h.Unsubscribe(a)
	h.Unsubscribe(a)
	assert.Equal(t, 1, h.Subscribers())
	h.Unsubscribe(b)
	_, open := <-b
	for open {
		_, open = <-b
	}
	assert.Zero(t, h.Subscribers())
}
