package hub

import (
	"fmt"
	"testing"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	return log
}

func TestConnectAssignsUniqueIDs(t *testing.T) {
	h := New(8, testLogger(t))

	a := h.Connect()
	b := h.Connect()

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, h.Count())
}

func TestSendToDeliversInOrder(t *testing.T) {
	h := New(8, testLogger(t))
	sub := h.Connect()

	for i := 0; i < 5; i++ {
		ok := h.SendTo(sub.ID, dto.NewEvent(dto.EventLog, "AAPL", dto.LogPayload{Message: fmt.Sprintf("m%d", i)}))
		require.True(t, ok)
	}

	for i := 0; i < 5; i++ {
		ev, ok := sub.Receive(time.Second)
		require.True(t, ok)
		payload := ev.Payload.(dto.LogPayload)
		assert.Equal(t, fmt.Sprintf("m%d", i), payload.Message)
	}
}

func TestSendToUnknownSubscriber(t *testing.T) {
	h := New(8, testLogger(t))
	assert.False(t, h.SendTo("nope", dto.NewEvent(dto.EventLog, "", nil)))
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	h := New(8, testLogger(t))
	a := h.Connect()
	b := h.Connect()

	h.Broadcast(dto.NewEvent(dto.EventComplete, "AAPL", nil))

	for _, sub := range []*Subscriber{a, b} {
		ev, ok := sub.Receive(time.Second)
		require.True(t, ok)
		assert.Equal(t, dto.EventComplete, ev.Type)
	}
}

func TestDisconnectRemovesSubscriber(t *testing.T) {
	h := New(8, testLogger(t))
	sub := h.Connect()

	h.Disconnect(sub.ID)
	assert.Equal(t, 0, h.Count())
	assert.False(t, h.SendTo(sub.ID, dto.NewEvent(dto.EventLog, "", nil)))

	// Draining after disconnect reports closure.
	_, ok := sub.Receive(10 * time.Millisecond)
	assert.False(t, ok)
}

func TestDisconnectTwiceIsSafe(t *testing.T) {
	h := New(8, testLogger(t))
	sub := h.Connect()
	h.Disconnect(sub.ID)
	h.Disconnect(sub.ID)
	h.Disconnect("unknown")
	assert.Equal(t, 0, h.Count())
}

func TestFullQueueDropsOldestEvent(t *testing.T) {
	h := New(2, testLogger(t))
	sub := h.Connect()

	for i := 0; i < 3; i++ {
		h.SendTo(sub.ID, dto.NewEvent(dto.EventProgress, "AAPL", dto.ProgressPayload{Percent: i}))
	}

	// Oldest (0) dropped; 1 and 2 remain.
	ev, ok := sub.Receive(time.Second)
	require.True(t, ok)
	assert.Equal(t, 1, ev.Payload.(dto.ProgressPayload).Percent)

	ev, ok = sub.Receive(time.Second)
	require.True(t, ok)
	assert.Equal(t, 2, ev.Payload.(dto.ProgressPayload).Percent)
}

func TestReceiveSynthesizesHeartbeat(t *testing.T) {
	h := New(8, testLogger(t))
	sub := h.Connect()

	ev, ok := sub.Receive(10 * time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, dto.EventHeartbeat, ev.Type)
}

func TestReceiveDrainsPendingBeforeGone(t *testing.T) {
	h := New(8, testLogger(t))
	sub := h.Connect()

	require.True(t, h.SendTo(sub.ID, dto.NewEvent(dto.EventFinalResult, "AAPL", nil)))
	h.Disconnect(sub.ID)

	ev, ok := sub.Receive(time.Second)
	require.True(t, ok, "queued event must still be delivered")
	assert.Equal(t, dto.EventFinalResult, ev.Type)

	_, ok = sub.Receive(10 * time.Millisecond)
	assert.False(t, ok)
}
