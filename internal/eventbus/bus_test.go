package eventbus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubSub(t *testing.T) {
	bus := New()
	var received []Event
	var mu sync.Mutex

	bus.Subscribe(TopicAgentAction, func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	})

	bus.Publish(TopicAgentAction, "run-1", "hello")
	bus.Publish(TopicAgentAction, "run-1", "world")
	bus.Publish(TopicToolResult, "run-1", "ignored")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	assert.Equal(t, "hello", received[0].Payload)
	assert.Equal(t, "world", received[1].Payload)
	assert.Equal(t, "run-1", received[0].RunID)
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestSubscribeAll(t *testing.T) {
	bus := New()
	var topics []Topic

	bus.SubscribeAll(func(e Event) { topics = append(topics, e.Topic) })

	bus.Publish(TopicRunStart, "r", nil)
	bus.Publish(TopicAgentFinish, "r", nil)

	assert.Equal(t, []Topic{TopicRunStart, TopicAgentFinish}, topics)
}

func TestMultipleSubscribers(t *testing.T) {
	bus := New()
	count := 0

	for i := 0; i < 3; i++ {
		bus.Subscribe(TopicError, func(e Event) { count++ })
	}

	bus.Publish(TopicError, "", "test")
	assert.Equal(t, 3, count)
}

func TestNilBusAndUnsubscribedTopic(t *testing.T) {
	var nilBus *Bus
	assert.NotPanics(t, func() { nilBus.Publish(TopicError, "", "x") })
	assert.NotPanics(t, func() { New().Publish(TopicAgentStop, "", "no subscribers") })
}
