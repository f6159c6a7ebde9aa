package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/n3wth/skillflow/pkg/channels/gochannel"
	"github.com/n3wth/skillflow/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillEventBus_PublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)
	defer func() { _ = bus.Close() }()

	received := make(chan *events.NodeCompleted, 1)
	require.NoError(t, bus.Handle(events.NodeCompletedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.NodeCompleted)

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	err = bus.Publish(ctx, "wf-1", events.NodeStarted{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.NodeStartedEvent, WorkflowID: "wf-1"},
		NodeID:    "n1",
	})
	require.NoError(t, err)

	err = bus.Publish(ctx, "wf-1", events.NodeCompleted{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.NodeCompletedEvent, WorkflowID: "wf-1"},
		NodeID:    "n1",
		SkillID:   "research-assistant",
		Outputs:   map[string]string{"findings": "[Findings from research-assistant]"},
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, "wf-1", event.WorkflowID)
		assert.Equal(t, "n1", event.NodeID)
		assert.Equal(t, "[Findings from research-assistant]", event.Outputs["findings"])
	case <-time.After(2 * time.Second):
		t.Fatal("node.completed event was not delivered")
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestWatermillEventBus_HandleUnknownType(t *testing.T) {
	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)
	defer func() { _ = bus.Close() }()

	err = bus.Handle(events.EventType("trigger.fired"), func(context.Context, any) error { return nil })
	require.ErrorIs(t, err, ErrUnknownEventType)
	assert.Contains(t, err.Error(), "trigger.fired")
}
