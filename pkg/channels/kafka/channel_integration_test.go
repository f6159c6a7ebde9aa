package kafka_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/n3wth/skillflow/pkg/channels/kafka"
	"github.com/n3wth/skillflow/pkg/eventbus"
	"github.com/n3wth/skillflow/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaTc "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func startKafka(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("kafka container tests are skipped in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := kafkaTc.Run(ctx, "confluentinc/confluent-local:7.7.0", testcontainers.WithEnv(map[string]string{
		"KAFKA_AUTO_CREATE_TOPICS_ENABLE": "true",
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate Kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	t.Setenv("KAFKA_BROKERS", strings.Join(brokers, ","))
}

func TestCreateChannel_DeliversEvents(t *testing.T) {
	startKafka(t)

	pub, sub, err := kafka.CreateChannel(watermill.NopLogger{}, "skillflow-test")
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	received := make(chan *events.WorkflowSaved, 1)
	require.NoError(t, bus.Handle(events.WorkflowSavedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.WorkflowSaved)

		return nil
	}))

	err = bus.Publish(t.Context(), "wf-kafka", events.WorkflowSaved{
		BaseEvent: events.BaseEvent{
			ID:         bus.GenerateID(),
			Type:       events.WorkflowSavedEvent,
			Timestamp:  time.Now().UTC(),
			WorkflowID: "wf-kafka",
		},
		Name:      "Research Report",
		NodeCount: 2,
	})
	require.NoError(t, err)

	require.NoError(t, bus.Subscribe(t.Context()))

	select {
	case event := <-received:
		assert.Equal(t, "wf-kafka", event.WorkflowID)
		assert.Equal(t, "Research Report", event.Name)
		assert.Equal(t, 2, event.NodeCount)
	case <-time.After(60 * time.Second):
		t.Fatal("workflow.saved event was not delivered")
	}
}
