package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypes(t *testing.T) {
	tests := []struct {
		event interface{ GetType() EventType }
		want  EventType
	}{
		{ExecutionStarted{}, ExecutionStartedEvent},
		{NodeStarted{}, NodeStartedEvent},
		{NodeCompleted{}, NodeCompletedEvent},
		{ExecutionCompleted{}, ExecutionCompletedEvent},
		{ExecutionFailed{}, ExecutionFailedEvent},
		{WorkflowSaved{}, WorkflowSavedEvent},
		{WorkflowDeleted{}, WorkflowDeletedEvent},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.event.GetType())
	}
}

func TestNodeCompleted_JSONShape(t *testing.T) {
	event := NodeCompleted{
		BaseEvent: BaseEvent{
			ID:         "evt-1",
			Type:       NodeCompletedEvent,
			Timestamp:  time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			WorkflowID: "wf-1",
		},
		ExecutionID: "exec-1",
		NodeID:      "n1",
		SkillID:     "research-assistant",
		Outputs:     map[string]string{"findings": "[Findings from research-assistant]"},
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, "node.completed", decoded["type"])
	assert.Equal(t, "wf-1", decoded["workflow_id"])
	assert.Equal(t, "n1", decoded["node_id"])
	assert.NotContains(t, decoded, "metadata")
}
