package models

// NodeExecutionState is the lifecycle state of a node within one run.
type NodeExecutionState string

const (
	NodeStatePending   NodeExecutionState = "pending"
	NodeStateRunning   NodeExecutionState = "running"
	NodeStateCompleted NodeExecutionState = "completed"
	NodeStateError     NodeExecutionState = "error"
)

// InitialInputs holds externally supplied values keyed by node id then input id.
type InitialInputs map[string]map[string]string

// NodeExecutionResult is the committed outcome of one node.
type NodeExecutionResult struct {
	NodeID    string             `json:"nodeId"`
	SkillID   string             `json:"skillId"`
	SkillName string             `json:"skillName"`
	State     NodeExecutionState `json:"state"`
	Inputs    map[string]string  `json:"inputs"`
	Outputs   map[string]string  `json:"outputs"`
	Prompt    string             `json:"prompt"`
	Error     string             `json:"error,omitempty"`
}

// ExecutionState tracks a single run. It is never persisted.
type ExecutionState struct {
	WorkflowID     string                        `json:"workflowId"`
	WorkflowName   string                        `json:"workflowName"`
	IsRunning      bool                          `json:"isRunning"`
	IsComplete     bool                          `json:"isComplete"`
	CurrentNodeID  string                        `json:"currentNodeId,omitempty"`
	NodeStates     map[string]NodeExecutionState `json:"nodeStates"`
	Results        []NodeExecutionResult         `json:"results"`
	CompiledPrompt string                        `json:"compiledPrompt"`
	Error          string                        `json:"error,omitempty"`
}

// Snapshot returns a deep copy safe to hand to observers.
func (s *ExecutionState) Snapshot() *ExecutionState {
	if s == nil {
		return nil
	}

	snap := *s

	snap.NodeStates = make(map[string]NodeExecutionState, len(s.NodeStates))
	for id, state := range s.NodeStates {
		snap.NodeStates[id] = state
	}

	snap.Results = make([]NodeExecutionResult, 0, len(s.Results))
	for _, result := range s.Results {
		r := result
		r.Inputs = copyStrings(result.Inputs)
		r.Outputs = copyStrings(result.Outputs)
		snap.Results = append(snap.Results, r)
	}

	return &snap
}

func copyStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}

// RequiredInput is an input that must be supplied before a run because its
// node has no incoming connections.
type RequiredInput struct {
	NodeID      string `json:"nodeId"`
	NodeName    string `json:"nodeName"`
	InputID     string `json:"inputId"`
	InputName   string `json:"inputName"`
	InputType   IOType `json:"inputType"`
	Description string `json:"description"`
}
