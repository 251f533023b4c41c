package core

// ToolDefinition describes a tool the model may call. Definitions are
// immutable and registered at startup; the set of definitions visible to a
// loop is scoped per loop instance.
type ToolDefinition struct {
	// Name uniquely identifies the tool within a registry.
	Name string

	// Description tells the model what the tool does and when to use it.
	Description string

	// InputSchema is the JSON Schema for the tool's arguments.
	InputSchema map[string]interface{}

	// Terminal marks a tool whose completed result ends the owning loop,
	// returning the result's FinalText as the loop's answer.
	Terminal bool
}

// ToolResult is the outcome of one tool execution.
type ToolResult struct {
	// Success reports whether the handler produced a usable result. A false
	// value is not fatal: the error is surfaced to the model as the tool's
	// output so it can recover.
	Success bool `json:"success"`

	// Data is the JSON-serializable result payload.
	Data interface{} `json:"data,omitempty"`

	// Error describes the failure when Success is false.
	Error string `json:"error,omitempty"`

	// Terminal reports that a terminal tool declared completion. The loop
	// stops immediately and returns FinalText, skipping any unexecuted calls
	// in the same batch.
	Terminal bool `json:"-"`

	// FinalText is the loop's final answer when Terminal is set.
	FinalText string `json:"-"`
}

// OK returns a successful result carrying data.
func OK(data interface{}) *ToolResult {
	return &ToolResult{Success: true, Data: data}
}

// Fail returns a failed result with an error message for the model.
func Fail(msg string) *ToolResult {
	return &ToolResult{Success: false, Error: msg}
}
