package core

import "encoding/json"

// Role identifies who produced a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in a conversation. Conversations are ordered and
// append-only; only the loop appends entries.
type Message struct {
	Role Role `json:"role"`

	// Content is the message text. May be empty on assistant messages that
	// only carry tool calls.
	Content string `json:"content"`

	// ToolCalls is the ordered list of tool invocations requested by the
	// model. Only set on assistant messages.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool message back to the call it answers.
	// Only set on tool messages.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// IsError marks a tool message whose content is a structured error
	// payload rather than a successful result.
	IsError bool `json:"is_error,omitempty"`
}

// ToolCall is a structured request emitted by the model naming a tool and
// its arguments. Every ToolCall must be answered by exactly one subsequent
// tool message whose ToolCallID matches ID, before the next model invocation.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// SystemMessage returns a system message with the given text.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserMessage returns a user message with the given text.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage returns an assistant message with the given text and
// optional tool calls.
func AssistantMessage(text string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// ToolMessage returns a tool message answering the call with the given ID.
func ToolMessage(callID, content string, isError bool) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID, IsError: isError}
}
