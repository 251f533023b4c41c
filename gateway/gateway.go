// Package gateway defines the model-gateway contract: given an ordered
// conversation and the tool definitions visible to the current loop, return
// either a final reply or a batch of structured tool calls.
//
// The gateway is stateless with respect to the loop and performs no retries;
// a network or malformed-response condition is reported as *core.GatewayError
// and the loop terminates the session.
//
// Implementations:
//   - anthropic: Claude Messages API adapter (production)
//   - mock: scripted or function-driven gateway (tests, offline)
package gateway

import (
	"context"

	"github.com/tripwise/tripwise-go-sdk/core"
)

// Turn is one model response: either final text (no tool calls) or a
// non-empty ordered batch of tool calls with optional accompanying text.
type Turn struct {
	// Text is the assistant's text. When ToolCalls is empty this is the
	// final reply.
	Text string

	// ToolCalls is the ordered batch of tool invocations the model requests.
	ToolCalls []core.ToolCall
}

// Gateway invokes the model service.
type Gateway interface {
	// Invoke sends the conversation and tool set to the model and returns
	// its turn. The conversation must be non-empty and start with a system
	// message. Failures are reported as *core.GatewayError.
	Invoke(ctx context.Context, conversation []core.Message, tools []core.ToolDefinition) (*Turn, error)
}
