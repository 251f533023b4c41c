// Package anthropic adapts the Claude Messages API to the gateway contract.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/tripwise/tripwise-go-sdk/core"
	"github.com/tripwise/tripwise-go-sdk/gateway"
)

const defaultModel = "claude-sonnet-4-20250514"

const defaultMaxTokens = 4096

// Gateway invokes Claude through the official SDK. It is stateless: each
// Invoke sends the full conversation and performs no retries.
type Gateway struct {
	client    *anthropicsdk.Client
	model     string
	maxTokens int64
}

// Option configures the gateway.
type Option func(*Gateway)

// WithModel overrides the Claude model.
func WithModel(model string) Option {
	return func(g *Gateway) {
		g.model = model
	}
}

// WithMaxTokens overrides the maximum response tokens.
func WithMaxTokens(n int64) Option {
	return func(g *Gateway) {
		g.maxTokens = n
	}
}

// New creates a gateway backed by the given Anthropic client.
func New(client *anthropicsdk.Client, opts ...Option) *Gateway {
	g := &Gateway{
		client:    client,
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Invoke sends the conversation and tool set to Claude and returns its turn.
func (g *Gateway) Invoke(ctx context.Context, conversation []core.Message, tools []core.ToolDefinition) (*gateway.Turn, error) {
	system, messages, err := toAPIMessages(conversation)
	if err != nil {
		return nil, &core.GatewayError{Err: err}
	}

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages:  messages,
		System: []anthropicsdk.TextBlockParam{
			{Text: system},
		},
	}
	if len(tools) > 0 {
		params.Tools = toAPITools(tools)
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return nil, &core.GatewayError{Err: err}
	}

	turn := &gateway.Turn{}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			turn.Text += block.Text
		case "tool_use":
			turn.ToolCalls = append(turn.ToolCalls, core.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: json.RawMessage(block.Input),
			})
		}
	}
	// A response carrying neither text nor tool calls is malformed; letting
	// it through would surface an empty string as a final reply.
	if turn.Text == "" && len(turn.ToolCalls) == 0 {
		return nil, &core.GatewayError{Err: fmt.Errorf("response contained no text or tool calls")}
	}
	return turn, nil
}

// toAPIMessages splits the conversation into the system prompt and the
// Messages API turn list. Consecutive tool messages are folded into a single
// user message of tool_result blocks, as the API requires every tool_use to
// be answered in the immediately following user turn.
func toAPIMessages(conversation []core.Message) (string, []anthropicsdk.MessageParam, error) {
	if len(conversation) == 0 {
		return "", nil, fmt.Errorf("conversation is empty")
	}
	if conversation[0].Role != core.RoleSystem {
		return "", nil, fmt.Errorf("conversation must start with a system message, got %q", conversation[0].Role)
	}
	system := conversation[0].Content

	var messages []anthropicsdk.MessageParam
	var pendingResults []anthropicsdk.ContentBlockParamUnion

	flushResults := func() {
		if len(pendingResults) > 0 {
			messages = append(messages, anthropicsdk.NewUserMessage(pendingResults...))
			pendingResults = nil
		}
	}

	for _, msg := range conversation[1:] {
		switch msg.Role {
		case core.RoleUser:
			flushResults()
			messages = append(messages, anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(msg.Content)))

		case core.RoleAssistant:
			flushResults()
			var blocks []anthropicsdk.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropicsdk.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				blocks = append(blocks, anthropicsdk.NewToolUseBlock(call.ID, call.Arguments, call.Name))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropicsdk.NewTextBlock(""))
			}
			messages = append(messages, anthropicsdk.NewAssistantMessage(blocks...))

		case core.RoleTool:
			pendingResults = append(pendingResults,
				anthropicsdk.NewToolResultBlock(msg.ToolCallID, msg.Content, msg.IsError))

		case core.RoleSystem:
			return "", nil, fmt.Errorf("system message only allowed at conversation head")
		}
	}
	flushResults()

	return system, messages, nil
}

func toAPITools(tools []core.ToolDefinition) []anthropicsdk.ToolUnionParam {
	apiTools := make([]anthropicsdk.ToolUnionParam, 0, len(tools))
	for _, def := range tools {
		tool := anthropicsdk.ToolParam{
			Name:        def.Name,
			Description: anthropicsdk.String(def.Description),
			InputSchema: toAPISchema(def.InputSchema),
		}
		apiTools = append(apiTools, anthropicsdk.ToolUnionParam{OfTool: &tool})
	}
	return apiTools
}

func toAPISchema(schema map[string]interface{}) anthropicsdk.ToolInputSchemaParam {
	param := anthropicsdk.ToolInputSchemaParam{}
	if props, ok := schema["properties"]; ok {
		param.Properties = props
	}
	switch req := schema["required"].(type) {
	case []string:
		param.Required = req
	case []interface{}:
		for _, v := range req {
			if s, ok := v.(string); ok {
				param.Required = append(param.Required, s)
			}
		}
	}
	return param
}
