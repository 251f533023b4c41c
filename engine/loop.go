// Package engine contains the bounded tool-calling loop and the tool
// registry it dispatches through. A Loop owns one conversation at a time,
// invokes the model gateway, executes requested tool calls in order, and
// decides when the session is done or must be abandoned.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/tripwise/tripwise-go-sdk/core"
	"github.com/tripwise/tripwise-go-sdk/gateway"
)

// State is the loop's state machine position.
type State int

const (
	// StateAwaitingModel means the loop is about to invoke the gateway.
	StateAwaitingModel State = iota

	// StateExecutingTools means the loop is dispatching a batch of calls.
	StateExecutingTools

	// StateSucceeded means the model produced a final reply, or a terminal
	// tool declared completion.
	StateSucceeded

	// StateExhausted means the iteration budget ran out before completion.
	StateExhausted

	// StateFailed means a fatal condition terminated the session.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAwaitingModel:
		return "awaiting_model"
	case StateExecutingTools:
		return "executing_tools"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ExhaustedMessage is the fixed fallback reply when the iteration budget
// runs out. No partial tool output is ever surfaced in its place.
const ExhaustedMessage = "I could not complete this request within the iteration budget."

// FailedMessage is the generic reply for fatal outcomes. The triggering
// error is logged for operators, never shown verbatim to the end user.
const FailedMessage = "Something went wrong while processing your request."

const defaultMaxIterations = 8

// Loop is the bounded multi-turn state machine. Construct one per tool set
// and iteration budget; each Run owns an independent session, so a single
// Loop may serve concurrent conversations.
type Loop struct {
	gateway       gateway.Gateway
	registry      *ToolRegistry
	maxIterations int
	toolNames     []string
}

// Option configures a Loop.
type Option func(*Loop)

// WithMaxIterations sets the hard bound on model invocations per session.
// The bound exists because model/tool interaction has no halting guarantee;
// a model that keeps requesting tools would otherwise never stop.
func WithMaxIterations(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxIterations = n
		}
	}
}

// WithTools scopes the tool definitions visible to this loop's sessions.
// Without it the loop exposes every registered tool.
func WithTools(names ...string) Option {
	return func(l *Loop) {
		l.toolNames = names
	}
}

// NewLoop creates a loop over the given gateway and registry.
func NewLoop(gw gateway.Gateway, registry *ToolRegistry, opts ...Option) *Loop {
	l := &Loop{
		gateway:       gw,
		registry:      registry,
		maxIterations: defaultMaxIterations,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Result is the outcome of one session.
type Result struct {
	// Text is the final reply: the model's answer on success, the fixed
	// fallback on exhaustion, or the generic failure message.
	Text string

	// Conversation is the full transcript including all appended assistant
	// and tool messages.
	Conversation []core.Message

	// State is the terminal state the session reached.
	State State

	// Iterations counts completed model-invocation/tool-batch rounds.
	Iterations int

	// Err holds the triggering error for StateFailed outcomes. It is meant
	// for operator logs, not for end users.
	Err error
}

// Run drives one session to a terminal state. The conversation must be
// non-empty and start with a single system message; prior turns and the new
// user message follow it.
//
// Cancellation is honored only between iterations: once a tool batch starts,
// in-flight calls run to completion so their side effects are not orphaned.
func (l *Loop) Run(ctx context.Context, conversation []core.Message) (*Result, error) {
	if len(conversation) == 0 {
		return nil, fmt.Errorf("conversation is empty")
	}
	if conversation[0].Role != core.RoleSystem {
		return nil, fmt.Errorf("conversation must start with a system message")
	}

	conv := make([]core.Message, len(conversation))
	copy(conv, conversation)

	tools := l.registry.Definitions(l.toolNames...)
	sessionID := uuid.New().String()
	res := &Result{State: StateAwaitingModel}

	fail := func(err error) (*Result, error) {
		log.Printf("[LOOP] session %s terminated: %v", sessionID, err)
		res.State = StateFailed
		res.Err = err
		res.Text = FailedMessage
		res.Conversation = conv
		return res, nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return fail(fmt.Errorf("session abandoned: %w", err))
		}

		turn, err := l.gateway.Invoke(ctx, conv, tools)
		if err != nil {
			return fail(err)
		}

		if len(turn.ToolCalls) == 0 {
			conv = append(conv, core.AssistantMessage(turn.Text))
			res.State = StateSucceeded
			res.Text = turn.Text
			res.Conversation = conv
			return res, nil
		}

		conv = append(conv, core.AssistantMessage(turn.Text, turn.ToolCalls...))
		res.State = StateExecutingTools

		// Calls in one batch run strictly in the order received, each
		// awaited before the next: later calls may depend on earlier side
		// effects. The batch context outlives caller cancellation so an
		// in-flight call can finish.
		batchCtx := context.WithoutCancel(ctx)
		for _, call := range turn.ToolCalls {
			result, err := l.registry.Dispatch(batchCtx, call)
			if err != nil {
				return fail(err)
			}

			conv = append(conv, core.ToolMessage(call.ID, serializeResult(result), !result.Success))

			if result.Terminal {
				log.Printf("[LOOP] session %s: terminal tool %s declared completion", sessionID, call.Name)
				res.State = StateSucceeded
				res.Text = result.FinalText
				res.Conversation = conv
				return res, nil
			}
		}

		res.Iterations++
		if res.Iterations >= l.maxIterations {
			log.Printf("[LOOP] session %s exhausted after %d iterations", sessionID, res.Iterations)
			conv = append(conv, core.AssistantMessage(ExhaustedMessage))
			res.State = StateExhausted
			res.Text = ExhaustedMessage
			res.Conversation = conv
			return res, nil
		}
		res.State = StateAwaitingModel
	}
}

// serializeResult renders a tool result as the tool message content the
// model reads: the data payload on success, a structured error otherwise.
func serializeResult(r *core.ToolResult) string {
	if r.Success {
		b, err := json.Marshal(r.Data)
		if err != nil {
			return fmt.Sprintf(`{"error":"unserializable tool result: %v"}`, err)
		}
		return string(b)
	}
	b, _ := json.Marshal(map[string]string{"error": r.Error})
	return string(b)
}
