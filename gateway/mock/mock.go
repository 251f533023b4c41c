// Package mock provides gateway implementations for tests and offline runs.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/tripwise/tripwise-go-sdk/core"
	"github.com/tripwise/tripwise-go-sdk/gateway"
)

// Gateway replays a fixed script of turns, one per Invoke, in order.
// Invoking past the end of the script fails with *core.GatewayError, which
// keeps a runaway loop visible in tests.
type Gateway struct {
	mu    sync.Mutex
	turns []gateway.Turn
	next  int

	// Invocations records every conversation passed to Invoke.
	Invocations [][]core.Message
}

// NewScripted creates a gateway that returns the given turns in order.
func NewScripted(turns ...gateway.Turn) *Gateway {
	return &Gateway{turns: turns}
}

// Invoke returns the next scripted turn.
func (g *Gateway) Invoke(ctx context.Context, conversation []core.Message, tools []core.ToolDefinition) (*gateway.Turn, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	snapshot := make([]core.Message, len(conversation))
	copy(snapshot, conversation)
	g.Invocations = append(g.Invocations, snapshot)

	if g.next >= len(g.turns) {
		return nil, &core.GatewayError{Err: fmt.Errorf("script exhausted after %d turns", len(g.turns))}
	}
	turn := g.turns[g.next]
	g.next++
	return &turn, nil
}

// Calls reports how many times Invoke was called.
func (g *Gateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next
}

// Func adapts a function to the Gateway interface. Useful when a test needs
// to inspect the conversation or tool set to decide the next turn.
type Func func(ctx context.Context, conversation []core.Message, tools []core.ToolDefinition) (*gateway.Turn, error)

// Invoke calls the wrapped function.
func (f Func) Invoke(ctx context.Context, conversation []core.Message, tools []core.ToolDefinition) (*gateway.Turn, error) {
	return f(ctx, conversation, tools)
}
