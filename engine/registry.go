package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/tripwise/tripwise-go-sdk/core"
)

// Handler executes one validated tool call. Handlers receive arguments that
// already passed schema validation and must not mutate the conversation;
// only the loop appends conversation entries.
type Handler func(ctx context.Context, args json.RawMessage) (*core.ToolResult, error)

type registeredTool struct {
	def     core.ToolDefinition
	handler Handler
}

// ToolRegistry holds named tool definitions and routes invocations to their
// handlers. Tools are registered at initialization; dispatch is safe for
// concurrent use.
type ToolRegistry struct {
	mu        sync.RWMutex
	tools     map[string]*registeredTool
	order     []string
	validator validator
}

// NewToolRegistry creates an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]*registeredTool),
	}
}

// Register adds a tool definition and its handler. The name must be unique.
func (r *ToolRegistry) Register(def core.ToolDefinition, handler Handler) error {
	if def.Name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if handler == nil {
		return fmt.Errorf("tool %s: handler is nil", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("tool %s already registered", def.Name)
	}
	r.tools[def.Name] = &registeredTool{def: def, handler: handler}
	r.order = append(r.order, def.Name)
	return nil
}

// MustRegister registers a tool and panics on error. For startup wiring.
func (r *ToolRegistry) MustRegister(def core.ToolDefinition, handler Handler) {
	if err := r.Register(def, handler); err != nil {
		panic(err)
	}
}

// Definition returns the definition registered under name.
func (r *ToolRegistry) Definition(name string) (core.ToolDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return core.ToolDefinition{}, false
	}
	return t.def, true
}

// Definitions returns the named definitions in registration order. With no
// names it returns all registered definitions. Unknown names are skipped;
// the loop's dispatch will still refuse calls to them.
func (r *ToolRegistry) Definitions(names ...string) []core.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(names) == 0 {
		defs := make([]core.ToolDefinition, 0, len(r.order))
		for _, name := range r.order {
			defs = append(defs, r.tools[name].def)
		}
		return defs
	}

	defs := make([]core.ToolDefinition, 0, len(names))
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			defs = append(defs, t.def)
		}
	}
	return defs
}

// Dispatch validates the call's arguments and runs its handler.
//
// Recoverable failures (invalid arguments, ordinary handler errors) come
// back as a failed ToolResult so the loop can surface them to the model as
// the tool's output. The returned error is non-nil only for fatal
// conditions: an unregistered tool name, or a handler failure of the
// resource-exhaustion class.
func (r *ToolRegistry) Dispatch(ctx context.Context, call core.ToolCall) (*core.ToolResult, error) {
	r.mu.RLock()
	t, ok := r.tools[call.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, &core.UnknownToolError{Name: call.Name}
	}

	args := call.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	if err := r.validator.validate(t.def.InputSchema, string(args)); err != nil {
		verr := &core.InvalidArgumentsError{Tool: call.Name, Reason: err.Error()}
		log.Printf("[DISPATCH] %v", verr)
		return core.Fail(verr.Error()), nil
	}

	result, err := t.handler(ctx, args)
	if err != nil {
		execErr := &core.ToolExecutionError{Tool: call.Name, Err: err}
		if errors.Is(err, core.ErrResourceExhausted) {
			return nil, execErr
		}
		log.Printf("[DISPATCH] %v", execErr)
		return core.Fail(execErr.Error()), nil
	}
	if result == nil {
		result = core.OK(nil)
	}

	// Only tools declared terminal may end the owning loop.
	if result.Terminal && !t.def.Terminal {
		log.Printf("[DISPATCH] tool %s returned a terminal result but is not declared terminal; ignoring", call.Name)
		result.Terminal = false
		result.FinalText = ""
	}

	return result, nil
}
