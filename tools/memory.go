// Package tools defines the flight planner's tool surface: the outer
// assistant tools (trip planning plus memory save/recall) and the inner
// planning tools built per request. Definitions use the schema helpers;
// handlers stay thin and delegate to the trip and memory packages.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tripwise/tripwise-go-sdk/core"
	"github.com/tripwise/tripwise-go-sdk/engine"
	"github.com/tripwise/tripwise-go-sdk/memory"
)

// RegisterMemoryTools adds save_memory and get_memory over the manager.
func RegisterMemoryTools(registry *engine.ToolRegistry, manager *memory.Manager) {
	registry.MustRegister(core.ToolDefinition{
		Name: "save_memory",
		Description: "Save user-related information to the database for future reference. " +
			"Always use it when the user provides new information about themselves. " +
			"Check whether the information is already saved before saving it. " +
			"If it conflicts with existing information, ask the user to clarify what to remember.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"memory": StringProperty("User-related information to save to the database"),
		}, "memory"),
	}, saveMemoryHandler(manager))

	registry.MustRegister(core.ToolDefinition{
		Name: "get_memory",
		Description: "Retrieve user-related information from the database whenever the user implies you know something about them. " +
			"If nothing relevant is found, politely ask the user for the information and offer to save it with save_memory.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"query": StringProperty("The query to retrieve user-related information from the database"),
		}, "query"),
	}, getMemoryHandler(manager))
}

func saveMemoryHandler(manager *memory.Manager) engine.Handler {
	return func(ctx context.Context, args json.RawMessage) (*core.ToolResult, error) {
		var in struct {
			Memory string `json:"memory"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}
		rec, err := manager.Save(ctx, in.Memory)
		if err != nil {
			return nil, err
		}
		return core.OK(map[string]string{
			"status": "saved",
			"id":     rec.ID,
		}), nil
	}
}

func getMemoryHandler(manager *memory.Manager) engine.Handler {
	return func(ctx context.Context, args json.RawMessage) (*core.ToolResult, error) {
		var in struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}
		records, err := manager.Query(ctx, in.Query)
		if err != nil {
			return nil, err
		}

		memories := make([]map[string]interface{}, 0, len(records))
		for _, rec := range records {
			memories = append(memories, map[string]interface{}{
				"content":    rec.Content,
				"similarity": rec.Similarity,
			})
		}
		return core.OK(map[string]interface{}{
			"memories": memories,
		}), nil
	}
}
