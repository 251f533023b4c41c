package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/tripwise/tripwise-go-sdk/core"
	"github.com/tripwise/tripwise-go-sdk/engine"
	"github.com/tripwise/tripwise-go-sdk/gateway"
	"github.com/tripwise/tripwise-go-sdk/trip"
)

// plannerMaxIterations bounds the inner planning loop per request.
const plannerMaxIterations = 10

// RegisterPlannerTool adds plan_trip. Each invocation spins up an inner
// planning loop against the same gateway, with its own tool set built
// around the request's parameters and its own iteration budget.
func RegisterPlannerTool(registry *engine.ToolRegistry, gw gateway.Gateway, inventory []trip.Flight) {
	registry.MustRegister(core.ToolDefinition{
		Name:        "plan_trip",
		Description: "Find the cheapest flight based on source city, destination city, departure date, return date, and budget",
		InputSchema: ObjectSchema(map[string]interface{}{
			"source_city":      StringProperty("City, Country (Example: London, UK)"),
			"destination_city": StringProperty("City, Country (Example: London, UK)"),
			"departure_date":   StringProperty("Departure date in format YYYY-MM-DD"),
			"return_date":      StringProperty("Return date in format YYYY-MM-DD"),
			"budget":           NumberProperty("Trip budget in USD"),
		}, "source_city", "destination_city", "departure_date", "return_date", "budget"),
	}, planTripHandler(gw, inventory))
}

type planRequest struct {
	SourceCity      string  `json:"source_city"`
	DestinationCity string  `json:"destination_city"`
	DepartureDate   string  `json:"departure_date"`
	ReturnDate      string  `json:"return_date"`
	Budget          float64 `json:"budget"`
}

func planTripHandler(gw gateway.Gateway, inventory []trip.Flight) engine.Handler {
	return func(ctx context.Context, args json.RawMessage) (*core.ToolResult, error) {
		var req planRequest
		if err := json.Unmarshal(args, &req); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}
		log.Printf("[PLANNER] planning %s -> %s, %s to %s, budget $%.2f",
			req.SourceCity, req.DestinationCity, req.DepartureDate, req.ReturnDate, req.Budget)

		inner := engine.NewLoop(gw, plannerRegistry(inventory, req),
			engine.WithMaxIterations(plannerMaxIterations))

		seed := []core.Message{
			core.SystemMessage(PlannerSystemPrompt(
				req.SourceCity, req.DestinationCity, req.DepartureDate, req.ReturnDate, req.Budget)),
			core.UserMessage("Plan this trip."),
		}
		res, err := inner.Run(ctx, seed)
		if err != nil {
			return nil, fmt.Errorf("planning loop: %w", err)
		}

		switch res.State {
		case engine.StateSucceeded, engine.StateExhausted:
			// An exhausted inner loop reports its fixed fallback as the
			// itinerary; the outer assistant relays it to the user.
			return core.OK(map[string]string{"itinerary": res.Text}), nil
		default:
			return nil, fmt.Errorf("planning loop failed: %w", res.Err)
		}
	}
}

// plannerRegistry builds the per-request inner tool set. Handlers close
// over the request so the model cannot redirect the search to a different
// trip or budget mid-session.
func plannerRegistry(inventory []trip.Flight, req planRequest) *engine.ToolRegistry {
	registry := engine.NewToolRegistry()

	registry.MustRegister(core.ToolDefinition{
		Name:        "get_flights",
		Description: "Find available flights based on the source city, destination city, departure date and return date.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"source_city":      StringProperty("City, Country (Example: London, UK)"),
			"destination_city": StringProperty("City, Country (Example: London, UK)"),
			"departure_date":   StringProperty("Departure date in format YYYY-MM-DD"),
			"return_date":      StringProperty("Return date in format YYYY-MM-DD"),
		}, "source_city", "destination_city", "departure_date", "return_date"),
	}, func(ctx context.Context, args json.RawMessage) (*core.ToolResult, error) {
		var c trip.Criteria
		if err := json.Unmarshal(args, &c); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}
		matches := trip.Search(inventory, c)
		if matches == nil {
			matches = []trip.Flight{}
		}
		best := trip.SelectBest(matches, req.Budget)
		if best == nil {
			best = []trip.Flight{}
		}
		return core.OK(map[string]interface{}{
			"flights":     matches,
			"recommended": best,
		}), nil
	})

	registry.MustRegister(core.ToolDefinition{
		Name:        "check_budget",
		Description: "Check if a flight price is within the user's budget.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"price":  NumberProperty("Flight price in USD"),
			"budget": NumberProperty("Trip budget in USD"),
		}, "price", "budget"),
	}, func(ctx context.Context, args json.RawMessage) (*core.ToolResult, error) {
		var in struct {
			Price  float64 `json:"price"`
			Budget float64 `json:"budget"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}
		within, remaining := trip.WithinBudget(in.Price, in.Budget)
		return core.OK(map[string]interface{}{
			"within_budget": within,
			"remaining":     remaining,
		}), nil
	})

	registry.MustRegister(core.ToolDefinition{
		Name: "flight_planned",
		Description: "Declare the trip fully planned (including being within budget) and deliver the final itinerary. " +
			"Include a simple financial breakdown of the flight at the end of the final itinerary.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"planned":   BooleanProperty("Whether the trip is fully planned"),
			"itinerary": StringProperty("The final itinerary of the trip"),
		}, "planned", "itinerary"),
		Terminal: true,
	}, func(ctx context.Context, args json.RawMessage) (*core.ToolResult, error) {
		var in struct {
			Planned   bool   `json:"planned"`
			Itinerary string `json:"itinerary"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}
		result := core.OK(map[string]interface{}{
			"planned":   in.Planned,
			"itinerary": in.Itinerary,
		})
		if in.Planned {
			result.Terminal = true
			result.FinalText = in.Itinerary
		}
		return result, nil
	})

	return registry
}
