// Package trip holds the flight search domain: the flight inventory,
// criteria matching, and the selection rule the planner applies to pick
// the best options within a budget.
package trip

import "strings"

// Flight is one round-trip offer from a booking platform.
type Flight struct {
	ID              string  `json:"id"`
	SourceCity      string  `json:"source_city"`
	DestinationCity string  `json:"destination_city"`
	DepartureDate   string  `json:"departure_date"`
	ReturnDate      string  `json:"return_date"`
	Airline         string  `json:"airline"`
	Price           float64 `json:"price"`
	Stops           int     `json:"stops"`
	Duration        string  `json:"duration"`
	Platform        string  `json:"platform"`
}

// Criteria identifies a round trip. Cities match case-insensitively,
// dates exactly (YYYY-MM-DD).
type Criteria struct {
	SourceCity      string `json:"source_city"`
	DestinationCity string `json:"destination_city"`
	DepartureDate   string `json:"departure_date"`
	ReturnDate      string `json:"return_date"`
}

// Search returns every flight in the inventory matching the criteria, in
// inventory order. An empty result is a valid answer, not an error.
func Search(inventory []Flight, c Criteria) []Flight {
	var matches []Flight
	for _, f := range inventory {
		if !strings.EqualFold(f.SourceCity, c.SourceCity) {
			continue
		}
		if !strings.EqualFold(f.DestinationCity, c.DestinationCity) {
			continue
		}
		if f.DepartureDate != c.DepartureDate || f.ReturnDate != c.ReturnDate {
			continue
		}
		matches = append(matches, f)
	}
	return matches
}

// SelectBest picks the recommended flights from a candidate set: only
// flights within budget qualify, the cheapest wins, a price tie goes to
// the fewest stops, and flights still tied after both rules are all kept.
func SelectBest(candidates []Flight, budget float64) []Flight {
	var affordable []Flight
	for _, f := range candidates {
		if f.Price <= budget {
			affordable = append(affordable, f)
		}
	}
	if len(affordable) == 0 {
		return nil
	}

	best := affordable[0]
	for _, f := range affordable[1:] {
		if f.Price < best.Price || (f.Price == best.Price && f.Stops < best.Stops) {
			best = f
		}
	}

	var winners []Flight
	for _, f := range affordable {
		if f.Price == best.Price && f.Stops == best.Stops {
			winners = append(winners, f)
		}
	}
	return winners
}

// WithinBudget reports whether a price fits the budget and how much of
// the budget would remain.
func WithinBudget(price, budget float64) (bool, float64) {
	return price <= budget, budget - price
}
