package trip

// DefaultInventory is the built-in flight inventory used when no external
// flight source is configured. It covers a handful of popular round trips
// with a mix of prices, stop counts, and booking platforms so budget and
// tie-break behavior is exercised end to end.
var DefaultInventory = []Flight{
	{
		ID:              "FL-1001",
		SourceCity:      "New York, USA",
		DestinationCity: "London, UK",
		DepartureDate:   "2025-03-15",
		ReturnDate:      "2025-03-22",
		Airline:         "British Airways",
		Price:           750,
		Stops:           0,
		Duration:        "7h 10m",
		Platform:        "Expedia",
	},
	{
		ID:              "FL-1002",
		SourceCity:      "New York, USA",
		DestinationCity: "London, UK",
		DepartureDate:   "2025-03-15",
		ReturnDate:      "2025-03-22",
		Airline:         "Delta",
		Price:           690,
		Stops:           1,
		Duration:        "9h 45m",
		Platform:        "Kayak",
	},
	{
		ID:              "FL-1003",
		SourceCity:      "New York, USA",
		DestinationCity: "London, UK",
		DepartureDate:   "2025-03-15",
		ReturnDate:      "2025-03-22",
		Airline:         "United",
		Price:           690,
		Stops:           1,
		Duration:        "10h 5m",
		Platform:        "Skyscanner",
	},
	{
		ID:              "FL-1004",
		SourceCity:      "New York, USA",
		DestinationCity: "London, UK",
		DepartureDate:   "2025-03-15",
		ReturnDate:      "2025-03-22",
		Airline:         "Virgin Atlantic",
		Price:           940,
		Stops:           0,
		Duration:        "7h 0m",
		Platform:        "Expedia",
	},
	{
		ID:              "FL-2001",
		SourceCity:      "New York, USA",
		DestinationCity: "Paris, France",
		DepartureDate:   "2025-03-15",
		ReturnDate:      "2025-03-22",
		Airline:         "Air France",
		Price:           820,
		Stops:           0,
		Duration:        "7h 30m",
		Platform:        "Kayak",
	},
	{
		ID:              "FL-2002",
		SourceCity:      "New York, USA",
		DestinationCity: "Paris, France",
		DepartureDate:   "2025-04-01",
		ReturnDate:      "2025-04-08",
		Airline:         "Delta",
		Price:           710,
		Stops:           1,
		Duration:        "10h 15m",
		Platform:        "Expedia",
	},
	{
		ID:              "FL-3001",
		SourceCity:      "San Francisco, USA",
		DestinationCity: "Tokyo, Japan",
		DepartureDate:   "2025-05-10",
		ReturnDate:      "2025-05-24",
		Airline:         "ANA",
		Price:           1150,
		Stops:           0,
		Duration:        "11h 20m",
		Platform:        "Skyscanner",
	},
	{
		ID:              "FL-3002",
		SourceCity:      "San Francisco, USA",
		DestinationCity: "Tokyo, Japan",
		DepartureDate:   "2025-05-10",
		ReturnDate:      "2025-05-24",
		Airline:         "United",
		Price:           980,
		Stops:           1,
		Duration:        "14h 40m",
		Platform:        "Kayak",
	},
	{
		ID:              "FL-4001",
		SourceCity:      "London, UK",
		DestinationCity: "Berlin, Germany",
		DepartureDate:   "2025-06-05",
		ReturnDate:      "2025-06-12",
		Airline:         "Lufthansa",
		Price:           210,
		Stops:           0,
		Duration:        "1h 50m",
		Platform:        "Expedia",
	},
	{
		ID:              "FL-4002",
		SourceCity:      "London, UK",
		DestinationCity: "Berlin, Germany",
		DepartureDate:   "2025-06-05",
		ReturnDate:      "2025-06-12",
		Airline:         "Ryanair",
		Price:           95,
		Stops:           0,
		Duration:        "2h 0m",
		Platform:        "Skyscanner",
	},
}
