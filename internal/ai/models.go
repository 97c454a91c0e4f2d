package ai

import "saguaro/internal/modules/availability"

// parsedAvailability captures the structured output from the AI model.
type parsedAvailability struct {
	// TimeWindows is the ordered list of {start, end} RFC3339 pairs with an
	// explicit timezone offset. The prompt requires at least one entry.
	TimeWindows []availability.RawWindow `json:"time_windows"`
}
