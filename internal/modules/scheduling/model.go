// README: Scheduling engine domain types and sentinel errors.
package scheduling

import (
	"context"
	"errors"
	"time"

	"saguaro/internal/modules/availability"
	"saguaro/internal/types"
)

var (
	// ErrUngeocodable terminates a request whose address cannot be resolved
	// to coordinates. No partial suggestion list is produced.
	ErrUngeocodable = errors.New("could not geocode address")
	// ErrNoAvailability terminates a request with zero valid customer
	// windows after normalization.
	ErrNoAvailability = errors.New("no valid availability windows found")
)

// NewRequest is a new customer's slot request. Coordinates, zone, and
// duration are derived by the engine, never supplied by the caller.
type NewRequest struct {
	Address  string
	City     string
	Services int
	Windows  []availability.RawWindow
}

// ExistingAppointment is one record from the appointment source. Only
// entries with IsExisting set and both dates parseable participate in
// conflict and clustering checks; everything else is silently ignored.
type ExistingAppointment struct {
	Address        string  `json:"address"`
	City           string  `json:"city"`
	IsExisting     bool    `json:"is_existing"`
	ScheduledStart *string `json:"scheduled_start_date"`
	ScheduledEnd   *string `json:"scheduled_end_date"`
	CustomerID     string  `json:"customer_id"`
	CustomerName   string  `json:"customer_name"`
}

// booking is a validated existing appointment in the business's local zone.
type booking struct {
	address string
	start   time.Time
	end     time.Time
}

// CandidateSlot is an ephemeral candidate produced by the generator.
type CandidateSlot struct {
	Start    time.Time
	Duration int
	Zone     string
}

// End is the exclusive end instant of the slot.
func (c CandidateSlot) End() time.Time {
	return c.Start.Add(time.Duration(c.Duration) * time.Minute)
}

// Suggestion is one scored recommendation. Constructed once per accepted
// candidate and never mutated afterwards.
type Suggestion struct {
	Start                    time.Time `json:"-"`
	Date                     string    `json:"date"`
	Time                     string    `json:"time"`
	DayOfWeek                string    `json:"day_of_week"`
	Score                    float64   `json:"score"`
	Explanation              string    `json:"explanation"`
	Zone                     string    `json:"zone"`
	DistanceMiles            float64   `json:"distance_miles"`
	TravelMinutes            int       `json:"travel_minutes"`
	DurationMinutes          int       `json:"duration_minutes"`
	AppointmentsInZone       int       `json:"appointments_in_zone"`
	TotalAppointmentsThatDay int       `json:"total_appointments_that_day"`
}

// Geocoder resolves a street address to coordinates. ok is false when the
// address cannot be resolved; retries and caching are the implementation's
// concern and never reach the engine.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.LatLng, bool)
}

// ZoneClassifier maps coordinates to a zone label ("unclassified" when no
// zone matches).
type ZoneClassifier interface {
	Classify(p types.LatLng) string
}
