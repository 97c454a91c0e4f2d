// README: The slot-recommendation engine; a pure pipeline over its inputs.
package scheduling

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"saguaro/internal/modules/availability"
	"saguaro/internal/modules/policy"
	"saguaro/internal/modules/zoning"
)

// Engine turns a new request plus a snapshot of existing appointments into
// up to three scored suggestions. It reads only its inputs and the immutable
// policy snapshot, so concurrent Suggest calls are safe.
type Engine struct {
	policies *policy.Set
	geocoder Geocoder
	zones    ZoneClassifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewEngine(policies *policy.Set, geocoder Geocoder, zones ZoneClassifier, log zerolog.Logger) *Engine {
	return &Engine{
		policies: policies,
		geocoder: geocoder,
		zones:    zones,
		log:      log,
		now:      time.Now,
	}
}

// Suggest runs the full pipeline: geocode → classify → policy resolution →
// candidate generation → conflict filtering → scoring → selection. Input
// failures return the sentinel errors; an empty list with nil error means
// candidates existed but none survived filtering.
func (e *Engine) Suggest(ctx context.Context, req NewRequest, existing []ExistingAppointment) ([]Suggestion, error) {
	point, ok := e.geocoder.Geocode(ctx, req.Address)
	if !ok || point.Zero() {
		return nil, ErrUngeocodable
	}

	zoneLabel := e.zones.Classify(point)
	distanceMiles := zoning.HaversineMiles(e.policies.Base, point)
	travelMinutes := zoning.TravelMinutes(e.policies.Base, point, e.policies.AvgMPH)

	distancePolicy := e.policies.ResolveDistance(travelMinutes)
	duration := policy.ServiceDuration(req.Services)
	eastSide := e.policies.IsEastSide(req.City, zoneLabel)

	windows, diag := availability.Normalize(req.Windows, e.policies.Location)
	if diag.Dropped > 0 {
		e.log.Warn().
			Int("dropped", diag.Dropped).
			Int("total", diag.Total).
			Str("address", req.Address).
			Msg("availability windows dropped during normalization")
	}
	if len(windows) == 0 {
		return nil, ErrNoAvailability
	}

	now := e.now()
	candidates := generateCandidates(e.policies, zoneLabel, windows, duration, distancePolicy.DeferDays, now)
	if len(candidates) == 0 && distancePolicy.DeferDays > 0 {
		// Deferred horizon produced nothing the customer can take; relax the
		// defer constraint before giving up.
		candidates = generateCandidates(e.policies, zoneLabel, windows, duration, 0, now)
	}

	bookings := normalizeBookings(existing, e.policies.Location)
	memo := newAddressZones(e.geocoder, e.zones)

	if len(candidates) > maxEvaluated {
		candidates = candidates[:maxEvaluated]
	}

	today := now.In(e.policies.Location)
	var scored []Suggestion
	for _, c := range candidates {
		if hasConflict(c, bookings) {
			continue
		}
		totalOnDay := countOnDate(bookings, c.Start)
		if totalOnDay >= e.policies.MaxPerDay {
			continue
		}
		inZone := countInZone(ctx, memo, bookings, zoneLabel, c.Start)

		score, explanation := scoreCandidate(c, scoreInputs{
			daysOut:    daysBetween(today, c.Start),
			zone:       zoneLabel,
			inZone:     inZone,
			totalOnDay: totalOnDay,
			distance:   distancePolicy,
			eastSide:   eastSide,
		})

		scored = append(scored, Suggestion{
			Start:                    c.Start,
			Date:                     c.Start.Format("2006-01-02"),
			Time:                     c.Start.Format("03:04 PM"),
			DayOfWeek:                c.Start.Weekday().String(),
			Score:                    score,
			Explanation:              explanation,
			Zone:                     zoneLabel,
			DistanceMiles:            math.Round(distanceMiles*10) / 10,
			TravelMinutes:            travelMinutes,
			DurationMinutes:          duration,
			AppointmentsInZone:       inZone,
			TotalAppointmentsThatDay: totalOnDay,
		})
	}

	return selectSuggestions(scored), nil
}

// daysBetween counts whole local calendar days from a to b.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	am0 := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bm0 := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bm0.Sub(am0).Hours() / 24)
}
