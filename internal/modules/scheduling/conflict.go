// README: Overlap, daily-capacity, and zone-clustering checks.
package scheduling

import (
	"context"
	"time"
)

// maxEvaluated caps how many candidates (in generation order) are ever
// checked and scored per request.
const maxEvaluated = 100

// normalizeBookings keeps only records with IsExisting set and both dates
// parseable, converted to the business's local zone. Malformed records are
// skipped, never fatal.
func normalizeBookings(existing []ExistingAppointment, loc *time.Location) []booking {
	var out []booking
	for _, appt := range existing {
		if !appt.IsExisting || appt.ScheduledStart == nil || appt.ScheduledEnd == nil {
			continue
		}
		start, ok := parseAppointmentTime(*appt.ScheduledStart, loc)
		if !ok {
			continue
		}
		end, ok := parseAppointmentTime(*appt.ScheduledEnd, loc)
		if !ok {
			continue
		}
		out = append(out, booking{address: appt.Address, start: start, end: end})
	}
	return out
}

// parseAppointmentTime accepts RFC3339 timestamps and the source's
// offset-less ISO form, which is taken to be business-local time.
func parseAppointmentTime(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// hasConflict reports whether the candidate overlaps any booking under
// half-open interval semantics: two intervals conflict unless one ends
// before (or exactly when) the other starts.
func hasConflict(c CandidateSlot, bookings []booking) bool {
	end := c.End()
	for _, b := range bookings {
		if end.After(b.start) && b.end.After(c.Start) {
			return true
		}
	}
	return false
}

// countOnDate returns how many bookings fall on the same local calendar date.
func countOnDate(bookings []booking, date time.Time) int {
	y, m, d := date.Date()
	n := 0
	for _, b := range bookings {
		by, bm, bd := b.start.Date()
		if by == y && bm == m && bd == d {
			n++
		}
	}
	return n
}

// addressZones memoizes address→zone resolution for the lifetime of one
// request, so each distinct booking address costs at most one geocode and
// one classification. Outputs are identical to the unmemoized form.
type addressZones struct {
	geocoder Geocoder
	zones    ZoneClassifier
	memo     map[string]string // "" marks an unresolvable address
}

func newAddressZones(geocoder Geocoder, zones ZoneClassifier) *addressZones {
	return &addressZones{geocoder: geocoder, zones: zones, memo: make(map[string]string)}
}

func (az *addressZones) resolve(ctx context.Context, address string) (string, bool) {
	if label, ok := az.memo[address]; ok {
		return label, label != ""
	}
	pt, ok := az.geocoder.Geocode(ctx, address)
	if !ok {
		az.memo[address] = ""
		return "", false
	}
	label := az.zones.Classify(pt)
	az.memo[address] = label
	return label, true
}

// countInZone returns how many bookings on the candidate's date sit in the
// same zone. This feeds scoring only; it never rejects a candidate.
func countInZone(ctx context.Context, az *addressZones, bookings []booking, zoneLabel string, date time.Time) int {
	y, m, d := date.Date()
	n := 0
	for _, b := range bookings {
		by, bm, bd := b.start.Date()
		if by != y || bm != m || bd != d {
			continue
		}
		if label, ok := az.resolve(ctx, b.address); ok && label == zoneLabel {
			n++
		}
	}
	return n
}
