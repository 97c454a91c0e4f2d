// README: Candidate slot enumeration over the scheduling horizon.
package scheduling

import (
	"time"

	"saguaro/internal/modules/availability"
	"saguaro/internal/modules/policy"
)

// horizonDays is how far past the deferred start date candidates are
// generated, inclusive.
const horizonDays = 14

// slotStepMinutes is the fixed increment between candidate start times
// within a zone window.
const slotStepMinutes = 30

// generateCandidates enumerates every slot that fits the zone's calendar,
// the customer's windows, and the personnel blackout rules, in date, window,
// time order. That order is the tie-break for equal scores downstream.
func generateCandidates(ps *policy.Set, zoneLabel string, customerWindows []availability.TimeWindow,
	durationMinutes, deferDays int, now time.Time,
) []CandidateSlot {
	zp := ps.ZoneFor(zoneLabel)
	loc := ps.Location
	local := now.In(loc)

	startDate := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, deferDays)

	var candidates []CandidateSlot
	for d := 0; d <= horizonDays; d++ {
		date := startDate.AddDate(0, 0, d)
		if date.Weekday() == time.Sunday {
			continue
		}

		windows := zp.WeekdayWindows
		if date.Weekday() == time.Saturday {
			windows = zp.SaturdayWindows
		}

		for _, w := range windows {
			slot := w.Open.At(date.Year(), date.Month(), date.Day(), loc)
			windowClose := w.Close.At(date.Year(), date.Month(), date.Day(), loc)

			for ; !slot.Add(time.Duration(durationMinutes) * time.Minute).After(windowClose); slot = slot.Add(slotStepMinutes * time.Minute) {
				if violatesBlackout(ps.Blackouts, slot) {
					continue
				}
				end := slot.Add(time.Duration(durationMinutes) * time.Minute)
				for _, cw := range customerWindows {
					if cw.Contains(slot, end) {
						candidates = append(candidates, CandidateSlot{Start: slot, Duration: durationMinutes, Zone: zoneLabel})
						break
					}
				}
			}
		}
	}
	return candidates
}

// violatesBlackout applies the personnel rules against local wall-clock
// time. These reject a slot unconditionally, regardless of zone or customer.
func violatesBlackout(b policy.Blackouts, start time.Time) bool {
	minutes := start.Hour()*60 + start.Minute()

	// Wednesday training block, inclusive on both ends.
	if start.Weekday() == time.Wednesday &&
		minutes >= b.WednesdayBlock.Open.Minutes() && minutes <= b.WednesdayBlock.Close.Minutes() {
		return true
	}

	// Saturday afternoon cutoff.
	if start.Weekday() == time.Saturday && minutes > b.SaturdayCutoff.Minutes() {
		return true
	}

	// Family time, every day.
	return minutes >= b.FamilyTime.Minutes()
}
