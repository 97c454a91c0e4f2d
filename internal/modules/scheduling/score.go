// README: Additive scoring heuristic with human-readable rationale.
package scheduling

import (
	"fmt"
	"strings"
	"time"

	"saguaro/internal/modules/policy"
)

const baseScore = 100

// scoreInputs carries everything the heuristic needs about one candidate.
type scoreInputs struct {
	daysOut    int
	zone       string
	inZone     int // same-zone bookings on the candidate's date
	totalOnDay int // all bookings on the candidate's date
	distance   policy.DistancePolicy
	eastSide   bool
}

// scoreCandidate returns the deterministic additive score and the joined
// explanation. The numeric total is order-independent; the reason list is
// appended in a fixed order, so identical inputs always produce identical
// output.
func scoreCandidate(c CandidateSlot, in scoreInputs) (float64, string) {
	score := float64(baseScore)
	var reasons []string

	switch in.daysOut {
	case 0:
		score += 50
		reasons = append(reasons, "same-day service")
	case 1:
		score += 30
		reasons = append(reasons, "next-day service")
	case 2:
		score += 20
		reasons = append(reasons, "2 days out")
	case 3:
		score += 10
		reasons = append(reasons, "3 days out")
	}

	if in.inZone > 0 {
		score += float64(in.inZone * 15)
		reasons = append(reasons, fmt.Sprintf("grouped with %d other appointment(s) in %s", in.inZone, in.zone))
	}

	if in.totalOnDay >= 6 {
		score -= float64((in.totalOnDay - 5) * 10)
		reasons = append(reasons, fmt.Sprintf("busy day (%d appointments already)", in.totalOnDay))
	}

	if c.Start.Weekday() == time.Saturday && in.distance.PreferSaturday {
		score += 20
		reasons = append(reasons, "Saturday (less traffic for distant location)")
	}

	if in.eastSide && in.inZone >= 2 {
		score += 15
		reasons = append(reasons, "efficient East Side cluster")
	}

	if in.distance.MinClusterSize > 1 && in.inZone < in.distance.MinClusterSize {
		score -= float64((in.distance.MinClusterSize - in.inZone) * 15)
		reasons = append(reasons, fmt.Sprintf("solo trip (ideally %d+ appointments in zone)", in.distance.MinClusterSize))
	}

	if h := c.Start.Hour(); h >= 7 && h <= 10 {
		score += 5
		reasons = append(reasons, "morning slot")
	}

	explanation := c.Start.Format("Monday, January 02 at 03:04 PM") + " - " + strings.Join(reasons, "; ")
	return score, explanation
}
