// README: Ranking and day-diversified top-3 selection.
package scheduling

import "sort"

// maxSuggestions is how many options are returned per request.
const maxSuggestions = 3

// selectSuggestions sorts by score descending (stable, so generation order
// breaks ties), keeps at most one suggestion per calendar date, then
// backfills by score alone when fewer than three distinct dates qualify.
func selectSuggestions(scored []Suggestion) []Suggestion {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	kept := make([]Suggestion, 0, maxSuggestions)
	taken := make([]bool, len(scored))
	seenDates := make(map[string]bool)

	for i, s := range scored {
		if seenDates[s.Date] {
			continue
		}
		kept = append(kept, s)
		taken[i] = true
		seenDates[s.Date] = true
		if len(kept) == maxSuggestions {
			return kept
		}
	}

	// Best-effort diversity only: fill remaining spots with the highest
	// scores regardless of date.
	for i, s := range scored {
		if taken[i] {
			continue
		}
		kept = append(kept, s)
		taken[i] = true
		if len(kept) == maxSuggestions {
			break
		}
	}
	return kept
}
