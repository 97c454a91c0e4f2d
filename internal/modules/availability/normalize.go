// README: Normalizes raw availability windows into business-local intervals.
package availability

import (
	"time"
)

// RawWindow is one window as delivered by the text parser: RFC3339 timestamps
// with an explicit offset.
type RawWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TimeWindow is a validated, timezone-anchored interval with Start < End.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether [start, end) lies fully inside the window.
func (w TimeWindow) Contains(start, end time.Time) bool {
	return !start.Before(w.Start) && !end.After(w.End)
}

// Diagnostics reports how many of the incoming windows survived
// normalization. Callers decide whether an all-dropped result is an error.
type Diagnostics struct {
	Total   int
	Dropped int
}

// AllDropped reports whether every incoming window was rejected.
func (d Diagnostics) AllDropped() bool { return d.Total > 0 && d.Dropped == d.Total }

// Normalize converts raw windows to the business's local zone, preserving
// order. Entries that fail to parse, or whose start does not precede their
// end, are dropped and counted; a malformed entry is never fatal.
func Normalize(raw []RawWindow, loc *time.Location) ([]TimeWindow, Diagnostics) {
	diag := Diagnostics{Total: len(raw)}
	windows := make([]TimeWindow, 0, len(raw))
	for _, rw := range raw {
		start, err := time.Parse(time.RFC3339, rw.Start)
		if err != nil {
			diag.Dropped++
			continue
		}
		end, err := time.Parse(time.RFC3339, rw.End)
		if err != nil {
			diag.Dropped++
			continue
		}
		if !start.Before(end) {
			diag.Dropped++
			continue
		}
		windows = append(windows, TimeWindow{Start: start.In(loc), End: end.In(loc)})
	}
	return windows, diag
}
