// README: Contract for turning free-text availability into time windows.
package ai

import (
	"context"
	"time"

	"saguaro/internal/modules/availability"
)

// WindowParser converts a customer's natural-language availability into
// structured windows. Implementations guarantee at least one window, falling
// back to a fixed default when parsing fails after bounded retries, so the
// engine only ever sees already-structured input.
type WindowParser interface {
	ParseAvailability(ctx context.Context, text string) ([]availability.RawWindow, error)
}

// FallbackWindows is the deterministic default used when parsing fails:
// weekday mornings 09:00-12:00 local over the next seven days.
func FallbackWindows(now time.Time, loc *time.Location) []availability.RawWindow {
	local := now.In(loc)
	var windows []availability.RawWindow
	for i := 1; i <= 7; i++ {
		day := local.AddDate(0, 0, i)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		windows = append(windows, availability.RawWindow{
			Start: time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, loc).Format(time.RFC3339),
			End:   time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, loc).Format(time.RFC3339),
		})
	}
	return windows
}
