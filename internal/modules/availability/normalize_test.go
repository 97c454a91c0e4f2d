package availability

import (
	"testing"
	"time"
)

func phoenix(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Phoenix")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestNormalize_ConvertsToLocalZone(t *testing.T) {
	loc := phoenix(t)

	// 16:00Z is 09:00 in Phoenix (UTC-7, no DST).
	raw := []RawWindow{{Start: "2026-09-01T16:00:00Z", End: "2026-09-01T19:00:00Z"}}
	windows, diag := Normalize(raw, loc)

	if diag.Dropped != 0 || len(windows) != 1 {
		t.Fatalf("got %d windows, %d dropped", len(windows), diag.Dropped)
	}
	w := windows[0]
	if w.Start.Hour() != 9 || w.End.Hour() != 12 {
		t.Errorf("window = %v–%v, want 09:00–12:00 local", w.Start, w.End)
	}
	if w.Start.Location() != loc {
		t.Errorf("start not in business zone: %v", w.Start.Location())
	}
}

func TestNormalize_DropsMalformedAndInverted(t *testing.T) {
	loc := phoenix(t)

	raw := []RawWindow{
		{Start: "not-a-time", End: "2026-09-01T12:00:00-07:00"},
		{Start: "2026-09-01T09:00:00-07:00", End: "garbage"},
		{Start: "2026-09-01T12:00:00-07:00", End: "2026-09-01T09:00:00-07:00"}, // inverted
		{Start: "2026-09-01T09:00:00-07:00", End: "2026-09-01T09:00:00-07:00"}, // zero-length
		{Start: "2026-09-01T09:00:00-07:00", End: "2026-09-01T12:00:00-07:00"}, // valid
	}
	windows, diag := Normalize(raw, loc)

	if diag.Total != 5 || diag.Dropped != 4 {
		t.Errorf("diag = %+v, want Total 5 Dropped 4", diag)
	}
	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}
	if diag.AllDropped() {
		t.Errorf("AllDropped() = true with a surviving window")
	}
}

func TestNormalize_AllDropped(t *testing.T) {
	windows, diag := Normalize([]RawWindow{{Start: "x", End: "y"}}, phoenix(t))
	if len(windows) != 0 || !diag.AllDropped() {
		t.Errorf("want empty result with AllDropped, got %d windows, %+v", len(windows), diag)
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	windows, diag := Normalize(nil, phoenix(t))
	if len(windows) != 0 || diag.Total != 0 || diag.AllDropped() {
		t.Errorf("empty input: windows=%d diag=%+v", len(windows), diag)
	}
}

func TestTimeWindow_Contains(t *testing.T) {
	loc := phoenix(t)
	w := TimeWindow{
		Start: time.Date(2026, 9, 1, 9, 0, 0, 0, loc),
		End:   time.Date(2026, 9, 1, 12, 0, 0, 0, loc),
	}

	at := func(h, m int) time.Time { return time.Date(2026, 9, 1, h, m, 0, 0, loc) }

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"fully inside", at(9, 30), at(10, 10), true},
		{"exact fit", at(9, 0), at(12, 0), true},
		{"starts before", at(8, 30), at(9, 10), false},
		{"ends after", at(11, 30), at(12, 10), false},
		{"outside", at(13, 0), at(13, 40), false},
	}
	for _, tt := range tests {
		if got := w.Contains(tt.start, tt.end); got != tt.want {
			t.Errorf("%s: Contains = %v, want %v", tt.name, got, tt.want)
		}
	}
}
