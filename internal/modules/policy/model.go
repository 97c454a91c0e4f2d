// README: Scheduling policy tables (zones, distance buckets, durations).
package policy

import (
	"fmt"
	"time"

	"saguaro/internal/types"
)

// Clock is a wall-clock time of day in the business's local zone.
type Clock struct {
	Hour   int
	Minute int
}

// Minutes returns minutes from midnight.
func (c Clock) Minutes() int { return c.Hour*60 + c.Minute }

// At anchors the clock time on the given date in loc.
func (c Clock) At(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, c.Hour, c.Minute, 0, 0, loc)
}

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// ClockWindow is a same-day open/close pair, open inclusive.
type ClockWindow struct {
	Open  Clock
	Close Clock
}

// ZonePolicy describes how aggressively a geographic zone may be booked.
type ZonePolicy struct {
	Label                  string
	WeekdayWindows         []ClockWindow
	SaturdayWindows        []ClockWindow
	MinAppointmentsToVisit int
	DeferDaysIfAlone       int
}

// DistancePolicy is one travel-time bucket. Buckets are scanned in ascending
// MaxMinutes order and the first match wins; the last bucket is the catch-all.
type DistancePolicy struct {
	Name           string
	MaxMinutes     int
	DeferDays      int
	MinClusterSize int
	PreferSaturday bool
}

// Blackouts are the personnel rules that reject a slot unconditionally.
type Blackouts struct {
	WednesdayBlock ClockWindow // rejected when start falls inside, inclusive both ends
	SaturdayCutoff Clock       // rejected when start is strictly later
	FamilyTime     Clock       // rejected when start is at or past this, every day
}

// Set is the immutable policy snapshot injected into the engine. Load it once
// at startup; nothing mutates it afterwards.
type Set struct {
	Zones          map[string]ZonePolicy
	Distance       []DistancePolicy
	Blackouts      Blackouts
	EastSideCities map[string]bool

	Base      types.LatLng
	AvgMPH    float64
	MaxPerDay int
	Location  *time.Location
}

const (
	ZoneHighTraffic   = "High Traffic"
	ZoneMediumTraffic = "Medium Traffic"
	ZoneNearOffice    = "Near Office"
	ZoneFullArea      = "Full Area"
	ZoneUnclassified  = "unclassified"
)

// ServiceDuration maps a service count to the appointment length in minutes.
// Fixed by the appointment-times sheet: 1-2 services 40, 3 services 55, 4+ 65.
func ServiceDuration(services int) int {
	switch {
	case services >= 4:
		return 65
	case services == 3:
		return 55
	default:
		return 40
	}
}

// ZoneFor returns the policy for a zone label. Unclassified points fall back
// to the Full Area policy.
func (s *Set) ZoneFor(label string) ZonePolicy {
	if zp, ok := s.Zones[label]; ok {
		return zp
	}
	return s.Zones[ZoneFullArea]
}

// ResolveDistance scans the bucket list in fixed order and returns the first
// bucket whose MaxMinutes covers the travel time. Pure, never fails: the
// final bucket catches everything.
func (s *Set) ResolveDistance(minutesFromBase int) DistancePolicy {
	for _, dp := range s.Distance[:len(s.Distance)-1] {
		if minutesFromBase <= dp.MaxMinutes {
			return dp
		}
	}
	return s.Distance[len(s.Distance)-1]
}

// IsEastSide reports whether the request belongs to the east-side cluster
// rules, either by city name or by the High Traffic zone label.
func (s *Set) IsEastSide(city, zoneLabel string) bool {
	return s.EastSideCities[normalizeCity(city)] || zoneLabel == ZoneHighTraffic
}
