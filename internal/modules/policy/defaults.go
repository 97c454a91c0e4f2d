// README: Built-in policy snapshot for the Phoenix coverage area.
package policy

import (
	"strings"
	"time"

	"saguaro/internal/types"
)

// BusinessTimezone is the zone every engine computation is anchored in.
const BusinessTimezone = "America/Phoenix"

// Default returns the production policy snapshot. The returned Set is shared
// and must be treated as read-only.
func Default() (*Set, error) {
	loc, err := time.LoadLocation(BusinessTimezone)
	if err != nil {
		return nil, err
	}
	return defaultSet(loc), nil
}

func defaultSet(loc *time.Location) *Set {
	return &Set{
		Zones: map[string]ZonePolicy{
			ZoneHighTraffic: {
				Label:                  ZoneHighTraffic,
				WeekdayWindows:         []ClockWindow{{Clock{9, 0}, Clock{13, 0}}},
				SaturdayWindows:        []ClockWindow{{Clock{7, 0}, Clock{13, 0}}},
				MinAppointmentsToVisit: 3,
				DeferDaysIfAlone:       4,
			},
			ZoneMediumTraffic: {
				Label:                  ZoneMediumTraffic,
				WeekdayWindows:         []ClockWindow{{Clock{7, 0}, Clock{14, 0}}},
				SaturdayWindows:        []ClockWindow{{Clock{7, 0}, Clock{14, 0}}},
				MinAppointmentsToVisit: 2,
				DeferDaysIfAlone:       3,
			},
			ZoneNearOffice: {
				Label:                  ZoneNearOffice,
				WeekdayWindows:         []ClockWindow{{Clock{9, 0}, Clock{13, 0}}},
				SaturdayWindows:        []ClockWindow{{Clock{7, 0}, Clock{14, 0}}},
				MinAppointmentsToVisit: 1,
				DeferDaysIfAlone:       0,
			},
			ZoneFullArea: {
				Label:                  ZoneFullArea,
				WeekdayWindows:         []ClockWindow{{Clock{6, 0}, Clock{17, 0}}},
				SaturdayWindows:        []ClockWindow{{Clock{6, 0}, Clock{13, 0}}},
				MinAppointmentsToVisit: 3,
				DeferDaysIfAlone:       4,
			},
		},
		Distance: []DistancePolicy{
			{Name: "immediate", MaxMinutes: 30, DeferDays: 0, MinClusterSize: 1},
			{Name: "cluster_preferred", MaxMinutes: 40, DeferDays: 2, MinClusterSize: 3},
			{Name: "cluster_required", MaxMinutes: 60, DeferDays: 4, MinClusterSize: 2, PreferSaturday: true},
			{Name: "accumulate", MaxMinutes: 999, DeferDays: 14, MinClusterSize: 4},
		},
		Blackouts: Blackouts{
			WednesdayBlock: ClockWindow{Clock{8, 30}, Clock{10, 30}},
			SaturdayCutoff: Clock{13, 0},
			FamilyTime:     Clock{16, 30},
		},
		EastSideCities: map[string]bool{
			"mesa": true, "chandler": true, "gilbert": true, "sun lakes": true,
			"queen creek": true, "gold canyon": true, "apache junction": true,
			"san tan valley": true, "maricopa": true,
		},
		Base:      types.LatLng{Lat: 33.57616, Lng: -112.12666}, // 10000 N 31st Ave, Phoenix
		AvgMPH:    32,
		MaxPerDay: 8,
		Location:  loc,
	}
}

func normalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
