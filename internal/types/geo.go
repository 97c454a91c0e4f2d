// README: Common geographic value objects used across modules.
package types

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64
	Lng float64
}

// Zero reports whether the coordinate is the unset origin value.
func (p LatLng) Zero() bool {
	return p.Lat == 0 && p.Lng == 0
}
