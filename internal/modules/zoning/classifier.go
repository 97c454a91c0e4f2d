// README: Zone classification from GeoJSON polygons (first match wins).
package zoning

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"saguaro/internal/modules/policy"
	"saguaro/internal/types"
)

//go:embed zones.geojson
var defaultZones []byte

type zonePoly struct {
	label string
	geom  orb.Geometry
	bound orb.Bound
}

// Classifier maps coordinates to a zone label. Features are checked in file
// order, so narrower zones must precede the Full Area catch-all in the
// GeoJSON. Immutable after construction.
type Classifier struct {
	polys []zonePoly
}

// NewClassifier parses a GeoJSON FeatureCollection whose features carry a
// "label" property naming the zone.
func NewClassifier(data []byte) (*Classifier, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse zones geojson: %w", err)
	}
	var polys []zonePoly
	for _, feat := range fc.Features {
		label, ok := feat.Properties["label"].(string)
		if !ok || label == "" {
			return nil, fmt.Errorf("zone feature missing label property")
		}
		switch feat.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			return nil, fmt.Errorf("zone %q: unsupported geometry %T", label, feat.Geometry)
		}
		polys = append(polys, zonePoly{label: label, geom: feat.Geometry, bound: feat.Geometry.Bound()})
	}
	if len(polys) == 0 {
		return nil, fmt.Errorf("zones geojson has no features")
	}
	return &Classifier{polys: polys}, nil
}

// DefaultClassifier builds the classifier from the embedded coverage map.
func DefaultClassifier() (*Classifier, error) {
	return NewClassifier(defaultZones)
}

// LoadClassifier reads a GeoJSON file, falling back to the embedded map when
// path is empty.
func LoadClassifier(path string) (*Classifier, error) {
	if path == "" {
		return DefaultClassifier()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zones file: %w", err)
	}
	return NewClassifier(data)
}

// Classify returns the label of the first zone containing the point, or
// "unclassified" when no polygon matches. Policy lookups treat unclassified
// as Full Area.
func (c *Classifier) Classify(p types.LatLng) string {
	pt := orb.Point{p.Lng, p.Lat}
	for _, zp := range c.polys {
		if !zp.bound.Contains(pt) {
			continue
		}
		switch g := zp.geom.(type) {
		case orb.Polygon:
			if planar.PolygonContains(g, pt) {
				return zp.label
			}
		case orb.MultiPolygon:
			if planar.MultiPolygonContains(g, pt) {
				return zp.label
			}
		}
	}
	return policy.ZoneUnclassified
}
