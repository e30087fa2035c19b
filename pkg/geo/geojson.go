package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// OrbPoint converts to orb's [lon, lat] ordering.
func (p Point) OrbPoint() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// LineString converts a point sequence to an orb line string.
func LineString(points []Point) orb.LineString {
	ls := make(orb.LineString, 0, len(points))
	for _, p := range points {
		ls = append(ls, p.OrbPoint())
	}
	return ls
}

// PathFeature builds a GeoJSON line feature carrying the given properties.
func PathFeature(points []Point, props map[string]any) *geojson.Feature {
	f := geojson.NewFeature(LineString(points))
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}

// PointFeature builds a GeoJSON point feature carrying the given properties.
func PointFeature(p Point, props map[string]any) *geojson.Feature {
	f := geojson.NewFeature(p.OrbPoint())
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}

// Bound returns the bounding box of points, or an empty bound for none.
func Bound(points []Point) orb.Bound {
	if len(points) == 0 {
		return orb.Bound{}
	}
	return LineString(points).Bound()
}
