package geo

import (
	"math"
)

// EarthRadius is the mean earth radius in meters used by all great-circle helpers.
const EarthRadius = 6371000.0

const (
	deg2rad = math.Pi / 180.0
	rad2deg = 180.0 / math.Pi
)

// Point represents a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat" msgpack:"lat"`
	Lon float64 `json:"lon" msgpack:"lon"`
}

// IsZero reports whether p is the zero coordinate, used as "no location".
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lon == 0
}

// Distance calculates the Haversine distance between two points in meters.
func Distance(p1, p2 Point) float64 {
	dLat := (p2.Lat - p1.Lat) * deg2rad
	dLon := (p2.Lon - p1.Lon) * deg2rad
	lat1 := p1.Lat * deg2rad
	lat2 := p2.Lat * deg2rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}

// DestinationPoint calculates the destination point from a start point, given distance (in meters) and bearing (in degrees).
func DestinationPoint(start Point, distMeters, bearing float64) Point {
	lat1 := start.Lat * deg2rad
	lon1 := start.Lon * deg2rad
	brng := bearing * deg2rad
	ang := distMeters / EarthRadius

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(ang) +
		math.Cos(lat1)*math.Sin(ang)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(math.Sin(brng)*math.Sin(ang)*math.Cos(lat1),
		math.Cos(ang)-math.Sin(lat1)*math.Sin(lat2))

	return Point{
		Lat: lat2 * rad2deg,
		Lon: NormalizeAngle(lon2 * rad2deg),
	}
}

// Bearing calculates the initial bearing (forward azimuth) from p1 to p2 in degrees.
func Bearing(p1, p2 Point) float64 {
	lat1 := p1.Lat * deg2rad
	lat2 := p2.Lat * deg2rad
	dLon := (p2.Lon - p1.Lon) * deg2rad

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	brng := math.Atan2(y, x)

	return math.Mod(brng*rad2deg+360.0, 360.0)
}

// NormalizeAngle normalizes an angle difference to the range [-180, 180].
func NormalizeAngle(angleDeg float64) float64 {
	for angleDeg > 180 {
		angleDeg -= 360
	}
	for angleDeg < -180 {
		angleDeg += 360
	}
	return angleDeg
}

// Interpolate returns the point at fraction f (0..1) of the way along the
// great circle from p1 to p2.
func Interpolate(p1, p2 Point, f float64) Point {
	d := Distance(p1, p2)
	if d == 0 {
		return p1
	}
	return DestinationPoint(p1, d*f, Bearing(p1, p2))
}

// Frame is a flat east/north projection around an origin, good to a few
// tens of kilometers. X is meters east, Y is meters north.
type Frame struct {
	Origin Point
	mpdLat float64
	mpdLon float64
}

// NewFrame builds a local frame centered on origin.
func NewFrame(origin Point) Frame {
	mpdLat := EarthRadius * deg2rad
	return Frame{
		Origin: origin,
		mpdLat: mpdLat,
		mpdLon: mpdLat * math.Cos(origin.Lat*deg2rad),
	}
}

// ToXY projects p into the frame.
func (f Frame) ToXY(p Point) (x, y float64) {
	return NormalizeAngle(p.Lon-f.Origin.Lon) * f.mpdLon, (p.Lat - f.Origin.Lat) * f.mpdLat
}

// FromXY is the inverse of ToXY.
func (f Frame) FromXY(x, y float64) Point {
	lon := f.Origin.Lon
	if f.mpdLon != 0 {
		lon += x / f.mpdLon
	}
	return Point{Lat: f.Origin.Lat + y/f.mpdLat, Lon: NormalizeAngle(lon)}
}

// WindVector converts a wind speed (m/s) and the bearing the wind blows FROM
// (degrees) into the east/north drift velocity of an air mass.
func WindVector(speed, fromBearing float64) (vx, vy float64) {
	to := (fromBearing + 180) * deg2rad
	return speed * math.Sin(to), speed * math.Cos(to)
}
