package sim

import (
	"context"
	"errors"

	"glidecore/pkg/geo"
)

var (
	// ErrNotConnected is returned when a client action requires a connection.
	ErrNotConnected = errors.New("fix source not connected")
)

// Client is a source of position fixes (GPS receiver, simulator, replay).
type Client interface {
	// GetFix returns the latest fix. Polling faster than the source updates
	// returns the same fix again.
	GetFix(ctx context.Context) (Fix, error)
	// GetState returns the current connection/activity state.
	GetState() State
	// Close cleans up resources associated with the client.
	Close() error
}

// Fix is one sample of aircraft state. Units are SI: meters, m/s, degrees.
type Fix struct {
	Time         float64   `json:"time"` // seconds of the GPS clock
	Location     geo.Point `json:"location"`
	GPSAltitude  float64   `json:"gps_alt"`
	BaroAltitude float64   `json:"baro_alt"`
	GroundSpeed  float64   `json:"ground_speed"`
	Track        float64   `json:"track"`
	Vario        float64   `json:"vario"`
	NettoVario   float64   `json:"netto_vario"`
	WindSpeed    float64   `json:"wind_speed"`
	WindBearing  float64   `json:"wind_bearing"` // direction the wind comes from
	OnGround     bool      `json:"on_ground"`
}

// NavAltitude prefers the barometric altitude when one is available.
func (f *Fix) NavAltitude() float64 {
	if f.BaroAltitude != 0 {
		return f.BaroAltitude
	}
	return f.GPSAltitude
}
