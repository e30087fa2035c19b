package thermal

import (
	"log/slog"

	"glidecore/pkg/geo"
	"glidecore/pkg/terrain"
)

// baseSteps is the number of time steps walked towards the ground.
const baseSteps = 10

// Base is where a thermal leaves the ground. GroundAlt is -1 when no base
// could be estimated.
type Base struct {
	Location  geo.Point `json:"location"`
	GroundAlt float64   `json:"ground_alt"`
}

// EstimateThermalBase traces the thermal at loc (altitude alt, climb rate
// climb) back in time. Rising air has drifted downwind, so its source lies
// upwind; the walk stops where the rising column meets the terrain.
func EstimateThermalBase(tg terrain.HeightGetter, loc geo.Point, alt, climb, windSpeed, windBearing float64) Base {
	if tg == nil || loc.IsZero() || alt <= 0 || climb < 1 {
		return Base{GroundAlt: -1}
	}

	height := func(p geo.Point) float64 {
		h, err := tg.Height(p)
		if err != nil {
			slog.Debug("thermal base: terrain lookup failed", "lat", p.Lat, "lon", p.Lon, "error", err)
			return 0
		}
		return h
	}

	tmax := alt / climb
	dt := tmax / baseSteps
	at := func(t float64) geo.Point {
		if windSpeed <= 0 {
			return loc
		}
		return geo.DestinationPoint(loc, windSpeed*t, windBearing)
	}

	p := loc
	for i := 0; i <= baseSteps; i++ {
		t := float64(i) * dt
		p = at(t)
		dh := alt - climb*t - height(p)
		if dh < 0 {
			t = max(t+dh/climb, 0)
			p = at(t)
			break
		}
	}
	return Base{Location: p, GroundAlt: height(p)}
}

// EstimateThermalBase is the locator-bound form of the package function. It
// does not touch the locator state, so no lock is held during the terrain
// queries.
func (l *Locator) EstimateThermalBase(tg terrain.HeightGetter, loc geo.Point, alt, climb, windSpeed, windBearing float64) Base {
	return EstimateThermalBase(tg, loc, alt, climb, windSpeed, windBearing)
}
