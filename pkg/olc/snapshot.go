package olc

import (
	"errors"
	"fmt"

	"glidecore/pkg/geo"
)

// SnapshotVersion is bumped whenever Snapshot changes shape.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned when restoring a snapshot written by an
// incompatible version.
var ErrSnapshotVersion = errors.New("olc: unsupported snapshot version")

// ErrBusy is returned when a restore is attempted during a pass.
var ErrBusy = errors.New("olc: optimizer busy")

// PointRecord is the persisted form of a buffered point.
type PointRecord struct {
	Lat     float64 `msgpack:"lat"`
	Lon     float64 `msgpack:"lon"`
	AltLow  float64 `msgpack:"lo"`
	AltHigh float64 `msgpack:"hi"`
	Time    float64 `msgpack:"t"`
	Bearing float64 `msgpack:"brg"`
}

// Snapshot is everything needed to resume a flight after a restart.
type Snapshot struct {
	Version   int           `msgpack:"v"`
	Points    []PointRecord `msgpack:"pts"`
	StartTime float64       `msgpack:"tstart"`
	AltMin    float64       `msgpack:"altmin"`
	Solutions []Solution    `msgpack:"sol"`
}

// Snapshot captures the buffer, start detection and solutions.
func (o *Optimizer) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := Snapshot{
		Version:   SnapshotVersion,
		Points:    make([]PointRecord, o.buf.len()),
		StartTime: o.tStart,
		AltMin:    o.altMin,
		Solutions: make([]Solution, 0, len(o.solutions)),
	}
	for i := range s.Points {
		p := o.buf.at(i)
		s.Points[i] = PointRecord{
			Lat: p.Loc.Lat, Lon: p.Loc.Lon,
			AltLow: p.AltLow, AltHigh: p.AltHigh,
			Time: p.Time, Bearing: p.Bearing,
		}
	}
	for _, sol := range o.solutions {
		s.Solutions = append(s.Solutions, sol.Clone())
	}
	return s
}

// Restore replaces the flight state with s. Points are re-added without the
// denoise filter; the next Optimize rescans everything.
func (o *Optimizer) Restore(s Snapshot) error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("%w: %d", ErrSnapshotVersion, s.Version)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy.Load() {
		return ErrBusy
	}

	o.resetLocked()
	var lastT float64
	for i, p := range s.Points {
		if i > 0 && p.Time <= lastT {
			continue
		}
		o.appendLocked(trackPoint{
			Loc:     geo.Point{Lat: p.Lat, Lon: p.Lon},
			AltLow:  p.AltLow,
			AltHigh: p.AltHigh,
			Time:    p.Time,
			Bearing: p.Bearing,
		})
		lastT = p.Time
	}
	o.tStart = s.StartTime
	if s.AltMin != 0 {
		o.altMin = s.AltMin
	}
	for _, sol := range s.Solutions {
		if sol.Rules.Valid() {
			sol.Score = clampScore(sol.Score)
			o.solutions[sol.Rules] = sol.Clone()
		}
	}
	return nil
}
