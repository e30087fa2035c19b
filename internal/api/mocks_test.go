package api

import (
	"glidecore/pkg/computer"
	"glidecore/pkg/geo"
	"glidecore/pkg/olc"
)

type fakeView struct {
	id        string
	rules     olc.Rules
	derived   computer.Derived
	solutions map[olc.Rules]olc.Solution
	track     []geo.Point
	stats     olc.Stats
	sources   []computer.Source
}

func (v *fakeView) FlightID() string          { return v.id }
func (v *fakeView) Rules() olc.Rules          { return v.rules }
func (v *fakeView) Derived() computer.Derived { return v.derived }
func (v *fakeView) Solution(r olc.Rules) olc.Solution {
	if s, ok := v.solutions[r]; ok {
		return s
	}
	return olc.Solution{Rules: r}
}
func (v *fakeView) Solutions() []olc.Solution {
	return []olc.Solution{v.Solution(olc.Sprint), v.Solution(olc.Triangle), v.Solution(olc.Classic)}
}
func (v *fakeView) TrackPoints() []geo.Point   { return v.track }
func (v *fakeView) ContestStats() olc.Stats    { return v.stats }
func (v *fakeView) Sources() []computer.Source { return v.sources }

func sampleView() *fakeView {
	a := geo.Point{Lat: 47.40, Lon: 8.50}
	b := geo.Point{Lat: 47.50, Lon: 8.70}
	c := geo.Point{Lat: 47.30, Lon: 8.80}
	return &fakeView{
		id:    "flight-1",
		rules: olc.Sprint,
		track: []geo.Point{a, b, c},
		solutions: map[olc.Rules]olc.Solution{
			olc.Sprint: {
				Rules: olc.Sprint, Points: []geo.Point{a, b, c}, Valid: true,
				Distance: 42000, Time: 3600, Score: 38.9,
				Projected: geo.Point{Lat: 47.25, Lon: 8.85},
			},
			olc.Triangle: {
				Rules: olc.Triangle, Points: []geo.Point{a, b, c, a}, Valid: true,
				Distance: 60000, Score: 77.8, Finished: true,
			},
		},
		stats: olc.Stats{Accepted: 120, Scans: 4, Improvements: 2},
		sources: []computer.Source{
			{Cell: "881f8d4b29fffff", Location: a, GroundAlt: 420, Time: 600},
			{Cell: "881f8d4b2dfffff", Location: b, GroundAlt: 510, Time: 1800},
		},
		derived: computer.Derived{FlightID: "flight-1", Circling: true},
	}
}
