package core

import (
	"glidecore/pkg/computer"
	"glidecore/pkg/olc"
	"glidecore/pkg/sim"
)

// Processor turns fixes into derived flight data.
type Processor interface {
	ProcessFix(fix sim.Fix) computer.Derived
}

// FlightComputer is what the jobs need from the glide computer.
type FlightComputer interface {
	Processor
	Optimize() bool
	Rules() olc.Rules
	SetRules(r olc.Rules)
	SetHandicap(h float64)
	FlightID() string
	Solution(r olc.Rules) olc.Solution
	Snapshot() computer.FlightState
	Restore(st computer.FlightState) error
}
