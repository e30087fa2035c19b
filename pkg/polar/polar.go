// Package polar models a glider's still-air performance as a quadratic sink
// polar w(v) = A·v² + B·v + C, with v in m/s and w the sink rate in m/s
// (positive down).
package polar

import (
	"errors"
	"fmt"
	"math"
)

// Sample is one measured polar point.
type Sample struct {
	Speed float64 `yaml:"speed_kmh"` // km/h
	Sink  float64 `yaml:"sink_ms"`   // m/s, positive down
}

// Polar is an immutable quadratic polar with its derived quantities cached.
type Polar struct {
	A, B, C float64

	vMinSink float64
	minSink  float64
	vBestLD  float64
	bestLD   float64
}

// ErrDegenerate is returned when the samples do not describe a usable polar.
var ErrDegenerate = errors.New("polar: degenerate samples")

// FromSamples fits the quadratic through three polar points.
func FromSamples(s1, s2, s3 Sample) (*Polar, error) {
	v1, v2, v3 := s1.Speed/3.6, s2.Speed/3.6, s3.Speed/3.6
	w1, w2, w3 := s1.Sink, s2.Sink, s3.Sink

	d := (v1 - v2) * (v1 - v3) * (v2 - v3)
	if d == 0 {
		return nil, ErrDegenerate
	}
	a := (v3*(w2-w1) + v2*(w1-w3) + v1*(w3-w2)) / d
	b := (v3*v3*(w1-w2) + v2*v2*(w3-w1) + v1*v1*(w2-w3)) / d
	c := (v2*v3*(v2-v3)*w1 + v3*v1*(v3-v1)*w2 + v1*v2*(v1-v2)*w3) / d

	return New(a, b, c)
}

// New builds a polar from its coefficients.
func New(a, b, c float64) (*Polar, error) {
	if a <= 0 || c <= 0 {
		return nil, fmt.Errorf("%w: a=%v c=%v", ErrDegenerate, a, c)
	}
	p := &Polar{A: a, B: b, C: c}
	p.vMinSink = math.Max(-b/(2*a), 0)
	p.minSink = p.SinkRate(p.vMinSink)
	p.vBestLD = math.Sqrt(c / a)
	sink := p.SinkRate(p.vBestLD)
	if sink <= 0 || p.minSink <= 0 {
		return nil, fmt.Errorf("%w: non-positive sink", ErrDegenerate)
	}
	p.bestLD = p.vBestLD / sink
	return p, nil
}

// Default is a standard-class glider polar, close to an LS-3 without ballast.
func Default() *Polar {
	p, err := FromSamples(
		Sample{Speed: 80, Sink: 0.60},
		Sample{Speed: 120, Sink: 0.95},
		Sample{Speed: 180, Sink: 2.30},
	)
	if err != nil {
		panic(err)
	}
	return p
}

// SinkRate returns the still-air sink rate at speed v (m/s).
func (p *Polar) SinkRate(v float64) float64 {
	return p.A*v*v + p.B*v + p.C
}

// MinSink is the lowest achievable sink rate (m/s).
func (p *Polar) MinSink() float64 { return p.minSink }

// VMinSink is the speed (m/s) at which MinSink is flown.
func (p *Polar) VMinSink() float64 { return p.vMinSink }

// BestLD is the best still-air glide ratio.
func (p *Polar) BestLD() float64 { return p.bestLD }

// VBestLD is the speed (m/s) for best glide.
func (p *Polar) VBestLD() float64 { return p.vBestLD }

// SpeedForSinkRate returns the fastest speed (m/s) whose sink rate equals w.
// Below the minimum sink rate there is no solution and the min-sink speed is returned.
func (p *Polar) SpeedForSinkRate(w float64) float64 {
	disc := p.B*p.B - 4*p.A*(p.C-w)
	if disc <= 0 {
		return p.vMinSink
	}
	return (-p.B + math.Sqrt(disc)) / (2 * p.A)
}
