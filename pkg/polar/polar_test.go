package polar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSamples_PassesThroughPoints(t *testing.T) {
	s := []Sample{{Speed: 80, Sink: 0.6}, {Speed: 120, Sink: 0.95}, {Speed: 180, Sink: 2.3}}
	p, err := FromSamples(s[0], s[1], s[2])
	require.NoError(t, err)

	for _, sm := range s {
		assert.InDelta(t, sm.Sink, p.SinkRate(sm.Speed/3.6), 1e-9, "speed %v", sm.Speed)
	}
}

func TestDerivedQuantities(t *testing.T) {
	p := Default()

	assert.InDelta(t, 38.8, p.BestLD(), 0.2)
	assert.InDelta(t, 94.2/3.6, p.VBestLD(), 0.1)
	assert.InDelta(t, 0.58, p.MinSink(), 0.01)
	assert.Less(t, p.VMinSink(), p.VBestLD())

	// Best L/D is a maximum of v/w.
	for _, dv := range []float64{-3, 3} {
		v := p.VBestLD() + dv
		assert.Less(t, v/p.SinkRate(v), p.BestLD())
	}
}

func TestSpeedForSinkRate(t *testing.T) {
	p := Default()

	tests := []struct {
		name string
		sink float64
	}{
		{"at best glide", p.SinkRate(p.VBestLD())},
		{"fast", 2.0},
		{"very fast", 3.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := p.SpeedForSinkRate(tt.sink)
			assert.InDelta(t, tt.sink, p.SinkRate(v), 1e-6)
			assert.GreaterOrEqual(t, v, p.VMinSink())
		})
	}

	assert.Equal(t, p.VMinSink(), p.SpeedForSinkRate(0.1), "below min sink falls back to min sink speed")
}

func TestDegenerate(t *testing.T) {
	_, err := FromSamples(Sample{Speed: 100, Sink: 1}, Sample{Speed: 100, Sink: 1}, Sample{Speed: 150, Sink: 2})
	assert.True(t, errors.Is(err, ErrDegenerate))

	_, err = New(-0.001, 0.1, 1)
	assert.ErrorIs(t, err, ErrDegenerate)
}
