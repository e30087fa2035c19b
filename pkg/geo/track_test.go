package geo

import (
	"math"
	"testing"
)

func TestTrackBuffer(t *testing.T) {
	tests := []struct {
		name       string
		windowSize int
		points     []Point
		wantTracks []float64 // Expected track after EACH push
	}{
		{
			name:       "Standard 3-Sample Window",
			windowSize: 3,
			points: []Point{
				{Lat: 10, Lon: 20}, // 1st: return default
				{Lat: 11, Lon: 20}, // 2nd: North (0)
				{Lat: 11, Lon: 21}, // 3rd: NE based on 10,20 -> 11,21 (approx 45)
				{Lat: 10, Lon: 21}, // 4th: SE based on 11,20 -> 10,21 (approx 135)
			},
			wantTracks: []float64{99, 0, 45, 135},
		},
		{
			name:       "Stationary returns default",
			windowSize: 3,
			points:     []Point{{Lat: 1, Lon: 1}, {Lat: 1, Lon: 1}},
			wantTracks: []float64{99, 99},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewTrackBuffer(tt.windowSize)
			for i, p := range tt.points {
				got := b.Push(p, float64(i), 99)
				if math.Abs(got-tt.wantTracks[i]) > 1.0 {
					t.Errorf("Step %d: Push() = %v, want approx %v", i, got, tt.wantTracks[i])
				}
			}
		})
	}
}

func TestTrackBuffer_TurnRate(t *testing.T) {
	// Fly a right-hand circle: 10 degrees of track per second.
	center := Point{Lat: 45, Lon: 6}
	b := NewTrackBuffer(8)
	for i := 0; i < 8; i++ {
		b.Push(DestinationPoint(center, 150, float64(i)*10), float64(i), 0)
	}
	if got := b.TurnRate(); math.Abs(got-10) > 0.5 {
		t.Errorf("TurnRate() = %v, want ~10", got)
	}

	straight := NewTrackBuffer(5)
	for i := 0; i < 5; i++ {
		straight.Push(DestinationPoint(center, float64(i)*100, 90), float64(i), 0)
	}
	if got := straight.TurnRate(); math.Abs(got) > 0.1 {
		t.Errorf("straight TurnRate() = %v, want ~0", got)
	}
}

func TestTrackBuffer_Reset(t *testing.T) {
	b := NewTrackBuffer(5)
	b.Push(Point{10, 20}, 0, 0)
	b.Push(Point{11, 20}, 1, 0)

	if b.Len() != 2 {
		t.Errorf("Expected 2 samples, got %d", b.Len())
	}

	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Expected 0 samples after reset, got %d", b.Len())
	}
}
