package computer

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/uber/h3-go/v4"

	"glidecore/pkg/geo"
	"glidecore/pkg/thermal"
)

// DefaultSourceCount is the ring size when none is configured.
const DefaultSourceCount = 20

// DefaultH3Resolution buckets sources into cells of roughly 0.7 km².
const DefaultH3Resolution = 8

// ErrNoGround is returned for a thermal base without a terrain estimate.
var ErrNoGround = errors.New("thermal base has no ground estimate")

// Source is where a past thermal is believed to have left the ground.
type Source struct {
	Cell      string    `json:"cell" msgpack:"cell"`
	Location  geo.Point `json:"location" msgpack:"loc"`
	GroundAlt float64   `json:"ground_alt" msgpack:"gnd"`
	Time      float64   `json:"time" msgpack:"t"`
}

// Sources is a fixed ring of thermal sources. A new source in the cell of
// an existing one replaces it; otherwise the oldest entry is overwritten.
type Sources struct {
	mu         sync.RWMutex
	ring       []Source
	resolution int
}

// NewSources builds an empty ring.
func NewSources(capacity, resolution int) *Sources {
	if capacity <= 0 {
		capacity = DefaultSourceCount
	}
	if resolution < 0 || resolution > 15 {
		resolution = DefaultH3Resolution
	}
	return &Sources{ring: make([]Source, 0, capacity), resolution: resolution}
}

// CellFor returns the H3 index of p as a hex string.
func CellFor(p geo.Point, resolution int) (string, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lon), resolution)
	if err != nil {
		return "", fmt.Errorf("h3 cell for %.5f,%.5f: %w", p.Lat, p.Lon, err)
	}
	return cell.String(), nil
}

// Add stores the base of a thermal seen at time t. Bases without a ground
// estimate are rejected with ErrNoGround.
func (s *Sources) Add(b thermal.Base, t float64) (Source, error) {
	if b.GroundAlt <= 0 {
		return Source{}, ErrNoGround
	}
	cell, err := CellFor(b.Location, s.resolution)
	if err != nil {
		return Source{}, err
	}
	src := Source{Cell: cell, Location: b.Location, GroundAlt: b.GroundAlt, Time: t}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.IndexFunc(s.ring, func(x Source) bool { return x.Cell == cell }); i >= 0 {
		s.ring[i] = src
		return src, nil
	}
	if len(s.ring) < cap(s.ring) {
		s.ring = append(s.ring, src)
		return src, nil
	}
	oldest := 0
	for i := range s.ring {
		if s.ring[i].Time < s.ring[oldest].Time {
			oldest = i
		}
	}
	s.ring[oldest] = src
	return src, nil
}

// List returns the sources, oldest first.
func (s *Sources) List() []Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.ring)
	slices.SortStableFunc(out, func(a, b Source) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
	return out
}

// Len is the number of stored sources.
func (s *Sources) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ring)
}

// Reset forgets every source.
func (s *Sources) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring = s.ring[:0]
}

// Load replaces the ring with src (oldest first), keeping the newest entries
// when src is larger than the ring.
func (s *Sources) Load(src []Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring = s.ring[:0]
	if n := len(src) - cap(s.ring); n > 0 {
		src = src[n:]
	}
	s.ring = append(s.ring, src...)
}
