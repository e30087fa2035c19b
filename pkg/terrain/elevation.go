// Package terrain answers ground-height queries for the thermal base
// estimate and the simulator.
package terrain

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"glidecore/pkg/geo"
)

const (
	// ETOPO1 cell-registered grid: 10801 rows x 21601 cols, 1 arc-minute.
	etopo1Rows = 10801
	etopo1Cols = 21601
)

// HeightGetter returns the terrain elevation in meters above MSL.
type HeightGetter interface {
	Height(p geo.Point) (float64, error)
}

// HeightFunc adapts a plain function to HeightGetter.
type HeightFunc func(p geo.Point) (float64, error)

// Height calls f(p).
func (f HeightFunc) Height(p geo.Point) (float64, error) { return f(p) }

// Flat is terrain of constant elevation.
type Flat float64

// Height returns the constant elevation.
func (f Flat) Height(geo.Point) (float64, error) { return float64(f), nil }

// GridProvider reads a global grid of little-endian int16 elevations, row 0
// at 90N and column 0 at 180W.
type GridProvider struct {
	file       *os.File
	rows, cols int
	perDegree  float64
}

// NewElevationProvider opens the ETOPO1 binary file.
func NewElevationProvider(path string) (*GridProvider, error) {
	return NewGridProvider(path, etopo1Rows, etopo1Cols)
}

// NewGridProvider opens a grid file of rows x cols samples. The resolution
// follows from rows, which must span pole to pole inclusive.
func NewGridProvider(path string, rows, cols int) (*GridProvider, error) {
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("invalid grid shape %dx%d", rows, cols)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	want := int64(rows) * int64(cols) * 2
	if info.Size() != want {
		f.Close()
		return nil, fmt.Errorf("invalid elevation grid size: expected %d, got %d", want, info.Size())
	}

	return &GridProvider{
		file:      f,
		rows:      rows,
		cols:      cols,
		perDegree: float64(rows-1) / 180.0,
	}, nil
}

// Close closes the file handle.
func (g *GridProvider) Close() error {
	return g.file.Close()
}

// Height returns the elevation at p. Negative (sea floor) values are
// reported as they are stored.
func (g *GridProvider) Height(p geo.Point) (float64, error) {
	if p.Lat > 90 || p.Lat < -90 || p.Lon > 180 || p.Lon < -180 {
		return 0, fmt.Errorf("coordinates out of bounds: %f, %f", p.Lat, p.Lon)
	}

	row := int(math.Round((90.0 - p.Lat) * g.perDegree))
	col := int(math.Round((p.Lon + 180.0) * g.perDegree))

	row = max(0, min(row, g.rows-1))
	if col >= g.cols {
		col %= g.cols
	}

	offset := int64(row*g.cols+col) * 2

	b := make([]byte, 2)
	if _, err := g.file.ReadAt(b, offset); err != nil {
		return 0, err
	}
	return float64(int16(binary.LittleEndian.Uint16(b))), nil
}
