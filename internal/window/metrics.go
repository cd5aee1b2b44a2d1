package window

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidMetrics is returned when row metrics would corrupt offset math
	ErrInvalidMetrics = errors.New("invalid row metrics")
	// ErrInvalidConfig is returned for negative buffers
	ErrInvalidConfig = errors.New("invalid window config")
)

// RowMetrics describes the uniform geometry shared by every row of a list
type RowMetrics struct {
	RowHeight     float64 `json:"row_height"`
	RowMargin     float64 `json:"row_margin"`
	TrailerHeight float64 `json:"trailer_height"`
}

// Config holds the buffers around the viewport
type Config struct {
	// ViewBuffer is the extra distance rendered above and below the viewport
	ViewBuffer float64 `json:"view_buffer"`
	// EndBuffer is the distance from the bottom of the content that triggers a fetch
	EndBuffer float64 `json:"end_buffer"`
}

// ViewportState is the observed scroll position and container size
type ViewportState struct {
	ScrollOffset  float64 `json:"scroll_offset"`
	ContainerSize float64 `json:"container_size"`
}

// DefaultRowMetrics returns the engine defaults
func DefaultRowMetrics() RowMetrics {
	return RowMetrics{
		RowHeight:     44,
		RowMargin:     0,
		TrailerHeight: 120,
	}
}

// DefaultConfig returns the engine default buffers
func DefaultConfig() Config {
	return Config{
		ViewBuffer: 3000,
		EndBuffer:  600,
	}
}

// Stride is the distance between the tops of two consecutive rows
func (m RowMetrics) Stride() float64 {
	return m.RowHeight + m.RowMargin
}

// Top returns the offset of row i
func (m RowMetrics) Top(i int) float64 {
	return float64(i) * m.Stride()
}

// Validate rejects metrics that cannot produce strictly increasing offsets
func (m RowMetrics) Validate() error {
	switch {
	case !finite(m.RowHeight) || m.RowHeight <= 0:
		return fmt.Errorf("%w: row height must be positive, got %v", ErrInvalidMetrics, m.RowHeight)
	case !finite(m.RowMargin) || m.RowMargin < 0:
		return fmt.Errorf("%w: row margin must not be negative, got %v", ErrInvalidMetrics, m.RowMargin)
	case !finite(m.TrailerHeight) || m.TrailerHeight <= 0:
		return fmt.Errorf("%w: trailer height must be positive, got %v", ErrInvalidMetrics, m.TrailerHeight)
	}
	return nil
}

// Validate rejects negative or non-finite buffers
func (c Config) Validate() error {
	switch {
	case !finite(c.ViewBuffer) || c.ViewBuffer < 0:
		return fmt.Errorf("%w: view buffer must not be negative, got %v", ErrInvalidConfig, c.ViewBuffer)
	case !finite(c.EndBuffer) || c.EndBuffer < 0:
		return fmt.Errorf("%w: end buffer must not be negative, got %v", ErrInvalidConfig, c.EndBuffer)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
