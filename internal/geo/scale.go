package geo

import (
	"fmt"
	"math"

	"github.com/geodados/municipio-data-etl/internal/domain"
)

// ScaleMode selects how population values map onto the color ramp.
type ScaleMode string

const (
	// ScaleLog compresses the value range logarithmically, compensating for
	// the extreme disparity between small and large municipalities.
	ScaleLog ScaleMode = "log"
	// ScaleLinear maps values proportionally.
	ScaleLinear ScaleMode = "linear"
)

// Scale normalizes population values into [0, 1] for the renderer.
type Scale struct {
	Mode ScaleMode
	Min  float64
	Max  float64
}

// NewScale builds a normalization over [vmin, vmax]. Requesting a log scale
// with vmin ≤ 0 is a configuration error: the returned scale falls back to
// linear and the error is a *domain.DegenerateScaleError the caller should
// log as a warning; rendering still proceeds.
func NewScale(mode ScaleMode, vmin, vmax float64) (Scale, error) {
	switch mode {
	case ScaleLog:
		if vmin <= 0 {
			return Scale{Mode: ScaleLinear, Min: vmin, Max: vmax}, &domain.DegenerateScaleError{Min: vmin}
		}
		return Scale{Mode: ScaleLog, Min: vmin, Max: vmax}, nil
	case ScaleLinear:
		return Scale{Mode: ScaleLinear, Min: vmin, Max: vmax}, nil
	default:
		return Scale{}, fmt.Errorf("unknown scale mode %q", mode)
	}
}

// ScaleFor builds a scale over the surviving records' population range.
func ScaleFor(mode ScaleMode, records []GeometryRecord) (Scale, error) {
	if len(records) == 0 {
		return Scale{Mode: ScaleLinear}, nil
	}

	vmin, vmax := records[0].Population, records[0].Population
	for _, rec := range records[1:] {
		vmin = math.Min(vmin, rec.Population)
		vmax = math.Max(vmax, rec.Population)
	}
	return NewScale(mode, vmin, vmax)
}

// Normalize maps v into [0, 1], clamping values outside [Min, Max]. A
// degenerate range (Min == Max) maps every value to 0.5.
func (s Scale) Normalize(v float64) float64 {
	if s.Min == s.Max {
		return 0.5
	}

	var t float64
	switch s.Mode {
	case ScaleLog:
		t = (math.Log(v) - math.Log(s.Min)) / (math.Log(s.Max) - math.Log(s.Min))
	default:
		t = (v - s.Min) / (s.Max - s.Min)
	}

	return math.Min(1, math.Max(0, t))
}
