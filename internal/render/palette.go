// Package render draws the choropleth map and summary charts with gonum/plot.
package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// colorMap resolves a named color scale to a gonum color map spanning [0, 1].
// "blue-red" mirrors the diverging scale of the original map (blue = low
// population, red = high).
func colorMap(name string) (palette.ColorMap, error) {
	var m palette.ColorMap
	switch name {
	case "", "blue-red":
		m = moreland.SmoothBlueRed()
	case "kindlmann":
		m = moreland.Kindlmann()
	case "black-body":
		m = moreland.ExtendedBlackBody()
	default:
		return nil, fmt.Errorf("unknown color scale %q", name)
	}

	m.SetMin(0)
	m.SetMax(1)
	return m, nil
}

// colorAt maps a normalized value through the color map, falling back to gray
// for values the map rejects.
func colorAt(m palette.ColorMap, t float64) color.Color {
	c, err := m.At(t)
	if err != nil {
		return color.Gray{Y: 128}
	}
	return c
}
