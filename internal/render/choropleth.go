package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/peterstace/simplefeatures/geom"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	geodata "github.com/geodados/municipio-data-etl/internal/geo"
)

// MapOptions parameterizes the choropleth artifact.
type MapOptions struct {
	Title           string
	ColorScale      string // "blue-red", "kindlmann", "black-body"
	DPI             int
	BoundaryOverlay bool
}

var (
	municipalEdge = color.Gray{Y: 150}
	boundaryEdge  = color.Black
)

// Choropleth renders the population map: one filled polygon per surviving
// geometry record, colored through the scale's normalization, with optional
// dissolved state boundaries drawn on top. The image is written to path at
// the requested DPI.
func Choropleth(records []geodata.GeometryRecord, boundaries []geodata.BoundaryRecord, scale geodata.Scale, path string, opts MapOptions) error {
	m, err := colorMap(opts.ColorScale)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.HideAxes()

	for _, rec := range records {
		fill := colorAt(m, scale.Normalize(rec.Population))
		for _, rings := range polygonRings(rec.Geometry) {
			poly, err := plotter.NewPolygon(rings...)
			if err != nil {
				return fmt.Errorf("render municipality %s: %w", rec.ID, err)
			}
			poly.Color = fill
			poly.LineStyle.Color = municipalEdge
			poly.LineStyle.Width = vg.Points(0.05)
			p.Add(poly)
		}
	}

	if opts.BoundaryOverlay {
		for _, b := range boundaries {
			for _, rings := range polygonRings(b.Geometry) {
				for _, ring := range rings {
					line, err := plotter.NewLine(ring)
					if err != nil {
						return fmt.Errorf("render boundary %s: %w", b.Key, err)
					}
					line.Color = boundaryEdge
					line.Width = vg.Points(1.8)
					p.Add(line)
				}
			}
		}
	}

	return savePNG(p, path, 14*vg.Inch, 14*vg.Inch, opts.DPI)
}

// polygonRings flattens a polygon or multipolygon into per-polygon ring sets
// (exterior ring first). Non-area geometries contribute nothing.
func polygonRings(g geom.Geometry) [][]plotter.XYer {
	switch g.Type() {
	case geom.TypePolygon:
		return [][]plotter.XYer{singlePolygonRings(g.MustAsPolygon())}
	case geom.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		out := make([][]plotter.XYer, 0, mp.NumPolygons())
		for i := 0; i < mp.NumPolygons(); i++ {
			out = append(out, singlePolygonRings(mp.PolygonN(i)))
		}
		return out
	default:
		return nil
	}
}

func singlePolygonRings(poly geom.Polygon) []plotter.XYer {
	rings := []plotter.XYer{ringXYs(poly.ExteriorRing())}
	for i := 0; i < poly.NumInteriorRings(); i++ {
		rings = append(rings, ringXYs(poly.InteriorRingN(i)))
	}
	return rings
}

func ringXYs(ring geom.LineString) plotter.XYs {
	seq := ring.Coordinates()
	xys := make(plotter.XYs, seq.Length())
	for i := 0; i < seq.Length(); i++ {
		xy := seq.GetXY(i)
		xys[i].X = xy.X
		xys[i].Y = xy.Y
	}
	return xys
}

// savePNG writes the plot at an explicit DPI. plot.Save only emits the
// default resolution, so the canvas is constructed directly. The image lands
// at a temp path first so an interrupted write never leaves a truncated PNG
// at the destination.
func savePNG(p *plot.Plot, path string, w, h vg.Length, dpi int) error {
	if dpi <= 0 {
		dpi = 300
	}

	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(f.Name())

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("move %s into place: %w", path, err)
	}
	return nil
}
