package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/twpayne/go-geom"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
)

const mapPaletteSize = 9

var (
	outlineColor   = color.Gray{Y: 90}
	unmatchedColor = color.Gray{Y: 220}
	bubbleColor    = color.RGBA{R: 34, G: 139, B: 34, A: 180}
)

// scale maps a value onto a palette index between min and max.
type scale struct {
	min, max float64
	colors   []color.Color
}

func newScale(values []float64, p palette.Palette) scale {
	s := scale{min: math.Inf(1), max: math.Inf(-1), colors: p.Colors()}
	for _, v := range values {
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
	}
	if len(values) == 0 {
		s.min, s.max = 0, 1
	}
	if s.max <= s.min {
		s.max = s.min + 1
	}
	return s
}

func (s scale) color(v float64) color.Color {
	i := int(math.Round((v - s.min) / (s.max - s.min) * float64(len(s.colors)-1)))
	i = max(0, min(i, len(s.colors)-1))
	return s.colors[i]
}

func mapPlot(title string) *plot.Plot {
	p := newPlot(title, "", "")
	p.HideAxes()
	return p
}

// Choropleth fills each polygon by its joined value. Unmatched entities of a left join are
// drawn in grey; point geometries become small markers.
func Choropleth(title string, joined model.JoinedGeoResult) ([]byte, error) {
	if len(joined.Entities) == 0 {
		return nil, domainerrors.NoData(fmt.Sprintf("%s: no geographic entities to draw", title))
	}

	var matched []float64
	for _, e := range joined.Entities {
		if e.Matched {
			matched = append(matched, e.Value)
		}
	}
	sc := newScale(matched, palette.Heat(mapPaletteSize, 1))

	p := mapPlot(title)
	for _, e := range joined.Entities {
		var fill color.Color = unmatchedColor
		if e.Matched {
			fill = sc.color(e.Value)
		}
		plotters, err := geometryPlotters(e.Geometry, fill)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name, err)
		}
		p.Add(plotters...)
	}
	addScaleLegend(p, sc)
	return SVG(p, MapWidth, MapHeight)
}

func addScaleLegend(p *plot.Plot, sc scale) {
	for _, v := range []float64{sc.max, (sc.min + sc.max) / 2, sc.min} {
		swatch, err := plotter.NewPolygon(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}})
		if err != nil {
			continue
		}
		swatch.Color = sc.color(v)
		p.Legend.Add(fmt.Sprintf("%.0f m³", v), swatch)
	}
	p.Legend.Top = true
}

// geometryPlotters converts one geometry into filled polygons or a marker.
func geometryPlotters(g geom.T, fill color.Color) ([]plot.Plotter, error) {
	switch t := g.(type) {
	case *geom.Polygon:
		poly, err := polygonPlotter(t, fill)
		if err != nil {
			return nil, err
		}
		return []plot.Plotter{poly}, nil
	case *geom.MultiPolygon:
		out := make([]plot.Plotter, 0, t.NumPolygons())
		for i := 0; i < t.NumPolygons(); i++ {
			poly, err := polygonPlotter(t.Polygon(i), fill)
			if err != nil {
				return nil, err
			}
			out = append(out, poly)
		}
		return out, nil
	case *geom.Point:
		sc, err := plotter.NewScatter(plotter.XYs{{X: t.X(), Y: t.Y()}})
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = fill
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		return []plot.Plotter{sc}, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported geometry %T", g)
	}
}

func polygonPlotter(poly *geom.Polygon, fill color.Color) (*plotter.Polygon, error) {
	rings := make([]plotter.XYer, 0, poly.NumLinearRings())
	for i := 0; i < poly.NumLinearRings(); i++ {
		coords := poly.LinearRing(i).Coords()
		xys := make(plotter.XYs, len(coords))
		for j, c := range coords {
			xys[j] = plotter.XY{X: c.X(), Y: c.Y()}
		}
		rings = append(rings, xys)
	}
	p, err := plotter.NewPolygon(rings...)
	if err != nil {
		return nil, err
	}
	p.Color = fill
	p.LineStyle.Color = outlineColor
	p.LineStyle.Width = vg.Points(0.5)
	return p, nil
}

// Bubbles draws a circle at each entity centroid sized by its value, labelling the largest.
func Bubbles(title string, joined model.JoinedGeoResult, labelTop int) ([]byte, error) {
	if len(joined.Entities) == 0 {
		return nil, domainerrors.NoData(fmt.Sprintf("%s: no geographic entities to draw", title))
	}

	maxValue := 0.0
	for _, e := range joined.Entities {
		maxValue = math.Max(maxValue, e.Value)
	}
	if maxValue <= 0 {
		maxValue = 1
	}

	p := mapPlot(title)
	for _, e := range joined.Entities {
		sc, err := plotter.NewScatter(plotter.XYs{{X: e.Centroid[0], Y: e.Centroid[1]}})
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Color = bubbleColor
		if !e.Matched {
			sc.GlyphStyle.Color = unmatchedColor
		}
		sc.GlyphStyle.Radius = vg.Points(2 + 14*math.Sqrt(math.Max(e.Value, 0)/maxValue))
		p.Add(sc)
	}

	ranked := append([]model.JoinedGeoEntity(nil), joined.Entities...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Value > ranked[j].Value })
	if labelTop > len(ranked) {
		labelTop = len(ranked)
	}
	if labelTop > 0 {
		xys := make(plotter.XYs, labelTop)
		names := make([]string, labelTop)
		for i, e := range ranked[:labelTop] {
			xys[i] = plotter.XY{X: e.Centroid[0], Y: e.Centroid[1]}
			names[i] = e.Name
		}
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: names})
		if err != nil {
			return nil, err
		}
		p.Add(labels)
	}
	p.Add(plotter.NewGrid())
	return SVG(p, MapWidth, MapHeight)
}
