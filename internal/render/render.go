// Package render draws report charts and maps as SVG with gonum/plot.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"iter"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
)

// Chart sizes.
const (
	Width     = 10 * vg.Inch
	Height    = 6 * vg.Inch
	MapWidth  = 8 * vg.Inch
	MapHeight = 9 * vg.Inch
)

var barColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func rotateNominalTicks(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight
}

// SVG encodes p at the given size.
func SVG(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(w, h, "svg")
	if err != nil {
		return nil, fmt.Errorf("failed to create svg canvas: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write svg: %w", err)
	}
	return buf.Bytes(), nil
}

// Bar draws one bar per entry, in entry order.
func Bar(title, xLabel, yLabel string, result model.AggregationResult) ([]byte, error) {
	if result.Len() == 0 {
		return nil, domainerrors.NoData(fmt.Sprintf("%s: nothing to plot", title))
	}

	entries := result.Entries()
	values := make(plotter.Values, len(entries))
	labels := make([]string, len(entries))
	for i, e := range entries {
		values[i] = e.Value
		labels[i] = e.Key
	}

	p := newPlot(title, xLabel, yLabel)
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars, plotter.NewGrid())

	p.NominalX(labels...)
	rotateNominalTicks(p)
	p.Y.Min = 0
	return SVG(p, Width, Height)
}

// pivotGrid adapts a pivot matrix to plotter.GridXYZ with rows on Y and columns on X.
type pivotGrid struct {
	m [][]float64
}

func (g pivotGrid) Dims() (c, r int) {
	if len(g.m) == 0 {
		return 0, 0
	}
	return len(g.m[0]), len(g.m)
}
func (g pivotGrid) Z(c, r int) float64 { return g.m[r][c] }
func (g pivotGrid) X(c int) float64 { return float64(c) }
func (g pivotGrid) Y(r int) float64 { return float64(r) }

// Heatmap draws a pivot table as a colored grid.
func Heatmap(title string, pivot model.PivotTable) ([]byte, error) {
	rows, cols := pivot.Rows(), pivot.Cols()
	if len(rows) == 0 || len(cols) == 0 {
		return nil, domainerrors.NoData(fmt.Sprintf("%s: nothing to plot", title))
	}

	hm := plotter.NewHeatMap(pivotGrid{m: pivot.Matrix()}, palette.Heat(12, 1))
	if hm.Max <= hm.Min {
		hm.Max = hm.Min + 1
	}

	p := newPlot(title, pivot.ColLabel, pivot.RowLabel)
	p.Add(hm)
	p.NominalX(cols...)
	p.NominalY(rows...)
	rotateNominalTicks(p)
	return SVG(p, Width, Height)
}

// Lines draws one line per category. Consecutive times with no point break the line.
func Lines(title, xLabel, yLabel string, points iter.Seq[model.SeriesPoint]) ([]byte, error) {
	var times, categories []string
	timeIndex := make(map[string]int)
	byCategory := make(map[string]map[int]float64)

	for pt := range points {
		if _, ok := timeIndex[pt.Time]; !ok {
			timeIndex[pt.Time] = len(times)
			times = append(times, pt.Time)
		}
		if _, ok := byCategory[pt.Category]; !ok {
			byCategory[pt.Category] = make(map[int]float64)
			categories = append(categories, pt.Category)
		}
		byCategory[pt.Category][timeIndex[pt.Time]] = pt.Value
	}
	if len(times) == 0 {
		return nil, domainerrors.NoData(fmt.Sprintf("%s: nothing to plot", title))
	}

	p := newPlot(title, xLabel, yLabel)
	p.Add(plotter.NewGrid())
	for i, cat := range categories {
		segments := segmentsOf(byCategory[cat], len(times))
		for j, seg := range segments {
			line, scatter, err := plotter.NewLinePoints(seg)
			if err != nil {
				return nil, err
			}
			line.Color = plotutil.Color(i)
			line.Width = vg.Points(2)
			scatter.Color = plotutil.Color(i)
			scatter.Shape = draw.CircleGlyph{}
			p.Add(line, scatter)
			if j == 0 {
				p.Legend.Add(cat, line)
			}
		}
	}
	p.Legend.Top = true
	p.NominalX(times...)
	rotateNominalTicks(p)
	return SVG(p, Width, Height)
}

// segmentsOf splits the values of one category into runs of consecutive time indexes.
func segmentsOf(values map[int]float64, n int) []plotter.XYs {
	var segments []plotter.XYs
	var cur plotter.XYs
	for i := 0; i < n; i++ {
		v, ok := values[i]
		if !ok {
			if len(cur) > 0 {
				segments = append(segments, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(i), Y: v})
	}
	if len(cur) > 0 {
		segments = append(segments, cur)
	}
	return segments
}

// Boxes draws one boxplot per group using the group's own summary, so boxes, whiskers
// and outliers agree with the tables shown next to the chart.
func Boxes(title, yLabel string, groups []model.GroupDistribution) ([]byte, error) {
	if len(groups) == 0 {
		return nil, domainerrors.NoData(fmt.Sprintf("%s: nothing to plot", title))
	}

	p := newPlot(title, "", yLabel)
	p.Add(plotter.NewGrid())
	labels := make([]string, len(groups))
	for i, g := range groups {
		if len(g.Values) == 0 {
			return nil, domainerrors.NoData(fmt.Sprintf("%s: group %s has no values", title, g.Key))
		}
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(g.Values))
		if err != nil {
			return nil, err
		}
		applyDistribution(box, g.Distribution, g.Values)
		box.FillColor = plotutil.Color(i)
		p.Add(box)
		labels[i] = g.Key
	}
	p.NominalX(labels...)
	if len(groups) > 1 {
		rotateNominalTicks(p)
	}
	return SVG(p, Width, Height)
}

func applyDistribution(box *plotter.BoxPlot, d model.Distribution, values []float64) {
	box.Median = d.Median
	box.Quartile1 = d.Q1
	box.Quartile3 = d.Q3
	box.AdjLow = d.LowerWhisker
	box.AdjHigh = d.UpperWhisker
	box.Min = d.Min
	box.Max = d.Max
	box.Outside = box.Outside[:0]
	for i, v := range values {
		if v < d.LowerFence || v > d.UpperFence {
			box.Outside = append(box.Outside, i)
		}
	}
}
