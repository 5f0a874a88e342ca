// Package chartrender draws the session pressure curve: one line series
// over the minute-resolution time axis, dashed reference lines for the
// max/min/median pressure, hour ticks labeled HH:MM and a legend. It has
// no decoding responsibility; callers hand it the already-computed data.
package chartrender

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Options controls chart presentation only; data is passed separately.
type Options struct {
	Width   int
	Height  int
	Title   string
	Caption string // stamped onto the bottom-left of the image when set
}

// ErrNoSeries reports a render call without any data points.
var ErrNoSeries = errors.New("no data points to chart")

const (
	defaultWidth  = 1100
	defaultHeight = 360
)

// lineStyle renders a connected line with small point dots.
func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 1.5,
		DotWidth:    2,
		DotColor:    col,
	}
}

// markerStyle renders a dashed horizontal reference line.
func markerStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor:     col,
		StrokeWidth:     1.0,
		StrokeDashArray: []float64{5.0, 5.0},
	}
}

// Render draws the pressure chart and returns the image. axis and values
// must be the same length; maxP/minP/medianP become the three reference
// lines.
func Render(axis []time.Time, values []uint16, maxP, minP uint16, medianP float64, opts Options) (image.Image, error) {
	if len(axis) == 0 || len(values) == 0 {
		return nil, ErrNoSeries
	}
	if len(axis) != len(values) {
		return nil, fmt.Errorf("axis/value length mismatch: %d vs %d", len(axis), len(values))
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.Title == "" {
		opts.Title = "Pressure Data"
	}

	times := axis
	ys := make([]float64, len(values))
	for i, v := range values {
		ys[i] = float64(v)
	}
	// go-chart needs at least two X values; pad a single-sample session.
	if len(times) == 1 {
		times = []time.Time{times[0], times[0].Add(1 * time.Minute)}
		ys = []float64{ys[0], ys[0]}
	}
	first, last := times[0], times[len(times)-1]

	series := []chart.Series{
		chart.TimeSeries{Name: "Pressure", XValues: times, YValues: ys, Style: lineStyle(chart.ColorBlue)},
		chart.TimeSeries{Name: "Max Pressure", XValues: []time.Time{first, last}, YValues: []float64{float64(maxP), float64(maxP)}, Style: markerStyle(chart.ColorRed)},
		chart.TimeSeries{Name: "Min Pressure", XValues: []time.Time{first, last}, YValues: []float64{float64(minP), float64(minP)}, Style: markerStyle(chart.ColorGreen)},
		chart.TimeSeries{Name: "Median Pressure", XValues: []time.Time{first, last}, YValues: []float64{medianP, medianP}, Style: markerStyle(chart.ColorYellow)},
	}

	loY := math.Min(float64(minP), ys[0])
	hiY := math.Max(float64(maxP), ys[0])
	for _, v := range ys {
		if v < loY {
			loY = v
		}
		if v > hiY {
			hiY = v
		}
	}
	nMin, nMax := niceAxisBounds(loY, hiY)

	gridStyle := chart.Style{StrokeColor: chart.ColorAlternateGray, StrokeWidth: 1.0}
	ch := chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 48}},
		XAxis: chart.XAxis{
			Name:           "Time",
			Ticks:          hourTicks(first, last),
			GridMajorStyle: gridStyle,
		},
		YAxis: chart.YAxis{
			Name:           "Pressure",
			Range:          &chart.ContinuousRange{Min: nMin, Max: nMax},
			GridMajorStyle: gridStyle,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode rendered chart: %w", err)
	}
	if opts.Caption != "" {
		img = drawCaption(img, opts.Caption)
	}
	return img, nil
}

// RenderPNG renders the chart and PNG-encodes it to w.
func RenderPNG(w io.Writer, axis []time.Time, values []uint16, maxP, minP uint16, medianP float64, opts Options) error {
	img, err := Render(axis, values, maxP, minP, medianP, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// hourTicks builds one tick per clock hour across [minT, maxT], labeled
// HH:MM. The first tick is rounded down to the hour boundary so labels land
// on whole hours.
func hourTicks(minT, maxT time.Time) []chart.Tick {
	start := minT.UTC()
	s := start.Unix()
	st := int64(time.Hour / time.Second)
	aligned := time.Unix((s/st)*st, 0).UTC()
	ticks := []chart.Tick{}
	for t := aligned; !t.After(maxT.UTC().Add(time.Hour)); t = t.Add(time.Hour) {
		ticks = append(ticks, chart.Tick{Value: float64(chart.TimeToFloat64(t)), Label: t.Local().Format("15:04")})
		if len(ticks) > 24 { // keep it readable
			break
		}
	}
	return ticks
}

// niceAxisBounds pads the Y range by 5% and rounds both ends to the span's
// order of magnitude.
func niceAxisBounds(min, max float64) (float64, float64) {
	if math.IsNaN(min) || math.IsNaN(max) {
		return min, max
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	pad := span * 0.05
	if pad <= 0 {
		pad = 1
	}
	a := min - pad
	b := max + pad
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if !math.IsInf(mag, 0) && mag > 0 {
		a = math.Floor(a/mag) * mag
		b = math.Ceil(b/mag) * mag
	}
	return a, b
}

// drawCaption stamps text onto the bottom-left of the image over a dark box.
func drawCaption(img image.Image, text string) image.Image {
	if img == nil || strings.TrimSpace(text) == "" {
		return img
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	pad := 6
	face := basicfont.Face7x13
	textCol := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	dr := &font.Drawer{Dst: rgba, Src: textCol, Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + 8
	y := b.Max.Y - 6
	bg := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 200})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad/2)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return rgba
}
