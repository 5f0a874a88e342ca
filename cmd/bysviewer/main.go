// bysviewer is a small desktop viewer for .bys session logs: it decodes a
// file, shows the session header and aggregates, and displays the pressure
// chart. The chart can be exported as PNG.
package main

import (
	"flag"
	"fmt"
	"image"
	png "image/png"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/yangkang5303/sleep/src/analysis"
	"github.com/yangkang5303/sleep/src/bys"
	"github.com/yangkang5303/sleep/src/chartrender"
)

type uiState struct {
	app      fyne.App
	window   fyne.Window
	filePath string

	chartCanvas *canvas.Image
	headerLabel *widget.Label
	statsLabel  *widget.Label
	fileLabel   *widget.Label
}

func main() {
	var fileFlag string
	flag.StringVar(&fileFlag, "file", "", "Path to a .bys session log")
	flag.Parse()

	a := app.NewWithID("com.yangkang5303.sleep.bysviewer")
	w := a.NewWindow("BYS Viewer")
	w.Resize(fyne.NewSize(1100, 560))

	state := &uiState{app: a, window: w, filePath: fileFlag}

	state.fileLabel = widget.NewLabel(truncatePath(state.filePath, 60))
	state.headerLabel = widget.NewLabel("No session loaded")
	state.statsLabel = widget.NewLabel("")
	state.chartCanvas = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
	state.chartCanvas.FillMode = canvas.ImageFillContain
	state.chartCanvas.SetMinSize(fyne.NewSize(1000, 380))

	top := container.NewHBox(
		widget.NewButton("Open…", func() { openFileDialog(state) }),
		widget.NewButton("Reload", func() { loadSession(state) }),
		widget.NewButton("Export PNG", func() { exportChartPNG(state) }),
		widget.NewLabel("File:"), state.fileLabel,
	)
	content := container.NewBorder(
		container.NewVBox(top, state.headerLabel, state.statsLabel),
		nil, nil, nil,
		state.chartCanvas,
	)
	w.SetContent(content)

	if state.filePath != "" {
		loadSession(state)
	}
	w.ShowAndRun()
}

func openFileDialog(state *uiState) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		state.filePath = rc.URI().Path()
		state.fileLabel.SetText(truncatePath(state.filePath, 60))
		loadSession(state)
	}, state.window)
	d.Show()
}

// loadSession runs the decode/analyze pipeline and refreshes the chart.
func loadSession(state *uiState) {
	if state.filePath == "" {
		return
	}
	buf, err := bys.Load(state.filePath)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	hdr, err := bys.DecodeHeader(buf)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	sum, err := analysis.Analyze(hdr.StartTime.Time(), bys.DecodeSamples(buf))
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	img, err := chartrender.Render(sum.TimeAxis, sum.ValidSamples, sum.MaxPressure, sum.MinPressure, sum.MedianPressure, chartrender.Options{Width: 1000, Height: 380})
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	state.headerLabel.SetText(headerLine(hdr))
	state.statsLabel.SetText(statsLine(sum))
	state.chartCanvas.Image = img
	state.chartCanvas.Refresh()
}

func headerLine(hdr bys.Header) string {
	return fmt.Sprintf("Model %s | start %s | end %s", hdr.DeviceModel, hdr.StartTime, hdr.EndTime)
}

func statsLine(sum analysis.SessionSummary) string {
	return fmt.Sprintf("Sleep minutes: %d | max %d | min %d | median %.1f",
		sum.SleepMinutes, sum.MaxPressure, sum.MinPressure, sum.MedianPressure)
}

func exportChartPNG(state *uiState) {
	if state.chartCanvas == nil || state.chartCanvas.Image == nil {
		dialog.ShowInformation("Export", "No chart to export.", state.window)
		return
	}
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		_ = png.Encode(wc, state.chartCanvas.Image)
	}, state.window)
	fs.SetFileName("pressure_chart.png")
	fs.Show()
}

// truncatePath shortens long paths for the label, keeping the tail.
func truncatePath(p string, n int) string {
	if len(p) <= n {
		return p
	}
	if n <= 1 {
		return p[len(p)-n:]
	}
	return "…" + p[len(p)-n+1:]
}
