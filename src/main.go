// sleep analyzer entrypoint.
//
// Decodes one .bys pressure-therapy session log, prints the session report
// (start/end time, device model, sleep minutes, max/min/median pressure and
// a preview of the first valid samples) to stdout, and renders the pressure
// chart to a PNG. Optionally emits a structured JSON session report.
//
// Design notes:
// - stdout carries only the report lines; diagnostics go to stderr via zap.
// - A fatal decode/analysis error prints nothing of the report: the
//   pipeline either completes or fails as a whole.
// - Dependency direction: main -> bys for decoding, analysis for
//   aggregation, chartrender for presentation.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/yangkang5303/sleep/src/analysis"
	"github.com/yangkang5303/sleep/src/bys"
	"github.com/yangkang5303/sleep/src/chartrender"
	"github.com/yangkang5303/sleep/src/logging"
)

// previewSamples is how many leading valid samples the report lists.
const previewSamples = 10

func main() {
	file := flag.String("file", "", "Path to the .bys session log (required)")
	chartOut := flag.String("chart", "pressure_chart.png", "Output PNG path for the pressure chart (empty disables)")
	jsonOut := flag.String("json", "", "Optional path for a JSON session report")
	chartWidth := flag.Int("chart-width", 1100, "Chart width in pixels")
	chartHeight := flag.Int("chart-height", 360, "Chart height in pixels")
	logLevel := flag.String("log-level", "info", "Log level (debug|info|warn|error)")
	flag.Parse()

	logger, err := logging.New(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "missing required -file")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*file, *chartOut, *jsonOut, *chartWidth, *chartHeight, logger); err != nil {
		logger.Error("session analysis failed", zap.String("file", *file), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the full pipeline: load -> decode header -> decode samples ->
// analyze -> report/chart. Any error aborts before the report is printed.
func run(path, chartOut, jsonOut string, chartWidth, chartHeight int, logger *zap.Logger) error {
	buf, err := bys.Load(path)
	if err != nil {
		return err
	}
	logger.Info("session file loaded", zap.String("file", path), zap.Int("bytes", len(buf)))

	hdr, err := bys.DecodeHeader(buf)
	if err != nil {
		return err
	}
	logger.Debug("header decoded",
		zap.String("start", hdr.StartTime.String()),
		zap.String("end", hdr.EndTime.String()),
		zap.String("model", hdr.DeviceModel),
	)

	samples := bys.DecodeSamples(buf)
	logger.Debug("samples decoded", zap.Int("count", len(samples)))

	sum, err := analysis.Analyze(hdr.StartTime.Time(), samples)
	if err != nil {
		return err
	}

	printReport(hdr, sum)

	if jsonOut != "" {
		if err := writeSessionJSON(jsonOut, path, hdr, sum); err != nil {
			logger.Warn("write session json failed", zap.String("path", jsonOut), zap.Error(err))
		} else {
			logger.Info("wrote session report JSON", zap.String("path", jsonOut))
		}
	}

	if chartOut != "" {
		f, err := os.Create(chartOut)
		if err != nil {
			return fmt.Errorf("create chart file: %w", err)
		}
		defer f.Close()
		opts := chartrender.Options{
			Width:   chartWidth,
			Height:  chartHeight,
			Caption: chartCaption(sum),
		}
		if err := chartrender.RenderPNG(f, sum.TimeAxis, sum.ValidSamples, sum.MaxPressure, sum.MinPressure, sum.MedianPressure, opts); err != nil {
			return err
		}
		logger.Info("chart written", zap.String("path", chartOut),
			zap.Int("width", chartWidth), zap.Int("height", chartHeight))
	}
	return nil
}

// printReport writes the human-readable session lines to stdout.
func printReport(hdr bys.Header, sum analysis.SessionSummary) {
	fmt.Printf("Start time:       %s\n", hdr.StartTime)
	fmt.Printf("End time:         %s\n", hdr.EndTime)
	fmt.Printf("Device model:     %s\n", hdr.DeviceModel)
	fmt.Printf("Sleep minutes:    %d\n", sum.SleepMinutes)
	fmt.Printf("Max pressure:     %d\n", sum.MaxPressure)
	fmt.Printf("Min pressure:     %d\n", sum.MinPressure)
	fmt.Printf("Median pressure:  %.1f\n", sum.MedianPressure)
	fmt.Printf("Pressure preview: %v\n", previewOf(sum.ValidSamples))
}

// previewOf returns the first previewSamples valid samples.
func previewOf(valid []uint16) []uint16 {
	if len(valid) > previewSamples {
		return valid[:previewSamples]
	}
	return valid
}

func chartCaption(sum analysis.SessionSummary) string {
	return fmt.Sprintf("minutes=%d max=%d min=%d median=%.1f",
		sum.SleepMinutes, sum.MaxPressure, sum.MinPressure, sum.MedianPressure)
}

// sessionReport is the structured JSON emitted with -json.
type sessionReport struct {
	GeneratedAt    string  `json:"generated_at"`
	SourceFile     string  `json:"source_file"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	DeviceModel    string  `json:"device_model"`
	SleepMinutes   int     `json:"sleep_minutes"`
	MaxPressure    uint16  `json:"max_pressure"`
	MinPressure    uint16  `json:"min_pressure"`
	MedianPressure float64 `json:"median_pressure"`
	// PreviewSamples mirrors the stdout preview, not the full series.
	PreviewSamples []uint16 `json:"preview_samples"`
}

func writeSessionJSON(path, source string, hdr bys.Header, sum analysis.SessionSummary) error {
	rep := sessionReport{
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339Nano),
		SourceFile:     source,
		StartTime:      hdr.StartTime.String(),
		EndTime:        hdr.EndTime.String(),
		DeviceModel:    hdr.DeviceModel,
		SleepMinutes:   sum.SleepMinutes,
		MaxPressure:    sum.MaxPressure,
		MinPressure:    sum.MinPressure,
		MedianPressure: sum.MedianPressure,
		PreviewSamples: previewOf(sum.ValidSamples),
	}
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
