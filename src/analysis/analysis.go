// Package analysis turns a decoded sample series into the reportable
// session summary: payload slicing, noise filtering, aggregate pressure
// statistics and the minute-resolution time axis the chart is drawn on.
package analysis

import (
	"errors"
	"sort"
	"time"
)

const (
	// PayloadStart is the sample index where pressure readings begin. The
	// 26 leading samples cover the header block plus device-specific
	// framing; the boundary is empirical, confirmed against YH560A files.
	PayloadStart = 26
	// NoiseFloor: samples at or below this value are sensor noise or
	// mask-off readings and carry no pressure information.
	NoiseFloor = 1
)

// ErrNoValidData reports that nothing usable remained after slicing and
// filtering; there is nothing to summarize or chart.
var ErrNoValidData = errors.New("no valid pressure samples found")

// SessionSummary captures the aggregate metrics for one session.
// One valid sample corresponds to one elapsed minute of monitored time.
type SessionSummary struct {
	SleepMinutes   int      `json:"sleep_minutes"`
	MaxPressure    uint16   `json:"max_pressure"`
	MinPressure    uint16   `json:"min_pressure"`
	MedianPressure float64  `json:"median_pressure"`
	ValidSamples   []uint16 `json:"valid_samples"`
	// TimeAxis holds one timestamp per valid sample, anchored at the
	// session start and stepping one minute per sample. The end time is
	// never consulted; acquisition is assumed gap-free.
	TimeAxis []time.Time `json:"-"`
}

// FilterValid slices the series to the payload region and drops noise.
// The very last sample is always excluded; it is a trailing footer value,
// not data. Series too short to reach the payload yield nil.
func FilterValid(samples []uint16) []uint16 {
	hi := len(samples) - 1
	if hi <= PayloadStart {
		return nil
	}
	out := make([]uint16, 0, hi-PayloadStart)
	for _, s := range samples[PayloadStart:hi] {
		if s > NoiseFloor {
			out = append(out, s)
		}
	}
	return out
}

// Analyze computes the session summary over the physiologically valid
// portion of the series. start anchors the time axis. Returns
// ErrNoValidData when slicing and filtering leave nothing.
func Analyze(start time.Time, samples []uint16) (SessionSummary, error) {
	valid := FilterValid(samples)
	if len(valid) == 0 {
		return SessionSummary{}, ErrNoValidData
	}
	maxP, minP := valid[0], valid[0]
	for _, v := range valid[1:] {
		if v > maxP {
			maxP = v
		}
		if v < minP {
			minP = v
		}
	}
	axis := make([]time.Time, len(valid))
	for i := range axis {
		axis[i] = start.Add(time.Duration(i) * time.Minute)
	}
	return SessionSummary{
		SleepMinutes:   len(valid),
		MaxPressure:    maxP,
		MinPressure:    minP,
		MedianPressure: median(valid),
		ValidSamples:   valid,
		TimeAxis:       axis,
	}, nil
}

// median sorts a float64 copy; an even count averages the two central values.
func median(vals []uint16) float64 {
	cp := make([]float64, len(vals))
	for i, v := range vals {
		cp[i] = float64(v)
	}
	sort.Float64s(cp)
	n := len(cp)
	if n%2 == 1 {
		return cp[n/2]
	}
	return (cp[n/2-1] + cp[n/2]) / 2
}
