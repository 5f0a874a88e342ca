package analysis

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/yangkang5303/sleep/src/bys"
)

// seriesWithPayload builds a sample series whose payload region holds the
// given values: PayloadStart filler samples, the payload, then a trailing
// footer sample that must always be excluded.
func seriesWithPayload(payload ...uint16) []uint16 {
	series := make([]uint16, PayloadStart)
	series = append(series, payload...)
	return append(series, 0)
}

func TestFilterValidDropsNoiseAndFooter(t *testing.T) {
	series := seriesWithPayload(5, 7, 2, 1, 9)
	got := FilterValid(series)
	want := []uint16{5, 7, 2, 9}
	if len(got) != len(want) {
		t.Fatalf("expected %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v got %v", want, got)
		}
	}
}

func TestFilterValidShortSeries(t *testing.T) {
	// Series too short to reach the payload region must yield nothing,
	// including the boundary case of exactly PayloadStart+1 samples where
	// the slice is empty after excluding the footer.
	for _, n := range []int{0, 1, PayloadStart, PayloadStart + 1} {
		series := make([]uint16, n)
		for i := range series {
			series[i] = 999 // would pass the noise filter if included
		}
		if got := FilterValid(series); len(got) != 0 {
			t.Fatalf("len=%d: expected empty, got %v", n, got)
		}
	}
}

func TestFilterValidNeverIncludesFooterOrNoise(t *testing.T) {
	series := seriesWithPayload(3, 0, 1, 4, 250)
	series[len(series)-1] = 800 // footer above the noise floor, still excluded
	got := FilterValid(series)
	for _, v := range got {
		if v <= NoiseFloor {
			t.Fatalf("noise value %d leaked through filter", v)
		}
		if v == 800 {
			t.Fatalf("footer sample leaked through filter")
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 valid samples, got %v", got)
	}
}

func TestAnalyzeAggregates(t *testing.T) {
	start := time.Date(2024, 6, 11, 22, 33, 0, 0, time.Local)
	sum, err := Analyze(start, seriesWithPayload(5, 7, 2, 1, 9))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if sum.SleepMinutes != 4 {
		t.Fatalf("expected 4 sleep minutes got %d", sum.SleepMinutes)
	}
	if sum.MaxPressure != 9 || sum.MinPressure != 2 {
		t.Fatalf("unexpected max/min: %d/%d", sum.MaxPressure, sum.MinPressure)
	}
	if sum.MedianPressure != 6.0 {
		t.Fatalf("expected median 6.0 got %v", sum.MedianPressure)
	}
	if len(sum.TimeAxis) != sum.SleepMinutes {
		t.Fatalf("axis length %d != sleep minutes %d", len(sum.TimeAxis), sum.SleepMinutes)
	}
	for i, ts := range sum.TimeAxis {
		if want := start.Add(time.Duration(i) * time.Minute); !ts.Equal(want) {
			t.Fatalf("axis[%d]=%v want %v", i, ts, want)
		}
	}
}

func TestAnalyzeOddCountMedian(t *testing.T) {
	sum, err := Analyze(time.Now(), seriesWithPayload(8, 4, 6))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if sum.MedianPressure != 6 {
		t.Fatalf("expected median 6 got %v", sum.MedianPressure)
	}
}

func TestAnalyzeStatisticsConsistency(t *testing.T) {
	sum, err := Analyze(time.Now(), seriesWithPayload(12, 3, 3, 40, 7, 7, 22))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if float64(sum.MinPressure) > sum.MedianPressure || sum.MedianPressure > float64(sum.MaxPressure) {
		t.Fatalf("expected min <= median <= max: %d %v %d", sum.MinPressure, sum.MedianPressure, sum.MaxPressure)
	}
	if sum.SleepMinutes != len(sum.ValidSamples) {
		t.Fatalf("sleep minutes %d != valid count %d", sum.SleepMinutes, len(sum.ValidSamples))
	}
}

func TestAnalyzeNoValidData(t *testing.T) {
	// All payload values at or below the noise floor.
	payload := make([]uint16, 10)
	payload[3] = 1
	_, err := Analyze(time.Now(), seriesWithPayload(payload...))
	if !errors.Is(err, ErrNoValidData) {
		t.Fatalf("expected ErrNoValidData got %v", err)
	}
	// Series shorter than the payload boundary.
	_, err = Analyze(time.Now(), make([]uint16, 5))
	if !errors.Is(err, ErrNoValidData) {
		t.Fatalf("expected ErrNoValidData for short series got %v", err)
	}
}

// TestEndToEndBuffer runs the full decode->analyze pipeline over a synthetic
// session file: 48 header bytes followed by payload samples.
func TestEndToEndBuffer(t *testing.T) {
	buf := make([]byte, bys.HeaderLen)
	copy(buf[bys.StartTimeOffset:], []byte{0x18, 0x06, 0x0b, 0x16, 0x21, 0x00})
	copy(buf[bys.EndTimeOffset:], []byte{0x18, 0x06, 0x0c, 0x06, 0x1d, 0x00})
	copy(buf[bys.ModelOffset:], "YH560A-243220492")
	// Header is 24 samples; two filler samples land the payload at index 26.
	for _, v := range []uint16{0, 0, 5, 7, 2, 1, 9, 0} {
		buf = binary.BigEndian.AppendUint16(buf, v)
	}

	hdr, err := bys.DecodeHeader(buf)
	if err != nil {
		t.Fatalf("decode header: %v", err)
	}
	sum, err := Analyze(hdr.StartTime.Time(), bys.DecodeSamples(buf))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	want := []uint16{5, 7, 2, 9}
	if len(sum.ValidSamples) != len(want) {
		t.Fatalf("expected valid %v got %v", want, sum.ValidSamples)
	}
	for i := range want {
		if sum.ValidSamples[i] != want[i] {
			t.Fatalf("expected valid %v got %v", want, sum.ValidSamples)
		}
	}
	if sum.SleepMinutes != 4 || sum.MaxPressure != 9 || sum.MinPressure != 2 || sum.MedianPressure != 6.0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	wantStart := time.Date(2024, 6, 11, 22, 33, 0, 0, time.Local)
	if !sum.TimeAxis[0].Equal(wantStart) {
		t.Fatalf("axis[0]=%v want %v", sum.TimeAxis[0], wantStart)
	}
	if !sum.TimeAxis[3].Equal(wantStart.Add(3 * time.Minute)) {
		t.Fatalf("axis[3]=%v want %v", sum.TimeAxis[3], wantStart.Add(3*time.Minute))
	}
}
