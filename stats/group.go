package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/VividCortex/gohistogram"
)

// Elapsed times are recorded in microseconds, from 1µs up to one day.
const (
	elapsedLowest  = 1
	elapsedHighest = int64(24 * time.Hour / time.Microsecond)
	elapsedDigits  = 3
)

// statGroup keeps running min, max, mean and sample deviation of a
// stream, plus a histogram for the median.
type statGroup struct {
	min   float64
	max   float64
	sum   float64
	count int64

	// Welford accumulators; mean is m.
	m float64
	s float64

	histogram *gohistogram.NumericHistogram
}

func newStatGroup() *statGroup {
	return &statGroup{histogram: gohistogram.NewHistogram(1000)}
}

func (s *statGroup) push(n float64) {
	s.histogram.Add(n)
	s.count++
	s.sum += n
	if s.count == 1 {
		s.min, s.max, s.m, s.s = n, n, n, 0
		return
	}
	s.min = math.Min(s.min, n)
	s.max = math.Max(s.max, n)
	prev := s.m
	s.m += (n - prev) / float64(s.count)
	s.s += (n - prev) * (n - s.m)
}

func (s *statGroup) mean() float64 {
	return s.m
}

// stdDev is the sample standard deviation, 0 below two values.
func (s *statGroup) stdDev() float64 {
	if s.count < 2 {
		return 0
	}
	return math.Sqrt(s.s / float64(s.count-1))
}

func (s *statGroup) median() float64 {
	if s.count == 0 {
		return 0
	}
	return s.histogram.Quantile(0.5)
}

// elapsedGroup tracks run durations in an HDR histogram next to the plain
// streaming statistics.
type elapsedGroup struct {
	*statGroup
	hist *hdrhistogram.Histogram
}

func newElapsedGroup() *elapsedGroup {
	return &elapsedGroup{
		statGroup: newStatGroup(),
		hist:      hdrhistogram.New(elapsedLowest, elapsedHighest, elapsedDigits),
	}
}

func (e *elapsedGroup) push(seconds float64) {
	e.statGroup.push(seconds)
	us := int64(math.Round(seconds * 1e6))
	if us < elapsedLowest {
		us = elapsedLowest
	}
	if us > elapsedHighest {
		us = elapsedHighest
	}
	_ = e.hist.RecordValue(us)
}

// percentile returns the q-th percentile (0-100) in seconds, kept within
// the observed range since histogram buckets round upwards.
func (e *elapsedGroup) percentile(q float64) float64 {
	if e.count == 0 {
		return 0
	}
	v := float64(e.hist.ValueAtQuantile(q)) / 1e6
	return math.Min(math.Max(v, e.min), e.max)
}

// WriteSummaries writes one block per summary, ordered by key, with the
// keys padded to a common width.
func WriteSummaries(w io.Writer, summaries []StatSummary) error {
	byKey := make(map[string]StatSummary, len(summaries))
	maxKeyLength := 0
	keys := make([]string, 0, len(summaries))
	for _, s := range summaries {
		k := s.Tool + "/" + string(s.Operation)
		if len(k) > maxKeyLength {
			maxKeyLength = len(k)
		}
		byKey[k] = s
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s := byKey[k]
		if _, err := fmt.Fprintf(w, "%-*s:\n", maxKeyLength, k); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, s.String()); err != nil {
			return err
		}
	}
	return nil
}
