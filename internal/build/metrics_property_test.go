//go:build property

package build

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestStatsProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	outcome := gen.IntRange(0, 2)
	duration := gen.Int64Range(0, 60_000)

	properties.Property("counters add up to total", prop.ForAll(
		func(outcomes []int, durations []int64) bool {
			var m metrics
			for i, o := range outcomes {
				d := durations[i%len(durations)]
				switch o {
				case 0:
					m.record(&Result{Success: true, DurationMS: d}, nil)
				case 1:
					m.record(&Result{DurationMS: d}, nil)
				default:
					m.record(nil, errFake)
				}
			}
			s := m.snapshot()
			return s.Total == int64(len(outcomes)) &&
				s.Succeeded+s.Failed+s.Errored == s.Total
		},
		gen.SliceOf(outcome),
		gen.SliceOfN(4, duration),
	))

	properties.Property("average stays within recorded durations", prop.ForAll(
		func(durations []int64) bool {
			if len(durations) == 0 {
				return true
			}
			var m metrics
			lo, hi := durations[0], durations[0]
			for _, d := range durations {
				lo, hi = min(lo, d), max(hi, d)
				m.record(&Result{Success: true, DurationMS: d}, nil)
			}
			avg := m.snapshot().AverageMS
			return avg >= lo && avg <= hi
		},
		gen.SliceOf(duration),
	))

	properties.TestingRun(t)
}

type fakeErr struct{}

func (fakeErr) Error() string { return "fake" }

var errFake error = fakeErr{}
