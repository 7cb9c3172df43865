//go:build property

package watcher

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestDebouncerFlushProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("flush emits each path once, sorted", prop.ForAll(
		func(ids []int) bool {
			if len(ids) == 0 {
				return true
			}
			d := NewDebouncer(time.Hour)
			unique := make(map[string]bool)
			for _, id := range ids {
				p := fmt.Sprintf("sections/s%d.tex", id%7)
				unique[p] = true
				d.pending = append(d.pending, ChangeEvent{Path: p})
			}
			d.flush()

			batch := <-d.output
			if len(batch) != len(unique) {
				return false
			}
			return sort.SliceIsSorted(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
		},
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.Property("last event for a path wins", prop.ForAll(
		func(types []int) bool {
			if len(types) == 0 {
				return true
			}
			d := NewDebouncer(time.Hour)
			for _, ty := range types {
				d.pending = append(d.pending, ChangeEvent{Path: "main.tex", Type: EventType(ty)})
			}
			d.flush()

			batch := <-d.output
			return len(batch) == 1 && batch[0].Type == EventType(types[len(types)-1])
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}
