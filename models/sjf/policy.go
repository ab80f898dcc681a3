// Package sjf orders jobs Shortest-Job-First.
package sjf

import (
	"sort"

	"github.com/g-uva/sjf-cloudsim/pkg/core"
)

// Policy is the SJF ordering as a core.OrderingPolicy.
type Policy struct{}

func (Policy) Name() string { return "sjf" }

// Order returns OrderBySJF(jobs).
func (Policy) Order(jobs []*core.Job) []*core.Job { return OrderBySJF(jobs) }

// OrderBySJF returns a new slice with jobs ascending by length. Jobs of
// equal length keep their input order, so re-ordering the output is a no-op.
func OrderBySJF(jobs []*core.Job) []*core.Job {
	ordered := make([]*core.Job, len(jobs))
	copy(ordered, jobs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Length < ordered[j].Length
	})
	return ordered
}
