package metrics

import (
	"sort"

	"github.com/g-uva/sjf-cloudsim/pkg/core"
)

// Turnaround is the time from submission to finish.
func Turnaround(c core.CompletedJob) float64 {
	return c.FinishTime - c.SubmissionTime
}

// Waiting is turnaround minus the time the job actually ran. Turnaround is
// always measured from submission; measuring it from StartTime would make
// every waiting time zero.
func Waiting(c core.CompletedJob) float64 {
	return Turnaround(c) - (c.FinishTime - c.StartTime)
}

// MachineSummary aggregates the jobs that ran on one machine.
type MachineSummary struct {
	MachineID     int
	Jobs          int
	BusyUntil     float64
	AvgTurnaround float64
	AvgWaiting    float64
}

// Summary aggregates a whole run.
type Summary struct {
	Jobs          int
	AvgTurnaround float64
	AvgWaiting    float64
	MaxWaiting    float64
	Makespan      float64
	PerMachine    []MachineSummary // ascending by machine id
}

// Summarize folds completed records into averages, makespan and a
// per-machine breakdown.
func Summarize(completed []core.CompletedJob) Summary {
	var s Summary
	if len(completed) == 0 {
		return s
	}

	var sumTurn, sumWait float64
	byMachine := map[int]*MachineSummary{}
	for _, c := range completed {
		turn, wait := Turnaround(c), Waiting(c)
		sumTurn += turn
		sumWait += wait
		if wait > s.MaxWaiting {
			s.MaxWaiting = wait
		}
		if c.FinishTime > s.Makespan {
			s.Makespan = c.FinishTime
		}

		ms, ok := byMachine[c.MachineID]
		if !ok {
			ms = &MachineSummary{MachineID: c.MachineID}
			byMachine[c.MachineID] = ms
		}
		ms.Jobs++
		ms.AvgTurnaround += turn
		ms.AvgWaiting += wait
		if c.FinishTime > ms.BusyUntil {
			ms.BusyUntil = c.FinishTime
		}
	}

	n := float64(len(completed))
	s.Jobs = len(completed)
	s.AvgTurnaround = sumTurn / n
	s.AvgWaiting = sumWait / n

	for _, ms := range byMachine {
		ms.AvgTurnaround /= float64(ms.Jobs)
		ms.AvgWaiting /= float64(ms.Jobs)
		s.PerMachine = append(s.PerMachine, *ms)
	}
	sort.Slice(s.PerMachine, func(i, j int) bool {
		return s.PerMachine[i].MachineID < s.PerMachine[j].MachineID
	})
	return s
}
