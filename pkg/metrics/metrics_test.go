package metrics

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/g-uva/sjf-cloudsim/pkg/core"
)

func record(id, machine int, submit, start, finish float64) core.CompletedJob {
	return core.CompletedJob{
		ID: id, MachineID: machine, Status: core.Success,
		SubmissionTime: submit, StartTime: start, FinishTime: finish,
		ActualCPUTime: finish - start,
	}
}

func TestTurnaroundAndWaiting(t *testing.T) {
	c := record(0, 0, 0, 40, 100)
	if got := Turnaround(c); got != 100 {
		t.Errorf("expected turnaround 100, got %g", got)
	}
	if got := Waiting(c); got != 40 {
		t.Errorf("expected waiting 40, got %g", got)
	}
}

func TestSummarize(t *testing.T) {
	completed := []core.CompletedJob{
		record(0, 0, 0, 0, 40),
		record(3, 0, 0, 40, 100),
		record(1, 1, 0, 0, 80),
		record(2, 1, 0, 80, 300),
	}
	got := Summarize(completed)
	want := Summary{
		Jobs:          4,
		AvgTurnaround: (40 + 100 + 80 + 300) / 4.0,
		AvgWaiting:    (0 + 40 + 0 + 80) / 4.0,
		MaxWaiting:    80,
		Makespan:      300,
		PerMachine: []MachineSummary{
			{MachineID: 0, Jobs: 2, BusyUntil: 100, AvgTurnaround: 70, AvgWaiting: 20},
			{MachineID: 1, Jobs: 2, BusyUntil: 300, AvgTurnaround: 190, AvgWaiting: 40},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if diff := cmp.Diff(Summary{}, Summarize(nil)); diff != "" {
		t.Errorf("expected zero summary (-want +got):\n%s", diff)
	}
}
