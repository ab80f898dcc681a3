// Package report renders completed jobs for people and spreadsheets.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/g-uva/sjf-cloudsim/pkg/core"
	"github.com/g-uva/sjf-cloudsim/pkg/metrics"
)

var header = []string{"Cloudlet ID", "STATUS", "VM ID", "Time", "Start", "Finish", "Turnaround", "Waiting"}

// PrintTable writes one fixed-width row per job, in the order given.
func PrintTable(w io.Writer, title string, completed []core.CompletedJob) error {
	if _, err := fmt.Fprintf(w, "\n========== %s ==========\n", title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-12s %-8s %-6s %-10s %-10s %-10s %-11s %-10s\n",
		header[0], header[1], header[2], header[3], header[4], header[5], header[6], header[7]); err != nil {
		return err
	}
	for _, c := range completed {
		if _, err := fmt.Fprintf(w, "%-12d %-8s %-6d %-10.2f %-10.2f %-10.2f %-11.2f %-10.2f\n",
			c.ID, c.Status, c.MachineID, c.ActualCPUTime, c.StartTime, c.FinishTime,
			metrics.Turnaround(c), metrics.Waiting(c)); err != nil {
			return err
		}
	}
	return nil
}

// PrintSummary writes the run-wide and per-machine aggregates.
func PrintSummary(w io.Writer, s metrics.Summary) error {
	if _, err := fmt.Fprintf(w, "jobs=%d makespan=%.2f avg_turnaround=%.2f avg_waiting=%.2f max_waiting=%.2f\n",
		s.Jobs, s.Makespan, s.AvgTurnaround, s.AvgWaiting, s.MaxWaiting); err != nil {
		return err
	}
	for _, m := range s.PerMachine {
		if _, err := fmt.Fprintf(w, "  vm=%-4d jobs=%-4d busy_until=%-10.2f avg_turnaround=%-10.2f avg_waiting=%.2f\n",
			m.MachineID, m.Jobs, m.BusyUntil, m.AvgTurnaround, m.AvgWaiting); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes completed jobs with the same columns as PrintTable.
func WriteCSV(w io.Writer, completed []core.CompletedJob) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, c := range completed {
		row := []string{
			strconv.Itoa(c.ID),
			c.Status.String(),
			strconv.Itoa(c.MachineID),
			formatFloat(c.ActualCPUTime),
			formatFloat(c.StartTime),
			formatFloat(c.FinishTime),
			formatFloat(metrics.Turnaround(c)),
			formatFloat(metrics.Waiting(c)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportToCSV writes completed jobs to dir/<name>_<timestamp>.csv and
// returns the file name.
func ExportToCSV(dir, name string, completed []core.CompletedJob) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating results directory: %w", err)
	}
	filename := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", name, time.Now().Format("20060102-150405")))
	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteCSV(f, completed); err != nil {
		return "", fmt.Errorf("writing %s: %w", filename, err)
	}
	return filename, f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
