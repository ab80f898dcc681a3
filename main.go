package main

import (
	"flag"
	"io"
	"os"

	"k8s.io/klog/v2"

	"github.com/g-uva/sjf-cloudsim/pkg/metrics"
	"github.com/g-uva/sjf-cloudsim/pkg/report"
	"github.com/g-uva/sjf-cloudsim/pkg/scenarios"
)

// Runs every built-in case and prints its results. See cmd/sjfsim for the
// configurable entry point.
func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	if err := run(os.Stdout); err != nil {
		klog.ErrorS(err, "Catalog run failed")
		klog.Flush()
		os.Exit(1)
	}
}

func run(w io.Writer) error {
	for _, c := range scenarios.Catalog() {
		outcomes, err := c.Run()
		if err != nil {
			return err
		}
		for _, out := range outcomes {
			if err := report.PrintTable(w, c.Description+" ("+out.Scenario+")", out.Completed); err != nil {
				return err
			}
			if err := report.PrintSummary(w, metrics.Summarize(out.Completed)); err != nil {
				return err
			}
		}
	}
	return nil
}
