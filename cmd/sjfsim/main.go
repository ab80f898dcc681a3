// Command sjfsim runs SJF cloud simulations from scenario files, CSV inputs,
// Kubernetes node manifests or the built-in catalog.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/g-uva/sjf-cloudsim/pkg/core"
	"github.com/g-uva/sjf-cloudsim/pkg/generator"
	"github.com/g-uva/sjf-cloudsim/pkg/loader"
	"github.com/g-uva/sjf-cloudsim/pkg/metrics"
	"github.com/g-uva/sjf-cloudsim/pkg/report"
	"github.com/g-uva/sjf-cloudsim/pkg/scenarios"
	"github.com/g-uva/sjf-cloudsim/pkg/simulation"
)

type options struct {
	scenario      string
	caseName      string
	machinesCSV   string
	jobsCSV       string
	nodesManifest string
	owner         int
	discipline    string
	policy        string
	out           string
	metricsAddr   string

	generateJobs string
	jobs         int
	seed         int64
}

func main() {
	var o options
	fs := pflag.CommandLine
	fs.StringVar(&o.scenario, "scenario", "", "path to a YAML scenario file")
	fs.StringVar(&o.caseName, "case", "", "name of a built-in case (base, explicit-binding, round-robin, two-owners, five-vms)")
	fs.StringVar(&o.machinesCSV, "machines-csv", "", "path to machines CSV (owner,count,capacity,cores,discipline)")
	fs.StringVar(&o.jobsCSV, "jobs-csv", "", "path to jobs CSV (owner,length,cores,file_size,output_size)")
	fs.StringVar(&o.nodesManifest, "nodes-manifest", "", "path to a Kubernetes NodeList manifest to use as machines")
	fs.IntVar(&o.owner, "owner", 0, "owner id for machines imported from --nodes-manifest")
	fs.StringVar(&o.discipline, "discipline", "time-shared", "default machine discipline: time-shared or space-shared")
	fs.StringVar(&o.policy, "policy", "sjf", "ordering policy")
	fs.StringVar(&o.out, "out", "", "directory to export per-run CSV results into")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address after the runs, e.g. :2112")
	fs.StringVar(&o.generateJobs, "generate-jobs", "", "write a random jobs CSV to this path and exit")
	fs.IntVar(&o.jobs, "jobs", 100, "number of jobs for --generate-jobs")
	fs.Int64Var(&o.seed, "seed", 1, "random seed for --generate-jobs")

	klog.InitFlags(nil)
	fs.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()
	defer klog.Flush()

	if err := run(o); err != nil {
		klog.ErrorS(err, "sjfsim failed")
		klog.Flush()
		os.Exit(1)
	}
}

func run(o options) error {
	if o.generateJobs != "" {
		if err := generator.GenerateJobs(o.generateJobs, generator.Mix{Owner: o.owner, Jobs: o.jobs, Seed: o.seed}); err != nil {
			return err
		}
		klog.InfoS("Generated jobs", "path", o.generateJobs, "jobs", o.jobs, "seed", o.seed)
		return nil
	}

	cases, err := selectCases(o)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	for _, c := range cases {
		outcomes, err := c.Run(simulation.WithRecorder(recorder))
		if err != nil {
			return err
		}
		for _, out := range outcomes {
			if err := report.PrintTable(os.Stdout, out.Scenario, out.Completed); err != nil {
				return err
			}
			if err := report.PrintSummary(os.Stdout, metrics.Summarize(out.Completed)); err != nil {
				return err
			}
			if o.out != "" {
				name, err := report.ExportToCSV(o.out, out.Scenario, out.Completed)
				if err != nil {
					return err
				}
				klog.InfoS("Exported results", "scenario", out.Scenario, "path", name)
			}
		}
	}

	if o.metricsAddr != "" {
		return serveMetrics(o.metricsAddr, recorder)
	}
	return nil
}

func selectCases(o options) ([]scenarios.Case, error) {
	switch {
	case o.scenario != "":
		sc, err := loader.LoadScenario(o.scenario)
		if err != nil {
			return nil, err
		}
		s, err := scenarios.FromFile(sc)
		if err != nil {
			return nil, err
		}
		return []scenarios.Case{{Name: s.Name, Scenarios: []scenarios.Scenario{s}}}, nil

	case o.caseName != "":
		c, ok := scenarios.Lookup(o.caseName)
		if !ok {
			return nil, fmt.Errorf("unknown case %q", o.caseName)
		}
		return []scenarios.Case{c}, nil

	case o.jobsCSV != "":
		s, err := csvScenario(o)
		if err != nil {
			return nil, err
		}
		return []scenarios.Case{{Name: s.Name, Scenarios: []scenarios.Scenario{s}}}, nil

	case o.machinesCSV != "" || o.nodesManifest != "":
		return nil, errors.New("--machines-csv and --nodes-manifest need --jobs-csv")

	default:
		return scenarios.Catalog(), nil
	}
}

func csvScenario(o options) (scenarios.Scenario, error) {
	disc, err := core.ParseDiscipline(o.discipline)
	if err != nil {
		return scenarios.Scenario{}, err
	}
	if disc == core.DisciplineUnset {
		disc = core.TimeShared
	}
	policy, err := simulation.ParsePolicy(o.policy)
	if err != nil {
		return scenarios.Scenario{}, err
	}

	var machines []core.MachineSpec
	switch {
	case o.nodesManifest != "":
		machines, err = loader.LoadMachinesFromNodeList(o.nodesManifest, o.owner)
	case o.machinesCSV != "":
		machines, err = loader.LoadMachinesFromCSV(o.machinesCSV)
	default:
		err = errors.New("--jobs-csv needs --machines-csv or --nodes-manifest")
	}
	if err != nil {
		return scenarios.Scenario{}, err
	}
	jobs, err := loader.LoadJobsFromCSV(o.jobsCSV)
	if err != nil {
		return scenarios.Scenario{}, err
	}
	return scenarios.Scenario{
		Name:       "cli",
		Discipline: disc,
		Policy:     policy,
		Machines:   machines,
		Jobs:       jobs,
	}, nil
}

// serveMetrics blocks until SIGINT or SIGTERM.
func serveMetrics(addr string, recorder *metrics.Recorder) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() {
		klog.InfoS("Serving metrics", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
