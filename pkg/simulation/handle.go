// Package simulation is the entry point for one self-contained run: configure
// machines and jobs, schedule them, run them, read back per-job records.
package simulation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/klog/v2"

	"github.com/g-uva/sjf-cloudsim/models/sjf"
	"github.com/g-uva/sjf-cloudsim/pkg/core"
	"github.com/g-uva/sjf-cloudsim/pkg/engine"
	"github.com/g-uva/sjf-cloudsim/pkg/metrics"
)

// Policy selects how jobs are ordered before placement.
type Policy int

const (
	SJF Policy = iota
)

func (p Policy) String() string {
	switch p {
	case SJF:
		return "sjf"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts the names printed by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sjf":
		return SJF, nil
	default:
		return 0, fmt.Errorf("%w: unknown policy %q", core.ErrInvalidConfiguration, s)
	}
}

func (p Policy) ordering() (core.OrderingPolicy, error) {
	switch p {
	case SJF:
		return sjf.Policy{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown policy %s", core.ErrInvalidConfiguration, p)
	}
}

// Option customises a Handle at Configure time.
type Option func(*Handle)

// WithRecorder makes Run export its results through r.
func WithRecorder(r *metrics.Recorder) Option {
	return func(h *Handle) { h.recorder = r }
}

// WithName labels the run in logs and metrics. Defaults to a prefix of the
// run ID.
func WithName(name string) Option {
	return func(h *Handle) { h.name = name }
}

// Handle owns one simulation. It is not safe for concurrent use; separate
// handles share nothing and may run in parallel.
type Handle struct {
	id         string
	name       string
	discipline core.Discipline

	machines []*core.Machine
	jobs     []*core.Job
	byID     map[int]*core.Job

	ordered   []*core.Job
	decisions []core.Decision

	results  []core.CompletedJob
	stats    engine.Stats
	recorder *metrics.Recorder
}

// Configure validates machines and jobs and builds a handle over them.
// Machines get ids 0..len(machines)-1 and jobs 0..len(jobs)-1, in input
// order. A machine spec without its own discipline takes discipline.
func Configure(machines []core.MachineSpec, jobs []core.JobSpec, discipline core.Discipline, opts ...Option) (*Handle, error) {
	var errs field.ErrorList
	if discipline != core.TimeShared && discipline != core.SpaceShared {
		errs = append(errs, field.NotSupported(field.NewPath("discipline"), discipline.String(),
			[]string{core.TimeShared.String(), core.SpaceShared.String()}))
	}
	if len(jobs) > 0 && len(machines) == 0 {
		errs = append(errs, field.Required(field.NewPath("machines"), "jobs need at least one machine"))
	}
	errs = append(errs, core.ValidateMachineSpecs(machines, field.NewPath("machines"))...)
	errs = append(errs, core.ValidateJobSpecs(jobs, field.NewPath("jobs"))...)
	if err := core.InvalidConfiguration(errs); err != nil {
		return nil, err
	}

	ms, err := core.NewMachines(machines, discipline)
	if err != nil {
		return nil, err
	}
	js, err := core.NewJobs(jobs)
	if err != nil {
		return nil, err
	}

	h := &Handle{
		id:         uuid.NewString(),
		discipline: discipline,
		machines:   ms,
		jobs:       js,
		byID:       make(map[int]*core.Job, len(js)),
	}
	for _, j := range js {
		h.byID[j.ID] = j
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.name == "" {
		h.name = "sim-" + h.id[:8]
	}
	klog.V(2).InfoS("Simulation configured", "simulation", h.name, "id", h.id,
		"machines", len(ms), "jobs", len(js), "discipline", discipline)
	return h, nil
}

// Schedule binds the given jobs explicitly, orders every job by policy and
// spreads the still-unbound ones round-robin over the machines. Either every
// placement is committed or, on error, none is.
func (h *Handle) Schedule(policy Policy, bindings ...core.Binding) error {
	if h.results != nil {
		return fmt.Errorf("%w: %s", core.ErrSimulationComplete, h.name)
	}
	ordering, err := policy.ordering()
	if err != nil {
		return err
	}

	var touched []*core.Job
	rollback := func() {
		for _, j := range touched {
			j.MachineID = nil
		}
	}

	var decisions []core.Decision
	for _, b := range bindings {
		j, ok := h.byID[b.JobID]
		if !ok {
			rollback()
			return fmt.Errorf("%w: unknown job %d", core.ErrInvalidConfiguration, b.JobID)
		}
		d, err := core.BindExplicit(j, b.MachineID, h.machines)
		if err != nil {
			rollback()
			return err
		}
		touched = append(touched, j)
		decisions = append(decisions, d)
	}

	ordered := ordering.Order(h.jobs)
	spread := core.AssignRoundRobin(ordered, h.machines)
	core.Apply(h.byID, spread)
	for _, d := range spread {
		touched = append(touched, h.byID[d.JobID])
	}
	decisions = append(decisions, spread...)

	for _, d := range decisions {
		if err := h.fits(d); err != nil {
			rollback()
			return err
		}
	}

	h.ordered = ordered
	h.decisions = append(h.decisions, decisions...)
	klog.V(2).InfoS("Jobs scheduled", "simulation", h.name, "policy", policy,
		"explicit", len(bindings), "roundRobin", len(spread))
	return nil
}

// fits rejects a placement that a space-shared machine could never start.
func (h *Handle) fits(d core.Decision) error {
	m, _ := core.LookupMachine(h.machines, d.MachineID)
	j := h.byID[d.JobID]
	if m.Discipline == core.SpaceShared && j.RequiredCores > m.Cores {
		return fmt.Errorf("%w: job %d needs %d cores, machine %d has %d",
			core.ErrInvalidConfiguration, j.ID, j.RequiredCores, m.ID, m.Cores)
	}
	return nil
}

// Run executes the scheduled jobs and returns one record per job in
// scheduled order. A second call returns the same records.
func (h *Handle) Run() ([]core.CompletedJob, error) {
	if h.results != nil {
		return h.Results(), nil
	}
	order := h.ordered
	if order == nil {
		order = h.jobs
	}

	stats, err := engine.New().Run(order, h.machines)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", h.name, err)
	}

	results := make([]core.CompletedJob, 0, len(order))
	for _, j := range order {
		c, ok := core.Completed(j)
		if !ok {
			return nil, fmt.Errorf("run %s: job %d ended %s", h.name, j.ID, j.Status)
		}
		results = append(results, c)
	}
	h.results = results
	h.stats = stats

	if h.recorder != nil {
		h.recorder.Observe(h.name, results, stats.EventsProcessed)
	}
	klog.V(2).InfoS("Simulation complete", "simulation", h.name, "jobs", len(results), "makespan", stats.Makespan)
	return h.Results(), nil
}

// ID is the handle's run ID.
func (h *Handle) ID() string { return h.id }

// Name is the label used in logs and metrics.
func (h *Handle) Name() string { return h.name }

// Discipline is the default discipline the handle was configured with.
func (h *Handle) Discipline() core.Discipline { return h.discipline }

// Machines returns the handle's machines, in id order.
func (h *Handle) Machines() []*core.Machine { return h.machines }

// Jobs returns the handle's jobs, in id order.
func (h *Handle) Jobs() []*core.Job { return h.jobs }

// Decisions lists every placement made so far, explicit ones first per call.
func (h *Handle) Decisions() []core.Decision {
	return append([]core.Decision(nil), h.decisions...)
}

// Results is a copy of the completed records, or nil before Run.
func (h *Handle) Results() []core.CompletedJob {
	if h.results == nil {
		return nil
	}
	return append([]core.CompletedJob(nil), h.results...)
}

// Stats reports engine counters from the last Run.
func (h *Handle) Stats() engine.Stats { return h.stats }
