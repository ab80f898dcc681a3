// Package scenarios holds the classic CloudSim SJF walkthroughs as runnable
// simulations.
package scenarios

import (
	"fmt"

	"k8s.io/klog/v2"

	"github.com/g-uva/sjf-cloudsim/pkg/core"
	"github.com/g-uva/sjf-cloudsim/pkg/generator"
	"github.com/g-uva/sjf-cloudsim/pkg/loader"
	"github.com/g-uva/sjf-cloudsim/pkg/simulation"
)

// Scenario is one independent simulation.
type Scenario struct {
	Name       string
	Discipline core.Discipline
	Policy     simulation.Policy
	Machines   []core.MachineSpec
	Jobs       []core.JobSpec
	Bindings   []core.Binding
}

// Case groups scenarios that are presented together. Scenarios in a case
// share nothing; each runs in its own handle.
type Case struct {
	Name        string
	Description string
	Scenarios   []Scenario
}

// Outcome is one finished scenario.
type Outcome struct {
	Scenario  string
	Handle    *simulation.Handle
	Completed []core.CompletedJob
}

// Run configures, schedules and runs s.
func (s Scenario) Run(opts ...simulation.Option) (Outcome, error) {
	opts = append([]simulation.Option{simulation.WithName(s.Name)}, opts...)
	h, err := simulation.Configure(s.Machines, s.Jobs, s.Discipline, opts...)
	if err != nil {
		return Outcome{}, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	if err := h.Schedule(s.Policy, s.Bindings...); err != nil {
		return Outcome{}, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	completed, err := h.Run()
	if err != nil {
		return Outcome{}, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return Outcome{Scenario: s.Name, Handle: h, Completed: completed}, nil
}

// Run runs every scenario of c in order and stops at the first failure.
func (c Case) Run(opts ...simulation.Option) ([]Outcome, error) {
	out := make([]Outcome, 0, len(c.Scenarios))
	for _, s := range c.Scenarios {
		o, err := s.Run(opts...)
		if err != nil {
			return out, err
		}
		out = append(out, o)
	}
	klog.V(2).InfoS("Case finished", "case", c.Name, "scenarios", len(out))
	return out, nil
}

// FromFile converts a loaded scenario file.
func FromFile(sc *loader.Scenario) (Scenario, error) {
	policy, err := simulation.ParsePolicy(sc.Policy)
	if err != nil {
		return Scenario{}, err
	}
	name := sc.Name
	if name == "" {
		name = "scenario"
	}
	return Scenario{
		Name:       name,
		Discipline: sc.DisciplineValue(),
		Policy:     policy,
		Machines:   sc.MachineSpecs(),
		Jobs:       sc.JobSpecs(),
		Bindings:   sc.CoreBindings(),
	}, nil
}

func cloudlet(owner int, length float64) core.JobSpec {
	return core.JobSpec{OwnerID: owner, Length: length, Cores: 1, FileSize: 300, OutputSize: 300}
}

func vm(owner int, mips float64) core.MachineSpec {
	return core.MachineSpec{OwnerID: owner, Capacity: mips, Cores: 1}
}

// Base is one 250 MIPS VM running four jobs one at a time. Finishes are 40,
// 100, 180 and 380.
func Base() Case {
	return Case{
		Name:        "base",
		Description: "single space-shared VM, four jobs in SJF order",
		Scenarios: []Scenario{{
			Name:       "base",
			Discipline: core.SpaceShared,
			Policy:     simulation.SJF,
			Machines:   []core.MachineSpec{vm(0, 250)},
			Jobs: []core.JobSpec{
				cloudlet(0, 10000), cloudlet(0, 20000), cloudlet(0, 50000), cloudlet(0, 15000),
			},
		}},
	}
}

// ExplicitBinding pins two equal jobs to VMs of 750 and 1500 MIPS.
func ExplicitBinding() Case {
	return Case{
		Name:        "explicit-binding",
		Description: "two VMs of different speed, one job bound to each",
		Scenarios: []Scenario{{
			Name:       "explicit-binding",
			Discipline: core.TimeShared,
			Policy:     simulation.SJF,
			Machines:   []core.MachineSpec{vm(0, 750), vm(0, 1500)},
			Jobs:       []core.JobSpec{cloudlet(0, 40000), cloudlet(0, 40000)},
			Bindings:   []core.Binding{{JobID: 0, MachineID: 0}, {JobID: 1, MachineID: 1}},
		}},
	}
}

// RoundRobin spreads two jobs over two equal VMs.
func RoundRobin() Case {
	return Case{
		Name:        "round-robin",
		Description: "two equal VMs, jobs spread round-robin in SJF order",
		Scenarios: []Scenario{{
			Name:       "round-robin",
			Discipline: core.TimeShared,
			Policy:     simulation.SJF,
			Machines:   []core.MachineSpec{vm(0, 250), vm(0, 250)},
			Jobs:       []core.JobSpec{cloudlet(0, 100000), cloudlet(0, 250000)},
		}},
	}
}

// TwoOwners runs two owners side by side, each with its own VM and job.
func TwoOwners() Case {
	owner := func(id int) Scenario {
		return Scenario{
			Name:       fmt.Sprintf("owner-%d", id),
			Discipline: core.TimeShared,
			Policy:     simulation.SJF,
			Machines:   []core.MachineSpec{vm(id, 250)},
			Jobs:       []core.JobSpec{cloudlet(id, 40000)},
		}
	}
	return Case{
		Name:        "two-owners",
		Description: "two independent owners, one VM and one job each",
		Scenarios:   []Scenario{owner(1), owner(2)},
	}
}

// FiveVMs spreads ten jobs of length 500+i*200 over five 1000 MIPS VMs.
func FiveVMs() Case {
	machines := make([]core.MachineSpec, 5)
	for i := range machines {
		machines[i] = vm(0, 1000)
	}
	return Case{
		Name:        "five-vms",
		Description: "five VMs, ten jobs of increasing length",
		Scenarios: []Scenario{{
			Name:       "five-vms",
			Discipline: core.TimeShared,
			Policy:     simulation.SJF,
			Machines:   machines,
			Jobs:       generator.StepLengths(0, 10, 500, 200),
		}},
	}
}

// Catalog lists every built-in case.
func Catalog() []Case {
	return []Case{Base(), ExplicitBinding(), RoundRobin(), TwoOwners(), FiveVMs()}
}

// Lookup finds a built-in case by name.
func Lookup(name string) (Case, bool) {
	for _, c := range Catalog() {
		if c.Name == name {
			return c, true
		}
	}
	return Case{}, false
}
