// Package loader reads machines, jobs and whole scenarios from disk.
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/g-uva/sjf-cloudsim/pkg/core"
)

// Scenario is a complete simulation description.
type Scenario struct {
	Name       string         `yaml:"name"`
	Discipline string         `yaml:"discipline"`
	Policy     string         `yaml:"policy"`
	Machines   []MachineGroup `yaml:"machines"`
	Jobs       []JobGroup     `yaml:"jobs"`
	Bindings   []Binding      `yaml:"bindings"`

	discipline core.Discipline
}

// MachineGroup describes count identical machines.
type MachineGroup struct {
	Owner      int     `yaml:"owner"`
	Count      int     `yaml:"count"`
	Capacity   float64 `yaml:"capacity"`
	Cores      int     `yaml:"cores"`
	Discipline string  `yaml:"discipline"`
}

// JobGroup describes count jobs. The i-th job of the group has length
// Length + i*Step.
type JobGroup struct {
	Owner      int     `yaml:"owner"`
	Length     float64 `yaml:"length"`
	Step       float64 `yaml:"step"`
	Count      *int    `yaml:"count"`
	Cores      int     `yaml:"cores"`
	FileSize   int64   `yaml:"file_size"`
	OutputSize int64   `yaml:"output_size"`
}

// Binding pins a job id to a machine id.
type Binding struct {
	Job     int `yaml:"job"`
	Machine int `yaml:"machine"`
}

// LoadScenario reads a YAML scenario from path and validates it.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// validate checks group counts and discipline names. Per-machine and per-job
// values are left to the simulation, which reports them all at once.
func (s *Scenario) validate() error {
	var errs field.ErrorList

	d, err := core.ParseDiscipline(s.Discipline)
	if err != nil {
		errs = append(errs, field.Invalid(field.NewPath("discipline"), s.Discipline, "unknown discipline"))
	}
	s.discipline = d

	mp := field.NewPath("machines")
	for i, g := range s.Machines {
		if g.Count < 1 {
			errs = append(errs, field.Invalid(mp.Index(i).Child("count"), g.Count, "must be at least 1"))
		}
		if _, err := core.ParseDiscipline(g.Discipline); err != nil {
			errs = append(errs, field.Invalid(mp.Index(i).Child("discipline"), g.Discipline, "unknown discipline"))
		}
	}
	jp := field.NewPath("jobs")
	for i, g := range s.Jobs {
		if g.Count != nil && *g.Count < 1 {
			errs = append(errs, field.Invalid(jp.Index(i).Child("count"), *g.Count, "must be at least 1"))
		}
	}
	bp := field.NewPath("bindings")
	for i, b := range s.Bindings {
		if b.Job < 0 {
			errs = append(errs, field.Invalid(bp.Index(i).Child("job"), b.Job, "must not be negative"))
		}
		if b.Machine < 0 {
			errs = append(errs, field.Invalid(bp.Index(i).Child("machine"), b.Machine, "must not be negative"))
		}
	}
	return core.InvalidConfiguration(errs)
}

// DisciplineValue is the scenario-wide default discipline. Time-shared when
// the file names none.
func (s *Scenario) DisciplineValue() core.Discipline {
	if s.discipline == core.DisciplineUnset {
		return core.TimeShared
	}
	return s.discipline
}

// MachineSpecs expands the machine groups in file order.
func (s *Scenario) MachineSpecs() []core.MachineSpec {
	var specs []core.MachineSpec
	for _, g := range s.Machines {
		d, _ := core.ParseDiscipline(g.Discipline)
		for n := 0; n < g.Count; n++ {
			specs = append(specs, core.MachineSpec{
				OwnerID:    g.Owner,
				Capacity:   g.Capacity,
				Cores:      g.Cores,
				Discipline: d,
			})
		}
	}
	return specs
}

// JobSpecs expands the job groups in file order.
func (s *Scenario) JobSpecs() []core.JobSpec {
	var specs []core.JobSpec
	for _, g := range s.Jobs {
		count := 1
		if g.Count != nil {
			count = *g.Count
		}
		for n := 0; n < count; n++ {
			specs = append(specs, core.JobSpec{
				OwnerID:    g.Owner,
				Length:     g.Length + float64(n)*g.Step,
				Cores:      g.Cores,
				FileSize:   g.FileSize,
				OutputSize: g.OutputSize,
			})
		}
	}
	return specs
}

// CoreBindings converts the scenario's bindings.
func (s *Scenario) CoreBindings() []core.Binding {
	out := make([]core.Binding, len(s.Bindings))
	for i, b := range s.Bindings {
		out[i] = core.Binding{JobID: b.Job, MachineID: b.Machine}
	}
	return out
}
