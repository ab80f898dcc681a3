package core

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Discipline decides how a machine shares its cores between jobs.
type Discipline int

const (
	// DisciplineUnset lets a machine inherit the run-wide discipline.
	DisciplineUnset Discipline = iota
	// TimeShared divides capacity between every running job, instant by instant.
	TimeShared
	// SpaceShared runs at most one job per core; the rest wait.
	SpaceShared
)

func (d Discipline) String() string {
	switch d {
	case TimeShared:
		return "time-shared"
	case SpaceShared:
		return "space-shared"
	default:
		return "unset"
	}
}

// ParseDiscipline accepts "time-shared"/"space-shared" and the shorter
// "time"/"space" forms, case-insensitively.
func ParseDiscipline(s string) (Discipline, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "time-shared", "timeshared", "time_shared", "time":
		return TimeShared, nil
	case "space-shared", "spaceshared", "space_shared", "space":
		return SpaceShared, nil
	case "":
		return DisciplineUnset, nil
	}
	return DisciplineUnset, fmt.Errorf("%w: unknown discipline %q", ErrInvalidConfiguration, s)
}

// Machine is a virtual machine with a fixed per-core processing rate.
type Machine struct {
	ID         int
	OwnerID    int
	Capacity   float64 // work units per time unit, per core
	Cores      int
	Discipline Discipline

	running  map[int]int // job ID -> cores held
	reserved int         // cores requested by running jobs
}

// NewMachine validates spec and builds a machine with the given id.
func NewMachine(id int, spec MachineSpec) (*Machine, error) {
	if err := InvalidConfiguration(validateMachineSpec(spec, field.NewPath("machine").Index(id))); err != nil {
		return nil, err
	}
	return newMachine(id, spec), nil
}

func newMachine(id int, spec MachineSpec) *Machine {
	return &Machine{
		ID:         id,
		OwnerID:    spec.OwnerID,
		Capacity:   spec.Capacity,
		Cores:      spec.Cores,
		Discipline: spec.Discipline,
		running:    make(map[int]int),
	}
}

// CreateMachines builds count identical machines with ids 0..count-1.
func CreateMachines(ownerID, count int, capacity float64, cores int) ([]*Machine, error) {
	var errs field.ErrorList
	if count <= 0 {
		errs = append(errs, field.Invalid(field.NewPath("count"), count, "must be positive"))
	}
	spec := MachineSpec{OwnerID: ownerID, Capacity: capacity, Cores: cores}
	errs = append(errs, validateMachineSpec(spec, field.NewPath("machine"))...)
	if err := InvalidConfiguration(errs); err != nil {
		return nil, err
	}

	machines := make([]*Machine, count)
	for i := range machines {
		machines[i] = newMachine(i, spec)
	}
	return machines, nil
}

// NewMachines assigns contiguous ids in spec order. Specs without a
// discipline take def.
func NewMachines(specs []MachineSpec, def Discipline) ([]*Machine, error) {
	if err := InvalidConfiguration(ValidateMachineSpecs(specs, field.NewPath("machines"))); err != nil {
		return nil, err
	}

	machines := make([]*Machine, len(specs))
	for i, s := range specs {
		if s.Discipline == DisciplineUnset {
			s.Discipline = def
		}
		machines[i] = newMachine(i, s)
	}
	return machines, nil
}

// ValidateMachineSpecs checks every spec, reporting problems under root.
func ValidateMachineSpecs(specs []MachineSpec, root *field.Path) field.ErrorList {
	var errs field.ErrorList
	for i, s := range specs {
		errs = append(errs, validateMachineSpec(s, root.Index(i))...)
	}
	return errs
}

func validateMachineSpec(s MachineSpec, p *field.Path) field.ErrorList {
	var errs field.ErrorList
	if !positiveFinite(s.Capacity) {
		errs = append(errs, field.Invalid(p.Child("capacity"), s.Capacity, "must be a positive finite number"))
	}
	if s.Cores <= 0 {
		errs = append(errs, field.Invalid(p.Child("cores"), s.Cores, "must be positive"))
	}
	if s.Discipline < DisciplineUnset || s.Discipline > SpaceShared {
		errs = append(errs, field.NotSupported(p.Child("discipline"), s.Discipline.String(),
			[]string{TimeShared.String(), SpaceShared.String()}))
	}
	return errs
}

// TotalCapacity is the machine's aggregate rate across all cores.
func (m *Machine) TotalCapacity() float64 { return m.Capacity * float64(m.Cores) }

// FreeCores is the number of cores not held by a running job. Only
// meaningful for space-shared machines.
func (m *Machine) FreeCores() int { return m.Cores - m.reserved }

// CanStart reports whether a job needing cores can start right now.
func (m *Machine) CanStart(cores int) bool {
	if m.Discipline == SpaceShared {
		return m.FreeCores() >= cores
	}
	return true
}

// Attach records jobID as running on m.
func (m *Machine) Attach(jobID, cores int) {
	if m.running == nil {
		m.running = make(map[int]int)
	}
	m.running[jobID] = cores
	m.reserved += cores
}

// Detach frees whatever jobID held.
func (m *Machine) Detach(jobID int) {
	cores, ok := m.running[jobID]
	if !ok {
		return
	}
	delete(m.running, jobID)
	m.reserved -= cores
}

// RunningCount is the number of jobs currently attached.
func (m *Machine) RunningCount() int { return len(m.running) }

// IsRunning reports whether jobID is attached to m.
func (m *Machine) IsRunning(jobID int) bool {
	_, ok := m.running[jobID]
	return ok
}

// RateFor is the processing rate a running job needing cores gets right now.
//
// Space-shared jobs own their cores outright. Time-shared jobs split the
// total capacity in proportion to the cores they ask for, never getting more
// than those cores could deliver on their own.
func (m *Machine) RateFor(cores int) float64 {
	if m.Discipline == SpaceShared {
		return m.Capacity * float64(cores)
	}
	demand := m.reserved
	if demand < m.Cores {
		demand = m.Cores
	}
	return m.TotalCapacity() * float64(cores) / float64(demand)
}

func (m *Machine) String() string {
	return fmt.Sprintf("vm-%d(owner=%d, rate=%g, cores=%d, %s)", m.ID, m.OwnerID, m.Capacity, m.Cores, m.Discipline)
}
