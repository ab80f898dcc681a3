package core

import (
	"fmt"
)

// AssignmentKind tags how a job ended up on its machine.
type AssignmentKind int

const (
	Explicit   AssignmentKind = iota // caller-directed binding
	RoundRobin                       // default spread in SJF order
)

func (k AssignmentKind) String() string {
	switch k {
	case Explicit:
		return "explicit"
	case RoundRobin:
		return "round-robin"
	default:
		return "unknown"
	}
}

// Decision is one job-to-machine placement.
type Decision struct {
	JobID     int
	MachineID int
	Kind      AssignmentKind
}

// OrderingPolicy turns a job list into the order jobs are scheduled in.
type OrderingPolicy interface {
	Name() string
	Order(jobs []*Job) []*Job
}

// LookupMachine finds id among machines.
func LookupMachine(machines []*Machine, id int) (*Machine, bool) {
	for _, m := range machines {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// BindExplicit pins j to machine machineID, which must be one of machines.
func BindExplicit(j *Job, machineID int, machines []*Machine) (Decision, error) {
	if j.Assigned() {
		return Decision{}, fmt.Errorf("%w: job %d is on machine %d", ErrAlreadyBound, j.ID, *j.MachineID)
	}
	if _, ok := LookupMachine(machines, machineID); !ok {
		return Decision{}, fmt.Errorf("%w: machine %d for job %d", ErrUnknownMachine, machineID, j.ID)
	}
	j.AssignTo(machineID)
	return Decision{JobID: j.ID, MachineID: machineID, Kind: Explicit}, nil
}

// RoundRobinCursor hands out machines in rotation.
type RoundRobinCursor struct {
	counter int
}

// Next returns the machine after the last one handed out.
func (s *RoundRobinCursor) Next(machines []*Machine) *Machine {
	n := len(machines)
	if n == 0 {
		return nil
	}
	m := machines[s.counter%n]
	s.counter = (s.counter + 1) % n
	return m
}

// AssignRoundRobin places the i-th unbound job of ordered on
// machines[i mod len(machines)]. Bound jobs are skipped and do not advance
// the rotation. Jobs are left untouched; use Apply to commit.
func AssignRoundRobin(ordered []*Job, machines []*Machine) []Decision {
	var (
		cursor    RoundRobinCursor
		decisions []Decision
	)
	if len(machines) == 0 {
		return nil
	}
	for _, j := range ordered {
		if j.Assigned() {
			continue
		}
		m := cursor.Next(machines)
		decisions = append(decisions, Decision{JobID: j.ID, MachineID: m.ID, Kind: RoundRobin})
	}
	return decisions
}

// Apply commits decisions onto jobs, indexed by job id.
func Apply(jobs map[int]*Job, decisions []Decision) {
	for _, d := range decisions {
		if j, ok := jobs[d.JobID]; ok {
			j.AssignTo(d.MachineID)
		}
	}
}
