// Package engine executes scheduled jobs against machine capacity in
// simulated time.
package engine

import (
	"fmt"

	"k8s.io/klog/v2"

	"github.com/g-uva/sjf-cloudsim/pkg/core"
)

// remainders below this fraction of a job's length count as done; shares are
// recomputed with float division and never land exactly on zero.
const workEpsilon = 1e-9

// Stats summarises one run.
type Stats struct {
	EventsProcessed int
	Rebalances      int
	Makespan        float64
}

// runState is the engine's view of an admitted job.
type runState struct {
	job       *core.Job
	machine   *core.Machine
	remaining float64
	rate      float64
	since     float64 // clock at which remaining was last charged
	event     *Event
}

// Engine is a single-threaded discrete-event loop. An Engine is not safe for
// concurrent use; give each simulation its own.
type Engine struct {
	Clock  float64
	Events EventQueue
	Stats  Stats

	machines []*core.Machine
	waiting  map[int][]*core.Job // machine ID -> queued jobs, in scheduled order
	running  map[int][]*runState // machine ID -> running jobs, in start order
	states   map[int]*runState   // job ID -> running job
}

// New returns an idle engine.
func New() *Engine {
	return &Engine{}
}

// Run executes jobs to completion. jobs must be in scheduled order: within a
// machine, queued jobs are admitted in that order. Run checks every
// precondition before it touches any job, so a failed Run leaves jobs and
// machines exactly as it found them.
func (e *Engine) Run(jobs []*core.Job, machines []*core.Machine) (Stats, error) {
	if err := preflight(jobs, machines); err != nil {
		return Stats{}, err
	}
	e.reset(machines)

	for _, j := range jobs {
		if err := j.Submit(e.Clock); err != nil {
			return e.Stats, err
		}
		mid := *j.MachineID
		e.waiting[mid] = append(e.waiting[mid], j)
	}
	for _, m := range e.machines {
		if err := e.admit(m); err != nil {
			return e.Stats, err
		}
	}

	for e.Events.Len() > 0 {
		ev := PopEvent(&e.Events)
		e.Clock = ev.Time
		e.Stats.EventsProcessed++
		if err := e.complete(ev.JobID); err != nil {
			return e.Stats, err
		}
	}
	e.Stats.Makespan = e.Clock

	klog.V(2).InfoS("Simulation finished", "jobs", len(jobs), "machines", len(machines),
		"events", e.Stats.EventsProcessed, "rebalances", e.Stats.Rebalances, "makespan", e.Stats.Makespan)
	return e.Stats, nil
}

func preflight(jobs []*core.Job, machines []*core.Machine) error {
	seen := make(map[int]bool, len(jobs))
	for _, j := range jobs {
		if seen[j.ID] {
			return fmt.Errorf("%w: duplicate job id %d", core.ErrInvalidConfiguration, j.ID)
		}
		seen[j.ID] = true
		if !j.Assigned() {
			return fmt.Errorf("%w: job %d", core.ErrUnassignedJob, j.ID)
		}
		if j.Status != core.Created {
			return fmt.Errorf("%w: job %d is %s", core.ErrSimulationComplete, j.ID, j.Status)
		}
		m, ok := core.LookupMachine(machines, *j.MachineID)
		if !ok {
			return fmt.Errorf("%w: machine %d for job %d", core.ErrUnknownMachine, *j.MachineID, j.ID)
		}
		if m.Discipline == core.SpaceShared && j.RequiredCores > m.Cores {
			return fmt.Errorf("%w: job %d needs %d cores, machine %d has %d",
				core.ErrInvalidConfiguration, j.ID, j.RequiredCores, m.ID, m.Cores)
		}
	}
	return nil
}

func (e *Engine) reset(machines []*core.Machine) {
	e.Clock = 0
	e.Events = EventQueue{}
	e.Stats = Stats{}
	e.machines = machines
	e.waiting = make(map[int][]*core.Job, len(machines))
	e.running = make(map[int][]*runState, len(machines))
	e.states = make(map[int]*runState)
}

// admit starts whatever queued jobs m can take now, first-fit in scheduled
// order, then refreshes shares on time-shared machines.
func (e *Engine) admit(m *core.Machine) error {
	queue := e.waiting[m.ID]
	if len(queue) == 0 {
		return nil
	}
	var (
		next    []*core.Job
		started bool
	)
	for _, j := range queue {
		if !m.CanStart(j.RequiredCores) {
			next = append(next, j)
			continue
		}
		if err := e.start(m, j); err != nil {
			return err
		}
		started = true
	}
	e.waiting[m.ID] = next
	if started && m.Discipline != core.SpaceShared {
		e.rebalance(m)
	}
	return nil
}

func (e *Engine) start(m *core.Machine, j *core.Job) error {
	if err := j.Start(e.Clock); err != nil {
		return err
	}
	m.Attach(j.ID, j.RequiredCores)
	st := &runState{job: j, machine: m, remaining: j.Length, since: e.Clock}
	e.states[j.ID] = st
	e.running[m.ID] = append(e.running[m.ID], st)

	if m.Discipline == core.SpaceShared {
		// a space-shared job's rate never changes once it holds its cores
		st.rate = m.RateFor(j.RequiredCores)
		st.event = &Event{Time: e.Clock + st.remaining/st.rate, JobID: j.ID}
		PushEvent(&e.Events, st.event)
	}
	klog.V(4).InfoS("Job started", "job", j.ID, "machine", m.ID, "time", e.Clock)
	return nil
}

// rebalance charges every running job on m for the work done at its old
// rate, then reschedules its finish under m's current share.
func (e *Engine) rebalance(m *core.Machine) {
	running := e.running[m.ID]
	if len(running) == 0 {
		return
	}
	e.Stats.Rebalances++
	for _, st := range running {
		e.charge(st)
		st.rate = m.RateFor(st.job.RequiredCores)
		finish := e.Clock + st.remaining/st.rate
		if st.event == nil {
			st.event = &Event{Time: finish, JobID: st.job.ID}
			PushEvent(&e.Events, st.event)
			continue
		}
		Reschedule(&e.Events, st.event, finish)
	}
}

func (e *Engine) charge(st *runState) {
	st.remaining -= (e.Clock - st.since) * st.rate
	if st.remaining < workEpsilon*st.job.Length {
		st.remaining = 0
	}
	st.since = e.Clock
}

// complete retires jobID at the current clock and lets its machine refill.
func (e *Engine) complete(jobID int) error {
	st, ok := e.states[jobID]
	if !ok {
		return fmt.Errorf("event for job %d which is not running", jobID)
	}
	if err := st.job.Finish(e.Clock); err != nil {
		return err
	}
	m := st.machine
	m.Detach(jobID)
	delete(e.states, jobID)

	running := e.running[m.ID]
	for i, other := range running {
		if other == st {
			e.running[m.ID] = append(running[:i], running[i+1:]...)
			break
		}
	}
	klog.V(4).InfoS("Job finished", "job", jobID, "machine", m.ID, "time", e.Clock)

	if m.Discipline == core.SpaceShared {
		return e.admit(m)
	}
	e.rebalance(m)
	return nil
}
