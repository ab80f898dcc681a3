package core

import (
	"fmt"
	"math"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Status is where a job sits in its lifecycle. It only ever moves forward.
type Status int

const (
	Created Status = iota // built by the caller, not yet submitted
	Queued                // submitted, waiting for capacity
	Running               // holding capacity on its machine
	Success               // executed all of its length
)

func (s Status) String() string {
	switch s {
	case Created:
		return "CREATED"
	case Queued:
		return "QUEUED"
	case Running:
		return "RUNNING"
	case Success:
		return "SUCCESS"
	default:
		return "UNKNOWN"
	}
}

// Job is one cloudlet: a fixed amount of work owned by a broker.
type Job struct {
	ID            int
	OwnerID       int
	Length        float64
	RequiredCores int
	FileSize      int64
	OutputSize    int64

	MachineID *int // nil until bound or assigned

	SubmissionTime *float64
	StartTime      *float64
	FinishTime     *float64
	Status         Status
}

// CreateJobs builds jobs with ids 0..len(specs)-1 in spec order, all owned
// by ownerID.
func CreateJobs(ownerID int, specs []JobSpec) ([]*Job, error) {
	owned := make([]JobSpec, len(specs))
	for i, s := range specs {
		s.OwnerID = ownerID
		owned[i] = s
	}
	return NewJobs(owned)
}

// NewJobs is CreateJobs keeping each spec's own OwnerID.
func NewJobs(specs []JobSpec) ([]*Job, error) {
	if err := InvalidConfiguration(ValidateJobSpecs(specs, field.NewPath("jobs"))); err != nil {
		return nil, err
	}

	jobs := make([]*Job, len(specs))
	for i, s := range specs {
		cores := s.Cores
		if cores == 0 {
			cores = 1
		}
		jobs[i] = &Job{
			ID:            i,
			OwnerID:       s.OwnerID,
			Length:        s.Length,
			RequiredCores: cores,
			FileSize:      s.FileSize,
			OutputSize:    s.OutputSize,
			Status:        Created,
		}
	}
	return jobs, nil
}

// ValidateJobSpecs checks every spec, reporting problems under root.
func ValidateJobSpecs(specs []JobSpec, root *field.Path) field.ErrorList {
	var errs field.ErrorList
	for i, s := range specs {
		p := root.Index(i)
		if !positiveFinite(s.Length) {
			errs = append(errs, field.Invalid(p.Child("length"), s.Length, "must be a positive finite number"))
		}
		if s.Cores < 0 {
			errs = append(errs, field.Invalid(p.Child("cores"), s.Cores, "must not be negative"))
		}
		if s.FileSize < 0 {
			errs = append(errs, field.Invalid(p.Child("fileSize"), s.FileSize, "must not be negative"))
		}
		if s.OutputSize < 0 {
			errs = append(errs, field.Invalid(p.Child("outputSize"), s.OutputSize, "must not be negative"))
		}
	}
	return errs
}

// positiveFinite rejects NaN and both infinities along with non-positive
// values.
func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Assigned reports whether the job has a machine.
func (j *Job) Assigned() bool { return j.MachineID != nil }

// AssignTo records machineID as the job's machine.
func (j *Job) AssignTo(machineID int) {
	id := machineID
	j.MachineID = &id
}

// Submit moves the job to Queued at time at.
func (j *Job) Submit(at float64) error {
	if err := j.advance(Queued); err != nil {
		return err
	}
	j.SubmissionTime = &at
	return nil
}

// Start moves the job to Running at time at.
func (j *Job) Start(at float64) error {
	if err := j.advance(Running); err != nil {
		return err
	}
	j.StartTime = &at
	return nil
}

// Finish moves the job to Success at time at.
func (j *Job) Finish(at float64) error {
	if err := j.advance(Success); err != nil {
		return err
	}
	j.FinishTime = &at
	return nil
}

func (j *Job) advance(to Status) error {
	if to != j.Status+1 {
		return fmt.Errorf("job %d: illegal transition %s -> %s", j.ID, j.Status, to)
	}
	j.Status = to
	return nil
}

func (j *Job) String() string {
	machine := "-"
	if j.MachineID != nil {
		machine = fmt.Sprint(*j.MachineID)
	}
	return fmt.Sprintf("cloudlet-%d(len=%g, vm=%s, %s)", j.ID, j.Length, machine, j.Status)
}
