package core

// MachineSpec describes one machine a caller wants in the resource model.
type MachineSpec struct {
	OwnerID    int
	Capacity   float64 // per-core rate
	Cores      int
	Discipline Discipline // DisciplineUnset inherits the run-wide value
}

// JobSpec describes one job before it gets an id.
type JobSpec struct {
	OwnerID    int
	Length     float64
	Cores      int // 0 means 1
	FileSize   int64
	OutputSize int64
}

// Binding pins a job to a machine ahead of the default assignment.
type Binding struct {
	JobID     int
	MachineID int
}
