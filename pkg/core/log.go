package core

// CompletedJob is the per-job record a finished run hands back.
type CompletedJob struct {
	ID             int
	MachineID      int
	OwnerID        int
	Length         float64
	Status         Status
	SubmissionTime float64
	StartTime      float64
	FinishTime     float64
	ActualCPUTime  float64 // FinishTime - StartTime
}

// Completed snapshots a finished job. ok is false if j has not reached
// Success.
func Completed(j *Job) (c CompletedJob, ok bool) {
	if j.Status != Success || j.MachineID == nil ||
		j.SubmissionTime == nil || j.StartTime == nil || j.FinishTime == nil {
		return CompletedJob{}, false
	}
	return CompletedJob{
		ID:             j.ID,
		MachineID:      *j.MachineID,
		OwnerID:        j.OwnerID,
		Length:         j.Length,
		Status:         j.Status,
		SubmissionTime: *j.SubmissionTime,
		StartTime:      *j.StartTime,
		FinishTime:     *j.FinishTime,
		ActualCPUTime:  *j.FinishTime - *j.StartTime,
	}, true
}
