// Package generator produces synthetic job sets.
package generator

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/g-uva/sjf-cloudsim/pkg/core"
)

// StepLengths returns n jobs owned by owner whose lengths are
// base, base+step, base+2*step, ...
func StepLengths(owner, n int, base, step float64) []core.JobSpec {
	specs := make([]core.JobSpec, n)
	for i := range specs {
		specs[i] = core.JobSpec{
			OwnerID:    owner,
			Length:     base + float64(i)*step,
			Cores:      1,
			FileSize:   300,
			OutputSize: 300,
		}
	}
	return specs
}

// Mix controls RandomJobs.
type Mix struct {
	Owner int
	Jobs  int
	Seed  int64
}

// RandomJobs draws a job set from four classes: tiny, batch, wide and long.
// The same seed always yields the same jobs.
func RandomJobs(m Mix) []core.JobSpec {
	rng := rand.New(rand.NewSource(m.Seed))
	specs := make([]core.JobSpec, m.Jobs)
	for i := range specs {
		var (
			length float64
			cores  int
		)
		switch rng.Intn(4) {
		case 0: // tiny
			length, cores = float64(rng.Intn(3000)+1000), 1
		case 1: // batch
			length, cores = float64(rng.Intn(30001)+30000), rng.Intn(2)+1
		case 2: // wide
			length, cores = float64(rng.Intn(6001)+12000), rng.Intn(3)+2
		default: // long
			length, cores = float64(rng.Intn(200001)+200000), 1
		}
		specs[i] = core.JobSpec{
			OwnerID:    m.Owner,
			Length:     length,
			Cores:      cores,
			FileSize:   int64(rng.Intn(1000) + 100),
			OutputSize: int64(rng.Intn(1000) + 100),
		}
	}
	return specs
}

// WriteJobsCSV writes specs in the format LoadJobsFromCSV reads, creating
// parent directories as needed.
func WriteJobsCSV(path string, specs []core.JobSpec) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating dirs for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s): %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"owner", "length", "cores", "file_size", "output_size"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, s := range specs {
		rec := []string{
			strconv.Itoa(s.OwnerID),
			strconv.FormatFloat(s.Length, 'f', -1, 64),
			strconv.Itoa(s.Cores),
			strconv.FormatInt(s.FileSize, 10),
			strconv.FormatInt(s.OutputSize, 10),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("writing job: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

// GenerateJobs writes a seeded random job set to path.
func GenerateJobs(path string, m Mix) error {
	return WriteJobsCSV(path, RandomJobs(m))
}
