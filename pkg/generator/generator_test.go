package generator

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/g-uva/sjf-cloudsim/pkg/core"
	"github.com/g-uva/sjf-cloudsim/pkg/loader"
)

func TestStepLengths(t *testing.T) {
	specs := StepLengths(4, 10, 500, 200)
	if len(specs) != 10 {
		t.Fatalf("expected 10 jobs, got %d", len(specs))
	}
	for i, s := range specs {
		if want := 500 + float64(i)*200; s.Length != want {
			t.Errorf("job %d: expected length %g, got %g", i, want, s.Length)
		}
		if s.OwnerID != 4 {
			t.Errorf("job %d: expected owner 4, got %d", i, s.OwnerID)
		}
	}
	if specs[9].Length != 2300 {
		t.Errorf("expected last length 2300, got %g", specs[9].Length)
	}
}

func TestRandomJobs_Deterministic(t *testing.T) {
	a := RandomJobs(Mix{Jobs: 50, Seed: 42})
	b := RandomJobs(Mix{Jobs: 50, Seed: 42})
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed gave different jobs (-a +b):\n%s", diff)
	}
	if _, err := core.NewJobs(a); err != nil {
		t.Errorf("generated jobs do not validate: %v", err)
	}
	c := RandomJobs(Mix{Jobs: 50, Seed: 43})
	if cmp.Equal(a, c) {
		t.Error("expected different seeds to give different jobs")
	}
}

func TestGenerateJobs_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "jobs.csv")
	mix := Mix{Owner: 2, Jobs: 20, Seed: 7}
	if err := GenerateJobs(path, mix); err != nil {
		t.Fatalf("GenerateJobs: %v", err)
	}
	got, err := loader.LoadJobsFromCSV(path)
	if err != nil {
		t.Fatalf("LoadJobsFromCSV: %v", err)
	}
	if diff := cmp.Diff(RandomJobs(mix), got); diff != "" {
		t.Errorf("CSV round trip mismatch (-want +got):\n%s", diff)
	}
}
