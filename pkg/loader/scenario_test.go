package loader

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/g-uva/sjf-cloudsim/pkg/core"
)

func TestLoadScenario(t *testing.T) {
	path := writeFile(t, "scenario.yaml", `
name: five-vms
discipline: time-shared
policy: sjf
machines:
  - owner: 0
    count: 2
    capacity: 1000
    cores: 1
  - owner: 0
    count: 1
    capacity: 500
    cores: 2
    discipline: space-shared
jobs:
  - owner: 0
    length: 500
    step: 200
    count: 3
  - owner: 1
    length: 40000
    file_size: 300
    output_size: 300
bindings:
  - job: 3
    machine: 2
`)
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if sc.Name != "five-vms" || sc.DisciplineValue() != core.TimeShared {
		t.Errorf("unexpected header %q %s", sc.Name, sc.DisciplineValue())
	}

	wantMachines := []core.MachineSpec{
		{OwnerID: 0, Capacity: 1000, Cores: 1},
		{OwnerID: 0, Capacity: 1000, Cores: 1},
		{OwnerID: 0, Capacity: 500, Cores: 2, Discipline: core.SpaceShared},
	}
	if diff := cmp.Diff(wantMachines, sc.MachineSpecs()); diff != "" {
		t.Errorf("machines mismatch (-want +got):\n%s", diff)
	}

	wantJobs := []core.JobSpec{
		{OwnerID: 0, Length: 500},
		{OwnerID: 0, Length: 700},
		{OwnerID: 0, Length: 900},
		{OwnerID: 1, Length: 40000, FileSize: 300, OutputSize: 300},
	}
	if diff := cmp.Diff(wantJobs, sc.JobSpecs()); diff != "" {
		t.Errorf("jobs mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]core.Binding{{JobID: 3, MachineID: 2}}, sc.CoreBindings()); diff != "" {
		t.Errorf("bindings mismatch (-want +got):\n%s", diff)
	}
}

func TestParseScenario_DefaultDiscipline(t *testing.T) {
	sc, err := ParseScenario([]byte("name: x\nmachines:\n  - count: 1\n    capacity: 1\n    cores: 1\n"))
	if err != nil {
		t.Fatalf("ParseScenario: %v", err)
	}
	if sc.DisciplineValue() != core.TimeShared {
		t.Errorf("expected time-shared default, got %s", sc.DisciplineValue())
	}
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := map[string]string{
		"discipline":         "discipline: lottery\n",
		"machine count":      "machines:\n  - count: 0\n    capacity: 1\n    cores: 1\n",
		"machine discipline": "machines:\n  - count: 1\n    discipline: fair\n",
		"job count":          "jobs:\n  - length: 10\n    count: 0\n",
		"binding":            "bindings:\n  - job: -1\n    machine: 0\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(doc)); !errors.Is(err, core.ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestParseScenario_BadYAML(t *testing.T) {
	if _, err := ParseScenario([]byte("machines: [")); err == nil {
		t.Error("expected a parse error")
	}
}
