package core

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestNewMachines_Validation(t *testing.T) {
	_, err := NewMachines([]MachineSpec{
		{Capacity: 100, Cores: 1},
		{Capacity: 0, Cores: 1},
		{Capacity: 100, Cores: 0},
		{Capacity: math.NaN(), Cores: 1},
		{Capacity: math.Inf(1), Cores: 1},
		{Capacity: math.Inf(-1), Cores: 1},
	}, TimeShared)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	for _, want := range []string{
		"machines[1].capacity", "machines[2].cores",
		"machines[3].capacity", "machines[4].capacity", "machines[5].capacity",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got %q", want, err)
		}
	}
}

func TestNewMachines_IDsAndDiscipline(t *testing.T) {
	ms, err := NewMachines([]MachineSpec{
		{Capacity: 100, Cores: 1},
		{Capacity: 200, Cores: 2, Discipline: SpaceShared},
	}, TimeShared)
	if err != nil {
		t.Fatalf("NewMachines: %v", err)
	}
	if ms[0].ID != 0 || ms[1].ID != 1 {
		t.Errorf("expected ids 0,1, got %d,%d", ms[0].ID, ms[1].ID)
	}
	if ms[0].Discipline != TimeShared {
		t.Errorf("expected default discipline time-shared, got %s", ms[0].Discipline)
	}
	if ms[1].Discipline != SpaceShared {
		t.Errorf("expected explicit discipline kept, got %s", ms[1].Discipline)
	}
	if got := ms[1].TotalCapacity(); got != 400 {
		t.Errorf("expected total capacity 400, got %g", got)
	}
}

func TestCreateMachines(t *testing.T) {
	ms, err := CreateMachines(7, 3, 250, 1)
	if err != nil {
		t.Fatalf("CreateMachines: %v", err)
	}
	if len(ms) != 3 {
		t.Fatalf("expected 3 machines, got %d", len(ms))
	}
	for i, m := range ms {
		if m.ID != i || m.OwnerID != 7 || m.Capacity != 250 {
			t.Errorf("unexpected machine %d: %s", i, m)
		}
	}

	if _, err := CreateMachines(7, 0, 250, 1); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration for zero count, got %v", err)
	}
}

func TestParseDiscipline(t *testing.T) {
	tests := []struct {
		in      string
		want    Discipline
		wantErr bool
	}{
		{"time-shared", TimeShared, false},
		{"Space", SpaceShared, false},
		{" space_shared ", SpaceShared, false},
		{"", DisciplineUnset, false},
		{"round-robin", DisciplineUnset, true},
	}
	for _, tt := range tests {
		got, err := ParseDiscipline(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDiscipline(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDiscipline(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMachine_RateFor_TimeShared(t *testing.T) {
	m := newMachine(0, MachineSpec{Capacity: 100, Cores: 2, Discipline: TimeShared})

	// under-subscribed: a job never gets more than its own cores
	m.Attach(1, 1)
	if got := m.RateFor(1); got != 100 {
		t.Errorf("expected 100 with one job, got %g", got)
	}

	m.Attach(2, 1)
	m.Attach(3, 2)
	// demand 4 cores on 2: capacity 200 split by requested cores
	if got := m.RateFor(1); got != 50 {
		t.Errorf("expected 50 for a 1-core job, got %g", got)
	}
	if got := m.RateFor(2); got != 100 {
		t.Errorf("expected 100 for a 2-core job, got %g", got)
	}

	m.Detach(3)
	if m.RunningCount() != 2 || m.IsRunning(3) {
		t.Errorf("expected job 3 detached, running=%d", m.RunningCount())
	}
	if got := m.RateFor(1); got != 100 {
		t.Errorf("expected 100 after detach, got %g", got)
	}
}

func TestMachine_SpaceSharedAdmission(t *testing.T) {
	m := newMachine(0, MachineSpec{Capacity: 100, Cores: 2, Discipline: SpaceShared})
	if !m.CanStart(2) {
		t.Fatal("expected an idle machine to take a 2-core job")
	}
	m.Attach(1, 1)
	if m.CanStart(2) {
		t.Error("expected a 2-core job to wait behind a running 1-core job")
	}
	if !m.CanStart(1) {
		t.Error("expected a 1-core job to fit")
	}
	if got := m.RateFor(1); got != 100 {
		t.Errorf("expected per-core rate 100, got %g", got)
	}
	m.Detach(1)
	if m.FreeCores() != 2 {
		t.Errorf("expected 2 free cores, got %d", m.FreeCores())
	}
	// detaching twice is harmless
	m.Detach(1)
	if m.FreeCores() != 2 {
		t.Errorf("expected 2 free cores after double detach, got %d", m.FreeCores())
	}
}
