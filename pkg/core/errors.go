package core

import (
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Every error the simulator returns wraps one of these. None of them is
// retriable: they all describe a defect in the caller's input.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrAlreadyBound         = errors.New("job already bound to a machine")
	ErrUnknownMachine       = errors.New("unknown machine")
	ErrUnassignedJob        = errors.New("job has no assigned machine")
	ErrSimulationComplete   = errors.New("simulation already ran")
)

// InvalidConfiguration folds a field.ErrorList into a single error wrapping
// ErrInvalidConfiguration. It returns nil for an empty list.
func InvalidConfiguration(errs field.ErrorList) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInvalidConfiguration, errs.ToAggregate())
}
