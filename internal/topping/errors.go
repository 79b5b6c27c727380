package topping

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrEmptyName is returned when a topping name is blank after trimming
	ErrEmptyName = errors.New("topping name must not be empty")
	// ErrDuplicateName is returned when a name already exists among current toppings
	ErrDuplicateName = errors.New("topping name already exists")
	// ErrNoNames is returned when a delete is requested without any names
	ErrNoNames = errors.New("no topping names given")
	// ErrNotEditing is returned when committing a row that is not in edit mode
	ErrNotEditing = errors.New("topping is not being edited")
)

// ValidationError is raised before any write is attempted
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// DuplicateNameError reports a name that collides with an existing topping
type DuplicateNameError struct {
	Name     string
	Existing string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("topping %q already exists as %q", e.Name, e.Existing)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

// IsValidation reports whether err was raised by input validation
func IsValidation(err error) bool {
	var ve *ValidationError
	var de *DuplicateNameError
	return errors.As(err, &ve) || errors.As(err, &de)
}

// BatchError is returned when some pizza updates of a rename or delete failed.
// Updates listed in Succeeded were applied and are not rolled back.
type BatchError struct {
	Op        string
	Failed    map[int]error
	Succeeded []int
}

func (e *BatchError) Error() string {
	ids := e.FailedIDs()
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("pizza %d: %v", id, e.Failed[id]))
	}
	return fmt.Sprintf("%s: %d of %d pizza updates failed (%s)",
		e.Op, len(e.Failed), len(e.Failed)+len(e.Succeeded), strings.Join(parts, "; "))
}

// Unwrap exposes the individual update failures to errors.Is and errors.As
func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, id := range e.FailedIDs() {
		errs = append(errs, e.Failed[id])
	}
	return errs
}

// FailedIDs returns the ids of the pizzas whose update failed, ascending
func (e *BatchError) FailedIDs() []int {
	ids := make([]int, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
