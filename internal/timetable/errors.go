package timetable

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput marks precondition violations. They are never retried.
var ErrInvalidInput = errors.New("invalid timetable input")

// InputError describes a malformed section, subject or teacher definition.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets callers match ErrInvalidInput.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func inputErrorf(field, format string, args ...any) *InputError {
	return &InputError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InfeasibleLabPlacementError means no legal, conflict-free block existed for a lab in one attempt.
type InfeasibleLabPlacementError struct {
	Section       string
	Subject       string
	Teacher       string
	Year          string
	BlockSize     int
	LunchPosition int
	LegalStarts   []int
}

func (e *InfeasibleLabPlacementError) Error() string {
	return fmt.Sprintf("could not place lab subject %s (block size %d) in section %s (%s): %s",
		e.Subject, e.BlockSize, e.Section, e.Year, e.Reason())
}

// Reason explains why the block could not be placed.
func (e *InfeasibleLabPlacementError) Reason() string {
	if len(e.LegalStarts) == 0 {
		return fmt.Sprintf("no %d-period window avoids the lunch break before period %d for this year group",
			e.BlockSize, e.LunchPosition+1)
	}
	if len(e.LegalStarts) == 1 {
		return fmt.Sprintf("%d-period labs require a full morning or afternoon block for this year group and every such block is taken or teacher %s is unavailable",
			e.BlockSize, e.Teacher)
	}
	return fmt.Sprintf("every legal start %v is occupied in the section, already taken by teacher %s, or beyond the teacher's load",
		oneBased(e.LegalStarts), e.Teacher)
}

// InfeasibleTheoryPlacementError means a subject's weekly periods could not all be placed.
type InfeasibleTheoryPlacementError struct {
	Section  string
	Subject  string
	Teacher  string
	Required int
	Placed   int
}

func (e *InfeasibleTheoryPlacementError) Error() string {
	return fmt.Sprintf("could not place all %d periods for %s (teacher %s) in section %s; placed %d",
		e.Required, e.Subject, e.Teacher, e.Section, e.Placed)
}

// LoadExceededError means an attempt finished with a teacher above max load.
type LoadExceededError struct {
	Teacher string
	Load    int
	MaxLoad int
}

func (e *LoadExceededError) Error() string {
	return fmt.Sprintf("teacher %s would teach %d periods, above the maximum of %d", e.Teacher, e.Load, e.MaxLoad)
}

// conflictsDetectedError makes an attempt retry. It only leaves the generator as a Cause.
type conflictsDetectedError struct {
	conflicts []Conflict
}

func (e *conflictsDetectedError) Error() string {
	return fmt.Sprintf("%d teacher conflicts detected after placement", len(e.conflicts))
}

// GenerationExhaustedError is returned when every attempt failed.
type GenerationExhaustedError struct {
	Attempts int
	Cause    error
}

var remediationHints = []string{
	"teacher loads are too restrictive (try increasing max load)",
	"subjects need too many periods per week (try reducing them)",
	"lab block sizes are too large (try smaller blocks)",
	"there are not enough teachers for the workload (try adding teachers or reducing assignments)",
}

func (e *GenerationExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "could not generate a conflict-free timetable after %d attempts", e.Attempts)
	if e.Cause != nil {
		fmt.Fprintf(&b, "; last failure: %v", e.Cause)
	}
	b.WriteString(". This usually means:")
	for i, hint := range remediationHints {
		fmt.Fprintf(&b, " %d. %s", i+1, hint)
		if i < len(remediationHints)-1 {
			b.WriteString(";")
		}
	}
	return b.String()
}

// Unwrap exposes the last attempt's failure.
func (e *GenerationExhaustedError) Unwrap() error {
	return e.Cause
}

// Hints returns the generic remediation guidance.
func (e *GenerationExhaustedError) Hints() []string {
	return append([]string(nil), remediationHints...)
}

func oneBased(periods []int) []int {
	out := make([]int, len(periods))
	for i, p := range periods {
		out[i] = p + 1
	}
	return out
}
