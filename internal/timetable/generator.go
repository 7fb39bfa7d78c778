package timetable

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
)

// State is a step of the generation state machine.
type State string

const (
	StateAttempting State = "ATTEMPTING"
	StateSuccess    State = "SUCCESS"
	StateRetrying   State = "RETRYING"
	StateExhausted  State = "EXHAUSTED"
)

// Outcome classifies a single attempt.
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeInfeasibleLab    Outcome = "infeasible_lab"
	OutcomeInfeasibleTheory Outcome = "infeasible_theory"
	OutcomeLoadExceeded     Outcome = "load_exceeded"
	OutcomeConflicts        Outcome = "conflicts"
	OutcomeFailed           Outcome = "failed"
)

// AttemptReport describes one reset-and-fill cycle.
type AttemptReport struct {
	Attempt int     `json:"attempt"`
	Seed    int64   `json:"seed"`
	Outcome Outcome `json:"outcome"`
	Message string  `json:"message,omitempty"`
}

// Observer receives generation telemetry.
type Observer interface {
	ObserveAttempt(outcome Outcome)
	ObserveGeneration(state State, attempts int, elapsed time.Duration)
}

// Result holds validated sections and the teachers they share.
type Result struct {
	Sections []*Section
	Teachers map[string]*Teacher
	Attempts int
	Seed     int64
	Reports  []AttemptReport
}

// Generator retries the placement engine with fresh randomness until an attempt validates.
type Generator struct {
	opts     Options
	logger   *zap.Logger
	observer Observer
}

// NewGenerator builds a generator. logger and observer may be nil.
func NewGenerator(opts Options, logger *zap.Logger, observer Observer) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{opts: opts.normalized(), logger: logger, observer: observer}
}

// Options returns the effective options.
func (g *Generator) Options() Options {
	return g.opts
}

// Generate fills a private copy of sections and returns it. The input is not modified.
// Invalid input fails immediately; exhausting all attempts returns *GenerationExhaustedError.
func (g *Generator) Generate(ctx context.Context, sections []*Section) (*Result, error) {
	if err := Validate(sections); err != nil {
		return nil, err
	}

	work, teachers := cloneSections(sections)
	seed := g.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// Attempts draw from a private source so the process-wide math/rand state is untouched.
	master := rand.New(rand.NewSource(seed))
	result := &Result{Seed: seed, Teachers: teachers}
	started := time.Now()

	g.logger.Info("timetable generation started",
		zap.Int("sections", len(work)),
		zap.Int("teachers", len(teachers)),
		zap.Int("max_attempts", g.opts.MaxAttempts),
		zap.Int64("seed", seed),
	)

	var lastErr error
	for attempt := 1; attempt <= g.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		attemptSeed := master.Int63()
		g.logger.Debug("timetable attempt",
			zap.String("state", string(StateAttempting)),
			zap.Int("attempt", attempt),
			zap.Int64("seed", attemptSeed),
		)

		err := newEngine(work, teachers, rand.New(rand.NewSource(attemptSeed)), g.opts).run()
		if err == nil {
			if conflicts := DetectConflicts(work); len(conflicts) > 0 {
				err = &conflictsDetectedError{conflicts: conflicts}
			}
		}

		report := AttemptReport{Attempt: attempt, Seed: attemptSeed, Outcome: outcomeOf(err)}
		if err != nil {
			report.Message = err.Error()
		}
		result.Reports = append(result.Reports, report)
		if g.observer != nil {
			g.observer.ObserveAttempt(report.Outcome)
		}

		if err == nil {
			result.Sections = work
			result.Attempts = attempt
			g.finish(StateSuccess, attempt, started)
			return result, nil
		}

		lastErr = err
		if attempt < g.opts.MaxAttempts {
			g.logger.Debug("timetable attempt failed",
				zap.String("state", string(StateRetrying)),
				zap.Int("attempt", attempt),
				zap.String("outcome", string(report.Outcome)),
				zap.Error(err),
			)
		}
	}

	g.finish(StateExhausted, g.opts.MaxAttempts, started, zap.Error(lastErr))
	return nil, &GenerationExhaustedError{Attempts: g.opts.MaxAttempts, Cause: lastErr}
}

func (g *Generator) finish(state State, attempts int, started time.Time, fields ...zap.Field) {
	elapsed := time.Since(started)
	fields = append(fields,
		zap.String("state", string(state)),
		zap.Int("attempts", attempts),
		zap.Duration("elapsed", elapsed),
	)
	if state == StateSuccess {
		g.logger.Info("timetable generated", fields...)
	} else {
		g.logger.Warn("timetable generation exhausted", fields...)
	}
	if g.observer != nil {
		g.observer.ObserveGeneration(state, attempts, elapsed)
	}
}

func outcomeOf(err error) Outcome {
	var (
		lab       *InfeasibleLabPlacementError
		theory    *InfeasibleTheoryPlacementError
		load      *LoadExceededError
		conflicts *conflictsDetectedError
	)
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &lab):
		return OutcomeInfeasibleLab
	case errors.As(err, &theory):
		return OutcomeInfeasibleTheory
	case errors.As(err, &load):
		return OutcomeLoadExceeded
	case errors.As(err, &conflicts):
		return OutcomeConflicts
	default:
		return OutcomeFailed
	}
}

// Validate checks generation preconditions.
func Validate(sections []*Section) error {
	if len(sections) == 0 {
		return inputErrorf("sections", "at least one section is required")
	}
	sectionNames := make(map[string]bool, len(sections))
	teachers := make(map[string]*Teacher)
	for i, section := range sections {
		if section == nil {
			return inputErrorf("sections", "section %d is nil", i)
		}
		if strings.TrimSpace(section.Name) == "" {
			return inputErrorf("sections", "section %d has no name", i)
		}
		if sectionNames[section.Name] {
			return inputErrorf("sections", "duplicate section name %q", section.Name)
		}
		sectionNames[section.Name] = true

		subjects := make(map[string]bool, len(section.Assignments))
		for j, a := range section.Assignments {
			if a == nil {
				return inputErrorf(fmt.Sprintf("%s.assignments[%d]", section.Name, j), "assignment is nil")
			}
			field := section.Name + "." + a.Name()
			if err := validateAssignment(field, a); err != nil {
				return err
			}
			if subjects[a.Name()] {
				return inputErrorf(field, "subject assigned twice in section")
			}
			subjects[a.Name()] = true

			if known, ok := teachers[a.Teacher.Name]; ok && known != a.Teacher && known.MaxLoad != a.Teacher.MaxLoad {
				return inputErrorf(field, "teacher %q is defined twice with different max loads", a.Teacher.Name)
			}
			teachers[a.Teacher.Name] = a.Teacher
		}
	}
	return nil
}

func validateAssignment(field string, a *Assignment) error {
	if strings.TrimSpace(a.Subject.Name) == "" {
		return inputErrorf(field, "subject name is required")
	}
	if a.Teacher == nil {
		return inputErrorf(field, "teacher is required")
	}
	if strings.TrimSpace(a.Teacher.Name) == "" {
		return inputErrorf(field, "teacher name is required")
	}
	if a.Teacher.MaxLoad <= 0 {
		return inputErrorf(field, "teacher %s max load must be positive", a.Teacher.Name)
	}
	if a.Subject.PeriodsPerWeek <= 0 {
		return inputErrorf(field, "periods per week must be positive")
	}
	if a.Subject.IsLab && a.Subject.BlockSize <= 0 {
		return inputErrorf(field, "lab block size must be positive")
	}
	if !a.Subject.IsLab && a.Subject.BlockSize > 1 {
		return inputErrorf(field, "block size must be 1 for non-lab subjects")
	}
	if a.Subject.BlockSize < 0 {
		return inputErrorf(field, "block size must not be negative")
	}
	return nil
}

// cloneSections copies sections and assignments, sharing one teacher record per name.
func cloneSections(in []*Section) ([]*Section, map[string]*Teacher) {
	teachers := make(map[string]*Teacher)
	out := make([]*Section, 0, len(in))
	for _, section := range in {
		cp := &Section{Name: section.Name, Year: section.Year, Assignments: make([]*Assignment, 0, len(section.Assignments))}
		for _, a := range section.Assignments {
			t, ok := teachers[a.Teacher.Name]
			if !ok {
				t = &Teacher{Name: a.Teacher.Name, MaxLoad: a.Teacher.MaxLoad}
				teachers[t.Name] = t
			}
			subject := a.Subject
			if !subject.IsLab {
				subject.BlockSize = 1
			}
			cp.Assignments = append(cp.Assignments, &Assignment{Subject: subject, Teacher: t})
		}
		out = append(out, cp)
	}
	return out, teachers
}
