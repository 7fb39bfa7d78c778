package timetable

import (
	"errors"
	"fmt"
)

var (
	ErrSectionNotFound  = errors.New("section not found")
	ErrSlotOutOfRange   = errors.New("slot out of range")
	ErrEmptySource      = errors.New("no subject found at source position")
	ErrDestinationTaken = errors.New("destination slot is not empty")
)

// Move describes a manual edit inside one section's grid.
type Move struct {
	Section string `json:"section"`
	From    Slot   `json:"from"`
	To      Slot   `json:"to"`
}

// Integrity issue types.
const (
	IssuePeriodCount   = "period_count_mismatch"
	IssueLabBlockSplit = "lab_block_split"
	IssueLabSpansLunch = "lab_spans_lunch"
)

// IntegrityIssue reports an assignment whose cells do not match what it requires.
// Slot is the start of the offending run for lab issues.
type IntegrityIssue struct {
	Type     string `json:"type"`
	Section  string `json:"section"`
	Subject  string `json:"subject"`
	Expected int    `json:"expected"`
	Actual   int    `json:"actual"`
	Slot     *Slot  `json:"slot,omitempty"`
}

// IsLabLayout reports whether the issue breaks lab contiguity or lunch safety.
func (i IntegrityIssue) IsLabLayout() bool {
	return i.Type == IssueLabBlockSplit || i.Type == IssueLabSpansLunch
}

// MoveCell moves the subject at m.From to the empty m.To.
func MoveCell(sections []*Section, m Move) error {
	section, err := editTarget(sections, m)
	if err != nil {
		return err
	}
	a := section.Timetable[m.From.Day][m.From.Period]
	if a == nil {
		return ErrEmptySource
	}
	if section.Timetable[m.To.Day][m.To.Period] != nil {
		return ErrDestinationTaken
	}
	section.Timetable[m.To.Day][m.To.Period] = a
	section.Timetable[m.From.Day][m.From.Period] = nil
	return nil
}

// SwapCells exchanges the contents of m.From and m.To. Either may be empty, not both.
func SwapCells(sections []*Section, m Move) error {
	section, err := editTarget(sections, m)
	if err != nil {
		return err
	}
	from := section.Timetable[m.From.Day][m.From.Period]
	to := section.Timetable[m.To.Day][m.To.Period]
	if from == nil && to == nil {
		return ErrEmptySource
	}
	section.Timetable[m.From.Day][m.From.Period] = to
	section.Timetable[m.To.Day][m.To.Period] = from
	return nil
}

func editTarget(sections []*Section, m Move) (*Section, error) {
	if !validSlot(m.From.Day, m.From.Period) || !validSlot(m.To.Day, m.To.Period) {
		return nil, ErrSlotOutOfRange
	}
	for _, s := range sections {
		if s != nil && s.Name == m.Section {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, m.Section)
}

// ValidateIntegrity checks that every assignment occupies the number of cells it requires and
// that every lab sits in one contiguous run that does not cross the section's lunch.
func ValidateIntegrity(sections []*Section) []IntegrityIssue {
	issues := make([]IntegrityIssue, 0)
	for _, section := range sections {
		if section == nil {
			continue
		}
		for _, a := range section.Assignments {
			if a == nil {
				continue
			}
			expected := a.RequiredCells()
			if actual := section.Timetable.Count(a); actual != expected {
				issues = append(issues, IntegrityIssue{
					Type:     IssuePeriodCount,
					Section:  section.Name,
					Subject:  a.Name(),
					Expected: expected,
					Actual:   actual,
				})
			}
			if a.Subject.IsLab {
				issues = append(issues, labLayoutIssues(section, a)...)
			}
		}
	}
	return issues
}

type labRun struct {
	start Slot
	size  int
}

func labRuns(section *Section, a *Assignment) []labRun {
	var runs []labRun
	for day := 0; day < DaysPerWeek; day++ {
		for period := 0; period < PeriodsPerDay; period++ {
			if section.Timetable[day][period] != a {
				continue
			}
			if period > 0 && section.Timetable[day][period-1] == a {
				runs[len(runs)-1].size++
				continue
			}
			runs = append(runs, labRun{start: Slot{Day: day, Period: period}, size: 1})
		}
	}
	return runs
}

func labLayoutIssues(section *Section, a *Assignment) []IntegrityIssue {
	runs := labRuns(section, a)
	var issues []IntegrityIssue
	if len(runs) > 1 {
		start := runs[1].start
		issues = append(issues, IntegrityIssue{
			Type:     IssueLabBlockSplit,
			Section:  section.Name,
			Subject:  a.Name(),
			Expected: 1,
			Actual:   len(runs),
			Slot:     &start,
		})
	}
	lunch := section.LunchPosition()
	for _, r := range runs {
		if !SpansLunch(r.start.Period, r.size, lunch) {
			continue
		}
		start := r.start
		issues = append(issues, IntegrityIssue{
			Type:     IssueLabSpansLunch,
			Section:  section.Name,
			Subject:  a.Name(),
			Expected: a.Subject.BlockSize,
			Actual:   r.size,
			Slot:     &start,
		})
	}
	return issues
}
