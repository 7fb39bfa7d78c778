package timetable

import (
	"fmt"
	"sort"
)

// Cell is the serialisable form of one occupied grid slot.
type Cell struct {
	Subject   string `json:"subject"`
	Teacher   string `json:"teacher"`
	IsLab     bool   `json:"is_lab"`
	BlockSize int    `json:"block_size,omitempty"`
}

// AssignmentSnapshot is the serialisable form of an Assignment.
type AssignmentSnapshot struct {
	Subject        string `json:"subject"`
	Teacher        string `json:"teacher"`
	MaxLoad        int    `json:"max_load"`
	PeriodsPerWeek int    `json:"periods_per_week"`
	IsLab          bool   `json:"is_lab"`
	BlockSize      int    `json:"block_size"`
}

// SectionSnapshot carries a section and its grid across process boundaries.
// Grid is indexed [day][period]; nil entries are free periods.
type SectionSnapshot struct {
	Name        string               `json:"name"`
	Year        string               `json:"year"`
	Assignments []AssignmentSnapshot `json:"assignments"`
	Grid        [][]*Cell            `json:"grid"`
}

// Snapshot copies the section into its serialisable form.
func (s *Section) Snapshot() SectionSnapshot {
	snap := SectionSnapshot{
		Name:        s.Name,
		Year:        s.Year,
		Assignments: make([]AssignmentSnapshot, 0, len(s.Assignments)),
		Grid:        make([][]*Cell, DaysPerWeek),
	}
	for _, a := range s.Assignments {
		as := AssignmentSnapshot{
			Subject:        a.Name(),
			Teacher:        a.TeacherName(),
			PeriodsPerWeek: a.Subject.PeriodsPerWeek,
			IsLab:          a.Subject.IsLab,
			BlockSize:      a.Subject.BlockSize,
		}
		if a.Teacher != nil {
			as.MaxLoad = a.Teacher.MaxLoad
		}
		snap.Assignments = append(snap.Assignments, as)
	}
	for day := 0; day < DaysPerWeek; day++ {
		snap.Grid[day] = make([]*Cell, PeriodsPerDay)
		for period := 0; period < PeriodsPerDay; period++ {
			a := s.Timetable[day][period]
			if a == nil {
				continue
			}
			cell := &Cell{Subject: a.Name(), Teacher: a.TeacherName(), IsLab: a.Subject.IsLab}
			if a.Subject.IsLab {
				cell.BlockSize = a.Subject.BlockSize
			}
			snap.Grid[day][period] = cell
		}
	}
	return snap
}

// Snapshots converts every section.
func Snapshots(sections []*Section) []SectionSnapshot {
	out := make([]SectionSnapshot, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Snapshot())
	}
	return out
}

// RestoreSections rebuilds sections from snapshots. Teachers with the same name share one record
// and their loads are recounted from the grids. Assignments are optional: a cell whose subject has
// no assignment in its section gets one built from the cell, with the period count taken from the
// grid and an unknown (zero) max load unless another snapshot declares the teacher. Within a
// section a subject has exactly one teacher; a cell naming a different one is rejected.
func RestoreSections(snaps []SectionSnapshot) ([]*Section, map[string]*Teacher, error) {
	teachers := make(map[string]*Teacher)
	for _, snap := range snaps {
		for _, as := range snap.Assignments {
			if as.Teacher == "" {
				return nil, nil, inputErrorf(snap.Name+"."+as.Subject, "teacher name is required")
			}
			if t, ok := teachers[as.Teacher]; ok {
				if t.MaxLoad != as.MaxLoad {
					return nil, nil, inputErrorf(snap.Name+"."+as.Subject,
						"teacher %q is defined twice with different max loads (%d, %d)", as.Teacher, t.MaxLoad, as.MaxLoad)
				}
				continue
			}
			teachers[as.Teacher] = &Teacher{Name: as.Teacher, MaxLoad: as.MaxLoad}
		}
	}

	sections := make([]*Section, 0, len(snaps))
	for _, snap := range snaps {
		section, err := restoreSection(snap, teachers)
		if err != nil {
			return nil, nil, err
		}
		sections = append(sections, section)
	}
	return sections, teachers, nil
}

func restoreSection(snap SectionSnapshot, teachers map[string]*Teacher) (*Section, error) {
	section := NewSection(snap.Name, snap.Year)
	bySubject := make(map[string]*Assignment, len(snap.Assignments))
	for _, as := range snap.Assignments {
		bySubject[as.Subject] = section.Assign(Subject{
			Name:           as.Subject,
			PeriodsPerWeek: as.PeriodsPerWeek,
			IsLab:          as.IsLab,
			BlockSize:      as.BlockSize,
		}, teachers[as.Teacher])
	}

	if len(snap.Grid) > DaysPerWeek {
		return nil, inputErrorf(snap.Name, "grid has %d days, expected at most %d", len(snap.Grid), DaysPerWeek)
	}
	derived := make(map[*Assignment]bool)
	for day, row := range snap.Grid {
		if len(row) > PeriodsPerDay {
			return nil, inputErrorf(snap.Name, "day %d has %d periods, expected at most %d", day+1, len(row), PeriodsPerDay)
		}
		for period, cell := range row {
			if cell == nil || cell.Subject == "" {
				continue
			}
			a, ok := bySubject[cell.Subject]
			if !ok {
				if cell.Teacher == "" {
					return nil, inputErrorf(snap.Name, "cell %s has subject %q but no teacher",
						SlotLabel(day, period), cell.Subject)
				}
				t, known := teachers[cell.Teacher]
				if !known {
					t = &Teacher{Name: cell.Teacher}
					teachers[cell.Teacher] = t
				}
				a = section.Assign(Subject{Name: cell.Subject, IsLab: cell.IsLab, BlockSize: cell.BlockSize}, t)
				bySubject[cell.Subject] = a
				derived[a] = true
			} else if cell.Teacher != "" && cell.Teacher != a.TeacherName() {
				return nil, inputErrorf(snap.Name, "cell %s assigns %q to %s but the section binds it to %s",
					SlotLabel(day, period), cell.Subject, cell.Teacher, a.TeacherName())
			}
			section.Timetable[day][period] = a
			a.Teacher.CurrentLoad++
		}
	}

	for a := range derived {
		cells := section.Timetable.Count(a)
		a.Subject.PeriodsPerWeek = cells
		if a.Subject.IsLab && a.Subject.BlockSize == 0 {
			a.Subject.BlockSize = cells
		}
		if !a.Subject.IsLab {
			a.Subject.BlockSize = 0
		}
	}
	return section, nil
}

// TeacherLoad is a teacher's booked periods against the ceiling.
type TeacherLoad struct {
	Teacher string `json:"teacher"`
	Load    int    `json:"load"`
	MaxLoad int    `json:"max_load"`
}

// Loads recounts every teacher's load from the grids, sorted by name.
func Loads(sections []*Section) []TeacherLoad {
	loads := make(map[string]*TeacherLoad)
	var order []string
	for _, section := range sections {
		for _, a := range section.Assignments {
			if a.Teacher == nil {
				continue
			}
			if _, ok := loads[a.Teacher.Name]; !ok {
				loads[a.Teacher.Name] = &TeacherLoad{Teacher: a.Teacher.Name, MaxLoad: a.Teacher.MaxLoad}
				order = append(order, a.Teacher.Name)
			}
		}
		for day := 0; day < DaysPerWeek; day++ {
			for period := 0; period < PeriodsPerDay; period++ {
				if a := section.Timetable[day][period]; a != nil && a.Teacher != nil {
					if l, ok := loads[a.Teacher.Name]; ok {
						l.Load++
					}
				}
			}
		}
	}
	sort.Strings(order)
	out := make([]TeacherLoad, 0, len(order))
	for _, name := range order {
		out = append(out, *loads[name])
	}
	return out
}

func (l TeacherLoad) String() string {
	return fmt.Sprintf("%s: %d/%d", l.Teacher, l.Load, l.MaxLoad)
}
