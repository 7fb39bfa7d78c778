// Package timetable assigns weekly class periods to sections without double-booking teachers.
//
// Labs are placed first as contiguous blocks that never straddle the lunch break, theory periods
// are then spread across the week with a weighted random draw, and every attempt is validated by
// the conflict detector before it is returned.
package timetable

const (
	// DaysPerWeek is the number of teaching days in the grid (Monday to Saturday).
	DaysPerWeek = 6
	// PeriodsPerDay is the number of teaching periods per day. Lunch is not a grid slot.
	PeriodsPerDay = 7
)

// DayNames lists the grid days in order.
var DayNames = [DaysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Teacher is shared by pointer across every assignment that names it.
type Teacher struct {
	Name        string `json:"name"`
	MaxLoad     int    `json:"max_load"`
	CurrentLoad int    `json:"current_load"`
}

// CanTeach reports whether periods more periods fit under the teacher's weekly ceiling.
func (t *Teacher) CanTeach(periods int) bool {
	return t.CurrentLoad+periods <= t.MaxLoad
}

// Subject is a reusable template. It never carries a teacher.
type Subject struct {
	Name           string `json:"name"`
	PeriodsPerWeek int    `json:"periods_per_week"`
	IsLab          bool   `json:"is_lab"`
	BlockSize      int    `json:"block_size"`
}

// Assignment is a subject instance: a template copy bound to one teacher inside one section.
type Assignment struct {
	Subject Subject
	Teacher *Teacher
}

// Name returns the subject name.
func (a *Assignment) Name() string {
	return a.Subject.Name
}

// TeacherName returns the bound teacher's name or an empty string.
func (a *Assignment) TeacherName() string {
	if a.Teacher == nil {
		return ""
	}
	return a.Teacher.Name
}

// RequiredCells is the number of grid cells the assignment must occupy.
// Labs take one block per week.
func (a *Assignment) RequiredCells() int {
	if a.Subject.IsLab {
		return a.Subject.BlockSize
	}
	return a.Subject.PeriodsPerWeek
}

// Grid is a section's week. A nil cell is a free period.
type Grid [DaysPerWeek][PeriodsPerDay]*Assignment

// Count returns how many cells reference the assignment.
func (g *Grid) Count(a *Assignment) int {
	n := 0
	for d := 0; d < DaysPerWeek; d++ {
		n += g.CountOnDay(a, d)
	}
	return n
}

// CountOnDay returns how many cells of day reference the assignment.
func (g *Grid) CountOnDay(a *Assignment, day int) int {
	n := 0
	for p := 0; p < PeriodsPerDay; p++ {
		if g[day][p] == a {
			n++
		}
	}
	return n
}

// FreeRange reports whether periods [start, start+size) of day are all empty.
func (g *Grid) FreeRange(day, start, size int) bool {
	if start < 0 || start+size > PeriodsPerDay {
		return false
	}
	for p := start; p < start+size; p++ {
		if g[day][p] != nil {
			return false
		}
	}
	return true
}

// Section is one class group with its own weekly grid.
type Section struct {
	Name        string
	Year        string
	Assignments []*Assignment
	Timetable   Grid
}

// NewSection builds a section with an empty grid.
func NewSection(name, year string, assignments ...*Assignment) *Section {
	return &Section{Name: name, Year: year, Assignments: assignments}
}

// Assign binds a copy of the subject template to teacher and appends it to the section.
func (s *Section) Assign(subject Subject, teacher *Teacher) *Assignment {
	a := &Assignment{Subject: subject, Teacher: teacher}
	s.Assignments = append(s.Assignments, a)
	return a
}

// LunchPosition returns the section's lunch boundary.
func (s *Section) LunchPosition() int {
	return LunchPosition(s.Year)
}

// Clear empties the grid.
func (s *Section) Clear() {
	s.Timetable = Grid{}
}

// Slot addresses one grid cell.
type Slot struct {
	Day    int `json:"day"`
	Period int `json:"period"`
}

func validSlot(day, period int) bool {
	return day >= 0 && day < DaysPerWeek && period >= 0 && period < PeriodsPerDay
}
