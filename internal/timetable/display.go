package timetable

import (
	"fmt"
	"strings"
)

// DisplayColumns is the number of display columns per day: the teaching periods plus lunch.
const DisplayColumns = PeriodsPerDay + 1

const lunchLabel = "LUNCH"

// DisplayCell is one column of a rendered day.
type DisplayCell struct {
	Name        string `json:"name,omitempty"`
	Teacher     string `json:"teacher,omitempty"`
	IsLab       bool   `json:"is_lab"`
	IsLunch     bool   `json:"is_lunch"`
	Colspan     int    `json:"colspan"`
	IsMergedLab bool   `json:"is_merged_lab"`
	BlockSize   int    `json:"block_size,omitempty"`
	IsHidden    bool   `json:"is_hidden"`
	IsPartOfLab bool   `json:"is_part_of_lab"`
}

// DisplayGrid is a section's week laid out for rendering with lunch inserted as its own column.
type DisplayGrid struct {
	Section       string                                    `json:"section"`
	Year          string                                    `json:"year"`
	Days          []string                                  `json:"days"`
	PeriodLabels  []string                                  `json:"period_labels"`
	LunchPosition int                                       `json:"lunch_position"`
	Schedule      [DaysPerWeek][DisplayColumns]*DisplayCell `json:"schedule"`
}

// PeriodLabels returns the column headers for a lunch position.
func PeriodLabels(lunch int) []string {
	labels := make([]string, DisplayColumns)
	for col := range labels {
		switch {
		case col == lunch:
			labels[col] = lunchLabel
		case col < lunch:
			labels[col] = fmt.Sprintf("Period %d", col+1)
		default:
			labels[col] = fmt.Sprintf("Period %d", col)
		}
	}
	return labels
}

// displayColumn maps a grid period to its display column.
func displayColumn(period, lunch int) int {
	if period >= lunch {
		return period + 1
	}
	return period
}

// BuildDisplay renders the section's grid. A lab block start carries Colspan equal to the block
// size; the cells it covers are hidden placeholders.
func BuildDisplay(section *Section) DisplayGrid {
	lunch := section.LunchPosition()
	out := DisplayGrid{
		Section:       section.Name,
		Year:          section.Year,
		Days:          append([]string(nil), DayNames[:]...),
		PeriodLabels:  PeriodLabels(lunch),
		LunchPosition: lunch,
	}
	for day := 0; day < DaysPerWeek; day++ {
		out.Schedule[day][lunch] = &DisplayCell{Name: lunchLabel, IsLunch: true, Colspan: 1}
		for period := 0; period < PeriodsPerDay; period++ {
			col := displayColumn(period, lunch)
			if out.Schedule[day][col] != nil {
				continue
			}
			a := section.Timetable[day][period]
			if a == nil {
				out.Schedule[day][col] = &DisplayCell{Colspan: 1}
				continue
			}
			cell := &DisplayCell{Name: a.Name(), Teacher: a.TeacherName(), IsLab: a.Subject.IsLab, Colspan: 1}
			out.Schedule[day][col] = cell
			if !a.Subject.IsLab {
				continue
			}

			run := 1
			for p := period + 1; p < PeriodsPerDay && p < lunchBoundary(period, lunch) && section.Timetable[day][p] == a; p++ {
				run++
			}
			if run < 2 {
				continue
			}
			cell.Colspan = run
			cell.IsMergedLab = true
			cell.BlockSize = run
			for p := period + 1; p < period+run; p++ {
				out.Schedule[day][displayColumn(p, lunch)] = &DisplayCell{
					Name:        a.Name(),
					Teacher:     a.TeacherName(),
					IsLab:       true,
					IsHidden:    true,
					IsPartOfLab: true,
				}
			}
		}
	}
	return out
}

// lunchBoundary is the first period a run starting at period may not extend into.
func lunchBoundary(period, lunch int) int {
	if period < lunch {
		return lunch
	}
	return PeriodsPerDay
}

var shortDayNames = [DaysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// FormatText renders the grid as plain rows, one per day, with "--" for free periods.
func FormatText(section *Section) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Timetable for %s (%s)\n", section.Name, section.Year)
	for day := 0; day < DaysPerWeek; day++ {
		cells := make([]string, PeriodsPerDay)
		for period := 0; period < PeriodsPerDay; period++ {
			if a := section.Timetable[day][period]; a != nil {
				cells[period] = a.Name()
			} else {
				cells[period] = "--"
			}
		}
		fmt.Fprintf(&b, "%s | %s\n", shortDayNames[day], strings.Join(cells, " | "))
	}
	return b.String()
}
