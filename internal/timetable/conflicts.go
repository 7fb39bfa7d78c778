package timetable

import (
	"fmt"
	"sort"
	"strings"
)

// maxSuggestedSlots caps the alternatives listed per suggestion.
const maxSuggestedSlots = 5

// ConflictEntry is one section/subject pair contending for a teacher's slot.
type ConflictEntry struct {
	Section string `json:"section"`
	Subject string `json:"subject"`
}

// Conflict is a teacher booked more than once at the same day and period.
type Conflict struct {
	Teacher     string          `json:"teacher"`
	Day         int             `json:"day"`
	Period      int             `json:"period"`
	Assignments []ConflictEntry `json:"assignments"`
}

// ConflictSummary is the human-readable form of a Conflict.
type ConflictSummary struct {
	Teacher  string   `json:"teacher"`
	Time     string   `json:"time"`
	Sections []string `json:"sections"`
	Subjects []string `json:"subjects"`
	Message  string   `json:"message"`
}

// Suggestion proposes moving one contending assignment elsewhere in its section.
type Suggestion struct {
	Teacher      string `json:"teacher"`
	Day          int    `json:"day"`
	Period       int    `json:"period"`
	Section      string `json:"section"`
	Subject      string `json:"subject"`
	Alternatives []Slot `json:"alternatives"`
	Message      string `json:"message"`
}

// DetectConflicts scans every non-empty cell and reports each double-booked teacher slot once.
// It never modifies the sections and may run on hand-edited grids.
func DetectConflicts(sections []*Section) []Conflict {
	type bucketKey struct {
		teacher     string
		day, period int
	}
	buckets := make(map[bucketKey][]ConflictEntry)
	for _, section := range sections {
		if section == nil {
			continue
		}
		for day := 0; day < DaysPerWeek; day++ {
			for period := 0; period < PeriodsPerDay; period++ {
				a := section.Timetable[day][period]
				if a == nil || a.Teacher == nil {
					continue
				}
				key := bucketKey{teacher: a.Teacher.Name, day: day, period: period}
				buckets[key] = append(buckets[key], ConflictEntry{Section: section.Name, Subject: a.Name()})
			}
		}
	}

	conflicts := make([]Conflict, 0)
	for key, entries := range buckets {
		if len(entries) < 2 {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Teacher:     key.teacher,
			Day:         key.day,
			Period:      key.period,
			Assignments: entries,
		})
	}
	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Teacher != conflicts[j].Teacher {
			return conflicts[i].Teacher < conflicts[j].Teacher
		}
		if conflicts[i].Day != conflicts[j].Day {
			return conflicts[i].Day < conflicts[j].Day
		}
		return conflicts[i].Period < conflicts[j].Period
	})
	return conflicts
}

// SlotLabel renders a slot as "Monday, Period 1".
func SlotLabel(day, period int) string {
	name := fmt.Sprintf("Day %d", day+1)
	if day >= 0 && day < DaysPerWeek {
		name = DayNames[day]
	}
	return fmt.Sprintf("%s, Period %d", name, period+1)
}

// SummarizeConflicts produces one summary line per conflict.
func SummarizeConflicts(conflicts []Conflict) []ConflictSummary {
	summaries := make([]ConflictSummary, 0, len(conflicts))
	for _, c := range conflicts {
		sections := make([]string, 0, len(c.Assignments))
		subjects := make([]string, 0, len(c.Assignments))
		for _, entry := range c.Assignments {
			sections = append(sections, entry.Section)
			subjects = append(subjects, entry.Subject)
		}
		when := SlotLabel(c.Day, c.Period)
		summaries = append(summaries, ConflictSummary{
			Teacher:  c.Teacher,
			Time:     when,
			Sections: sections,
			Subjects: subjects,
			Message: fmt.Sprintf("Teacher %s is scheduled in multiple sections (%s) at %s",
				c.Teacher, strings.Join(sections, ", "), when),
		})
	}
	return summaries
}

// ConflictReport joins the summaries into a printable block.
func ConflictReport(conflicts []Conflict) string {
	if len(conflicts) == 0 {
		return "No scheduling conflicts detected."
	}
	lines := make([]string, 0, len(conflicts))
	for _, s := range SummarizeConflicts(conflicts) {
		lines = append(lines, s.Message)
	}
	return strings.Join(lines, "\n")
}

// SuggestResolutions keeps the first assignment of each conflict and proposes free slots in the
// owning section for the others. Nothing is moved.
func SuggestResolutions(conflicts []Conflict, sections []*Section) []Suggestion {
	byName := make(map[string]*Section, len(sections))
	for _, s := range sections {
		if s != nil {
			byName[s.Name] = s
		}
	}

	suggestions := make([]Suggestion, 0)
	for _, c := range conflicts {
		for _, entry := range c.Assignments[1:] {
			section := byName[entry.Section]
			if section == nil {
				continue
			}
			suggestions = append(suggestions, Suggestion{
				Teacher:      c.Teacher,
				Day:          c.Day,
				Period:       c.Period,
				Section:      entry.Section,
				Subject:      entry.Subject,
				Alternatives: freeSlots(section, maxSuggestedSlots),
				Message:      fmt.Sprintf("Move %s from %s to an available time slot", entry.Subject, entry.Section),
			})
		}
	}
	return suggestions
}

func freeSlots(section *Section, limit int) []Slot {
	out := make([]Slot, 0, limit)
	for day := 0; day < DaysPerWeek; day++ {
		for period := 0; period < PeriodsPerDay; period++ {
			if section.Timetable[day][period] != nil {
				continue
			}
			out = append(out, Slot{Day: day, Period: period})
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
