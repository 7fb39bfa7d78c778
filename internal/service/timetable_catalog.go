package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type classReader interface {
	List(ctx context.Context) ([]models.Class, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Class, error)
}

type classSubjectReader interface {
	ListByClasses(ctx context.Context, classIDs []string) ([]models.ClassSubject, error)
}

type subjectReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Subject, error)
}

type teacherReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Teacher, error)
}

// catalog ties generator sections, which are keyed by name, back to database identifiers.
type catalog struct {
	sections    []*timetable.Section
	byClass     map[string]*timetable.Section
	classIDs    map[string]string
	assignments map[string]map[string]*timetable.Assignment
	subjectIDs  map[*timetable.Assignment]string
	teacherIDs  map[string]string
}

func newCatalog() *catalog {
	return &catalog{
		byClass:     make(map[string]*timetable.Section),
		classIDs:    make(map[string]string),
		assignments: make(map[string]map[string]*timetable.Assignment),
		subjectIDs:  make(map[*timetable.Assignment]string),
		teacherIDs:  make(map[string]string),
	}
}

type catalogLoader struct {
	classes  classReader
	bindings classSubjectReader
	subjects subjectReader
	teachers teacherReader
}

// load assembles sections for the given classes, or every class when ids is empty.
func (l catalogLoader) load(ctx context.Context, ids []string) (*catalog, error) {
	classes, err := l.loadClasses(ctx, ids)
	if err != nil {
		return nil, err
	}
	classIDs := make([]string, 0, len(classes))
	for _, class := range classes {
		classIDs = append(classIDs, class.ID)
	}

	bindings, err := l.bindings.ListByClasses(ctx, classIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class subjects")
	}
	subjectIDs, teacherIDs := bindingIDs(bindings)

	subjects, err := l.subjects.FindByIDs(ctx, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	subjectByID := make(map[string]models.Subject, len(subjects))
	for _, subject := range subjects {
		subjectByID[subject.ID] = subject
	}

	teacherRows, err := l.teachers.FindByIDs(ctx, teacherIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}

	cat := newCatalog()
	teachers := make(map[string]*timetable.Teacher, len(teacherRows))
	names := teacherNames(teacherRows)
	for _, row := range teacherRows {
		name := names[row.ID]
		cat.teacherIDs[name] = row.ID
		teachers[row.ID] = &timetable.Teacher{Name: name, MaxLoad: row.MaxLoad}
	}

	byClass := make(map[string][]models.ClassSubject)
	for _, binding := range bindings {
		byClass[binding.ClassID] = append(byClass[binding.ClassID], binding)
	}

	for _, class := range classes {
		section := timetable.NewSection(class.Name, class.YearLevel)
		cat.assignments[class.ID] = make(map[string]*timetable.Assignment)
		for _, binding := range byClass[class.ID] {
			subject, ok := subjectByID[binding.SubjectID]
			if !ok {
				return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("class %s references missing subject %s", class.Name, binding.SubjectID))
			}
			teacher, ok := teachers[binding.TeacherID]
			if !ok {
				return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("class %s references missing teacher %s", class.Name, binding.TeacherID))
			}
			a := section.Assign(timetable.Subject{
				Name:           subject.Name,
				PeriodsPerWeek: subject.PeriodsPerWeek,
				IsLab:          subject.IsLab,
				BlockSize:      subject.BlockSize,
			}, teacher)
			cat.assignments[class.ID][subject.ID] = a
			cat.subjectIDs[a] = subject.ID
		}
		cat.add(class.ID, section)
	}
	return cat, nil
}

func (l catalogLoader) loadClasses(ctx context.Context, ids []string) ([]models.Class, error) {
	if len(ids) == 0 {
		classes, err := l.classes.List(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
		}
		if len(classes) == 0 {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no classes defined")
		}
		return classes, nil
	}

	ids = uniqueStrings(ids)
	classes, err := l.classes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	if len(classes) != len(ids) {
		found := make(map[string]struct{}, len(classes))
		for _, class := range classes {
			found[class.ID] = struct{}{}
		}
		var missing []string
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				missing = append(missing, id)
			}
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("classes not found: %s", strings.Join(missing, ", ")))
	}
	return classes, nil
}

func (c *catalog) add(classID string, section *timetable.Section) {
	c.sections = append(c.sections, section)
	c.byClass[classID] = section
	c.classIDs[section.Name] = classID
}

// place fills the grids from stored slots and recounts teacher loads.
func (c *catalog) place(slots []models.TimetableSlot) error {
	for _, slot := range slots {
		section, ok := c.byClass[slot.ClassID]
		if !ok {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("timetable references unknown class %s", slot.ClassID))
		}
		a, ok := c.assignments[slot.ClassID][slot.SubjectID]
		if !ok {
			return appErrors.Clone(appErrors.ErrPreconditionFailed,
				fmt.Sprintf("timetable references subject %s which is no longer assigned to %s", slot.SubjectID, section.Name))
		}
		if slot.DayOfWeek < 0 || slot.DayOfWeek >= timetable.DaysPerWeek || slot.TimeSlot < 0 || slot.TimeSlot >= timetable.PeriodsPerDay {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("timetable slot %d/%d is out of range", slot.DayOfWeek, slot.TimeSlot))
		}
		section.Timetable[slot.DayOfWeek][slot.TimeSlot] = a
		a.Teacher.CurrentLoad++
	}
	return nil
}

// slotsFor converts a section grid into rows of the given timetable.
func (c *catalog) slotsFor(timetableID string, section *timetable.Section) []models.TimetableSlot {
	classID := c.classIDs[section.Name]
	var slots []models.TimetableSlot
	for day := 0; day < timetable.DaysPerWeek; day++ {
		for period := 0; period < timetable.PeriodsPerDay; period++ {
			a := section.Timetable[day][period]
			if a == nil {
				continue
			}
			slots = append(slots, models.TimetableSlot{
				TimetableID: timetableID,
				ClassID:     classID,
				DayOfWeek:   day,
				TimeSlot:    period,
				SubjectID:   c.subjectIDs[a],
				TeacherID:   c.teacherIDs[a.TeacherName()],
			})
		}
	}
	return slots
}

// rebind maps generator output back onto catalog identifiers. The generator works on a copy, so
// assignments are matched by section and subject name.
func (c *catalog) rebind(sections []*timetable.Section) *catalog {
	out := newCatalog()
	out.teacherIDs = c.teacherIDs
	for _, section := range sections {
		classID := c.classIDs[section.Name]
		original := c.byClass[classID]
		out.assignments[classID] = make(map[string]*timetable.Assignment)
		for _, a := range section.Assignments {
			for _, oa := range original.Assignments {
				if oa.Name() == a.Name() {
					id := c.subjectIDs[oa]
					out.subjectIDs[a] = id
					out.assignments[classID][id] = a
				}
			}
		}
		out.add(classID, section)
	}
	return out
}

func bindingIDs(bindings []models.ClassSubject) (subjects, teachers []string) {
	seenSubject := make(map[string]struct{})
	seenTeacher := make(map[string]struct{})
	for _, b := range bindings {
		if _, ok := seenSubject[b.SubjectID]; !ok {
			seenSubject[b.SubjectID] = struct{}{}
			subjects = append(subjects, b.SubjectID)
		}
		if _, ok := seenTeacher[b.TeacherID]; !ok {
			seenTeacher[b.TeacherID] = struct{}{}
			teachers = append(teachers, b.TeacherID)
		}
	}
	return subjects, teachers
}

// teacherNames returns a unique display name per teacher id. Colliding full names are
// qualified with the email.
func teacherNames(rows []models.Teacher) map[string]string {
	count := make(map[string]int, len(rows))
	for _, row := range rows {
		count[row.FullName]++
	}
	names := make(map[string]string, len(rows))
	for _, row := range rows {
		name := row.FullName
		if count[name] > 1 {
			qualifier := row.Email
			if qualifier == "" {
				qualifier = row.ID
			}
			name = fmt.Sprintf("%s (%s)", name, qualifier)
		}
		names[row.ID] = name
	}
	return names
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SectionsFromDefinition builds sections from an inline definition. Sections naming the same
// teacher share one load counter.
func SectionsFromDefinition(def dto.TimetableDefinition) ([]*timetable.Section, error) {
	teachers := make(map[string]*timetable.Teacher, len(def.Teachers))
	for _, t := range def.Teachers {
		name := strings.TrimSpace(t.Name)
		if _, dup := teachers[name]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("teacher %q is declared twice", name))
		}
		teachers[name] = &timetable.Teacher{Name: name, MaxLoad: t.MaxLoad}
	}
	subjects := make(map[string]timetable.Subject, len(def.Subjects))
	for _, s := range def.Subjects {
		name := strings.TrimSpace(s.Name)
		if _, dup := subjects[name]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("subject %q is declared twice", name))
		}
		subjects[name] = timetable.Subject{Name: name, PeriodsPerWeek: s.PeriodsPerWeek, IsLab: s.IsLab, BlockSize: s.BlockSize}
	}

	sections := make([]*timetable.Section, 0, len(def.Sections))
	for _, sd := range def.Sections {
		section := timetable.NewSection(strings.TrimSpace(sd.Name), strings.TrimSpace(sd.Year))
		for _, binding := range sd.Subjects {
			subject, ok := subjects[strings.TrimSpace(binding.Subject)]
			if !ok {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("section %s uses undeclared subject %q", section.Name, binding.Subject))
			}
			teacher, ok := teachers[strings.TrimSpace(binding.Teacher)]
			if !ok {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("section %s uses undeclared teacher %q", section.Name, binding.Teacher))
			}
			section.Assign(subject, teacher)
		}
		sections = append(sections, section)
	}
	return sections, nil
}

// BuildConflictReport runs the conflict detector and integrity checks over sections.
func BuildConflictReport(sections []*timetable.Section) dto.ConflictReportResponse {
	conflicts := timetable.DetectConflicts(sections)
	integrity := timetable.ValidateIntegrity(sections)
	return dto.ConflictReportResponse{
		Clean:       len(conflicts) == 0 && len(integrity) == 0,
		Conflicts:   conflicts,
		Summaries:   timetable.SummarizeConflicts(conflicts),
		Suggestions: timetable.SuggestResolutions(conflicts, sections),
		Integrity:   integrity,
		Report:      timetable.ConflictReport(conflicts),
	}
}

func sortedClassIDs(slots []models.TimetableSlot) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, slot := range slots {
		if _, ok := seen[slot.ClassID]; ok {
			continue
		}
		seen[slot.ClassID] = struct{}{}
		ids = append(ids, slot.ClassID)
	}
	sort.Strings(ids)
	return ids
}
