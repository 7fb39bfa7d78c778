package timetable

import (
	"math"
	"math/rand"
	"sort"
)

// teacherSchedule records, per teacher, which section holds each slot during one attempt.
type teacherSchedule map[string]*[DaysPerWeek][PeriodsPerDay]string

func (ts teacherSchedule) free(teacher string, day, start, size int) bool {
	week := ts[teacher]
	if week == nil {
		return true
	}
	for p := start; p < start+size; p++ {
		if week[day][p] != "" {
			return false
		}
	}
	return true
}

func (ts teacherSchedule) mark(teacher, section string, day, start, size int) {
	week := ts[teacher]
	if week == nil {
		week = &[DaysPerWeek][PeriodsPerDay]string{}
		ts[teacher] = week
	}
	for p := start; p < start+size; p++ {
		week[day][p] = section
	}
}

type placementTask struct {
	section    *Section
	assignment *Assignment
}

type weightedSlot struct {
	Slot
	weight float64
}

// engine runs one attempt. It owns the grids, loads and teacher schedule it is given.
type engine struct {
	sections []*Section
	teachers map[string]*Teacher
	schedule teacherSchedule
	rng      *rand.Rand
	opts     Options
}

func newEngine(sections []*Section, teachers map[string]*Teacher, rng *rand.Rand, opts Options) *engine {
	return &engine{
		sections: sections,
		teachers: teachers,
		rng:      rng,
		opts:     opts.normalized(),
	}
}

func (e *engine) run() error {
	e.reset()
	if err := e.placeLabs(); err != nil {
		return err
	}
	if err := e.placeTheory(); err != nil {
		return err
	}
	return e.checkLoads()
}

func (e *engine) reset() {
	e.schedule = make(teacherSchedule, len(e.teachers))
	for _, teacher := range e.teachers {
		teacher.CurrentLoad = 0
	}
	for _, section := range e.sections {
		section.Clear()
		for _, a := range section.Assignments {
			a.Teacher.CurrentLoad = 0
		}
	}
}

func (e *engine) placeLabs() error {
	var tasks []placementTask
	for _, section := range e.sections {
		for _, a := range section.Assignments {
			if a.Subject.IsLab {
				tasks = append(tasks, placementTask{section: section, assignment: a})
			}
		}
	}
	// Largest blocks first: they have the fewest legal windows.
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].assignment.Subject.BlockSize > tasks[j].assignment.Subject.BlockSize
	})

	for _, task := range tasks {
		section, a := task.section, task.assignment
		size := a.Subject.BlockSize
		legal := LegalStarts(section.Year, size)

		candidates := e.labCandidates(section, a, legal)
		if len(candidates) == 0 {
			return &InfeasibleLabPlacementError{
				Section:       section.Name,
				Subject:       a.Name(),
				Teacher:       a.TeacherName(),
				Year:          section.Year,
				BlockSize:     size,
				LunchPosition: section.LunchPosition(),
				LegalStarts:   legal,
			}
		}
		pick := candidates[e.rng.Intn(len(candidates))]
		e.commit(section, a, pick.Day, pick.Period, size)
	}
	return nil
}

func (e *engine) labCandidates(section *Section, a *Assignment, starts []int) []Slot {
	size := a.Subject.BlockSize
	if !e.labLoadOK(a.Teacher, size) {
		return nil
	}
	var out []Slot
	for day := 0; day < DaysPerWeek; day++ {
		for _, start := range starts {
			if !section.Timetable.FreeRange(day, start, size) {
				continue
			}
			if !e.schedule.free(a.Teacher.Name, day, start, size) {
				continue
			}
			out = append(out, Slot{Day: day, Period: start})
		}
	}
	return out
}

func (e *engine) labLoadOK(t *Teacher, size int) bool {
	ceiling := math.Floor(float64(t.MaxLoad) * e.opts.LabLoadTolerance)
	return float64(t.CurrentLoad+size) <= ceiling
}

func (e *engine) placeTheory() error {
	for _, section := range e.sections {
		var theory []*Assignment
		for _, a := range section.Assignments {
			if !a.Subject.IsLab {
				theory = append(theory, a)
			}
		}
		e.rng.Shuffle(len(theory), func(i, j int) { theory[i], theory[j] = theory[j], theory[i] })

		for _, a := range theory {
			if err := e.placeTheorySubject(section, a); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *engine) placeTheorySubject(section *Section, a *Assignment) error {
	required := a.Subject.PeriodsPerWeek
	maxPerDay := min(e.opts.MaxPerDay, required)
	limit := required * e.opts.AttemptFactor

	var daysUsed [DaysPerWeek]bool
	placed := 0
	for draws := 0; placed < required && draws < limit; draws++ {
		slot, ok := e.weightedTheorySlot(section, a, &daysUsed, maxPerDay)
		if !ok {
			slot, ok = e.fallbackTheorySlot(section, a)
		}
		if !ok {
			break
		}
		e.commit(section, a, slot.Day, slot.Period, 1)
		daysUsed[slot.Day] = true
		placed++
	}

	if placed < required {
		return &InfeasibleTheoryPlacementError{
			Section:  section.Name,
			Subject:  a.Name(),
			Teacher:  a.TeacherName(),
			Required: required,
			Placed:   placed,
		}
	}
	return nil
}

func (e *engine) weightedTheorySlot(section *Section, a *Assignment, daysUsed *[DaysPerWeek]bool, maxPerDay int) (Slot, bool) {
	if !a.Teacher.CanTeach(1) {
		return Slot{}, false
	}
	var candidates []weightedSlot
	total := 0.0
	for day := 0; day < DaysPerWeek; day++ {
		dayCount := section.Timetable.CountOnDay(a, day)
		if dayCount >= maxPerDay {
			continue
		}
		for period := 0; period < PeriodsPerDay; period++ {
			if section.Timetable[day][period] != nil || !e.schedule.free(a.Teacher.Name, day, period, 1) {
				continue
			}
			w := placementWeight(day, period, daysUsed, dayCount, maxPerDay)
			candidates = append(candidates, weightedSlot{Slot: Slot{Day: day, Period: period}, weight: w})
			total += w
		}
	}
	if len(candidates) == 0 {
		return Slot{}, false
	}

	r := e.rng.Float64() * total
	cumulative := 0.0
	for _, c := range candidates {
		cumulative += c.weight
		if r < cumulative {
			return c.Slot, true
		}
	}
	return candidates[len(candidates)-1].Slot, true
}

// fallbackTheorySlot ignores the per-day cap but never the load ceiling.
func (e *engine) fallbackTheorySlot(section *Section, a *Assignment) (Slot, bool) {
	if !a.Teacher.CanTeach(1) {
		return Slot{}, false
	}
	var free []Slot
	for day := 0; day < DaysPerWeek; day++ {
		for period := 0; period < PeriodsPerDay; period++ {
			if section.Timetable[day][period] == nil && e.schedule.free(a.Teacher.Name, day, period, 1) {
				free = append(free, Slot{Day: day, Period: period})
			}
		}
	}
	if len(free) == 0 {
		return Slot{}, false
	}
	return free[e.rng.Intn(len(free))], true
}

func placementWeight(day, period int, daysUsed *[DaysPerWeek]bool, dayCount, maxPerDay int) float64 {
	weight := 1.0
	if !daysUsed[day] {
		weight *= 2.0
	}
	if maxPerDay-dayCount > 1 {
		weight *= 1.5
	}
	if period >= 1 && period <= 5 {
		weight *= 1.1
	}
	return weight
}

func (e *engine) commit(section *Section, a *Assignment, day, start, size int) {
	for p := start; p < start+size; p++ {
		section.Timetable[day][p] = a
	}
	e.schedule.mark(a.Teacher.Name, section.Name, day, start, size)
	a.Teacher.CurrentLoad += size
}

func (e *engine) checkLoads() error {
	names := make([]string, 0, len(e.teachers))
	for name := range e.teachers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := e.teachers[name]
		if t.CurrentLoad > t.MaxLoad {
			return &LoadExceededError{Teacher: t.Name, Load: t.CurrentLoad, MaxLoad: t.MaxLoad}
		}
	}
	return nil
}
