package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// --- Fixtures ---

type classRepoStub struct{ items []models.Class }

func (s classRepoStub) List(ctx context.Context) ([]models.Class, error) { return s.items, nil }

func (s classRepoStub) FindByIDs(ctx context.Context, ids []string) ([]models.Class, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Class
	for _, c := range s.items {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

type bindingRepoStub struct{ items []models.ClassSubject }

func (s bindingRepoStub) ListByClasses(ctx context.Context, classIDs []string) ([]models.ClassSubject, error) {
	want := make(map[string]bool, len(classIDs))
	for _, id := range classIDs {
		want[id] = true
	}
	var out []models.ClassSubject
	for _, b := range s.items {
		if want[b.ClassID] {
			out = append(out, b)
		}
	}
	return out, nil
}

type subjectRepoStub struct{ items []models.Subject }

func (s subjectRepoStub) FindByIDs(ctx context.Context, ids []string) ([]models.Subject, error) {
	return s.items, nil
}

type teacherRepoStub struct{ items []models.Teacher }

func (s teacherRepoStub) FindByIDs(ctx context.Context, ids []string) ([]models.Teacher, error) {
	return s.items, nil
}

type timetableRepoStub struct {
	mu       sync.Mutex
	items    map[string]*models.Timetable
	archived []string
	versions map[string]int
}

func newTimetableRepoStub(items ...models.Timetable) *timetableRepoStub {
	stub := &timetableRepoStub{items: make(map[string]*models.Timetable), versions: make(map[string]int)}
	for i := range items {
		item := items[i]
		stub.items[item.ID] = &item
	}
	return stub
}

func (s *timetableRepoStub) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, tt *models.Timetable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[tt.TermID]++
	tt.Version = s.versions[tt.TermID]
	tt.ID = fmt.Sprintf("tt-%d", len(s.items)+1)
	stored := *tt
	s.items[tt.ID] = &stored
	return nil
}

func (s *timetableRepoStub) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Timetable
	for _, item := range s.items {
		if filter.TermID == "" || item.TermID == filter.TermID {
			out = append(out, *item)
		}
	}
	return out, len(out), nil
}

func (s *timetableRepoStub) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	found := *item
	return &found, nil
}

func (s *timetableRepoStub) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func (s *timetableRepoStub) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus, meta types.JSONText) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Status = status
	return nil
}

func (s *timetableRepoStub) ArchivePublished(ctx context.Context, exec sqlx.ExtContext, termID, keepID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, item := range s.items {
		if id != keepID && item.TermID == termID && item.Status == models.TimetableStatusPublished {
			item.Status = models.TimetableStatusArchived
			s.archived = append(s.archived, id)
		}
	}
	return nil
}

type slotRepoStub struct {
	mu       sync.Mutex
	items    []models.TimetableSlot
	replaced map[string][]models.TimetableSlot
}

func (s *slotRepoStub) UpsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, slots...)
	return nil
}

func (s *slotRepoStub) ReplaceClass(ctx context.Context, exec sqlx.ExtContext, timetableID, classID string, slots []models.TimetableSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replaced == nil {
		s.replaced = make(map[string][]models.TimetableSlot)
	}
	s.replaced[classID] = slots
	kept := s.items[:0]
	for _, slot := range s.items {
		if slot.TimetableID != timetableID || slot.ClassID != classID {
			kept = append(kept, slot)
		}
	}
	s.items = append(kept, slots...)
	return nil
}

func (s *slotRepoStub) ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TimetableSlot
	for _, slot := range s.items {
		if slot.TimetableID == timetableID {
			out = append(out, slot)
		}
	}
	return out, nil
}

type displayCacheStub struct {
	mu          sync.Mutex
	items       map[string]timetable.DisplayGrid
	invalidated []string
}

func (c *displayCacheStub) Get(ctx context.Context, key string, dest interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	grid, ok := c.items[key]
	if ok {
		*dest.(*timetable.DisplayGrid) = grid
	}
	return ok
}

func (c *displayCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = make(map[string]timetable.DisplayGrid)
	}
	c.items[key] = value.(timetable.DisplayGrid)
}

func (c *displayCacheStub) Invalidate(ctx context.Context, pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, pattern)
}

type txProviderMock struct {
	db *sqlx.DB
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "sqlmock")}, mock
}

type serviceFixture struct {
	svc        *TimetableService
	timetables *timetableRepoStub
	slots      *slotRepoStub
	cache      *displayCacheStub
	mock       sqlmock.Sqlmock
}

type fixtureOption func(*TimetableServiceConfig)

func newServiceFixture(t *testing.T, stored []models.Timetable, slots []models.TimetableSlot, opts ...fixtureOption) *serviceFixture {
	t.Helper()
	tx, mock := newTxProviderMock(t)
	fx := &serviceFixture{
		timetables: newTimetableRepoStub(stored...),
		slots:      &slotRepoStub{items: slots},
		cache:      &displayCacheStub{},
		mock:       mock,
	}
	cfg := TimetableServiceConfig{Generator: timetable.DefaultOptions()}
	cfg.Generator.Seed = 99
	for _, opt := range opts {
		opt(&cfg)
	}
	fx.svc = NewTimetableService(TimetableRepositories{
		Timetables: fx.timetables,
		Slots:      fx.slots,
		Classes: classRepoStub{items: []models.Class{
			{ID: "c1", Name: "10-A", YearLevel: "1st Year"},
			{ID: "c2", Name: "11-A", YearLevel: "2nd Year"},
		}},
		Bindings: bindingRepoStub{items: []models.ClassSubject{
			{ClassID: "c1", SubjectID: "math", TeacherID: "t1"},
			{ClassID: "c1", SubjectID: "chem-lab", TeacherID: "t2"},
			{ClassID: "c1", SubjectID: "english", TeacherID: "t3"},
			{ClassID: "c2", SubjectID: "math", TeacherID: "t1"},
			{ClassID: "c2", SubjectID: "chem-lab", TeacherID: "t2"},
			{ClassID: "c2", SubjectID: "english", TeacherID: "t3"},
		}},
		Subjects: subjectRepoStub{items: []models.Subject{
			{ID: "math", Name: "Math", PeriodsPerWeek: 4},
			{ID: "chem-lab", Name: "Chemistry Lab", PeriodsPerWeek: 3, IsLab: true, BlockSize: 3},
			{ID: "english", Name: "English", PeriodsPerWeek: 3},
		}},
		Teachers: teacherRepoStub{items: []models.Teacher{
			{ID: "t1", FullName: "Alice", MaxLoad: 20},
			{ID: "t2", FullName: "Bob", MaxLoad: 20},
			{ID: "t3", FullName: "Carol", MaxLoad: 10},
		}},
	}, tx, fx.cache, nil, nil, nil, zap.NewNop(), cfg)
	return fx
}

func draft(id string) models.Timetable {
	return models.Timetable{ID: id, TermID: "term-1", Version: 1, Status: models.TimetableStatusDraft}
}

func slot(classID string, day, period int, subjectID, teacherID string) models.TimetableSlot {
	return models.TimetableSlot{TimetableID: "tt-1", ClassID: classID, DayOfWeek: day, TimeSlot: period, SubjectID: subjectID, TeacherID: teacherID}
}

func doubleBookedSlots() []models.TimetableSlot {
	return []models.TimetableSlot{
		slot("c1", 0, 0, "math", "t1"),
		slot("c2", 0, 0, "math", "t1"),
		slot("c2", 1, 2, "english", "t3"),
	}
}

func appCode(err error) string {
	return appErrors.FromError(err).Code
}

// --- Tests ---

func TestTimetableServiceGenerateAndSave(t *testing.T) {
	fx := newServiceFixture(t, nil, nil)

	resp, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{TermID: "term-1"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ProposalID)
	require.NotNil(t, resp.ExpiresAt)
	assert.Equal(t, int64(99), resp.Seed)
	require.Len(t, resp.Sections, 2)
	require.Len(t, resp.Displays, 2)
	assert.Equal(t, []timetable.TeacherLoad{
		{Teacher: "Alice", Load: 8, MaxLoad: 20},
		{Teacher: "Bob", Load: 6, MaxLoad: 20},
		{Teacher: "Carol", Load: 6, MaxLoad: 10},
	}, resp.Loads)

	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	saved, err := fx.svc.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: resp.ProposalID})
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Version)
	assert.NoError(t, fx.mock.ExpectationsWereMet())

	require.Len(t, fx.slots.items, 20)
	for _, s := range fx.slots.items {
		assert.Equal(t, saved.TimetableID, s.TimetableID)
		assert.Contains(t, []string{"c1", "c2"}, s.ClassID)
		assert.NotEmpty(t, s.SubjectID)
		assert.NotEmpty(t, s.TeacherID)
	}

	_, err = fx.svc.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: resp.ProposalID})
	assert.Equal(t, appErrors.ErrNotFound.Code, appCode(err))
}

func TestTimetableServiceSavedGridRoundTrips(t *testing.T) {
	fx := newServiceFixture(t, nil, nil)
	resp, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{TermID: "term-1", ClassIDs: []string{"c2"}})
	require.NoError(t, err)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	saved, err := fx.svc.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: resp.ProposalID})
	require.NoError(t, err)

	grid, err := fx.svc.Grid(context.Background(), saved.TimetableID)
	require.NoError(t, err)
	require.Len(t, grid.Sections, 1)
	assert.Equal(t, "c2", grid.Sections[0].ClassID)
	assert.Equal(t, resp.Sections[0].Grid, grid.Sections[0].Grid)
}

func TestTimetableServiceGenerateUnknownClass(t *testing.T) {
	fx := newServiceFixture(t, nil, nil)

	_, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{TermID: "term-1", ClassIDs: []string{"c1", "ghost"}})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appCode(err))
	assert.Contains(t, err.Error(), "ghost")
}

func TestTimetableServiceGenerateRequiresTerm(t *testing.T) {
	fx := newServiceFixture(t, nil, nil)

	_, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{})

	assert.Equal(t, appErrors.ErrValidation.Code, appCode(err))
}

func TestTimetableServiceGenerateFromDefinitionExhausted(t *testing.T) {
	fx := newServiceFixture(t, nil, nil)
	req := dto.GenerateFromDefinitionRequest{
		Definition: dto.TimetableDefinition{
			Teachers: []dto.DefinitionTeacher{{Name: "Rahma", MaxLoad: 4}},
			Subjects: []dto.DefinitionSubject{{Name: "Physics Lab", PeriodsPerWeek: 4, IsLab: true, BlockSize: 4}},
			Sections: []dto.DefinitionSection{
				{Name: "A", Year: "1st Year", Subjects: []dto.DefinitionBinding{{Subject: "Physics Lab", Teacher: "Rahma"}}},
				{Name: "B", Year: "1st Year", Subjects: []dto.DefinitionBinding{{Subject: "Physics Lab", Teacher: "Rahma"}}},
			},
		},
		GenerationOptions: dto.GenerationOptions{MaxAttempts: 3, Seed: 5},
	}

	_, err := fx.svc.GenerateFromDefinition(context.Background(), req)

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrGenerationExhausted.Code, appErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Status)
	assert.Contains(t, appErr.Message, "after 3 attempts")
}

func TestTimetableServiceGenerateFromDefinitionUndeclaredTeacher(t *testing.T) {
	fx := newServiceFixture(t, nil, nil)
	req := dto.GenerateFromDefinitionRequest{Definition: dto.TimetableDefinition{
		Teachers: []dto.DefinitionTeacher{{Name: "Rahma", MaxLoad: 4}},
		Subjects: []dto.DefinitionSubject{{Name: "Math", PeriodsPerWeek: 2}},
		Sections: []dto.DefinitionSection{{Name: "A", Year: "1st Year", Subjects: []dto.DefinitionBinding{{Subject: "Math", Teacher: "Nobody"}}}},
	}}

	_, err := fx.svc.GenerateFromDefinition(context.Background(), req)

	assert.Equal(t, appErrors.ErrValidation.Code, appCode(err))
	assert.Contains(t, err.Error(), "Nobody")
}

func TestTimetableServiceConflictsAndPublishRejection(t *testing.T) {
	fx := newServiceFixture(t, []models.Timetable{draft("tt-1")}, doubleBookedSlots())

	report, err := fx.svc.Conflicts(context.Background(), "tt-1")
	require.NoError(t, err)
	assert.False(t, report.Clean)
	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, "Teacher Alice is scheduled in multiple sections (10-A, 11-A) at Monday, Period 1", report.Summaries[0].Message)
	require.Len(t, report.Suggestions, 1)

	err = fx.svc.Publish(context.Background(), "tt-1")
	assert.Equal(t, appErrors.ErrConflict.Code, appCode(err))
}

func TestTimetableServicePublishRejectsLabAcrossLunch(t *testing.T) {
	slots := []models.TimetableSlot{
		slot("c1", 0, 2, "chem-lab", "t2"),
		slot("c1", 0, 3, "chem-lab", "t2"),
		slot("c1", 0, 4, "chem-lab", "t2"),
	}
	fx := newServiceFixture(t, []models.Timetable{draft("tt-1")}, slots)

	report, err := fx.svc.Conflicts(context.Background(), "tt-1")
	require.NoError(t, err)
	var lunch int
	for _, issue := range report.Integrity {
		if issue.Type == timetable.IssueLabSpansLunch {
			lunch++
		}
	}
	assert.Equal(t, 1, lunch)

	err = fx.svc.Publish(context.Background(), "tt-1")
	assert.Equal(t, appErrors.ErrConflict.Code, appCode(err))
	assert.Equal(t, models.TimetableStatusDraft, fx.timetables.items["tt-1"].Status)
}

func TestTimetableServicePublishArchivesPrevious(t *testing.T) {
	previous := draft("tt-0")
	previous.Status = models.TimetableStatusPublished
	fx := newServiceFixture(t, []models.Timetable{previous, draft("tt-1")}, []models.TimetableSlot{slot("c1", 0, 0, "math", "t1")})
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	require.NoError(t, fx.svc.Publish(context.Background(), "tt-1"))

	assert.NoError(t, fx.mock.ExpectationsWereMet())
	assert.Equal(t, models.TimetableStatusPublished, fx.timetables.items["tt-1"].Status)
	assert.Equal(t, models.TimetableStatusArchived, fx.timetables.items["tt-0"].Status)
	assert.Equal(t, []string{"timetable:tt-1:*"}, fx.cache.invalidated)

	err := fx.svc.Publish(context.Background(), "tt-1")
	assert.Equal(t, appErrors.ErrConflict.Code, appCode(err))
}

func TestTimetableServiceMoveResolvesConflict(t *testing.T) {
	fx := newServiceFixture(t, []models.Timetable{draft("tt-1")}, doubleBookedSlots())
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	report, err := fx.svc.Move(context.Background(), "tt-1", dto.MoveRequest{
		ClassID: "c2",
		From:    dto.SlotRequest{Day: 0, Period: 0},
		To:      dto.SlotRequest{Day: 0, Period: 1},
	})

	require.NoError(t, err)
	assert.Empty(t, report.Conflicts)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
	moved := fx.slots.replaced["c2"]
	require.Len(t, moved, 2)
	assert.Equal(t, 0, moved[0].DayOfWeek)
	assert.Equal(t, 1, moved[0].TimeSlot)
	assert.Equal(t, "math", moved[0].SubjectID)
	assert.Equal(t, "t1", moved[0].TeacherID)
	assert.Equal(t, []string{"timetable:tt-1:*"}, fx.cache.invalidated)
}

func TestTimetableServiceMoveRejectsOccupiedDestination(t *testing.T) {
	fx := newServiceFixture(t, []models.Timetable{draft("tt-1")}, doubleBookedSlots())

	_, err := fx.svc.Move(context.Background(), "tt-1", dto.MoveRequest{
		ClassID: "c2",
		From:    dto.SlotRequest{Day: 0, Period: 0},
		To:      dto.SlotRequest{Day: 1, Period: 2},
	})

	assert.Equal(t, appErrors.ErrValidation.Code, appCode(err))
	assert.Nil(t, fx.slots.replaced)
}

func TestTimetableServiceSwapAndFinalizedGuard(t *testing.T) {
	published := draft("tt-1")
	published.Status = models.TimetableStatusPublished
	fx := newServiceFixture(t, []models.Timetable{published}, doubleBookedSlots())

	_, err := fx.svc.Move(context.Background(), "tt-1", dto.MoveRequest{ClassID: "c2", Mode: "swap", To: dto.SlotRequest{Day: 1, Period: 2}})

	assert.Equal(t, appErrors.ErrFinalized.Code, appCode(err))
}

func TestTimetableServiceDeleteOnlyDrafts(t *testing.T) {
	published := draft("tt-2")
	published.Status = models.TimetableStatusPublished
	fx := newServiceFixture(t, []models.Timetable{draft("tt-1"), published}, nil)

	require.NoError(t, fx.svc.Delete(context.Background(), "tt-1"))
	assert.Equal(t, appErrors.ErrConflict.Code, appCode(fx.svc.Delete(context.Background(), "tt-2")))
	assert.Equal(t, appErrors.ErrNotFound.Code, appCode(fx.svc.Delete(context.Background(), "tt-1")))
}

func TestTimetableServiceDisplayUsesCache(t *testing.T) {
	fx := newServiceFixture(t, []models.Timetable{draft("tt-1")}, doubleBookedSlots())

	grid, hit, err := fx.svc.Display(context.Background(), "tt-1", "c2")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "11-A", grid.Section)
	assert.Equal(t, 4, grid.LunchPosition)
	assert.Equal(t, "Math", grid.Schedule[0][0].Name)
	assert.Contains(t, fx.cache.items, "timetable:tt-1:display:c2")

	_, hit, err = fx.svc.Display(context.Background(), "tt-1", "c2")
	require.NoError(t, err)
	assert.True(t, hit)

	_, _, err = fx.svc.Display(context.Background(), "tt-1", "c9")
	assert.Equal(t, appErrors.ErrNotFound.Code, appCode(err))
}

func TestTimetableServiceExport(t *testing.T) {
	fx := newServiceFixture(t, []models.Timetable{draft("tt-1")}, doubleBookedSlots())

	file, err := fx.svc.Export(context.Background(), "tt-1", "c1", "csv")

	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Contains(t, string(file.Data), "Math (Alice)")
}

func TestTimetableServiceTeacherLoads(t *testing.T) {
	fx := newServiceFixture(t, []models.Timetable{draft("tt-1")}, doubleBookedSlots())

	loads, err := fx.svc.TeacherLoads(context.Background(), "tt-1")

	require.NoError(t, err)
	assert.Equal(t, []dto.TeacherLoad{
		{TeacherID: "t1", Teacher: "Alice", Load: 2, MaxLoad: 20},
		{TeacherID: "t2", Teacher: "Bob", Load: 0, MaxLoad: 20},
		{TeacherID: "t3", Teacher: "Carol", Load: 1, MaxLoad: 10},
	}, loads)
}

func TestTimetableServiceStoredSlotForUnassignedSubject(t *testing.T) {
	fx := newServiceFixture(t, []models.Timetable{draft("tt-1")}, []models.TimetableSlot{slot("c1", 0, 0, "history", "t1")})

	_, err := fx.svc.Grid(context.Background(), "tt-1")

	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appCode(err))
}

func TestTimetableServiceValidateGrids(t *testing.T) {
	fx := newServiceFixture(t, nil, nil)
	teacher := &timetable.Teacher{Name: "Rahma", MaxLoad: 10}
	a := timetable.NewSection("A", "1st Year")
	b := timetable.NewSection("B", "2nd Year")
	a.Timetable[2][3] = a.Assign(timetable.Subject{Name: "Math", PeriodsPerWeek: 1}, teacher)
	b.Timetable[2][3] = b.Assign(timetable.Subject{Name: "Physics", PeriodsPerWeek: 1}, teacher)

	resp, err := fx.svc.Validate(context.Background(), dto.ValidateGridRequest{Sections: timetable.Snapshots([]*timetable.Section{a, b})})

	require.NoError(t, err)
	assert.False(t, resp.Clean)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, 2, resp.Conflicts[0].Day)
	assert.Equal(t, []timetable.TeacherLoad{{Teacher: "Rahma", Load: 2, MaxLoad: 10}}, resp.Loads)
}

func TestTimetableServiceList(t *testing.T) {
	fx := newServiceFixture(t, []models.Timetable{draft("tt-1")}, nil)

	list, pagination, err := fx.svc.List(context.Background(), dto.TimetableQuery{TermID: "term-1"})

	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 1, pagination.TotalCount)

	_, _, err = fx.svc.List(context.Background(), dto.TimetableQuery{Status: "LIVE"})
	assert.Equal(t, appErrors.ErrValidation.Code, appCode(err))
}

func TestTimetableServiceBackgroundJob(t *testing.T) {
	fx := newServiceFixture(t, nil, nil, func(cfg *TimetableServiceConfig) { cfg.Workers = 1 })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fx.svc.Start(ctx)
	defer fx.svc.Stop()

	job, err := fx.svc.Enqueue(ctx, dto.GenerateTimetableRequest{TermID: "term-1"})
	require.NoError(t, err)
	require.NotEmpty(t, job.JobID)

	require.Eventually(t, func() bool {
		status, err := fx.svc.JobStatus(ctx, job.JobID)
		return err == nil && status.Status == "SUCCEEDED"
	}, 5*time.Second, 10*time.Millisecond)

	status, err := fx.svc.JobStatus(ctx, job.JobID)
	require.NoError(t, err)
	require.NotNil(t, status.Result)
	assert.NotEmpty(t, status.Result.ProposalID)

	_, err = fx.svc.JobStatus(ctx, "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appCode(err))
}

func TestTimetableServiceJobsDisabled(t *testing.T) {
	fx := newServiceFixture(t, nil, nil)

	_, err := fx.svc.Enqueue(context.Background(), dto.GenerateTimetableRequest{TermID: "term-1"})

	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appCode(err))
}

func TestProposalStoreExpires(t *testing.T) {
	store := newProposalStore(time.Minute)
	now := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	store.Save(timetableProposal{ID: "p1", RequestedAt: now})

	_, ok := store.Get("p1")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = store.Get("p1")
	assert.False(t, ok)
}

func TestSectionsFromDefinitionSharesTeachers(t *testing.T) {
	sections, err := SectionsFromDefinition(dto.TimetableDefinition{
		Teachers: []dto.DefinitionTeacher{{Name: "Rahma", MaxLoad: 12}},
		Subjects: []dto.DefinitionSubject{{Name: "Math", PeriodsPerWeek: 4}, {Name: "Physics Lab", PeriodsPerWeek: 3, IsLab: true, BlockSize: 3}},
		Sections: []dto.DefinitionSection{
			{Name: "A", Year: "1st Year", Subjects: []dto.DefinitionBinding{{Subject: "Math", Teacher: "Rahma"}}},
			{Name: "B", Year: "2nd Year", Subjects: []dto.DefinitionBinding{{Subject: "Physics Lab", Teacher: "Rahma"}}},
		},
	})

	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Same(t, sections[0].Assignments[0].Teacher, sections[1].Assignments[0].Teacher)
	assert.True(t, sections[1].Assignments[0].Subject.IsLab)
}

func TestTeacherNamesQualifiesDuplicates(t *testing.T) {
	names := teacherNames([]models.Teacher{
		{ID: "t1", FullName: "Siti", Email: "siti.a@example.com"},
		{ID: "t2", FullName: "Siti", Email: "siti.b@example.com"},
		{ID: "t3", FullName: "Budi"},
	})

	assert.Equal(t, "Siti (siti.a@example.com)", names["t1"])
	assert.Equal(t, "Siti (siti.b@example.com)", names["t2"])
	assert.Equal(t, "Budi", names["t3"])
}
