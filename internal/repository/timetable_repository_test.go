package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

var timetableRowColumns = []string{"id", "term_id", "version", "status", "seed", "attempts", "meta", "created_at", "updated_at"}

func TestTimetableRepositoryCreateVersioned(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM timetables WHERE term_id = $1")).
		WithArgs("term-1").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WithArgs(sqlmock.AnyArg(), "term-1", 3, string(models.TimetableStatusDraft), int64(42), 2, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	payload := &models.Timetable{TermID: "term-1", Seed: 42, Attempts: 2}
	require.NoError(t, repo.CreateVersioned(context.Background(), nil, payload))
	assert.Equal(t, 3, payload.Version)
	assert.NotEmpty(t, payload.ID)
	assert.Equal(t, types.JSONText(`{}`), payload.Meta)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryCreateVersionedRequiresTerm(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()

	err := NewTimetableRepository(db).CreateVersioned(context.Background(), nil, &models.Timetable{})
	assert.Error(t, err)
}

func TestTimetableRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, term_id, version, status, seed, attempts, meta, created_at, updated_at FROM timetables WHERE 1=1 AND term_id = $1 AND status = $2 ORDER BY term_id ASC, version DESC LIMIT 10 OFFSET 10")).
		WithArgs("term-1", string(models.TimetableStatusDraft)).
		WillReturnRows(sqlmock.NewRows(timetableRowColumns).
			AddRow("tt-1", "term-1", 1, "DRAFT", int64(7), 1, types.JSONText(`{}`), time.Now(), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM timetables WHERE 1=1 AND term_id = $1 AND status = $2")).
		WithArgs("term-1", string(models.TimetableStatusDraft)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	list, total, err := repo.List(context.Background(), models.TimetableFilter{TermID: "term-1", Status: models.TimetableStatusDraft, Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetables WHERE id = $1")).
		WithArgs("tt-1").
		WillReturnRows(sqlmock.NewRows(timetableRowColumns).
			AddRow("tt-1", "term-1", 4, "PUBLISHED", int64(9), 3, types.JSONText(`{"note":"x"}`), time.Now(), time.Now()))

	tt, err := repo.FindByID(context.Background(), "tt-1")
	require.NoError(t, err)
	assert.Equal(t, models.TimetableStatusPublished, tt.Status)
	assert.Equal(t, int64(9), tt.Seed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables WHERE id = $1")).
		WithArgs("tt-1").
		WillReturnResult(sqlmock.NewResult(1, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "tt-1"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET status = $1, meta = $2, updated_at = $3 WHERE id = $4")).
		WithArgs(string(models.TimetableStatusPublished), types.JSONText(`{"conflicts":0}`), sqlmock.AnyArg(), "tt-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(string(models.TimetableStatusDraft), sqlmock.AnyArg(), "tt-2").
		WillReturnResult(sqlmock.NewResult(1, 0))

	require.NoError(t, repo.UpdateStatus(context.Background(), nil, "tt-1", models.TimetableStatusPublished, types.JSONText(`{"conflicts":0}`)))
	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), nil, "tt-2", models.TimetableStatusDraft, nil), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryArchivePublished(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET status = $1, updated_at = $2 WHERE term_id = $3 AND status = $4 AND id <> $5")).
		WithArgs(string(models.TimetableStatusArchived), sqlmock.AnyArg(), "term-1", string(models.TimetableStatusPublished), "tt-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.ArchivePublished(context.Background(), nil, "term-1", "tt-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSlotRepositoryReplaceClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_slots WHERE timetable_id = $1 AND class_id = $2")).
		WithArgs("tt-1", "c1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_slots")).
		WithArgs(sqlmock.AnyArg(), "tt-1", "c1", 0, 3, "s1", "t1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	slots := []models.TimetableSlot{{TimetableID: "tt-1", ClassID: "c1", DayOfWeek: 0, TimeSlot: 3, SubjectID: "s1", TeacherID: "t1"}}
	require.NoError(t, repo.ReplaceClass(context.Background(), nil, "tt-1", "c1", slots))
	assert.NotEmpty(t, slots[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSlotRepositoryListByTimetable(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_slots WHERE timetable_id = $1 ORDER BY class_id ASC, day_of_week ASC, time_slot ASC")).
		WithArgs("tt-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "timetable_id", "class_id", "day_of_week", "time_slot", "subject_id", "teacher_id", "created_at"}).
			AddRow("sl-1", "tt-1", "c1", 2, 4, "s1", "t1", time.Now()))

	slots, err := repo.ListByTimetable(context.Background(), "tt-1")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 4, slots[0].TimeSlot)
	assert.NoError(t, mock.ExpectationsWereMet())
}
