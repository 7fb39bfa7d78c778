package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// TimetableSlotRepository manages the occupied cells of timetables.
type TimetableSlotRepository struct {
	db *sqlx.DB
}

// NewTimetableSlotRepository builds repository.
func NewTimetableSlotRepository(db *sqlx.DB) *TimetableSlotRepository {
	return &TimetableSlotRepository{db: db}
}

func (r *TimetableSlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// UpsertBatch inserts or updates cells of a timetable.
func (r *TimetableSlotRepository) UpsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error {
	if len(slots) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO timetable_slots (id, timetable_id, class_id, day_of_week, time_slot, subject_id, teacher_id, created_at)
VALUES (:id, :timetable_id, :class_id, :day_of_week, :time_slot, :subject_id, :teacher_id, :created_at)
ON CONFLICT (timetable_id, class_id, day_of_week, time_slot) DO UPDATE
SET subject_id = EXCLUDED.subject_id,
    teacher_id = EXCLUDED.teacher_id`

	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, slot); err != nil {
			return fmt.Errorf("upsert timetable slot: %w", err)
		}
	}
	return nil
}

// ReplaceClass swaps every cell of one class for the given set.
func (r *TimetableSlotRepository) ReplaceClass(ctx context.Context, exec sqlx.ExtContext, timetableID, classID string, slots []models.TimetableSlot) error {
	const query = `DELETE FROM timetable_slots WHERE timetable_id = $1 AND class_id = $2`
	if _, err := r.exec(exec).ExecContext(ctx, query, timetableID, classID); err != nil {
		return fmt.Errorf("clear timetable slots: %w", err)
	}
	return r.UpsertBatch(ctx, exec, slots)
}

// ListByTimetable returns cells ordered by class, day and period.
func (r *TimetableSlotRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableSlot, error) {
	const query = `SELECT id, timetable_id, class_id, day_of_week, time_slot, subject_id, teacher_id, created_at
FROM timetable_slots WHERE timetable_id = $1 ORDER BY class_id ASC, day_of_week ASC, time_slot ASC`
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return slots, nil
}
