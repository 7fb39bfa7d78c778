package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// TeacherRepository reads teachers and their weekly load ceilings.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByIDs fetches the teachers with the given ids ordered by name.
func (r *TeacherRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Teacher, error) {
	if len(ids) == 0 {
		return []models.Teacher{}, nil
	}
	const query = `SELECT id, email, full_name, max_load, active, created_at, updated_at FROM teachers WHERE id = ANY($1) ORDER BY full_name ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find teachers: %w", err)
	}
	return teachers, nil
}
