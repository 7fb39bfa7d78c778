package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// ClassSubjectRepository reads the subject-teacher bindings of classes.
type ClassSubjectRepository struct {
	db *sqlx.DB
}

// NewClassSubjectRepository creates a new repository.
func NewClassSubjectRepository(db *sqlx.DB) *ClassSubjectRepository {
	return &ClassSubjectRepository{db: db}
}

// ListByClasses returns the bindings of every given class.
func (r *ClassSubjectRepository) ListByClasses(ctx context.Context, classIDs []string) ([]models.ClassSubject, error) {
	if len(classIDs) == 0 {
		return []models.ClassSubject{}, nil
	}
	const query = `
SELECT id, class_id, subject_id, teacher_id, created_at
FROM class_subjects
WHERE class_id = ANY($1)
ORDER BY class_id ASC, created_at ASC, id ASC`
	var bindings []models.ClassSubject
	if err := r.db.SelectContext(ctx, &bindings, query, pq.Array(classIDs)); err != nil {
		return nil, fmt.Errorf("list class subjects: %w", err)
	}
	return bindings, nil
}
