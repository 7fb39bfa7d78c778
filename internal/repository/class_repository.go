package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// ClassRepository reads classes (sections).
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns every class ordered by name.
func (r *ClassRepository) List(ctx context.Context) ([]models.Class, error) {
	const query = `SELECT id, name, year_level, created_at, updated_at FROM classes ORDER BY name ASC`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByIDs returns the classes with the given ids ordered by name.
func (r *ClassRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Class, error) {
	if len(ids) == 0 {
		return []models.Class{}, nil
	}
	const query = `SELECT id, name, year_level, created_at, updated_at FROM classes WHERE id = ANY($1) ORDER BY name ASC`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find classes: %w", err)
	}
	return classes, nil
}
