package models

import "time"

// Subject is a reusable subject template. Labs are scheduled as one contiguous block.
type Subject struct {
	ID             string    `db:"id" json:"id"`
	Code           string    `db:"code" json:"code"`
	Name           string    `db:"name" json:"name"`
	PeriodsPerWeek int       `db:"periods_per_week" json:"periods_per_week"`
	IsLab          bool      `db:"is_lab" json:"is_lab"`
	BlockSize      int       `db:"block_size" json:"block_size"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
