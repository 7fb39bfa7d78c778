package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableStatus represents lifecycle phases for generated timetables.
type TimetableStatus string

const (
	TimetableStatusDraft     TimetableStatus = "DRAFT"
	TimetableStatusPublished TimetableStatus = "PUBLISHED"
	TimetableStatusArchived  TimetableStatus = "ARCHIVED"
)

// Timetable is a versioned weekly timetable covering one or more classes of a term.
type Timetable struct {
	ID        string          `db:"id" json:"id"`
	TermID    string          `db:"term_id" json:"term_id"`
	Version   int             `db:"version" json:"version"`
	Status    TimetableStatus `db:"status" json:"status"`
	Seed      int64           `db:"seed" json:"seed"`
	Attempts  int             `db:"attempts" json:"attempts"`
	Meta      types.JSONText  `db:"meta" json:"meta"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// TimetableSlot is one occupied cell. Day and period are zero based.
type TimetableSlot struct {
	ID          string    `db:"id" json:"id"`
	TimetableID string    `db:"timetable_id" json:"timetable_id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	TimeSlot    int       `db:"time_slot" json:"time_slot"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// TimetableFilter narrows timetable listings.
type TimetableFilter struct {
	TermID   string
	Status   TimetableStatus
	Page     int
	PageSize int
}

// Pagination is returned alongside timetable listings.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
