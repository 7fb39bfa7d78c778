package dto

import (
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
)

// GenerationOptions overrides the configured generator settings for one run.
type GenerationOptions struct {
	Seed             int64   `json:"seed"`
	MaxAttempts      int     `json:"maxAttempts" validate:"omitempty,min=1,max=100"`
	LabLoadTolerance float64 `json:"labLoadTolerance" validate:"omitempty,min=1,max=3"`
}

// GenerateTimetableRequest builds a proposal from the stored classes of a term.
// An empty ClassIDs selects every class.
type GenerateTimetableRequest struct {
	TermID   string   `json:"termId" validate:"required"`
	ClassIDs []string `json:"classIds" validate:"omitempty,max=64,dive,required"`
	GenerationOptions
}

// DefinitionTeacher declares a teacher of an inline definition.
type DefinitionTeacher struct {
	Name    string `json:"name" validate:"required"`
	MaxLoad int    `json:"maxLoad" validate:"required,min=1"`
}

// DefinitionSubject declares a subject template of an inline definition.
type DefinitionSubject struct {
	Name           string `json:"name" validate:"required"`
	PeriodsPerWeek int    `json:"periodsPerWeek" validate:"required,min=1,max=42"`
	IsLab          bool   `json:"isLab"`
	BlockSize      int    `json:"blockSize" validate:"omitempty,min=1,max=7"`
}

// DefinitionBinding names the teacher delivering a subject in a section.
type DefinitionBinding struct {
	Subject string `json:"subject" validate:"required"`
	Teacher string `json:"teacher" validate:"required"`
}

// DefinitionSection declares a section and its subject bindings.
type DefinitionSection struct {
	Name     string              `json:"name" validate:"required"`
	Year     string              `json:"year" validate:"required"`
	Subjects []DefinitionBinding `json:"subjects" validate:"required,min=1,dive"`
}

// TimetableDefinition is a self-contained generation input.
type TimetableDefinition struct {
	Teachers []DefinitionTeacher `json:"teachers" validate:"required,min=1,dive"`
	Subjects []DefinitionSubject `json:"subjects" validate:"required,min=1,dive"`
	Sections []DefinitionSection `json:"sections" validate:"required,min=1,max=64,dive"`
}

// GenerateFromDefinitionRequest generates without touching stored classes.
type GenerateFromDefinitionRequest struct {
	Definition TimetableDefinition `json:"definition"`
	GenerationOptions
}

// GenerateTimetableResponse returns a generated timetable.
type GenerateTimetableResponse struct {
	ProposalID string                      `json:"proposalId,omitempty"`
	TermID     string                      `json:"termId,omitempty"`
	ExpiresAt  *time.Time                  `json:"expiresAt,omitempty"`
	Seed       int64                       `json:"seed"`
	Attempts   int                         `json:"attempts"`
	Sections   []timetable.SectionSnapshot `json:"sections"`
	Displays   []timetable.DisplayGrid     `json:"displays"`
	Loads      []timetable.TeacherLoad     `json:"loads"`
	Reports    []timetable.AttemptReport   `json:"reports"`
}

// SaveTimetableRequest persists a proposal as a new draft version.
type SaveTimetableRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
}

// SaveTimetableResponse identifies the stored version.
type SaveTimetableResponse struct {
	TimetableID string `json:"timetableId"`
	Version     int    `json:"version"`
}

// TimetableQuery filters stored timetables.
type TimetableQuery struct {
	TermID   string `form:"termId" json:"termId"`
	Status   string `form:"status" json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	Page     int    `form:"page" json:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" json:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ClassGrid is a stored class grid.
type ClassGrid struct {
	ClassID string `json:"classId"`
	timetable.SectionSnapshot
}

// TimetableGridResponse returns a stored timetable with every class grid.
type TimetableGridResponse struct {
	Timetable models.Timetable `json:"timetable"`
	Sections  []ClassGrid      `json:"sections"`
}

// ConflictReportResponse describes the teacher conflicts and integrity issues of a set of grids.
type ConflictReportResponse struct {
	Clean       bool                        `json:"clean"`
	Conflicts   []timetable.Conflict        `json:"conflicts"`
	Summaries   []timetable.ConflictSummary `json:"summaries"`
	Suggestions []timetable.Suggestion      `json:"suggestions"`
	Integrity   []timetable.IntegrityIssue  `json:"integrity"`
	Report      string                      `json:"report"`
}

// SlotRequest addresses one cell with zero-based day and period.
type SlotRequest struct {
	Day    int `json:"day" validate:"min=0,max=5"`
	Period int `json:"period" validate:"min=0,max=6"`
}

// MoveRequest edits one class grid of a draft timetable.
type MoveRequest struct {
	ClassID string      `json:"classId" validate:"required"`
	Mode    string      `json:"mode" validate:"omitempty,oneof=move swap"`
	From    SlotRequest `json:"from"`
	To      SlotRequest `json:"to"`
}

// ValidateGridRequest checks round-tripped grids without storing them.
type ValidateGridRequest struct {
	Sections []timetable.SectionSnapshot `json:"sections" validate:"required,min=1"`
}

// ValidateGridResponse adds recounted loads to a conflict report.
type ValidateGridResponse struct {
	ConflictReportResponse
	Loads []timetable.TeacherLoad `json:"loads"`
}

// TeacherLoad is a teacher's occupied periods in a stored timetable.
type TeacherLoad struct {
	TeacherID  string `json:"teacherId"`
	Teacher    string `json:"teacher"`
	Load       int    `json:"load"`
	MaxLoad    int    `json:"maxLoad"`
	Overloaded bool   `json:"overloaded"`
}

// JobResponse reports an asynchronous generation.
type JobResponse struct {
	JobID      string                     `json:"jobId"`
	Status     string                     `json:"status"`
	Attempt    int                        `json:"attempt"`
	Error      string                     `json:"error,omitempty"`
	Result     *GenerateTimetableResponse `json:"result,omitempty"`
	EnqueuedAt time.Time                  `json:"enqueuedAt"`
	UpdatedAt  time.Time                  `json:"updatedAt"`
}
