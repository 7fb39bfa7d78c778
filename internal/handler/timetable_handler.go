package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type timetableService interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	GenerateFromDefinition(ctx context.Context, req dto.GenerateFromDefinitionRequest) (*dto.GenerateTimetableResponse, error)
	Enqueue(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.JobResponse, error)
	JobStatus(ctx context.Context, id string) (*dto.JobResponse, error)
	Save(ctx context.Context, req dto.SaveTimetableRequest) (*dto.SaveTimetableResponse, error)
	Validate(ctx context.Context, req dto.ValidateGridRequest) (*dto.ValidateGridResponse, error)
	List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, *models.Pagination, error)
	Grid(ctx context.Context, id string) (*dto.TimetableGridResponse, error)
	Conflicts(ctx context.Context, id string) (*dto.ConflictReportResponse, error)
	TeacherLoads(ctx context.Context, id string) ([]dto.TeacherLoad, error)
	Display(ctx context.Context, id, classID string) (*timetable.DisplayGrid, bool, error)
	Export(ctx context.Context, id, classID, format string) (*service.ExportFile, error)
	Move(ctx context.Context, id string, req dto.MoveRequest) (*dto.ConflictReportResponse, error)
	Publish(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// TimetableHandler exposes timetable generation, editing and rendering endpoints.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Register mounts the routes on group. write guards every mutating route.
func (h *TimetableHandler) Register(group gin.IRouter, write ...gin.HandlerFunc) {
	w := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, write...), handler)
	}
	tt := group.Group("/timetables")
	tt.GET("", h.List)
	tt.POST("/generate", w(h.Generate)...)
	tt.POST("/generate/inline", w(h.GenerateInline)...)
	tt.POST("/jobs", w(h.Enqueue)...)
	tt.GET("/jobs/:id", h.JobStatus)
	tt.POST("/save", w(h.Save)...)
	tt.POST("/validate", h.Validate)
	tt.GET("/:id/grid", h.Grid)
	tt.GET("/:id/conflicts", h.Conflicts)
	tt.GET("/:id/loads", h.Loads)
	tt.GET("/:id/sections/:sectionId/display", h.Display)
	tt.GET("/:id/sections/:sectionId/export", h.Export)
	tt.POST("/:id/moves", w(h.Move)...)
	tt.POST("/:id/publish", w(h.Publish)...)
	tt.DELETE("/:id", w(h.Delete)...)
}

// Generate godoc
// @Summary Generate a timetable proposal for stored classes
// @Description Runs the lab-first generator over the selected classes (all when classIds is empty). The proposal is kept in memory until saved or expired.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, gin.H{"mode": "preview"})
}

// GenerateInline godoc
// @Summary Generate timetables from an inline definition
// @Description Stateless: teachers, subjects and sections come from the payload and nothing is stored.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateFromDefinitionRequest true "Inline definition"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetables/generate/inline [post]
func (h *TimetableHandler) GenerateInline(c *gin.Context) {
	var req dto.GenerateFromDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid definition payload"))
		return
	}
	result, err := h.service.GenerateFromDefinition(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Enqueue godoc
// @Summary Queue a background generation
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation payload"
// @Success 202 {object} response.Envelope
// @Router /timetables/jobs [post]
func (h *TimetableHandler) Enqueue(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	job, err := h.service.Enqueue(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, fmt.Sprintf("%s/%s", c.FullPath(), job.JobID), job)
}

// JobStatus godoc
// @Summary Get a background generation
// @Tags Timetables
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/jobs/{id} [get]
func (h *TimetableHandler) JobStatus(c *gin.Context) {
	job, err := h.service.JobStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Save godoc
// @Summary Save a proposal as a new draft version
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.SaveTimetableRequest true "Save payload"
// @Success 201 {object} response.Envelope
// @Router /timetables/save [post]
func (h *TimetableHandler) Save(c *gin.Context) {
	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	saved, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, saved)
}

// Validate godoc
// @Summary Check grids for teacher conflicts and integrity issues
// @Description Accepts section snapshots as returned by generate and reports conflicts without storing anything.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.ValidateGridRequest true "Section grids"
// @Success 200 {object} response.Envelope
// @Router /timetables/validate [post]
func (h *TimetableHandler) Validate(c *gin.Context) {
	var req dto.ValidateGridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grid payload"))
		return
	}
	result, err := h.service.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List stored timetables
// @Tags Timetables
// @Produce json
// @Param termId query string false "Term ID"
// @Param status query string false "DRAFT, PUBLISHED or ARCHIVED"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Grid godoc
// @Summary Get a stored timetable with every class grid
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/grid [get]
func (h *TimetableHandler) Grid(c *gin.Context) {
	grid, err := h.service.Grid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Conflicts godoc
// @Summary Report teacher conflicts of a stored timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/conflicts [get]
func (h *TimetableHandler) Conflicts(c *gin.Context) {
	report, err := h.service.Conflicts(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Loads godoc
// @Summary Per-teacher load of a stored timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/loads [get]
func (h *TimetableHandler) Loads(c *gin.Context) {
	loads, err := h.service.TeacherLoads(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, loads, nil)
}

// Display godoc
// @Summary Presentation grid of one class with lunch and merged lab blocks
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Param sectionId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/sections/{sectionId}/display [get]
func (h *TimetableHandler) Display(c *gin.Context) {
	grid, hit, err := h.service.Display(c.Request.Context(), c.Param("id"), c.Param("sectionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, grid, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download one class grid as CSV or PDF
// @Tags Timetables
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Timetable ID"
// @Param sectionId path string true "Class ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /timetables/{id}/sections/{sectionId}/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), c.Param("id"), c.Param("sectionId"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Move godoc
// @Summary Move or swap one cell of a draft timetable
// @Description Returns the conflict report after the edit. Conflicts do not block the edit.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.MoveRequest true "Move payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/moves [post]
func (h *TimetableHandler) Move(c *gin.Context) {
	var req dto.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid move payload"))
		return
	}
	report, err := h.service.Move(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Publish godoc
// @Summary Publish a conflict-free draft
// @Description Archives the previously published version of the same term.
// @Tags Timetables
// @Param id path string true "Timetable ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /timetables/{id}/publish [post]
func (h *TimetableHandler) Publish(c *gin.Context) {
	if err := h.service.Publish(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete a draft timetable
// @Tags Timetables
// @Param id path string true "Timetable ID"
// @Success 204
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
