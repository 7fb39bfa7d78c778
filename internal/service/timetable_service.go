package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
)

const generateJobType = "timetable.generate"

type timetableRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error
	List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus, meta types.JSONText) error
	ArchivePublished(ctx context.Context, exec sqlx.ExtContext, termID, keepID string) error
}

type timetableSlotRepository interface {
	UpsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error
	ReplaceClass(ctx context.Context, exec sqlx.ExtContext, timetableID, classID string, slots []models.TimetableSlot) error
	ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableSlot, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type displayCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Invalidate(ctx context.Context, pattern string)
}

type gridExporter interface {
	Render(grid timetable.DisplayGrid, format string) (*ExportFile, error)
}

// TimetableRepositories groups the stores the timetable service reads and writes.
type TimetableRepositories struct {
	Timetables timetableRepository
	Slots      timetableSlotRepository
	Classes    classReader
	Bindings   classSubjectReader
	Subjects   subjectReader
	Teachers   teacherReader
}

// TimetableServiceConfig governs generation, proposals and background jobs.
type TimetableServiceConfig struct {
	Generator       timetable.Options
	ProposalTTL     time.Duration
	DisplayCacheTTL time.Duration
	Workers         int
	JobRetries      int
}

// TimetableService generates, stores, edits and renders weekly timetables.
type TimetableService struct {
	timetables timetableRepository
	slots      timetableSlotRepository
	loader     catalogLoader
	tx         txProvider
	cache      displayCache
	exporter   gridExporter
	observer   timetable.Observer
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        TimetableServiceConfig
	store      *proposalStore
	queue      *jobs.Queue
}

// NewTimetableService wires the timetable service. cache, exporter and observer may be nil.
func NewTimetableService(
	repos TimetableRepositories,
	tx txProvider,
	gridCache displayCache,
	exporter gridExporter,
	observer timetable.Observer,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if exporter == nil {
		exporter = NewExportService(nil, nil, logger)
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.DisplayCacheTTL <= 0 {
		cfg.DisplayCacheTTL = 10 * time.Minute
	}
	if cfg.Generator.MaxAttempts <= 0 {
		cfg.Generator = timetable.DefaultOptions()
	}
	svc := &TimetableService{
		timetables: repos.Timetables,
		slots:      repos.Slots,
		loader: catalogLoader{
			classes:  repos.Classes,
			bindings: repos.Bindings,
			subjects: repos.Subjects,
			teachers: repos.Teachers,
		},
		tx:        tx,
		cache:     gridCache,
		exporter:  exporter,
		observer:  observer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		store:     newProposalStore(cfg.ProposalTTL),
	}
	if cfg.Workers > 0 {
		svc.queue = jobs.NewQueue("timetable-generation", svc.runJob, jobs.QueueConfig{
			Workers:    cfg.Workers,
			MaxRetries: cfg.JobRetries,
			RecordTTL:  cfg.ProposalTTL,
			Logger:     logger,
		})
	}
	return svc
}

// Start launches the background generation workers.
func (s *TimetableService) Start(ctx context.Context) {
	if s.queue != nil {
		s.queue.Start(ctx)
	}
}

// Stop waits for the background workers to exit.
func (s *TimetableService) Stop() {
	if s.queue != nil {
		s.queue.Stop()
	}
}

// Generate builds a proposal from the stored classes and keeps it for Save.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}
	cat, err := s.loader.load(ctx, req.ClassIDs)
	if err != nil {
		return nil, err
	}

	opts := s.options(req.GenerationOptions)
	result, err := s.run(ctx, cat.sections, opts)
	if err != nil {
		return nil, err
	}

	proposal := timetableProposal{
		ID:          uuid.NewString(),
		TermID:      req.TermID,
		Result:      result,
		Catalog:     cat.rebind(result.Sections),
		Tolerance:   opts.LabLoadTolerance,
		RequestedAt: time.Now().UTC(),
	}
	s.store.Save(proposal)

	resp := buildGenerateResponse(result)
	resp.ProposalID = proposal.ID
	resp.TermID = req.TermID
	expiresAt := s.store.expiresAt(proposal)
	resp.ExpiresAt = &expiresAt
	return resp, nil
}

// GenerateFromDefinition generates from an inline definition. Nothing is stored.
func (s *TimetableService) GenerateFromDefinition(ctx context.Context, req dto.GenerateFromDefinitionRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable definition")
	}
	sections, err := SectionsFromDefinition(req.Definition)
	if err != nil {
		return nil, err
	}
	result, err := s.run(ctx, sections, s.options(req.GenerationOptions))
	if err != nil {
		return nil, err
	}
	return buildGenerateResponse(result), nil
}

// Enqueue schedules a generation on the background workers.
func (s *TimetableService) Enqueue(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.JobResponse, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "background generation is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}
	job := jobs.Job{ID: uuid.NewString(), Type: generateJobType, Payload: req}
	if err := s.queue.Enqueue(job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue timetable generation")
	}
	s.logger.Info("timetable generation enqueued", zap.String("job_id", job.ID), zap.String("term_id", req.TermID))
	return s.JobStatus(ctx, job.ID)
}

// JobStatus reports a background generation.
func (s *TimetableService) JobStatus(_ context.Context, id string) (*dto.JobResponse, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "background generation is disabled")
	}
	record, ok := s.queue.Lookup(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found or expired")
	}
	resp := &dto.JobResponse{
		JobID:      record.ID,
		Status:     string(record.Status),
		Attempt:    record.Attempt,
		Error:      record.Error,
		EnqueuedAt: record.Enqueued,
		UpdatedAt:  record.UpdatedAt,
	}
	if result, ok := record.Result.(*dto.GenerateTimetableResponse); ok {
		resp.Result = result
	}
	return resp, nil
}

func (s *TimetableService) runJob(ctx context.Context, job jobs.Job) (interface{}, error) {
	req, ok := job.Payload.(dto.GenerateTimetableRequest)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}
	return s.Generate(ctx, req)
}

// Save persists a proposal as a new draft version of its term.
func (s *TimetableService) Save(ctx context.Context, req dto.SaveTimetableRequest) (resp *dto.SaveTimetableResponse, err error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save timetable payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	metaBytes, marshalErr := json.Marshal(map[string]any{
		"sections":         len(proposal.Result.Sections),
		"reports":          proposal.Result.Reports,
		"labLoadTolerance": proposal.Tolerance,
		"generated":        proposal.RequestedAt,
		"algorithm":        "lab_first_v1",
	})
	if marshalErr != nil {
		return nil, appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable metadata")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	record := &models.Timetable{
		TermID:   proposal.TermID,
		Status:   models.TimetableStatusDraft,
		Seed:     proposal.Result.Seed,
		Attempts: proposal.Result.Attempts,
		Meta:     types.JSONText(metaBytes),
	}
	if err = s.timetables.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
		return nil, err
	}

	var slots []models.TimetableSlot
	for _, section := range proposal.Catalog.sections {
		slots = append(slots, proposal.Catalog.slotsFor(record.ID, section)...)
	}
	if err = s.slots.UpsertBatch(ctx, tx, slots); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable slots")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		return nil, err
	}

	s.store.Delete(req.ProposalID)
	s.logger.Info("timetable saved",
		zap.String("timetable_id", record.ID),
		zap.String("term_id", record.TermID),
		zap.Int("version", record.Version),
		zap.Int("slots", len(slots)),
	)
	return &dto.SaveTimetableResponse{TimetableID: record.ID, Version: record.Version}, nil
}

// List returns stored timetables with pagination.
func (s *TimetableService) List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable query")
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size < 1 {
		size = 20
	}
	list, total, err := s.timetables.List(ctx, models.TimetableFilter{
		TermID:   query.TermID,
		Status:   models.TimetableStatus(query.Status),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return list, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Grid returns a stored timetable with every class grid.
func (s *TimetableService) Grid(ctx context.Context, id string) (*dto.TimetableGridResponse, error) {
	record, cat, err := s.loadStored(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &dto.TimetableGridResponse{Timetable: *record, Sections: make([]dto.ClassGrid, 0, len(cat.sections))}
	for _, section := range cat.sections {
		resp.Sections = append(resp.Sections, dto.ClassGrid{ClassID: cat.classIDs[section.Name], SectionSnapshot: section.Snapshot()})
	}
	return resp, nil
}

// Delete removes a draft timetable.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	record, err := s.findTimetable(ctx, id)
	if err != nil {
		return err
	}
	if record.Status != models.TimetableStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft timetables can be deleted")
	}
	if err := s.timetables.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	s.invalidate(ctx, id)
	return nil
}

// Publish marks a conflict-free draft as the term's published timetable and archives the
// previously published version.
func (s *TimetableService) Publish(ctx context.Context, id string) (err error) {
	record, cat, err := s.loadStored(ctx, id)
	if err != nil {
		return err
	}
	switch record.Status {
	case models.TimetableStatusPublished:
		return appErrors.Clone(appErrors.ErrConflict, "timetable is already published")
	case models.TimetableStatusArchived:
		return appErrors.Clone(appErrors.ErrFinalized, "archived timetables cannot be published")
	}
	if conflicts := timetable.DetectConflicts(cat.sections); len(conflicts) > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("timetable has %d unresolved teacher conflicts", len(conflicts)))
	}
	for _, issue := range timetable.ValidateIntegrity(cat.sections) {
		if issue.IsLabLayout() {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%s in %s violates lab placement rules (%s)", issue.Subject, issue.Section, issue.Type))
		}
	}
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.timetables.UpdateStatus(ctx, tx, id, models.TimetableStatusPublished, nil); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable")
		return err
	}
	if err = s.timetables.ArchivePublished(ctx, tx, record.TermID, id); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive previous timetables")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit publish transaction")
		return err
	}

	s.invalidate(ctx, id)
	s.logger.Info("timetable published", zap.String("timetable_id", id), zap.String("term_id", record.TermID))
	return nil
}

// Conflicts reports teacher conflicts, resolutions and integrity issues of a stored timetable.
func (s *TimetableService) Conflicts(ctx context.Context, id string) (*dto.ConflictReportResponse, error) {
	_, cat, err := s.loadStored(ctx, id)
	if err != nil {
		return nil, err
	}
	report := BuildConflictReport(cat.sections)
	return &report, nil
}

// Move moves or swaps one cell of a draft timetable and returns the resulting conflict report.
func (s *TimetableService) Move(ctx context.Context, id string, req dto.MoveRequest) (report *dto.ConflictReportResponse, err error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}
	record, cat, err := s.loadStored(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != models.TimetableStatusDraft {
		return nil, appErrors.Clone(appErrors.ErrFinalized, "only draft timetables can be edited")
	}
	section, ok := cat.byClass[req.ClassID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class is not part of this timetable")
	}

	move := timetable.Move{
		Section: section.Name,
		From:    timetable.Slot{Day: req.From.Day, Period: req.From.Period},
		To:      timetable.Slot{Day: req.To.Day, Period: req.To.Period},
	}
	var editErr error
	if req.Mode == "swap" {
		editErr = timetable.SwapCells(cat.sections, move)
	} else {
		editErr = timetable.MoveCell(cat.sections, move)
	}
	if editErr != nil {
		return nil, mapEditError(editErr)
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.slots.ReplaceClass(ctx, tx, id, req.ClassID, cat.slotsFor(id, section)); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist moved cells")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit move transaction")
		return nil, err
	}

	s.invalidate(ctx, id)
	result := BuildConflictReport(cat.sections)
	s.logger.Info("timetable cell moved",
		zap.String("timetable_id", id),
		zap.String("class_id", req.ClassID),
		zap.String("mode", req.Mode),
		zap.Int("conflicts", len(result.Conflicts)),
	)
	return &result, nil
}

// Validate checks round-tripped grids without touching storage.
func (s *TimetableService) Validate(_ context.Context, req dto.ValidateGridRequest) (*dto.ValidateGridResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grid payload")
	}
	sections, _, err := timetable.RestoreSections(req.Sections)
	if err != nil {
		return nil, mapGenerationError(err)
	}
	return &dto.ValidateGridResponse{
		ConflictReportResponse: BuildConflictReport(sections),
		Loads:                  timetable.Loads(sections),
	}, nil
}

// Display returns the presentation grid of one class. The bool reports a cache hit.
func (s *TimetableService) Display(ctx context.Context, id, classID string) (*timetable.DisplayGrid, bool, error) {
	key := cache.Key(id, "display", classID)
	if s.cache != nil {
		var cached timetable.DisplayGrid
		if s.cache.Get(ctx, key, &cached) {
			return &cached, true, nil
		}
	}

	_, cat, err := s.loadStored(ctx, id)
	if err != nil {
		return nil, false, err
	}
	section, ok := cat.byClass[classID]
	if !ok {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "class is not part of this timetable")
	}
	grid := timetable.BuildDisplay(section)
	if s.cache != nil {
		s.cache.Set(ctx, key, grid, s.cfg.DisplayCacheTTL)
	}
	return &grid, false, nil
}

// Export renders one class grid as csv or pdf.
func (s *TimetableService) Export(ctx context.Context, id, classID, format string) (*ExportFile, error) {
	grid, _, err := s.Display(ctx, id, classID)
	if err != nil {
		return nil, err
	}
	return s.exporter.Render(*grid, format)
}

// TeacherLoads reports every teacher's occupied periods in a stored timetable.
func (s *TimetableService) TeacherLoads(ctx context.Context, id string) ([]dto.TeacherLoad, error) {
	_, cat, err := s.loadStored(ctx, id)
	if err != nil {
		return nil, err
	}
	loads := timetable.Loads(cat.sections)
	out := make([]dto.TeacherLoad, 0, len(loads))
	for _, l := range loads {
		out = append(out, dto.TeacherLoad{
			TeacherID:  cat.teacherIDs[l.Teacher],
			Teacher:    l.Teacher,
			Load:       l.Load,
			MaxLoad:    l.MaxLoad,
			Overloaded: l.Load > l.MaxLoad,
		})
	}
	return out, nil
}

func (s *TimetableService) options(override dto.GenerationOptions) timetable.Options {
	opts := s.cfg.Generator
	if override.Seed != 0 {
		opts.Seed = override.Seed
	}
	if override.MaxAttempts > 0 {
		opts.MaxAttempts = override.MaxAttempts
	}
	if override.LabLoadTolerance > 0 {
		opts.LabLoadTolerance = override.LabLoadTolerance
	}
	return opts
}

func (s *TimetableService) run(ctx context.Context, sections []*timetable.Section, opts timetable.Options) (*timetable.Result, error) {
	result, err := timetable.NewGenerator(opts, s.logger, s.observer).Generate(ctx, sections)
	if err != nil {
		return nil, mapGenerationError(err)
	}
	return result, nil
}

func (s *TimetableService) findTimetable(ctx context.Context, id string) (*models.Timetable, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}
	record, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return record, nil
}

// loadStored rebuilds the sections of a stored timetable from its slots and the current catalog.
func (s *TimetableService) loadStored(ctx context.Context, id string) (*models.Timetable, *catalog, error) {
	record, err := s.findTimetable(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	slots, err := s.slots.ListByTimetable(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slots")
	}
	classIDs := sortedClassIDs(slots)
	if len(classIDs) == 0 {
		return record, newCatalog(), nil
	}
	cat, err := s.loader.load(ctx, classIDs)
	if err != nil {
		return nil, nil, err
	}
	if err := cat.place(slots); err != nil {
		return nil, nil, err
	}
	return record, cat, nil
}

func (s *TimetableService) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, cache.Pattern(id))
	}
}

func buildGenerateResponse(result *timetable.Result) *dto.GenerateTimetableResponse {
	resp := &dto.GenerateTimetableResponse{
		Seed:     result.Seed,
		Attempts: result.Attempts,
		Sections: timetable.Snapshots(result.Sections),
		Displays: make([]timetable.DisplayGrid, 0, len(result.Sections)),
		Loads:    timetable.Loads(result.Sections),
		Reports:  result.Reports,
	}
	for _, section := range result.Sections {
		resp.Displays = append(resp.Displays, timetable.BuildDisplay(section))
	}
	return resp
}

func mapGenerationError(err error) error {
	var inputErr *timetable.InputError
	var exhausted *timetable.GenerationExhaustedError
	switch {
	case errors.As(err, &inputErr):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, inputErr.Error())
	case errors.As(err, &exhausted):
		return appErrors.Wrap(err, appErrors.ErrGenerationExhausted.Code, appErrors.ErrGenerationExhausted.Status, exhausted.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "timetable generation cancelled")
	default:
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "timetable generation failed")
	}
}

func mapEditError(err error) error {
	switch {
	case errors.Is(err, timetable.ErrSectionNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, err.Error())
	case errors.Is(err, timetable.ErrEmptySource), errors.Is(err, timetable.ErrDestinationTaken), errors.Is(err, timetable.ErrSlotOutOfRange):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to edit timetable")
	}
}
