package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

const dayHeader = "Day"

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, doc export.Document) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders display grids into downloadable files.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers use the defaults.
func NewExportService(csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Render renders the grid as csv or pdf.
func (s *ExportService) Render(grid timetable.DisplayGrid, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	dataset := GridDataset(grid)

	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, export.Document{
			Title:     fmt.Sprintf("Timetable %s", grid.Section),
			Subtitle:  grid.Year,
			Landscape: true,
		})
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("timetable export failed", zap.String("section", grid.Section), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable export")
	}

	return &ExportFile{
		Filename:    s.buildFilename(grid.Section, format),
		ContentType: contentType,
		Data:        payload,
	}, nil
}

// GridDataset lays a display grid out as one row per day. Lab block starts span their covered
// columns; hidden continuation cells repeat the subject so csv rows stay self-describing.
func GridDataset(grid timetable.DisplayGrid) export.Dataset {
	headers := append([]string{dayHeader}, grid.PeriodLabels...)
	dataset := export.Dataset{Headers: headers, Rows: make([]map[string]string, 0, len(grid.Days))}
	for day, name := range grid.Days {
		row := map[string]string{dayHeader: name}
		for col, label := range grid.PeriodLabels {
			cell := grid.Schedule[day][col]
			if cell == nil {
				continue
			}
			row[label] = cellText(cell)
			if cell.Colspan > 1 {
				dataset.Merges = append(dataset.Merges, export.Merge{Row: day, Header: label, Span: cell.Colspan})
			}
		}
		dataset.Rows = append(dataset.Rows, row)
	}
	return dataset
}

func cellText(cell *timetable.DisplayCell) string {
	switch {
	case cell.IsLunch:
		return cell.Name
	case cell.Name == "":
		return ""
	case cell.Teacher == "":
		return cell.Name
	default:
		return fmt.Sprintf("%s (%s)", cell.Name, cell.Teacher)
	}
}

func (s *ExportService) buildFilename(section, format string) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("timetable_%s_%s.%s", sanitizeFilename(section), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
