package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
)

// ErrConflictsFound makes validate exit non-zero when grids double-book a teacher.
var ErrConflictsFound = errors.New("teacher conflicts found")

func newValidateCmd(app *App) *cobra.Command {
	var (
		input  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check generated or hand-edited grids for teacher conflicts",
		Long: `Read section grids as written by "generate --format json" and report teacher
double-bookings, suggested moves and integrity issues. Exits non-zero when conflicts remain.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dto.ValidateGridRequest
			if err := readJSON(input, &req); err != nil {
				return err
			}
			if err := app.Validator.Struct(req); err != nil {
				return fmt.Errorf("invalid grid file: %w", err)
			}
			sections, _, err := timetable.RestoreSections(req.Sections)
			if err != nil {
				return err
			}
			report := service.BuildConflictReport(sections)

			if asJSON {
				if err := writeJSON(cmd, dto.ValidateGridResponse{ConflictReportResponse: report, Loads: timetable.Loads(sections)}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, report.Report)
				for _, s := range report.Suggestions {
					fmt.Fprintf(out, "  suggestion: %s\n", s.Message)
				}
				for _, issue := range report.Integrity {
					fmt.Fprintf(out, "  integrity: %s has %d of %d periods of %s\n", issue.Section, issue.Actual, issue.Expected, issue.Subject)
				}
			}

			if len(report.Conflicts) > 0 {
				return fmt.Errorf("%w: %d", ErrConflictsFound, len(report.Conflicts))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Grid file (JSON with a sections array)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
