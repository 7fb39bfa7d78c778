package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	"github.com/noah-isme/sma-timetable-api/pkg/storage"
)

type generateOutput struct {
	Seed     int64                       `json:"seed"`
	Attempts int                         `json:"attempts"`
	Sections []timetable.SectionSnapshot `json:"sections"`
	Loads    []timetable.TeacherLoad     `json:"loads"`
	Reports  []timetable.AttemptReport   `json:"reports"`
}

func newGenerateCmd(app *App) *cobra.Command {
	var (
		input     string
		seed      int64
		attempts  int
		tolerance float64
		format    string
		outDir    string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate timetables from a JSON definition",
		Long: `Generate one timetable per section from a definition file holding teachers,
subjects and sections with their subject to teacher bindings.

Examples:
  timetablectl generate --input school.json
  timetablectl generate --input school.json --seed 42 --format json
  timetablectl generate --input school.json --format pdf --out-dir ./out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			switch format {
			case "text", "json", "csv", "pdf":
			default:
				return fmt.Errorf("unknown format %q (use text, json, csv or pdf)", format)
			}
			if format == "pdf" && outDir == "" {
				return fmt.Errorf("--out-dir is required for pdf output")
			}

			var def dto.TimetableDefinition
			if err := readJSON(input, &def); err != nil {
				return err
			}
			if err := app.Validator.Struct(def); err != nil {
				return fmt.Errorf("invalid definition: %w", err)
			}
			sections, err := service.SectionsFromDefinition(def)
			if err != nil {
				return err
			}

			opts := timetable.DefaultOptions()
			opts.Seed = seed
			if attempts > 0 {
				opts.MaxAttempts = attempts
			}
			if tolerance > 0 {
				opts.LabLoadTolerance = tolerance
			}
			result, err := timetable.NewGenerator(opts, app.Logger, nil).Generate(cmd.Context(), sections)
			if err != nil {
				return err
			}

			if outDir != "" {
				return writeFiles(cmd, app, result.Sections, format, outDir)
			}
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return writeJSON(cmd, generateOutput{
					Seed:     result.Seed,
					Attempts: result.Attempts,
					Sections: timetable.Snapshots(result.Sections),
					Loads:    timetable.Loads(result.Sections),
					Reports:  result.Reports,
				})
			case "csv":
				for _, section := range result.Sections {
					file, err := app.Exporter.Render(timetable.BuildDisplay(section), service.ExportFormatCSV)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "# %s\n%s\n", section.Name, file.Data)
				}
				return nil
			default:
				fmt.Fprintf(out, "Generated %d sections in %d attempts (seed %d)\n\n", len(result.Sections), result.Attempts, result.Seed)
				for _, section := range result.Sections {
					fmt.Fprintln(out, timetable.FormatText(section))
				}
				fmt.Fprintln(out, "Teacher loads:")
				for _, load := range timetable.Loads(result.Sections) {
					fmt.Fprintf(out, "  %s\n", load)
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Definition file (JSON)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Master seed; 0 picks one from the clock")
	cmd.Flags().IntVar(&attempts, "attempts", timetable.DefaultMaxAttempts, "Maximum generation attempts")
	cmd.Flags().Float64Var(&tolerance, "lab-tolerance", timetable.DefaultLabLoadTolerance, "Load multiplier accepted while placing labs")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text|json|csv|pdf)")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Write one file per section into this directory")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// writeFiles stores one rendered file per section. text falls back to csv.
func writeFiles(cmd *cobra.Command, app *App, sections []*timetable.Section, format, dir string) error {
	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		return err
	}
	for i, section := range sections {
		var data []byte
		var name string
		if format == "json" {
			name = fmt.Sprintf("timetable_%02d.json", i+1)
			if data, err = json.MarshalIndent(section.Snapshot(), "", "  "); err != nil {
				return err
			}
		} else {
			exportFormat := service.ExportFormatCSV
			if format == "pdf" {
				exportFormat = service.ExportFormatPDF
			}
			file, err := app.Exporter.Render(timetable.BuildDisplay(section), exportFormat)
			if err != nil {
				return err
			}
			name, data = file.Filename, file.Data
		}
		path, err := store.Save(name, data)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}
