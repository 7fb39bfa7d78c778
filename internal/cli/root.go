package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
)

// App holds what the commands share.
type App struct {
	Logger    *zap.Logger
	Exporter  *service.ExportService
	Validator *validator.Validate
}

// NewRootCmd creates the top-level "timetablectl" command.
func NewRootCmd(app *App) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "timetablectl",
		Short:         "Generate and check weekly school timetables offline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Logger == nil {
				l, err := logger.NewCLI(logLevel)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
				app.Logger = l
			}
			if app.Exporter == nil {
				app.Exporter = service.NewExportService(nil, nil, app.Logger)
			}
			if app.Validator == nil {
				app.Validator = validator.New()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level written to stderr (debug|info|warn|error)")

	root.AddCommand(
		newGenerateCmd(app),
		newValidateCmd(app),
		newTokenCmd(),
	)
	return root
}

func readJSON(path string, dest interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
