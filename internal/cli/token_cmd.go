package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for automation, signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := models.UserRole(strings.ToUpper(role))
			if !r.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if ttl <= 0 {
				ttl = cfg.JWT.Expiration
			}
			token, expiresAt, err := service.NewTokenService(cfg.JWT.Secret, ttl).Issue(userID, email, r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID placed in the token")
	cmd.Flags().StringVar(&email, "email", "", "Email placed in the token")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "Role (SUPERADMIN|ADMIN|TEACHER|STUDENT)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime; defaults to JWT_EXPIRATION")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
