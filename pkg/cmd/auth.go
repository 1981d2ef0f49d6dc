package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/internal/service"
)

var (
	tokenUser string
	tokenTTL  time.Duration

	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Authentication related commands",
	}

	authTokenCmd = &cobra.Command{
		Use:   "token",
		Short: "issue a bearer token for a user (jwt mode)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(); err != nil {
				return err
			}

			cfg := configs.GetConfig().Auth

			ttl := tokenTTL
			if ttl <= 0 {
				ttl = cfg.TokenTTL
			}

			token, err := service.IssueToken(cfg, tokenUser, ttl, time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)

			return nil
		},
	}
)

// registerAuthCommands 注册认证相关命令.
func registerAuthCommands() {
	authTokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "user id placed in the sub claim")
	authTokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default: auth.token_ttl)")
	_ = authTokenCmd.MarkFlagRequired("user")

	authCmd.AddCommand(authTokenCmd)
	rootCmd.AddCommand(authCmd)
}
