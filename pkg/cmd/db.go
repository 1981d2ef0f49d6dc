package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/feyabloom/studio/pkg/internal/model"
	"github.com/feyabloom/studio/pkg/internal/service"
	"github.com/feyabloom/studio/pkg/internal/storage"
	"github.com/feyabloom/studio/pkg/internal/storage/db"
)

var (
	grantRole   string
	revokeGrant bool

	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "Database related commands",
	}

	dbListCmd = &cobra.Command{
		Use:   "ls",
		Short: "list all registered database types",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered database types:")

			for _, dbType := range db.GetRegisteredDBTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), " - "+string(dbType))
			}
		},
	}

	dbMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "create or update tables (projects, user_roles, move_intents)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, mgr *storage.Manager) error {
				if err := mgr.DB.Migrate(ctx, model.All()...); err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), "migration complete")

				return nil
			})
		},
	}

	dbGrantAdminCmd = &cobra.Command{
		Use:   "grant-admin <user-id>",
		Short: "grant (or with --revoke, revoke) a role to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, mgr *storage.Manager) error {
				svc := service.NewAuthService(ctx)

				if revokeGrant {
					if err := svc.Revoke(ctx, args[0], grantRole); err != nil {
						return err
					}

					fmt.Fprintf(cmd.OutOrStdout(), "revoked %s from %s\n", roleName(), args[0])

					return nil
				}

				if err := svc.Grant(ctx, args[0], grantRole); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "granted %s to %s\n", roleName(), args[0])

				return nil
			})
		},
	}

	dbRolesCmd = &cobra.Command{
		Use:   "roles",
		Short: "list role rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, mgr *storage.Manager) error {
				roles, err := service.NewAuthService(ctx).Roles(ctx)
				if err != nil {
					return err
				}

				for _, r := range roles {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.UserID, r.Role)
				}

				return nil
			})
		},
	}
)

func roleName() string {
	if grantRole == "" {
		return model.RoleAdmin
	}

	return grantRole
}

// registerDBCommands 注册数据库相关命令.
func registerDBCommands() {
	rootCmd.AddCommand(dbCmd)

	dbGrantAdminCmd.Flags().StringVar(&grantRole, "role", "", "role name (default: auth.admin_role)")
	dbGrantAdminCmd.Flags().BoolVar(&revokeGrant, "revoke", false, "revoke instead of grant")

	dbCmd.AddCommand(dbListCmd, dbMigrateCmd, dbGrantAdminCmd, dbRolesCmd)
}
