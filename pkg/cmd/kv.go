package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/feyabloom/studio/pkg/internal/service"
	"github.com/feyabloom/studio/pkg/internal/storage"
	"github.com/feyabloom/studio/pkg/internal/storage/kv"
)

var (
	kvCmd = &cobra.Command{
		Use:     "kv",
		Short:   "Key-value store (role and response cache) commands",
		Aliases: []string{"cache"},
	}

	kvTypesCmd = &cobra.Command{
		Use:     "types",
		Short:   "list the registered kv backends",
		Aliases: []string{"ls"},
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range kv.GetRegisteredKVTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), string(t))
			}
		},
	}

	kvKeysCmd = &cobra.Command{
		Use:   "keys [pattern]",
		Short: "list keys, pattern supports a trailing *",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := "*"
			if len(args) == 1 {
				pattern = args[0]
			}

			return withManager(cmd, func(ctx context.Context, mgr *storage.Manager) error {
				if mgr.KV == nil {
					return fmt.Errorf("kv store is not configured")
				}

				keys, err := mgr.KV.Keys(ctx, pattern)
				if err != nil {
					return err
				}

				sort.Strings(keys)

				for _, k := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}

				return nil
			})
		},
	}

	kvPurgeGalleryCmd = &cobra.Command{
		Use:   "purge-gallery",
		Short: "drop cached gallery responses so the next request reads the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, _ *storage.Manager) error {
				service.NewProjectService(ctx).InvalidateGallery(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), "gallery cache purged")

				return nil
			})
		},
	}
)

// registerKVCommands 注册 KV 相关命令.
func registerKVCommands() {
	kvCmd.AddCommand(kvTypesCmd, kvKeysCmd, kvPurgeGalleryCmd)
	rootCmd.AddCommand(kvCmd)
}
