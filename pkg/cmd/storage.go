package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/feyabloom/studio/pkg/internal/storage/object"
)

var (
	storageCmd = &cobra.Command{
		Use:   "storage",
		Short: "Object storage related commands",
	}

	storageListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list all registered object storage drivers",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered storage drivers:")

			for _, d := range object.Drivers() {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(d))
			}
		},
	}
)

// registerStorageCommands 注册对象存储相关命令.
func registerStorageCommands() {
	rootCmd.AddCommand(storageCmd)
	storageCmd.AddCommand(storageListCmd)
}
