package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/feyabloom/studio/pkg/internal/storage/mq"
	"github.com/feyabloom/studio/pkg/queue"
)

var (
	mqCmd = &cobra.Command{
		Use:     "mq",
		Short:   "Message queue related commands",
		Aliases: []string{"messagequeue"},
	}

	mqListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list all registered mq types",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered mq types:")

			for _, t := range mq.RegisteredTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(t))
			}
		},
	}

	mqTopicsCmd = &cobra.Command{
		Use:   "topics",
		Short: "list domain event topics",
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range queue.AllTopics() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
		},
	}
)

// registerMQCommands 注册 MQ 相关命令.
func registerMQCommands() {
	rootCmd.AddCommand(mqCmd)
	mqCmd.AddCommand(mqListCmd, mqTopicsCmd)
}
