package cmd

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/feyabloom/studio/pkg/configs"
)

var (
	showSecrets bool

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configs.InitConfig(configPath)
		},
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the config file in use",
		Run: func(cmd *cobra.Command, args []string) {
			file := configs.GetViper().ConfigFileUsed()
			if file == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no config file found, using defaults and STUDIO_* environment variables")
				return
			}

			fmt.Fprintln(cmd.OutOrStdout(), file)
		},
	}

	configShowCmd = &cobra.Command{
		Use:     "show",
		Short:   "print the effective config as JSON (secrets masked unless --show-secrets)",
		Aliases: []string{"debug"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *configs.GetConfig()
			if !showSecrets {
				cfg = cfg.Redacted()
			}

			if debug {
				configs.GetViper().Debug()
			}

			b, err := sonic.ConfigStd.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}

	// InitConfig 已经校验过，能走到这里说明配置有效
	configValidateCmd = &cobra.Command{
		Use:   "validate",
		Short: "load and validate the config, exit non-zero on error",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := configs.GetConfig()
			fmt.Fprintf(cmd.OutOrStdout(), "config ok: storage=%s db=%s kv=%s mq=%s mail=%s\n",
				cfg.Storage.Driver, cfg.DB.Type, cfg.KV.Type, cfg.MQ.Type, cfg.Mail.Provider)
		},
	}
)

// registerConfigsCommands 注册配置相关命令.
func registerConfigsCommands() {
	configShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print passwords and keys in clear text")

	configCmd.AddCommand(configPathCmd, configShowCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
