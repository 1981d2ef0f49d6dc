// Package cmd contains the command line applications for the project.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/feyabloom/studio/pkg/app"
	"github.com/feyabloom/studio/pkg/configs"
	ctxPkg "github.com/feyabloom/studio/pkg/context"
	"github.com/feyabloom/studio/pkg/internal/storage"
	"github.com/feyabloom/studio/pkg/log"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:     "studio",
		Short:   "Feya Bloom Studio backend: media library, project catalog and contact relay",
		Version: configs.AppVersion,
		RunE:    runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP server",
		RunE:  runServe,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose output")

	rootCmd.AddCommand(serveCmd)

	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
	registerStorageCommands()
	registerAuthCommands()
	registerMediaCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := app.NewApp(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.Run(ctx)
}

// loadConfig 初始化配置与日志，供不需要存储的子命令使用.
func loadConfig() error {
	if err := configs.InitConfig(configPath); err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	log.Init()

	return nil
}

// withManager 初始化存储并把管理器放入 context，fn 返回后关闭存储.
func withManager(cmd *cobra.Command, fn func(ctx context.Context, mgr *storage.Manager) error) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	mgr, err := storage.Init(ctx, configs.GetConfig())
	if err != nil {
		return err
	}
	defer mgr.Close()

	return fn(ctxPkg.WithStorageManager(ctx, mgr), mgr)
}
