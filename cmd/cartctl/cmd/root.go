// Package cmd содержит команды cartctl — утилиты оператора голосовой корзины
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/max-strong-1/-milestone-voice-agent/internal/config"
	"github.com/max-strong-1/-milestone-voice-agent/internal/lib/logger"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cartctl",
	Short: "Operator tools for the voice agent cart service",
	Long: `cartctl talks to the same store and brokers as the running service.

Examples:
  cartctl quote -f request.json
  cartctl invalidate --reason "spring price list"
  cartctl invalidate --sku OHMS-6`,
	SilenceUsage: true,
}

// Execute запускает CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CONFIG_PATH or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(invalidateCmd)
}

// loadConfig читает конфиг и собирает логгер; логи идут в stderr, чтобы не мешать выводу команды
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path := cfgFile
	if path == "" {
		path = config.Path()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}

	level := cfg.Logger.Level
	if verbose {
		level = "DEBUG"
	}
	return cfg, logger.NewWithWriter(cmd.ErrOrStderr(), level, cfg.Logger.Format), nil
}
