package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"postboard/internal/config"
	"postboard/pkg/logger"
)

// globals holds state shared by all subcommands once the root pre-run finished.
type globals struct {
	configFile string
	envFiles   []string

	cfg *config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:          "postboard",
		Short:        "Blog API with composable list queries",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", []string{".env"}, "dotenv files to load (missing files are skipped)")

	rootCmd.AddCommand(
		newServeCmd(g),
		newMigrateCmd(g),
		newSeedCmd(g),
	)
	return rootCmd
}

func (g *globals) load() error {
	cfg, err := config.LoadFile(g.configFile, g.envFiles...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	g.cfg = cfg
	g.log = log
	return nil
}
