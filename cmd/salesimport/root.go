package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Yaro-bit/SimpleSalesman/internal/config"
	"github.com/Yaro-bit/SimpleSalesman/internal/logger"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "salesimport",
		Short:         "Project spreadsheet import tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (defaults to $CONFIG_PATH or config.yaml)")

	load := func() (*config.Config, error) {
		var (
			cfg *config.Config
			err error
		)
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return nil, err
		}
		logger.Init(cfg.Logging.Level, cfg.Logging.Format)
		return cfg, nil
	}

	cmd.AddCommand(newImportCmd(load))
	cmd.AddCommand(newMigrateCmd(load))
	return cmd
}

type configLoader func() (*config.Config, error)

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
