package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Yaro-bit/SimpleSalesman/internal/db"
	"github.com/Yaro-bit/SimpleSalesman/internal/importer"
)

func newImportCmd(load configLoader) *cobra.Command {
	var (
		file      string
		mode      string
		batchSize int
		maxErrors int
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a project spreadsheet into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			opts := importer.NewOptions(cfg.Import)
			if cmd.Flags().Changed("mode") {
				switch m := importer.TransactionMode(strings.ToLower(mode)); m {
				case importer.ModeStrict, importer.ModeLenient:
					opts.Mode = m
				default:
					return fmt.Errorf("invalid --mode %q: want strict or lenient", mode)
				}
			}
			if batchSize > 0 {
				opts.BatchSize = batchSize
			}
			if maxErrors > 0 {
				opts.MaxErrors = maxErrors
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}

			conn, err := db.NewConnection(cfg)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer conn.Close()

			svc := importer.NewService(db.NewProjectStore(conn), nil, opts)
			result, importErr := svc.Import(cmd.Context(), data)
			if err := writeJSON(result); err != nil {
				return err
			}
			return importErr
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the .xlsx file (required)")
	cmd.Flags().StringVar(&mode, "mode", "", "Transaction mode: strict or lenient (defaults to config)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Records per persistence batch (defaults to config)")
	cmd.Flags().IntVar(&maxErrors, "max-errors", 0, "Row error ceiling before the import aborts (defaults to config)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
