package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/proajob/proajob/internal/config"
	"github.com/proajob/proajob/internal/db"
	"github.com/proajob/proajob/internal/observability"
	"github.com/proajob/proajob/internal/seed"
)

var seedFile string

var _ seed.Store = (*db.DB)(nil)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load catalogs and demo accounts from a YAML file",
	Long:  "Validates a seed file against the seed schema and upserts its areas, languages, criteria, degree titles and users.",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Path to the seed YAML file (required)")
	if err := seedCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	f, err := seed.Load(seedFile)
	if err != nil {
		return err
	}

	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}
	log, err := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	database.WithLogger(log)
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}

	var hasher seed.Hasher
	if len(f.Usuarios) > 0 {
		passwords, err := config.NewPasswordConfig()
		if err != nil {
			return fmt.Errorf("failed to create password config: %w", err)
		}
		hasher = passwords
	}

	res, err := seed.Apply(ctx, database, f, hasher, log)
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintCounts("SEED "+seedFile, map[string]int{
		"areas":     res.Areas,
		"idiomas":   res.Idiomas,
		"criterios": res.Criterios,
		"titulos":   res.Titulos,
		"usuarios":  res.Usuarios,
	})
	return nil
}
