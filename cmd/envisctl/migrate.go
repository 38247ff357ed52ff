package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/envis/envis/internal/config"
	"github.com/envis/envis/internal/repository"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(migrateUpCmd(), migrateDownCmd(), migrateVersionCmd())
	return cmd
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := repository.Migrate(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("%s", config.SanitizeError(err, cfg.DatabaseURL))
			}
			return printVersion(cmd, cfg.DatabaseURL)
		},
	}
}

func migrateDownCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Long: `Roll back the given number of migrations.

Without --steps every migration is rolled back, dropping all tables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := repository.MigrateDown(cfg.DatabaseURL, steps); err != nil {
				return fmt.Errorf("%s", config.SanitizeError(err, cfg.DatabaseURL))
			}
			return printVersion(cmd, cfg.DatabaseURL)
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back (0 rolls back everything)")
	return cmd
}

func migrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return printVersion(cmd, cfg.DatabaseURL)
		},
	}
}

func printVersion(cmd *cobra.Command, databaseURL string) error {
	version, dirty, err := repository.MigrationVersion(databaseURL)
	if err != nil {
		return fmt.Errorf("%s", config.SanitizeError(err, databaseURL))
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, state)
	return nil
}
