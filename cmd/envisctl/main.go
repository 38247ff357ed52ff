// Command envisctl is the Envis operator tool: schema migrations, billing
// plan seeding, catalog mirror syncs and operator accounts.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/envis/envis/internal/config"
)

// Version is set at build time.
var Version = "dev"

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "envisctl",
		Short:         "Envis operator tool",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedProductsCmd())
	rootCmd.AddCommand(syncCatalogCmd())
	rootCmd.AddCommand(createUserCmd())
	rootCmd.AddCommand(verifyUserCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and installs the CLI logger.
func loadConfig() (*config.CLIConfig, error) {
	cfg, err := config.LoadCLI()
	if err != nil {
		return nil, err
	}
	cfg.NewLogger()
	return cfg, nil
}
