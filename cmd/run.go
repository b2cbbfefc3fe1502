package cmd

import (
	"fmt"

	"github.com/mselser95/kalshi-arb/internal/app"
	"github.com/mselser95/kalshi-arb/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the arbitrage scanner",
	Long: `Starts the Kalshi bracket arbitrage scanner, which will:
1. Fetch the series catalog and walk every bracket event
2. Price LONG and SHORT Dutch books from the top of each bracket's book
3. Log every opportunity to the data sinks
4. Execute profitable ones within the risk limits (unless DRY_RUN=true)`,
	Args: cobra.NoArgs,
	RunE: runScanner,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
}

func runScanner(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	return application.Run()
}
