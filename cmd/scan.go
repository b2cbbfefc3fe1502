package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/kalshi-arb/internal/app"
	"github.com/mselser95/kalshi-arb/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a single dry-run scan cycle and exit",
	Long: `Sweeps the series catalog exactly once in dry-run mode. Detected
opportunities are logged to the data sinks but never executed, regardless
of the DRY_RUN environment setting.`,
	Args: cobra.NoArgs,
	RunE: runScanOnce,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScanOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// One-shot sweeps never trade.
	cfg.DryRun = true

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	scanErr := application.ScanOnce(ctx)

	err = application.Shutdown()
	if err != nil {
		logger.Warn("shutdown-error", zap.Error(err))
	}

	if scanErr != nil {
		return fmt.Errorf("scan: %w", scanErr)
	}

	return nil
}
