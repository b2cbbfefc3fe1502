package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mselser95/kalshi-arb/internal/kalshi"
	"github.com/mselser95/kalshi-arb/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "kalshi-arb",
	Short: "Kalshi bracket arbitrage scanner",
	Long: `Kalshi bracket arbitrage scanner that sweeps mutually-exclusive
bracket events for Dutch books: buying YES across every bracket for less
than the guaranteed 100c payout, or selling YES across every bracket for
more than it.

The scanner polls the Kalshi trade API on a fixed interval, prices both
directions after fees, and either logs opportunities (dry run) or places
one limit order per bracket.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().String("config", "config.toml", "Path to the TOML config file")
}

// loadConfig loads .env (when present) and the TOML config named by the
// --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	// Missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("read config flag: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// newClient builds a signed exchange client from the config.
func newClient(cfg *config.Config, logger *zap.Logger) (*kalshi.Client, error) {
	signer, err := kalshi.NewSigner(cfg.Kalshi.RSAKeyPath, cfg.APIKeyID)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}

	return kalshi.NewClient(&kalshi.ClientConfig{
		BaseURL:   cfg.Kalshi.BaseURL,
		Signer:    signer,
		ReadDelay: cfg.Scanner.ScanDelay(),
		Logger:    logger,
	})
}
