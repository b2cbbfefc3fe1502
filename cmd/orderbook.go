package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/kalshi-arb/internal/detector"
	"github.com/mselser95/kalshi-arb/internal/kalshi"
	"github.com/mselser95/kalshi-arb/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var orderbookCmd = &cobra.Command{
	Use:   "orderbook <market-ticker>",
	Short: "Fetch a market's order book and print the derived quote",
	Long: `Fetches one market's order book and prints the derived bracket
quote: the implied YES ask (100 minus the best NO bid), the YES bid when
one exists, and the depth resting behind each.`,
	Args: cobra.ExactArgs(1),
	RunE: runOrderbook,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(orderbookCmd)
}

func runOrderbook(cmd *cobra.Command, args []string) error {
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

	client, err := newClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ticker := args[0]

	book, err := client.GetOrderbook(ctx, ticker)
	if err != nil {
		return fmt.Errorf("fetch orderbook %s: %w", ticker, err)
	}

	d := detector.New(detector.Config{
		MinNetProfitCents: cfg.Risk.MinNetProfitCents,
		MinROIPct:         cfg.Risk.MinROIPct,
		PositionSize:      cfg.Risk.PositionSize,
		Logger:            logger,
	})

	quote, ok := d.QuoteFromOrderbook(kalshi.Market{Ticker: ticker}, *book)
	if !ok {
		fmt.Printf("Market %s has an empty NO side; no YES ask can be derived.\n", ticker)
		return nil
	}

	fmt.Printf("Market:   %s\n", ticker)
	fmt.Printf("YES ask:  %dc (depth %d)\n", quote.YesAsk, quote.DepthAtNo)
	if quote.YesBid > 0 {
		fmt.Printf("YES bid:  %dc (depth %d)\n", quote.YesBid, quote.DepthAtYes)
	} else {
		fmt.Println("YES bid:  none")
	}

	return nil
}
