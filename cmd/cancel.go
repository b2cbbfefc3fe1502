package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/kalshi-arb/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var cancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel a resting order",
	Long: `Requests cancellation of a resting order by id. Cancellation is
best-effort: the order may fill before the exchange processes the cancel,
in which case the position shows up on the next reconciliation.`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(cancelCmd)
}

func runCancel(cmd *cobra.Command, args []string) error {
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

	orderID := args[0]

	err = client.CancelOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}

	fmt.Printf("Cancel requested for order %s.\n", orderID)
	return nil
}
