package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mselser95/kalshi-arb/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "List the series catalog",
	Long:  `Fetches and displays the full paged series catalog from the Kalshi trade API.`,
	Args:  cobra.NoArgs,
	RunE:  runListSeries,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(seriesCmd)
}

func runListSeries(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	catalog, err := client.ListSeries(ctx)
	if err != nil {
		return fmt.Errorf("fetch series: %w", err)
	}

	if len(catalog) == 0 {
		fmt.Println("No series found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TICKER\tTITLE\n")
	fmt.Fprintf(w, "------\t-----\n")
	for _, s := range catalog {
		fmt.Fprintf(w, "%s\t%s\n", s.Ticker, s.Title)
	}
	err = w.Flush()
	if err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	fmt.Printf("\n%d series.\n", len(catalog))
	return nil
}
