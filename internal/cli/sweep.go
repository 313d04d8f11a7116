package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/sweep"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep-subscriptions",
	Short: "Charge every subscription whose billing interval has elapsed",
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	var self host.Address
	rt, err := bootstrap(context.Background(), cfg, self)
	if err != nil {
		return err
	}
	defer rt.Close()

	now := rt.host.Clock().Now()
	results, err := sweep.Run(context.Background(), rt.contract, now, cfg.Sweep.Concurrency)
	if err != nil {
		return fmt.Errorf("sweeping subscriptions: %w", err)
	}

	var charged, failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Printf("subscription %d: charge failed: %v\n", r.SubscriptionID, r.Err)
		} else {
			charged++
		}
	}
	fmt.Printf("swept %d due subscriptions: %d charged, %d failed\n", len(results), charged, failed)
	return nil
}
