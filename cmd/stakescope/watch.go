package main

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Periodically refresh pools, stakes, balances and rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			var owner common.Address
			if flag := cmd.Flags().Lookup("address"); flag != nil && flag.Value.String() != "" {
				owner, err = requireAddress("address", flag.Value.String())
				if err != nil {
					return err
				}
			} else {
				owner = app.client.From()
			}

			interval := app.cfg.WatchInterval
			if interval <= 0 {
				interval = 2 * time.Minute
			}

			app.logger.Info("watch started",
				zap.Duration("interval", interval),
				zap.String("owner", owner.Hex()),
			)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			app.refresh(ctx, owner)
			for {
				select {
				case <-ctx.Done():
					app.logger.Info("watch stopped")
					return nil
				case <-ticker.C:
					app.refresh(ctx, owner)
				}
			}
		},
	}
	cmd.Flags().String("address", "", "wallet address to track, defaults to the signing key")
	cmd.Flags().Duration("watch-interval", 2*time.Minute, "refresh interval")
	return cmd
}

// refresh forces every cache in one pass. Failures are already logged and
// absorbed by the services, so a bad tick never stops the loop.
func (a *app) refresh(ctx context.Context, owner common.Address) {
	start := time.Now()

	pools := a.pools.All(ctx, true)
	if owner != (common.Address{}) {
		a.stakes.UserStakes(ctx, owner, true)
		a.balances.Balances(ctx, owner, true)
		a.pools.DividendView(ctx, owner, true)
	}
	if a.quoter != nil {
		a.quoter.Rates(ctx, true)
	}

	a.logger.Info("refresh complete",
		zap.Int("pools", len(pools)),
		zap.Duration("elapsed", time.Since(start)),
	)
}
