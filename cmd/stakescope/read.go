package main

import (
	"github.com/spf13/cobra"

	"stakeScope/internal/model"
)

func newPoolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pools",
		Short: "List staking pools",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("refresh")
			app, ctx, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			return printJSON(app.pools.All(ctx, force))
		},
	}
	cmd.Flags().Bool("refresh", false, "bypass the cache")
	return cmd
}

func newStakesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stakes",
		Short: "List the wallet's active stakes",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("refresh")
			app, ctx, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			owner, err := app.owner(cmd)
			if err != nil {
				return err
			}
			return printJSON(app.stakes.UserStakes(ctx, owner, force))
		},
	}
	cmd.Flags().String("address", "", "wallet address, defaults to the signing key")
	cmd.Flags().Bool("refresh", false, "bypass the cache")
	return cmd
}

func newBalancesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show the wallet's token balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("refresh")
			app, ctx, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			owner, err := app.owner(cmd)
			if err != nil {
				return err
			}
			return printJSON(app.balances.Balances(ctx, owner, force))
		},
	}
	cmd.Flags().String("address", "", "wallet address, defaults to the signing key")
	cmd.Flags().Bool("refresh", false, "bypass the cache")
	return cmd
}

func newRewardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewards",
		Short: "Show claimable rewards per active stake",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("refresh")
			app, ctx, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			owner, err := app.owner(cmd)
			if err != nil {
				return err
			}
			stakes := app.stakes.UserStakes(ctx, owner, force)
			type stakeReward struct {
				StakeID string `json:"stakeId"`
				PoolID  uint64 `json:"poolId"`
				Reward  string `json:"reward"`
			}
			out := make([]stakeReward, 0, len(stakes))
			for _, s := range stakes {
				out = append(out, stakeReward{StakeID: s.StakeID, PoolID: s.PoolID, Reward: s.Reward})
			}
			return printJSON(out)
		},
	}
	cmd.Flags().String("address", "", "wallet address, defaults to the signing key")
	cmd.Flags().Bool("refresh", false, "bypass the cache")
	return cmd
}

func newDividendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dividends",
		Short: "Show dividend pools held by the wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("refresh")
			app, ctx, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			owner, err := app.owner(cmd)
			if err != nil {
				return err
			}
			view := app.pools.DividendView(ctx, owner, force)
			if view == nil {
				view = []model.DividendPool{}
			}
			return printJSON(view)
		},
	}
	cmd.Flags().String("address", "", "wallet address, defaults to the signing key")
	cmd.Flags().Bool("refresh", false, "bypass the cache")
	return cmd
}

func newRatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Show swap pair buy and sell rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("refresh")
			app, ctx, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			if app.quoter == nil {
				return errMissingPair
			}
			return printJSON(app.quoter.Rates(ctx, force))
		},
	}
	cmd.Flags().Bool("refresh", false, "bypass the cache")
	return cmd
}

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote <amount>",
		Short: "Quote a swap output for an input amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buy, _ := cmd.Flags().GetBool("buy")
			app, ctx, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			if app.quoter == nil {
				return errMissingPair
			}
			out := app.quoter.Quote(ctx, args[0], buy)
			return printJSON(map[string]string{"amountIn": args[0], "amountOut": out})
		},
	}
	cmd.Flags().Bool("buy", true, "quote the buy side, false for sell")
	return cmd
}
