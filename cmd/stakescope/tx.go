package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stakeScope/internal/workflow"
)

func newStakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stake <pool-id> <amount>",
		Short: "Stake tokens into a pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			app, ctx, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			return finishWorkflow(app.engine.Stake(ctx, poolID, args[1]))
		},
	}
}

func newUnstakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unstake <pool-id> <amount>",
		Short: "Withdraw staked tokens from a pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			app, ctx, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			return finishWorkflow(app.engine.Unstake(ctx, poolID, args[1]))
		},
	}
}

func newClaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim <pool-id>",
		Short: "Claim accrued dividends from a pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			app, ctx, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			return finishWorkflow(app.engine.Claim(ctx, poolID))
		},
	}
}

func newExchangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exchange <amount>",
		Short: "Exchange primary tokens for secondary tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			return finishWorkflow(app.engine.Exchange(ctx, args[0]))
		},
	}
}

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap <amount>",
		Short: "Swap against the pair: buy with native, or sell tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buy, _ := cmd.Flags().GetBool("buy")
			app, ctx, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			return finishWorkflow(app.engine.Swap(ctx, args[0], buy))
		},
	}
	cmd.Flags().Bool("buy", true, "spend native to buy tokens, false to sell")
	return cmd
}

// finishWorkflow prints the terminal result and maps failure onto the
// process exit code.
func finishWorkflow(res workflow.Result) error {
	if err := printJSON(res); err != nil {
		return err
	}
	if !res.Status {
		return fmt.Errorf("workflow failed: %s", res.Message)
	}
	return nil
}

func parsePoolID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("pool id: %q is not a number", s)
	}
	return id, nil
}
