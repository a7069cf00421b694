package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quizdesk/internal/transport/terminal"
)

// NewScoresCmd prints the high-score table.
func NewScoresCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scores",
		Short: "Print the high-score table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, *configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			entries, err := rt.services.Ledger.List(ctx)
			if err != nil {
				return err
			}
			terminal.NewDisplay(os.Stdout).RenderScores(entries)
			return nil
		},
	}
}

// NewSeedCmd creates the stores, the seeded accounts and the default bank, then exits.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Initialise stores with the default accounts and questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, *configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			categories, err := rt.services.Bank.ListCategories(ctx)
			if err != nil {
				return err
			}
			rt.log.Info("stores ready", zap.Strings("categories", categories))
			return nil
		},
	}
}
