package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"quizdesk/internal/transport/terminal"
)

// NewPlayCmd runs the interactive terminal front end.
func NewPlayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *configPath)
		},
	}
}

func runPlay(ctx context.Context, configPath string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := openRuntime(ctx, configPath)
	if err != nil {
		return err
	}
	defer rt.close()

	err = terminal.New(rt.services, os.Stdin, os.Stdout, rt.log).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
