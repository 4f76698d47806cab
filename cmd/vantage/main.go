// Command vantage is the CLI client for the Vantage cloud control plane.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vantagedata/vantage-cli/internal/cli"
	"github.com/vantagedata/vantage-cli/internal/commands"
	"github.com/vantagedata/vantage-cli/pkg/api"
	"github.com/vantagedata/vantage-cli/pkg/config"
)

func main() {
	store := config.NewStore("")
	deps := commands.NewDeps(store)
	root := cli.Build(commands.NewRoot(deps), api.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, commands.ErrReported) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		var usage *cli.UsageError
		if errors.As(err, &usage) {
			fmt.Fprint(os.Stderr, usage.Usage)
		}
	}
	os.Exit(cli.ExitCode(err))
}
