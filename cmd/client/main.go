// Command client is a terminal UI for the task API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/adanyl0v/todone/internal/client"
	"github.com/adanyl0v/todone/internal/ui"
)

func main() {
	err := run()
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := client.LoadConfig(flag.NewFlagSet(os.Args[0], flag.ContinueOnError), os.Args[1:])
	if err != nil {
		return err
	}

	filter, err := client.ParseFilter(cfg.Filter)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := client.NewStore(client.NewAPI(cfg.ServerURL, cfg.Timeout))
	return ui.Run(ctx, store, filter)
}
