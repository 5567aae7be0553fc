package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"

	"github.com/macropower/patsub/internal/cli"
	"github.com/macropower/patsub/internal/telemetry"
	"github.com/macropower/patsub/pkg/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		slog.Error("setup telemetry", slog.Any("err", err))
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			err := shutdown(ctx)
			if err != nil {
				slog.Error("shutdown telemetry", slog.Any("err", err))
			}
		}()
	}

	err = fang.Execute(ctx, cli.NewRootCmd(),
		fang.WithVersion(version.String()),
		fang.WithErrorHandler(cli.ErrorHandler),
		fang.WithoutManpage(),
		fang.WithoutCompletions(),
	)
	if err != nil {
		return 1
	}

	return 0
}
