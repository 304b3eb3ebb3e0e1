package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/eleven-am/barrier"
	"github.com/eleven-am/barrier/internal/adapters/logging"
	"github.com/eleven-am/barrier/internal/xjson"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "barrier: %v\n", err)
		return 1
	}

	logger, err := logging.NewLogger(opts.loggingOptions(stderr))
	if err != nil {
		fmt.Fprintf(stderr, "barrier: %v\n", err)
		return 1
	}

	cfg, err := opts.buildConfig()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}
	cfg.Logger = logger

	b, err := barrier.New(cfg)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}

	result, err := b.Run(ctx)
	if err != nil {
		kind, _ := barrier.KindOf(err)
		logger.Error("barrier failed", "kind", kind.String(), "error", err)
		return 1
	}

	if outputFormat(opts.output) == outputJSON {
		data, err := xjson.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Error("encode result", "error", err)
			return 1
		}
		fmt.Fprintln(stdout, string(data))
		return 0
	}

	fmt.Fprintln(stdout, "READY")
	return 0
}
