package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"github.com/florincoin/floretarget/internal/config"
	"github.com/florincoin/floretarget/internal/logging"
	"github.com/florincoin/floretarget/internal/metrics"
	"github.com/florincoin/floretarget/internal/version"
)

var cmdlineFlags struct {
	configFile string
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: floretarget [-config FILE] <command> [flags]

Commands:
  params                          print the retarget epochs of the configured network
  replay -headers FILE            index and validate a header dump
  next -headers FILE [-time UNIX] required bits for a block on top of a dump
  check -hash HEX -bits HEX       check a block hash against compact bits
  decode -bits HEX | -difficulty D
                                  describe a compact target
  fetch -out FILE [-from N] [-to N]
                                  export headers from the configured node
  version                         print the version
`)
}

func main() {
	flag.StringVar(
		&cmdlineFlags.configFile,
		"config",
		"",
		"path to config file to load",
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	// Load config
	cfg, err := config.Load(cmdlineFlags.configFile)
	if err != nil {
		fmt.Printf("Failed to load config: %s\n", err)
		os.Exit(1)
	}

	// Configure logging
	if err := logging.Setup(&cfg.Logging); err != nil {
		fmt.Printf("Failed to configure logging: %s\n", err)
		os.Exit(1)
	}
	logger := logging.GetLogger()
	defer func() {
		_ = logger.Sync()
	}()

	logger.Debug("floretarget starting",
		zap.String("version", version.GetVersionString()),
		zap.String("network", cfg.Network.Name),
	)

	if cfg.Metrics.ListenPort > 0 {
		startMetricsListener(cfg, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, logger: logger, out: os.Stdout}
	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			usage()
			os.Exit(2)
		}
		logger.Error("command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func startMetricsListener(cfg *config.Config, logger *zap.Logger) {
	addr := fmt.Sprintf("%s:%d", cfg.Metrics.ListenAddress, cfg.Metrics.ListenPort)
	logger.Info("starting metrics listener", zap.String("addr", addr))

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics listener stopped", zap.Error(err))
		}
	}()
}
