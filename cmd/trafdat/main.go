package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mnit-rtmc/trafdat/internal/api"
	"github.com/mnit-rtmc/trafdat/internal/config"
	"github.com/mnit-rtmc/trafdat/internal/daemon"
	"github.com/mnit-rtmc/trafdat/internal/log"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg := config.FromEnv()

	log.Configure(log.Config{
		Level:   cfg.LogLevel,
		Service: "trafdat",
	})
	logger := log.WithComponent("main")

	if err := cfg.Validate(); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.invalid").
			Msg("invalid configuration")
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("addr", cfg.ListenAddr).
		Str("traffic_root", cfg.TrafficRoot).
		Str("config_root", cfg.ConfigRoot).
		Str("default_district", cfg.DefaultDistrict).
		Msg("starting trafdat")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := api.New(cfg)
	d := daemon.New(daemon.Config{ListenAddr: cfg.ListenAddr})
	if err := d.Start(ctx, server.Router()); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.failed").
			Msg("server terminated")
	}
}
