package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/ternarybob/banner"

	"github.com/simaogato/wealthflow-ledger/internal/config"
)

// printBanner displays the startup banner to stderr
func printBanner(cfg *config.Config, logger zerolog.Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 56) + banner.ColorReset

	storage := cfg.Storage.Driver
	if storage == "bolt" {
		storage += " " + cfg.Storage.Bolt.Path
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  WEALTHFLOW LEDGER%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n", hr)
	for _, kv := range [][2]string{
		{"Environment", cfg.Environment},
		{"gRPC", cfg.Server.GRPCAddress},
		{"Metrics", cfg.Server.MetricsAddress},
		{"Storage", storage},
	} {
		fmt.Fprintf(os.Stderr, "%s  %-12s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "%s\n\n", hr)

	logger.Info().
		Str("environment", cfg.Environment).
		Str("grpc_address", cfg.Server.GRPCAddress).
		Str("storage", cfg.Storage.Driver).
		Msg("ledger server starting")
}

// printShutdownBanner displays the shutdown banner to stderr
func printShutdownBanner(logger zerolog.Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 42) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  LEDGER SHUTTING DOWN%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n\n", hr)

	logger.Info().Msg("ledger server shutting down")
}
