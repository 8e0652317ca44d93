package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/revokeme/approval-scanner/internal/api"
	"github.com/revokeme/approval-scanner/internal/config"
	"github.com/revokeme/approval-scanner/internal/scancore"
)

func main() {
	_ = godotenv.Load()
	_ = godotenv.Overload(".env.local")

	cfg := config.Load()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if os.Getenv("LOG_PRETTY") != "" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	gw := scancore.NewGateway(cfg.EthRPCURL)
	classifier := scancore.NewSpenderClassifier(cfg.EtherscanAPIKey)
	scanner := scancore.NewScanner(gw, classifier, cfg.ScanConcurrency, cfg.ScanBlockWindow,
		logger.With().Str("component", "scanner").Logger())

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	server := api.New(addr, scanner, cfg.CORSOrigins, logger.With().Str("component", "api").Logger())

	logger.Info().
		Str("rpc", cfg.EthRPCURL).
		Str("addr", addr).
		Int("concurrency", cfg.ScanConcurrency).
		Bool("etherscan", cfg.EtherscanAPIKey != "").
		Msg("starting")

	if err := server.Start(); err != nil {
		logger.Fatal().Err(err).Msg("listen failed")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	logger.Info().Msg("stopped")
}
