package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/wealthflow-ledger/internal/adapter/grpc"
	"github.com/simaogato/wealthflow-ledger/internal/adapter/repository/bolt"
	"github.com/simaogato/wealthflow-ledger/internal/adapter/repository/postgres"
	"github.com/simaogato/wealthflow-ledger/internal/auth"
	"github.com/simaogato/wealthflow-ledger/internal/config"
	"github.com/simaogato/wealthflow-ledger/internal/domain"
	"github.com/simaogato/wealthflow-ledger/internal/logging"
	"github.com/simaogato/wealthflow-ledger/internal/tracing"
	"github.com/simaogato/wealthflow-ledger/internal/usecase/engine"
	"github.com/simaogato/wealthflow-ledger/internal/usecase/ledger"
	"github.com/simaogato/wealthflow-ledger/internal/usecase/policy"
)

func main() {
	var configPaths stringList
	flag.Var(&configPaths, "config", "path to a TOML config file (repeatable, later files win)")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.LoadConfig(configPaths...)
	if err != nil {
		bootLogger := logging.New("info", "json", os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	printBanner(cfg, logger)

	ctx := context.Background()

	// 2. Setup tracing
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise tracing")
	}

	// 3. Setup storage
	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open ledger storage")
	}

	// 4. Initialize services
	ledgerService := ledger.NewLedgerService(repo, engine.New(),
		ledger.WithLogger(logger),
		ledger.WithMaxAttempts(cfg.Ledger.MaxWriteAttempts),
		ledger.WithProjectionMonths(cfg.Ledger.ProjectionMonths),
		ledger.WithMaxProjectionMonths(cfg.Ledger.MaxProjectionMonths),
	)
	guard := policy.NewGuard(ledgerService, logger)
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.GetTokenExpiry())

	// 5. Start gRPC server
	limit := rate.Limit(cfg.RateLimit.RequestsPerSecond)
	if cfg.RateLimit.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(logger),
			grpcadapter.RateLimitInterceptor(rate.NewLimiter(limit, cfg.RateLimit.Burst)),
			grpcadapter.AuthInterceptor(issuer),
		),
	)
	grpcadapter.RegisterLedgerServiceServer(grpcServer, grpcadapter.NewServer(guard))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddress)
	if err != nil {
		logger.Fatal().Err(err).Str("address", cfg.Server.GRPCAddress).Msg("failed to listen")
	}

	go func() {
		logger.Info().Str("address", cfg.Server.GRPCAddress).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatal().Err(err).Msg("failed to serve gRPC server")
		}
	}()

	// 6. Start metrics endpoint
	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: cfg.Server.MetricsAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info().Str("address", cfg.Server.MetricsAddress).Msg("metrics endpoint listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics endpoint stopped")
			}
		}()
	}

	// Graceful shutdown
	waitForShutdown(logger, grpcServer, metricsServer, closeRepo, shutdownTracing)
}

// openRepository builds the ledger repository selected by storage.driver
func openRepository(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (domain.LedgerRepository, io.Closer, error) {
	switch cfg.Storage.Driver {
	case "bolt":
		if err := os.MkdirAll(dirOf(cfg.Storage.Bolt.Path), 0o755); err != nil {
			return nil, nil, err
		}
		store, err := bolt.Open(cfg.Storage.Bolt.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		db, err := postgres.NewDB(ctx, cfg.Storage.Postgres.DSN, postgres.Options{
			MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
			ConnectRetry: cfg.Storage.Postgres.GetConnectRetry(),
			Logger:       logger,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewLedgerRepository(db), db, nil
	}
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(logger zerolog.Logger, grpcServer *grpclib.Server, metricsServer *http.Server, repo io.Closer, shutdownTracing func(context.Context) error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")
	printShutdownBanner(logger)

	grpcServer.GracefulStop()
	logger.Info().Msg("gRPC server stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("metrics endpoint shutdown")
		}
	}
	if err := repo.Close(); err != nil {
		logger.Warn().Err(err).Msg("closing ledger storage")
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn().Err(err).Msg("flushing traces")
	}
}
