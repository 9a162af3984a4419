package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	pb "github.com/godilite/profile-audit/api/v1"
	"github.com/godilite/profile-audit/internal/config"
	handler "github.com/godilite/profile-audit/internal/grpc"
	"github.com/godilite/profile-audit/internal/repository"
	"github.com/godilite/profile-audit/internal/scheduler"
	"github.com/godilite/profile-audit/internal/service"
	"github.com/godilite/profile-audit/internal/session"
	"github.com/godilite/profile-audit/internal/upstream"
	"github.com/godilite/profile-audit/internal/worker/persister"
	"github.com/godilite/profile-audit/pkg/cache"
	dbbuilder "github.com/godilite/profile-audit/pkg/database"
	grpcsrv "github.com/godilite/profile-audit/pkg/grpc/server"
	"github.com/godilite/profile-audit/pkg/httpserver"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const (
	shutdownTimeout = 10 * time.Second
	cacheNamespace  = "profile-audit"
)

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	persister  *persister.Persister
	sessions   *session.Manager
	grpcServer *grpcsrv.Server
	httpServer *httpserver.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbPool, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithMaxOpenConns(1),
		dbbuilder.WithInitStatements(dbbuilder.SQLitePragmas...),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	runRepo := repository.NewAuditRunRepository(dbPool)
	if err := runRepo.EnsureSchema(ctx); err != nil {
		dbPool.Close()
		return nil, err
	}

	cacheClient, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
		cache.WithNamespace(cacheNamespace),
	)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("cache init failed: %w", err)
	}
	logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))

	runPersister := persister.New(runRepo, logger,
		persister.WithCache(cacheClient),
		persister.WithQueueSize(cfg.RunQueueSize),
	)

	auditService, err := newAuditService(cfg, runPersister, logger)
	if err != nil {
		runPersister.Close()
		cacheClient.Close()
		dbPool.Close()
		return nil, err
	}

	sessions := session.NewManager(auditService, logger,
		scheduler.WithInterval(cfg.RefreshInterval),
		scheduler.WithStalenessThreshold(cfg.StalenessThreshold),
		scheduler.WithAutoRefresh(cfg.AutoRefreshEnabled),
	)

	historyService := service.NewHistoryService(runRepo, logger)
	grpcHandlers := handler.NewGRPCHandlers(sessions, historyService, cacheClient, logger, cfg.RunHistoryCacheTTL)

	grpcServer, err := grpcsrv.New(grpcServerOptions(cfg, logger)...)
	if err != nil {
		runPersister.Close()
		cacheClient.Close()
		dbPool.Close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(pb.ServiceName, func(s *grpc.Server) {
		pb.RegisterAuditServiceServer(s, grpcHandlers)
	})

	httpServer, err := httpserver.New(
		httpserver.WithPort(cfg.HTTPPort),
		httpserver.WithLogger(logger),
		httpserver.WithMetrics(true),
		httpserver.WithHealthCheck("database", dbPool.PingContext),
		httpserver.WithHealthCheck("cache", cacheClient.Ping),
	)
	if err != nil {
		_ = grpcServer.Shutdown(ctx)
		runPersister.Close()
		cacheClient.Close()
		dbPool.Close()
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		persister:  runPersister,
		sessions:   sessions,
		grpcServer: grpcServer,
		httpServer: httpServer,
	}, nil
}

// grpcServerOptions always installs panic recovery; request logging follows config.
func grpcServerOptions(cfg *config.Config, logger *zap.Logger) []grpcsrv.Option {
	return []grpcsrv.Option{
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithRecovery(true),
		grpcsrv.WithLogging(cfg.GRPCLoggingEnabled),
	}
}

// newAuditService builds the upstream clients. Rank and insights are optional.
func newAuditService(cfg *config.Config, publisher service.RunPublisher, logger *zap.Logger) (*service.AuditService, error) {
	common := []upstream.Option{
		upstream.WithAPIKey(cfg.UpstreamAPIKey),
		upstream.WithTimeout(cfg.UpstreamTimeout),
	}
	with := func(url string) []upstream.Option {
		return append([]upstream.Option{upstream.WithBaseURL(url)}, common...)
	}

	performance, err := upstream.NewPerformanceClient(with(cfg.PerformanceAPIURL)...)
	if err != nil {
		return nil, fmt.Errorf("performance client: %w", err)
	}
	reviews, err := upstream.NewReviewsClient(with(cfg.ReviewsAPIURL)...)
	if err != nil {
		return nil, fmt.Errorf("reviews client: %w", err)
	}

	opts := []service.Option{
		service.WithWindowDays(cfg.PerformanceWindowDays),
		service.WithPublisher(publisher),
	}
	if cfg.RankAPIURL != "" {
		rank, err := upstream.NewRankClient(with(cfg.RankAPIURL)...)
		if err != nil {
			return nil, fmt.Errorf("rank client: %w", err)
		}
		opts = append(opts, service.WithRankLookup(rank))
	}
	if cfg.InsightsAPIURL != "" {
		insights, err := upstream.NewInsightsClient(with(cfg.InsightsAPIURL)...)
		if err != nil {
			return nil, fmt.Errorf("insights client: %w", err)
		}
		opts = append(opts, service.WithTextGenerator(insights))
	}

	return service.NewAuditService(performance, reviews, logger, opts...), nil
}

// Start serves gRPC and the ops HTTP endpoints and returns immediately.
func (a *App) Start() {
	a.logger.Info("application starting")
	a.grpcServer.Start()
	a.httpServer.Start()
}

func (a *App) GRPCAddr() net.Addr {
	return a.grpcServer.Addr()
}

func (a *App) HTTPAddr() net.Addr {
	return a.httpServer.Addr()
}

// Shutdown stops accepting requests, closes every session and drains queued
// runs before releasing the cache and database.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("application shutting down")

	var errs []error
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("grpc shutdown: %w", err))
	}
	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	a.sessions.CloseAll()
	a.persister.Close()

	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}
	return errors.Join(errs...)
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else if err == nil {
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return err
}
