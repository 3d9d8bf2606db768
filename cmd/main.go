package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nesttelemetry/internal/config"
	collector_cleanup "nesttelemetry/internal/features/collector/cleanup"
	collector_middleware "nesttelemetry/internal/features/collector/middleware"
	collector_querying "nesttelemetry/internal/features/collector/querying"
	collector_receiving "nesttelemetry/internal/features/collector/receiving"
	"nesttelemetry/internal/features/logging"
	"nesttelemetry/internal/features/monitoring"
	"nesttelemetry/internal/features/sysmetrics"
	system_healthcheck "nesttelemetry/internal/features/system/healthcheck"
	env_utils "nesttelemetry/internal/util/env"
	"nesttelemetry/internal/util/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
)

const (
	modeCollector = "collector"
	modeAgent     = "agent"
	modeAll       = "all"

	serverShutdownTimeout = 10 * time.Second
	collectorPingTimeout = 5 * time.Second
)

// @title Telemetry Collector API
// @version 1.0
// @description Receives and serves client logs, performance metrics and user actions
// @BasePath /
// @schemes http
func main() {
	log := logger.GetLogger()

	mode := pflag.String("mode", modeCollector, "what to run: collector, agent or all")
	pflag.Parse()

	if *mode != modeCollector && *mode != modeAgent && *mode != modeAll {
		log.Error("Unknown mode", "mode", *mode)
		os.Exit(1)
	}

	config.StartListeningForShutdownSignal()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	if *mode == modeCollector || *mode == modeAll {
		group.Go(func() error {
			return runCollector(groupCtx, log)
		})
	}

	if *mode == modeAgent || *mode == modeAll {
		group.Go(func() error {
			return runAgent(groupCtx, log)
		})
	}

	if err := group.Wait(); err != nil {
		log.Error("Stopped with error", "error", err)
		os.Exit(1)
	}

	log.Info("Stopped gracefully", "mode", *mode)
}

func runCollector(ctx context.Context, log *slog.Logger) error {
	gin.SetMode(gin.ReleaseMode)
	ginApp := gin.Default()

	ginApp.Use(gzip.Gzip(gzip.DefaultCompression))

	enableCors(ginApp)
	setUpRoutes(ginApp)

	retentionService := collector_cleanup.GetRetentionBackgroundService()
	retentionService.StartWorkers()
	defer retentionService.Shutdown()

	return startServerWithGracefulShutdown(ctx, log, ginApp)
}

func startServerWithGracefulShutdown(ctx context.Context, log *slog.Logger, app *gin.Engine) error {
	srv := &http.Server{
		Addr:    config.GetEnv().CollectorAddr,
		Handler: app,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Collector listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("collector server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received, stopping collector")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server gracefully stopped")
	return nil
}

func setUpRoutes(r *gin.Engine) {
	root := r.Group("")

	root.GET("/docs/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	system_healthcheck.GetHealthcheckController().RegisterRoutes(root)
	collector_querying.GetQueryingController().RegisterRoutes(root)

	ingestion := root.Group("")
	ingestion.Use(
		collector_middleware.AuthMiddleware(config.GetEnv().CollectorJWTSecret),
		collector_middleware.DecompressRequestMiddleware(),
	)
	collector_receiving.GetReceivingController().RegisterRoutes(ingestion)
}

func enableCors(ginApp *gin.Engine) {
	if config.GetEnv().EnvMode == env_utils.EnvModeDevelopment {
		ginApp.Use(cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{
				"Origin",
				"Content-Length",
				"Content-Type",
				"Content-Encoding",
				"Authorization",
				"Accept",
				"Accept-Encoding",
			},
		}))
	}
}

func runAgent(ctx context.Context, log *slog.Logger) error {
	loggingService := logging.GetLoggingService()
	monitoringService := monitoring.GetMonitoringService()
	sampler := sysmetrics.GetSampler()

	loggingService.Init(ctx)
	monitoringService.Init(ctx)
	sampler.StartWorkers()

	http.DefaultClient = monitoringService.InstrumentClient(http.DefaultClient)
	monitoringService.MarkPageLoaded("agent")

	loggingService.Info("Telemetry agent started", map[string]any{
		"sessionId": loggingService.SessionID(),
		"pid":       os.Getpid(),
	})

	loggingService.Go(func() error {
		return pingCollector(ctx)
	})

	<-ctx.Done()
	log.Info("Shutdown signal received, stopping telemetry agent")

	monitoringService.TrackUserAction("agent_stop", nil)

	sampler.Shutdown()
	monitoringService.Shutdown()
	loggingService.Shutdown()

	return nil
}

func pingCollector(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, collectorPingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(pingCtx, http.MethodGet, config.GetEnv().CollectorURL+"/system/health", nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("collector is unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("collector health check returned HTTP %d", resp.StatusCode)
	}

	return nil
}
