package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rijon63/fothebys-auction-system/internal/auction"
	"github.com/Rijon63/fothebys-auction-system/internal/auth"
	"github.com/Rijon63/fothebys-auction-system/internal/bidding"
	"github.com/Rijon63/fothebys-auction-system/internal/client"
	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/commission"
	"github.com/Rijon63/fothebys-auction-system/internal/config"
	"github.com/Rijon63/fothebys-auction-system/internal/event"
	"github.com/Rijon63/fothebys-auction-system/internal/event/natspub"
	"github.com/Rijon63/fothebys-auction-system/internal/favorite"
	"github.com/Rijon63/fothebys-auction-system/internal/health"
	"github.com/Rijon63/fothebys-auction-system/internal/httpapi"
	"github.com/Rijon63/fothebys-auction-system/internal/leader"
	"github.com/Rijon63/fothebys-auction-system/internal/lot"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
	"github.com/Rijon63/fothebys-auction-system/internal/telemetry"

	// Register store drivers so they are available via store.Open.
	_ "github.com/Rijon63/fothebys-auction-system/internal/store/memstore"
	_ "github.com/Rijon63/fothebys-auction-system/internal/store/mongostore"
	_ "github.com/Rijon63/fothebys-auction-system/internal/store/postgres"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		slog.Error("fatal error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	tp, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		slog.Warn("telemetry setup failed, continuing without OTEL export", slog.Any("error", err))
		tp = telemetry.NewNopProvider()
	}
	defer func() {
		if shutdownErr := tp.Shutdown(context.Background()); shutdownErr != nil {
			slog.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	logger := tp.Logger
	clk := clock.Real{}

	repos, err := store.Open(ctx, cfg.Database, clk)
	if err != nil {
		return fmt.Errorf("opening store (driver=%s): %w", cfg.Database.Driver, err)
	}
	defer repos.Close()

	logger.InfoContext(ctx, "connected to store", slog.String("driver", cfg.Database.Driver))

	var publisher event.Publisher = event.Nop{}
	if cfg.NATS.URL != "" {
		pub, nc, natsErr := natspub.Connect(cfg.NATS, logger)
		if natsErr != nil {
			return fmt.Errorf("connecting event publisher: %w", natsErr)
		}
		defer func() {
			if drainErr := nc.Drain(); drainErr != nil {
				logger.Error("nats drain error", slog.Any("error", drainErr))
			}
		}()
		publisher = pub
		logger.InfoContext(ctx, "publishing integration events", slog.String("url", cfg.NATS.URL))
	}

	bids, err := bidding.NewManager(repos, publisher, logger, tp.TracerProvider, tp.MeterProvider, clk)
	if err != nil {
		return fmt.Errorf("creating bidding manager: %w", err)
	}
	svc := httpapi.Services{
		Auctions:    auction.NewManager(repos, logger, tp.TracerProvider),
		Bidding:     bids,
		Lots:        lot.NewManager(repos, logger, tp.TracerProvider),
		Favorites:   favorite.NewManager(repos, logger, tp.TracerProvider),
		Commissions: commission.NewManager(repos, logger, tp.TracerProvider),
		Clients:     client.NewManager(repos, logger, tp.TracerProvider),
	}

	checkers := []health.Checker{}
	if repos.Ping != nil {
		checkers = append(checkers, health.Checker{Name: "store", Check: repos.Ping})
	}
	healthHandler := health.NewHandler(clk, checkers...)

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(svc, auth.NewTokens(cfg.Auth, clk), healthHandler, logger, tp.TracerProvider)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "starting http server", slog.Int("port", cfg.Server.Port), slog.String("version", version))
		if listenErr := httpServer.ListenAndServe(); listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			serverErr <- listenErr
		}
	}()

	if err := migrate(ctx, cfg, repos, healthHandler, logger); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}
	healthHandler.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

// migrate brings the schema up to date and marks the service ready. With
// leader election on, the lease holder becomes ready only after its
// migrations succeed; other replicas become ready once they observe a leader.
// A failed leader migration leaves that replica not ready.
func migrate(ctx context.Context, cfg *config.Config, repos *store.Repositories, hh *health.Handler, logger *slog.Logger) error {
	if !cfg.Database.AutoMigrate {
		hh.SetReady(true)
		return nil
	}

	if !cfg.LeaderElection.Enabled {
		if err := repos.RunMigrations(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		logger.InfoContext(ctx, "migrations complete")
		hh.SetReady(true)
		return nil
	}

	go func() {
		err := leader.Run(ctx, cfg.LeaderElection, logger, leader.Callbacks{
			OnStartedLeading: func(ctx context.Context) {
				hh.SetReady(false)
				if err := repos.RunMigrations(ctx); err != nil {
					logger.ErrorContext(ctx, "leader migrations failed", slog.Any("error", err))
					return
				}
				logger.InfoContext(ctx, "migrations complete (leader)")
				hh.SetReady(true)
				<-ctx.Done()
			},
			OnNewLeader: func(string) { hh.SetReady(true) },
		})
		if err != nil {
			logger.Error("leader election", slog.Any("error", err))
		}
	}()
	return nil
}
