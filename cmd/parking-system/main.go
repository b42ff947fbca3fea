package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"parking-system/internal/config"
	"parking-system/internal/logging"
	"parking-system/internal/parking"
	"parking-system/internal/server"
	"parking-system/internal/store/memory"
	"parking-system/internal/store/postgres"
	"parking-system/internal/store/redis"
)

var (
	mode = flag.String("mode", "cli", "Mode to run: cli, server, or both")
	port = flag.String("port", "", "Port for HTTP server (overrides PORT)")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryProvider, err := parking.NewTelemetryProvider(ctx, parking.TelemetryConfig{
		ServiceName:     cfg.OTelConfig.ServiceName,
		OTLPEndpoint:    cfg.OTelConfig.OTLPEndpoint,
		ResourceFromEnv: true,
	})
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer shutdownTelemetry(telemetryProvider)

	logging.Init(cfg.OTelConfig.ServiceName, cfg.Environment)

	operator, cleanup, err := newOperator(ctx, cfg, telemetryProvider)
	if err != nil {
		logging.Error(ctx, "failed to start parking service", "error", err)
		return
	}
	defer cleanup()

	switch *mode {
	case "cli":
		runCLI(ctx, operator, telemetryProvider)
	case "server":
		err = runServer(ctx, cfg, operator)
	case "both":
		err = runBoth(ctx, cfg, operator, telemetryProvider)
	default:
		err = fmt.Errorf("invalid mode: %s. Must be cli, server, or both", *mode)
	}
	if err != nil {
		logging.Error(ctx, "parking system stopped with error", "error", err)
	}
}

// newOperator wires the stores and locker chosen by cfg into the instrumented
// service.
func newOperator(ctx context.Context, cfg *config.Config, telemetryProvider *parking.TelemetryProvider) (parking.Operator, func(), error) {
	var (
		spots   parking.SpotRepository
		tickets parking.TicketRepository
		closers []func() error
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logging.Warn(context.Background(), "close failed", "error", err)
			}
		}
	}

	pool := parking.NewSpotPool(cfg.Facility.CarSpots, cfg.Facility.BikeSpots)

	switch cfg.Store {
	case config.StorePostgres:
		db, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, db.Close)

		if err := postgres.RunMigrations(ctx, db); err != nil {
			return nil, cleanup, err
		}
		if err := postgres.ProvisionSpots(ctx, db, pool); err != nil {
			return nil, cleanup, err
		}
		spots = postgres.NewSpotStore(db)
		tickets = postgres.NewTicketStore(db)
	default:
		spots = memory.NewSpotStore(pool)
		tickets = memory.NewTicketStore()
	}

	rates, err := cfg.RateTable()
	if err != nil {
		return nil, cleanup, err
	}

	opts := []parking.Option{}
	if cfg.Redis.Addr != "" {
		client, err := redis.NewClient(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, client.Close)
		opts = append(opts, parking.WithLocker(redis.NewLocker(client, redis.DefaultLockTTL, redis.DefaultLockWait)))
	}

	service := parking.NewParkingService(spots, tickets, parking.NewFareCalculator(rates), opts...)

	instrumented, err := parking.NewInstrumentedParkingService(service, telemetryProvider)
	if err != nil {
		return nil, cleanup, err
	}

	logging.Info(ctx, "parking service ready",
		"store", cfg.Store,
		"distributed_locks", cfg.Redis.Addr != "",
		"car_spots", cfg.Facility.CarSpots,
		"bike_spots", cfg.Facility.BikeSpots,
	)

	return instrumented, cleanup, nil
}

func runCLI(ctx context.Context, operator parking.Operator, telemetryProvider *parking.TelemetryProvider) {
	go func() {
		// Unblocks the shell's read on shutdown.
		<-ctx.Done()
		os.Stdin.Close()
	}()

	shell := parking.NewShell(operator, telemetryProvider, os.Stdin, os.Stdout)
	shell.Run(ctx)
}

func runServer(ctx context.Context, cfg *config.Config, operator parking.Operator) error {
	srv := server.NewServer(cfg.Port, cfg.OTelConfig.ServiceName, operator)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return startServer(srv)
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdownServer(srv)
	})
	return g.Wait()
}

func runBoth(ctx context.Context, cfg *config.Config, operator parking.Operator, telemetryProvider *parking.TelemetryProvider) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := server.NewServer(cfg.Port, cfg.OTelConfig.ServiceName, operator)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return startServer(srv)
	})
	g.Go(func() error {
		runCLI(gctx, operator, telemetryProvider)
		logging.Info(gctx, "CLI exited")
		cancel()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdownServer(srv)
	})
	return g.Wait()
}

func startServer(srv *server.Server) error {
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func shutdownServer(srv *server.Server) error {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}

func shutdownTelemetry(telemetryProvider *parking.TelemetryProvider) {
	log.Println("Shutting down telemetry...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down telemetry: %v", err)
	}
}
