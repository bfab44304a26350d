package trackingservice

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"ship-track/internal/gateway"
	"ship-track/internal/general/config"
	"ship-track/internal/general/jwt"
	"ship-track/internal/general/logger"
	"ship-track/internal/general/postgres"
	"ship-track/internal/general/rabbitmq"
	"ship-track/internal/movement"
	"ship-track/internal/simulator"
	"ship-track/internal/software/tracking/handler"
	"ship-track/internal/software/tracking/service"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func Run(ctx context.Context, maxConcurrent int) error {
	// set up a new logger for the tracking service with a static request ID for startup logs
	logger := logger.New("tracking-service")
	ctx = logger.WithRequestID(ctx, "startup-001")

	// load configuration
	cfg, err := config.LoadFromFile("./config/config.yaml")
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// set up a Postgres connection pool
	pool, err := postgres.NewPool(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err, nil)
		return err
	}
	defer pool.Close()

	// connect to RabbitMQ
	rmq, err := rabbitmq.ConnectRabbitMQ(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
		return err
	}
	defer rmq.Close()

	// set up the RabbitMQ publisher
	pub := rabbitmq.NewMQPublisher(rmq)

	// set up the JWT manager
	jwtManager := jwt.NewManager(cfg.JWT.SecretKey, 2*time.Hour)

	// set up the repos
	uow := postgres.NewUnitOfWork(pool)
	directory := postgres.NewShipmentDirectoryRepo(pool)
	auditRepo := postgres.NewAuditRepo(pool)
	historyRepo := postgres.NewLocationHistoryRepo(pool)

	// movement state store and broadcast gateway
	store := movement.NewStore()

	// simulator sink chain: gateway fan-out wrapped by the history archiver;
	// manager is constructed against the outermost sink
	gw := gateway.NewGateway(store, pub, cfg.Simulation.SubscriberQueueSize, logger)
	recorder := service.NewHistoryRecorder(gw, historyRepo, time.Second, logger)
	sims := simulator.NewManager(recorder, cfg.TickInterval(), logger)
	gw.AttachSimulators(sims)
	gw.Start(ctx)
	recorder.Start(ctx)

	// set up the tracking control service; it registers itself as the
	// simulators' arrival handler
	svc := service.NewTrackingService(ctx, logger, uow, directory, auditRepo, historyRepo,
		store, sims, gw, recorder, pub, cfg.Simulation.DefaultSpeedKMH)
	gw.SetControl(svc)

	// websocket handler over the gateway
	ws := gateway.NewWSHandler(gw, jwtManager)

	// set up the HTTP handler and its routes
	mux := http.NewServeMux()
	httpHandler := handler.NewTrackingHTTPHandler(svc, logger, jwtManager, ws)
	httpHandler.RegisterRoutes(mux)

	// concurrency limiter (global), blocks when capacity is full
	limitedHandler := withConcurrencyLimit(maxConcurrent, mux)

	// set up the server configurations
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Services.TrackingServicePort),
		Handler:           limitedHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	// log service start
	logger.Info(ctx, "service_started",
		fmt.Sprintf("Tracking Service started on port %d", cfg.Services.TrackingServicePort),
		map[string]any{"port": cfg.Services.TrackingServicePort, "max_concurrent": maxConcurrent},
	)

	// start the server in a background goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	// wait for context cancellation or server error
	select {
	case <-ctx.Done():
		// stop all simulator workers, then shut the HTTP server down gracefully
		sims.StopAll()

		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err, nil)
		}
	case err := <-errCh:
		// server returned a terminal error at startup or during run
		if err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_server_error", "HTTP server terminated with error", err, map[string]any{"port": cfg.Services.TrackingServicePort})
			return err
		}
		return nil
	}

	return nil
}

// withConcurrencyLimit wraps an http.Handler with a semaphore-based limiter.
// It controls how many HTTP requests can be in-progress at the same time.
func withConcurrencyLimit(n int, next http.Handler) http.Handler {
	if n <= 0 {
		return next
	}
	sem := make(chan struct{}, n)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case sem <- struct{}{}: // acquire
			defer func() { <-sem }() // release
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
			// client canceled or server is shutting down
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	})
}
