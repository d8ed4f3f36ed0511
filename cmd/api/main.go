// Package main implements the schematic editing API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"google.golang.org/grpc"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/producer"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/session"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/symbols"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/config"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/mid"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/natsutil"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/resilience"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	configPath := flag.String("config", "", "TOML config file")
	envFile := flag.String("env", ".env", "dotenv file")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	style, err := symbols.ParseStyle(cfg.Canvas.ResistorStyle)
	if err != nil {
		return err
	}

	// --- gRPC health ---
	health := newHealth()

	// --- Producer ---
	base, err := producer.Build(cfg.Producer, logger)
	if err != nil {
		return err
	}
	guardOpts := producer.GuardOptsFrom(cfg.Generate)
	guardOpts.Breaker.OnStateChange = func(_, to resilience.State) { health.setProducer(to) }
	guarded := producer.Guard(base, guardOpts, logger)

	// --- Change publication ---
	opts := session.Options{Producer: guarded, Style: style, Hooks: hooks(), Logger: logger}
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("schematic-api"))
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Drain()
		prefix := cfg.NATS.SubjectPrefix
		opts.Publisher = natsutil.NewPublisher(nc, func(ev session.Event) string {
			return natsutil.ChangedSubject(prefix, ev.Session)
		})
		logger.Info("publishing changes", "nats", cfg.NATS.URL, "prefix", prefix)
	}

	srv := &server{store: session.NewStore(opts), logger: logger, producerState: guarded.BreakerState}

	handler := mid.Chain(srv.routes(),
		mid.Recover(logger),
		mid.RequestID(),
		mid.Logger(logger),
		mid.CORS(cfg.Server.CORSOrigin),
		mid.MaxBody(1<<20),
		mid.OTel("schematic-api"),
	)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Generate.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	lis, err := net.Listen("tcp", ":"+cfg.Server.GRPCPort)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	grpcSrv := grpc.NewServer()
	health.register(grpcSrv)

	// --- Graceful shutdown ---
	errCh := make(chan error, 2)
	go func() {
		logger.Info("api server starting", "port", cfg.Server.Port)
		errCh <- httpSrv.ListenAndServe()
	}()
	go func() {
		logger.Info("grpc health starting", "port", cfg.Server.GRPCPort)
		errCh <- grpcSrv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	health.shutdown()
	grpcSrv.GracefulStop()
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutCtx)
}
