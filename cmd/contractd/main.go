package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/contract-risk/internal/analyzer"
	"github.com/joseph-ayodele/contract-risk/internal/common"
	"github.com/joseph-ayodele/contract-risk/internal/server"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		bootstrap.Fatal("load config", zap.Error(err))
	}

	logger, err := common.NewZapLogger(cfg.Log.Level)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	slogger := common.NewLogger(cfg.Log.Level)
	slog.SetDefault(slogger)

	svc, err := analyzer.NewFromConfig(cfg, slogger)
	if err != nil {
		log.Fatalf("build analyzer: %v", err)
	}
	if !cfg.HasLLMCredential() {
		log.Warnw("no LLM API key configured, using keyword rules only", "provider", cfg.LLM.Provider)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// HTTP server
	handler := server.NewHTTPHandler(svc, server.HTTPOptions{
		StaticDir:   cfg.Server.StaticDir,
		MaxUploadMB: cfg.Server.MaxUploadMB,
	}, slogger)
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           server.NewRouter(handler, logger),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	go func() {
		log.Infof("HTTP serving on %s", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	// gRPC server, disabled with an empty GRPC_ADDR
	grpcServer, hs := server.NewGRPCServer(svc, cfg.Server.MaxUploadMB, logger)
	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			log.Fatalf("listen: %v", err)
		}
		go func() {
			log.Infof("gRPC serving on %s", cfg.Server.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				log.Fatalf("grpc serve: %v", err)
			}
		}()
	}

	<-ctx.Done()
	log.Info("shutting down...")
	hs.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warnw("http shutdown", "error", err)
	}
	grpcServer.GracefulStop()
	log.Info("stopped.")
}
