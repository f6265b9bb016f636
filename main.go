package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/voicebook/voicebook/internal/adapter/calendar"
	"github.com/voicebook/voicebook/internal/adapter/llm"
	"github.com/voicebook/voicebook/internal/config"
	"github.com/voicebook/voicebook/internal/idempotency"
	"github.com/voicebook/voicebook/internal/logger"
	"github.com/voicebook/voicebook/internal/service"
	"github.com/voicebook/voicebook/internal/store"
	transport "github.com/voicebook/voicebook/internal/transport/http"
	"github.com/voicebook/voicebook/policy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer zl.Sync()

	zl.Info("starting scheduling orchestrator",
		zap.Int("http_port", cfg.HTTPPort),
		zap.String("llm_url", cfg.LLM.BaseURL),
		zap.String("calendar_url", cfg.Calendar.BaseURL))

	db, err := store.NewSQLiteStore(cfg.StoreDSN)
	if err != nil {
		zl.Fatal("failed to initialize conversation store", zap.Error(err))
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zl.Fatal("failed to reach redis", zap.Error(err))
	}
	guard := idempotency.New(rdb)

	llmClient := llm.NewHTTPClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Timeout)
	calClient := calendar.NewHTTPClient(cfg.Calendar.BaseURL, cfg.Calendar.APIKey, cfg.Calendar.Timeout)

	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		zl.Fatal("failed to initialize policy engine", zap.Error(err))
	}

	svc := service.New(db, llmClient, calClient, guard, policyEngine, cfg, zl)

	h := transport.NewHandler(svc, zl)
	e := transport.NewServer(h)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	zl.Info("orchestrator started", zap.Int("port", cfg.HTTPPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down orchestrator")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Warn("failed to shutdown server gracefully", zap.Error(err))
	}

	zl.Info("orchestrator stopped")
}
