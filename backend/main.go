package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "backend: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	configStore.Update(cfg)

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	store, storeName, err := NewStoreFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	sessions := NewSessionManager(store, logger, cfg)

	var persistOnce sync.Once
	persistOnShutdown := func(reason string) {
		persistOnce.Do(func() {
			logger.Info("persisting sessions", zap.String("reason", reason), zap.Int("sessions", sessions.Len()))
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			sessions.Shutdown(ctx)
			if err := store.Close(); err != nil {
				logger.Error("store close failed", zap.Error(err))
			}
		})
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("panic recovered in main", zap.Any("panic", recovered))
			persistOnShutdown("panic")
		}
	}()
	defer persistOnShutdown("exit")

	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 10*time.Second)
	restored, err := sessions.Restore(restoreCtx)
	cancelRestore()
	if err != nil {
		logger.Warn("session restore failed", zap.Error(err))
	}
	logger.Info("store ready", zap.String("store", storeName), zap.Int("restored_sessions", restored))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx.Done())
	go runTickLoop(ctx, sessions, hub, time.Duration(cfg.TickIntervalMs)*time.Millisecond)

	srv := &server{sessions: sessions, hub: hub, store: store, logger: logger}
	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: newRouter(srv),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	logger.Info("backend listening", zap.String("addr", cfg.ListenAddr))
	var runErr error
	select {
	case <-sigCtx.Done():
		logger.Info("shutdown signal received", zap.Error(sigCtx.Err()))
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			logger.Error("server error", zap.Error(err))
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := httpServer.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			logger.Warn("forced close failed", zap.Error(closeErr))
		}
	}

	cancel()
	persistOnShutdown("shutdown")
	return runErr
}

// runTickLoop drives bot turns in every session and pushes the results to the hub.
func runTickLoop(ctx context.Context, sessions *SessionManager, hub *Hub, interval time.Duration) {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, controller := range sessions.TickAll(ctx) {
				if entry, ok := controller.LatestHistoryEntry(); ok {
					hub.PublishHistory(controller.ID(), entry)
				}
				hub.PublishStatus(controllerStatus(controller))
			}
		}
	}
}
