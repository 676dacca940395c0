package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"noahs-ark/internal/adapters/auth/iam"
	fmem "noahs-ark/internal/adapters/files/memory"
	fs3 "noahs-ark/internal/adapters/files/s3"
	rtredis "noahs-ark/internal/adapters/realtime/redis"
	pg "noahs-ark/internal/adapters/storage/postgres"
	"noahs-ark/internal/adapters/tracking/traccar"
	"noahs-ark/internal/platform/config"
	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/ports/auth"
	"noahs-ark/internal/ports/files"
	portrt "noahs-ark/internal/ports/realtime"
	"noahs-ark/internal/ports/tracking"
	"noahs-ark/internal/realtime"
	"noahs-ark/internal/router"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.Open(cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		if err := pg.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("postgres ready", nil)
	} else {
		log.Warn("DB_DSN not set, using in-memory store", nil)
	}

	hub := realtime.NewHub(0, log)

	// Con Redis, todo publish pasa por Redis y el relay lo devuelve al hub de cada réplica.
	var transport portrt.Publisher = hub
	if cfg.Redis.Addr != "" {
		rc := rtredis.NewClient(rtredis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rc.Close()
		if err := rtredis.Ping(ctx, rc); err != nil {
			return err
		}
		transport = rtredis.NewPublisher(rc)

		relay := rtredis.NewRelay(rc, hub, log)
		go func() {
			if err := relay.Run(ctx, nil); err != nil {
				log.Error("realtime relay stopped", map[string]any{"error": err})
			}
		}()
		log.Info("redis realtime relay started", map[string]any{"addr": cfg.Redis.Addr})
	}
	publisher := realtime.NewAsyncPublisher(transport, cfg.RealtimePublishTimeout, log)

	var fileStore files.Store
	switch cfg.Files.Driver {
	case config.FilesDriverS3:
		s, err := fs3.New(ctx, fs3.Config{
			Region:    cfg.Files.S3Region,
			Bucket:    cfg.Files.S3Bucket,
			Endpoint:  cfg.Files.S3Endpoint,
			PathStyle: cfg.Files.S3PathStyle,
		})
		if err != nil {
			return fmt.Errorf("s3 store: %w", err)
		}
		fileStore = s
	default:
		fileStore = fmem.NewStore()
	}

	var tracker tracking.DeviceTracker
	if cfg.Traccar.BaseURL != "" {
		tc, err := traccar.New(traccar.Config{
			BaseURL: cfg.Traccar.BaseURL,
			Token:   cfg.Traccar.Token,
			Timeout: cfg.Traccar.Timeout,
		}, log)
		if err != nil {
			return err
		}
		tracker = tc
	}

	// sin IAM => modo dev (headers X-Debug-*)
	var verifier auth.AuthVerifier
	if cfg.IAM.BaseURL != "" {
		c, err := iam.NewClient(iam.Config{BaseURL: cfg.IAM.BaseURL, APIKey: cfg.IAM.APIKey, Timeout: cfg.IAM.Timeout})
		if err != nil {
			return err
		}
		verifier = iam.NewVerifier(c)
	} else {
		log.Warn("IAM_BASE_URL not set, dev auth headers enabled", nil)
	}

	handler := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		DB:           db,
		Logger:       log,
		Hub:          hub,
		Publisher:    publisher,
		Tracker:      tracker,
		Files:        fileStore,
		OnlineWindow: cfg.OnlineWindow,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", map[string]any{"error": err})
	}
	publisher.Wait()
	return nil
}
