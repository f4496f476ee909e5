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

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/storefront/internal/audit"
	"github.com/BruksfildServices01/storefront/internal/auth"
	"github.com/BruksfildServices01/storefront/internal/cache"
	"github.com/BruksfildServices01/storefront/internal/config"
	dbpkg "github.com/BruksfildServices01/storefront/internal/db"
	"github.com/BruksfildServices01/storefront/internal/geo"
	"github.com/BruksfildServices01/storefront/internal/logging"
	"github.com/BruksfildServices01/storefront/internal/mail"
	"github.com/BruksfildServices01/storefront/internal/payment"
	"github.com/BruksfildServices01/storefront/internal/routes"
	"github.com/BruksfildServices01/storefront/internal/storage"
	"github.com/BruksfildServices01/storefront/internal/validators"
)

const (
	mailQueueSize   = 100
	shutdownTimeout = 15 * time.Second
)

func runMigrate() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.IsProduction())

	db, err := dbpkg.Open(cfg)
	if err != nil {
		return err
	}
	defer dbpkg.Close(db)

	if err := dbpkg.Migrate(db); err != nil {
		return err
	}
	slog.Info("schema migrated", "driver", cfg.DBDriver)
	return nil
}

func runSeed(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.IsProduction())

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		return err
	}
	defer dbpkg.Close(db)

	if err := dbpkg.Seed(ctx, db, cfg); err != nil {
		return err
	}
	slog.Info("database seeded")
	return nil
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		return err
	}
	defer dbpkg.Close(db)

	svc, closeAll, err := buildServices(ctx, cfg, db, logger)
	if err != nil {
		return err
	}
	defer closeAll()

	r := gin.New()
	r.Use(gin.Recovery())
	routes.RegisterRoutes(r, db, cfg, svc)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", cfg.Addr(), "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown timed out with requests in flight", "error", err)
		return err
	}
	return nil
}

// buildServices picks each backend from configuration. The returned func
// drains the background queues.
func buildServices(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *slog.Logger) (routes.Services, func(), error) {
	svc := routes.Services{Logger: logger}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	auditDispatcher := audit.NewDispatcher(audit.New(db))
	closers = append(closers, auditDispatcher.Close)
	svc.Audit = auditDispatcher

	var mailer mail.Mailer = mail.Log{Logger: logger}
	if cfg.MailHost != "" {
		mailer = mail.NewSMTP(mail.SMTPConfig{
			Host:     cfg.MailHost,
			Port:     cfg.MailPort,
			Username: cfg.MailUsername,
			Password: cfg.MailPassword,
			From:     cfg.MailFrom,
		})
	}
	mailDispatcher := mail.NewDispatcher(mailer, mailQueueSize)
	closers = append(closers, mailDispatcher.Close)
	svc.Mail = mailDispatcher

	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			closeAll()
			return svc, nil, err
		}
		closers = append(closers, func() { _ = rc.Close() })
		svc.Cache = rc
	} else {
		svc.Cache = cache.NewMemory()
	}

	if cfg.S3Bucket != "" {
		svc.Storage = storage.NewS3(storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Key:       cfg.S3Key,
			Secret:    cfg.S3Secret,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
		})
	} else {
		svc.Storage = storage.NewLocal(cfg.StorageLocalRoot, cfg.AppURL)
	}

	if cfg.GeocoderEnabled {
		svc.Geocoder = geo.NewNominatim(cfg.GeocoderURL, "storefront ("+cfg.AppURL+")")
	}

	if cfg.MercadoPagoToken != "" {
		mp, err := payment.NewMercadoPago(cfg.MercadoPagoToken, !cfg.IsProduction())
		if err != nil {
			closeAll()
			return svc, nil, err
		}
		svc.Payments = mp
	}

	if cfg.GoogleClientID != "" {
		verifier, err := auth.NewGoogleVerifier(ctx, cfg.GoogleClientID)
		if err != nil {
			closeAll()
			return svc, nil, err
		}
		svc.Google = verifier
	}

	if cfg.CheckEmailDomain {
		svc.CheckEmailDomain = validators.NewEmailDomainChecker().Valid
	}

	return svc, closeAll, nil
}
