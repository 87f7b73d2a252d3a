package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpost/internal/auth"
	"github.com/inkpost/internal/config"
	"github.com/inkpost/internal/db"
	"github.com/inkpost/internal/handler"
	"github.com/inkpost/internal/metrics"
	"github.com/inkpost/internal/router"
	"github.com/inkpost/internal/service"
	"github.com/inkpost/internal/storage"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)
	logger := newLogger(cfg.GinMode)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(mode string) *slog.Logger {
	if mode == gin.DebugMode {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func run(cfg config.AppConfig, logger *slog.Logger) error {
	// 初始化数据库
	if err := db.Init(db.Options{
		Driver: cfg.DatabaseDriver,
		Path:   cfg.DatabasePath,
		DSN:    cfg.DatabaseURL,
	}); err != nil {
		return err
	}
	gdb, err := db.Get()
	if err != nil {
		return err
	}

	if err := db.EnsureUser(gdb, cfg.LocalUserName, cfg.LocalUserPassword, cfg.LocalUserImageURL); err != nil {
		return err
	}

	verifier, err := auth.NewVerifier(cfg.IdentityPublicKey, cfg.IdentitySecret, cfg.IdentityIssuer)
	if err != nil {
		return err
	}
	if verifier == nil {
		logger.Warn("identity provider not configured, only local sessions are accepted")
	}

	signer := service.NewUploadSigner(cfg.ImageKitPublicKey, cfg.ImageKitPrivateKey, cfg.ImageKitTokenTTL)
	if !signer.Enabled() {
		logger.Warn("upload signing disabled, set IMAGEKIT_PUBLIC_KEY and IMAGEKIT_PRIVATE_KEY to enable it")
	}

	uploads, uploadDir, err := newUploadProvider(cfg)
	if err != nil {
		return err
	}

	collectors := metrics.New()
	api := handler.NewAPI(gdb, handler.Options{
		UploadSigner: signer,
		Verifier:     verifier,
		Uploads:      uploads,
		Metrics:      collectors,
		Logger:       logger,
	})

	r := router.SetupRouter(api, router.Options{
		SessionSecret: cfg.SessionSecret,
		UploadDir:     uploadDir,
		UploadURLPath: cfg.UploadURLPath,
		Metrics:       collectors,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.ListenAddr, "database", cfg.DatabaseDriver, "uploads", cfg.UploadDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newUploadProvider returns the configured provider and, for local storage, the directory to serve.
func newUploadProvider(cfg config.AppConfig) (storage.Provider, string, error) {
	if cfg.UploadDriver != config.UploadDriverS3 {
		return storage.NewLocalProvider(cfg.UploadDir, cfg.UploadURLPath), cfg.UploadDir, nil
	}

	provider, err := storage.NewS3Provider(storage.S3Config{
		Endpoint:      cfg.S3Endpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		UseSSL:        cfg.S3UseSSL,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		return nil, "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := provider.EnsureBucket(ctx); err != nil {
		return nil, "", err
	}
	return provider, "", nil
}
