// SPDX-License-Identifier: EPL-2.0

// Command server runs the moodmix web app.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ik5/moodmix/internal/auth"
	"github.com/ik5/moodmix/internal/blob"
	"github.com/ik5/moodmix/internal/config"
	"github.com/ik5/moodmix/internal/fetch"
	"github.com/ik5/moodmix/internal/handler"
	"github.com/ik5/moodmix/internal/imagegen"
	"github.com/ik5/moodmix/internal/mixer"
	"github.com/ik5/moodmix/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet.
		_, _ = os.Stderr.WriteString("moodmix: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg.LogDev)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger(dev bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}

	return logger
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Warn("closing store", zap.Error(err))
		}
	}()

	bucket, files, err := openBucket(ctx, cfg)
	if err != nil {
		return err
	}
	if files != nil {
		logger.Warn("serving objects from memory; upload moods/<tag>.mp3 before mixing")
	}

	mix, err := mixer.NewService(st, bucket, fetch.New(cfg.MaxUploadBytes, cfg.FetchAllowPrivate), mixer.Config{
		MoodGain: cfg.MoodGain,
		Rate:     cfg.MixRate,
		Burst:    cfg.MixBurst,
	}, logger)
	if err != nil {
		return err
	}

	h, err := handler.NewHandlers(handler.Deps{
		Store:          st,
		Bucket:         bucket,
		Mixer:          mix,
		Images:         imagegen.NewClient(cfg.ImageAPIURL, cfg.ImageAPIKey),
		Sessions:       auth.NewSessions([]byte(cfg.SessionSecret), strings.HasPrefix(cfg.PublicURL, "https://"), st, logger),
		Logger:         logger,
		PublicURL:      cfg.PublicURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		return err
	}

	srv := handler.Server(":"+cfg.Port, h.Router(handler.RouterOptions{
		CORSOrigins: cfg.CORSOrigins,
		Files:       files,
	}))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("moodmix listening",
			zap.String("addr", srv.Addr),
			zap.String("publicURL", cfg.PublicURL),
			zap.String("store", cfg.Store),
			zap.String("blob", cfg.Blob))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Store == config.BackendMemory {
		return store.NewMemory(), nil
	}

	return store.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB)
}

// openBucket returns the bucket and, for the in-memory backend, the handler
// that serves its objects.
func openBucket(ctx context.Context, cfg *config.Config) (blob.Bucket, http.Handler, error) {
	if cfg.Blob == config.BackendMemory {
		b := blob.NewMemory(cfg.PublicURL + "/files")
		return b, b, nil
	}

	b, err := blob.NewMinIO(ctx, cfg.S3, cfg.SignedURLTTL)
	if err != nil {
		return nil, nil, err
	}

	return b, nil, nil
}
