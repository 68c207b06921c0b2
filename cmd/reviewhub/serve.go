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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reviewhub/internal/catalog"
	"reviewhub/internal/metrics"
	"reviewhub/internal/profile"
	"reviewhub/internal/site"
	"reviewhub/internal/storage"
	"reviewhub/pkg/database"
	"reviewhub/pkg/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the review site",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := utils.LoadConfig(flagConfig)
	if err != nil {
		return err
	}
	logger, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	provider, db, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	src, err := catalog.NewSource(ctx, cfg.Catalog.Source, catalog.S3Options{
		Region:    cfg.Catalog.S3.Region,
		Endpoint:  cfg.Catalog.S3.Endpoint,
		PathStyle: cfg.Catalog.S3.PathStyle,
	})
	if err != nil {
		return err
	}

	m := metrics.New()
	s := site.New(src, provider, m, logger)
	s.Reload(ctx)

	if cfg.Profile.Secret == "dev-secret-change-me" {
		logger.Warn("using the default profile secret; set REVIEWHUB_PROFILE_SECRET")
	}
	tokens := profile.TokenService{
		Secret:   []byte(cfg.Profile.Secret),
		Issuer:   cfg.Profile.Issuer,
		Duration: cfg.Profile.Duration(),
	}

	gin.SetMode(gin.ReleaseMode)
	router := s.Router(tokens, cfg.Server.TrustedProxies)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"reviews": s.Snapshot().Len(),
			"storage": cfg.Storage.Driver,
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		snap := s.Snapshot()
		if db != nil {
			pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(pingCtx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":   "not_ready",
					"db_error": err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ready",
			"reviews": snap.Len(),
			"version": snap.Version(),
		})
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	serveErr := waitForStop(sigCh, errCh, func() { s.Reload(ctx) }, logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	logger.Info("server stopped")
	return nil
}

// waitForStop blocks until a stop signal or a server failure. SIGHUP
// reloads the reviews and keeps waiting. It returns the server error, if
// that is what ended the wait.
func waitForStop(sigCh <-chan os.Signal, errCh <-chan error, reload func(), logger *zap.Logger) error {
	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				logger.Info("reloading reviews")
				reload()
				continue
			}
			logger.Info("shutdown signal received", zap.String("signal", sig.String()))
			return nil
		case err := <-errCh:
			logger.Error("server error", zap.Error(err))
			return err
		}
	}
}

// openStorage returns the provider for the configured driver. db is nil for
// the in-memory driver.
func openStorage(ctx context.Context, cfg utils.StorageConfig) (storage.Provider, *sql.DB, error) {
	if cfg.Driver == "memory" {
		return storage.NewMemory(), nil, nil
	}

	dbCfg := database.Config{Driver: cfg.Driver, DSN: cfg.DSN}
	if dbCfg.Driver == database.DriverPostgres && dbCfg.DSN == "" {
		return nil, nil, errors.New("storage.dsn is required for the pgx driver")
	}

	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return storage.NewSQL(db, dbCfg.Driver), db, nil
}
