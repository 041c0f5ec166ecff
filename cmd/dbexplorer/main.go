// Command dbexplorer serves the database exploration HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/datquery/dbexplorer/internal/config"
	"github.com/datquery/dbexplorer/internal/export"
	"github.com/datquery/dbexplorer/internal/filestore"
	"github.com/datquery/dbexplorer/internal/filestore/minio"
	"github.com/datquery/dbexplorer/internal/gateway"
	"github.com/datquery/dbexplorer/internal/logger"
	"github.com/datquery/dbexplorer/internal/secrets"
	"github.com/datquery/dbexplorer/internal/server"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to the configuration file")
		listen     = flag.String("listen", ":8080", "address to listen on")
		logLevel   = flag.String("log-level", "info", "log level: debug, info, warn, error")
		logFormat  = flag.String("log-format", "json", "log format: json, console")
	)
	flag.Parse()

	log := logger.New(&logger.Config{
		Level:  *logLevel,
		Format: *logFormat,
		Output: os.Stdout,
	})
	logger.SetGlobal(log)

	if err := run(*configPath, *listen, log); err != nil {
		log.ErrorWith("dbexplorer exited", err, nil)
		os.Exit(1)
	}
}

func run(configPath, listen string, log *logger.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr := gateway.NewManager(cfg, &secrets.Pass{}, log)
	defer mgr.Close()

	var exporter server.Exporter
	if cfg.Storage != nil {
		store, err := minio.New(ctx, &filestore.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Region:    cfg.Storage.Region,
			Bucket:    cfg.Storage.Bucket,
		})
		if err != nil {
			return err
		}
		defer store.Close()
		exporter = export.New(store, cfg.Storage.Bucket, log)
	}

	srv := server.New(cfg, mgr, exporter, log)
	httpServer := &http.Server{
		Addr:              listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.With().Str("addr", listen).Int("databases", len(cfg.Databases)).Logger().
			Info("dbexplorer listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	return nil
}
