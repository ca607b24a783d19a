package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohammadpnp/candidate-import/internal/bootstrap"
	"github.com/mohammadpnp/candidate-import/internal/config"
	"github.com/mohammadpnp/candidate-import/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(logging.Options{}).Fatalf("load config: %v", err)
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logging.Component(logger, "api")

	db, pool, err := bootstrap.OpenDatabase(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer bootstrap.CloseDatabase(db, pool)

	components, err := bootstrap.BuildComponents(context.Background(), cfg, db, pool, logging.Component(logger, "bulk_import"))
	if err != nil {
		log.Fatalf("build components: %v", err)
	}
	defer components.Close()

	server := bootstrap.NewHTTPServer(components.Handler, bootstrap.HTTPOptions{
		BodyLimit:      cfg.MaxUploadSize,
		MetricsEnabled: cfg.MetricsEnabled,
	})

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	components.Start(workerCtx)

	go func() {
		if err := server.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}

	stopWorkers()
	components.Wait()
}
