package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nferro/embeddingd/internal/app"
	"github.com/nferro/embeddingd/internal/config"
	"github.com/nferro/embeddingd/internal/httpserver"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.Options{})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	container, err := app.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("build container: %v", err)
	}
	if container.Observability != nil {
		defer container.Observability.Shutdown(ctx)
	}

	// The model must be loaded before the listener opens: a request can
	// never observe a half-initialized handle, and a broken artifact
	// keeps the process from starting at all.
	if err := container.Model.Open(ctx); err != nil {
		log.Fatalf("load embedding model: %v", err)
	}

	server, err := httpserver.New(container)
	if err != nil {
		log.Fatalf("construct server: %v", err)
	}

	if err := server.Listen(ctx); err != nil && err != context.Canceled {
		log.Fatalf("server stopped: %v", err)
	}
}
