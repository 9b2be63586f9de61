package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ranxi2001/Fluctuate-Portfolio/config"
	"github.com/ranxi2001/Fluctuate-Portfolio/internal"
	"github.com/ranxi2001/Fluctuate-Portfolio/pkg/log"
)

func main() {
	log.Info("main: starting service")

	cfg := config.Load()

	services, err := internal.New(cfg)
	if err != nil {
		log.Error("init error:", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services.Prices.Start(ctx)
	log.Info("main: price feeds started")

	if services.Notifier != nil {
		go services.Notifier.Run()
	}

	// Graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Shutting down...")

	cancel()
	services.Prices.Stop()
	if services.Notifier != nil {
		services.Notifier.Stop()
	}
}
