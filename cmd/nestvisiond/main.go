package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/yeldaryernazarov/NestVision/internal/catalog"
	"github.com/yeldaryernazarov/NestVision/internal/config"
	"github.com/yeldaryernazarov/NestVision/internal/daemon"
	"github.com/yeldaryernazarov/NestVision/internal/feed"
	"github.com/yeldaryernazarov/NestVision/internal/ingest"
	"github.com/yeldaryernazarov/NestVision/internal/logging"
	"github.com/yeldaryernazarov/NestVision/internal/scanner"
)

func main() {
	configFlag := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := catalog.Open(cfg)
	if err != nil {
		logger.Error("open catalog", logging.Error(err))
		return
	}

	client, err := feed.New(cfg, logger)
	if err != nil {
		store.Close()
		logger.Error("connect feed", logging.Error(err))
		return
	}

	detector := ingest.NewDetector(store)
	materializer := ingest.NewMaterializer(client, cfg, logger)
	pipeline := ingest.NewPipeline(store, detector, materializer, logger)
	poller := ingest.NewPoller(cfg, client, pipeline, logger)
	sc := scanner.New(cfg, store, detector, logger)

	d, err := daemon.New(cfg, store, poller, pipeline, sc, client.BotInfo().Username, logger)
	if err != nil {
		store.Close()
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("nestvisiond shutting down")
}
