// Command bot runs the Telegram file-share link bot and its HTTP
// health sidecar.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Mraprguild8133/filelinkbot/bot"
	"github.com/Mraprguild8133/filelinkbot/config"
	"github.com/Mraprguild8133/filelinkbot/store"
	"github.com/Mraprguild8133/filelinkbot/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("setup logger: %s", err)
	}
	defer logger.Sync()

	st, err := store.Open(store.Options{
		Backend:    cfg.StorageBackend,
		Path:       cfg.StoragePath,
		MaxRecords: cfg.MemoryMaxRecords,
		CacheSize:  cfg.CacheSize,
	})
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer st.Close()

	srv := web.New(st, logger)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.Run(cfg.HTTPAddr); err != nil {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	b, err := bot.New(cfg, st, logger)
	if err != nil {
		logger.Fatal("start bot", zap.Error(err))
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Info("shutting down")
		b.Stop()
	}()

	logger.Info("bot started",
		zap.String("username", b.Username()),
		zap.String("backend", cfg.StorageBackend))
	b.Start()
}
