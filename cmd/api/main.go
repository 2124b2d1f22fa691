package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"festive-study/internal/api"
	"festive-study/internal/config"
	"festive-study/internal/data"
	"festive-study/internal/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("api: %v", err)
	}
}

func run() error {
	srvCfg, err := config.LoadServer()
	if err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	sink, err := logging.New(logging.Options{File: srvCfg.LogFile, Verbose: !srvCfg.Production()})
	if err != nil {
		return err
	}
	defer sink.Close()

	cfg, err := config.Load(srvCfg.ConfigFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if srvCfg.DataDir != "" {
		cfg.DataDir = srvCfg.DataDir
	}

	if srvCfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = sink.Output

	store := data.NewRunStore(srvCfg.RunTTL, 0)
	defer store.Close()

	router := api.NewRouter(api.Options{
		Config:    cfg,
		Store:     store,
		Logger:    sink.Logger,
		StaticDir: srvCfg.StaticDir,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return api.Serve(ctx, router, ":"+srvCfg.Port, sink.Logger)
}
