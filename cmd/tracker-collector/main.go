package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/liulifox233/tracker-collector/internal/core/config"
	"github.com/liulifox233/tracker-collector/internal/core/logs"
	"github.com/liulifox233/tracker-collector/internal/core/syncmanager"
	"github.com/liulifox233/tracker-collector/internal/core/trackers"
	"github.com/liulifox233/tracker-collector/internal/web"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	var (
		configDir string
		port      int
		noSync    bool
	)

	flagSet := flag.NewFlagSet("tracker-collector", flag.ContinueOnError)

	currentWorkingDir, _ := os.Getwd()
	flagSet.StringVar(&configDir, "dir", currentWorkingDir, "Working directory (the one containing config.yml)")
	flagSet.IntVar(&port, "port", 0, "Override the http port from the config file")
	flagSet.BoolVar(&noSync, "no-sync", false, "Serve the tracker list without pushing it to aria2")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		panic(err)
	}

	log := logs.GetLogger()

	configLoader, err := config.NewConfigLoader(configDir)
	if err != nil {
		log.Fatal("failed to create config loader", zap.Error(err))
	}
	conf, err := configLoader.LoadConfigAndInitIfNeeded()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}
	if err := logs.ReplaceLogger(conf.Log); err != nil {
		log.Error("failed to apply log config, keeping defaults", zap.Error(err))
	}
	log = logs.GetLogger()

	if port > 0 {
		conf.Server.Port = port
	}
	store := config.NewStore(conf)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	fetcher := trackers.NewFetcher(httpClient)

	server := web.NewServer(store, fetcher)
	if err := server.Start(); err != nil {
		log.Fatal("failed to start web server", zap.Error(err))
	}

	var syncManager syncmanager.ISyncManager
	if noSync {
		log.Info("aria2 sync is disabled")
	} else {
		syncManager = syncmanager.NewSyncManager(configLoader, store, fetcher, httpClient)
		if err := syncManager.Start(); err != nil {
			log.Fatal("failed to start sync manager", zap.Error(err))
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	log.Info(fmt.Sprintf("received signal %s, shutting down", sig))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if syncManager != nil {
		syncManager.Stop(ctx)
	}
	server.Shutdown(ctx)
}
