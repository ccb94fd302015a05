package syncmanager

import (
	"context"
	"fmt"
	"github.com/anthonyraymond/watcher"
	"github.com/liulifox233/tracker-collector/internal/core/aria2"
	"github.com/liulifox233/tracker-collector/internal/core/config"
	"github.com/liulifox233/tracker-collector/internal/core/logs"
	"github.com/liulifox233/tracker-collector/internal/core/trackers"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"net/http"
	"time"
)

type ISyncManager interface {
	Start() error
	Stop(ctx context.Context)
}

// newRpcClient is swapped in tests.
var newRpcClient = aria2.NewClient

type syncManager struct {
	configLoader  config.IConfigLoader
	store         *config.Store
	fetcher       trackers.IFetcher
	httpClient    *http.Client
	running       *atomic.Bool
	runCount      *atomic.Int64
	failureCount  *atomic.Int64
	configWatcher *watcher.Watcher
	quit          chan struct{}
}

func NewSyncManager(configLoader config.IConfigLoader, store *config.Store, fetcher trackers.IFetcher, httpClient *http.Client) ISyncManager {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &syncManager{
		configLoader: configLoader,
		store:        store,
		fetcher:      fetcher,
		httpClient:   httpClient,
		running:      atomic.NewBool(false),
		runCount:     atomic.NewInt64(0),
		failureCount: atomic.NewInt64(0),
		quit:         make(chan struct{}),
	}
}

// Start launches the periodic sync loop and a watcher on the config
// file. A config write reloads it and triggers an immediate
// out-of-cycle sync.
func (m *syncManager) Start() error {
	log := logs.GetLogger()

	configWatcher := watcher.New()
	configWatcher.FilterOps(watcher.Write, watcher.Create)
	if err := configWatcher.Add(m.configLoader.ConfigFilePath()); err != nil {
		log.Warn("sync manager: failed to watch config file, live reload disabled", zap.Error(err))
		configWatcher = nil
	}
	m.configWatcher = configWatcher

	go func() {
		interval := m.store.Get().Sync.Interval
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info(fmt.Sprintf("sync manager: started, syncing every %s", interval))
		m.runOnce()

		var watcherEvents chan watcher.Event
		var watcherErrors chan error
		if m.configWatcher != nil {
			watcherEvents = m.configWatcher.Event
			watcherErrors = m.configWatcher.Error
		}

		for {
			select {
			case <-ticker.C:
				m.runOnce()
			case event, ok := <-watcherEvents:
				if !ok {
					// watcher closed, keep the ticker running
					watcherEvents = nil
					continue
				}
				log.Info("sync manager: config file changed, reloading", zap.String("event", event.String()))
				if reloaded := m.reloadConfig(); reloaded {
					ticker.Reset(m.store.Get().Sync.Interval)
					m.runOnce()
				}
			case err, ok := <-watcherErrors:
				if !ok {
					watcherErrors = nil
					continue
				}
				log.Error("sync manager: config watcher failed", zap.Error(err))
			case <-m.quit:
				log.Info("sync manager: stopped",
					zap.Int64("runs", m.runCount.Load()),
					zap.Int64("failures", m.failureCount.Load()),
				)
				return
			}
		}
	}()

	if m.configWatcher != nil {
		go func() {
			if err := m.configWatcher.Start(1 * time.Second); err != nil {
				log.Warn("sync manager: config watcher has stopped", zap.Error(err))
			}
		}()
	}
	return nil
}

// Stop ends the loop before closing the watcher so that the watcher's
// closing channels can never be mistaken for a config change.
func (m *syncManager) Stop(ctx context.Context) {
	close(m.quit)
	if m.configWatcher != nil {
		m.configWatcher.Close()
	}
}

func (m *syncManager) reloadConfig() bool {
	log := logs.GetLogger()
	conf, err := m.configLoader.LoadConfigAndInitIfNeeded()
	if err != nil {
		log.Error("sync manager: failed to reload config, keeping the previous one", zap.Error(err))
		return false
	}
	m.store.Replace(conf)
	return true
}

// runOnce performs one fetch->merge->push cycle. A cycle still in
// flight when the next trigger fires wins, the new trigger is skipped.
func (m *syncManager) runOnce() {
	log := logs.GetLogger()

	if !m.running.CAS(false, true) {
		log.Warn("sync manager: previous sync still running, skipping this one")
		return
	}
	defer m.running.Store(false)
	m.runCount.Inc()

	conf := m.store.Get()

	rpcClient, err := newRpcClient(conf.Aria2.Url, conf.Aria2.Secret, m.httpClient)
	if err != nil {
		m.failureCount.Inc()
		log.Error("sync manager: aria2 is not configured, cannot sync", zap.Error(err))
		return
	}

	ctx := context.Background()
	set, err := m.fetcher.Resolve(ctx, conf.Trackers)
	if err != nil {
		m.failureCount.Inc()
		log.Error("sync manager: failed to resolve trackers, aborting this sync", zap.Error(err))
		return
	}
	log.Info(fmt.Sprintf("sync manager: pushing %d trackers to aria2", set.Len()))

	rpcErr, err := rpcClient.PushTrackers(ctx, set)
	if err != nil {
		m.failureCount.Inc()
		log.Error("sync manager: failed to push trackers to aria2", zap.Error(err))
		return
	}
	if rpcErr != nil {
		// The exchange went through, the daemon just said no. Next
		// scheduled run will try again.
		m.failureCount.Inc()
		log.Error("sync manager: aria2 rejected the tracker list", zap.Int("code", rpcErr.Code), zap.String("message", rpcErr.Message))
	}
}
