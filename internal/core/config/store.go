package config

import "sync"

// Store holds the currently active config so the web server and the
// sync manager observe reloads without restarting. Reads vastly
// outnumber writes (one write per config file change).
type Store struct {
	lock sync.RWMutex
	conf *CollectorConfig
}

func NewStore(conf *CollectorConfig) *Store {
	return &Store{conf: conf}
}

func (s *Store) Get() *CollectorConfig {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.conf
}

func (s *Store) Replace(conf *CollectorConfig) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.conf = conf
}

func (s *Store) Trackers() []string {
	return s.Get().Trackers
}
