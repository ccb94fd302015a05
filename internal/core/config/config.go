package config

import (
	"github.com/liulifox233/tracker-collector/internal/core/logs"
	"time"
)

type Aria2Config struct {
	// Scheme picks the rpc transport: http(s) means POST, ws(s) means
	// a websocket exchange.
	Url    string `yaml:"url" validate:"omitempty,uri"`
	Secret string `yaml:"secret"`
}

func (c Aria2Config) Default() *Aria2Config {
	return &Aria2Config{
		Url:    "",
		Secret: "",
	}
}

type ServerConfig struct {
	Port              int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout       time.Duration `yaml:"readTimeout"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
	WriteTimeout      time.Duration `yaml:"writeTimeout"`
	IdleTimeout       time.Duration `yaml:"idleTimeout"`
	MaxHeaderBytes    int           `yaml:"maxHeaderBytes"`
}

func (c ServerConfig) Default() *ServerConfig {
	return &ServerConfig{
		Port:              8080,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
		MaxHeaderBytes:    1 << 15,
	}
}

type SyncConfig struct {
	Interval time.Duration `yaml:"interval" validate:"min=1000000000"`
}

func (c SyncConfig) Default() *SyncConfig {
	return &SyncConfig{
		Interval: 12 * time.Hour,
	}
}

type CollectorConfig struct {
	// Trackers mixes literal announce URLs with URLs of remote lists,
	// entries ending in "announce" are used as-is, the rest are fetched.
	Trackers []string        `yaml:"trackers" validate:"required,min=1,dive,required"`
	Aria2    *Aria2Config    `yaml:"aria2" validate:"required"`
	Server   *ServerConfig   `yaml:"server" validate:"required"`
	Sync     *SyncConfig     `yaml:"sync" validate:"required"`
	Log      *logs.LogConfig `yaml:"log" validate:"required"`
}

func (c CollectorConfig) Default() *CollectorConfig {
	return &CollectorConfig{
		Trackers: []string{
			"udp://tracker.opentrackr.org:1337/announce",
			"https://raw.githubusercontent.com/ngosang/trackerslist/master/trackers_best.txt",
		},
		Aria2:  Aria2Config{}.Default(),
		Server: ServerConfig{}.Default(),
		Sync:   SyncConfig{}.Default(),
		Log:    logs.LogConfig{}.Default(),
	}
}
