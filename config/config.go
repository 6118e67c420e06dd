package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type HistoryConfig struct {
	Size int `mapstructure:"size"`
}

type StatsConfig struct {
	UpdateInterval time.Duration `mapstructure:"update_interval"`
}

type DetectionConfig struct {
	ThresholdPercent float64 `mapstructure:"threshold_percent"`
}

type SourceConfig struct {
	Mode       string `mapstructure:"mode"`
	TargetRate int    `mapstructure:"target_rate"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	StreamInterval  time.Duration `mapstructure:"stream_interval"`
	MetricsInterval time.Duration `mapstructure:"metrics_interval"`
}

type NotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	History   HistoryConfig   `mapstructure:"history"`
	Stats     StatsConfig     `mapstructure:"stats"`
	Detection DetectionConfig `mapstructure:"detection"`
	Source    SourceConfig    `mapstructure:"source"`
	Server    ServerConfig    `mapstructure:"server"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`

	v *viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("history.size", 120)
	v.SetDefault("stats.update_interval", "500ms")
	v.SetDefault("detection.threshold_percent", 15.0)
	v.SetDefault("source.mode", "loop")
	v.SetDefault("source.target_rate", 60)
	v.SetDefault("server.addr", ":9180")
	v.SetDefault("server.stream_interval", "500ms")
	v.SetDefault("server.metrics_interval", "1s")
	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "fpsmon:drops")
	v.SetDefault("log.level", "info")
}

// Load reads the YAML config at path. A missing file is not an error: the
// daemon then runs entirely on defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		log.Printf("config file %s not found, using defaults", path)
	}

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Watch re-reads the file on change and hands fn a freshly unmarshalled
// Config. A malformed edit is logged and skipped, keeping the last good
// values live.
func (c *Config) Watch(fn func(*Config)) {
	c.v.OnConfigChange(func(fsnotify.Event) {
		fresh := &Config{v: c.v}
		if err := c.v.Unmarshal(fresh); err != nil {
			log.Printf("config reload failed: %v", err)
			return
		}
		fn(fresh)
	})
	c.v.WatchConfig()
}
