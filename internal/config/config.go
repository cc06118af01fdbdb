package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AppConfig is the resolved runtime configuration.
type AppConfig struct {
	Service  ServiceConfig  `mapstructure:"service"`
	AI       AIConfig       `mapstructure:"ai"`
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	Mirror   MirrorConfig   `mapstructure:"mirror"`
	Messages MessagesConfig `mapstructure:"messages"`
}

// ServiceConfig points at the remote game service.
type ServiceConfig struct {
	BaseURL  string            `mapstructure:"base_url"`
	Timeout  time.Duration     `mapstructure:"timeout"`
	MaxConns int               `mapstructure:"max_conns"`
	Headers  map[string]string `mapstructure:"headers"`
}

type AIConfig struct {
	DefaultDepth int `mapstructure:"default_depth"`
}

// BridgeConfig configures the websocket bridge.
type BridgeConfig struct {
	Addr      string   `mapstructure:"addr"`
	SendImage bool     `mapstructure:"send_image"`
	Origins   []string `mapstructure:"origins"`
}

// MirrorConfig enables the Redis render mirror when RedisURL is set.
type MirrorConfig struct {
	RedisURL string `mapstructure:"redis_url"`
	Channel  string `mapstructure:"channel"`
}

type MessagesConfig struct {
	Dir string `mapstructure:"dir"`
}

var ErrMissingBaseURL = errors.New("config: service.base_url is required")

// flag name -> config key
var flagKeys = map[string]string{
	"base-url":   "service.base_url",
	"timeout":    "service.timeout",
	"depth":      "ai.default_depth",
	"addr":       "bridge.addr",
	"send-image": "bridge.send_image",
	"origin":     "bridge.origins",
	"redis-url":  "mirror.redis_url",
	"messages":   "messages.dir",
}

// Load reads configuration from an optional yaml file, OWARE_* env vars and
// the given flags, in increasing precedence. flags may be nil.
func Load(flags *pflag.FlagSet) (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("service.base_url", "")
	v.SetDefault("service.timeout", time.Duration(0))
	v.SetDefault("service.max_conns", 16)
	v.SetDefault("service.headers", map[string]string{})
	v.SetDefault("ai.default_depth", 3)
	v.SetDefault("bridge.addr", ":8090")
	v.SetDefault("bridge.send_image", false)
	v.SetDefault("bridge.origins", []string{})
	v.SetDefault("mirror.redis_url", "")
	v.SetDefault("mirror.channel", "oware:render")
	v.SetDefault("messages.dir", "")

	v.SetConfigType("yaml")
	if p := os.Getenv("OWARE_CONFIG"); p != "" {
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", p, err)
		}
	}

	v.SetEnvPrefix("OWARE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var c AppConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Service.BaseURL = strings.TrimRight(strings.TrimSpace(c.Service.BaseURL), "/")
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *AppConfig) Validate() error {
	if c.Service.BaseURL == "" {
		return ErrMissingBaseURL
	}
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("config: service.base_url %q is not an http(s) origin", c.Service.BaseURL)
	}
	if c.Service.Timeout < 0 {
		return fmt.Errorf("config: service.timeout must not be negative")
	}
	return nil
}
