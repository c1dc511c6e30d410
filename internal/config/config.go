// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"gifts-buyer/internal/domain/model"
)

type RuntimeConfig struct {
	Dev  bool
	Path string
}

type BotConfig struct {
	Token            string  `yaml:"token"`
	Workers          int     `yaml:"workers"`  // polling workers
	Language         string  `yaml:"language"` // en | ru
	Operators        []int64 `yaml:"operators"`
	CommandRateLimit int     `yaml:"command_rate_limit"` // per operator per minute, 0 disables
}

type ChannelConfig struct {
	ID            string        `yaml:"id"` // -100123 | @name
	SendTimeout   time.Duration `yaml:"send_timeout"`
	RatePerSecond float64       `yaml:"rate_per_second"`

	Destination model.Destination `yaml:"-"`
}

type GiftsConfig struct {
	Ranges                 string        `yaml:"ranges"`
	Interval               time.Duration `yaml:"interval"`
	PurchaseOnlyUpgradable bool          `yaml:"purchase_only_upgradable"`
	PrioritizeLowSupply    bool          `yaml:"prioritize_low_supply"`
	DryRun                 bool          `yaml:"dry_run"` // log purchases instead of sending them
}

type SessionConfig struct {
	Backend string        `yaml:"backend"` // memory | redis
	TTL     time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	Channel ChannelConfig `yaml:"channel"`
	Gifts   GiftsConfig   `yaml:"gifts"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
	Admin   AdminConfig   `yaml:"admin"`
	Redis   RedisConfig   `yaml:"redis"`

	Runtime RuntimeConfig `yaml:"-"`
}

// envOverrides are applied after the YAML file so secrets can stay out of it.
type envOverrides struct {
	BotToken      string `envconfig:"BOT_TOKEN"`
	ChannelID     string `envconfig:"CHANNEL_ID"`
	RedisURL      string `envconfig:"REDIS_URL"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	LogLevel      string `envconfig:"LOG_LEVEL"`
	AdminPort     int    `envconfig:"ADMIN_PORT"`
}

const envPrefix = "GIFTS"

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// .env is optional
	_ = godotenv.Load()
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	cfg.applyEnv(env)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.Channel.Destination = ParseDestination(cfg.Channel.ID)
	cfg.Runtime.Dev = dev
	cfg.Runtime.Path = path
	return &cfg, nil
}

func (c *Config) applyEnv(env envOverrides) {
	if env.BotToken != "" {
		c.Bot.Token = env.BotToken
	}
	if env.ChannelID != "" {
		c.Channel.ID = env.ChannelID
	}
	if env.RedisURL != "" {
		c.Redis.URL = env.RedisURL
	}
	if env.RedisPassword != "" {
		c.Redis.Password = env.RedisPassword
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.AdminPort != 0 {
		c.Admin.Port = env.AdminPort
	}
}

func (c *Config) applyDefaults() {
	if c.Bot.Workers <= 0 {
		c.Bot.Workers = 1
	}
	c.Bot.Language = strings.ToLower(strings.TrimSpace(c.Bot.Language))
	if c.Bot.Language == "" {
		c.Bot.Language = "en"
	}
	if c.Bot.CommandRateLimit < 0 {
		c.Bot.CommandRateLimit = 0
	}
	if c.Channel.SendTimeout <= 0 {
		c.Channel.SendTimeout = 5 * time.Second
	}
	if c.Channel.RatePerSecond <= 0 {
		c.Channel.RatePerSecond = 20
	}
	if c.Gifts.Interval <= 0 {
		c.Gifts.Interval = 15 * time.Second
	}
	c.Session.Backend = strings.ToLower(strings.TrimSpace(c.Session.Backend))
	if c.Session.Backend == "" {
		c.Session.Backend = "memory"
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = 15 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) validate() error {
	if c.Bot.Token == "" {
		return errors.New("bot.token is required")
	}
	switch c.Bot.Language {
	case "en", "ru":
	default:
		return fmt.Errorf("bot.language %q is not supported", c.Bot.Language)
	}
	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("redis.url is required when session.backend is redis")
		}
	default:
		return fmt.Errorf("session.backend %q is not supported", c.Session.Backend)
	}
	return nil
}

// ParseDestination interprets the channel id setting. Empty values and the bare "-100"
// placeholder mean no monitoring destination.
func ParseDestination(raw string) model.Destination {
	v := strings.TrimSpace(raw)
	if v == "" || v == "-100" {
		return model.Destination{}
	}
	if strings.HasPrefix(v, "@") {
		return model.Destination{Username: v}
	}
	if id, err := strconv.ParseInt(v, 10, 64); err == nil {
		return model.Destination{ChatID: id}
	}
	return model.Destination{Username: "@" + v}
}
