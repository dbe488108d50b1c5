// Package config loads foodbot settings from defaults, an optional config
// file, FOODBOT_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "FOODBOT"

const (
	BrainMemory = "memory"
	BrainPebble = "pebble"
	BrainRedis  = "redis"
	BrainFile   = "file"

	EventsNone    = "none"
	EventsKafkaGo = "kafka-go"
	EventsSarama  = "sarama"
)

type Config struct {
	Bot     BotConfig     `mapstructure:"bot"`
	Log     LogConfig     `mapstructure:"log"`
	Brain   BrainConfig   `mapstructure:"brain"`
	GRPC    GRPCConfig    `mapstructure:"grpc"`
	Events  EventsConfig  `mapstructure:"events"`
	Command CommandConfig `mapstructure:"command"`
}

type BotConfig struct {
	Name string `mapstructure:"name"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Production bool   `mapstructure:"production"`
}

type BrainConfig struct {
	Driver string            `mapstructure:"driver"`
	Pebble PebbleBrainConfig `mapstructure:"pebble"`
	Redis  RedisBrainConfig  `mapstructure:"redis"`
	File   FileBrainConfig   `mapstructure:"file"`
}

type PebbleBrainConfig struct {
	Dir string `mapstructure:"dir"`
}

type RedisBrainConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type FileBrainConfig struct {
	Dir string `mapstructure:"dir"`
}

type GRPCConfig struct {
	Addr string `mapstructure:"addr"`
}

type EventsConfig struct {
	Driver     string        `mapstructure:"driver"`
	Brokers    []string      `mapstructure:"brokers"`
	Topic      string        `mapstructure:"topic"`
	OutboxDir  string        `mapstructure:"outbox_dir"`
	Interval   time.Duration `mapstructure:"interval"`
	MaxRetries uint32        `mapstructure:"max_retries"`
}

type CommandConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.name", "foodbot")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.production", false)
	v.SetDefault("brain.driver", BrainPebble)
	v.SetDefault("brain.pebble.dir", "./data/brain")
	v.SetDefault("brain.redis.addr", "localhost:6379")
	v.SetDefault("brain.redis.password", "")
	v.SetDefault("brain.redis.db", 0)
	v.SetDefault("brain.file.dir", "./data/snapshot")
	v.SetDefault("grpc.addr", ":50051")
	v.SetDefault("events.driver", EventsNone)
	v.SetDefault("events.brokers", []string{"localhost:9092"})
	v.SetDefault("events.topic", "foodbot.orders")
	v.SetDefault("events.outbox_dir", "./data/outbox")
	v.SetDefault("events.interval", 250*time.Millisecond)
	v.SetDefault("events.max_retries", 5)
	v.SetDefault("command.timeout", 5*time.Second)
}

// Flags registers the overrides accepted on the command line.
func Flags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file (yaml, json or toml)")
	fs.String("bot.name", "", "name the bot answers to")
	fs.String("log.level", "", "debug, info, warn or error")
	fs.String("brain.driver", "", "memory, pebble, redis or file")
	fs.String("grpc.addr", "", "gRPC listen address")
	fs.String("events.driver", "", "none, kafka-go or sarama")
}

// Load reads configuration. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := ""
	if fs != nil {
		path, _ = fs.GetString("config")
		if err := bindChanged(v, fs); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("foodbot")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindChanged binds only flags set explicitly, so empty flag defaults do not
// shadow env and file values.
func bindChanged(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil || f.Name == "config" {
			return
		}
		err = v.BindPFlag(f.Name, f)
	})
	return err
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Bot.Name) == "" {
		return errors.New("config: bot.name is required")
	}

	switch c.Brain.Driver {
	case BrainMemory:
	case BrainPebble:
		if c.Brain.Pebble.Dir == "" {
			return errors.New("config: brain.pebble.dir is required")
		}
	case BrainRedis:
		if c.Brain.Redis.Addr == "" {
			return errors.New("config: brain.redis.addr is required")
		}
	case BrainFile:
		if c.Brain.File.Dir == "" {
			return errors.New("config: brain.file.dir is required")
		}
	default:
		return fmt.Errorf("config: unknown brain.driver %q", c.Brain.Driver)
	}

	switch c.Events.Driver {
	case EventsNone:
	case EventsKafkaGo, EventsSarama:
		if len(c.Events.Brokers) == 0 {
			return errors.New("config: events.brokers is required")
		}
		if c.Events.Topic == "" {
			return errors.New("config: events.topic is required")
		}
		if c.Events.OutboxDir == "" {
			return errors.New("config: events.outbox_dir is required")
		}
		if c.Events.Interval <= 0 {
			return errors.New("config: events.interval must be positive")
		}
	default:
		return fmt.Errorf("config: unknown events.driver %q", c.Events.Driver)
	}

	if c.Command.Timeout <= 0 {
		return errors.New("config: command.timeout must be positive")
	}
	return nil
}
