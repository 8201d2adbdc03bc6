package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"

	pstrings "metapanel/pkg/platform/strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "METAPANEL_"

// Feed kinds.
const (
	FeedStdin = "stdin"
	FeedFile  = "file"
	FeedRedis = "redis"
	FeedKafka = "kafka"
	FeedNone  = "none"
)

var feedKinds = []string{FeedStdin, FeedFile, FeedRedis, FeedKafka, FeedNone}

// ErrHelp is returned by Load when --help was given.
var ErrHelp = pflag.ErrHelp

// Duration reads TOML strings such as "5s".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the process configuration. Sources are applied in order:
// defaults, the TOML file, METAPANEL_* environment, command-line flags.
type Config struct {
	Server Server      `toml:"server"`
	Log    Log         `toml:"log"`
	Feed   Feed        `toml:"feed"`
	Redis  RedisConfig `toml:"redis"`
	Kafka  KafkaConfig `toml:"kafka"`

	// Panels restricts the mounted panels by tag. Empty mounts all.
	Panels []string `toml:"panels"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string   `toml:"addr"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	StreamBuffer    int      `toml:"stream_buffer"`

	// MetadataLimit caps metadata posts per session within MetadataWindow.
	// Zero disables the limit.
	MetadataLimit  int      `toml:"metadata_limit"`
	MetadataWindow Duration `toml:"metadata_window"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Feed selects where metadata events come from.
type Feed struct {
	Kind string `toml:"kind"`
	File string `toml:"file"`
}

type RedisConfig struct {
	URL          string   `toml:"url"`
	Channel      string   `toml:"channel"`
	PoolSize     int      `toml:"pool_size"`
	MinIdleConns int      `toml:"min_idle_conns"`
	DialTimeout  Duration `toml:"dial_timeout"`
}

type KafkaConfig struct {
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
	Group   string   `toml:"group"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8073",
			ShutdownTimeout: Duration(10 * time.Second),
			StreamBuffer:    64,
			MetadataLimit:   100,
			MetadataWindow:  Duration(time.Second),
		},
		Log:  Log{Level: "info", Format: "text"},
		Feed: Feed{Kind: FeedNone},
		Redis: RedisConfig{
			Channel:     "metapanel:metadata",
			PoolSize:    10,
			DialTimeout: Duration(5 * time.Second),
		},
		Kafka: KafkaConfig{Topic: "metapanel.metadata"},
	}
}

// Load builds the configuration for a binary named name from args and the
// environment lookup getenv.
func Load(name string, args []string, getenv func(string) string) (Config, error) {
	cfg := Default()

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	path := fs.String("config", "", "path to a TOML config file")
	fs.String("addr", cfg.Server.Addr, "HTTP listen address")
	fs.String("log-level", cfg.Log.Level, "log level: debug, info, warn, error")
	fs.String("log-format", cfg.Log.Format, "log format: text or json")
	fs.String("feed", cfg.Feed.Kind, "metadata feed: "+strings.Join(feedKinds, ", "))
	fs.String("feed-file", "", "file read by the file feed")
	fs.String("redis-url", "", "redis URL for the redis feed")
	fs.String("redis-channel", cfg.Redis.Channel, "redis pub/sub channel")
	fs.StringSlice("kafka-brokers", nil, "kafka seed brokers")
	fs.String("kafka-topic", cfg.Kafka.Topic, "kafka topic")
	fs.String("kafka-group", "", "kafka consumer group")
	fs.StringSlice("panels", nil, "panel tags to mount (default all)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *path != "" {
		if err := loadToml(*path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	applyFlags(&cfg, fs)

	cfg.Panels = pstrings.DedupeAndTrimLower(cfg.Panels)
	cfg.Kafka.Brokers = pstrings.DedupeAndTrim(cfg.Kafka.Brokers)
	cfg.Feed.Kind = strings.ToLower(strings.TrimSpace(cfg.Feed.Kind))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, out *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if getenv == nil {
		return nil
	}
	str := func(key string, dst *string) {
		if v := getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v := getenv(EnvPrefix + key); v != "" {
			*dst = strings.Split(v, ",")
		}
	}
	str("ADDR", &cfg.Server.Addr)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("FEED", &cfg.Feed.Kind)
	str("FEED_FILE", &cfg.Feed.File)
	str("REDIS_URL", &cfg.Redis.URL)
	str("REDIS_CHANNEL", &cfg.Redis.Channel)
	str("KAFKA_TOPIC", &cfg.Kafka.Topic)
	str("KAFKA_GROUP", &cfg.Kafka.Group)
	list("KAFKA_BROKERS", &cfg.Kafka.Brokers)
	list("PANELS", &cfg.Panels)

	if v := getenv(EnvPrefix + "REDIS_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sREDIS_POOL_SIZE: %w", EnvPrefix, err)
		}
		cfg.Redis.PoolSize = n
	}
	return nil
}

// applyFlags copies only the flags given on the command line, so unset
// flags never mask the file or the environment.
func applyFlags(cfg *Config, fs *pflag.FlagSet) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Server.Addr = f.Value.String()
		case "log-level":
			cfg.Log.Level = f.Value.String()
		case "log-format":
			cfg.Log.Format = f.Value.String()
		case "feed":
			cfg.Feed.Kind = f.Value.String()
		case "feed-file":
			cfg.Feed.File = f.Value.String()
		case "redis-url":
			cfg.Redis.URL = f.Value.String()
		case "redis-channel":
			cfg.Redis.Channel = f.Value.String()
		case "kafka-brokers":
			cfg.Kafka.Brokers, _ = fs.GetStringSlice(f.Name)
		case "kafka-topic":
			cfg.Kafka.Topic = f.Value.String()
		case "kafka-group":
			cfg.Kafka.Group = f.Value.String()
		case "panels":
			cfg.Panels, _ = fs.GetStringSlice(f.Name)
		}
	})
}

// Validate checks that the selected feed has what it needs.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server addr is required"))
	}
	if !slices.Contains(feedKinds, c.Feed.Kind) {
		errs = append(errs, fmt.Errorf("unknown feed %q", c.Feed.Kind))
	}
	switch c.Feed.Kind {
	case FeedFile:
		if c.Feed.File == "" {
			errs = append(errs, errors.New("file feed requires a feed file"))
		}
	case FeedRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("redis feed requires a redis url"))
		}
	case FeedKafka:
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("kafka feed requires brokers"))
		}
	}
	if c.Server.MetadataLimit < 0 || (c.Server.MetadataLimit > 0 && c.Server.MetadataWindow <= 0) {
		errs = append(errs, errors.New("metadata limit needs a positive window"))
	}
	if c.Server.StreamBuffer <= 0 {
		errs = append(errs, errors.New("stream buffer must be positive"))
	}
	return errors.Join(errs...)
}
