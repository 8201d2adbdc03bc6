package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
	env map[string]string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) SetupTest() {
	s.env = map[string]string{}
}

func (s *ConfigSuite) getenv(key string) string {
	return s.env[key]
}

func (s *ConfigSuite) writeFile(body string) string {
	path := filepath.Join(s.T().TempDir(), "metapanel.toml")
	s.Require().NoError(os.WriteFile(path, []byte(body), 0o600))
	return path
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := Load("server", nil, s.getenv)
	s.Require().NoError(err)
	s.Equal(Default(), cfg)
	s.Equal(FeedNone, cfg.Feed.Kind)
}

func (s *ConfigSuite) TestFileEnvAndFlagsLayerInOrder() {
	path := s.writeFile(`
panels = ["DMR", "ysf", "dmr"]

[server]
addr = ":9000"
shutdown_timeout = "3s"

[log]
level = "debug"

[feed]
kind = "redis"

[redis]
url = "redis://file:6379/0"
channel = "from-file"
`)
	s.env["METAPANEL_REDIS_URL"] = "redis://env:6379/0"
	s.env["METAPANEL_LOG_FORMAT"] = "json"

	cfg, err := Load("server", []string{"--config", path, "--redis-channel", "from-flag"}, s.getenv)
	s.Require().NoError(err)

	s.Equal(":9000", cfg.Server.Addr)
	s.Equal(Duration(3*time.Second), cfg.Server.ShutdownTimeout)
	s.Equal("debug", cfg.Log.Level)
	s.Equal("json", cfg.Log.Format)
	s.Equal("redis://env:6379/0", cfg.Redis.URL)
	s.Equal("from-flag", cfg.Redis.Channel)
	s.Equal([]string{"dmr", "ysf"}, cfg.Panels)
}

func (s *ConfigSuite) TestUnsetFlagsDoNotMaskEnvironment() {
	s.env["METAPANEL_ADDR"] = ":7000"
	cfg, err := Load("server", []string{"--log-level", "warn"}, s.getenv)
	s.Require().NoError(err)
	s.Equal(":7000", cfg.Server.Addr)
	s.Equal("warn", cfg.Log.Level)
}

func (s *ConfigSuite) TestKafkaSettings() {
	s.env["METAPANEL_KAFKA_BROKERS"] = "k1:9092, k2:9092,k1:9092"
	cfg, err := Load("server", []string{"--feed", "KAFKA", "--kafka-group", "viewers"}, s.getenv)
	s.Require().NoError(err)
	s.Equal(FeedKafka, cfg.Feed.Kind)
	s.Equal([]string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	s.Equal("viewers", cfg.Kafka.Group)

	cfg, err = Load("server", []string{"--feed", "kafka", "--kafka-brokers", "a:1,b:2"}, nil)
	s.Require().NoError(err)
	s.Equal([]string{"a:1", "b:2"}, cfg.Kafka.Brokers)
}

func (s *ConfigSuite) TestValidation() {
	cases := map[string][]string{
		"unknown feed":       {"--feed", "carrier-pigeon"},
		"file without path":  {"--feed", "file"},
		"redis without url":  {"--feed", "redis"},
		"kafka without list": {"--feed", "kafka"},
		"empty addr":         {"--addr", " "},
	}
	for name, args := range cases {
		s.Run(name, func() {
			_, err := Load("server", args, s.getenv)
			s.Error(err)
		})
	}
}

func (s *ConfigSuite) TestBadInputs() {
	s.Run("unreadable file", func() {
		_, err := Load("server", []string{"--config", "/does/not/exist.toml"}, s.getenv)
		s.Error(err)
	})
	s.Run("malformed toml", func() {
		_, err := Load("server", []string{"--config", s.writeFile("[server\naddr=")}, s.getenv)
		s.Error(err)
	})
	s.Run("bad duration", func() {
		_, err := Load("server", []string{"--config", s.writeFile("[server]\nshutdown_timeout = \"soon\"\n")}, s.getenv)
		s.Error(err)
	})
	s.Run("bad pool size", func() {
		s.env["METAPANEL_REDIS_POOL_SIZE"] = "many"
		_, err := Load("server", nil, s.getenv)
		s.Error(err)
	})
	s.Run("unknown flag", func() {
		_, err := Load("server", []string{"--frequency", "145.5"}, s.getenv)
		s.Error(err)
	})
}

func TestHelpIsReported(t *testing.T) {
	_, err := Load("server", []string{"--help"}, nil)
	require.ErrorIs(t, err, ErrHelp)
}

func TestDurationText(t *testing.T) {
	text, err := Duration(1500 * time.Millisecond).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", string(text))
}
