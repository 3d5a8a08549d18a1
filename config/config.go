// Package config reads process options from the environment and builds the
// logger shared by the fqbench commands.
package config

import (
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// EnvFiles are loaded, when present, before options are parsed. Variables
// already set in the environment win.
var EnvFiles = []string{".env", ".env.local"}

// Options are the process-wide settings. Command line flags override them.
type Options struct {
	ConfigFile  string `env:"FQBENCH_CONFIG" envDefault:"tools.yaml"`
	WorkDir     string `env:"FQBENCH_WORKDIR"`
	LogLevel    string `env:"FQBENCH_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"FQBENCH_LOG_FORMAT" envDefault:"text"`
	TimeBinary  string `env:"FQBENCH_TIME_BINARY" envDefault:"/usr/bin/time"`
	RedisURL    string `env:"FQBENCH_REDIS_URL"`
	MetricsFile string `env:"FQBENCH_METRICS_FILE"`
}

// LoadEnv loads the env files that exist and returns how many it found.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), errors.Wrap(godotenv.Load(existing...), "loading env files")
}

// Load reads EnvFiles and parses Options from the environment.
func Load() (*Options, error) {
	if _, err := LoadEnv(EnvFiles); err != nil {
		return nil, err
	}
	return Parse()
}

// Parse reads Options from the current environment only.
func Parse() (*Options, error) {
	o := &Options{}
	if err := env.Parse(o); err != nil {
		return nil, errors.Wrap(err, "parsing environment")
	}
	return o, nil
}

// LogrusLogLevel maps LogLevel to a logrus level. Unknown names mean info.
func (o *Options) LogrusLogLevel() logrus.Level {
	switch strings.ToLower(o.LogLevel) {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// NewLogger returns a logger writing to out at the configured level, as
// JSON when LogFormat is "json".
func (o *Options) NewLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(o.LogrusLogLevel())
	if strings.EqualFold(o.LogFormat, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
