package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rtm0/s111/internal/s111"
)

// option is a configuration value settable by flag, environment variable
// (S111_<NAME>, dashes as underscores) or configuration file.
type option struct {
	name, shorthand, usage string
	defaultVal             interface{}
}

var options = []option{
	{
		name:       "config",
		usage:      "path to a configuration file (TOML, YAML or JSON)",
		defaultVal: "",
	},
	{
		name:       "grid-file",
		shorthand:  "g",
		usage:      "path to the NetCDF file containing the irregular grid data",
		defaultVal: "",
	},
	{
		name:       "epoch",
		usage:      "instant the source time variable counts days from",
		defaultVal: "1950-01-01T00:00:00Z",
	},
	{
		name:       "knots-per-ms",
		usage:      "conversion factor from metres per second to knots",
		defaultVal: s111.KnotsPerMetreSecond,
	},
	{
		name:       "log-level",
		usage:      "minimum log level: debug, info, warn or error",
		defaultVal: "info",
	},
	{
		name:       "log-format",
		usage:      "log output format: text or json",
		defaultVal: "text",
	},
}

// newConfig registers every option on flags and binds it to a new viper
// instance.
func newConfig(flags *pflag.FlagSet) *viper.Viper {
	cfg := viper.New()
	cfg.SetEnvPrefix("S111")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv()

	for _, o := range options {
		switch v := o.defaultVal.(type) {
		case string:
			flags.StringP(o.name, o.shorthand, v, o.usage)
		case float64:
			flags.Float64P(o.name, o.shorthand, v, o.usage)
		default:
			panic(fmt.Sprintf("option %s: unsupported default %T", o.name, v))
		}
		if err := cfg.BindPFlag(o.name, flags.Lookup(o.name)); err != nil {
			panic(fmt.Sprintf("option %s: %v", o.name, err))
		}
	}
	return cfg
}

// readConfigFile loads the configuration file, if one was given.
func readConfigFile(cfg *viper.Viper) error {
	if path := cfg.GetString("config"); path != "" {
		cfg.SetConfigFile(path)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("problem reading configuration file: %w", err)
		}
	}
	return nil
}

// conversionOptions extracts the conversion constants from cfg.
func conversionOptions(cfg *viper.Viper) (s111.Options, error) {
	epoch, err := cast.ToTimeInDefaultLocationE(cfg.Get("epoch"), time.UTC)
	if err != nil {
		return s111.Options{}, fmt.Errorf("invalid epoch: %w", err)
	}
	k, err := cast.ToFloat64E(cfg.Get("knots-per-ms"))
	if err != nil {
		return s111.Options{}, fmt.Errorf("invalid knots-per-ms: %w", err)
	}
	if k <= 0 || math.IsInf(k, 0) || math.IsNaN(k) {
		return s111.Options{}, fmt.Errorf("knots-per-ms must be a positive number, got %v", k)
	}
	return s111.Options{Epoch: epoch.UTC(), KnotsPerMS: k}, nil
}

// failureLogger returns the configured logger, falling back to text on
// stderr when the logging options are themselves invalid.
func failureLogger(cfg *viper.Viper) *slog.Logger {
	if logger, err := newLogger(cfg); err == nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// newLogger builds the process logger from the log-level and log-format
// options.
func newLogger(cfg *viper.Viper) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.GetString("log-level"))); err != nil {
		return nil, fmt.Errorf("invalid log-level: %w", err)
	}
	hopts := &slog.HandlerOptions{Level: level}
	switch f := cfg.GetString("log-format"); f {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stdout, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stdout, hopts)), nil
	default:
		return nil, fmt.Errorf("invalid log-format %q", f)
	}
}
