// Package config resolves gpuavail settings from flags, GPUAVAIL_* environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dm/gpuavail/internal/model"
	"github.com/dm/gpuavail/internal/nodeset"
)

// Keys shared by flags, environment variables and the config file.
const (
	KeyRanges    = "ranges"
	KeyInterval  = "interval"
	KeyTimeout   = "timeout"
	KeyScontrol  = "scontrol"
	KeyFixtures  = "fixtures"
	KeyOutput    = "output"
	KeyColumns   = "columns"
	KeyGPUOnly   = "gpu-only"
	KeyListen    = "listen"
	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
	KeyLogOutput = "log.output"
	KeyLogFile   = "log.file"
)

// EnvPrefix is prepended to every environment variable, e.g. GPUAVAIL_INTERVAL.
const EnvPrefix = "GPUAVAIL"

// DefaultRanges are the GPU node ranges of the hpc3 cluster.
var DefaultRanges = []string{
	"hpc3-gpu-16-[00-07]",
	"hpc3-gpu-17-[02-04]",
	"hpc3-gpu-18-[00-04]",
	"hpc3-gpu-24-[05-08]",
	"hpc3-gpu-k54-[00-05]",
	"hpc3-gpu-l54-[00-09]",
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
	Output string
	File   string
}

// Config is the resolved, validated configuration.
type Config struct {
	Ranges   []string
	Specs    []nodeset.Spec
	Interval time.Duration
	Timeout  time.Duration
	Scontrol string
	Fixtures string
	Output   string
	Columns  []model.Column
	GPUOnly  bool
	Listen   string
	Log      LogConfig
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRanges, DefaultRanges)
	v.SetDefault(KeyInterval, 60*time.Second)
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeyScontrol, "scontrol")
	v.SetDefault(KeyFixtures, "")
	v.SetDefault(KeyOutput, "node_info.csv")
	v.SetDefault(KeyColumns, "all")
	v.SetDefault(KeyGPUOnly, false)
	v.SetDefault(KeyListen, ":9410")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogOutput, "stderr")
	v.SetDefault(KeyLogFile, "gpuavail.log")
}

// AddFlags registers the persistent command-line flags. Flag names match
// the viper keys so BindFlags can bind them one to one.
func AddFlags(fs *pflag.FlagSet) {
	fs.StringArray(KeyRanges, nil, "node range expression, e.g. 'hpc3-gpu-16-[00-07]' (repeatable)")
	fs.Duration(KeyInterval, 60*time.Second, "delay between live sweeps")
	fs.Duration(KeyTimeout, 30*time.Second, "per-node query timeout")
	fs.String(KeyScontrol, "scontrol", "path to the scontrol binary")
	fs.String(KeyFixtures, "", "read node reports from <dir>/<node>.txt instead of running scontrol")
	fs.String(KeyOutput, "node_info.csv", "CSV snapshot path (empty disables the file)")
	fs.String(KeyColumns, "all", "comma-separated columns: all or "+strings.Join(model.ColumnKeys(), ","))
	fs.Bool(KeyGPUOnly, false, "only report nodes with GPUs")
	fs.String(KeyListen, ":9410", "exporter listen address")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("log-format", "text", "log format: text or json")
	fs.String("log-output", "stderr", "log output: stdout, stderr or file")
	fs.String("log-file", "gpuavail.log", "log file used when --log-output=file")
}

// BindFlags binds every flag registered by AddFlags to v.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	bindings := map[string]string{
		KeyRanges:    KeyRanges,
		KeyInterval:  KeyInterval,
		KeyTimeout:   KeyTimeout,
		KeyScontrol:  KeyScontrol,
		KeyFixtures:  KeyFixtures,
		KeyOutput:    KeyOutput,
		KeyColumns:   KeyColumns,
		KeyGPUOnly:   KeyGPUOnly,
		KeyListen:    KeyListen,
		KeyLogLevel:  "log-level",
		KeyLogFormat: "log-format",
		KeyLogOutput: "log-output",
		KeyLogFile:   "log-file",
	}
	for key, name := range bindings {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("flag --%s is not registered", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// BindEnv enables GPUAVAIL_* environment overrides; dots and dashes in keys
// become underscores (log.level -> GPUAVAIL_LOG_LEVEL).
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// ReadFile loads path, or ~/.gpuavail/config.yaml when path is empty. A
// missing default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(filepath.Join(home, ".gpuavail"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load resolves and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Ranges:   removeBlank(v.GetStringSlice(KeyRanges)),
		Interval: v.GetDuration(KeyInterval),
		Timeout:  v.GetDuration(KeyTimeout),
		Scontrol: v.GetString(KeyScontrol),
		Fixtures: v.GetString(KeyFixtures),
		Output:   v.GetString(KeyOutput),
		GPUOnly:  v.GetBool(KeyGPUOnly),
		Listen:   v.GetString(KeyListen),
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
			Output: v.GetString(KeyLogOutput),
			File:   v.GetString(KeyLogFile),
		},
	}

	if cfg.Interval <= 0 {
		return Config{}, fmt.Errorf("%s must be positive, got %v", KeyInterval, cfg.Interval)
	}
	if cfg.Timeout <= 0 {
		return Config{}, fmt.Errorf("%s must be positive, got %v", KeyTimeout, cfg.Timeout)
	}
	if len(cfg.Ranges) == 0 {
		return Config{}, fmt.Errorf("at least one node range is required")
	}
	if cfg.Fixtures == "" && strings.TrimSpace(cfg.Scontrol) == "" {
		return Config{}, fmt.Errorf("%s must not be empty", KeyScontrol)
	}

	specs, err := nodeset.ParseAll(cfg.Ranges)
	if err != nil {
		return Config{}, err
	}
	cfg.Specs = specs

	cols, err := model.ParseColumns(v.GetString(KeyColumns))
	if err != nil {
		return Config{}, err
	}
	cfg.Columns = cols
	return cfg, nil
}

func removeBlank(slice []string) []string {
	var result []string
	for _, val := range slice {
		if trim := strings.TrimSpace(val); trim != "" {
			result = append(result, trim)
		}
	}
	return result
}
