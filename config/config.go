// Package config - Layered configuration for benchmark runs.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nvr-ai/inferbench/benchmark"
	"github.com/nvr-ai/inferbench/inference/providers"
)

// ErrInvalidRequest is returned for configuration values that cannot form a sweep.
var ErrInvalidRequest = errors.New("invalid request")

// EnvPrefix prefixes every environment variable, e.g. INFERBENCH_RUNS.
const EnvPrefix = "INFERBENCH"

// Config holds everything a run needs.
type Config struct {
	Request benchmark.Request
	// Results is the result log lines are appended to.
	Results string
	// ModelsFile replaces the built-in model table when set.
	ModelsFile string
	// ModelsDir is the root of the built-in model paths.
	ModelsDir string
	// ORTLibrary is the onnxruntime shared library.
	ORTLibrary string
	LogLevel   string
	LogFormat  string
}

type rawConfig struct {
	Model                string `mapstructure:"model"`
	Size                 int    `mapstructure:"size"`
	Provider             string `mapstructure:"provider"`
	Optimization         string `mapstructure:"optimization"`
	CompareOptimizations bool   `mapstructure:"compare-optimizations"`
	Warmup               int    `mapstructure:"warmup"`
	Runs                 int    `mapstructure:"runs"`
	GPU                  int    `mapstructure:"gpu"`
	Verbose              bool   `mapstructure:"verbose"`
	Profile              bool   `mapstructure:"profile"`
	SaveOptimized        bool   `mapstructure:"save-optimized"`
	LoadOptimized        bool   `mapstructure:"load-optimized"`
	IncludeTensorRT      bool   `mapstructure:"include-tensorrt"`
	Seed                 uint64 `mapstructure:"seed"`
	Results              string `mapstructure:"results"`
	ModelsFile           string `mapstructure:"models-file"`
	ModelsDir            string `mapstructure:"models-dir"`
	ORTLibrary           string `mapstructure:"ort-library"`
	LogLevel             string `mapstructure:"log-level"`
	LogFormat            string `mapstructure:"log-format"`
}

// Load reads configuration from defaults, file, environment and flags, in
// increasing precedence.
//
// Arguments:
//   - cfgFile: An explicit config file. Empty searches for inferbench.yaml in
//     the working directory and $HOME/.config/inferbench.
//   - flags: Command line flags to bind. May be nil.
//
// Returns:
//   - *Config: The validated configuration.
//   - error: ErrInvalidRequest for bad values, or a read error.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("inferbench")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/inferbench")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, errors.Wrap(err, "binding flags")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "reading config")
		}
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	return raw.build()
}

// setDefaults registers every key so AutomaticEnv values reach Unmarshal.
func setDefaults(v *viper.Viper) {
	d := benchmark.DefaultRequest()
	v.SetDefault("model", d.Model)
	v.SetDefault("size", d.Size)
	v.SetDefault("provider", d.Provider)
	v.SetDefault("optimization", string(d.Optimization))
	v.SetDefault("compare-optimizations", false)
	v.SetDefault("warmup", d.Warmup)
	v.SetDefault("runs", d.Runs)
	v.SetDefault("gpu", 0)
	v.SetDefault("verbose", false)
	v.SetDefault("profile", false)
	v.SetDefault("save-optimized", false)
	v.SetDefault("load-optimized", false)
	v.SetDefault("include-tensorrt", false)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("results", benchmark.DefaultResultsPath)
	v.SetDefault("models-file", "")
	v.SetDefault("models-dir", "models")
	v.SetDefault("ort-library", "")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")
}

func (r rawConfig) build() (*Config, error) {
	level, err := providers.ParseOptimizationLevel(r.Optimization)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidRequest, err.Error())
	}

	switch {
	case r.Runs < 1:
		return nil, errors.Wrapf(ErrInvalidRequest, "runs must be at least 1, got %d", r.Runs)
	case r.Warmup < 0:
		return nil, errors.Wrapf(ErrInvalidRequest, "warmup must not be negative, got %d", r.Warmup)
	case r.GPU < 0:
		return nil, errors.Wrapf(ErrInvalidRequest, "gpu index must not be negative, got %d", r.GPU)
	case r.Size < 0:
		return nil, errors.Wrapf(ErrInvalidRequest, "size must be 0 (sweep) or positive, got %d", r.Size)
	case r.SaveOptimized && r.LoadOptimized:
		return nil, errors.Wrap(ErrInvalidRequest, "--save-optimized and --load-optimized are mutually exclusive")
	case strings.TrimSpace(r.Model) == "":
		return nil, errors.Wrap(ErrInvalidRequest, "model must not be empty")
	case strings.TrimSpace(r.Provider) == "":
		return nil, errors.Wrap(ErrInvalidRequest, "provider must not be empty")
	}

	return &Config{
		Request: benchmark.Request{
			Model:                r.Model,
			Size:                 r.Size,
			Provider:             r.Provider,
			Optimization:         level,
			CompareOptimizations: r.CompareOptimizations,
			Warmup:               r.Warmup,
			Runs:                 r.Runs,
			GPU:                  r.GPU,
			Verbose:              r.Verbose,
			Profile:              r.Profile,
			SaveOptimized:        r.SaveOptimized,
			LoadOptimized:        r.LoadOptimized,
			IncludeTensorRT:      r.IncludeTensorRT,
			Seed:                 r.Seed,
		},
		Results:    r.Results,
		ModelsFile: r.ModelsFile,
		ModelsDir:  r.ModelsDir,
		ORTLibrary: r.ORTLibrary,
		LogLevel:   r.LogLevel,
		LogFormat:  r.LogFormat,
	}, nil
}

// EffectiveLogLevel is LogLevel, raised to debug by verbose.
func (c *Config) EffectiveLogLevel() string {
	if c.Request.Verbose {
		return "debug"
	}
	return c.LogLevel
}
