package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPreset      = "earth_moon"
	DefaultIntegrator  = "verlet"
	DefaultSampleEvery = 10
	DefaultDataDir     = "./data"
	DefaultWorkers     = 4

	EnvPrefix = "GRAVSIM"
)

type Config struct {
	Preset      string  `mapstructure:"preset" yaml:"preset"`
	Integrator  string  `mapstructure:"integrator" yaml:"integrator"`
	Dt          float64 `mapstructure:"dt" yaml:"dt"`
	Duration    float64 `mapstructure:"duration" yaml:"duration"`
	SampleEvery int     `mapstructure:"sample_every" yaml:"sample_every"`
	Seed        int64   `mapstructure:"seed" yaml:"seed"`
	Validate    bool    `mapstructure:"validate_state" yaml:"validate_state"`
	DataDir     string  `mapstructure:"data_dir" yaml:"data_dir"`
	Workers     int     `mapstructure:"workers" yaml:"workers"`

	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
}

// LoggerConfig holds the logger configuration.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the console color of each log level.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("preset", DefaultPreset)
	v.SetDefault("integrator", DefaultIntegrator)
	v.SetDefault("dt", 0.0)
	v.SetDefault("duration", 0.0)
	v.SetDefault("sample_every", DefaultSampleEvery)
	v.SetDefault("seed", 0)
	v.SetDefault("validate_state", true)
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("workers", DefaultWorkers)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "gravsim")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")
}

func DefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := FromViper(v)
	if err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return cfg
}

// NewViper returns a viper instance with defaults and GRAVSIM_ environment
// overrides. An empty path searches for gravsim.yaml in the working
// directory and tolerates its absence.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("gravsim")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return v, nil
}

func Load(path string) (*Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Check validates value ranges. Zero Dt and Duration mean "use the
// preset's value".
func (c *Config) Check() error {
	if c.Dt < 0 {
		return fmt.Errorf("dt %g: %w", c.Dt, dynamo.ErrNonPositiveStep)
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration %g: %w", c.Duration, dynamo.ErrParameterBounds)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("sample_every %d: %w", c.SampleEvery, dynamo.ErrParameterBounds)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d: %w", c.Workers, dynamo.ErrParameterBounds)
	}
	return nil
}

// Resolve builds the simulation setup for the configured preset with the
// configured overrides, and returns the run duration.
func (c *Config) Resolve() (sim.Setup, float64, error) {
	p, err := GetPreset(c.Preset)
	if err != nil {
		return sim.Setup{}, 0, err
	}
	params := p.Params
	if c.Dt > 0 {
		params.Dt = c.Dt
	}
	duration := p.Duration
	if c.Duration > 0 {
		duration = c.Duration
	}
	setup, err := BuildSetup(p.Name, params, p.Bodies)
	if err != nil {
		return sim.Setup{}, 0, err
	}
	return setup, duration, nil
}
