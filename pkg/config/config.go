// Package config provides configuration management for the distributed
// query parallelizer service.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/distquery/parallelizer/internal/perrors"
)

// Config holds all configuration for the application.
type Config struct {
	Parallelizer ParallelizerConfig `mapstructure:"parallelizer"`
	Catalog      DatabaseConfig     `mapstructure:"catalog"`
	Log          LogConfig          `mapstructure:"log"`
}

// ParallelizerConfig holds the full, recognized enumeration of
// parallelization parameters (spec 6).
type ParallelizerConfig struct {
	SliceTarget                    int     `mapstructure:"slice_target"`
	MaxWidthFactor                 float64 `mapstructure:"max_width_factor"`
	MaxGlobalWidth                 int     `mapstructure:"max_global_width"`
	AffinityFactor                 float64 `mapstructure:"affinity_factor"`
	UseNewAssignmentCreator        bool    `mapstructure:"use_new_assignment_creator"`
	AssignmentCreatorBalanceFactor float64 `mapstructure:"assignment_creator_balance_factor"`
	FragmentCodec                  string  `mapstructure:"fragment_codec"` // NONE or SNAPPY
}

// DatabaseConfig holds the endpoint catalog's database connection
// configuration.
type DatabaseConfig struct {
	Type     string `mapstructure:"type"` // sqlite, postgres, or mysql
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"` // json or text
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/parallelizer")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults")
		} else if os.IsNotExist(err) {
			fmt.Printf("Config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw content of the given
// config type (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("parallelizer.slice_target", 1)
	v.SetDefault("parallelizer.max_width_factor", 1.0)
	v.SetDefault("parallelizer.max_global_width", 1000)
	v.SetDefault("parallelizer.affinity_factor", 0.5)
	v.SetDefault("parallelizer.use_new_assignment_creator", false)
	v.SetDefault("parallelizer.assignment_creator_balance_factor", 1.5)
	v.SetDefault("parallelizer.fragment_codec", "NONE")

	v.SetDefault("catalog.type", "sqlite")
	v.SetDefault("catalog.host", "localhost")
	v.SetDefault("catalog.database", "endpointcatalog.db")
	v.SetDefault("catalog.max_conns", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "./logs")
	v.SetDefault("log.format", "text")
}

// Validate eagerly checks every recognized parallelization parameter
// against its declared range (spec 6, 7), returning an
// *perrors.InvalidConfig wrapped with its field name on the first
// violation found.
func (c *Config) Validate() error {
	p := c.Parallelizer

	if p.SliceTarget < 1 {
		return fmt.Errorf("%w", perrors.NewInvalidConfig("parallelizer.slice_target", "must be >= 1"))
	}
	if p.MaxWidthFactor <= 0 || p.MaxWidthFactor > 1 {
		return fmt.Errorf("%w", perrors.NewInvalidConfig("parallelizer.max_width_factor", "must be in (0, 1]"))
	}
	if p.MaxGlobalWidth < 1 {
		return fmt.Errorf("%w", perrors.NewInvalidConfig("parallelizer.max_global_width", "must be >= 1"))
	}
	if p.AffinityFactor < 0 || p.AffinityFactor > 1 {
		return fmt.Errorf("%w", perrors.NewInvalidConfig("parallelizer.affinity_factor", "must be in [0, 1]"))
	}
	if p.AssignmentCreatorBalanceFactor < 1.0 {
		return fmt.Errorf("%w", perrors.NewInvalidConfig("parallelizer.assignment_creator_balance_factor", "must be >= 1.0"))
	}
	if p.FragmentCodec != "NONE" && p.FragmentCodec != "SNAPPY" {
		return fmt.Errorf("%w", perrors.NewInvalidConfig("parallelizer.fragment_codec", "must be NONE or SNAPPY"))
	}

	if c.Catalog.Type != "sqlite" && c.Catalog.Type != "postgres" && c.Catalog.Type != "mysql" {
		return fmt.Errorf("%w", perrors.NewInvalidConfig("catalog.type", "must be sqlite, postgres, or mysql"))
	}

	return nil
}

// MaxWidthPerNode derives the per-node width ceiling from the load-shedding
// factor and the number of cores on an average executor (spec 6:
// maxWidthPerNode is "derived from averageExecutorCores x maxWidthFactor").
func (c *Config) MaxWidthPerNode(averageExecutorCores int) int {
	v := int(float64(averageExecutorCores) * c.Parallelizer.MaxWidthFactor)
	if v < 1 {
		v = 1
	}
	return v
}
