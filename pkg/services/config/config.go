package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/de-tools/airport-atlas/pkg/services/outlier"
)

const EnvPrefix = "AIRPORT_ATLAS"

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Source   SourceConfig   `mapstructure:"source"`
	Centers  CentersConfig  `mapstructure:"centers"`
	Output   OutputConfig   `mapstructure:"output"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Results  ResultsConfig  `mapstructure:"results"`
	Server   ServerConfig   `mapstructure:"server"`
	AWS      AWSConfig      `mapstructure:"aws"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

type AnalysisConfig struct {
	SignificanceThreshold float64  `mapstructure:"significance_threshold" validate:"gt=0.5,lt=1"`
	MinGroupSize          int      `mapstructure:"min_group_size" validate:"min=1"`
	SkipCountries         []string `mapstructure:"skip_countries"`
	Concurrency           int      `mapstructure:"concurrency" validate:"min=1,max=64"`
	Enrich                bool     `mapstructure:"enrich"`
	Title                 string   `mapstructure:"title"`
}

// SourceConfig selects where airports are read from. A sql source is
// described either inline (driver, dsn, table) or by a named profile in an
// INI profiles file.
type SourceConfig struct {
	Type         string `mapstructure:"type" validate:"oneof=csv sql"`
	Path         string `mapstructure:"path"`
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	Table        string `mapstructure:"table"`
	Profile      string `mapstructure:"profile"`
	ProfilesFile string `mapstructure:"profiles_file"`
}

type CentersConfig struct {
	// Path to a center table; empty uses the embedded one.
	Path string `mapstructure:"path"`
}

type OutputConfig struct {
	Format  string `mapstructure:"format" validate:"oneof=text table json yaml jsonl"`
	Path    string `mapstructure:"path"`
	Verbose bool   `mapstructure:"verbose"`
}

type KafkaConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	Brokers     []string `mapstructure:"brokers" validate:"required_if=Enabled true"`
	Topic       string   `mapstructure:"topic" validate:"required_if=Enabled true"`
	AllVerdicts bool     `mapstructure:"all_verdicts"`
	Summaries   bool     `mapstructure:"summaries"`
}

type ResultsConfig struct {
	// DBPath of the DuckDB results database; empty disables persistence.
	DBPath string `mapstructure:"db_path"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	Schedule        string        `mapstructure:"schedule"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type AWSConfig struct {
	Profile string `mapstructure:"profile"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("analysis.significance_threshold", outlier.DefaultSignificanceThreshold)
	v.SetDefault("analysis.min_group_size", outlier.DefaultMinGroupSize)
	v.SetDefault("analysis.skip_countries", outlier.DefaultSkipCountries)
	v.SetDefault("analysis.concurrency", 1)
	v.SetDefault("analysis.enrich", true)
	v.SetDefault("analysis.title", outlier.DefaultTitle)

	v.SetDefault("source.type", "csv")
	v.SetDefault("source.path", "")
	v.SetDefault("source.driver", "")
	v.SetDefault("source.dsn", "")
	v.SetDefault("source.table", "airports")
	v.SetDefault("source.profile", "")
	v.SetDefault("source.profiles_file", "")

	v.SetDefault("centers.path", "")

	v.SetDefault("output.format", "text")
	v.SetDefault("output.path", "")
	v.SetDefault("output.verbose", false)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "airport-outliers")
	v.SetDefault("kafka.all_verdicts", false)
	v.SetDefault("kafka.summaries", false)

	v.SetDefault("results.db_path", "")

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.schedule", "")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("aws.profile", "")
}

// NewViper returns a viper instance with defaults and AIRPORT_ATLAS_*
// environment overrides. Commands bind their flags onto it before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional YAML file at path on top of defaults and environment.
func Load(path string) (*Config, error) {
	return LoadWith(NewViper(), path)
}

func LoadWith(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Source.Type == "sql" && c.Source.Profile == "" && (c.Source.Driver == "" || c.Source.DSN == "") {
		return fmt.Errorf("invalid configuration: sql source needs either a profile or a driver and dsn")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("invalid configuration: kafka needs at least one broker")
	}
	return nil
}

// OutlierSettings maps the analysis section onto analyzer settings.
func (c *Config) OutlierSettings() outlier.Settings {
	return outlier.Settings{
		SignificanceThreshold: c.Analysis.SignificanceThreshold,
		MinGroupSize:          c.Analysis.MinGroupSize,
		SkipCountries:         append([]string(nil), c.Analysis.SkipCountries...),
		Concurrency:           c.Analysis.Concurrency,
		Enrich:                c.Analysis.Enrich,
		Title:                 c.Analysis.Title,
	}
}
