package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/climateledger/disclosure-export/internal/db"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the submission/restatement store backend.
type StoreConfig struct {
	Driver      string        `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string        `yaml:"database_url" mapstructure:"database_url"`
	Pool        db.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// CatalogConfig configures the static schema/choice catalogue.
type CatalogConfig struct {
	// FixturePath, when set, loads the catalogue from a JSON fixture
	// instead of the store database.
	FixturePath string `yaml:"fixture_path" mapstructure:"fixture_path"`
	// LookupRatePerSec bounds cache fall-through lookups; 0 disables
	// the limiter.
	LookupRatePerSec float64 `yaml:"lookup_rate_per_sec" mapstructure:"lookup_rate_per_sec"`
	LookupBurst      int     `yaml:"lookup_burst" mapstructure:"lookup_burst"`
}

// ExportConfig configures workbook assembly and output.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
	YearFirst int    `yaml:"year_first" mapstructure:"year_first"`
	YearLast  int    `yaml:"year_last" mapstructure:"year_last"`
	// SchemaPath optionally overrides the built-in workbook layout.
	SchemaPath string `yaml:"schema_path" mapstructure:"schema_path"`
}

// BatchConfig configures batch export parallelism.
type BatchConfig struct {
	MaxConcurrentCompanies int `yaml:"max_concurrent_companies" mapstructure:"max_concurrent_companies"`
}

// ServerConfig configures the export webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DISCLOSURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("catalog.lookup_rate_per_sec", 50)
	v.SetDefault("catalog.lookup_burst", 10)
	v.SetDefault("export.output_dir", ".")
	v.SetDefault("export.year_first", 2015)
	v.SetDefault("export.year_last", 2023)
	v.SetDefault("batch.max_concurrent_companies", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a command mode requires. Modes: "export",
// "serve".
func (c *Config) Validate(mode string) error {
	var problems []string

	common := func() {
		if c.Store.Driver != "postgres" && c.Store.Driver != "sqlite" {
			problems = append(problems, "store.driver must be postgres or sqlite")
		}
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
		if c.Store.Driver == "sqlite" && c.Catalog.FixturePath == "" {
			problems = append(problems, "catalog.fixture_path is required with the sqlite driver")
		}
		if c.Export.YearFirst <= 0 || c.Export.YearLast < c.Export.YearFirst {
			problems = append(problems, "export year range is invalid")
		}
		if c.Batch.MaxConcurrentCompanies < 1 || c.Batch.MaxConcurrentCompanies > 50 {
			problems = append(problems, "batch.max_concurrent_companies must be between 1 and 50")
		}
	}

	switch mode {
	case "export":
		common()
	case "serve":
		common()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
