package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// PDF engines.
const (
	EngineLayout = "layout"
	EngineChrome = "chrome"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (INVOICEPRO_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (INVOICEPRO_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Storage     StorageConfig
	PDF         PDFConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// StorageConfig selects where documents are persisted.
type StorageConfig struct {
	Driver  string `default:"file" usage:"Storage driver: memory, file or postgres"`
	DataDir string `default:"data" usage:"Directory for the file driver" flag:"data-dir"`
}

// PDFConfig selects how PDFs are produced.
type PDFConfig struct {
	Engine       string        `default:"layout" usage:"PDF engine: layout (built in) or chrome (print the HTML document)"`
	ChromiumPath string        `usage:"Chromium binary for the chrome engine" flag:"chromium-path"`
	Timeout      time.Duration `default:"15s" usage:"Per-document timeout of the chrome engine" flag:"pdf-timeout"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, then applies platform defaults and validates the result.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "INVOICEPRO",
		Files:     []string{"config.yaml", "/etc/invoicepro/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the driver and engine choices and their required settings.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Storage.DataDir == "" {
			return errors.New("data dir is required for the file driver: set INVOICEPRO_STORAGE_DATA_DIR")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required: set INVOICEPRO_DATABASE_URL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.PDF.Engine {
	case EngineLayout, EngineChrome:
	default:
		return errors.Errorf("unknown pdf engine %q", c.PDF.Engine)
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's INVOICEPRO_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
