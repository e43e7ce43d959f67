// Package config provides XML-based configuration for the dashboard server,
// with environment and command-line overrides.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"CorpFinDashboard"`

	Server   ServerConfig   `xml:"Server"`
	Dataset  DatasetConfig  `xml:"Dataset"`
	Storage  StorageConfig  `xml:"Storage"`
	Model    ModelConfig    `xml:"Model"`
	Theme    ThemeConfig    `xml:"Theme"`
	App      PageConfig     `xml:"App"`
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	Headless     bool   `xml:"Headless"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	EnableXSRF   bool   `xml:"EnableXSRFProtection"`
	PublicURL    string `xml:"PublicURL"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// DatasetConfig points at the financial statements file.
type DatasetConfig struct {
	Path      string `xml:"Path"`
	RulesFile string `xml:"RulesFile"` // optional YAML column rules
	Backend   string `xml:"Backend"`   // memory or duckdb
	Watch     bool   `xml:"Watch"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory"`
	UploadsDirectory string `xml:"UploadsDirectory"`
	DuckDBFile       string `xml:"DuckDBFile"`
	MaxUploadSize    string `xml:"MaxUploadSize"`
}

// ModelConfig holds the classifier settings and job retention.
type ModelConfig struct {
	Trees                  int     `xml:"Trees"`
	MaxDepth               int     `xml:"MaxDepth"`
	Seed                   int64   `xml:"Seed"`
	TestSize               float64 `xml:"TestSize"`
	Workers                int     `xml:"Workers"`
	JobTimeoutMinutes      int     `xml:"JobTimeoutMinutes"`
	CleanupIntervalMinutes int     `xml:"CleanupIntervalMinutes"`
}

// ThemeConfig are the dashboard colors.
type ThemeConfig struct {
	PrimaryColor             string `xml:"PrimaryColor"`
	BackgroundColor          string `xml:"BackgroundColor"`
	SecondaryBackgroundColor string `xml:"SecondaryBackgroundColor"`
	TextColor                string `xml:"TextColor"`
	PanelColor               string `xml:"PanelColor"`
	AssetsHost               string `xml:"AssetsHost"`
}

// PageConfig describes the page chrome.
type PageConfig struct {
	PageTitle           string `xml:"PageTitle"`
	PageIcon            string `xml:"PageIcon"`
	Layout              string `xml:"Layout"`
	InitialSidebarState string `xml:"InitialSidebarState"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	LogFormat            string `xml:"LogFormat"` // json or text
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	DuckDBThreads        int    `xml:"DuckDBThreads"`
	DuckDBMemoryLimit    string `xml:"DuckDBMemoryLimit"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8501,
			BindAddress:  "0.0.0.0",
			Headless:     true,
			EnableCORS:   false,
			AllowOrigins: "*",
			EnableXSRF:   false,
			ReadTimeout:  30,
			WriteTimeout: 60,
			IdleTimeout:  120,
			BodyLimit:    "64M",
		},
		Dataset: DatasetConfig{
			Path:    "./data/Financial Statements.csv",
			Backend: "memory",
			Watch:   true,
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			UploadsDirectory: "./data/uploads",
			DuckDBFile:       "./data/financials.duckdb",
			MaxUploadSize:    "64M",
		},
		Model: ModelConfig{
			Trees:                  100,
			MaxDepth:               5,
			Seed:                   42,
			TestSize:               0.3,
			JobTimeoutMinutes:      30,
			CleanupIntervalMinutes: 5,
		},
		Theme: ThemeConfig{
			PrimaryColor:             "#f5f5f5",
			BackgroundColor:          "#1a1a1a",
			SecondaryBackgroundColor: "#f5f5f5",
			TextColor:                "#f5f5f5",
			PanelColor:               "#2d2d2d",
			AssetsHost:               "https://go-echarts.github.io/go-echarts-assets/assets/",
		},
		App: PageConfig{
			PageTitle:           "Corporate Financial Analysis & ML Dashboard",
			PageIcon:            "📊",
			Layout:              "wide",
			InitialSidebarState: "expanded",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			LogFormat:            "json",
			EnableRequestLogging: true,
			DuckDBThreads:        2,
			DuckDBMemoryLimit:    "512MB",
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		if err := config.ApplyEnvironment(); err != nil {
			return nil, err
		}
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.ApplyEnvironment(); err != nil {
		return nil, err
	}

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Corporate Financial Dashboard Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Environment lists the variables that override the file.
type Environment struct {
	Port      int    `envconfig:"PORT"`
	PublicURL string `envconfig:"RAILWAY_STATIC_URL"`
	Dataset   string `envconfig:"DASHBOARD_DATASET"`
	Backend   string `envconfig:"DASHBOARD_BACKEND"`
	DataDir   string `envconfig:"DASHBOARD_DATA_DIR"`
	LogLevel  string `envconfig:"DASHBOARD_LOG_LEVEL"`
}

// ApplyEnvironment applies the environment overrides. Unset variables keep
// the configured value.
func (c *AppConfig) ApplyEnvironment() error {
	var env Environment
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if env.Port != 0 {
		c.Server.Port = env.Port
	}
	if env.PublicURL != "" {
		c.Server.PublicURL = env.PublicURL
	}
	if env.Dataset != "" {
		c.Dataset.Path = env.Dataset
	}
	if env.Backend != "" {
		c.Dataset.Backend = env.Backend
	}
	if env.DataDir != "" {
		c.Storage.DataDirectory = env.DataDir
		c.Storage.UploadsDirectory = filepath.Join(env.DataDir, "uploads")
		c.Storage.DuckDBFile = filepath.Join(env.DataDir, "financials.duckdb")
	}
	if env.LogLevel != "" {
		c.Advanced.LogLevel = env.LogLevel
	}
	return nil
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	for _, p := range []*string{
		&c.Dataset.Path,
		&c.Dataset.RulesFile,
		&c.Storage.DataDirectory,
		&c.Storage.UploadsDirectory,
		&c.Storage.DuckDBFile,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// CleanupInterval is the job cleanup cadence as a cron spec.
func (c *AppConfig) CleanupInterval() string {
	minutes := c.Model.CleanupIntervalMinutes
	if minutes <= 0 {
		minutes = 5
	}
	return fmt.Sprintf("@every %dm", minutes)
}

// JobMaxAge is how long finished training jobs are kept.
func (c *AppConfig) JobMaxAge() time.Duration {
	minutes := c.Model.JobTimeoutMinutes
	if minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
		filepath.Dir(c.Storage.DuckDBFile),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
