package config

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid" envconfig:"APPID"`
	Location string `yaml:"location" envconfig:"LOCATION"`
	Workdir  string `yaml:"workdir" envconfig:"WORKDIR"`
	Debug    bool   `yaml:"debug" envconfig:"DEBUG"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host           string   `yaml:"host" envconfig:"HOST"`
	Port           int      `yaml:"port" envconfig:"PORT"`
	ApiPrefix      string   `yaml:"api_prefix" envconfig:"API_PREFIX"`
	AllowOrigins   []string `yaml:"allow_origins" envconfig:"ALLOW_ORIGINS"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
	Metrics        bool     `yaml:"metrics" envconfig:"METRICS"`
}

// LogConfig logging configuration
type LogConfig struct {
	Mode       string `yaml:"mode" envconfig:"MODE"`
	FileEnable bool   `yaml:"file_enable" envconfig:"FILE_ENABLE"`
	Filename   string `yaml:"filename" envconfig:"FILENAME"`
}

// OpenAIConfig chat-completion service configuration. The key is read from
// OPENAI_API_KEY like the other OpenAI clients do.
type OpenAIConfig struct {
	APIKey      string  `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL     string  `yaml:"base_url" envconfig:"BASE_URL"`
	Model       string  `yaml:"model" envconfig:"MODEL"`
	Temperature float64 `yaml:"temperature" envconfig:"TEMPERATURE"`
}

// ExtractConfig extraction pipeline configuration
type ExtractConfig struct {
	// FetchURL downloads the page for URL extraction and adds its text to the
	// prompt instead of relying on the model to read the URL.
	FetchURL      bool  `yaml:"fetch_url" envconfig:"FETCH_URL"`
	FetchMaxBytes int64 `yaml:"fetch_max_bytes" envconfig:"FETCH_MAX_BYTES"`
}

type AppConfig struct {
	System  SysConfig     `yaml:"system"`
	Web     WebConfig     `yaml:"web"`
	Logger  LogConfig     `yaml:"logger"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Extract ExtractConfig `yaml:"extract"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

// Validate checks the settings the service cannot start without.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return fmt.Errorf("openai api key is required (OPENAI_API_KEY)")
	}
	if strings.TrimSpace(c.OpenAI.Model) == "" {
		return fmt.Errorf("openai model is required")
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return fmt.Errorf("invalid web port %d", c.Web.Port)
	}
	if c.Web.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid max upload size %d", c.Web.MaxUploadBytes)
	}
	return nil
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "ProdCatalog",
		Location: "UTC",
		Workdir:  "/var/prodcatalog",
		Debug:    false,
	},
	Web: WebConfig{
		Host:           "0.0.0.0",
		Port:           8000,
		ApiPrefix:      "/api",
		AllowOrigins:   []string{"http://localhost", "http://localhost:5173"},
		MaxUploadBytes: 10 << 20,
		Metrics:        true,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/prodcatalog/prodcatalog.log",
	},
	OpenAI: OpenAIConfig{
		BaseURL:     "https://api.openai.com/v1/",
		Model:       "gpt-3.5-turbo-0125",
		Temperature: 0.7,
	},
	Extract: ExtractConfig{
		FetchURL:      false,
		FetchMaxBytes: 2 << 20,
	},
}

// LoadConfig reads the YAML file at cfile over the defaults and then applies
// environment overrides. An empty cfile only applies the environment.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := *DefaultAppConfig
	cfg.Web.AllowOrigins = append([]string(nil), DefaultAppConfig.Web.AllowOrigins...)

	if cfile != "" {
		data, err := os.ReadFile(cfile)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfile, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", cfile, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *AppConfig) error {
	sections := []struct {
		prefix string
		target interface{}
	}{
		{"CATALOG_SYSTEM", &cfg.System},
		{"CATALOG_WEB", &cfg.Web},
		{"CATALOG_LOGGER", &cfg.Logger},
		{"CATALOG_EXTRACT", &cfg.Extract},
		{"OPENAI", &cfg.OpenAI},
	}
	for _, s := range sections {
		if err := envconfig.Process(s.prefix, s.target); err != nil {
			return fmt.Errorf("applying %s_* environment: %w", s.prefix, err)
		}
	}
	return nil
}
