// Package config loads and validates the pipeline's runtime
// configuration: GitHub App credentials, database connection
// parameters, the documents/configs repositories, render tool paths,
// and the search/file-storage client endpoints.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/oxidecomputer/rfd-pipeline/internal/logger"
)

// Config represents the top-level configuration structure.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	Docs    DocsConfig    `mapstructure:"docs"`
	Render  RenderConfig  `mapstructure:"render"`
	Search  SearchConfig  `mapstructure:"search"`
	Drive   DriveConfig   `mapstructure:"drive"`
	DB      DBConfig      `mapstructure:"database"`
	Logging logger.Config `mapstructure:"logging"`
}

// ServerConfig configures the HTTP chassis and the reconcile worker
// pool.
type ServerConfig struct {
	Port          string `mapstructure:"port"`
	MaxWorkers    int    `mapstructure:"max_workers"`
	QueueCapacity int    `mapstructure:"queue_capacity"`
}

// GitHubConfig configures GitHub App authentication used to reach
// both the documents repository and the configs repository.
type GitHubConfig struct {
	AppID          int64  `mapstructure:"app_id"`
	InstallationID int64  `mapstructure:"installation_id"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
	Token          string `mapstructure:"token"` // for CLI use without an App installation
}

// DocsConfig names the documents repository and the configs
// repository the hook chain's configs-writer hooks target.
type DocsConfig struct {
	Owner             string `mapstructure:"owner"`
	Repo              string `mapstructure:"repo"`
	DefaultBranch     string `mapstructure:"default_branch"`
	ConfigsRepo       string `mapstructure:"configs_repo"`
	ShortURLHost      string `mapstructure:"short_url_host"`
	RenderedLinkHost  string `mapstructure:"rendered_link_host"`
	ChangeRequestHost string `mapstructure:"change_request_host"`
}

// RenderConfig configures the external AsciiDoc converters.
type RenderConfig struct {
	AsciidoctorPath    string        `mapstructure:"asciidoctor_path"`
	AsciidoctorPDFPath string        `mapstructure:"asciidoctor_pdf_path"`
	HTMLTimeout        time.Duration `mapstructure:"html_timeout"`
	PDFTimeout         time.Duration `mapstructure:"pdf_timeout"`
}

// SearchConfig configures the search-index client (§6).
type SearchConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DriveConfig configures the file-storage client used to publish
// rendered PDFs (§6).
type DriveConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	SharedName string        `mapstructure:"shared_drive_name"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// DBConfig configures the Postgres connection used by the persistence
// facade.
type DBConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// GetDSN builds a libpq-style connection string from the configured
// fields.
func (db *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host,
		db.Port,
		db.Username,
		db.Password,
		db.Database,
		db.SSLMode,
	)
}

// LoadConfig loads the configuration using Viper with the hierarchy:
// Flags (handled by caller) > Env Vars > Config File > Defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.rfd-pipeline")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.max_workers", 5)
	v.SetDefault("server.queue_capacity", 100)

	v.SetDefault("github.app_id", 0)
	v.SetDefault("github.installation_id", 0)
	v.SetDefault("github.private_key_path", "keys/rfd-pipeline.private-key.pem")
	v.SetDefault("github.webhook_secret", "")
	v.SetDefault("github.token", "")

	v.SetDefault("docs.owner", "")
	v.SetDefault("docs.repo", "")
	v.SetDefault("docs.configs_repo", "")
	v.SetDefault("docs.default_branch", "master")
	v.SetDefault("docs.short_url_host", "rfd.shared.oxide.computer")
	v.SetDefault("docs.rendered_link_host", "rfd.shared.oxide.computer")
	v.SetDefault("docs.change_request_host", "github.com")

	v.SetDefault("render.asciidoctor_path", "asciidoctor")
	v.SetDefault("render.asciidoctor_pdf_path", "asciidoctor-pdf")
	v.SetDefault("render.html_timeout", "30s")
	v.SetDefault("render.pdf_timeout", "5m")

	v.SetDefault("search.base_url", "")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.timeout", "10s")
	v.SetDefault("drive.base_url", "")
	v.SetDefault("drive.api_key", "")
	v.SetDefault("drive.timeout", "30s")
	v.SetDefault("drive.shared_drive_name", "RFDs")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "rfd_pipeline")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "5m")
}

// ValidateForServer enforces the configuration needed to run the HTTP
// server: GitHub App credentials and a documents repository.
func (c *Config) ValidateForServer() error {
	if c.GitHub.AppID == 0 {
		return errors.New("github.app_id is required")
	}
	if c.GitHub.WebhookSecret == "" {
		return errors.New("github.webhook_secret is required")
	}
	if _, err := os.Stat(c.GitHub.PrivateKeyPath); os.IsNotExist(err) {
		return fmt.Errorf("github private key not found at path: %s", c.GitHub.PrivateKeyPath)
	}
	if c.Docs.Owner == "" || c.Docs.Repo == "" {
		return errors.New("docs.owner and docs.repo are required")
	}
	return nil
}

// ValidateForCLI enforces the lighter configuration needed for
// one-off CLI commands: a GitHub token (App or PAT) and a documents
// repository.
func (c *Config) ValidateForCLI() error {
	if c.GitHub.Token == "" && c.GitHub.AppID == 0 {
		return errors.New("github.token or github.app_id is required")
	}
	if c.Docs.Owner == "" || c.Docs.Repo == "" {
		return errors.New("docs.owner and docs.repo are required")
	}
	return nil
}
