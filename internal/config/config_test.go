package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	keyPath := filepath.Join(t.TempDir(), "app.pem")
	require.NoError(t, os.WriteFile(keyPath, []byte("not-a-real-key"), 0o600))

	return &Config{
		GitHub: GitHubConfig{
			AppID:          1,
			WebhookSecret:  "secret",
			PrivateKeyPath: keyPath,
		},
		Docs: DocsConfig{Owner: "oxidecomputer", Repo: "rfd"},
	}
}

func TestValidateForServerRequiresAppCredentials(t *testing.T) {
	cfg := validConfig(t)
	require.NoError(t, cfg.ValidateForServer())

	cfg.GitHub.AppID = 0
	assert.Error(t, cfg.ValidateForServer())
}

func TestValidateForServerRequiresPrivateKeyFile(t *testing.T) {
	cfg := validConfig(t)
	cfg.GitHub.PrivateKeyPath = filepath.Join(t.TempDir(), "missing.pem")
	assert.Error(t, cfg.ValidateForServer())
}

func TestValidateForServerRequiresDocsRepo(t *testing.T) {
	cfg := validConfig(t)
	cfg.Docs.Repo = ""
	assert.Error(t, cfg.ValidateForServer())
}

func TestValidateForCLIAcceptsTokenWithoutApp(t *testing.T) {
	cfg := &Config{
		GitHub: GitHubConfig{Token: "ghp_xxx"},
		Docs:   DocsConfig{Owner: "oxidecomputer", Repo: "rfd"},
	}
	assert.NoError(t, cfg.ValidateForCLI())
}

func TestValidateForCLIRequiresCredential(t *testing.T) {
	cfg := &Config{Docs: DocsConfig{Owner: "oxidecomputer", Repo: "rfd"}}
	assert.Error(t, cfg.ValidateForCLI())
}

func TestGetDSN(t *testing.T) {
	db := DBConfig{
		Host:     "localhost",
		Port:     5432,
		Username: "postgres",
		Password: "pw",
		Database: "rfd_pipeline",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=localhost port=5432 user=postgres password=pw dbname=rfd_pipeline sslmode=disable", db.GetDSN())
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	t.Setenv("DOCS_OWNER", "oxidecomputer")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "master", cfg.Docs.DefaultBranch)
	assert.Equal(t, "oxidecomputer", cfg.Docs.Owner)
}
