package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"structured", "permissive", "plain"}, cfg.Strategies)
	assert.Equal(t, 200, cfg.MinVisibleChars)
	assert.Equal(t, 15, cfg.MaxSkillTokens)
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeFile(t, "cv_formatter.yaml", `
min_visible_chars: 150
max_skill_tokens: 10
strategies: [structured, plain]
port: 9000
render_timeout: 45s
log_level: DEBUG
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 150, cfg.MinVisibleChars)
	assert.Equal(t, 10, cfg.MaxSkillTokens)
	assert.Equal(t, []string{"structured", "plain"}, cfg.Strategies)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 45*time.Second, cfg.RenderTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Untouched keys keep their defaults
	assert.Equal(t, 4, cfg.BatchConcurrency)
	assert.Equal(t, "Curriculum Vitae", cfg.BrandText)
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"port": 8181, "brand_text": "Example Recruiting"}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Port)
	assert.Equal(t, "Example Recruiting", cfg.BrandText)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	path := writeFile(t, "cv_formatter.yaml", "port: 9000\n")
	t.Setenv("CVFMT_PORT", "9100")
	t.Setenv("CVFMT_BATCH_CONCURRENCY", "8")
	t.Setenv("CVFMT_LOG_LEVEL", "WARN")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 8, cfg.BatchConcurrency)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"invalid yaml", "port: [unclosed", "error reading config file"},
		{"unknown strategy", "strategies: [structured, fancy]", "config error"},
		{"port out of range", "port: 70000", "'Config.Port' failed 'lte'"},
		{"missing template file", "template_path: /nonexistent/cv.html.tmpl", "'Config.TemplatePath' failed 'file'"},
		{"bad log level", "log_level: verbose", "'Config.LogLevel' failed 'oneof'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "cv_formatter.yaml", tt.content)
			cfg, err := LoadConfig(path)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Port: 9000, BrandText: "Example Recruiting"}
	merged := cfg.MergeWithDefaults(DefaultConfig())

	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "Example Recruiting", merged.BrandText)
	assert.Equal(t, 200, merged.MinVisibleChars)
	assert.Equal(t, []string{"structured", "permissive", "plain"}, merged.Strategies)
	assert.Equal(t, uint(0), merged.RenderRetries)
	require.NoError(t, merged.Validate())

	// The receiver is not modified
	assert.Zero(t, cfg.MinVisibleChars)
}

func TestManager_Reload(t *testing.T) {
	path := writeFile(t, "cv_formatter.yaml", "min_visible_chars: 150\n")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cm, err := NewManager(path, logger)
	require.NoError(t, err)
	assert.Equal(t, 150, cm.Get().MinVisibleChars)

	var seen []*Config
	cm.OnChange(func(c *Config) { seen = append(seen, c) })

	require.NoError(t, os.WriteFile(path, []byte("min_visible_chars: 120\n"), 0644))
	require.NoError(t, cm.Reload())
	assert.Equal(t, 120, cm.Get().MinVisibleChars)
	require.Len(t, seen, 1)
	assert.Equal(t, 120, seen[0].MinVisibleChars)

	// An invalid file keeps the last good configuration
	require.NoError(t, os.WriteFile(path, []byte("min_visible_chars: 0\n"), 0644))
	require.Error(t, cm.Reload())
	assert.Equal(t, 120, cm.Get().MinVisibleChars)
	assert.Len(t, seen, 1)
}

func TestNewManager_InvalidConfig(t *testing.T) {
	path := writeFile(t, "cv_formatter.yaml", "batch_concurrency: 0\n")
	_, err := NewManager(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BatchConcurrency")
}
