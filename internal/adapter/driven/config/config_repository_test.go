package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aws-compliance-dashboard-go/internal/shared/types"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigFileFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "config.toml",
			content: `
aggregator_name = "org-aggregator"
accounts = ["111111111111", "222222222222"]
workers = 4
pack_reports = false

[attribution]
first_pack_fallback = true
`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `
aggregator_name: org-aggregator
accounts: ["111111111111", "222222222222"]
workers: 4
pack_reports: false
attribution:
  first_pack_fallback: true
`,
		},
		{
			name:    "json",
			file:    "config.json",
			content: `{"aggregator_name":"org-aggregator","accounts":["111111111111","222222222222"],"workers":4,"pack_reports":false,"attribution":{"first_pack_fallback":true}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfigRepository().LoadConfigFile(writeConfig(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, "org-aggregator", cfg.AggregatorName)
			assert.Equal(t, []string{"111111111111", "222222222222"}, cfg.Accounts)
			assert.Equal(t, 4, cfg.Workers)
			assert.False(t, cfg.PackReports)
			assert.True(t, cfg.Attribution.FirstPackFallback)

			// Chaves ausentes mantêm os defaults.
			defaults := types.DefaultConfig()
			assert.Equal(t, defaults.Region, cfg.Region)
			assert.Equal(t, defaults.CallTimeoutSeconds, cfg.CallTimeoutSeconds)
			assert.Equal(t, defaults.Attribution.Categories, cfg.Attribution.Categories)
			assert.Equal(t, defaults.Attribution.SuffixMarker, cfg.Attribution.SuffixMarker)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestLoadConfigFileReplacesCategories(t *testing.T) {
	path := writeConfig(t, "config.yml", `
aggregator_name: agg
attribution:
  categories:
    - family: PCI
      keywords: [pci, card]
  family_patterns:
    PCI: PCI-DSS
`)
	cfg, err := NewConfigRepository().LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, []types.CategoryConfig{{Family: "PCI", Keywords: []string{"pci", "card"}}}, cfg.Attribution.Categories)
	assert.Equal(t, "PCI-DSS", cfg.Attribution.FamilyPatterns["PCI"])
	assert.Equal(t, "CIS", cfg.Attribution.FamilyPatterns["CIS"])
}

func TestLoadConfigFileErrors(t *testing.T) {
	repo := NewConfigRepository()

	_, err := repo.LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "error accessing config file")

	_, err = repo.LoadConfigFile(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")

	_, err = repo.LoadConfigFile(writeConfig(t, "config.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported config file format: .ini")

	_, err = repo.LoadConfigFile(writeConfig(t, "config.toml", "aggregator_name = "))
	assert.ErrorContains(t, err, "error parsing TOML file")

	_, err = repo.LoadConfigFile(writeConfig(t, "config.json", `{"aggregator":"typo"}`))
	assert.ErrorContains(t, err, "error parsing JSON file")
}
