package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azurescope/explorer/pkg/config"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := config.Parse([]string{"azurescope"})
	require.NoError(t, err)

	assert.Equal(t, uint(8080), cfg.Port)
	assert.False(t, cfg.DevMode)
	assert.False(t, cfg.EnableScanner)
	assert.True(t, cfg.EnableMetrics)
	assert.Equal(t, "az", cfg.AzPath)
	assert.Empty(t, cfg.BaseURL)
}

func TestParseFlags(t *testing.T) {
	cfg, err := config.Parse([]string{
		"azurescope",
		"--port", "9000",
		"--dev-mode",
		"--base-url", "/scope",
		"--az-path", "/usr/local/bin/az",
	})
	require.NoError(t, err)

	assert.Equal(t, uint(9000), cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "/scope", cfg.BaseURL)
	assert.Equal(t, "/usr/local/bin/az", cfg.AzPath)
}

func TestParseEnvOverridesDefaults(t *testing.T) {
	t.Setenv("AZURESCOPE_PORT", "7100")
	t.Setenv("AZURESCOPE_ENABLE_SCANNER", "true")

	cfg, err := config.Parse([]string{"azurescope"})
	require.NoError(t, err)

	assert.Equal(t, uint(7100), cfg.Port)
	assert.True(t, cfg.EnableScanner)
}

func TestParseFlagBeatsEnv(t *testing.T) {
	t.Setenv("AZURESCOPE_PORT", "7100")

	cfg, err := config.Parse([]string{"azurescope", "--port", "7200"})
	require.NoError(t, err)

	assert.Equal(t, uint(7200), cfg.Port)
}

func TestParseRejectsBaseURLWithoutSlash(t *testing.T) {
	_, err := config.Parse([]string{"azurescope", "--base-url", "scope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base-url")
}

func TestParseRejectsPortOutOfRange(t *testing.T) {
	_, err := config.Parse([]string{"azurescope", "--port", "70000"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{name: "defaults", cfg: config.Config{Port: 8080}, wantErr: false},
		{name: "zero port", cfg: config.Config{Port: 0}, wantErr: true},
		{name: "base url with slash", cfg: config.Config{Port: 80, BaseURL: "/x"}, wantErr: false},
		{name: "base url without slash", cfg: config.Config{Port: 80, BaseURL: "x"}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
