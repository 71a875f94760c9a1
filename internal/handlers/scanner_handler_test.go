package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/azurescope/explorer/config"
)

func TestApplyConfigPatchFromMapUpdatesOnlyProvidedFields(t *testing.T) {
	cfg := &config.Config{
		Categories:      config.Categories{Compute: true, Network: true},
		IntervalMinutes: 30,
		Enabled:         true,
	}
	cfg.Handler.Webhook.Url = "https://old.example.com/hook"

	applyConfigPatchFromMap(cfg, map[string]interface{}{
		"categories": map[string]interface{}{
			"compute": false,
			"storage": true,
		},
		"intervalMinutes": float64(15),
	})

	assert.False(t, cfg.Categories.Compute)
	assert.True(t, cfg.Categories.Storage)
	assert.True(t, cfg.Categories.Network)
	assert.Equal(t, 15, cfg.IntervalMinutes)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "https://old.example.com/hook", cfg.Handler.Webhook.Url)
}

func TestApplyConfigPatchFromMapWebhookBlock(t *testing.T) {
	cfg := &config.Config{}

	applyConfigPatchFromMap(cfg, map[string]interface{}{
		"handler": map[string]interface{}{
			"webhook": map[string]interface{}{
				"url":     "https://hooks.example.com/scan",
				"tlsskip": true,
			},
		},
		"enabled": true,
	})

	assert.Equal(t, "https://hooks.example.com/scan", cfg.Handler.Webhook.Url)
	assert.True(t, cfg.Handler.Webhook.TlsSkip)
	assert.Empty(t, cfg.Handler.Webhook.Cert)
	assert.True(t, cfg.Enabled)
}

func TestApplyConfigPatchFromMapSubscriptionLists(t *testing.T) {
	cfg := &config.Config{}

	applyConfigPatchFromMap(cfg, map[string]interface{}{
		"skipSubscriptions":    []interface{}{"sub-1", "sub-2"},
		"includeSubscriptions": []interface{}{"sub-3"},
	})

	assert.Equal(t, []string{"sub-1", "sub-2"}, cfg.SkipSubscriptions)
	assert.Equal(t, []string{"sub-3"}, cfg.IncludeSubscriptions)
}

func TestApplyConfigPatchFromMapIgnoresWrongTypes(t *testing.T) {
	cfg := &config.Config{IntervalMinutes: 30}

	applyConfigPatchFromMap(cfg, map[string]interface{}{
		"intervalMinutes":   "soon",
		"enabled":           "yes",
		"skipSubscriptions": []interface{}{"sub-1", 42, "sub-2"},
	})

	// Mistyped scalars are dropped; mistyped list members are skipped.
	assert.Equal(t, 30, cfg.IntervalMinutes)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, []string{"sub-1", "sub-2"}, cfg.SkipSubscriptions)
}
