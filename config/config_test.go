package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesWatchesEverythingWhenUnset(t *testing.T) {
	var c Categories

	for _, category := range []string{"Compute", "Storage", "Other"} {
		assert.True(t, c.Watches(category))
	}
}

func TestCategoriesWatchesOnlyEnabled(t *testing.T) {
	c := Categories{Network: true, Security: true}

	assert.True(t, c.Watches("Network"))
	assert.True(t, c.Watches("security"))
	assert.False(t, c.Watches("Compute"))
	assert.False(t, c.Watches("Other"))
	assert.False(t, c.Watches("not-a-category"))
}

func TestScansSubscriptionIncludeWinsOverSkip(t *testing.T) {
	c := &Config{
		IncludeSubscriptions: []string{"AAA", "bbb"},
		SkipSubscriptions:    []string{"aaa"},
	}

	assert.True(t, c.ScansSubscription("aaa"))
	assert.True(t, c.ScansSubscription("BBB"))
	assert.False(t, c.ScansSubscription("ccc"))
}

func TestScansSubscriptionSkipList(t *testing.T) {
	c := &Config{SkipSubscriptions: []string{"dead-sub"}}

	assert.False(t, c.ScansSubscription("DEAD-SUB"))
	assert.True(t, c.ScansSubscription("live-sub"))
}

func TestIntervalDefaultsWhenUnset(t *testing.T) {
	c := &Config{}
	assert.Equal(t, defaultIntervalMinutes, int(c.Interval().Minutes()))

	c.IntervalMinutes = 5
	assert.Equal(t, 5, int(c.Interval().Minutes()))
}

func TestLoadWriteRoundTrip(t *testing.T) {
	t.Setenv("AZURESCOPE_CONFIG", t.TempDir())

	c, err := New()
	require.NoError(t, err)

	c.Enabled = true
	c.IntervalMinutes = 7
	c.Categories.Database = true
	c.Handler.Slack.Channel = "#azure"
	require.NoError(t, c.Write())

	loaded, err := New()
	require.NoError(t, err)
	assert.True(t, loaded.Enabled)
	assert.Equal(t, 7, loaded.IntervalMinutes)
	assert.True(t, loaded.Categories.Database)
	assert.Equal(t, "#azure", loaded.Handler.Slack.Channel)
}
