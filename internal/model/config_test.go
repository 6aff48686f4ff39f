package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, GroupingRolling, cfg.Display.Grouping)
	assert.Equal(t, "sunday", cfg.Display.WeekStart)
	assert.Equal(t, 0, cfg.Cache.MaxEntries)
	assert.False(t, cfg.Cache.RollbackOnError)
}

func TestLoadConfig_ReadsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `database:
  path: /tmp/x.db
display:
  grouping: calendar
  week_start: monday
  show_completed: false
cache:
  max_entries: 64
  rollback_on_error: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.Equal(t, GroupingCalendar, cfg.Display.Grouping)
	assert.Equal(t, "monday", cfg.Display.WeekStart)
	assert.False(t, cfg.Display.ShowCompleted)
	assert.Equal(t, 64, cfg.Cache.MaxEntries)
	assert.True(t, cfg.Cache.RollbackOnError)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  max_entries: 32\n"), 0o600))

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Cache.MaxEntries)
	assert.Equal(t, GroupingRolling, cfg.Display.Grouping)
	assert.True(t, cfg.Display.ShowCompleted)
	assert.Equal(t, DefaultDBPath(), cfg.Database.Path)
}

func TestLoadConfig_RejectsUnknownGrouping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("display:\n  grouping: weekly\n"), 0o600))

	_, err := LoadConfig(path)

	assert.ErrorContains(t, err, "display.grouping")
}

func TestLoadConfig_RejectsTinyCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  max_entries: 2\n"), 0o600))

	_, err := LoadConfig(path)

	assert.ErrorContains(t, err, "cache.max_entries")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultAppConfig()
	cfg.Database.Path = ":memory:"
	cfg.Display.Grouping = GroupingCalendar
	cfg.Cache.MaxEntries = 16

	require.NoError(t, SaveConfig(path, cfg))
	got, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, ":memory:", got.Database.Path)
	assert.Equal(t, GroupingCalendar, got.Display.Grouping)
	assert.Equal(t, 16, got.Cache.MaxEntries)
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want time.Weekday
	}{
		{"sunday", time.Sunday},
		{"Monday", time.Monday},
		{"sat", time.Saturday},
		{" wed ", time.Wednesday},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseWeekday("someday")
	assert.Error(t, err)
}
