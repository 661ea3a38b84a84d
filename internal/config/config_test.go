package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Europe/London", cfg.Timezone)
	assert.Equal(t, 28, cfg.WindowDays)
	assert.Equal(t, 14, cfg.DaysOld)
	assert.Equal(t, 3*time.Hour+30*time.Minute, cfg.TargetReviewTime)
	assert.Equal(t, []string{"dependabot"}, cfg.ExcludeAuthors)
	assert.Equal(t, []string{"mon", "tue", "wed", "thu", "fri"}, cfg.WorkingHours.Default.Days)
	assert.Equal(t, "09:00", cfg.WorkingHours.Default.Start)
	assert.Equal(t, "13:30", cfg.WorkingHours.Default.LunchEnd)
	assert.Equal(t, "transformed.json", cfg.TransformedFile)
	assert.Nil(t, cfg.Allow())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
timezone: America/New_York
target_review_time: 2h
names:
  P4rk: Luke
  irena7777: Irena
only_named: true
working_hours:
  overrides:
    P4rk:
      days: [tue, wed, thu, fri]
    irena7777:
      days: [wed, thu, fri]
      end: "16:00"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "America/New_York", cfg.Timezone)
	assert.Equal(t, 2*time.Hour, cfg.TargetReviewTime)
	assert.ElementsMatch(t, []string{"Luke", "Irena"}, cfg.Allow())

	loc, err := cfg.Location()
	require.NoError(t, err)
	cals, err := cfg.Calendars(loc)
	require.NoError(t, err)

	monday := time.Date(2024, time.January, 15, 0, 0, 0, 0, loc)
	tuesday := monday.AddDate(0, 0, 1)
	wednesday := tuesday.AddDate(0, 0, 1)
	thursday := wednesday.AddDate(0, 0, 1)

	assert.Equal(t, 7*time.Hour+30*time.Minute, cals.Elapsed(monday, tuesday, "someone"))
	assert.Equal(t, time.Duration(0), cals.Elapsed(monday, tuesday, "P4rk"))
	assert.Equal(t, 7*time.Hour+30*time.Minute, cals.Elapsed(tuesday, wednesday, "P4rk"))
	assert.Equal(t, time.Duration(0), cals.Elapsed(tuesday, wednesday, "irena7777"))
	assert.Equal(t, 6*time.Hour, cals.Elapsed(wednesday, thursday, "irena7777"))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad timezone", "timezone: Mars/Olympus\n"},
		{"bad weekday", "working_hours:\n  default:\n    days: [funday]\n"},
		{"bad clock", "working_hours:\n  default:\n    start: \"9am\"\n"},
		{"day ends before it starts", "working_hours:\n  default:\n    start: \"18:00\"\n    end: \"09:00\"\n"},
		{"bad override", "working_hours:\n  overrides:\n    bob:\n      days: [someday]\n"},
		{"zero window", "window_days: -1\n"},
		{"bad api url", "github_api_url: not a url\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_TokenFromEnvironment(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "secret")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.GitHubToken)
	assert.Empty(t, cfg.GitHubAPIURL)
}

func TestLoadGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [bob, carol]\nfrontend:\n  - dave\n"), 0o644))

	groups, err := LoadGroups(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"bob": "backend", "carol": "backend", "dave": "frontend"}, groups)
}

func TestLoadGroups_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"platform": ["erin"]}`), 0o644))

	groups, err := LoadGroups(path)
	require.NoError(t, err)
	assert.Equal(t, "platform", groups["erin"])
}

func TestLoadGroups_Errors(t *testing.T) {
	_, err := LoadGroups(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "groups.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: [bob]\nb: [bob]\n"), 0o644))
	_, err = LoadGroups(path)
	assert.ErrorContains(t, err, "bob is in groups")

	require.NoError(t, os.WriteFile(path, []byte("a: bob\n"), 0o644))
	_, err = LoadGroups(path)
	assert.Error(t, err)
}
