package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keyflash/internal/model"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Practice.Words)
	assert.Nil(t, cfg.Session.Duration)
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[practice]
lang = "de"
words = 40

[session]
duration = 60
tab-width = 2
strict-completion = true
card-delay-ms = 3000

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Practice.Lang)
	assert.Equal(t, "de", *cfg.Practice.Lang)
	assert.Equal(t, 40, *cfg.Practice.Words)
	assert.Equal(t, 60, *cfg.Session.Duration)
	assert.Equal(t, 2, *cfg.Session.TabWidth)
	assert.True(t, *cfg.Session.StrictCompletion)
	assert.Equal(t, 3000, *cfg.Session.CardDelayMs)
	assert.Nil(t, cfg.Session.IdleMs)
	assert.Equal(t, "debug", *cfg.Log.Level)
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[session]\nduratoin = 30\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session.duratoin")
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")

	assert.Equal(t, "/cfg/keyflash/config.toml", DefaultConfigPath())
	assert.Equal(t, "/cfg/keyflash/wordlists/fr.txt", DefaultWordListPath("fr"))
	assert.Equal(t, "/data/keyflash/keyflash.db", DefaultDBPath())
	assert.Equal(t, "/data/keyflash/keyflash.log", DefaultLogPath())
}

func validPractice() model.Config {
	return model.Config{
		Lang:       "en",
		Words:      25,
		CapsPct:    0.5,
		PunctPct:   0.5,
		PunctSet:   ".,",
		WeakTop:    8,
		WeakFactor: 2,
		WeakWindow: 20,
	}
}

func validSession() model.SessionConfig {
	return model.SessionConfig{
		DurationSec:     30,
		IdleMs:          1000,
		DebounceMs:      100,
		TabWidth:        4,
		QuestionDelayMs: 500,
		CardDelayMs:     5000,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

func TestValidatorAcceptsDefaults(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(validPractice()))
	assert.NoError(t, v.Validate(validSession()))
}

func TestValidatorReportsFlagNames(t *testing.T) {
	v := NewValidator()

	practice := validPractice()
	practice.Words = 0
	practice.CapsPct = 1.5
	err := v.Validate(practice)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--words must be > 0")
	assert.Contains(t, err.Error(), "--caps must be <= 1")

	session := validSession()
	session.LogLevel = "loud"
	session.TabWidth = 0
	err = v.Validate(session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--log-level must be one of: debug info warn warning error")
	assert.Contains(t, err.Error(), "--tab-width must be > 0")
}

func TestValidatorRejectsZeroQuizDelays(t *testing.T) {
	v := NewValidator()

	session := validSession()
	session.QuestionDelayMs = 0
	session.CardDelayMs = 0
	err := v.Validate(session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--question-delay-ms must be > 0")
	assert.Contains(t, err.Error(), "--card-delay-ms must be > 0")
}

func TestValidatorRequiredPunctSet(t *testing.T) {
	practice := validPractice()
	practice.PunctSet = ""
	err := NewValidator().Validate(practice)
	require.Error(t, err)
	assert.Equal(t, "--punct-set must not be empty", err.Error())
}
