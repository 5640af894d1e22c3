package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := FromMap(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFromMap_Values(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"LEADCHAT_ADDR":  ":9090",
		"STORE":          "redis",
		"REDIS_DB":       "3",
		"RELAY_TIMEOUT":  "5s",
		"RELAY_ATTEMPTS": " 4 ",
		"SESSION_TTL":    "",
		"CONTACT_EMAIL":  "me@example.com",
		"STORE_KEY":      "a2V5",
	})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 5*time.Second, cfg.RelayTimeout)
	assert.Equal(t, 4, cfg.RelayAttempts)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL, "empty values keep the default")
	assert.Equal(t, "me@example.com", cfg.ContactEmail)
	assert.Equal(t, "a2V5", cfg.StoreKey)
}

func TestFromMap_ParseErrorsNameTheKey(t *testing.T) {
	_, err := FromMap(map[string]string{
		"REDIS_DB":      "zero",
		"RELAY_TIMEOUT": "soon",
	})
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok, "all bad keys are reported")
	var keys []string
	for _, e := range joined.Unwrap() {
		var kerr *KeyError
		require.ErrorAs(t, e, &kerr)
		keys = append(keys, kerr.Key)
	}
	assert.ElementsMatch(t, []string{"REDIS_DB", "RELAY_TIMEOUT"}, keys)
	assert.Contains(t, err.Error(), "LEADCHAT_REDIS_DB")
	assert.Contains(t, err.Error(), "LEADCHAT_RELAY_TIMEOUT")
}

func TestValidate(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown store": {"STORE": "postgres"},
		"zero attempts": {"RELAY_ATTEMPTS": "0"},
		"negative db":   {"REDIS_DB": "-1"},
		"zero timeout":  {"RELAY_TIMEOUT": "0s"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromMap(env)
			var kerr *KeyError
			assert.ErrorAs(t, err, &kerr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LEADCHAT_FLOW=flows/site.yaml\nLEADCHAT_ADDR=:7000\n"), 0o600))
	t.Setenv("LEADCHAT_ADDR", ":6000")

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	t.Cleanup(func() { os.Unsetenv("LEADCHAT_FLOW") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "flows/site.yaml", cfg.Flow)
	assert.Equal(t, ":6000", cfg.Addr, "existing variables win")
}
