package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "mongo", cfg.StorageBackend)
	assert.Equal(t, "homeserve", cfg.DatabaseName)
	assert.Equal(t, 3, cfg.RedisLockDB)
	assert.Equal(t, 15*time.Second, cfg.LockTTL())
	assert.Equal(t, cfg, AppConfig)

	sc := cfg.Scheduling()
	assert.Equal(t, "UTC", sc.DefaultTimezone)
	assert.Equal(t, 120, sc.SlotMinutes)
	assert.Equal(t, 20, sc.BufferMinutes)
	assert.Equal(t, 20, sc.TravelMinutes)
	assert.Equal(t, 5, sc.AlternativeLimit)
	assert.Equal(t, 14, sc.AlternativeDays)
	assert.Equal(t, 2*time.Hour, sc.PreferredWindow)
	assert.NotNil(t, sc.Now)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORAGE_BACKEND", "memory")
	v.Set("SCHEDULING_BUFFER_MINUTES", 45)
	v.Set("SCHEDULING_DEFAULT_TIMEZONE", "America/Chicago")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, 45, cfg.Scheduling().BufferMinutes)
	assert.Equal(t, "America/Chicago", cfg.Scheduling().DefaultTimezone)
}

func TestTrustedProxyList(t *testing.T) {
	assert.Nil(t, Config{}.TrustedProxyList())
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"},
		Config{TrustedProxies: " 10.0.0.0/8, ,192.168.1.1"}.TrustedProxyList())
}

func TestValidation(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"STORAGE_BACKEND", "postgres"},
		{"LOCK_BACKEND", "zookeeper"},
		{"SCHEDULING_DEFAULT_TIMEZONE", "Mars/Olympus"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := viper.New()
			setDefaults(v)
			v.Set(tt.key, tt.value)
			_, err := fromViper(v)
			assert.Error(t, err)
		})
	}
}
