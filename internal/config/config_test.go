package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "maitr.local", cfg.Site.BaseDomain)
	assert.Equal(t, "https", cfg.Site.Scheme)
	assert.Nil(t, cfg.Site.PreviewSuffixes)
	assert.False(t, cfg.DBEnabled)
	assert.False(t, cfg.RedisEnabled)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "site:routes", cfg.RouteStream.Name)
	assert.Equal(t, 2*time.Minute, cfg.Publish.ClaimTTL)
	assert.Equal(t, 15*time.Minute, cfg.Publish.JobTTL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("BASE_DOMAIN", "Maitr.DE")
	t.Setenv("PRIMARY_ALIASES", "app.maitr.de, ,builder.maitr.de")
	t.Setenv("PREVIEW_SUFFIXES", "")
	t.Setenv("RESERVED_NAMES", "admin,api")
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("MQTT_QOS", "2")
	t.Setenv("CLAIM_TTL", "30s")
	t.Setenv("JOB_TTL", "nonsense")

	cfg := Load()

	assert.Equal(t, "maitr.de", cfg.Site.BaseDomain)
	assert.Equal(t, []string{"app.maitr.de", "builder.maitr.de"}, cfg.Site.PrimaryAliases)
	assert.Equal(t, []string{}, cfg.Site.PreviewSuffixes)
	assert.Equal(t, []string{"admin", "api"}, cfg.Site.Reserved)
	assert.True(t, cfg.DBEnabled)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, byte(2), cfg.MQTT.QoS)
	assert.Equal(t, 30*time.Second, cfg.Publish.ClaimTTL)
	assert.Equal(t, 15*time.Minute, cfg.Publish.JobTTL)
}
