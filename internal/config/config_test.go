package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	v.Set("JWT_SECRET", "secret")

	cfg, err := load(v)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "usd", cfg.Currency)
	assert.Equal(t, "none", cfg.EventsBroker)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	v.Set("DB_DRIVER", "SQLite")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	v.Set("EVENTS_BROKER", "kafka")
	v.Set("TOKEN_TTL", "90m")
	v.Set("CURRENCY", "EUR")

	cfg, err := load(v)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "eur", cfg.Currency)
}

func TestLoadRejectsInvalid(t *testing.T) {
	v := viper.New()
	_, err := load(v)
	assert.ErrorContains(t, err, "JWT_SECRET is required")

	v = viper.New()
	v.Set("JWT_SECRET", "secret")
	v.Set("DB_DRIVER", "oracle")
	_, err = load(v)
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")

	v = viper.New()
	v.Set("JWT_SECRET", "secret")
	v.Set("EVENTS_BROKER", "nats")
	_, err = load(v)
	assert.ErrorContains(t, err, "unsupported EVENTS_BROKER")
}
