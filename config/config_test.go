package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CF_APP_ID", "")
	t.Setenv("CF_SECRET", "")
	t.Setenv("JWT_ACCESS_EXPIRY", "")

	cfg := Load()
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshExpiry)
	assert.Equal(t, "2022-01-01", cfg.Cashfree.APIVersion)
	assert.False(t, cfg.Cashfree.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("JWT_ACCESS_EXPIRY", "5m")
	t.Setenv("RATE_LIMIT", "7")
	t.Setenv("CF_APP_ID", "app")
	t.Setenv("CF_SECRET", "secret")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 7, cfg.RateLimit.Limit)
	assert.True(t, cfg.Cashfree.Enabled())
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MAIL_PORT", "not-a-port")
	t.Setenv("RECONCILE_AFTER", "soon")

	cfg := Load()
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, 15*time.Minute, cfg.Reconcile.After)
}

func TestLoadTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")
	assert.Empty(t, Load().Server.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", " 10.0.0.1, ,10.0.0.0/8 ")
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.0/8"}, Load().Server.TrustedProxies)
}

func TestValidateProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")
	t.Setenv("CF_APP_ID", "app")
	t.Setenv("CF_SECRET", "secret")
	t.Setenv("CF_WEBHOOK_SECRET", "")

	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ACCESS_SECRET")
	assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET")
	assert.Contains(t, err.Error(), "CF_WEBHOOK_SECRET")

	t.Setenv("JWT_ACCESS_SECRET", "a-long-random-access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "a-long-random-access-secret")
	t.Setenv("CF_WEBHOOK_SECRET", "whsec")
	assert.ErrorContains(t, Load().Validate(), "must differ")

	t.Setenv("JWT_REFRESH_SECRET", "a-long-random-refresh-secret")
	assert.NoError(t, Load().Validate())
}

func TestValidateAllowsDefaultsOutsideProduction(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("CF_WEBHOOK_SECRET", "")
	assert.NoError(t, Load().Validate())
}
