package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServices(t *testing.T) {
	services, err := ParseServices("http")
	require.NoError(t, err)
	assert.True(t, services[ServiceModeHTTP])
	assert.False(t, services[ServiceModeOverdue])

	services, err = ParseServices("http, overdue")
	require.NoError(t, err)
	assert.True(t, services[ServiceModeHTTP])
	assert.True(t, services[ServiceModeOverdue])
}

func TestParseServicesInvalid(t *testing.T) {
	_, err := ParseServices("")
	require.Error(t, err)

	_, err = ParseServices("scheduler")
	require.Error(t, err)

	_, err = ParseServices(" , ,")
	require.Error(t, err)
}

func TestAuthConfigSanitize(t *testing.T) {
	a := AuthConfig{}
	a.Sanitize()
	assert.Equal(t, 3600*time.Second, a.IdleTimeout)
	assert.Equal(t, 300*time.Second, a.RotationInterval)
	assert.Greater(t, a.StoreTTL, a.IdleTimeout, "store TTL must outlive the idle timeout")
	assert.Equal(t, "session:", a.SessionKeyPrefix)
	assert.Equal(t, 10, a.BcryptCost)

	a = AuthConfig{IdleTimeout: time.Hour, StoreTTL: time.Minute, BcryptCost: 31}
	a.Sanitize()
	assert.Equal(t, 2*time.Hour, a.StoreTTL)
	assert.Equal(t, 14, a.BcryptCost)
}

func TestLendingConfigSanitize(t *testing.T) {
	l := LendingConfig{LoanPeriod: time.Hour, FineDailyCents: -1, MaxActiveLoans: 0}
	l.Sanitize()
	assert.Equal(t, 24*time.Hour, l.LoanPeriod)
	assert.Equal(t, int64(1), l.FineDailyCents)
	assert.Equal(t, 1, l.MaxActiveLoans)
}

func TestAppConfigSanitizeAndServiceChecks(t *testing.T) {
	c := AppConfig{Services: "http,overdue"}
	c.Sanitize()
	assert.True(t, c.IsHTTPServerEnabled())
	assert.True(t, c.IsOverdueRunnerEnabled())

	c = AppConfig{Services: "bogus"}
	assert.False(t, c.IsHTTPServerEnabled())
	assert.False(t, c.IsOverdueRunnerEnabled())
}
