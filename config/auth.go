package config

import "time"

// AuthConfig groups all session and authentication configuration.
type AuthConfig struct {
	// IdleTimeout is how long a session may sit unused before it is
	// destroyed.
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"3600s"`

	// RotationInterval is how often the session ID is regenerated while the
	// session stays active.
	RotationInterval time.Duration `env:"SESSION_ROTATION_INTERVAL" envDefault:"300s"`

	// StoreTTL is the session record TTL in the session store. It must
	// exceed IdleTimeout; the store TTL is a backstop, not the timeout.
	StoreTTL time.Duration `env:"SESSION_STORE_TTL" envDefault:"2h"`

	// SessionKeyPrefix namespaces session keys in the store.
	SessionKeyPrefix string `env:"SESSION_KEY_PREFIX" envDefault:"session:"`

	// BcryptCost is the bcrypt work factor for new staff passwords.
	BcryptCost int `env:"AUTH_BCRYPT_COST" envDefault:"10"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.IdleTimeout <= 0 {
		a.IdleTimeout = 3600 * time.Second
	}
	if a.RotationInterval <= 0 {
		a.RotationInterval = 300 * time.Second
	}
	if a.StoreTTL <= a.IdleTimeout {
		a.StoreTTL = a.IdleTimeout * 2
	}
	if a.SessionKeyPrefix == "" {
		a.SessionKeyPrefix = "session:"
	}
	// bcrypt rejects costs outside [4, 31]; clamp to a sane band.
	if a.BcryptCost < 10 {
		a.BcryptCost = 10
	}
	if a.BcryptCost > 14 {
		a.BcryptCost = 14
	}
}
