package bootstrap

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/campuslib/campuslib/config"
	"github.com/campuslib/campuslib/internal/adapters/memberauth"
	redisadapter "github.com/campuslib/campuslib/internal/adapters/redis"
	"github.com/campuslib/campuslib/internal/adapters/staffauth"
	"github.com/campuslib/campuslib/internal/data"
	"github.com/campuslib/campuslib/internal/ports"
	"github.com/campuslib/campuslib/internal/service"
)

// BuildSessionGuard wires the session guard from configuration: the Redis
// session store, the ordered credential tiers (staff first, then member),
// and the security event sink.
func BuildSessionGuard(cfg config.AuthConfig, db *sql.DB, redisClient redis.UniversalClient, logger *slog.Logger) (*service.SessionGuard, error) {
	if db == nil {
		return nil, errors.New("database connection is required")
	}
	if redisClient == nil {
		return nil, errors.New("redis client is required")
	}

	sessions := redisadapter.NewSessionStoreWithTTL(redisClient, cfg.SessionKeyPrefix, cfg.StoreTTL)

	strategies := []ports.AuthStrategy{
		&staffauth.Strategy{
			Directory: data.NewStaffRepo(db),
			Logger:    logger,
		},
		&memberauth.Strategy{
			Directory: data.NewMemberRepo(db),
		},
	}

	guard := service.NewSessionGuard(service.SessionGuardOptions{
		Sessions:         sessions,
		Strategies:       strategies,
		Events:           data.NewSecurityEventRepo(db),
		Logger:           logger,
		IdleTimeout:      cfg.IdleTimeout,
		RotationInterval: cfg.RotationInterval,
	})

	logger.Info("session guard configured",
		"idle_timeout", cfg.IdleTimeout,
		"rotation_interval", cfg.RotationInterval)

	return guard, nil
}
