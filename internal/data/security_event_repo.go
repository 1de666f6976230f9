package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campuslib/campuslib/internal/data/pgxutil"
	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
)

// SecurityEventRepo appends authentication and authorization events to an
// append-only table. The guard never reads events back; listing exists for
// admin review only.
type SecurityEventRepo struct {
	DB *sql.DB
}

// NewSecurityEventRepo creates a new SecurityEventRepo.
func NewSecurityEventRepo(db *sql.DB) *SecurityEventRepo {
	return &SecurityEventRepo{DB: db}
}

// Append records one security event.
func (r *SecurityEventRepo) Append(ctx context.Context, event domainauth.SecurityEvent) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx, `
			INSERT INTO security_events (occurred_at, description, principal_id, ip_address)
			VALUES ($1, $2, $3, $4)`,
			event.Timestamp.UTC(), event.Description, event.PrincipalID, event.IPAddress)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to append security event: %w", err)
	}
	return nil
}

// Recent returns the latest events for the admin audit screen.
func (r *SecurityEventRepo) Recent(ctx context.Context, limit int) ([]domainauth.SecurityEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	var out []domainauth.SecurityEvent
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT occurred_at, description, principal_id, ip_address
			FROM security_events
			ORDER BY occurred_at DESC
			LIMIT $1`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var ev domainauth.SecurityEvent
			if scanErr := rows.Scan(&ev.Timestamp, &ev.Description, &ev.PrincipalID, &ev.IPAddress); scanErr != nil {
				return scanErr
			}
			out = append(out, ev)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list security events: %w", err)
	}
	return out, nil
}
