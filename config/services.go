package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeOverdue runs the overdue loan sweep.
	ServiceModeOverdue ServiceMode = "overdue"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeOverdue}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeOverdue:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, overdue)", serviceName)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// LendingConfig contains lending policy configuration.
type LendingConfig struct {
	// LoanPeriod is how long a member may keep a book.
	LoanPeriod time.Duration `env:"LENDING_LOAN_PERIOD" envDefault:"336h"` // 14 days

	// FineDailyCents is the fine per late day, in cents.
	FineDailyCents int64 `env:"LENDING_FINE_DAILY_CENTS" envDefault:"50"`

	// MaxActiveLoans caps concurrent loans per member.
	MaxActiveLoans int `env:"LENDING_MAX_ACTIVE_LOANS" envDefault:"5"`
}

// Sanitize applies guardrails to lending configuration values.
func (l *LendingConfig) Sanitize() {
	if l.LoanPeriod < 24*time.Hour {
		l.LoanPeriod = 24 * time.Hour
	}
	if l.FineDailyCents < 1 {
		l.FineDailyCents = 1
	}
	if l.MaxActiveLoans < 1 {
		l.MaxActiveLoans = 1
	}
}

// OverdueConfig contains overdue sweep service configuration.
type OverdueConfig struct {
	// Interval is the sweep tick interval.
	Interval time.Duration `env:"OVERDUE_INTERVAL" envDefault:"15m"`
}

// Sanitize applies guardrails to overdue sweep configuration values.
func (o *OverdueConfig) Sanitize() {
	if o.Interval < time.Minute {
		o.Interval = time.Minute
	}
}
