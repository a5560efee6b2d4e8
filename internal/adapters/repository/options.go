package repository

import "time"

// Pool defaults for the Postgres provider source.
const (
	DefaultTable           = "providers"
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 5 * time.Minute
)

// Option configures a PostgresProviders.
type Option func(*PostgresProviders)

// WithTable sets the table providers are read from.
func WithTable(name string) Option {
	return func(p *PostgresProviders) {
		if name != "" {
			p.table = name
		}
	}
}

// WithActiveOnly restricts the snapshot to rows whose active column is true.
func WithActiveOnly(on bool) Option {
	return func(p *PostgresProviders) {
		p.activeOnly = on
	}
}
