package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/okian/woke/internal/domain/model"
)

// OpenPostgres opens a pooled connection to dsn and verifies it with a ping.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrLoadProviders, err)
	}
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrLoadProviders, err)
	}
	return db, nil
}

// PostgresProviders reads the provider snapshot from a providers table:
//
//	id text, name text, lat float8, lng float8, skill_tags text[],
//	rate_hour float8, service_radius_km float8 null, avg_rating float8 null,
//	reliability float8 null, stats jsonb null, active bool
type PostgresProviders struct {
	db         *sql.DB
	table      string
	activeOnly bool
}

// NewPostgresProviders wraps an open database handle.
func NewPostgresProviders(db *sql.DB, opts ...Option) *PostgresProviders {
	p := &PostgresProviders{db: db, table: DefaultTable, activeOnly: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PostgresProviders) query() string {
	q := "SELECT id, name, lat, lng, skill_tags, rate_hour, service_radius_km, avg_rating, reliability, stats FROM " +
		pq.QuoteIdentifier(p.table)
	if p.activeOnly {
		q += " WHERE active"
	}
	return q + " ORDER BY id"
}

// LoadProviders reads every provider row into the domain model.
func (p *PostgresProviders) LoadProviders(ctx context.Context) ([]model.Provider, error) {
	rows, err := p.db.QueryContext(ctx, p.query())
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", ErrLoadProviders, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Provider
	for rows.Next() {
		var (
			pr          model.Provider
			tags        []string
			radius      sql.NullFloat64
			rating      sql.NullFloat64
			reliability sql.NullFloat64
			stats       []byte
		)
		if err := rows.Scan(&pr.ID, &pr.Name, &pr.Lat, &pr.Lng, pq.Array(&tags), &pr.RateHour,
			&radius, &rating, &reliability, &stats); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrLoadProviders, err)
		}
		pr.SkillTags = tags
		if radius.Valid {
			pr.ServiceRadiusKm = radius.Float64
		}
		if rating.Valid {
			v := rating.Float64
			pr.AvgRating = &v
		}
		if reliability.Valid {
			v := reliability.Float64
			pr.Reliability = &v
		}
		if len(stats) > 0 {
			var recs map[string]statsRecord
			if err := json.Unmarshal(stats, &recs); err != nil {
				return nil, fmt.Errorf("%w: provider %s stats: %w", ErrInvalidRecord, pr.ID, err)
			}
			pr.Stats = toSkillStats(recs)
		}
		if err := checkFinite(&pr); err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %w", ErrLoadProviders, err)
	}
	return out, nil
}

// Close releases the database handle.
func (p *PostgresProviders) Close() error {
	return p.db.Close()
}
