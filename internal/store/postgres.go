package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/san-import-cli/internal/model"
	"github.com/sells-group/san-import-cli/internal/resilience"
)

// Pool abstracts pgxpool.Pool so store tests can substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool (used by tests).
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS aliases (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	fabric_id  TEXT NOT NULL,
	name       TEXT NOT NULL,
	wwpn       TEXT NOT NULL,
	vsan       INTEGER,
	role       TEXT NOT NULL DEFAULT 'initiator',
	syntax     TEXT NOT NULL DEFAULT 'device-alias',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_aliases_fabric_wwpn ON aliases(fabric_id, wwpn);
CREATE UNIQUE INDEX IF NOT EXISTS idx_aliases_fabric_name ON aliases(fabric_id, lower(name));

CREATE TABLE IF NOT EXISTS zones (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	fabric_id  TEXT NOT NULL,
	name       TEXT NOT NULL,
	vsan       INTEGER,
	zone_type  TEXT NOT NULL DEFAULT 'standard',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_zones_fabric_name ON zones(fabric_id, lower(name));

CREATE TABLE IF NOT EXISTS zone_members (
	zone_id  TEXT NOT NULL REFERENCES zones(id),
	alias_id TEXT NOT NULL REFERENCES aliases(id),
	position INTEGER NOT NULL,
	PRIMARY KEY (zone_id, position)
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ListAliases(ctx context.Context, fabricID string) ([]model.PersistedAlias, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, fabric_id, name, wwpn FROM aliases WHERE fabric_id = $1 ORDER BY name`,
		fabricID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list aliases")
	}
	defer rows.Close()

	var aliases []model.PersistedAlias
	for rows.Next() {
		var a model.PersistedAlias
		if err := rows.Scan(&a.ID, &a.FabricID, &a.Name, &a.WWPN); err != nil {
			return nil, eris.Wrap(err, "postgres: scan alias")
		}
		aliases = append(aliases, a)
	}
	return aliases, eris.Wrap(rows.Err(), "postgres: list aliases iterate")
}

func (s *PostgresStore) ListZones(ctx context.Context, fabricID string) ([]model.PersistedZone, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, fabric_id, name FROM zones WHERE fabric_id = $1 ORDER BY name`,
		fabricID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list zones")
	}
	defer rows.Close()

	var zones []model.PersistedZone
	for rows.Next() {
		var z model.PersistedZone
		if err := rows.Scan(&z.ID, &z.FabricID, &z.Name); err != nil {
			return nil, eris.Wrap(err, "postgres: scan zone")
		}
		zones = append(zones, z)
	}
	return zones, eris.Wrap(rows.Err(), "postgres: list zones iterate")
}

func (s *PostgresStore) CreateAliases(ctx context.Context, fabricID string, aliases []model.AliasDTO) ([]CreateResult, error) {
	results := make([]CreateResult, 0, len(aliases))
	for _, a := range aliases {
		res := CreateResult{Name: a.Name}

		var id string
		err := s.pool.QueryRow(ctx,
			`INSERT INTO aliases (fabric_id, name, wwpn, vsan, role, syntax) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			fabricID, a.Name, a.WWPN, a.VSAN, string(a.Role), string(a.Syntax),
		).Scan(&id)

		switch {
		case err == nil:
			res.ID = id
		case isUniqueViolation(err):
			res.Duplicate = true
		case resilience.IsLockContention(err):
			return results, eris.Wrapf(err, "postgres: create alias %s", a.Name)
		default:
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *PostgresStore) CreateZones(ctx context.Context, fabricID string, zones []model.ZoneDTO) ([]CreateResult, error) {
	results := make([]CreateResult, 0, len(zones))
	for _, z := range zones {
		res := CreateResult{Name: z.Name}

		var id string
		err := s.pool.QueryRow(ctx,
			`INSERT INTO zones (fabric_id, name, vsan, zone_type) VALUES ($1, $2, $3, $4) RETURNING id`,
			fabricID, z.Name, z.VSAN, z.ZoneType,
		).Scan(&id)

		switch {
		case err == nil:
			res.ID = id
		case isUniqueViolation(err):
			res.Duplicate = true
			results = append(results, res)
			continue
		case resilience.IsLockContention(err):
			return results, eris.Wrapf(err, "postgres: create zone %s", z.Name)
		default:
			res.Error = err.Error()
			results = append(results, res)
			continue
		}

		for pos, aliasID := range z.MemberIDs {
			if _, err := s.pool.Exec(ctx,
				`INSERT INTO zone_members (zone_id, alias_id, position) VALUES ($1, $2, $3)`,
				id, aliasID, pos,
			); err != nil {
				if resilience.IsLockContention(err) {
					return results, eris.Wrapf(err, "postgres: create zone member %s", z.Name)
				}
				res.Error = err.Error()
				break
			}
		}
		results = append(results, res)
	}
	return results, nil
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
