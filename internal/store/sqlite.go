package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/san-import-cli/internal/model"
	"github.com/sells-group/san-import-cli/internal/resilience"
)

// SQLiteStore implements Store using modernc.org/sqlite. Used for
// single-operator installs and as the integration-test backend.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS aliases (
	id         TEXT PRIMARY KEY,
	fabric_id  TEXT NOT NULL,
	name       TEXT NOT NULL,
	wwpn       TEXT NOT NULL,
	vsan       INTEGER,
	role       TEXT NOT NULL DEFAULT 'initiator',
	syntax     TEXT NOT NULL DEFAULT 'device-alias',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_aliases_fabric_wwpn ON aliases(fabric_id, wwpn);
CREATE UNIQUE INDEX IF NOT EXISTS idx_aliases_fabric_name ON aliases(fabric_id, lower(name));

CREATE TABLE IF NOT EXISTS zones (
	id         TEXT PRIMARY KEY,
	fabric_id  TEXT NOT NULL,
	name       TEXT NOT NULL,
	vsan       INTEGER,
	zone_type  TEXT NOT NULL DEFAULT 'standard',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_zones_fabric_name ON zones(fabric_id, lower(name));

CREATE TABLE IF NOT EXISTS zone_members (
	zone_id  TEXT NOT NULL REFERENCES zones(id),
	alias_id TEXT NOT NULL REFERENCES aliases(id),
	position INTEGER NOT NULL,
	PRIMARY KEY (zone_id, position)
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListAliases(ctx context.Context, fabricID string) ([]model.PersistedAlias, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fabric_id, name, wwpn FROM aliases WHERE fabric_id = ? ORDER BY name`,
		fabricID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list aliases")
	}
	defer rows.Close()

	var aliases []model.PersistedAlias
	for rows.Next() {
		var a model.PersistedAlias
		if err := rows.Scan(&a.ID, &a.FabricID, &a.Name, &a.WWPN); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan alias")
		}
		aliases = append(aliases, a)
	}
	return aliases, eris.Wrap(rows.Err(), "sqlite: list aliases iterate")
}

func (s *SQLiteStore) ListZones(ctx context.Context, fabricID string) ([]model.PersistedZone, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fabric_id, name FROM zones WHERE fabric_id = ? ORDER BY name`,
		fabricID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list zones")
	}
	defer rows.Close()

	var zones []model.PersistedZone
	for rows.Next() {
		var z model.PersistedZone
		if err := rows.Scan(&z.ID, &z.FabricID, &z.Name); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan zone")
		}
		zones = append(zones, z)
	}
	return zones, eris.Wrap(rows.Err(), "sqlite: list zones iterate")
}

func (s *SQLiteStore) CreateAliases(ctx context.Context, fabricID string, aliases []model.AliasDTO) ([]CreateResult, error) {
	results := make([]CreateResult, 0, len(aliases))
	for _, a := range aliases {
		res := CreateResult{Name: a.Name}
		id := uuid.New().String()

		_, err := s.db.ExecContext(ctx,
			`INSERT INTO aliases (id, fabric_id, name, wwpn, vsan, role, syntax) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, fabricID, a.Name, a.WWPN, a.VSAN, string(a.Role), string(a.Syntax),
		)

		switch {
		case err == nil:
			res.ID = id
		case isSQLiteUniqueViolation(err):
			res.Duplicate = true
		case resilience.IsLockContention(err):
			return results, eris.Wrapf(err, "sqlite: create alias %s", a.Name)
		default:
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *SQLiteStore) CreateZones(ctx context.Context, fabricID string, zones []model.ZoneDTO) ([]CreateResult, error) {
	results := make([]CreateResult, 0, len(zones))
	for _, z := range zones {
		res := CreateResult{Name: z.Name}
		id := uuid.New().String()

		_, err := s.db.ExecContext(ctx,
			`INSERT INTO zones (id, fabric_id, name, vsan, zone_type) VALUES (?, ?, ?, ?, ?)`,
			id, fabricID, z.Name, z.VSAN, z.ZoneType,
		)

		switch {
		case err == nil:
			res.ID = id
		case isSQLiteUniqueViolation(err):
			res.Duplicate = true
			results = append(results, res)
			continue
		case resilience.IsLockContention(err):
			return results, eris.Wrapf(err, "sqlite: create zone %s", z.Name)
		default:
			res.Error = err.Error()
			results = append(results, res)
			continue
		}

		for pos, aliasID := range z.MemberIDs {
			if _, err := s.db.ExecContext(ctx,
				`INSERT INTO zone_members (zone_id, alias_id, position) VALUES (?, ?, ?)`,
				id, aliasID, pos,
			); err != nil {
				if resilience.IsLockContention(err) {
					return results, eris.Wrapf(err, "sqlite: create zone member %s", z.Name)
				}
				res.Error = err.Error()
				break
			}
		}
		results = append(results, res)
	}
	return results, nil
}

func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
