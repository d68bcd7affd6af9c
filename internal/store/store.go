// Package store persists fabrics' aliases and zones. The import engine
// only depends on the Store interface; postgres and sqlite implementations
// live here.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/san-import-cli/internal/model"
)

// CreateResult reports the outcome of one submitted item. A Duplicate is
// not a failure: re-submitting an already-created record is expected after
// a retried call and surfaces here instead of creating a second row.
type CreateResult struct {
	Name      string `json:"name"`
	ID        string `json:"id,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Store is the persistence backend for the import pipeline.
type Store interface {
	// ListAliases returns every persisted alias for the fabric in one call;
	// reconciliation needs the complete set, not a page.
	ListAliases(ctx context.Context, fabricID string) ([]model.PersistedAlias, error)
	// ListZones returns every persisted zone for the fabric.
	ListZones(ctx context.Context, fabricID string) ([]model.PersistedZone, error)

	// CreateAliases inserts alias records, returning a per-item result list.
	// Lock contention fails the whole call so the retry layer can re-issue it.
	CreateAliases(ctx context.Context, fabricID string, aliases []model.AliasDTO) ([]CreateResult, error)
	// CreateZones inserts zone records with their resolved member alias ids.
	CreateZones(ctx context.Context, fabricID string, zones []model.ZoneDTO) ([]CreateResult, error)

	Migrate(ctx context.Context) error
	Close() error
}

// New opens a Store for the configured driver.
func New(ctx context.Context, driver, databaseURL string) (Store, error) {
	switch driver {
	case "postgres":
		return NewPostgres(ctx, databaseURL)
	case "sqlite":
		return NewSQLite(databaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
