package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/san-import-cli/internal/importer"
	"github.com/sells-group/san-import-cli/internal/model"
	"github.com/sells-group/san-import-cli/internal/parse"
	"github.com/sells-group/san-import-cli/internal/reconcile"
	"github.com/sells-group/san-import-cli/internal/resilience"
	"github.com/sells-group/san-import-cli/internal/roles"
	"github.com/sells-group/san-import-cli/internal/store"
)

// openStore opens the configured inventory backend and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.New(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// buildClassifier wires the role classifier from config: the remote
// service when configured, the local rule file when present, nil
// otherwise (smart mode then falls back to initiator for everything).
func buildClassifier() roles.Classifier {
	if cfg.Roles.RemoteURL != "" {
		return roles.NewRemoteClassifier(roles.RemoteOptions{
			BaseURL:           cfg.Roles.RemoteURL,
			RequestsPerSecond: cfg.Roles.RequestsPerSecond,
		})
	}

	if _, err := os.Stat(cfg.Roles.RulesPath); err != nil {
		zap.L().Debug("no role rules file, smart classification disabled",
			zap.String("path", cfg.Roles.RulesPath))
		return nil
	}
	rc, err := roles.LoadRules(cfg.Roles.RulesPath)
	if err != nil {
		zap.L().Warn("failed to load role rules, smart classification disabled",
			zap.String("path", cfg.Roles.RulesPath), zap.Error(err))
		return nil
	}
	return rc
}

// importOptions assembles the per-batch options from config, overridable
// by flags where the command exposes them.
func importOptions(fabricID string) importer.Options {
	submit := resilience.DefaultRetryConfig()
	if cfg.Import.SubmitMaxAttempts > 0 {
		submit.MaxAttempts = cfg.Import.SubmitMaxAttempts
	}
	refresh := resilience.DefaultRetryConfig()
	if cfg.Import.RefreshMaxAttempts > 0 {
		refresh.MaxAttempts = cfg.Import.RefreshMaxAttempts
	}

	return importer.Options{
		FabricID: fabricID,
		Alias: parse.AliasDefaults{
			Create:          cfg.Import.Create,
			IncludeInZoning: cfg.Import.IncludeInZoning,
			RoleMode:        parse.RoleMode(cfg.Import.RoleMode),
			StaticRole:      model.Role(cfg.Import.StaticRole),
			SyntaxOverride:  cfg.Import.SyntaxOverride,
		},
		Zone: parse.ZoneDefaults{
			Create:       cfg.Import.Create,
			ZoneTypeMode: cfg.Import.ZoneTypeMode,
		},
		ConflictPolicy: reconcile.ConflictPolicy(cfg.Import.ConflictPolicy),
		SubmitRetry:    submit,
		RefreshRetry:   refresh,
	}
}

// readDocuments loads each path into a source document named after the file.
func readDocuments(paths []string) ([]model.SourceDocument, error) {
	docs := make([]model.SourceDocument, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", p)
		}
		docs = append(docs, model.SourceDocument{
			Name: filepath.Base(p),
			Text: string(raw),
		})
	}
	return docs, nil
}
