// Package importer drives the end-to-end bulk-import pipeline: classify,
// extract, deduplicate, reconcile against storage, and submit in two
// phases (aliases before zones).
package importer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/san-import-cli/internal/model"
	"github.com/sells-group/san-import-cli/internal/parse"
	"github.com/sells-group/san-import-cli/internal/reconcile"
	"github.com/sells-group/san-import-cli/internal/resilience"
	"github.com/sells-group/san-import-cli/internal/roles"
	"github.com/sells-group/san-import-cli/internal/store"
)

// Options carries the per-batch import settings.
type Options struct {
	FabricID       string
	Alias          parse.AliasDefaults
	Zone           parse.ZoneDefaults
	ConflictPolicy reconcile.ConflictPolicy

	// SubmitRetry bounds retries of alias/zone submission on transient
	// lock contention.
	SubmitRetry resilience.RetryConfig
	// RefreshRetry bounds the post-submission alias refresh that tolerates
	// read-after-write lag.
	RefreshRetry resilience.RetryConfig
}

// Plan is the reconciled outcome of a batch, presented to the caller for
// confirmation before submission.
type Plan struct {
	BatchID   string                 `json:"batch_id"`
	FabricID  string                 `json:"fabric_id"`
	Documents []model.SourceDocument `json:"documents,omitempty"`
	Aliases   []model.AliasCandidate `json:"aliases"`
	Zones     []model.ZoneCandidate  `json:"zones"`
}

// Orchestrator runs the pipeline. It is the only component that talks to
// the backend; one batch at a time, never interleaved with an in-flight
// submission against the same fabric.
type Orchestrator struct {
	store     store.Store
	extractor *parse.AliasExtractor
}

// New creates an Orchestrator. classifier may be nil when smart role mode
// is not in use.
func New(st store.Store, classifier roles.Classifier) *Orchestrator {
	return &Orchestrator{
		store:     st,
		extractor: parse.NewAliasExtractor(classifier),
	}
}

// Plan runs the two collection phases over all source documents.
//
// Phase 1 pools every document's alias candidates without submitting
// anything, so that a zone in one file can reference an alias declared in
// another. Phase 2 re-runs extraction per document against the full pool,
// then deduplicates and reconciles against the persisted snapshot.
func (o *Orchestrator) Plan(ctx context.Context, docs []model.SourceDocument, opts Options) (*Plan, error) {
	log := zap.L().With(
		zap.String("component", "importer"),
		zap.String("fabric", opts.FabricID),
	)
	start := time.Now()

	persisted, err := o.store.ListAliases(ctx, opts.FabricID)
	if err != nil {
		return nil, eris.Wrap(err, "importer: list persisted aliases")
	}
	persistedZones, err := o.store.ListZones(ctx, opts.FabricID)
	if err != nil {
		return nil, eris.Wrap(err, "importer: list persisted zones")
	}

	// Phase 1: pool alias candidates across all documents. Role
	// classification is deferred to phase 2 so each WWPN is looked up once.
	// Dump sections are extracted once per document and reused in phase 2.
	poolDefaults := opts.Alias
	poolDefaults.RoleMode = parse.RoleModeStatic
	poolDefaults.StaticRole = model.RolePending

	sections := make([][]parse.Section, len(docs))
	var pool []model.AliasCandidate
	for i := range docs {
		docs[i].Format = parse.Classify(docs[i].Text)
		if docs[i].Format == model.FormatTechSupportDump {
			sections[i] = parse.ExtractSections(docs[i].Text)
		}
		pool = append(pool, o.extractAliases(ctx, docs[i], sections[i], opts.FabricID, poolDefaults)...)
	}
	log.Info("phase 1 complete",
		zap.Int("documents", len(docs)),
		zap.Int("pooled_aliases", len(pool)),
	)

	// Phase 2: final extraction per document with the full pool visible to
	// zone member resolution.
	idx := parse.NewAliasIndex(persisted, pool)

	var aliases []model.AliasCandidate
	var zones []model.ZoneCandidate
	for i, doc := range docs {
		aliases = append(aliases, o.extractAliases(ctx, doc, sections[i], opts.FabricID, opts.Alias)...)
		zones = append(zones, o.extractZones(doc, sections[i], opts.FabricID, opts.Zone, idx)...)
	}

	aliases = reconcile.DedupeAliases(aliases, opts.ConflictPolicy)
	zones = reconcile.DedupeZones(zones)
	reconcile.MarkAliasExistence(aliases, persisted)
	reconcile.MarkZoneExistence(zones, persistedZones)

	log.Info("phase 2 complete",
		zap.Int("aliases", len(aliases)),
		zap.Int("zones", len(zones)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Plan{
		BatchID:   uuid.New().String(),
		FabricID:  opts.FabricID,
		Documents: docs,
		Aliases:   aliases,
		Zones:     zones,
	}, nil
}

// extractAliases routes one document through the alias extractor according
// to its format. Dumps use the precomputed sections (device-alias and
// fcalias kinds); unknown documents are scanned as alias exports as a best
// effort.
func (o *Orchestrator) extractAliases(ctx context.Context, doc model.SourceDocument, secs []parse.Section, fabricID string, d parse.AliasDefaults) []model.AliasCandidate {
	if doc.Format == model.FormatTechSupportDump {
		var out []model.AliasCandidate
		for _, sec := range secs {
			if sec.Kind == parse.SectionDeviceAlias || sec.Kind == parse.SectionFcalias {
				out = append(out, o.extractor.Extract(ctx, sec.Text(), fabricID, sec.StartLine, d)...)
			}
		}
		return out
	}
	return o.extractor.Extract(ctx, doc.Text, fabricID, 1, d)
}

// extractZones routes one document through the zone extractor. Alias
// exports and unknown documents carry no zone declarations worth parsing.
func (o *Orchestrator) extractZones(doc model.SourceDocument, secs []parse.Section, fabricID string, d parse.ZoneDefaults, idx *parse.AliasIndex) []model.ZoneCandidate {
	switch doc.Format {
	case model.FormatTechSupportDump:
		var out []model.ZoneCandidate
		for _, sec := range secs {
			if sec.Kind == parse.SectionZone {
				out = append(out, parse.ExtractZones(sec.Text(), fabricID, sec.VSAN, sec.StartLine, d, idx)...)
			}
		}
		return out
	case model.FormatZoneExport:
		return parse.ExtractZones(doc.Text, fabricID, nil, 1, d, idx)
	default:
		return nil
	}
}
