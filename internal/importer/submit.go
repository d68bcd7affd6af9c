package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/san-import-cli/internal/model"
	"github.com/sells-group/san-import-cli/internal/resilience"
	"github.com/sells-group/san-import-cli/internal/store"
)

// SubmitResult reports per-item outcomes of a submission. Successfully
// created items are kept even when others fail; there is no rollback.
type SubmitResult struct {
	Aliases []store.CreateResult `json:"aliases"`
	Zones   []store.CreateResult `json:"zones"`
}

// SubmitError lists the items that failed after all retries. The batch is
// not rolled back; successes stand.
type SubmitError struct {
	AliasFailures []store.CreateResult
	ZoneFailures  []store.CreateResult
}

func (e *SubmitError) Error() string {
	var parts []string
	for _, f := range e.AliasFailures {
		parts = append(parts, fmt.Sprintf("alias %s: %s", f.Name, f.Error))
	}
	for _, f := range e.ZoneFailures {
		parts = append(parts, fmt.Sprintf("zone %s: %s", f.Name, f.Error))
	}
	return fmt.Sprintf("submission failed for %d item(s): %s", len(parts), strings.Join(parts, "; "))
}

// Submit pushes a confirmed plan to the backend: new aliases first, then —
// after the refreshed persisted set confirms them visible — the zones,
// with every in-batch member ref rewritten to a persisted id. Once called,
// the submission runs to completion or retry exhaustion; it is not
// cancellable midway without leaving partial state, which the backend
// tolerates (re-submissions surface as duplicates, not new rows).
func (o *Orchestrator) Submit(ctx context.Context, plan *Plan, opts Options) (*SubmitResult, error) {
	log := zap.L().With(
		zap.String("component", "importer"),
		zap.String("fabric", plan.FabricID),
		zap.String("batch", plan.BatchID),
	)

	result := &SubmitResult{}

	// Phase A: aliases.
	var aliasDTOs []model.AliasDTO
	var submittedNames []string
	for _, c := range plan.Aliases {
		if c.Create && !c.Exists {
			aliasDTOs = append(aliasDTOs, c.DTO())
			submittedNames = append(submittedNames, c.Name)
		}
	}

	if len(aliasDTOs) > 0 {
		retryCfg := opts.SubmitRetry
		retryCfg.OnRetry = resilience.RetryLogger("importer", "create aliases")

		res, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) ([]store.CreateResult, error) {
			return o.store.CreateAliases(ctx, plan.FabricID, aliasDTOs)
		})
		if err != nil {
			return result, eris.Wrap(err, "importer: submit aliases")
		}
		result.Aliases = res
		log.Info("aliases submitted", zap.Int("count", len(res)))
	}

	// Phase B: refresh the persisted set, tolerating read-after-write lag,
	// then rewrite in-batch member refs to persisted ids.
	refreshed := o.refreshAliases(ctx, plan.FabricID, submittedNames, opts.RefreshRetry)
	rewriteMembers(plan.Zones, refreshed)

	// Phase C: zones.
	var zoneDTOs []model.ZoneDTO
	for _, z := range plan.Zones {
		if z.Create && !z.Exists {
			zoneDTOs = append(zoneDTOs, z.DTO())
		}
	}

	if len(zoneDTOs) > 0 {
		retryCfg := opts.SubmitRetry
		retryCfg.OnRetry = resilience.RetryLogger("importer", "create zones")

		res, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) ([]store.CreateResult, error) {
			return o.store.CreateZones(ctx, plan.FabricID, zoneDTOs)
		})
		if err != nil {
			return result, eris.Wrap(err, "importer: submit zones")
		}
		result.Zones = res
		log.Info("zones submitted", zap.Int("count", len(res)))
	}

	if submitErr := collectFailures(result); submitErr != nil {
		return result, submitErr
	}
	return result, nil
}

// refreshAliases re-fetches the persisted alias set with bounded retries
// until every just-submitted name is visible. Exhausting the retry budget
// is not fatal: the freshest set wins and any still-missing name simply
// stays unresolved on its zones.
func (o *Orchestrator) refreshAliases(ctx context.Context, fabricID string, confirmNames []string, cfg resilience.RetryConfig) []model.PersistedAlias {
	log := zap.L().With(zap.String("component", "importer"), zap.String("fabric", fabricID))

	var latest []model.PersistedAlias

	errNotVisible := eris.New("importer: submitted aliases not yet visible")
	cfg.ShouldRetry = func(err error) bool {
		return errors.Is(err, errNotVisible) || resilience.IsTransient(err)
	}
	cfg.OnRetry = resilience.RetryLogger("importer", "refresh aliases")

	err := resilience.Do(ctx, cfg, func(ctx context.Context) error {
		aliases, err := o.store.ListAliases(ctx, fabricID)
		if err != nil {
			return eris.Wrap(err, "importer: refresh aliases")
		}
		latest = aliases

		visible := make(map[string]bool, len(aliases))
		for _, a := range aliases {
			visible[strings.ToLower(a.Name)] = true
		}
		for _, name := range confirmNames {
			if !visible[strings.ToLower(name)] {
				return eris.Wrapf(errNotVisible, "missing %s", name)
			}
		}
		return nil
	})
	if err != nil {
		log.Warn("alias refresh gave up before all submitted names became visible",
			zap.Int("known", len(latest)), zap.Error(err))
	}
	return latest
}

// rewriteMembers replaces every in-batch member ref with a persisted ref
// from the refreshed set. Names still missing are moved to the zone's
// unresolved list so they are reported rather than silently dropped.
func rewriteMembers(zones []model.ZoneCandidate, refreshed []model.PersistedAlias) {
	byName := make(map[string]model.PersistedAlias, len(refreshed))
	for _, a := range refreshed {
		byName[strings.ToLower(a.Name)] = a
	}

	for i := range zones {
		kept := zones[i].Members[:0]
		for _, m := range zones[i].Members {
			if m.Kind != model.MemberInBatch {
				kept = append(kept, m)
				continue
			}
			if a, ok := byName[strings.ToLower(m.Name)]; ok {
				kept = append(kept, model.PersistedRef(a))
				continue
			}
			zones[i].Unresolved = append(zones[i].Unresolved,
				model.UnresolvedMember{Kind: "in-batch", RawToken: m.Name})
		}
		zones[i].Members = kept
	}
}

// collectFailures turns per-item errors into a structured SubmitError, or
// nil when everything (including duplicates) went through.
func collectFailures(result *SubmitResult) error {
	var se SubmitError
	for _, r := range result.Aliases {
		if r.Error != "" {
			se.AliasFailures = append(se.AliasFailures, r)
		}
	}
	for _, r := range result.Zones {
		if r.Error != "" {
			se.ZoneFailures = append(se.ZoneFailures, r)
		}
	}
	if len(se.AliasFailures) == 0 && len(se.ZoneFailures) == 0 {
		return nil
	}
	return &se
}
