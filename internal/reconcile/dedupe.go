// Package reconcile collapses duplicate candidates and checks what already
// exists in storage before submission.
package reconcile

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/san-import-cli/internal/model"
)

// ConflictPolicy decides which candidate survives when the same WWPN is
// declared under both alias syntaxes.
type ConflictPolicy string

const (
	PreferDeviceAlias ConflictPolicy = "prefer-device-alias"
	PreferFcalias     ConflictPolicy = "prefer-fcalias"
)

// preferredSyntax maps a policy to the syntax it keeps.
func (p ConflictPolicy) preferredSyntax() model.AliasSyntax {
	if p == PreferFcalias {
		return model.SyntaxFcAlias
	}
	return model.SyntaxDeviceAlias
}

// DedupeAliases collapses alias candidates sharing a normalized WWPN.
// Same-syntax collisions are true duplicates: the first occurrence wins.
// Cross-syntax collisions are conflicts: the policy picks the survivor,
// which keeps the first occurrence's position so output order is stable
// under input reordering. Idempotent: running it on its own output is a
// no-op.
func DedupeAliases(cands []model.AliasCandidate, policy ConflictPolicy) []model.AliasCandidate {
	log := zap.L().With(zap.String("component", "deduplicator"))

	out := make([]model.AliasCandidate, 0, len(cands))
	seen := make(map[string]int, len(cands)) // wwpn -> index in out

	for _, c := range cands {
		i, dup := seen[c.WWPN]
		if !dup {
			seen[c.WWPN] = len(out)
			out = append(out, c)
			continue
		}

		kept := out[i]
		if kept.Syntax == c.Syntax {
			continue // true duplicate, first wins
		}

		// Syntax conflict: keep exactly one per policy.
		if c.Syntax == policy.preferredSyntax() {
			log.Debug("alias syntax conflict resolved",
				zap.String("wwpn", c.WWPN),
				zap.String("kept", c.Name),
				zap.String("dropped", kept.Name),
				zap.String("policy", string(policy)),
			)
			out[i] = c
		} else {
			log.Debug("alias syntax conflict resolved",
				zap.String("wwpn", c.WWPN),
				zap.String("kept", kept.Name),
				zap.String("dropped", c.Name),
				zap.String("policy", string(policy)),
			)
		}
	}

	return out
}

// DedupeZones collapses zone candidates sharing a (name, fabric) key.
// First occurrence wins; names compare case-insensitively.
func DedupeZones(zones []model.ZoneCandidate) []model.ZoneCandidate {
	out := make([]model.ZoneCandidate, 0, len(zones))
	seen := make(map[string]bool, len(zones))

	for _, z := range zones {
		key := z.FabricID + "\x00" + strings.ToLower(z.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, z)
	}

	return out
}
