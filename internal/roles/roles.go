// Package roles resolves WWPNs to SAN roles (initiator/target/both) for
// smart alias classification. A rule-based classifier covers the common
// case of OUI-prefix conventions; a remote client delegates to a
// classification service.
package roles

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/san-import-cli/internal/model"
)

// Classifier looks up the role for a normalized WWPN. ok is false when no
// rule matched; err reports lookup failures. Neither outcome may abort an
// import batch.
type Classifier interface {
	Classify(ctx context.Context, wwpn string) (role model.Role, ok bool, err error)
}

// classifyConcurrency bounds the parallel lookups issued per batch.
const classifyConcurrency = 8

// Apply resolves the role of every candidate in place. Lookups run in
// parallel; results are order-independent since each candidate is written
// only by its own goroutine. Misses and failures fall back to initiator
// with a note, never an error.
func Apply(ctx context.Context, c Classifier, cands []model.AliasCandidate) {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(classifyConcurrency)

	for i := range cands {
		g.Go(func() error {
			role, ok, err := c.Classify(gCtx, cands[i].WWPN)
			switch {
			case err != nil:
				zap.L().Warn("role classification failed, defaulting to initiator",
					zap.String("wwpn", cands[i].WWPN), zap.Error(err))
				cands[i].Role = model.RoleInitiator
				cands[i].ClassificationNote = "classification failed: " + err.Error()
			case !ok:
				cands[i].Role = model.RoleInitiator
				cands[i].ClassificationNote = "no classification rule matched"
			default:
				cands[i].Role = role
			}
			return nil
		})
	}
	_ = g.Wait()
}
