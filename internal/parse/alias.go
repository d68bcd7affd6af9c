package parse

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/san-import-cli/internal/model"
	"github.com/sells-group/san-import-cli/internal/roles"
)

// RoleMode selects how each candidate's role is assigned.
type RoleMode string

const (
	// RoleModeSmart resolves each WWPN through the role classifier; a miss
	// falls back to initiator with a classification note.
	RoleModeSmart RoleMode = "smart"
	// RoleModeStatic assigns AliasDefaults.StaticRole to every candidate.
	RoleModeStatic RoleMode = "static"
)

// SyntaxOriginal preserves whichever alias syntax each line was written in.
// Any other override value forces that syntax on every candidate.
const SyntaxOriginal = "original"

// AliasDefaults carries the per-import settings applied to every extracted
// alias candidate.
type AliasDefaults struct {
	Create          bool
	IncludeInZoning bool
	RoleMode        RoleMode
	StaticRole      model.Role
	SyntaxOverride  string
}

// AliasExtractor converts device-alias/fcalias fragments into normalized
// alias candidates, one per discovered WWPN.
type AliasExtractor struct {
	classifier roles.Classifier
}

// NewAliasExtractor returns an extractor. classifier may be nil, in which
// case smart role mode degrades to the initiator fallback for every WWPN.
func NewAliasExtractor(classifier roles.Classifier) *AliasExtractor {
	return &AliasExtractor{classifier: classifier}
}

// Extract parses a text fragment into alias candidates. startLine is the
// 1-based position of the fragment's first line within the source document,
// used for origin tracking. Unparsable lines are skipped, never fatal.
func (e *AliasExtractor) Extract(ctx context.Context, fragment, fabricID string, startLine int, d AliasDefaults) []model.AliasCandidate {
	log := zap.L().With(zap.String("component", "alias_extractor"))

	var (
		cands []model.AliasCandidate
		// Open fcalias header: member pwwn lines attach to it.
		fcName string
		fcVSAN *int
		lineNo = startLine - 1
	)

	add := func(name, rawWWPN string, vsan *int, syntax model.AliasSyntax) {
		wwpn, err := model.NormalizeWWPN(rawWWPN)
		if err != nil {
			log.Debug("skipping alias line with invalid wwpn",
				zap.Int("line", lineNo), zap.String("raw", rawWWPN))
			return
		}
		if name == "" {
			return
		}
		if d.SyntaxOverride != "" && d.SyntaxOverride != SyntaxOriginal {
			syntax = model.AliasSyntax(d.SyntaxOverride)
		}
		cands = append(cands, model.AliasCandidate{
			OriginLine:      lineNo,
			Name:            name,
			WWPN:            wwpn,
			FabricID:        fabricID,
			VSAN:            vsan,
			Role:            model.RolePending,
			Syntax:          syntax,
			Create:          d.Create,
			IncludeInZoning: d.IncludeInZoning,
		})
	}

	sc := bufio.NewScanner(strings.NewReader(fragment))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		switch {
		case zoneNameRe.MatchString(line) || zonesetNameRe.MatchString(line):
			// A zone declaration ends any open fcalias block; its member
			// lines must not be mistaken for fcalias members.
			fcName = ""

		case deviceAliasLineRe.MatchString(line):
			m := deviceAliasLineRe.FindStringSubmatch(line)
			fcName = ""
			add(m[1], m[2], nil, model.SyntaxDeviceAlias)

		case fcaliasHeaderRe.MatchString(line):
			m := fcaliasHeaderRe.FindStringSubmatch(line)
			fcName = m[1]
			fcVSAN = nil
			if m[2] != "" {
				if v, err := strconv.Atoi(m[2]); err == nil {
					fcVSAN = &v
				}
			}

		case memberPwwnRe.MatchString(line):
			if fcName == "" {
				continue // member line without an open fcalias header
			}
			m := memberPwwnRe.FindStringSubmatch(line)
			add(fcName, m[1], fcVSAN, model.SyntaxFcAlias)
		}
	}

	e.assignRoles(ctx, cands, d)
	return cands
}

// assignRoles fills in each candidate's role according to the role mode.
// Classification failures never fail a candidate: the role falls back to
// initiator and the miss is recorded in ClassificationNote.
func (e *AliasExtractor) assignRoles(ctx context.Context, cands []model.AliasCandidate, d AliasDefaults) {
	if d.RoleMode != RoleModeSmart {
		role := d.StaticRole
		if role == "" {
			role = model.RoleInitiator
		}
		for i := range cands {
			cands[i].Role = role
		}
		return
	}

	if e.classifier == nil {
		for i := range cands {
			cands[i].Role = model.RoleInitiator
			cands[i].ClassificationNote = "no classifier configured"
		}
		return
	}

	roles.Apply(ctx, e.classifier, cands)
}
