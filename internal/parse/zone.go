package parse

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/san-import-cli/internal/model"
)

// ZoneTypeDetect keeps the best-guess default zone type ("standard") when
// the source carries no explicit type marker. Any other mode value forces
// every zone to that type.
const ZoneTypeDetect = "detect"

// defaultZoneType is the assumed type for Cisco exports, which carry no
// explicit type marker.
const defaultZoneType = "standard"

// ZoneDefaults carries the per-import settings applied to every extracted
// zone candidate.
type ZoneDefaults struct {
	Create       bool
	Exists       bool
	ZoneTypeMode string
}

var (
	// member fcalias <name> / member device-alias <name>
	zoneMemberRe = regexp.MustCompile(`(?i)^\s*member\s+(fcalias|device-alias)\s+(\S+)`)
	// switch-reported member status: * fcid 0x6401e4 [device-alias HOST1]
	zoneFcidRe = regexp.MustCompile(`(?i)^\s*\*?\s*fcid\s+(0x[0-9a-f]+)(?:\s+\[?device-alias\s+([^\]\s]+)\]?)?`)
	// standalone: device-alias HOST1 [pwwn 50:...]
	zoneDeviceAliasRe = regexp.MustCompile(`(?i)^\s*\*?\s*device-alias\s+(\S+)(?:\s+\[?pwwn\s+([^\]\s]+)\]?)?`)
)

// AliasIndex resolves zone member tokens against the aliases known at
// extraction time: already-persisted records and candidates produced
// earlier in the same batch. Name lookups are case-insensitive, matching
// the existence reconciler.
type AliasIndex struct {
	persistedByName map[string]model.PersistedAlias
	persistedByWWPN map[string]model.PersistedAlias
	batchByName     map[string]model.AliasCandidate
	batchByWWPN     map[string]model.AliasCandidate
}

// NewAliasIndex builds lookup maps over both alias sets. First occurrence
// wins on key collisions so resolution stays deterministic.
func NewAliasIndex(persisted []model.PersistedAlias, batch []model.AliasCandidate) *AliasIndex {
	idx := &AliasIndex{
		persistedByName: make(map[string]model.PersistedAlias, len(persisted)),
		persistedByWWPN: make(map[string]model.PersistedAlias, len(persisted)),
		batchByName:     make(map[string]model.AliasCandidate, len(batch)),
		batchByWWPN:     make(map[string]model.AliasCandidate, len(batch)),
	}
	for _, a := range persisted {
		name := strings.ToLower(a.Name)
		if _, seen := idx.persistedByName[name]; !seen {
			idx.persistedByName[name] = a
		}
		if w, err := model.NormalizeWWPN(a.WWPN); err == nil {
			if _, seen := idx.persistedByWWPN[w]; !seen {
				idx.persistedByWWPN[w] = a
			}
		}
	}
	for _, c := range batch {
		name := strings.ToLower(c.Name)
		if _, seen := idx.batchByName[name]; !seen {
			idx.batchByName[name] = c
		}
		if _, seen := idx.batchByWWPN[c.WWPN]; !seen {
			idx.batchByWWPN[c.WWPN] = c
		}
	}
	return idx
}

// Resolve matches a member token (alias name or WWPN) against persisted
// aliases first, then batch aliases. The second return is false when
// nothing matched.
func (idx *AliasIndex) Resolve(token string) (model.MemberRef, bool) {
	if model.IsWWPN(token) {
		w, err := model.NormalizeWWPN(token)
		if err != nil {
			return model.MemberRef{}, false
		}
		if a, ok := idx.persistedByWWPN[w]; ok {
			return model.PersistedRef(a), true
		}
		if c, ok := idx.batchByWWPN[w]; ok {
			return model.BatchRef(c), true
		}
		return model.MemberRef{}, false
	}

	name := strings.ToLower(token)
	if a, ok := idx.persistedByName[name]; ok {
		return model.PersistedRef(a), true
	}
	if c, ok := idx.batchByName[name]; ok {
		return model.BatchRef(c), true
	}
	return model.MemberRef{}, false
}

// ExtractZones parses a zone/zoneset fragment into zone candidates.
// sectionVSAN is the VSAN carried by the enclosing dump banner, if any;
// zoneset and zone declarations may override it. Member tokens that match
// no known alias are recorded in Unresolved rather than dropped.
func ExtractZones(fragment, fabricID string, sectionVSAN *int, startLine int, d ZoneDefaults, idx *AliasIndex) []model.ZoneCandidate {
	log := zap.L().With(zap.String("component", "zone_extractor"))

	var (
		zones       []model.ZoneCandidate
		current     *model.ZoneCandidate
		ambientVSAN = sectionVSAN
		lineNo      = startLine - 1
	)

	flush := func() {
		if current != nil {
			zones = append(zones, *current)
		}
		current = nil
	}

	addMember := func(kind, token string) {
		if current == nil {
			return // member line outside any zone declaration
		}
		if ref, ok := idx.Resolve(token); ok {
			current.Members = append(current.Members, ref)
			return
		}
		log.Debug("unresolved zone member",
			zap.String("zone", current.Name), zap.String("kind", kind), zap.String("token", token))
		current.Unresolved = append(current.Unresolved, model.UnresolvedMember{Kind: kind, RawToken: token})
	}

	zoneType := defaultZoneType
	if d.ZoneTypeMode != "" && d.ZoneTypeMode != ZoneTypeDetect {
		zoneType = d.ZoneTypeMode
	}

	sc := bufio.NewScanner(strings.NewReader(fragment))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		switch {
		case zonesetNameRe.MatchString(line):
			m := zonesetNameRe.FindStringSubmatch(line)
			if m[2] != "" {
				if v, err := strconv.Atoi(m[2]); err == nil {
					ambientVSAN = &v
				}
			}
			flush()

		case zoneNameRe.MatchString(line):
			m := zoneNameRe.FindStringSubmatch(line)
			flush()
			vsan := ambientVSAN
			if m[2] != "" {
				if v, err := strconv.Atoi(m[2]); err == nil {
					vsan = &v
				}
			}
			current = &model.ZoneCandidate{
				OriginLine: lineNo,
				Name:       m[1],
				FabricID:   fabricID,
				VSAN:       vsan,
				ZoneType:   zoneType,
				Create:     d.Create,
				Exists:     d.Exists,
			}

		case zoneMemberRe.MatchString(line):
			m := zoneMemberRe.FindStringSubmatch(line)
			addMember(strings.ToLower(m[1]), m[2])

		case memberPwwnRe.MatchString(line):
			m := memberPwwnRe.FindStringSubmatch(line)
			addMember("pwwn", m[1])

		case zoneFcidRe.MatchString(line):
			m := zoneFcidRe.FindStringSubmatch(line)
			if m[2] != "" {
				addMember("device-alias", m[2])
			} else {
				// fcid with no alias annotation cannot be resolved offline.
				if current != nil {
					current.Unresolved = append(current.Unresolved,
						model.UnresolvedMember{Kind: "fcid", RawToken: m[1]})
				}
			}

		case zoneDeviceAliasRe.MatchString(line):
			m := zoneDeviceAliasRe.FindStringSubmatch(line)
			if strings.EqualFold(m[1], "name") {
				continue // a device-alias definition line, not a member
			}
			token := m[1]
			if _, ok := idx.Resolve(token); !ok && m[2] != "" {
				// Fall back to the annotated pwwn when the name is unknown.
				token = m[2]
			}
			addMember("device-alias", token)
		}
	}
	flush()

	return zones
}
