package reconcile

import (
	"strings"

	"github.com/sells-group/san-import-cli/internal/model"
)

// MarkAliasExistence flags each candidate whose name (case-insensitive) or
// normalized WWPN matches a persisted alias. A nil snapshot means nothing
// exists yet; it is never an error.
func MarkAliasExistence(cands []model.AliasCandidate, persisted []model.PersistedAlias) {
	if len(cands) == 0 {
		return
	}

	names := make(map[string]bool, len(persisted))
	wwpns := make(map[string]bool, len(persisted))
	for _, a := range persisted {
		names[strings.ToLower(a.Name)] = true
		if w, err := model.NormalizeWWPN(a.WWPN); err == nil {
			wwpns[w] = true
		}
	}

	for i := range cands {
		cands[i].Exists = names[strings.ToLower(cands[i].Name)] || wwpns[cands[i].WWPN]
	}
}

// MarkZoneExistence flags each candidate whose name matches a persisted
// zone in the same fabric, case-insensitively.
func MarkZoneExistence(zones []model.ZoneCandidate, persisted []model.PersistedZone) {
	if len(zones) == 0 {
		return
	}

	existing := make(map[string]bool, len(persisted))
	for _, z := range persisted {
		existing[z.FabricID+"\x00"+strings.ToLower(z.Name)] = true
	}

	for i := range zones {
		key := zones[i].FabricID + "\x00" + strings.ToLower(zones[i].Name)
		if existing[key] {
			zones[i].Exists = true
		}
	}
}
