package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/san-import-cli/internal/model"
)

func TestMarkAliasExistence_ByNameCaseInsensitive(t *testing.T) {
	cands := []model.AliasCandidate{
		{Name: "host1", WWPN: "50:05:07:63:0a:03:17:e4"},
		{Name: "HOST2", WWPN: "50:05:07:63:0a:03:17:e5"},
	}
	persisted := []model.PersistedAlias{
		{ID: "a-1", Name: "HOST1", WWPN: "11:11:11:11:11:11:11:11"},
	}

	MarkAliasExistence(cands, persisted)
	assert.True(t, cands[0].Exists)
	assert.False(t, cands[1].Exists)
}

func TestMarkAliasExistence_ByWWPNAnyStyle(t *testing.T) {
	cands := []model.AliasCandidate{
		{Name: "NEW_NAME", WWPN: "50:05:07:63:0a:03:17:e4"},
	}
	persisted := []model.PersistedAlias{
		{ID: "a-1", Name: "OLD_NAME", WWPN: "500507630A0317E4"},
	}

	MarkAliasExistence(cands, persisted)
	assert.True(t, cands[0].Exists, "same port under a different name still exists")
}

func TestMarkAliasExistence_EmptySnapshot(t *testing.T) {
	cands := []model.AliasCandidate{
		{Name: "HOST1", WWPN: "50:05:07:63:0a:03:17:e4"},
	}

	MarkAliasExistence(cands, nil)
	assert.False(t, cands[0].Exists)
}

func TestMarkZoneExistence_SameFabricOnly(t *testing.T) {
	zones := []model.ZoneCandidate{
		{Name: "z_prod", FabricID: "fab-a"},
		{Name: "Z_PROD", FabricID: "fab-b"},
	}
	persisted := []model.PersistedZone{
		{ID: "z-1", FabricID: "fab-a", Name: "Z_PROD"},
	}

	MarkZoneExistence(zones, persisted)
	assert.True(t, zones[0].Exists)
	assert.False(t, zones[1].Exists)
}
