package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/san-import-cli/internal/model"
)

func alias(name, wwpn string, syntax model.AliasSyntax) model.AliasCandidate {
	return model.AliasCandidate{Name: name, WWPN: wwpn, FabricID: "fab-a", Syntax: syntax}
}

func TestDedupeAliases_SameSyntaxFirstWins(t *testing.T) {
	in := []model.AliasCandidate{
		alias("HOST1", "50:05:07:63:0a:03:17:e4", model.SyntaxDeviceAlias),
		alias("HOST1_COPY", "50:05:07:63:0a:03:17:e4", model.SyntaxDeviceAlias),
	}

	out := DedupeAliases(in, PreferDeviceAlias)
	require.Len(t, out, 1)
	assert.Equal(t, "HOST1", out[0].Name)
}

func TestDedupeAliases_ConflictPrefersDeviceAlias(t *testing.T) {
	in := []model.AliasCandidate{
		alias("FC_HOST1", "50:05:07:63:0a:03:17:e4", model.SyntaxFcAlias),
		alias("DA_HOST1", "50:05:07:63:0a:03:17:e4", model.SyntaxDeviceAlias),
	}

	out := DedupeAliases(in, PreferDeviceAlias)
	require.Len(t, out, 1)
	assert.Equal(t, "DA_HOST1", out[0].Name)
	assert.Equal(t, model.SyntaxDeviceAlias, out[0].Syntax)
}

func TestDedupeAliases_ConflictPrefersFcalias(t *testing.T) {
	in := []model.AliasCandidate{
		alias("FC_HOST1", "50:05:07:63:0a:03:17:e4", model.SyntaxFcAlias),
		alias("DA_HOST1", "50:05:07:63:0a:03:17:e4", model.SyntaxDeviceAlias),
	}

	out := DedupeAliases(in, PreferFcalias)
	require.Len(t, out, 1)
	assert.Equal(t, "FC_HOST1", out[0].Name)
}

func TestDedupeAliases_SurvivorKeepsFirstPosition(t *testing.T) {
	// The policy winner takes the slot of the first occurrence, so output
	// order does not depend on which syntax appeared first.
	in := []model.AliasCandidate{
		alias("FC_HOST1", "50:05:07:63:0a:03:17:e4", model.SyntaxFcAlias),
		alias("OTHER", "21:00:00:24:ff:4c:a2:18", model.SyntaxDeviceAlias),
		alias("DA_HOST1", "50:05:07:63:0a:03:17:e4", model.SyntaxDeviceAlias),
	}

	out := DedupeAliases(in, PreferDeviceAlias)
	require.Len(t, out, 2)
	assert.Equal(t, "DA_HOST1", out[0].Name)
	assert.Equal(t, "OTHER", out[1].Name)
}

func TestDedupeAliases_Idempotent(t *testing.T) {
	in := []model.AliasCandidate{
		alias("FC_HOST1", "50:05:07:63:0a:03:17:e4", model.SyntaxFcAlias),
		alias("DA_HOST1", "50:05:07:63:0a:03:17:e4", model.SyntaxDeviceAlias),
		alias("OTHER", "21:00:00:24:ff:4c:a2:18", model.SyntaxDeviceAlias),
	}

	once := DedupeAliases(in, PreferFcalias)
	twice := DedupeAliases(once, PreferFcalias)
	assert.Equal(t, once, twice)
}

func TestDedupeAliases_DistinctWWPNsUntouched(t *testing.T) {
	in := []model.AliasCandidate{
		alias("HOST1", "50:05:07:63:0a:03:17:e4", model.SyntaxDeviceAlias),
		alias("HOST2", "50:05:07:63:0a:03:17:e5", model.SyntaxDeviceAlias),
	}

	out := DedupeAliases(in, PreferDeviceAlias)
	assert.Equal(t, in, out)
}

func TestDedupeZones_CaseInsensitiveFirstWins(t *testing.T) {
	in := []model.ZoneCandidate{
		{Name: "Z_PROD", FabricID: "fab-a"},
		{Name: "z_prod", FabricID: "fab-a"},
		{Name: "Z_DEV", FabricID: "fab-a"},
	}

	out := DedupeZones(in)
	require.Len(t, out, 2)
	assert.Equal(t, "Z_PROD", out[0].Name)
	assert.Equal(t, "Z_DEV", out[1].Name)
}

func TestDedupeZones_FabricScoped(t *testing.T) {
	in := []model.ZoneCandidate{
		{Name: "Z_PROD", FabricID: "fab-a"},
		{Name: "Z_PROD", FabricID: "fab-b"},
	}

	out := DedupeZones(in)
	assert.Len(t, out, 2)
}
