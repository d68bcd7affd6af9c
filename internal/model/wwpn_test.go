package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWWPN_AlreadyCanonical(t *testing.T) {
	got, err := NormalizeWWPN("50:05:07:63:0a:03:17:e4")
	assert.NoError(t, err)
	assert.Equal(t, "50:05:07:63:0a:03:17:e4", got)
}

func TestNormalizeWWPN_Uppercase(t *testing.T) {
	got, err := NormalizeWWPN("50:05:07:63:0A:03:17:E4")
	assert.NoError(t, err)
	assert.Equal(t, "50:05:07:63:0a:03:17:e4", got)
}

func TestNormalizeWWPN_Bare(t *testing.T) {
	got, err := NormalizeWWPN("500507630a0857e4")
	assert.NoError(t, err)
	assert.Equal(t, "50:05:07:63:0a:08:57:e4", got)
}

func TestNormalizeWWPN_Dashes(t *testing.T) {
	got, err := NormalizeWWPN("50-05-07-63-0A-08-57-E4")
	assert.NoError(t, err)
	assert.Equal(t, "50:05:07:63:0a:08:57:e4", got)
}

func TestNormalizeWWPN_Whitespace(t *testing.T) {
	got, err := NormalizeWWPN("  500507630a0857e4  ")
	assert.NoError(t, err)
	assert.Equal(t, "50:05:07:63:0a:08:57:e4", got)
}

func TestNormalizeWWPN_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"not-a-wwpn",
		"50:05:07:63:0a:03:17",       // 7 bytes
		"50:05:07:63:0a:03:17:e4:ff", // 9 bytes
		"zz:05:07:63:0a:03:17:e4",
	} {
		_, err := NormalizeWWPN(raw)
		assert.Error(t, err, raw)
	}
}

func TestIsWWPN(t *testing.T) {
	assert.True(t, IsWWPN("50:05:07:63:0a:03:17:e4"))
	assert.True(t, IsWWPN("500507630A0857E4"))
	assert.False(t, IsWWPN("HOST1"))
	assert.False(t, IsWWPN("0x650001"))
}

func TestWWPNEqual_MixedStyles(t *testing.T) {
	assert.True(t, WWPNEqual("50:05:07:63:0A:08:57:E4", "500507630a0857e4"))
	assert.False(t, WWPNEqual("500507630a0857e4", "500507630a0857e5"))
	assert.False(t, WWPNEqual("bogus", "500507630a0857e4"))
}

func TestZoneDTO_DropsUnpersistedMembers(t *testing.T) {
	z := ZoneCandidate{
		Name:     "Z1",
		ZoneType: "standard",
		Members: []MemberRef{
			{Kind: MemberPersisted, AliasID: "a-1", Name: "STOR1"},
			{Kind: MemberInBatch, Name: "HOST1"},
		},
		Unresolved: []UnresolvedMember{{Kind: "pwwn", RawToken: "21:00:00:24:ff:4c:a2:18"}},
	}

	dto := z.DTO()
	assert.Equal(t, []string{"a-1"}, dto.MemberIDs)
}

func TestAliasDTO_StripsInternalFields(t *testing.T) {
	c := AliasCandidate{
		OriginLine:         17,
		Name:               "HOST1",
		WWPN:               "50:05:07:63:0a:03:17:e4",
		FabricID:           "fab-a",
		Role:               RoleInitiator,
		Syntax:             SyntaxDeviceAlias,
		Exists:             true,
		ClassificationNote: "no rule matched",
	}

	dto := c.DTO()
	assert.Equal(t, "HOST1", dto.Name)
	assert.Equal(t, "50:05:07:63:0a:03:17:e4", dto.WWPN)
	assert.Equal(t, RoleInitiator, dto.Role)
	assert.Equal(t, SyntaxDeviceAlias, dto.Syntax)
}
