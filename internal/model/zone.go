package model

// MemberKind distinguishes the two resolution states of a zone member.
type MemberKind string

const (
	// MemberPersisted references an alias that already has a backend id.
	MemberPersisted MemberKind = "persisted"
	// MemberInBatch references an alias produced earlier in the same import
	// run that has not been submitted yet. It must be rewritten to
	// MemberPersisted before the zone is submitted.
	MemberInBatch MemberKind = "in_batch"
)

// MemberRef is a resolved zone member. Exactly one of AliasID (persisted) or
// AliasName (in-batch) identifies the target; Name is always carried for
// display.
type MemberRef struct {
	Kind    MemberKind `json:"kind"`
	AliasID string     `json:"alias_id,omitempty"`
	Name    string     `json:"name"`
	WWPN    string     `json:"wwpn,omitempty"`
}

// PersistedRef builds a member reference to an already-stored alias.
func PersistedRef(a PersistedAlias) MemberRef {
	return MemberRef{Kind: MemberPersisted, AliasID: a.ID, Name: a.Name, WWPN: a.WWPN}
}

// BatchRef builds a member reference to an alias from the current batch.
func BatchRef(c AliasCandidate) MemberRef {
	return MemberRef{Kind: MemberInBatch, Name: c.Name, WWPN: c.WWPN}
}

// UnresolvedMember records a member token that matched no known alias.
// The zone remains usable; the import proceeds without this member.
type UnresolvedMember struct {
	Kind     string `json:"kind"`
	RawToken string `json:"raw_token"`
}

// ZoneCandidate is one zone parsed from a source document, with every
// successfully matched member resolved to a MemberRef.
type ZoneCandidate struct {
	OriginLine int                `json:"origin_line"`
	Name       string             `json:"name"`
	FabricID   string             `json:"fabric_id"`
	VSAN       *int               `json:"vsan,omitempty"`
	ZoneType   string             `json:"zone_type"`
	Members    []MemberRef        `json:"members"`
	Unresolved []UnresolvedMember `json:"unresolved,omitempty"`

	Create bool `json:"create"`

	// Exists is set by the existence reconciler when a persisted zone with
	// the same name already exists in the fabric.
	Exists bool `json:"exists_already"`
}

// DTO strips internal-only fields and drops anything not yet persisted:
// only members with backend ids survive. Unresolved tokens never reach
// the wire.
func (z ZoneCandidate) DTO() ZoneDTO {
	dto := ZoneDTO{
		Name:     z.Name,
		VSAN:     z.VSAN,
		ZoneType: z.ZoneType,
	}
	for _, m := range z.Members {
		if m.Kind == MemberPersisted && m.AliasID != "" {
			dto.MemberIDs = append(dto.MemberIDs, m.AliasID)
		}
	}
	return dto
}

// ZoneDTO is the wire shape sent to the zone submission endpoint.
type ZoneDTO struct {
	Name      string   `json:"name"`
	VSAN      *int     `json:"vsan,omitempty"`
	ZoneType  string   `json:"zone_type"`
	MemberIDs []string `json:"member_ids"`
}

// PersistedZone is one already-stored zone as returned by the backend.
type PersistedZone struct {
	ID       string `json:"id"`
	FabricID string `json:"fabric_id"`
	Name     string `json:"name"`
}
