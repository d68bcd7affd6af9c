package model

// Role classifies the SAN function of the port behind a WWPN.
type Role string

const (
	RoleInitiator Role = "initiator"
	RoleTarget    Role = "target"
	RoleBoth      Role = "both"
	// RolePending marks a candidate whose role has not yet been resolved
	// by the classifier.
	RolePending Role = "pending"
)

// AliasSyntax identifies which Cisco MDS alias dialect a candidate uses.
// device-alias is fabric-wide, fcalias is VSAN-scoped.
type AliasSyntax string

const (
	SyntaxDeviceAlias AliasSyntax = "device-alias"
	SyntaxFcAlias     AliasSyntax = "fcalias"
)

// AliasCandidate is one alias parsed from a source document, normalized and
// ready for reconciliation. WWPN is always in canonical colon-grouped
// lowercase form; Name is never empty.
type AliasCandidate struct {
	OriginLine int         `json:"origin_line"`
	Name       string      `json:"name"`
	WWPN       string      `json:"wwpn"`
	FabricID   string      `json:"fabric_id"`
	VSAN       *int        `json:"vsan,omitempty"`
	Role       Role        `json:"role"`
	Syntax     AliasSyntax `json:"syntax"`

	Create          bool `json:"create"`
	IncludeInZoning bool `json:"include_in_zoning"`

	// ClassificationNote records why smart classification fell back to the
	// default role (e.g. no rule matched), so the caller can surface it.
	ClassificationNote string `json:"classification_note,omitempty"`

	// Exists is set by the existence reconciler when a persisted alias
	// already covers this candidate's name or WWPN.
	Exists bool `json:"exists_already"`
}

// DTO strips internal-only fields for transmission to the backend.
func (c AliasCandidate) DTO() AliasDTO {
	return AliasDTO{
		Name:   c.Name,
		WWPN:   c.WWPN,
		VSAN:   c.VSAN,
		Role:   c.Role,
		Syntax: c.Syntax,
	}
}

// AliasDTO is the wire shape sent to the alias submission endpoint.
type AliasDTO struct {
	Name   string      `json:"name"`
	WWPN   string      `json:"wwpn"`
	VSAN   *int        `json:"vsan,omitempty"`
	Role   Role        `json:"role"`
	Syntax AliasSyntax `json:"syntax"`
}

// PersistedAlias is one already-stored alias as returned by the backend
// listing endpoint.
type PersistedAlias struct {
	ID       string `json:"id"`
	FabricID string `json:"fabric_id"`
	Name     string `json:"name"`
	WWPN     string `json:"wwpn"`
}
