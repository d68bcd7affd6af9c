package model

// Format labels the detected layout of an uploaded configuration document.
type Format string

const (
	// FormatTechSupportDump is a full "show tech-support" diagnostic capture
	// with configuration sections interleaved among unrelated output.
	FormatTechSupportDump Format = "tech_support_dump"
	// FormatZoneExport is a direct zone/zoneset configuration export.
	FormatZoneExport Format = "zone_export"
	// FormatAliasExport is a direct device-alias/fcalias configuration export.
	FormatAliasExport Format = "alias_export"
	// FormatUnknown is anything the classifier could not label. Unknown
	// documents are still scanned for alias syntax as a best effort.
	FormatUnknown Format = "unknown"
)

// SourceDocument is one uploaded or fetched block of switch configuration
// text. Transient: created per import, discarded after parsing.
type SourceDocument struct {
	Name   string `json:"name"`
	Text   string `json:"text"`
	Format Format `json:"format,omitempty"`
}
