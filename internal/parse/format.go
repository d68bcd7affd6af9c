// Package parse turns raw Cisco MDS configuration text into alias and zone
// candidates: format classification, tech-support section extraction, and
// the alias/zone line extractors.
package parse

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/sells-group/san-import-cli/internal/model"
)

// techSupportSizeThreshold marks documents too large to be a hand-made
// export; anything above it is treated as a diagnostic dump.
const techSupportSizeThreshold = 512 * 1024

var (
	deviceAliasLineRe = regexp.MustCompile(`(?i)^\s*device-alias\s+name\s+(\S+)\s+pwwn\s+(\S+)`)
	fcaliasHeaderRe   = regexp.MustCompile(`(?i)^\s*fcalias\s+name\s+(\S+)(?:\s+vsan\s+(\d+))?`)
	memberPwwnRe      = regexp.MustCompile(`(?i)^\s*member\s+pwwn\s+(\S+)`)

	zoneNameRe    = regexp.MustCompile(`(?i)^\s*zone\s+name\s+(\S+)(?:\s+vsan\s+(\d+))?`)
	zonesetNameRe = regexp.MustCompile(`(?i)^\s*zoneset\s+name\s+(\S+)(?:\s+vsan\s+(\d+))?`)

	// Banner styles seen in tech-support captures: backquoted command echoes
	// and dash-framed section headers.
	dumpMarkerRe = regexp.MustCompile("(?i)(`show\\s|-----* show |show tech-support|device-alias database)")
)

// Classify inspects a document and labels its format.
//
// Dump markers or a very large body mean a tech-support capture. Otherwise
// the body is scanned line by line: explicit zone/zoneset declarations take
// precedence over alias syntax, because zone member lines can look exactly
// like alias lines. A document with alias matches and no zone declarations
// is an alias export. Anything else is unknown (still routed through the
// alias extractor as a best effort).
func Classify(text string) model.Format {
	if len(text) > techSupportSizeThreshold || dumpMarkerRe.MatchString(text) {
		return model.FormatTechSupportDump
	}

	var aliasLines, zoneDecls int
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case zoneNameRe.MatchString(line) || zonesetNameRe.MatchString(line):
			zoneDecls++
		case deviceAliasLineRe.MatchString(line) || fcaliasHeaderRe.MatchString(line):
			aliasLines++
		}
	}

	switch {
	case zoneDecls > 0:
		return model.FormatZoneExport
	case aliasLines > 0:
		return model.FormatAliasExport
	default:
		return model.FormatUnknown
	}
}
