package parse

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// SectionKind labels what kind of configuration a dump section carries.
type SectionKind string

const (
	SectionDeviceAlias SectionKind = "device_alias"
	SectionFcalias     SectionKind = "fcalias"
	SectionZone        SectionKind = "zone"
)

// Section is one configuration block isolated from a tech-support dump,
// ready for the alias or zone extractor.
type Section struct {
	Kind      SectionKind
	VSAN      *int // parsed from the fcalias or zone banner when present
	StartLine int  // 1-based line of the first collected line
	Lines     []string
}

// Text joins the collected lines back into a fragment.
func (s Section) Text() string {
	return strings.Join(s.Lines, "\n")
}

type sectionState int

const (
	stateIdle sectionState = iota
	stateInDeviceAliasShow
	stateInFcaliasShow
	stateInZoneShow
)

// deviceAliasBannerRe matches the command echo that opens the device-alias
// database output, in either backquoted or dash-framed style.
var deviceAliasBannerRe = mustBanner(`show\s+device-alias\s+database`)

// fcaliasBannerRe matches the banners that open fcalias output, with an
// optional trailing vsan id. Fcalias output repeats per VSAN, so unlike
// the device-alias banner every occurrence opens a section.
var fcaliasBannerRe = mustBanner(`show\s+fcalias(?:\s+database)?(?:\s+vsan\s+(\d+))?`)

// zoneBannerRe matches the banners that open zone output: show zone,
// show zoneset (active), and the full-zone-database variants, with an
// optional trailing vsan id.
var zoneBannerRe = mustBanner(`show\s+(?:zoneset(?:\s+active)?|zone(?:\s+(?:database|active))?)(?:\s+vsan\s+(\d+))?`)

// genericBannerRe matches any other command echo that terminates whatever
// section is open.
var genericBannerRe = mustBanner(`show\s+\S.*`)

// dividerRe matches the long separator lines tech-support inserts between
// top-level sections.
var dividerRe = regexp.MustCompile(`^[-=]{10,}\s*$`)

// mustBanner compiles a banner matcher for one command echo. Captures allow
// the backquoted style NX-OS uses ("`show zone`") and the dash-framed style
// some collectors emit ("---- show zone ----").
func mustBanner(cmd string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^\s*(?:` + "`" + `|[-=]{2,}\s*)?` + cmd + `\s*[` + "`" + `\s-]*$`)
}

// ExtractSections walks a tech-support dump and isolates the embedded
// device-alias, fcalias, and zone/zoneset blocks.
//
// Only the first occurrence of the device-alias database banner is honored;
// diagnostic captures repeat the same output several times and extracting
// each repeat would duplicate every alias. Fcalias banners open a section
// each time since fcalias output is per VSAN; the deduplicator collapses
// any repeats downstream. A section closes on the next
// banner, a divider line, or end of input. If no section is found at all,
// the whole document is scanned directly for alias/zone syntax as a
// fallback for truncated or malformed dumps.
func ExtractSections(text string) []Section {
	log := zap.L().With(zap.String("component", "section_extractor"))

	var (
		sections        []Section
		current         *Section
		state           = stateIdle
		seenDeviceAlias bool
		lineNo          int
	)

	flush := func() {
		if current != nil && len(current.Lines) > 0 {
			sections = append(sections, *current)
		}
		current = nil
		state = stateIdle
	}

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		switch {
		case deviceAliasBannerRe.MatchString(line):
			flush()
			if seenDeviceAlias {
				// Repeated diagnostic output of the same command; skip.
				continue
			}
			seenDeviceAlias = true
			current = &Section{Kind: SectionDeviceAlias, StartLine: lineNo + 1}
			state = stateInDeviceAliasShow

		case fcaliasBannerRe.MatchString(line):
			flush()
			current = &Section{Kind: SectionFcalias, StartLine: lineNo + 1}
			if m := fcaliasBannerRe.FindStringSubmatch(line); m[1] != "" {
				if v, err := strconv.Atoi(m[1]); err == nil {
					current.VSAN = &v
				}
			}
			state = stateInFcaliasShow

		case zoneBannerRe.MatchString(line):
			flush()
			current = &Section{Kind: SectionZone, StartLine: lineNo + 1}
			if m := zoneBannerRe.FindStringSubmatch(line); m[1] != "" {
				if v, err := strconv.Atoi(m[1]); err == nil {
					current.VSAN = &v
				}
			}
			state = stateInZoneShow

		case genericBannerRe.MatchString(line) || dividerRe.MatchString(line):
			if state != stateIdle {
				log.Debug("section closed by banner", zap.Int("line", lineNo))
			}
			flush()

		default:
			if state != stateIdle {
				current.Lines = append(current.Lines, line)
			}
		}
	}
	flush()

	if len(sections) == 0 {
		return fallbackSections(text, log)
	}
	return sections
}

// fallbackSections scans the raw document for alias and zone syntax when
// banner-based extraction came up empty. Matching fragments are collected
// into synthetic sections so the extractors still see them.
func fallbackSections(text string, log *zap.Logger) []Section {
	var alias, zone Section
	alias.Kind, zone.Kind = SectionDeviceAlias, SectionZone

	lineNo := 0
	inZone := false
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		switch {
		case zoneNameRe.MatchString(line) || zonesetNameRe.MatchString(line):
			inZone = true
			if zone.StartLine == 0 {
				zone.StartLine = lineNo
			}
			zone.Lines = append(zone.Lines, line)
		case deviceAliasLineRe.MatchString(line) || fcaliasHeaderRe.MatchString(line):
			inZone = false
			if alias.StartLine == 0 {
				alias.StartLine = lineNo
			}
			alias.Lines = append(alias.Lines, line)
		case memberPwwnRe.MatchString(line) || zoneMemberRe.MatchString(line) || zoneFcidRe.MatchString(line):
			// Member lines belong to whichever block is open; fcalias member
			// lines arrive with inZone false.
			if inZone {
				zone.Lines = append(zone.Lines, line)
			} else {
				alias.Lines = append(alias.Lines, line)
			}
		}
	}

	var sections []Section
	if len(alias.Lines) > 0 {
		sections = append(sections, alias)
	}
	if len(zone.Lines) > 0 {
		sections = append(sections, zone)
	}
	if len(sections) > 0 {
		log.Warn("no banner-delimited sections found, extracted fragments directly",
			zap.Int("alias_lines", len(alias.Lines)),
			zap.Int("zone_lines", len(zone.Lines)),
		)
	}
	return sections
}
