package model

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// wwpnRe matches a 64-bit WWPN written as 16 hex digits, with optional
// colon or dash grouping between byte pairs.
var wwpnRe = regexp.MustCompile(`^(?:[0-9a-fA-F]{2}[:\-]?){7}[0-9a-fA-F]{2}$`)

// IsWWPN reports whether raw looks like a WWPN in any accepted delimiter
// style (colon-grouped, dash-grouped, or bare hex).
func IsWWPN(raw string) bool {
	return wwpnRe.MatchString(strings.TrimSpace(raw))
}

// NormalizeWWPN converts a WWPN in any accepted style to the canonical form:
// 16 lowercase hex digits grouped in byte pairs by colons
// (e.g. "50:05:07:63:0a:03:17:e4").
func NormalizeWWPN(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !wwpnRe.MatchString(raw) {
		return "", eris.Errorf("not a valid wwpn: %q", raw)
	}

	hex := strings.ToLower(strings.NewReplacer(":", "", "-", "").Replace(raw))

	var b strings.Builder
	b.Grow(23)
	for i := 0; i < len(hex); i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(hex[i : i+2])
	}
	return b.String(), nil
}

// WWPNEqual reports whether two WWPN strings refer to the same port,
// regardless of casing or delimiter style. Invalid values never match.
func WWPNEqual(a, b string) bool {
	na, errA := NormalizeWWPN(a)
	nb, errB := NormalizeWWPN(b)
	return errA == nil && errB == nil && na == nb
}
