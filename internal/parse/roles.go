package parse

import (
	"strings"

	"golang.org/x/text/cases"
)

var (
	counselorTokenKey = foldLabel(RoleCounselor)
	clientTokenKey    = foldLabel(RoleClient)

	counselorTokenMatcher = NewNameMatcher(RoleCounselor)
	clientTokenMatcher    = NewNameMatcher(RoleClient)
)

// foldLabel returns the comparison key of a speaker label. A cases.Caser is
// stateful, so a new one is made per call.
func foldLabel(s string) string {
	return cases.Fold().String(normalizeName(stripWrappers(s)))
}

// MapRole maps a raw speaker label to RoleCounselor or RoleClient when it
// names the configured counselor or client (or is already a role token).
// Any other label is returned verbatim, whitespace-collapsed.
func (p *Parser) MapRole(label string) string {
	raw := strings.Join(strings.Fields(stripWrappers(label)), " ")
	if raw == "" {
		return ""
	}
	switch foldLabel(raw) {
	case p.counselorKey, counselorTokenKey:
		return RoleCounselor
	case p.clientKey, clientTokenKey:
		return RoleClient
	}
	return raw
}
