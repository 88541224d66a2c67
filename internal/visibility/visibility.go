// Package visibility decides which fields introspection may list.
package visibility

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// NoIntrospection disables introspection entirely when used as the setting.
const NoIntrospection = "no-introspection"

// Policy gates discoverability only; hidden fields still resolve when a
// client selects them by name.
type Policy struct {
	introspection bool
	patterns      []*regexp.Regexp
	raw           string
}

// Default lists everything.
func Default() *Policy { return &Policy{introspection: true} }

// Parse builds a policy from the field visibility setting. Empty means
// default visibility, NoIntrospection disables introspection, anything else
// is a comma separated list of field patterns to hide. Each pattern is a
// regular expression matched in full against "Type.field" and against the
// bare field name. Invalid patterns are logged and skipped.
func Parse(setting string, logger *zap.Logger) *Policy {
	if logger == nil {
		logger = zap.NewNop()
	}
	setting = strings.TrimSpace(setting)
	switch setting {
	case "":
		return Default()
	case NoIntrospection:
		return &Policy{raw: setting}
	}
	p := &Policy{introspection: true, raw: setting}
	for _, part := range strings.Split(setting, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		re, err := regexp.Compile("^(?:" + part + ")$")
		if err != nil {
			logger.Warn("invalid field visibility pattern", zap.String("pattern", part), zap.Error(err))
			continue
		}
		p.patterns = append(p.patterns, re)
	}
	return p
}

// Introspectable reports whether __schema and __type are served at all.
func (p *Policy) Introspectable() bool { return p == nil || p.introspection }

// FieldVisible reports whether introspection lists field of typeName.
func (p *Policy) FieldVisible(typeName, field string) bool {
	if p == nil {
		return true
	}
	if strings.HasPrefix(field, "__") {
		return true
	}
	qualified := typeName + "." + field
	for _, re := range p.patterns {
		if re.MatchString(qualified) || re.MatchString(field) {
			return false
		}
	}
	return true
}

// String returns the setting the policy was parsed from.
func (p *Policy) String() string {
	if p == nil {
		return ""
	}
	return p.raw
}
