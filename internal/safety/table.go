package safety

import (
	"fmt"
	"strings"
)

// RuleKind selects how a Rule's pattern is matched.
type RuleKind int

const (
	// RuleRoot forbids the filesystem root itself.
	RuleRoot RuleKind = iota
	// RuleSegment forbids any path containing the pattern.
	RuleSegment
	// RulePrefix forbids any path starting with the pattern.
	RulePrefix
)

func (k RuleKind) String() string {
	switch k {
	case RuleRoot:
		return "root"
	case RuleSegment:
		return "segment"
	case RulePrefix:
		return "prefix"
	}
	return fmt.Sprintf("RuleKind(%d)", int(k))
}

// Rule is one entry of the forbidden path table.
type Rule struct {
	Kind    RuleKind
	Pattern string
}

func (r Rule) String() string {
	return fmt.Sprintf("%s %q", r.Kind, r.Pattern)
}

// Match reports whether the NormalizedPath p is covered by the rule.
// Matching is case sensitive.
func (r Rule) Match(p string) bool {
	switch r.Kind {
	case RuleRoot:
		return strings.TrimSpace(p) == "/"
	case RuleSegment:
		return strings.Contains(p, r.Pattern)
	case RulePrefix:
		return strings.HasPrefix(p, r.Pattern)
	}
	return false
}

// Table is the ordered, read-only list of forbidden path rules. The root
// rule always comes first, then segments, then prefixes.
type Table struct {
	rules []Rule
}

// RootRule forbids editing at the filesystem root.
var RootRule = Rule{Kind: RuleRoot, Pattern: "/"}

// DefaultPrefixes are the system directories at the root of the primary volume.
var DefaultPrefixes = []string{
	"/Windows",
	"/ProgramData",
	"/Program Files",
	"/Program Files (x86)",
	"/Recovery",
	"/PerfLogs",
	"/$Recycle.Bin",
	"/$RECYCLE.BIN",
	"/Documents and Settings",
	"/System Volume Information",
}

// DefaultProfileFolders are the special folders inside a user profile.
var DefaultProfileFolders = []string{
	"Application Data",
	"AppData",
	"Local Settings",
}

// NewTable builds a table from segment and prefix patterns. Blank patterns
// are dropped since they would match every path.
func NewTable(segments, prefixes []string) Table {
	rules := []Rule{RootRule}
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			rules = append(rules, Rule{Kind: RuleSegment, Pattern: s})
		}
	}
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			rules = append(rules, Rule{Kind: RulePrefix, Pattern: p})
		}
	}
	return Table{rules: rules}
}

// DefaultTable builds the built-in table for the given profile user name.
func DefaultTable(user string) Table {
	return NewTable(ProfileSegments(user), DefaultPrefixes)
}

// ProfileSegments expands DefaultProfileFolders for one user, e.g.
// "/jim/AppData". Without a user name the folders match under any profile.
func ProfileSegments(user string) []string {
	segments := make([]string, 0, len(DefaultProfileFolders))
	for _, folder := range DefaultProfileFolders {
		if user == "" {
			segments = append(segments, "/"+folder)
			continue
		}
		segments = append(segments, "/"+user+"/"+folder)
	}
	return segments
}

// Rules returns a copy of the rules in evaluation order.
func (t Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// first returns the first rule matching p.
func (t Table) first(p string) (Rule, bool) {
	if len(t.rules) == 0 {
		// a zero Table still refuses the root
		if RootRule.Match(p) {
			return RootRule, true
		}
		return Rule{}, false
	}
	for _, r := range t.rules {
		if r.Match(p) {
			return r, true
		}
	}
	return Rule{}, false
}
