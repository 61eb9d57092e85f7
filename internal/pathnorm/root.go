package pathnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type rootKind int

const (
	rootCollapsed rootKind = iota // already a single "/"
	rootPrimary                   // primary drive spelling, collapses to "/"
	rootUnusual                   // seen in the wild, collapses to "/" with a warning
)

// rootSpelling is one known spelling of a path root. A "X" in token stands
// for the primary volume letter.
type rootSpelling struct {
	token string
	kind  rootKind
}

var rootSpellings = []rootSpelling{
	{token: "/", kind: rootCollapsed},
	{token: "X:/", kind: rootPrimary},
	{token: `X:\`, kind: rootPrimary},
	{token: `X:\\`, kind: rootPrimary},
	{token: "//", kind: rootUnusual},
	{token: `\`, kind: rootUnusual},
	{token: `\\`, kind: rootUnusual},
}

func (s rootSpelling) matches(root, primary string) bool {
	return strings.EqualFold(strings.Replace(s.token, "X", primary, 1), root)
}

func lookupRoot(root, primary string) (rootSpelling, bool) {
	for _, s := range rootSpellings {
		if s.matches(root, primary) {
			return s, true
		}
	}
	return rootSpelling{}, false
}

// SplitRoot splits p into its root token and the remainder. The root is an
// optional drive prefix ("D:") followed by the run of separators after it.
// Both separator styles are recognised on every host.
func SplitRoot(p string) (root, rest string) {
	i := 0
	if r, size := utf8.DecodeRuneInString(p); size > 0 && IsCasedLetter(r) &&
		len(p) > size && p[size] == ':' {
		i = size + 1
	}
	j := i
	for j < len(p) && isSeparator(p[j]) {
		j++
	}
	return p[:j], p[j:]
}

// DriveLetter returns the drive letter of p ("D" for "D:/Music") or "".
func DriveLetter(p string) string {
	root, _ := SplitRoot(p)
	if i := strings.IndexByte(root, ':'); i > 0 {
		return root[:i]
	}
	return ""
}

// IsCasedLetter reports whether r has distinct upper and lower case forms.
func IsCasedLetter(r rune) bool {
	return unicode.ToLower(r) != unicode.ToUpper(r)
}

func isSeparator(c byte) bool {
	return c == '/' || c == '\\'
}
