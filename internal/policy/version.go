package policy

import (
	"strconv"
	"strings"
)

// Version is an ordered sequence of non-negative integer components parsed
// from a dotted-decimal string, e.g. "10.6.4" -> [10 6 4]. Versions are
// immutable value objects; callers must not modify the slice after parsing.
type Version []int

// ParseVersion parses a dotted-decimal string. It returns false if the string
// is empty or any component is not a non-negative integer.
func ParseVersion(s string) (Version, bool) {
	if s == "" {
		return nil, false
	}
	parts := strings.Split(s, ".")
	v := make(Version, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, false
		}
		v = append(v, n)
	}
	return v, true
}

// Compare orders versions component-wise, treating missing trailing
// components as zero. It returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	for i := 0; i < len(v) || i < len(o); i++ {
		a, b := 0, 0
		if i < len(v) {
			a = v[i]
		}
		if i < len(o) {
			b = o[i]
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
	}
	return 0
}

// String renders the version back to dotted-decimal form.
func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// numericalToLexical rewrites a major.minor version string so that every
// digit of the fractional part becomes its own component: "8.103" -> "8.1.0.3".
// The integer part is kept verbatim. Any non-digit in the fractional part
// aborts the rewrite and the input is returned unchanged.
func numericalToLexical(numerical string) string {
	pos := strings.IndexByte(numerical, '.')
	if pos < 0 || pos+1 >= len(numerical) {
		return numerical
	}
	var b strings.Builder
	b.Grow(pos + 2*(len(numerical)-pos-1))
	b.WriteString(numerical[:pos])
	for i := pos + 1; i < len(numerical); i++ {
		c := numerical[i]
		if c < '0' || c > '9' {
			return numerical
		}
		b.WriteByte('.')
		b.WriteByte(c)
	}
	return b.String()
}

// parseDate reinterprets an "mm-dd-yyyy" driver date as the Version
// [yyyy mm dd] so date ranges reuse version comparison. A string without
// exactly three segments fails the parse.
func parseDate(s string) (Version, bool) {
	pieces := strings.Split(s, "-")
	if len(pieces) != 3 {
		return nil, false
	}
	return ParseVersion(pieces[2] + "." + pieces[0] + "." + pieces[1])
}
