package policy

import "strings"

type stringOp int

const (
	stringOpInvalid stringOp = iota
	stringOpEq
	stringOpContains
	stringOpBeginsWith
	stringOpEndsWith
)

func parseStringOp(s string) stringOp {
	switch s {
	case "=":
		return stringOpEq
	case "contains":
		return stringOpContains
	case "beginwith":
		return stringOpBeginsWith
	case "endwith":
		return stringOpEndsWith
	}
	return stringOpInvalid
}

// StringMatch compares driver and GL identification strings
// case-insensitively. The comparison value is lower-cased at construction,
// probes at match time. A nil match imposes no constraint; an unrecognized
// operator yields an invalid match that never matches anything.
type StringMatch struct {
	op    stringOp
	value string
}

func newStringMatch(op, value string) *StringMatch {
	return &StringMatch{op: parseStringOp(op), value: strings.ToLower(value)}
}

func (m *StringMatch) valid() bool {
	return m != nil && m.op != stringOpInvalid
}

// Contains reports whether probe satisfies the match.
func (m *StringMatch) Contains(probe string) bool {
	if m == nil {
		return true
	}
	p := strings.ToLower(probe)
	switch m.op {
	case stringOpEq:
		return p == m.value
	case stringOpContains:
		return strings.Contains(p, m.value)
	case stringOpBeginsWith:
		return strings.HasPrefix(p, m.value)
	case stringOpEndsWith:
		return strings.HasSuffix(p, m.value)
	}
	return false
}
