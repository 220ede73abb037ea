package policy

// OsType identifies the operating system a rule or evaluation targets.
type OsType int

const (
	OsUnknown OsType = iota
	OsWindows
	OsMacOSX
	OsLinux
	OsChromeOS
	OsAny
)

// ParseOsType maps a rule document token to an OsType. Unrecognized tokens
// map to OsUnknown, which invalidates the owning matcher.
func ParseOsType(s string) OsType {
	switch s {
	case "win":
		return OsWindows
	case "macosx":
		return OsMacOSX
	case "linux":
		return OsLinux
	case "chromeos":
		return OsChromeOS
	case "any":
		return OsAny
	}
	return OsUnknown
}

func (t OsType) String() string {
	switch t {
	case OsWindows:
		return "win"
	case OsMacOSX:
		return "macosx"
	case OsLinux:
		return "linux"
	case OsChromeOS:
		return "chromeos"
	case OsAny:
		return "any"
	}
	return "unknown"
}

// OsMatch constrains the OS type and version a rule applies to. A nil match
// imposes no constraint.
type OsMatch struct {
	typ     OsType
	version *VersionRange
}

func newOsMatch(osType, versionOp, number, number2 string) *OsMatch {
	m := &OsMatch{typ: ParseOsType(osType)}
	if m.typ != OsUnknown {
		m.version = newVersionRange(versionOp, "", number, number2)
	}
	return m
}

func (m *OsMatch) valid() bool {
	return m != nil && m.typ != OsUnknown && m.version.valid()
}

// Contains reports whether the given platform satisfies the match. The type
// must be exact or "any", and the version must fall in the nested range.
func (m *OsMatch) Contains(t OsType, v Version) bool {
	if m == nil {
		return true
	}
	if !m.valid() {
		return false
	}
	if m.typ != t && m.typ != OsAny {
		return false
	}
	return m.version.Contains(v)
}

// osType returns the targeted OS, OsAny when unconstrained.
func (m *OsMatch) osType() OsType {
	if m == nil {
		return OsAny
	}
	return m.typ
}
