package policy

// numericOp is the comparison operator of a version, date or float range.
type numericOp int

const (
	opInvalid numericOp = iota
	opEq
	opLt
	opLe
	opGt
	opGe
	opAny
	opBetween
)

func parseNumericOp(s string) numericOp {
	switch s {
	case "=":
		return opEq
	case "<":
		return opLt
	case "<=":
		return opLe
	case ">":
		return opGt
	case ">=":
		return opGe
	case "any":
		return opAny
	case "between":
		return opBetween
	}
	return opInvalid
}

// versionStyle selects the encoding applied to version bounds and probes.
type versionStyle int

const (
	styleInvalid versionStyle = iota
	styleNumerical
	styleLexical
)

func parseVersionStyle(s string) versionStyle {
	switch s {
	case "", "numerical":
		return styleNumerical
	case "lexical":
		return styleLexical
	}
	return styleInvalid
}
