package policy

import "strconv"

// VersionRange constrains a Version probe with a numeric operator and one or
// two bounds. A nil range imposes no constraint. A range built from an
// unrecognized operator or an unparseable bound is invalid and never matches.
type VersionRange struct {
	op    numericOp
	style versionStyle
	lo    Version
	hi    Version
}

// newVersionRange builds a range from raw rule fields. The "any" operator is
// satisfied by every probe and skips bound parsing entirely. When the style is
// lexical, both bounds go through the numerical-to-lexical rewrite before
// parsing; probes get the same treatment at match time.
func newVersionRange(op, style, number, number2 string) *VersionRange {
	r := &VersionRange{op: parseNumericOp(op), style: styleNumerical}
	if r.op == opInvalid || r.op == opAny {
		return r
	}
	r.style = parseVersionStyle(style)
	if r.style == styleInvalid {
		r.op = opInvalid
		return r
	}
	if r.style == styleLexical {
		number = numericalToLexical(number)
		number2 = numericalToLexical(number2)
	}
	var ok bool
	if r.lo, ok = ParseVersion(number); !ok {
		r.op = opInvalid
		return r
	}
	if r.op == opBetween {
		if r.hi, ok = ParseVersion(number2); !ok {
			r.op = opInvalid
		}
	}
	return r
}

func (r *VersionRange) valid() bool {
	return r != nil && r.op != opInvalid
}

func (r *VersionRange) lexical() bool {
	return r != nil && r.style == styleLexical
}

// Contains reports whether v satisfies the range. For "=" a bound of "10.6"
// contains "10.6.4": every bound component must equal the corresponding probe
// component, and where the probe has no component the bound must be zero.
// Extra trailing probe components beyond the bound are ignored. "between" is
// inclusive on both sides.
func (r *VersionRange) Contains(v Version) bool {
	if r == nil {
		return true
	}
	switch r.op {
	case opInvalid:
		return false
	case opAny:
		return true
	case opEq:
		for i, ref := range r.lo {
			if i >= len(v) {
				if ref != 0 {
					return false
				}
				continue
			}
			if v[i] != ref {
				return false
			}
		}
		return true
	}
	rel := v.Compare(r.lo)
	switch r.op {
	case opLt:
		return rel < 0
	case opLe:
		return rel <= 0
	case opGt:
		return rel > 0
	case opGe:
		return rel >= 0
	}
	// between
	if rel < 0 {
		return false
	}
	return v.Compare(r.hi) <= 0
}

// FloatRange constrains a performance score. A nil range imposes no
// constraint. Unlike VersionRange, the first bound must parse even for the
// "any" operator; an unparseable bound degrades the whole range to invalid.
type FloatRange struct {
	op numericOp
	lo float32
	hi float32
}

func newFloatRange(op, value, value2 string) *FloatRange {
	r := &FloatRange{}
	d, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return r
	}
	r.lo = float32(d)
	r.op = parseNumericOp(op)
	if r.op == opBetween {
		d2, err := strconv.ParseFloat(value2, 64)
		if err != nil {
			r.op = opInvalid
			return r
		}
		r.hi = float32(d2)
	}
	return r
}

func (r *FloatRange) valid() bool {
	return r != nil && r.op != opInvalid
}

// Contains reports whether value satisfies the range. "between" accepts its
// bounds in either order and is inclusive on both sides.
func (r *FloatRange) Contains(value float32) bool {
	if r == nil {
		return true
	}
	switch r.op {
	case opInvalid:
		return false
	case opAny:
		return true
	case opEq:
		return value == r.lo
	case opLt:
		return value < r.lo
	case opLe:
		return value <= r.lo
	case opGt:
		return value > r.lo
	case opGe:
		return value >= r.lo
	}
	return (r.lo <= value && value <= r.hi) || (r.hi <= value && value <= r.lo)
}
