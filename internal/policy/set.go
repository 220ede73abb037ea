package policy

// Set is an immutable, ordered collection of top-level policy rules produced
// by a single load. A Set is safe for concurrent evaluation; reloading means
// building a new Set and swapping it in wholesale.
type Set struct {
	formatVersion Version
	rules         []*Rule
	maxID         uint32
	unknownFields bool
}

// Evaluate matches every rule against the given platform and hardware in load
// order. The feature masks of matching, non-disabled rules are OR'd together;
// matching rules (disabled included) become the decision's active list. The
// os argument must be a concrete OS type; resolving "current platform" to a
// concrete type is the caller's job.
func (s *Set) Evaluate(os OsType, osVersion Version, hw HardwareInfo) Decision {
	var d Decision
	for _, r := range s.rules {
		if r.Matches(os, osVersion, hw) {
			if !r.disabled {
				d.features |= r.features
			}
			d.active = append(d.active, r)
		}
	}
	return d
}

// FormatVersion returns the rule-set format version as "major.minor", or the
// empty string if the set was not built from a two-component version.
func (s *Set) FormatVersion() string {
	if len(s.formatVersion) != 2 {
		return ""
	}
	return s.formatVersion.String()
}

// NumRules returns the number of rules kept after OS filtering.
func (s *Set) NumRules() int { return len(s.rules) }

// MaxRuleID returns the largest rule id seen across all parsed entries,
// including entries later dropped for carrying unknown fields.
func (s *Set) MaxRuleID() uint32 { return s.maxID }

// ContainsUnknownFields reports whether any entry carried unrecognized
// dictionary keys or feature names, the forward-compatibility signal that the
// document was written for a newer engine.
func (s *Set) ContainsUnknownFields() bool { return s.unknownFields }

// Decision is the outcome of one Evaluate call. It owns its active-rule
// bookkeeping, so concurrent evaluations of the same Set never interfere.
type Decision struct {
	features FeatureMask
	active   []*Rule
}

// Features returns the union of feature bits disabled by matching rules.
func (d Decision) Features() FeatureMask { return d.features }

// ActiveIDs returns the ids of all matching rules in load order, disabled
// rules included.
func (d Decision) ActiveIDs() []uint32 {
	ids := make([]uint32, len(d.active))
	for i, r := range d.active {
		ids[i] = r.id
	}
	return ids
}

// IDsFor returns the ids of active rules that touch the given feature bits
// and match the disabled filter, preserving load order. Callers use it to
// answer "which rules disabled feature X".
func (d Decision) IDsFor(feature FeatureMask, disabled bool) []uint32 {
	var ids []uint32
	for _, r := range d.active {
		if r.features&feature != 0 && r.disabled == disabled {
			ids = append(ids, r.id)
		}
	}
	return ids
}

// Problem is the reporting metadata of one active, non-disabled rule. How it
// is rendered is up to the caller.
type Problem struct {
	ID          uint32 `json:"id"`
	Description string `json:"description"`
	CrBugs      []int  `json:"crBugs,omitempty"`
	WebkitBugs  []int  `json:"webkitBugs,omitempty"`
}

// Problems extracts reporting metadata for every active rule that actually
// contributed feature bits.
func (d Decision) Problems() []Problem {
	var problems []Problem
	for _, r := range d.active {
		if r.disabled {
			continue
		}
		problems = append(problems, Problem{
			ID:          r.id,
			Description: r.description,
			CrBugs:      r.crBugs,
			WebkitBugs:  r.webkitBugs,
		})
	}
	return problems
}
