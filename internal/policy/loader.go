package policy

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Load failure sentinels. A load either produces a complete Set or fails as a
// whole; a corrupt document must never partially apply.
var (
	// ErrMalformedDocument covers top-level problems: a bad format version
	// or a missing/invalid entries list.
	ErrMalformedDocument = errors.New("policy: malformed document")
	// ErrMalformedEntry covers a bad rule body or a malformed
	// browser-version gate.
	ErrMalformedEntry = errors.New("policy: malformed entry")
)

// OsFilter controls which parsed entries the loader keeps.
type OsFilter int

const (
	// AllOs keeps every parsed entry regardless of target OS.
	AllOs OsFilter = iota
	// CurrentOsOnly keeps entries whose OS matcher is absent, "any", or
	// equal to LoadOptions.CurrentOS.
	CurrentOsOnly
)

// LoadOptions configures a load.
type LoadOptions struct {
	// BrowserVersion is the host application version checked against
	// per-entry browser_version gates. Nil is treated as version 0.
	BrowserVersion Version
	OsFilter       OsFilter
	// CurrentOS is the OS entries are filtered against when OsFilter is
	// CurrentOsOnly.
	CurrentOS OsType
	// Features maps document feature names to capability bits. Nil selects
	// DefaultFeatures.
	Features FeatureSet
	// Logger receives warnings for entries dropped or degraded for
	// forward-compatibility reasons. Nil disables logging.
	Logger *zerolog.Logger
}

type browserVersionSupport int

const (
	gateSupported browserVersionSupport = iota
	gateUnsupported
	gateMalformed
)

// Load validates a parsed rule document and builds a Set. The top-level
// "version" must parse as a two-component version and "entries" must be a
// list of dictionaries. Any malformed entry aborts the entire load. Entries
// gated to other browser versions are skipped before parsing. Entries with
// unrecognized keys are dropped (not a failure) and flag the Set; entries
// with unrecognized feature names are kept with those names ignored.
func Load(doc map[string]any, opts LoadOptions) (*Set, error) {
	features := opts.Features
	if features == nil {
		features = DefaultFeatures
	}
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	browserVersion := opts.BrowserVersion
	if browserVersion == nil {
		browserVersion = Version{0}
	}

	versionString, _ := getString(doc, "version")
	formatVersion, ok := ParseVersion(versionString)
	if !ok || len(formatVersion) != 2 {
		return nil, fmt.Errorf("%w: version %q is not a major.minor version", ErrMalformedDocument, versionString)
	}
	rawEntries, ok := getList(doc, "entries")
	if !ok {
		return nil, fmt.Errorf("%w: entries is missing or not a list", ErrMalformedDocument)
	}

	var parsed []*Rule
	var maxID uint32
	unknownFields := false
	for i, raw := range rawEntries {
		entry, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: entries[%d] is not an object", ErrMalformedDocument, i)
		}
		switch checkBrowserVersionGate(entry, browserVersion) {
		case gateMalformed:
			return nil, fmt.Errorf("%w: entries[%d]: malformed browser_version", ErrMalformedEntry, i)
		case gateUnsupported:
			continue
		}
		rule, err := buildRule(entry, true, features)
		if err != nil {
			return nil, fmt.Errorf("entries[%d]: %w", i, err)
		}
		if rule.id > maxID {
			maxID = rule.id
		}
		if rule.unknownFields {
			logger.Warn().Uint32("rule_id", rule.id).Msg("dropping entry with unknown fields")
			unknownFields = true
			continue
		}
		if rule.unknownFeatures {
			logger.Warn().Uint32("rule_id", rule.id).Msg("entry names unknown features")
			unknownFields = true
		}
		parsed = append(parsed, rule)
	}

	rules := make([]*Rule, 0, len(parsed))
	for _, r := range parsed {
		entryOs := r.osType()
		if opts.OsFilter == AllOs || entryOs == OsAny || entryOs == opts.CurrentOS {
			rules = append(rules, r)
		}
	}
	return &Set{
		formatVersion: formatVersion,
		rules:         rules,
		maxID:         maxID,
		unknownFields: unknownFields,
	}, nil
}

// checkBrowserVersionGate decides whether an entry applies to the running
// browser version before the entry is parsed. Absent gate means supported.
func checkBrowserVersionGate(entry map[string]any, browserVersion Version) browserVersionSupport {
	gate, ok := getDict(entry, "browser_version")
	if !ok {
		return gateSupported
	}
	op := "any"
	if s, ok := getString(gate, "op"); ok {
		op = s
	}
	number, _ := getString(gate, "number")
	number2, _ := getString(gate, "number2")
	r := newVersionRange(op, "", number, number2)
	if !r.valid() {
		return gateMalformed
	}
	if r.Contains(browserVersion) {
		return gateSupported
	}
	return gateUnsupported
}

const defaultDescription = "The GPU is unavailable for an unexplained reason."

// buildRule constructs one Rule from an entry dictionary. Keys consumed
// successfully are counted; a mismatch against the dictionary size marks the
// rule as carrying unknown fields. Exception entries reuse the same grammar
// without id, disabled, blacklist, exceptions and browser_version.
func buildRule(entry map[string]any, topLevel bool, features FeatureSet) (*Rule, error) {
	r := &Rule{description: defaultDescription}
	known := 0

	if topLevel {
		id, ok := getInt(entry, "id")
		if !ok || id <= 0 || id > math.MaxUint32 {
			return nil, fmt.Errorf("%w: bad id", ErrMalformedEntry)
		}
		r.id = uint32(id)
		known++

		if disabled, ok := getBool(entry, "disabled"); ok {
			r.disabled = disabled
			known++
		}
	}

	if description, ok := getString(entry, "description"); ok {
		r.description = description
		known++
	}

	var err error
	if r.crBugs, err = getIntList(entry, "cr_bugs", &known); err != nil {
		return nil, fmt.Errorf("%w: entry %d: bad cr_bugs", ErrMalformedEntry, r.id)
	}
	if r.webkitBugs, err = getIntList(entry, "webkit_bugs", &known); err != nil {
		return nil, fmt.Errorf("%w: entry %d: bad webkit_bugs", ErrMalformedEntry, r.id)
	}

	if osValue, ok := getDict(entry, "os"); ok {
		osType, _ := getString(osValue, "type")
		versionOp := "any"
		var number, number2 string
		if versionValue, ok := getDict(osValue, "version"); ok {
			if s, ok := getString(versionValue, "op"); ok {
				versionOp = s
			}
			number, _ = getString(versionValue, "number")
			number2, _ = getString(versionValue, "number2")
		}
		r.os = newOsMatch(osType, versionOp, number, number2)
		if !r.os.valid() {
			return nil, fmt.Errorf("%w: entry %d: bad os", ErrMalformedEntry, r.id)
		}
		known++
	}

	if vendorID, ok := getString(entry, "vendor_id"); ok {
		id, ok := ParseHexID(vendorID)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d: bad vendor_id", ErrMalformedEntry, r.id)
		}
		r.vendorID = id
		known++
	}

	if deviceIDs, ok := getList(entry, "device_id"); ok {
		for _, raw := range deviceIDs {
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%w: entry %d: bad device_id", ErrMalformedEntry, r.id)
			}
			id, ok := ParseHexID(s)
			if !ok {
				return nil, fmt.Errorf("%w: entry %d: bad device_id", ErrMalformedEntry, r.id)
			}
			r.deviceIDs = append(r.deviceIDs, id)
		}
		known++
	}

	if style, ok := getString(entry, "multi_gpu_style"); ok {
		r.multiGpu = parseMultiGpuStyle(style)
		if r.multiGpu == multiGpuNone {
			return nil, fmt.Errorf("%w: entry %d: bad multi_gpu_style", ErrMalformedEntry, r.id)
		}
		known++
	}

	if r.driverVendor, err = buildStringMatch(entry, "driver_vendor", &known); err != nil {
		return nil, fmt.Errorf("%w: entry %d: bad driver_vendor", ErrMalformedEntry, r.id)
	}

	if value, ok := getDict(entry, "driver_version"); ok {
		op := "any"
		if s, ok := getString(value, "op"); ok {
			op = s
		}
		style, _ := getString(value, "style")
		number, _ := getString(value, "number")
		number2, _ := getString(value, "number2")
		r.driverVersion = newVersionRange(op, style, number, number2)
		if !r.driverVersion.valid() {
			return nil, fmt.Errorf("%w: entry %d: bad driver_version", ErrMalformedEntry, r.id)
		}
		known++
	}

	if value, ok := getDict(entry, "driver_date"); ok {
		op := "any"
		if s, ok := getString(value, "op"); ok {
			op = s
		}
		number, _ := getString(value, "number")
		number2, _ := getString(value, "number2")
		r.driverDate = newVersionRange(op, "", number, number2)
		if !r.driverDate.valid() {
			return nil, fmt.Errorf("%w: entry %d: bad driver_date", ErrMalformedEntry, r.id)
		}
		known++
	}

	if r.glVendor, err = buildStringMatch(entry, "gl_vendor", &known); err != nil {
		return nil, fmt.Errorf("%w: entry %d: bad gl_vendor", ErrMalformedEntry, r.id)
	}
	if r.glRenderer, err = buildStringMatch(entry, "gl_renderer", &known); err != nil {
		return nil, fmt.Errorf("%w: entry %d: bad gl_renderer", ErrMalformedEntry, r.id)
	}

	if r.perfGraphics, err = buildFloatRange(entry, "perf_graphics", &known); err != nil {
		return nil, fmt.Errorf("%w: entry %d: bad perf_graphics", ErrMalformedEntry, r.id)
	}
	if r.perfGaming, err = buildFloatRange(entry, "perf_gaming", &known); err != nil {
		return nil, fmt.Errorf("%w: entry %d: bad perf_gaming", ErrMalformedEntry, r.id)
	}
	if r.perfOverall, err = buildFloatRange(entry, "perf_overall", &known); err != nil {
		return nil, fmt.Errorf("%w: entry %d: bad perf_overall", ErrMalformedEntry, r.id)
	}

	if topLevel {
		blacklist, ok := getList(entry, "blacklist")
		if !ok {
			return nil, fmt.Errorf("%w: entry %d: missing blacklist", ErrMalformedEntry, r.id)
		}
		if len(blacklist) == 0 {
			return nil, fmt.Errorf("%w: entry %d: empty blacklist", ErrMalformedEntry, r.id)
		}
		for _, raw := range blacklist {
			name, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%w: entry %d: bad blacklist", ErrMalformedEntry, r.id)
			}
			if bits, ok := features[name]; ok {
				r.features |= bits
			} else {
				r.unknownFeatures = true
			}
		}
		known++

		if exceptions, ok := getList(entry, "exceptions"); ok {
			for _, raw := range exceptions {
				exceptionEntry, ok := raw.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("%w: entry %d: bad exceptions", ErrMalformedEntry, r.id)
				}
				exception, err := buildRule(exceptionEntry, false, features)
				if err != nil {
					return nil, fmt.Errorf("%w: entry %d: bad exception", ErrMalformedEntry, r.id)
				}
				// An exception with unknown fields is dropped; the
				// parent is flagged and will be dropped by the loader.
				if exception.unknownFields {
					r.unknownFields = true
				} else {
					r.exceptions = append(r.exceptions, exception)
				}
			}
			known++
		}

		// browser_version is consumed by the loader's gate check.
		if _, ok := getDict(entry, "browser_version"); ok {
			known++
		}
	}

	if known != len(entry) {
		r.unknownFields = true
	}
	return r, nil
}

func buildStringMatch(entry map[string]any, key string, known *int) (*StringMatch, error) {
	value, ok := getDict(entry, key)
	if !ok {
		return nil, nil
	}
	op, _ := getString(value, "op")
	matchValue, _ := getString(value, "value")
	m := newStringMatch(op, matchValue)
	if !m.valid() {
		return nil, fmt.Errorf("invalid %s", key)
	}
	*known++
	return m, nil
}

func buildFloatRange(entry map[string]any, key string, known *int) (*FloatRange, error) {
	dict, ok := getDict(entry, key)
	if !ok {
		return nil, nil
	}
	op, _ := getString(dict, "op")
	value, _ := getString(dict, "value")
	value2, _ := getString(dict, "value2")
	r := newFloatRange(op, value, value2)
	if !r.valid() {
		return nil, fmt.Errorf("invalid %s", key)
	}
	*known++
	return r, nil
}

// Typed accessors over the generic document tree. JSON numbers arrive as
// float64; integral values are also accepted as int for programmatic trees.

func getString(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

func getBool(m map[string]any, key string) (bool, bool) {
	b, ok := m[key].(bool)
	return b, ok
}

func getDict(m map[string]any, key string) (map[string]any, bool) {
	d, ok := m[key].(map[string]any)
	return d, ok
}

func getList(m map[string]any, key string) ([]any, bool) {
	l, ok := m[key].([]any)
	return l, ok
}

func getInt(m map[string]any, key string) (int64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	return toInt(v)
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// getIntList reads an optional list of integers, bumping the known-key count
// only when the key is present as a list.
func getIntList(m map[string]any, key string, known *int) ([]int, error) {
	list, ok := getList(m, key)
	if !ok {
		return nil, nil
	}
	out := make([]int, 0, len(list))
	for _, raw := range list {
		n, ok := toInt(raw)
		if !ok {
			return nil, fmt.Errorf("non-integer value in %s", key)
		}
		out = append(out, int(n))
	}
	*known++
	return out, nil
}
