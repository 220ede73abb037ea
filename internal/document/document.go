// Package document owns the JSON text boundary in front of the policy
// engine: decoding raw rule documents into the generic tree the loader
// consumes, and refusing format revisions this engine does not understand.
package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/dstepanov/hwpolicy/internal/policy"
)

// FormatConstraint is the range of rule-set format versions this engine
// understands. A future major revision of the document format must be
// refused loudly instead of degrading silently.
const FormatConstraint = ">= 1.0, < 3.0"

var (
	ErrInvalidJSON       = errors.New("document: invalid JSON")
	ErrUnsupportedFormat = errors.New("document: unsupported format version")
)

var formatConstraint *semver.Constraints

func init() {
	c, err := semver.NewConstraint(FormatConstraint)
	if err != nil {
		panic(fmt.Sprintf("document: bad format constraint %q: %v", FormatConstraint, err))
	}
	formatConstraint = c
}

// BuildOptions configures Build; the zero value loads with defaults.
type BuildOptions struct {
	BrowserVersion policy.Version
	OsFilter       policy.OsFilter
	CurrentOS      policy.OsType
	Features       policy.FeatureSet
	Logger         *zerolog.Logger
}

// Parse decodes a raw rule document into the generic tree the policy loader
// consumes.
func Parse(raw []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return doc, nil
}

// Build decodes, loads and format-checks a raw rule document, producing a
// ready-to-evaluate policy set. Failures are all-or-nothing; a caller that
// holds a previous set keeps using it.
func Build(raw []byte, opts BuildOptions) (*policy.Set, error) {
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	set, err := policy.Load(doc, policy.LoadOptions{
		BrowserVersion: opts.BrowserVersion,
		OsFilter:       opts.OsFilter,
		CurrentOS:      opts.CurrentOS,
		Features:       opts.Features,
		Logger:         opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	v, err := semver.NewVersion(set.FormatVersion())
	if err != nil || !formatConstraint.Check(v) {
		return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedFormat, set.FormatVersion(), FormatConstraint)
	}
	return set, nil
}
