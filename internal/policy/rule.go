package policy

// Rule is a single policy entry: a conjunction of optional hardware, driver
// and OS constraints, the capability bits it disables when it matches, and an
// ordered list of exception sub-rules that veto the match. Rules are built by
// the loader and immutable afterwards.
type Rule struct {
	id          uint32
	disabled    bool
	description string
	crBugs      []int
	webkitBugs  []int

	os            *OsMatch
	vendorID      uint32
	deviceIDs     []uint32
	multiGpu      multiGpuStyle
	driverVendor  *StringMatch
	driverVersion *VersionRange
	driverDate    *VersionRange
	glVendor      *StringMatch
	glRenderer    *StringMatch
	perfGraphics  *FloatRange
	perfGaming    *FloatRange
	perfOverall   *FloatRange

	features        FeatureMask
	unknownFields   bool
	unknownFeatures bool
	exceptions      []*Rule
}

// ID returns the rule id; exception rules have id 0.
func (r *Rule) ID() uint32 { return r.id }

// Disabled reports whether the rule is present but switched off: it still
// shows up as active when it matches, but contributes no feature bits.
func (r *Rule) Disabled() bool { return r.disabled }

// Description returns the human-readable reason attached to the rule.
func (r *Rule) Description() string { return r.description }

// CrBugs returns the "cr_bugs" tracker references.
func (r *Rule) CrBugs() []int { return r.crBugs }

// WebkitBugs returns the "webkit_bugs" tracker references.
func (r *Rule) WebkitBugs() []int { return r.webkitBugs }

// Features returns the capability bits this rule disables.
func (r *Rule) Features() FeatureMask { return r.features }

// Matches reports whether the rule applies to the given platform and
// hardware. Constraints are evaluated as a short-circuit conjunction in a
// fixed order: OS, vendor id, device id set, multi-GPU style, driver vendor,
// driver version, driver date, GL vendor, GL renderer, then the three
// performance scores. Absent constraints are skipped. A driver version or
// date that fails to parse from the hardware descriptor fails the constraint.
// After all positive constraints pass, any matching exception vetoes the
// result; exceptions use the same algorithm recursively.
func (r *Rule) Matches(os OsType, osVersion Version, hw HardwareInfo) bool {
	if !r.os.Contains(os, osVersion) {
		return false
	}
	if r.vendorID != 0 && r.vendorID != hw.VendorID {
		return false
	}
	if len(r.deviceIDs) > 0 {
		found := false
		for _, id := range r.deviceIDs {
			if id == hw.DeviceID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	switch r.multiGpu {
	case multiGpuOptimus:
		if !hw.Optimus {
			return false
		}
	case multiGpuAmdSwitchable:
		if !hw.AmdSwitchable {
			return false
		}
	}
	if !r.driverVendor.Contains(hw.DriverVendor) {
		return false
	}
	if r.driverVersion != nil {
		probe := hw.DriverVersion
		if r.driverVersion.lexical() {
			probe = numericalToLexical(probe)
		}
		v, ok := ParseVersion(probe)
		if !ok || !r.driverVersion.Contains(v) {
			return false
		}
	}
	if r.driverDate != nil {
		d, ok := parseDate(hw.DriverDate)
		if !ok || !r.driverDate.Contains(d) {
			return false
		}
	}
	if !r.glVendor.Contains(hw.GLVendor) {
		return false
	}
	if !r.glRenderer.Contains(hw.GLRenderer) {
		return false
	}
	// An unmeasured score (0.0) never satisfies a performance constraint,
	// even with the "any" operator.
	if r.perfGraphics != nil && (hw.PerfGraphics == 0 || !r.perfGraphics.Contains(hw.PerfGraphics)) {
		return false
	}
	if r.perfGaming != nil && (hw.PerfGaming == 0 || !r.perfGaming.Contains(hw.PerfGaming)) {
		return false
	}
	if r.perfOverall != nil && (hw.PerfOverall == 0 || !r.perfOverall.Contains(hw.PerfOverall)) {
		return false
	}
	for _, ex := range r.exceptions {
		if ex.Matches(os, osVersion, hw) {
			return false
		}
	}
	return true
}

// osType returns the OS the rule targets, OsAny when the rule carries no OS
// constraint. The loader uses it for OS filtering.
func (r *Rule) osType() OsType { return r.os.osType() }
