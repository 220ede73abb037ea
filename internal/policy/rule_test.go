package policy

import "testing"

func linuxNvidiaHardware() HardwareInfo {
	return HardwareInfo{
		VendorID:      0x10de,
		DeviceID:      0x0640,
		DriverVendor:  "NVIDIA",
		DriverVersion: "195.36.24",
		DriverDate:    "07-14-2009",
		GLVendor:      "NVIDIA Corporation",
		GLRenderer:    "NVIDIA GeForce GT 120 OpenGL Engine",
		PerfGraphics:  5.0,
		PerfGaming:    4.0,
		PerfOverall:   3.8,
	}
}

func TestRuleMatchesVendorAndDevice(t *testing.T) {
	r := &Rule{
		id:        1,
		vendorID:  0x10de,
		deviceIDs: []uint32{0x0640, 0x0641},
		features:  FeatureWebGL,
	}
	hw := linuxNvidiaHardware()

	if !r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Fatal("expected match on vendor and device id")
	}

	hw.VendorID = 0x1002
	if r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("different vendor must not match")
	}

	hw = linuxNvidiaHardware()
	hw.DeviceID = 0x9999
	if r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("device id outside the set must not match")
	}
}

func TestRuleMatchesOsConstraint(t *testing.T) {
	r := &Rule{
		id:       2,
		os:       newOsMatch("macosx", "=", "10.6", ""),
		features: FeatureWebGL,
	}
	hw := linuxNvidiaHardware()

	if !r.Matches(OsMacOSX, mustVersion(t, "10.6.4"), hw) {
		t.Error("10.6 should contain 10.6.4")
	}
	if r.Matches(OsMacOSX, mustVersion(t, "10.5.8"), hw) {
		t.Error("10.5.8 is outside the version range")
	}
	if r.Matches(OsLinux, mustVersion(t, "10.6.4"), hw) {
		t.Error("wrong OS type must not match")
	}
}

func TestRuleMatchesMultiGpuStyle(t *testing.T) {
	r := &Rule{id: 3, multiGpu: multiGpuOptimus, features: FeatureWebGL}
	hw := linuxNvidiaHardware()

	if r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("optimus rule must not match non-optimus hardware")
	}
	hw.Optimus = true
	if !r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("optimus rule should match optimus hardware")
	}

	r = &Rule{id: 4, multiGpu: multiGpuAmdSwitchable, features: FeatureWebGL}
	hw = linuxNvidiaHardware()
	hw.AmdSwitchable = true
	if !r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("amd_switchable rule should match switchable hardware")
	}
}

func TestRuleMatchesDriverVersion(t *testing.T) {
	r := &Rule{
		id:            5,
		driverVersion: newVersionRange("<=", "", "195.36.20", ""),
		features:      FeatureWebGL,
	}
	hw := linuxNvidiaHardware()

	if r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("195.36.24 is above the bound")
	}
	hw.DriverVersion = "195.36.20"
	if !r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("equal driver version should match <=")
	}
	hw.DriverVersion = "not a version"
	if r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("unparseable probe must fail the constraint closed")
	}
}

func TestRuleMatchesLexicalDriverVersion(t *testing.T) {
	// Lexical style: bound 8.103 reads as 8.1.0.3, probe 8.17 as 8.1.7.
	r := &Rule{
		id:            6,
		driverVersion: newVersionRange("<", "lexical", "8.103", ""),
		features:      FeatureWebGL,
	}
	hw := linuxNvidiaHardware()

	hw.DriverVersion = "8.102"
	if !r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("lexical 8.102 (8.1.0.2) should be below lexical 8.103 (8.1.0.3)")
	}
	hw.DriverVersion = "8.17"
	if r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("lexical 8.17 (8.1.7) should be above lexical 8.103 (8.1.0.3)")
	}
}

func TestRuleMatchesDriverDate(t *testing.T) {
	r := &Rule{
		id:         7,
		driverDate: newVersionRange("<", "", "2010.1.1", ""),
		features:   FeatureWebGL,
	}
	hw := linuxNvidiaHardware() // driver date 07-14-2009

	if !r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("2009-07-14 should be before 2010-01-01")
	}
	hw.DriverDate = "01-01-2011"
	if r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("2011-01-01 should not be before 2010-01-01")
	}
	hw.DriverDate = "garbage"
	if r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("malformed date must fail the constraint closed")
	}
}

func TestRuleUnmeasuredPerformanceNeverMatches(t *testing.T) {
	ops := []struct {
		op    string
		value string
	}{
		{"<", "5.0"},
		{">", "0.0"},
		{"any", "0"},
	}
	for _, tt := range ops {
		t.Run(tt.op, func(t *testing.T) {
			r := &Rule{
				id:           8,
				perfGraphics: newFloatRange(tt.op, tt.value, ""),
				features:     FeatureWebGL,
			}
			hw := linuxNvidiaHardware()
			hw.PerfGraphics = 0.0
			if r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
				t.Errorf("op %q must not match an unmeasured score", tt.op)
			}
		})
	}
}

func TestRuleMeasuredPerformance(t *testing.T) {
	r := &Rule{
		id:           9,
		perfOverall:  newFloatRange("<", "4.0", ""),
		features:     FeatureWebGL,
	}
	hw := linuxNvidiaHardware() // overall 3.8
	if !r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("3.8 should satisfy < 4.0")
	}
	hw.PerfOverall = 4.5
	if r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("4.5 should not satisfy < 4.0")
	}
}

func TestRuleExceptionVeto(t *testing.T) {
	exception := &Rule{glRenderer: newStringMatch("contains", "GeForce")}
	r := &Rule{
		id:         10,
		vendorID:   0x10de,
		features:   FeatureWebGL,
		exceptions: []*Rule{exception},
	}
	hw := linuxNvidiaHardware()

	if r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("matching exception must veto the rule")
	}

	hw.GLRenderer = "NVIDIA Quadro FX"
	if !r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("non-matching exception must not veto the rule")
	}
}

func TestRuleNestedExceptions(t *testing.T) {
	// The inner exception vetoes the outer exception, which re-enables the
	// parent rule.
	inner := &Rule{driverVendor: newStringMatch("=", "nvidia")}
	outer := &Rule{
		glRenderer: newStringMatch("contains", "geforce"),
		exceptions: []*Rule{inner},
	}
	r := &Rule{
		id:         11,
		vendorID:   0x10de,
		features:   FeatureWebGL,
		exceptions: []*Rule{outer},
	}
	hw := linuxNvidiaHardware()

	if !r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("vetoed exception must not veto the parent")
	}

	hw.DriverVendor = "nouveau"
	if r.Matches(OsLinux, mustVersion(t, "2.6"), hw) {
		t.Error("live exception must veto the parent")
	}
}

func TestRuleEmptyMatchesEverything(t *testing.T) {
	r := &Rule{id: 12, features: FeatureAll}
	if !r.Matches(OsWindows, mustVersion(t, "6.1"), HardwareInfo{}) {
		t.Error("a rule without constraints must match any hardware")
	}
}
