package policy

import (
	"testing"
)

const blockDoc = `{
  "version": "1.1",
  "entries": [
    {
      "id": 1,
      "os": {"type": "linux"},
      "vendor_id": "0x10de",
      "blacklist": ["webgl"]
    },
    {
      "id": 2,
      "os": {"type": "linux"},
      "vendor_id": "0x10de",
      "blacklist": ["accelerated_compositing"]
    },
    {
      "id": 3,
      "disabled": true,
      "os": {"type": "linux"},
      "vendor_id": "0x10de",
      "blacklist": ["multisampling"]
    },
    {
      "id": 4,
      "os": {"type": "win"},
      "blacklist": ["all"]
    }
  ]
}`

func loadSet(t *testing.T, doc string) *Set {
	t.Helper()
	set, err := Load(parseDoc(t, doc), LoadOptions{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return set
}

func TestSetEvaluateAggregatesFeatures(t *testing.T) {
	set := loadSet(t, blockDoc)
	hw := linuxNvidiaHardware()

	d := set.Evaluate(OsLinux, mustVersion(t, "2.6"), hw)
	want := FeatureWebGL | FeatureAcceleratedCompositing
	if d.Features() != want {
		t.Errorf("Features() = %#x, want %#x", d.Features(), want)
	}

	// Rule 3 matches but is disabled: active, no feature contribution.
	ids := d.ActiveIDs()
	wantIDs := []uint32{1, 2, 3}
	if len(ids) != len(wantIDs) {
		t.Fatalf("ActiveIDs() = %v, want %v", ids, wantIDs)
	}
	for i := range ids {
		if ids[i] != wantIDs[i] {
			t.Errorf("ActiveIDs()[%d] = %d, want %d (load order preserved)", i, ids[i], wantIDs[i])
		}
	}
}

func TestSetEvaluateNoMatch(t *testing.T) {
	set := loadSet(t, blockDoc)
	hw := linuxNvidiaHardware()
	hw.VendorID = 0x1002

	d := set.Evaluate(OsLinux, mustVersion(t, "2.6"), hw)
	if d.Features() != 0 {
		t.Errorf("Features() = %#x, want 0", d.Features())
	}
	if len(d.ActiveIDs()) != 0 {
		t.Errorf("ActiveIDs() = %v, want empty", d.ActiveIDs())
	}
}

func TestSetEvaluateOtherOs(t *testing.T) {
	set := loadSet(t, blockDoc)
	d := set.Evaluate(OsWindows, mustVersion(t, "6.1"), HardwareInfo{})
	if d.Features() != FeatureAll {
		t.Errorf("Features() = %#x, want all bits", d.Features())
	}
}

func TestDecisionIDsFor(t *testing.T) {
	set := loadSet(t, blockDoc)
	d := set.Evaluate(OsLinux, mustVersion(t, "2.6"), linuxNvidiaHardware())

	ids := d.IDsFor(FeatureWebGL, false)
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("IDsFor(webgl, enabled) = %v, want [1]", ids)
	}

	ids = d.IDsFor(FeatureMultisampling, true)
	if len(ids) != 1 || ids[0] != 3 {
		t.Errorf("IDsFor(multisampling, disabled) = %v, want [3]", ids)
	}

	if ids := d.IDsFor(FeatureFlash3D, false); len(ids) != 0 {
		t.Errorf("IDsFor(flash_3d, enabled) = %v, want empty", ids)
	}
}

func TestDecisionProblems(t *testing.T) {
	doc := `{
	  "version": "1.0",
	  "entries": [
	    {
	      "id": 1,
	      "description": "crashes the driver",
	      "cr_bugs": [10, 20],
	      "webkit_bugs": [30],
	      "blacklist": ["webgl"]
	    },
	    {"id": 2, "disabled": true, "blacklist": ["webgl"]}
	  ]
	}`
	set := loadSet(t, doc)
	d := set.Evaluate(OsLinux, mustVersion(t, "2.6"), HardwareInfo{})

	problems := d.Problems()
	if len(problems) != 1 {
		t.Fatalf("Problems() returned %d entries, want 1 (disabled rules excluded)", len(problems))
	}
	p := problems[0]
	if p.ID != 1 || p.Description != "crashes the driver" {
		t.Errorf("unexpected problem %+v", p)
	}
	if len(p.CrBugs) != 2 || len(p.WebkitBugs) != 1 {
		t.Errorf("bug lists = %v / %v, want 2 / 1 entries", p.CrBugs, p.WebkitBugs)
	}
}

func TestSetConcurrentEvaluate(t *testing.T) {
	set := loadSet(t, blockDoc)
	hw := linuxNvidiaHardware()
	osVersion := mustVersion(t, "2.6")

	done := make(chan Decision)
	for i := 0; i < 8; i++ {
		go func() {
			done <- set.Evaluate(OsLinux, osVersion, hw)
		}()
	}
	want := FeatureWebGL | FeatureAcceleratedCompositing
	for i := 0; i < 8; i++ {
		d := <-done
		if d.Features() != want {
			t.Errorf("concurrent Features() = %#x, want %#x", d.Features(), want)
		}
		if len(d.ActiveIDs()) != 3 {
			t.Errorf("concurrent ActiveIDs() = %v, want 3 ids", d.ActiveIDs())
		}
	}
}

func TestEndToEndVendorScenario(t *testing.T) {
	doc := `{
	  "version": "1.0",
	  "entries": [
	    {"id": 1, "os": {"type": "linux"}, "vendor_id": "0x10de", "blacklist": ["webgl"]}
	  ]
	}`
	set := loadSet(t, doc)

	d := set.Evaluate(OsLinux, mustVersion(t, "2.6"), HardwareInfo{VendorID: 0x10de})
	if d.Features() != FeatureWebGL {
		t.Errorf("Features() = %#x, want webgl bit", d.Features())
	}
	if ids := d.ActiveIDs(); len(ids) != 1 || ids[0] != 1 {
		t.Errorf("ActiveIDs() = %v, want [1]", ids)
	}

	d = set.Evaluate(OsLinux, mustVersion(t, "2.6"), HardwareInfo{VendorID: 0x1002})
	if d.Features() != 0 || len(d.ActiveIDs()) != 0 {
		t.Errorf("other vendor: got mask %#x, ids %v, want empty", d.Features(), d.ActiveIDs())
	}
}

func TestEndToEndUnmeasuredPerformance(t *testing.T) {
	doc := `{
	  "version": "1.0",
	  "entries": [
	    {"id": 1, "perf_graphics": {"op": "<", "value": "5.0"}, "blacklist": ["webgl"]}
	  ]
	}`
	set := loadSet(t, doc)

	d := set.Evaluate(OsLinux, mustVersion(t, "2.6"), HardwareInfo{PerfGraphics: 0.0})
	if d.Features() != 0 {
		t.Errorf("unmeasured score matched: mask %#x", d.Features())
	}

	d = set.Evaluate(OsLinux, mustVersion(t, "2.6"), HardwareInfo{PerfGraphics: 3.0})
	if d.Features() != FeatureWebGL {
		t.Errorf("measured score below threshold should match, mask %#x", d.Features())
	}
}

func TestFeatureSetNames(t *testing.T) {
	names := DefaultFeatures.Names(FeatureWebGL | FeatureMultisampling)
	want := []string{"multisampling", "webgl"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range names {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	all := DefaultFeatures.Names(FeatureAll)
	found := false
	for _, n := range all {
		if n == "all" {
			found = true
		}
	}
	if !found {
		t.Error(`Names(FeatureAll) should include "all"`)
	}
}
