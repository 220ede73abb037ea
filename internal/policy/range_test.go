package policy

import "testing"

func mustVersion(t *testing.T, s string) Version {
	t.Helper()
	v, ok := ParseVersion(s)
	if !ok {
		t.Fatalf("ParseVersion(%q) failed", s)
	}
	return v
}

func TestVersionRangeContains(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		number  string
		number2 string
		probe   string
		want    bool
	}{
		{"eq exact", "=", "10.6.4", "", "10.6.4", true},
		{"eq mismatch", "=", "10.6.4", "", "10.6.5", false},
		{"eq bound prefix contains longer probe", "=", "10.6", "", "10.6.4", true},
		{"eq longer bound rejects shorter probe", "=", "10.6.4", "", "10.6", false},
		{"eq zero components match missing probe", "=", "10.6.0", "", "10.6", true},
		{"lt", "<", "8.103", "", "8.102", true},
		{"lt equal", "<", "8.103", "", "8.103", false},
		{"le equal", "<=", "8.103", "", "8.103", true},
		{"gt", ">", "8.103", "", "8.104", true},
		{"ge below", ">=", "8.103", "", "8.102", false},
		{"between inside", "between", "10.5", "10.7", "10.6", true},
		{"between lower bound", "between", "10.5", "10.7", "10.5", true},
		{"between upper bound", "between", "10.5", "10.7", "10.7", true},
		{"between outside", "between", "10.5", "10.7", "10.8", false},
		{"any", "any", "", "", "10.6", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newVersionRange(tt.op, "", tt.number, tt.number2)
			if !r.valid() {
				t.Fatalf("range {%s %s %s} unexpectedly invalid", tt.op, tt.number, tt.number2)
			}
			if got := r.Contains(mustVersion(t, tt.probe)); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.probe, got, tt.want)
			}
		})
	}
}

func TestVersionRangeInvalid(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		style   string
		number  string
		number2 string
	}{
		{"unknown op", "~", "", "10.6", ""},
		{"bad bound", "=", "", "ten.six", ""},
		{"between missing second bound", "between", "", "10.5", ""},
		{"between bad second bound", "between", "", "10.5", "x"},
		{"unknown style", "=", "decimal", "10.6", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newVersionRange(tt.op, tt.style, tt.number, tt.number2)
			if r.valid() {
				t.Fatal("expected invalid range")
			}
			if r.Contains(mustVersion(t, "10.6")) {
				t.Error("invalid range must not contain anything")
			}
		})
	}
}

func TestVersionRangeAnySkipsBounds(t *testing.T) {
	r := newVersionRange("any", "", "not-a-version", "")
	if !r.valid() {
		t.Fatal("any-range must be valid regardless of bounds")
	}
	if !r.Contains(mustVersion(t, "1")) {
		t.Error("any-range must contain everything")
	}
}

func TestVersionRangeLexical(t *testing.T) {
	// With lexical style the bound "8.103" reads as 8.1.0.3, so it sorts
	// below 8.2 instead of above it.
	r := newVersionRange("<", "lexical", "8.2", "")
	if !r.valid() {
		t.Fatal("lexical range unexpectedly invalid")
	}
	probe, _ := ParseVersion(numericalToLexical("8.103"))
	if !r.Contains(probe) {
		t.Error("lexical 8.103 (8.1.0.3) should be < lexical 8.2")
	}
	probe2, _ := ParseVersion(numericalToLexical("8.34"))
	if r.Contains(probe2) {
		t.Error("lexical 8.34 (8.3.4) should not be < lexical 8.2")
	}
}

func TestFloatRangeContains(t *testing.T) {
	tests := []struct {
		name   string
		op     string
		value  string
		value2 string
		probe  float32
		want   bool
	}{
		{"eq", "=", "3.5", "", 3.5, true},
		{"eq mismatch", "=", "3.5", "", 3.4, false},
		{"lt", "<", "5.0", "", 4.9, true},
		{"le", "<=", "5.0", "", 5.0, true},
		{"gt", ">", "5.0", "", 5.1, true},
		{"ge", ">=", "5.0", "", 4.9, false},
		{"between", "between", "1.0", "5.0", 3.0, true},
		{"between reversed bounds", "between", "5.0", "1.0", 3.0, true},
		{"between outside", "between", "1.0", "5.0", 6.0, false},
		{"any", "any", "0", "", 42.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFloatRange(tt.op, tt.value, tt.value2)
			if !r.valid() {
				t.Fatalf("range {%s %s %s} unexpectedly invalid", tt.op, tt.value, tt.value2)
			}
			if got := r.Contains(tt.probe); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.probe, got, tt.want)
			}
		})
	}
}

func TestFloatRangeInvalid(t *testing.T) {
	tests := []struct {
		name   string
		op     string
		value  string
		value2 string
	}{
		{"bad value", "=", "fast", ""},
		{"bad value even for any", "any", "", ""},
		{"unknown op", "~", "1.0", ""},
		{"between missing second", "between", "1.0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFloatRange(tt.op, tt.value, tt.value2)
			if r.valid() {
				t.Fatal("expected invalid range")
			}
			if r.Contains(1.0) {
				t.Error("invalid range must not contain anything")
			}
		})
	}
}
