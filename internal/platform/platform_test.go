package platform

import "testing"

func TestSanitizeOSVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5.15.0-generic", "5.15.0"},
		{"10.6.4", "10.6.4"},
		{"6.1 SP1", "6.1"},
		{"", ""},
		{"beta", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeOSVersion(tt.in); got != tt.want {
				t.Errorf("SanitizeOSVersion(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOSVersion(t *testing.T) {
	v, ok := OSVersion("5.15.0-58-generic")
	if !ok {
		t.Fatal("expected parseable version")
	}
	if v.String() != "5.15.0" {
		t.Errorf("OSVersion = %s, want 5.15.0", v)
	}

	if _, ok := OSVersion("unknown"); ok {
		t.Error("unparseable version string must not parse")
	}
}

func TestCurrentIsConcrete(t *testing.T) {
	// Whatever the build platform, Current must never report "any".
	if got := Current(); got.String() == "any" {
		t.Errorf("Current() = %v, must be a concrete OS or unknown", got)
	}
}
