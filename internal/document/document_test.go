package document

import (
	"errors"
	"testing"

	"github.com/dstepanov/hwpolicy/internal/policy"
)

const validDoc = `{
  "version": "1.0",
  "entries": [
    {"id": 1, "vendor_id": "0x10de", "blacklist": ["webgl"]}
  ]
}`

func TestBuild(t *testing.T) {
	set, err := Build([]byte(validDoc), BuildOptions{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if set.NumRules() != 1 {
		t.Errorf("NumRules() = %d, want 1", set.NumRules())
	}
	if set.FormatVersion() != "1.0" {
		t.Errorf("FormatVersion() = %q, want %q", set.FormatVersion(), "1.0")
	}
}

func TestBuildInvalidJSON(t *testing.T) {
	_, err := Build([]byte(`{"version": `), BuildOptions{})
	if !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("error = %v, want ErrInvalidJSON", err)
	}
}

func TestBuildMalformedDocument(t *testing.T) {
	_, err := Build([]byte(`{"version": "1.0"}`), BuildOptions{})
	if !errors.Is(err, policy.ErrMalformedDocument) {
		t.Errorf("error = %v, want policy.ErrMalformedDocument", err)
	}
}

func TestBuildUnsupportedFormat(t *testing.T) {
	doc := `{"version": "9.0", "entries": []}`
	_, err := Build([]byte(doc), BuildOptions{})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}
