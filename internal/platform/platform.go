// Package platform resolves the "current platform unspecified" inputs the
// policy engine refuses to guess at: the running OS type and a best-effort
// parse of the OS version string.
package platform

import (
	"runtime"
	"strings"

	"github.com/dstepanov/hwpolicy/internal/policy"
)

// Current maps runtime.GOOS to the policy OS type.
func Current() policy.OsType {
	switch runtime.GOOS {
	case "windows":
		return policy.OsWindows
	case "darwin":
		return policy.OsMacOSX
	case "linux", "openbsd":
		return policy.OsLinux
	default:
		return policy.OsUnknown
	}
}

// SanitizeOSVersion truncates a raw OS version string at the first character
// that is neither a digit nor a dot. Kernel strings like "5.15.0-generic"
// become "5.15.0".
func SanitizeOSVersion(s string) string {
	if i := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	}); i >= 0 {
		return s[:i]
	}
	return s
}

// OSVersion sanitizes and parses a raw OS version string.
func OSVersion(raw string) (policy.Version, bool) {
	return policy.ParseVersion(SanitizeOSVersion(raw))
}
