package policy

import (
	"strconv"
	"strings"
)

// HardwareInfo describes the GPU, driver and measured performance of the
// machine under evaluation. It is read-only to the engine. A performance
// score of 0.0 means "not measured" and never satisfies a performance
// constraint.
type HardwareInfo struct {
	VendorID      uint32
	DeviceID      uint32
	DriverVendor  string
	DriverVersion string
	DriverDate    string
	GLVendor      string
	GLRenderer    string
	Optimus       bool
	AmdSwitchable bool
	PerfGraphics  float32
	PerfGaming    float32
	PerfOverall   float32
}

// multiGpuStyle is the dual-GPU configuration a rule can require.
type multiGpuStyle int

const (
	multiGpuNone multiGpuStyle = iota
	multiGpuOptimus
	multiGpuAmdSwitchable
)

func parseMultiGpuStyle(s string) multiGpuStyle {
	switch s {
	case "optimus":
		return multiGpuOptimus
	case "amd_switchable":
		return multiGpuAmdSwitchable
	}
	return multiGpuNone
}

// ParseHexID parses a PCI vendor or device id given as a hex string, with or
// without a "0x" prefix.
func ParseHexID(s string) (uint32, bool) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}
