package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dstepanov/hwpolicy/internal/platform"
	"github.com/dstepanov/hwpolicy/internal/policy"
	"github.com/dstepanov/hwpolicy/internal/snapshot"
	"github.com/dstepanov/hwpolicy/internal/telemetry"
)

// evaluateRequest represents the request body for POST /v1/evaluate
type evaluateRequest struct {
	Platform *evaluatePlatform `json:"platform,omitempty"`
	Hardware evaluateHardware  `json:"hardware"`
}

// evaluatePlatform overrides the host platform. When absent, the serving
// host's OS is used with no version constraint.
type evaluatePlatform struct {
	Os        string `json:"os"`
	OsVersion string `json:"osVersion,omitempty"`
}

// evaluateHardware mirrors policy.HardwareInfo with PCI ids as hex strings.
type evaluateHardware struct {
	VendorID      string  `json:"vendorId,omitempty"`
	DeviceID      string  `json:"deviceId,omitempty"`
	DriverVendor  string  `json:"driverVendor,omitempty"`
	DriverVersion string  `json:"driverVersion,omitempty"`
	DriverDate    string  `json:"driverDate,omitempty"`
	GLVendor      string  `json:"glVendor,omitempty"`
	GLRenderer    string  `json:"glRenderer,omitempty"`
	Optimus       bool    `json:"optimus,omitempty"`
	AmdSwitchable bool    `json:"amdSwitchable,omitempty"`
	PerfGraphics  float32 `json:"perfGraphics,omitempty"`
	PerfGaming    float32 `json:"perfGaming,omitempty"`
	PerfOverall   float32 `json:"perfOverall,omitempty"`
}

// evaluateResponse represents the response for POST /v1/evaluate
type evaluateResponse struct {
	EvaluationID string           `json:"evaluationId"`
	Features     []string         `json:"features"`
	ActiveIDs    []uint32         `json:"activeIds"`
	Problems     []policy.Problem `json:"problems"`
	ETag         string           `json:"etag"`
	EvaluatedAt  string           `json:"evaluatedAt"`
}

// handleEvaluate handles POST /v1/evaluate
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	snap := snapshot.Load()
	if snap == nil {
		NotFoundError(w, r, "no policy loaded")
		return
	}

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid JSON")
		return
	}

	os, osVersion, fields := resolvePlatform(req.Platform)
	hw, hwFields := buildHardwareInfo(req.Hardware)
	for k, v := range hwFields {
		fields[k] = v
	}
	if len(fields) > 0 {
		ValidationError(w, r, "invalid evaluation request", fields)
		return
	}

	decision := snap.Set.Evaluate(os, osVersion, hw)

	matched := "false"
	if len(decision.ActiveIDs()) > 0 {
		matched = "true"
	}
	telemetry.Evaluations.WithLabelValues(matched).Inc()

	features := s.features.Names(decision.Features())
	if features == nil {
		features = []string{}
	}
	problems := decision.Problems()
	if problems == nil {
		problems = []policy.Problem{}
	}

	writeJSON(w, http.StatusOK, evaluateResponse{
		EvaluationID: uuid.NewString(),
		Features:     features,
		ActiveIDs:    decision.ActiveIDs(),
		Problems:     problems,
		ETag:         snap.ETag,
		EvaluatedAt:  time.Now().UTC().Format(time.RFC3339),
	})
}

// resolvePlatform turns the optional platform override into a concrete OS
// type and version. Collected problems come back as field errors.
func resolvePlatform(p *evaluatePlatform) (policy.OsType, policy.Version, map[string]string) {
	fields := make(map[string]string)

	if p == nil {
		return platform.Current(), nil, fields
	}

	os := policy.ParseOsType(p.Os)
	switch os {
	case policy.OsUnknown:
		fields["platform.os"] = "unrecognized OS type"
	case policy.OsAny:
		fields["platform.os"] = "evaluation requires a concrete OS, not 'any'"
	}

	var osVersion policy.Version
	if p.OsVersion != "" {
		v, ok := platform.OSVersion(p.OsVersion)
		if !ok {
			fields["platform.osVersion"] = "unparseable version string"
		}
		osVersion = v
	}
	return os, osVersion, fields
}

// buildHardwareInfo converts the wire hardware description, parsing PCI ids
// from hex strings.
func buildHardwareInfo(h evaluateHardware) (policy.HardwareInfo, map[string]string) {
	fields := make(map[string]string)

	var vendorID, deviceID uint32
	if h.VendorID != "" {
		id, ok := policy.ParseHexID(h.VendorID)
		if !ok {
			fields["hardware.vendorId"] = "must be a hex PCI id like 0x10de"
		}
		vendorID = id
	}
	if h.DeviceID != "" {
		id, ok := policy.ParseHexID(h.DeviceID)
		if !ok {
			fields["hardware.deviceId"] = "must be a hex PCI id like 0x0640"
		}
		deviceID = id
	}

	return policy.HardwareInfo{
		VendorID:      vendorID,
		DeviceID:      deviceID,
		DriverVendor:  h.DriverVendor,
		DriverVersion: h.DriverVersion,
		DriverDate:    h.DriverDate,
		GLVendor:      h.GLVendor,
		GLRenderer:    h.GLRenderer,
		Optimus:       h.Optimus,
		AmdSwitchable: h.AmdSwitchable,
		PerfGraphics:  h.PerfGraphics,
		PerfGaming:    h.PerfGaming,
		PerfOverall:   h.PerfOverall,
	}, fields
}
