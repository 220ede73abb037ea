package policy

import "sort"

// FeatureMask is a set of hardware capability bits a rule can disable. The
// engine treats individual bit semantics as caller-defined; it only unions
// masks across matching rules.
type FeatureMask uint32

const (
	FeatureAccelerated2DCanvas FeatureMask = 1 << iota
	FeatureAcceleratedCompositing
	FeatureWebGL
	FeatureMultisampling
	FeatureFlash3D
	FeatureFlashStage3D
)

// FeatureAll covers every known capability bit.
const FeatureAll = FeatureAccelerated2DCanvas | FeatureAcceleratedCompositing |
	FeatureWebGL | FeatureMultisampling | FeatureFlash3D | FeatureFlashStage3D

// FeatureSet maps rule document feature names to capability bits. Names not
// present in the set are recorded as unknown at load time and ignored for the
// mask, which keeps newer documents loadable by older engines.
type FeatureSet map[string]FeatureMask

// DefaultFeatures is the registry of feature names the engine ships with.
// Callers may supply their own set through LoadOptions instead.
var DefaultFeatures = FeatureSet{
	"accelerated_2d_canvas":   FeatureAccelerated2DCanvas,
	"accelerated_compositing": FeatureAcceleratedCompositing,
	"webgl":                   FeatureWebGL,
	"multisampling":           FeatureMultisampling,
	"flash_3d":                FeatureFlash3D,
	"flash_stage3d":           FeatureFlashStage3D,
	"all":                     FeatureAll,
}

// Names returns the sorted feature names whose bits are fully covered by
// mask. Composite names (such as "all") only appear when every one of their
// bits is present.
func (fs FeatureSet) Names(mask FeatureMask) []string {
	var names []string
	for name, bits := range fs {
		if bits != 0 && bits&^mask == 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
