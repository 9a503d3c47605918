package driver

import (
	"sort"

	"github.com/akam1o/mcli/pkg/cmdkey"
)

// Feature is a capability bit of a chip family.
type Feature uint32

const (
	FeatureATU Feature = 1 << iota
	FeatureVTU
	FeatureTrunk
	FeatureQoS
	FeatureLED
	FeatureTCAM
	FeatureTCAMv6
	FeaturePTP
	FeatureSemaphore
	FeatureJumbo
)

const baseFeatures = FeatureATU | FeatureVTU | FeatureTrunk | FeatureQoS | FeatureLED

// Family describes one chip family known to the simulator.
type Family struct {
	Name     string
	DeviceID uint16
	Ports    int
	// Metadata is the help document file name for this family.
	Metadata string
	Features Feature
}

// Has reports whether the family supports f.
func (f Family) Has(feat Feature) bool { return f.Features&feat == feat }

var families = []Family{
	{
		Name: "BonsaiZ1", DeviceID: 0x0A10, Ports: 11, Metadata: "BonsaiZ1.json",
		Features: baseFeatures | FeatureTCAM | FeatureTCAMv6 | FeaturePTP | FeatureSemaphore | FeatureJumbo,
	},
	{
		Name: "Bonsai", DeviceID: 0x0A00, Ports: 11, Metadata: "BonsaiZ1.json",
		Features: baseFeatures | FeatureTCAM | FeaturePTP | FeatureSemaphore | FeatureJumbo,
	},
	{
		Name: "Peridot", DeviceID: 0x0990, Ports: 11, Metadata: "BonsaiZ1.json",
		Features: baseFeatures | FeatureTCAM | FeatureTCAMv6 | FeaturePTP | FeatureJumbo,
	},
	{
		Name: "Topaz", DeviceID: 0x0320, Ports: 7, Metadata: "Topaz.json",
		Features: baseFeatures,
	},
}

// LookupFamily finds a family by name, case-insensitively.
func LookupFamily(name string) (Family, bool) {
	for _, f := range families {
		if cmdkey.Equal(f.Name, name) {
			return f, true
		}
	}
	return Family{}, false
}

// FamilyByID finds a family by device ID.
func FamilyByID(id uint16) (Family, bool) {
	for _, f := range families {
		if f.DeviceID == id {
			return f, true
		}
	}
	return Family{}, false
}

// Families returns the supported family names in sorted order.
func Families() []string {
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}
