package engine

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// DeviceInfo describes the CPU the engine runs on.
type DeviceInfo struct {
	Brand         string   `json:"brand"`
	Vendor        string   `json:"vendor"`
	PhysicalCores int      `json:"physical_cores"`
	LogicalCores  int      `json:"logical_cores"`
	GOMAXPROCS    int      `json:"gomaxprocs"`
	Features      []string `json:"features"`
}

// Vector extensions worth reporting; gonum's assembly kernels pick them up
// on amd64 and arm64.
var reportedFeatures = []cpuid.FeatureID{
	cpuid.SSE2,
	cpuid.SSE4,
	cpuid.AVX,
	cpuid.AVX2,
	cpuid.FMA3,
	cpuid.AVX512F,
	cpuid.ASIMD,
}

// GetDeviceInfo queries the host CPU.
func GetDeviceInfo() DeviceInfo {
	info := DeviceInfo{
		Brand:         cpuid.CPU.BrandName,
		Vendor:        cpuid.CPU.VendorString,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
		GOMAXPROCS:    runtime.GOMAXPROCS(0),
	}
	if info.Brand == "" {
		info.Brand = runtime.GOARCH
	}
	for _, f := range reportedFeatures {
		if cpuid.CPU.Supports(f) {
			info.Features = append(info.Features, f.String())
		}
	}
	return info
}

func (d DeviceInfo) String() string {
	features := "none"
	if len(d.Features) > 0 {
		features = strings.Join(d.Features, ",")
	}
	return fmt.Sprintf("%s (%d physical / %d logical cores, GOMAXPROCS=%d, features=%s)",
		d.Brand, d.PhysicalCores, d.LogicalCores, d.GOMAXPROCS, features)
}
