package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetDeviceInfo(t *testing.T) {
	info := GetDeviceInfo()
	assert.NotEmpty(t, info.Brand)
	assert.Positive(t, info.GOMAXPROCS)
	assert.Contains(t, info.String(), "GOMAXPROCS=")
}

func TestDeviceInfoStringWithoutFeatures(t *testing.T) {
	info := DeviceInfo{Brand: "test-cpu", PhysicalCores: 2, LogicalCores: 4, GOMAXPROCS: 4}
	assert.Equal(t, "test-cpu (2 physical / 4 logical cores, GOMAXPROCS=4, features=none)", info.String())
}
