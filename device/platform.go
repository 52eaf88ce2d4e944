package device

import (
	"bytes"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// Information about the host platform and the devices it exposes.
type PlatformInfo struct {
	Name    string
	Vendor  string
	Version string

	// Total physical memory in bytes.
	TotalMemory uint64

	Devices DeviceList
}

func (pl PlatformInfo) String() string {
	var buf bytes.Buffer

	buf.WriteString(
		fmt.Sprintf(
			"Version:    %s\nName:       %s\nVendor:     %s\nMemory:     %d MB\nDevices:\n",
			pl.Version,
			pl.Name,
			pl.Vendor,
			pl.TotalMemory>>20,
		),
	)

	for dIdx, d := range pl.Devices {
		buf.WriteString(fmt.Sprintf("  Device %02d:\n", dIdx))
		buf.WriteString(indentRegex.ReplaceAllString(d.String(), "    "))
		buf.WriteString("\n\n")
	}

	return buf.String()
}

// Get information about the host platform and its CPU devices. Each
// physical CPU package is reported as a separate device.
func GetPlatformInfo() ([]PlatformInfo, error) {
	cpus, err := cpu.Info()
	if err != nil {
		return nil, fmt.Errorf("device: could not query cpu info: %v", err)
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("device: could not query memory info: %v", err)
	}

	return []PlatformInfo{newPlatformInfo(cpus, vm.Total, runtime.NumCPU())}, nil
}

// Group cpu info entries by physical package. Some platforms report one
// entry per logical core while others report one entry per package with a
// core count; both are handled. If no entries are available a generic
// device with numCPU cores is reported.
func newPlatformInfo(cpus []cpu.InfoStat, totalMemory uint64, numCPU int) PlatformInfo {
	info := PlatformInfo{
		Name:        "CPU",
		Version:     fmt.Sprintf("%s/%s %s", runtime.GOOS, runtime.GOARCH, runtime.Version()),
		TotalMemory: totalMemory,
		Devices:     make(DeviceList, 0),
	}

	if len(cpus) == 0 {
		dev := &Device{
			Name:      "Generic CPU",
			Type:      CpuDevice,
			compUnits: uint32(numCPU),
		}
		dev.detectSpeed()
		info.Devices = append(info.Devices, dev)
		return info
	}

	info.Vendor = cpus[0].VendorID

	devByPackage := make(map[string]*Device)
	packageIds := make([]string, 0)
	for _, stat := range cpus {
		dev, exists := devByPackage[stat.PhysicalID]
		if !exists {
			dev = &Device{
				Name:       strings.TrimSpace(stat.ModelName),
				Type:       CpuDevice,
				clockSpeed: uint32(stat.Mhz),
			}
			if dev.Name == "" {
				dev.Name = "Generic CPU"
			}
			devByPackage[stat.PhysicalID] = dev
			packageIds = append(packageIds, stat.PhysicalID)
		}

		// Per-core entries report Cores=1
		if stat.Cores > 0 {
			dev.compUnits += uint32(stat.Cores)
		} else {
			dev.compUnits++
		}
		if mhz := uint32(stat.Mhz); mhz > dev.clockSpeed {
			dev.clockSpeed = mhz
		}
	}

	sort.Strings(packageIds)
	for idx, id := range packageIds {
		dev := devByPackage[id]
		dev.Id = idx
		dev.detectSpeed()
		info.Devices = append(info.Devices, dev)
	}

	return info
}

// Scan the host platform and select devices that match the given query.
func SelectDevices(typeMask DeviceType, matchName string) (DeviceList, error) {
	platforms, err := GetPlatformInfo()
	if err != nil {
		return nil, err
	}
	return filterDevices(platforms, typeMask, matchName), nil
}

func filterDevices(platforms []PlatformInfo, typeMask DeviceType, matchName string) DeviceList {
	list := make(DeviceList, 0)
	for _, p := range platforms {
		for _, d := range p.Devices {
			// Match type
			if d.Type&typeMask != d.Type {
				continue
			}

			// Match name
			if matchName != "" && !strings.Contains(d.Name, matchName) {
				continue
			}

			list = append(list, d)
		}
	}
	return list
}
