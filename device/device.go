package device

import (
	"fmt"
	"regexp"
)

type DeviceType uint8

// Supported device types.
const (
	CpuDevice   DeviceType = 1 << iota
	OtherDevice            = 1 << iota
	AllDevices             = 0xFF
)

var (
	indentRegex = regexp.MustCompile("(?m)^")
)

func (dt DeviceType) String() string {
	switch dt {
	case CpuDevice:
		return "CPU"
	case OtherDevice:
		return "Other"
	}
	panic("device: unsupported device type")
}

// A compute device that tracers can run on.
type Device struct {
	Name string
	Id   int
	Type DeviceType

	compUnits  uint32
	clockSpeed uint32

	// Speed estimate in GFlops.
	Speed uint32
}

// A list of devices.
type DeviceList []*Device

// Implements Stringer.
func (d Device) String() string {
	return fmt.Sprintf(
		"Name: %s\nType: %s\nSpecs: %d computation units, %d Mhz clock, %d GFlops approximate speed",
		d.Name,
		d.Type.String(),
		d.compUnits,
		d.clockSpeed,
		d.Speed,
	)
}

// Get the number of computation units (cores) of this device.
func (d *Device) ComputeUnits() uint32 {
	return d.compUnits
}

// Get the device clock speed in Mhz.
func (d *Device) ClockSpeed() uint32 {
	return d.clockSpeed
}

// Split the device into n virtual devices that share its computation units.
// Each partition receives at least one computation unit and a proportional
// share of the speed estimate. If n < 2 the device itself is returned.
func (d *Device) Partition(n int) DeviceList {
	if n < 2 {
		return DeviceList{d}
	}

	list := make(DeviceList, n)
	remaining := d.compUnits
	for idx := 0; idx < n; idx++ {
		units := remaining / uint32(n-idx)
		if units == 0 {
			units = 1
		}
		if remaining >= units {
			remaining -= units
		}

		part := &Device{
			Name:       fmt.Sprintf("%s #%d", d.Name, idx),
			Id:         d.Id,
			Type:       d.Type,
			compUnits:  units,
			clockSpeed: d.clockSpeed,
		}
		part.detectSpeed()
		list[idx] = part
	}

	return list
}

// Calculate theoretical device speed as: compute units * 2ops/cycle * clock speed.
func (d *Device) detectSpeed() {
	d.Speed = 2 * d.compUnits * d.clockSpeed / 1000
	if d.Speed == 0 {
		d.Speed = 1
	}
}
