// Package driver is the switch driver layer the shell calls into. Register
// access goes through a Transport (SMI or RMU in hardware, SimBus in this
// repository); address tables (ATU, VTU, TCAM) are modelled in memory.
package driver

import (
	"fmt"
	"strings"
)

// Bus is the management interface used to reach the switch.
type Bus int

const (
	BusSMI Bus = iota
	BusSMIMultiChip
	BusRMU
)

func (b Bus) String() string {
	switch b {
	case BusSMI:
		return "SMI"
	case BusSMIMultiChip:
		return "SMI_MULTICHIP"
	case BusRMU:
		return "RMU"
	default:
		return "unknown"
	}
}

// ParseBus accepts the names printed by Bus.String.
func ParseBus(s string) (Bus, bool) {
	switch strings.ToUpper(s) {
	case "SMI", "":
		return BusSMI, true
	case "SMI_MULTICHIP":
		return BusSMIMultiChip, true
	case "RMU":
		return BusRMU, true
	}
	return 0, false
}

// Transport reads and writes 16-bit switch registers.
type Transport interface {
	// ReadRegister reads regAddr of the device at devAddr
	ReadRegister(devAddr, regAddr uint8) (uint16, error)

	// WriteRegister writes data to regAddr of the device at devAddr
	WriteRegister(devAddr, regAddr uint8, data uint16) error
}

// Info describes the device a Dev talks to.
type Info struct {
	Family Family
	Bus    Bus
	// BaseAddr is the chip's SMI address in multi-chip mode. The transport
	// applies it; register offsets used here are always chip-relative.
	BaseAddr uint8
}

// Port is a logical switch port number.
type Port uint32

// MAC is a 6-byte Ethernet address.
type MAC [6]byte

func (m MAC) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// Dev is a device handle. It is not safe for concurrent use; the shell
// owns it from a single goroutine.
type Dev struct {
	info Info
	bus  Transport

	atu  map[atuKey]ATUEntry
	vtu  map[uint32]VTUEntry
	tcam map[uint32]TCAMEntry

	ptpEnabled bool
}

// New creates a device handle over bus.
func New(info Info, bus Transport) *Dev {
	return &Dev{
		info: info,
		bus:  bus,
		atu:  make(map[atuKey]ATUEntry),
		vtu:  make(map[uint32]VTUEntry),
		tcam: make(map[uint32]TCAMEntry),
	}
}

// NewSim creates a device handle backed by a fresh SimBus.
func NewSim(fam Family) *Dev {
	return New(Info{Family: fam, Bus: BusSMI}, NewSimBus(fam))
}

func (d *Dev) Info() Info { return d.info }
func (d *Dev) Ports() int { return d.info.Family.Ports }

// Transport returns the underlying register transport.
func (d *Dev) Transport() Transport { return d.bus }

// ReadRegister reads a raw register.
func (d *Dev) ReadRegister(devAddr, regAddr uint32) (uint32, Status) {
	if devAddr > 0x1F || regAddr > 0x1F {
		return 0, BadParam
	}
	v, err := d.bus.ReadRegister(uint8(devAddr), uint8(regAddr))
	if err != nil {
		return 0, Fail
	}
	return uint32(v), OK
}

// WriteRegister writes a raw register.
func (d *Dev) WriteRegister(devAddr, regAddr, data uint32) Status {
	if devAddr > 0x1F || regAddr > 0x1F || data > 0xFFFF {
		return BadParam
	}
	if err := d.bus.WriteRegister(uint8(devAddr), uint8(regAddr), uint16(data)); err != nil {
		return Fail
	}
	return OK
}

func (d *Dev) read(devAddr, regAddr uint8) (uint16, Status) {
	v, err := d.bus.ReadRegister(devAddr, regAddr)
	if err != nil {
		return 0, Fail
	}
	return v, OK
}

func (d *Dev) write(devAddr, regAddr uint8, data uint16) Status {
	if err := d.bus.WriteRegister(devAddr, regAddr, data); err != nil {
		return Fail
	}
	return OK
}

// readField returns size bits of a register starting at offset.
func (d *Dev) readField(devAddr, regAddr uint8, offset, size uint) (uint16, Status) {
	v, st := d.read(devAddr, regAddr)
	if st != OK {
		return 0, st
	}
	mask := uint16(1)<<size - 1
	return (v >> offset) & mask, OK
}

// writeField does a read-modify-write of size bits starting at offset.
func (d *Dev) writeField(devAddr, regAddr uint8, offset, size uint, val uint16) Status {
	v, st := d.read(devAddr, regAddr)
	if st != OK {
		return st
	}
	mask := (uint16(1)<<size - 1) << offset
	v = v&^mask | (val<<offset)&mask
	return d.write(devAddr, regAddr, v)
}

func (d *Dev) checkPort(p Port) Status {
	if int(p) >= d.Ports() {
		return BadParam
	}
	return OK
}

func (d *Dev) require(f Feature) Status {
	if !d.info.Family.Has(f) {
		return NotSupported
	}
	return OK
}

// portVecMask folds a per-port 0/1 array into a bitmask.
func (d *Dev) portVecMask(vec []uint32) (uint32, Status) {
	if len(vec) > d.Ports() {
		return 0, BadParam
	}
	var mask uint32
	for i, v := range vec {
		if v != 0 {
			mask |= 1 << uint(i)
		}
	}
	return mask, OK
}
