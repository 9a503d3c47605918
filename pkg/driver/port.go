package driver

// PortStatus is the decoded port status used by display commands.
type PortStatus struct {
	Link       bool
	FullDuplex bool
	SpeedMbps  uint32
	MTU        uint32
	DefaultVID uint32
}

// SetPortMTU selects the smallest jumbo mode that fits mtu.
func (d *Dev) SetPortMTU(port Port, mtu uint32) Status {
	if st := d.checkPort(port); st != OK {
		return st
	}

	var mode uint16
	switch {
	case mtu == 0:
		return BadParam
	case mtu <= 1522:
		mode = jumbo1522
	case mtu <= 2048:
		mode = jumbo2048
	case mtu <= 10240:
		mode = jumbo10240
	default:
		return BadParam
	}
	if mode != jumbo1522 {
		if st := d.require(FeatureJumbo); st != OK {
			return st
		}
	}
	return d.writeField(uint8(port), regPortCtrl2, 12, 2, mode)
}

// GetPortMTU returns the frame size limit of the port's jumbo mode.
func (d *Dev) GetPortMTU(port Port) (uint32, Status) {
	if st := d.checkPort(port); st != OK {
		return 0, st
	}
	mode, st := d.readField(uint8(port), regPortCtrl2, 12, 2)
	if st != OK {
		return 0, st
	}
	switch mode {
	case jumbo2048:
		return 2048, OK
	case jumbo10240:
		return 10240, OK
	default:
		return 1522, OK
	}
}

// SetPortDefaultVID sets the port VID applied to untagged frames.
func (d *Dev) SetPortDefaultVID(port Port, vid uint16) Status {
	if st := d.checkPort(port); st != OK {
		return st
	}
	if vid > 0xFFF {
		return BadParam
	}
	return d.writeField(uint8(port), regPortDefVID, 0, 12, vid)
}

// GetPortDefaultVID returns the port default VID.
func (d *Dev) GetPortDefaultVID(port Port) (uint32, Status) {
	if st := d.checkPort(port); st != OK {
		return 0, st
	}
	v, st := d.readField(uint8(port), regPortDefVID, 0, 12)
	return uint32(v), st
}

// SetPortEtherType sets the EtherType the port matches for provider tags.
func (d *Dev) SetPortEtherType(port Port, etype uint16) Status {
	if st := d.checkPort(port); st != OK {
		return st
	}
	return d.write(uint8(port), regPortEType, etype)
}

// SetPortForwardUnknown controls egress flooding of unknown unicast.
func (d *Dev) SetPortForwardUnknown(port Port, en bool) Status {
	if st := d.checkPort(port); st != OK {
		return st
	}
	var v uint16
	if en {
		v = 1
	}
	return d.writeField(uint8(port), regPortCtrl, 2, 1, v)
}

// GetPortLinkState returns 1 when the link is up.
func (d *Dev) GetPortLinkState(port Port) (uint32, Status) {
	if st := d.checkPort(port); st != OK {
		return 0, st
	}
	v, st := d.readField(uint8(port), regPortStatus, 11, 1)
	return uint32(v), st
}

// GetPortStatus decodes the port status register plus MTU and default VID.
func (d *Dev) GetPortStatus(port Port) (PortStatus, Status) {
	var ps PortStatus
	if st := d.checkPort(port); st != OK {
		return ps, st
	}
	reg, st := d.read(uint8(port), regPortStatus)
	if st != OK {
		return ps, st
	}
	ps.Link = reg&(1<<11) != 0
	ps.FullDuplex = reg&(1<<10) != 0
	switch (reg >> 8) & 0x3 {
	case 0:
		ps.SpeedMbps = 10
	case 1:
		ps.SpeedMbps = 100
	case 2:
		ps.SpeedMbps = 1000
	case 3:
		ps.SpeedMbps = 10000
	}
	if ps.MTU, st = d.GetPortMTU(port); st != OK {
		return ps, st
	}
	if ps.DefaultVID, st = d.GetPortDefaultVID(port); st != OK {
		return ps, st
	}
	return ps, OK
}

// GetPortCounter reads a 64-bit MIB counter as (upper, lower) 32-bit halves.
func (d *Dev) GetPortCounter(port Port, counter uint32) (uint32, uint32, Status) {
	if st := d.checkPort(port); st != OK {
		return 0, 0, st
	}
	if counter > 0x1F {
		return 0, 0, BadParam
	}

	read := func(upper bool) (uint32, Status) {
		op := uint16(statsBusy|statsOpRead) | uint16(port)<<5 | uint16(counter)
		if upper {
			op |= statsUpperHalf
		}
		if st := d.write(global1Addr, regG1StatsOp, op); st != OK {
			return 0, st
		}
		busy, st := d.readField(global1Addr, regG1StatsOp, 15, 1)
		if st != OK {
			return 0, st
		}
		if busy != 0 {
			return 0, Fail
		}
		hi, st := d.read(global1Addr, regG1StatsHi)
		if st != OK {
			return 0, st
		}
		lo, st := d.read(global1Addr, regG1StatsLo)
		if st != OK {
			return 0, st
		}
		return uint32(hi)<<16 | uint32(lo), OK
	}

	upper, st := read(true)
	if st != OK {
		return 0, 0, st
	}
	lower, st := read(false)
	if st != OK {
		return 0, 0, st
	}
	return upper, lower, OK
}
