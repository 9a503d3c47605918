package driver

// SetLEDMode sets the 4-bit mode of LED led on port.
func (d *Dev) SetLEDMode(port Port, led, mode uint32) Status {
	if st := d.require(FeatureLED); st != OK {
		return st
	}
	if st := d.checkPort(port); st != OK {
		return st
	}
	if led > 3 || mode > 0xF {
		return BadParam
	}
	return d.writeField(uint8(port), regPortLED, uint(led)*4, 4, uint16(mode))
}

// GetLEDMode returns the mode of LED led on port.
func (d *Dev) GetLEDMode(port Port, led uint32) (uint32, Status) {
	if st := d.require(FeatureLED); st != OK {
		return 0, st
	}
	if st := d.checkPort(port); st != OK {
		return 0, st
	}
	if led > 3 {
		return 0, BadParam
	}
	v, st := d.readField(uint8(port), regPortLED, uint(led)*4, 4)
	return uint32(v), st
}

// SetQueueWeights programs the weighted round robin weights of the four
// egress queues of port.
func (d *Dev) SetQueueWeights(port Port, w0, w1, w2, w3 uint32) Status {
	if st := d.require(FeatureQoS); st != OK {
		return st
	}
	if st := d.checkPort(port); st != OK {
		return st
	}
	for i, w := range [4]uint32{w0, w1, w2, w3} {
		if w > 0xFF {
			return BadParam
		}
		if st := d.writeField(uint8(port), regPortQueueW0+uint8(i), 0, 8, uint16(w)); st != OK {
			return st
		}
	}
	return OK
}

// SetTrunkMask writes trunk mask maskNum. mask holds one 0/1 entry per port.
func (d *Dev) SetTrunkMask(maskNum uint32, mask []uint32, hash bool) Status {
	if st := d.require(FeatureTrunk); st != OK {
		return st
	}
	if maskNum > 7 {
		return BadParam
	}
	bits, st := d.portVecMask(mask)
	if st != OK {
		return st
	}
	v := uint16(trunkUpdate) | uint16(maskNum)<<12 | uint16(bits&0x7FF)
	if hash {
		v |= trunkHash
	}
	return d.write(global2Addr, regG2TrunkMask, v)
}

// SetCPUPort selects the port facing the management CPU. Only the first
// and last ports can carry CPU traffic.
func (d *Dev) SetCPUPort(port Port) Status {
	if st := d.checkPort(port); st != OK {
		return st
	}
	if port != 0 && int(port) != d.Ports()-1 {
		return BadCPUPort
	}
	return d.writeField(global1Addr, regG1CPUPort, 0, 5, uint16(port))
}

// GetCPUPort returns the CPU port.
func (d *Dev) GetCPUPort() (uint32, Status) {
	v, st := d.readField(global1Addr, regG1CPUPort, 0, 5)
	return uint32(v), st
}

// SetPTPEnable turns the PTP block on or off.
func (d *Dev) SetPTPEnable(en bool) Status {
	if st := d.require(FeaturePTP); st != OK {
		return st
	}
	var v uint16
	if en {
		v = 1
	}
	if st := d.writeField(ptpAddr, regPTPConfig, 0, 1, v); st != OK {
		return st
	}
	d.ptpEnabled = en
	return OK
}

// SetPTPTime loads ns into time array idx for PTP domain.
func (d *Dev) SetPTPTime(idx, domain uint32, ns uint64) Status {
	if st := d.require(FeaturePTP); st != OK {
		return st
	}
	if !d.ptpEnabled {
		return FeatureNotEnabled
	}
	if idx > 1 || domain > 0xFF {
		return BadParam
	}
	for i := 0; i < 4; i++ {
		if st := d.write(ptpAddr, regPTPTime0+uint8(i), uint16(ns>>(16*uint(i)))); st != OK {
			return st
		}
	}
	ctrl := uint16(ptpTimeUpdate) | uint16(idx)<<12 | uint16(domain)
	return d.write(ptpAddr, regPTPTimeCtrl, ctrl)
}

// EnableSemaphore enables the hardware semaphore that arbitrates register
// access between management agents.
func (d *Dev) EnableSemaphore() Status {
	return d.setSemaphore(1)
}

// DisableSemaphore disables the hardware semaphore.
func (d *Dev) DisableSemaphore() Status {
	return d.setSemaphore(0)
}

func (d *Dev) setSemaphore(v uint16) Status {
	if st := d.require(FeatureSemaphore); st != OK {
		return st
	}
	return d.writeField(global2Addr, regG2Semaphore, 0, 1, v)
}
