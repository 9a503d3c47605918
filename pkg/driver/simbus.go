package driver

import (
	"fmt"
	"sync"
)

// SimBus is an in-memory register file standing in for an SMI/RMU bus.
// Writes to the Global 1 stats operation register are executed the way the
// hardware does: the selected counter is latched into the stats data
// registers and the busy bit clears.
type SimBus struct {
	mu       sync.RWMutex
	regs     [32][32]uint16
	counters map[statKey]uint64

	// Hooks for testing error scenarios
	ReadError  error
	WriteError error
}

type statKey struct {
	port    uint8
	counter uint8
}

// NewSimBus creates a register file initialised for fam: every port reports
// link up at 1000 Mb/s full duplex and carries the family's switch ID.
func NewSimBus(fam Family) *SimBus {
	b := &SimBus{counters: make(map[statKey]uint64)}
	for p := 0; p < fam.Ports && p < global1Addr; p++ {
		b.regs[p][regPortStatus] = 1<<11 | 1<<10 | 2<<8
		b.regs[p][regPortSwitchID] = fam.DeviceID << 4
		b.regs[p][regPortDefVID] = 1
	}
	return b
}

// ReadRegister implements Transport.
func (b *SimBus) ReadRegister(devAddr, regAddr uint8) (uint16, error) {
	if b.ReadError != nil {
		return 0, b.ReadError
	}
	if devAddr > 0x1F || regAddr > 0x1F {
		return 0, fmt.Errorf("register %#x/%#x out of range", devAddr, regAddr)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.regs[devAddr][regAddr], nil
}

// WriteRegister implements Transport.
func (b *SimBus) WriteRegister(devAddr, regAddr uint8, data uint16) error {
	if b.WriteError != nil {
		return b.WriteError
	}
	if devAddr > 0x1F || regAddr > 0x1F {
		return fmt.Errorf("register %#x/%#x out of range", devAddr, regAddr)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.regs[devAddr][regAddr] = data

	if regAddr == regG1StatsOp && devAddr == global1Addr && data&statsBusy != 0 {
		b.runStatsOp(devAddr, data)
	}
	return nil
}

// runStatsOp latches the selected counter half into the data registers.
// Caller holds b.mu.
func (b *SimBus) runStatsOp(devAddr uint8, op uint16) {
	key := statKey{port: uint8(op>>5) & 0x1F, counter: uint8(op) & 0x1F}
	v := b.counters[key]
	if op&statsUpperHalf != 0 {
		v >>= 32
	}
	b.regs[devAddr][regG1StatsHi] = uint16(v >> 16)
	b.regs[devAddr][regG1StatsLo] = uint16(v)
	b.regs[devAddr][regG1StatsOp] = op &^ statsBusy
}

// SetCounter sets a port MIB counter.
func (b *SimBus) SetCounter(port, counter uint8, v uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counters[statKey{port: port, counter: counter}] = v
}
