package driver

// Chip-relative device addresses. Ports occupy 0x00-0x1A.
const (
	global1Addr = 0x1B
	global2Addr = 0x1C
	ptpAddr     = 0x1D
)

// Per-port registers.
const (
	regPortStatus   = 0x00 // 11 link, 10 duplex, 9:8 speed
	regPortSwitchID = 0x03 // 15:4 device ID, 3:0 revision
	regPortCtrl     = 0x04 // 2 forward unknown unicast
	regPortDefVID   = 0x07 // 11:0 default VID
	regPortCtrl2    = 0x08 // 13:12 jumbo mode
	regPortEType    = 0x0F
	regPortLED      = 0x16 // 4 bits per LED
	regPortQueueW0  = 0x18 // 0x18-0x1B queue 0-3 weights, 7:0
)

// Global 1 registers.
const (
	regG1CPUPort = 0x1A // 4:0 CPU port
	regG1StatsOp = 0x1D // 15 busy, 14:12 op, 11 upper half, 9:5 port, 4:0 counter
	regG1StatsHi = 0x1E
	regG1StatsLo = 0x1F
)

// Global 2 registers.
const (
	regG2TrunkMask = 0x07 // 15 update, 14:12 mask number, 11 hash, 10:0 mask
	regG2Semaphore = 0x1A // 0 enable
)

// PTP global registers.
const (
	regPTPConfig   = 0x00 // 0 enable
	regPTPTimeCtrl = 0x01 // 15 update, 12 time array index, 7:0 domain
	regPTPTime0    = 0x02 // 0x02-0x05 nanoseconds, least significant word first
)

const (
	statsBusy      = 1 << 15
	statsOpRead    = 4 << 12
	statsUpperHalf = 1 << 11
	trunkUpdate    = 1 << 15
	trunkHash      = 1 << 11
	ptpTimeUpdate  = 1 << 15
)

// Jumbo mode encodings in regPortCtrl2.
const (
	jumbo1522  = 0
	jumbo2048  = 1
	jumbo10240 = 2
)
