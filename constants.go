package max31865

type WireCount int

const (
	WireCount2 WireCount = iota
	WireCount3
	WireCount4
)

// Reference resistor value in the original board layout this driver was
// written against.
const defaultRefResistor = 428.5

const (
	configReg uint8 = iota
	rtdMsbReg
	rtdLsbReg
	hFaultMsbReg
	hFaultLsbReg
	lFaultMsbReg
	lFaultLsbReg
	faultStatReg
)

// Fault status register bits.
const (
	faultHighThresh uint8 = 0x80
	faultLowThresh  uint8 = 0x40
	faultRefInLow   uint8 = 0x20
	faultRefInHigh  uint8 = 0x10
	faultRtdInLow   uint8 = 0x08
	faultOvUv       uint8 = 0x04
)

// Configuration register bits.
const (
	configBias      uint8 = 0x80
	configModeAuto  uint8 = 0x40
	configModeOff   uint8 = 0x00
	config1Shot     uint8 = 0x20
	config24Wire    uint8 = 0x00
	config3Wire     uint8 = 0x10
	configFaultStat uint8 = 0x02
	configFilt50Hz  uint8 = 0x01
	configFilt60Hz  uint8 = 0x00
)
