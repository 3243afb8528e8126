package max31865

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/thermopi/max31865/rtd"
)

// Opts holds various configuration options for the sensor
type Opts struct {
	Port string
	// RefResistor is the reference resistor wired to the chip, in ohms.
	RefResistor float64
	// Curve and R0 bind the conversion: material family and the sensor's
	// resistance at 0°C (100 for Pt100, 1000 for Pt1000, ...).
	Curve rtd.Curve
	R0    float64
	// Calibration is a linear correction applied to every converted
	// temperature. A zero Slope is treated as 1.
	Calibration rtd.Calibration
	WireCount   WireCount
}

// DefaultOptions matches the board the driver was written against: a
// 3-wire Pt100 against a 428.5Ω reference resistor.
func DefaultOptions() *Opts {
	return &Opts{
		RefResistor: defaultRefResistor,
		Curve:       rtd.PT385,
		R0:          100.0,
		WireCount:   WireCount3,
	}
}

func AdafruitPT100() *Opts {
	return &Opts{
		RefResistor: 430.0,
		Curve:       rtd.PT385,
		R0:          100.0,
		WireCount:   WireCount3,
	}
}

func AdafruitPT1000() *Opts {
	return &Opts{
		RefResistor: 4300.0,
		Curve:       rtd.PT385,
		R0:          1000.0,
		WireCount:   WireCount3,
	}
}

func New(p spi.Port, opts *Opts) (*Dev, error) {
	c, err := p.Connect(5*physic.MegaHertz, spi.Mode3, 8)
	if err != nil {
		return nil, fmt.Errorf("max31865: %v", err)
	}

	if opts == nil {
		opts = DefaultOptions()
	}

	d := &Dev{
		d:    c,
		opts: *opts,
		name: p.String(),
	}

	if d.opts.RefResistor == 0 {
		d.opts.RefResistor = defaultRefResistor
	}
	if d.opts.R0 <= 0 {
		return nil, fmt.Errorf("max31865: nominal resistance R0 must be positive, got %v", d.opts.R0)
	}
	if d.opts.Calibration.Slope == 0 {
		d.opts.Calibration.Slope = 1
	}

	// Bias on, automatic conversion mode, fault status cleared. The chip
	// converts continuously from here on and Acquire only reads registers.
	if err := d.init(d.opts.WireCount); err != nil {
		return nil, d.wrap(err)
	}

	return d, nil
}

// Dev is one MAX31865 on one SPI connection. Acquisitions are serialized
// on an internal mutex; the chip has no per-call state of its own and must
// not see interleaved transactions.
type Dev struct {
	d    conn.Conn
	opts Opts
	name string

	mu sync.Mutex

	// Fault diagnostics, behind their own lock so they can be read while
	// an acquisition is in flight.
	faultMu   sync.Mutex
	faulted   bool
	lastFault uint8
	faults    uint
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s{%s}", d.name, d.d)
}

// Reading is the result of one acquisition. Valid is false when the chip
// reported a non-zero fault status for this frame; the resistance and
// temperature are still the decoded register values.
type Reading struct {
	Resistance  float64 // ohms
	Temperature float64 // °C, calibrated
	Valid       bool
}

// Acquire performs one read transaction against the chip's register block
// and returns the decoded measurement.
//
// A non-zero fault status triggers the automatic recovery inherited from
// the reference design: the fault flag is raised, the chip is
// reinitialized once with the fixed 3-wire configuration, and the flag is
// lowered again without verifying that the fault actually cleared. All
// fault categories are handled identically. Transport errors abort the
// acquisition and are returned as-is; the driver never retries the bus.
func (d *Dev) Acquire() (Reading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var buf [7]byte
	if err := d.readReg(rtdMsbReg, buf[:]); err != nil {
		return Reading{}, d.wrap(err)
	}
	f := decodeFrame(buf[:])

	if f.fault != 0 {
		d.setFault(true, f.fault)
		err := d.init(WireCount3)
		d.setFault(false, f.fault)
		if err != nil {
			return Reading{}, d.wrap(err)
		}
	}

	res := float64(f.rtd) * d.opts.RefResistor / 32768.0
	return Reading{
		Resistance:  res,
		Temperature: d.Temperature(res),
		Valid:       f.fault == 0,
	}, nil
}

// ReadResistance performs one acquisition and returns the measured
// resistance in ohms.
func (d *Dev) ReadResistance() (float64, error) {
	r, err := d.Acquire()
	if err != nil {
		return 0, err
	}
	return r.Resistance, nil
}

// Temperature converts a resistance in ohms to °C through the configured
// curve, nominal resistance and calibration.
func (d *Dev) Temperature(res float64) float64 {
	return d.opts.Calibration.Apply(d.opts.Curve.Temperature(res, d.opts.R0))
}

func (d *Dev) Sense(e *physic.Env) error {
	r, err := d.Acquire()
	if err != nil {
		return err
	}
	if !r.Valid {
		return d.wrap(fmt.Errorf("sensor fault (%#02x): %s", d.LastFault(), strings.Join(FaultCauses(d.LastFault()), "; ")))
	}
	e.Temperature = physic.Temperature(r.Temperature*1000)*physic.MilliCelsius + physic.ZeroCelsius
	return nil
}

// SenseContinuous is not supported: the driver takes one measurement per
// call and leaves scheduling to the caller.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	return nil, d.wrap(errors.New("continuous sensing not supported"))
}

// 15-Bit ADC Resolution; Nominal temperature resolution varies due to RTD non-linearity
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = physic.Kelvin / 32
}

// Halt implements conn.Resource. The driver keeps no background work.
func (d *Dev) Halt() error {
	return nil
}

// ReadConfiguration reads back the configuration register. The fault
// status clear bit self-clears, so a 0xD3 written at init reads back 0xD1.
func (d *Dev) ReadConfiguration() (uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var b [1]byte
	if err := d.readReg(configReg, b[:]); err != nil {
		return 0, d.wrap(err)
	}
	return b[0], nil
}

// FaultState reports whether a fault recovery is in progress.
func (d *Dev) FaultState() bool {
	d.faultMu.Lock()
	defer d.faultMu.Unlock()
	return d.faulted
}

// LastFault returns the fault status byte of the most recent faulted
// frame, or 0 if none has been seen.
func (d *Dev) LastFault() uint8 {
	d.faultMu.Lock()
	defer d.faultMu.Unlock()
	return d.lastFault
}

// Faults returns the number of faulted frames seen since New.
func (d *Dev) Faults() uint {
	d.faultMu.Lock()
	defer d.faultMu.Unlock()
	return d.faults
}

// FaultCauses expands a fault status byte into its set of causes.
func FaultCauses(status uint8) []string {
	var causes []string
	if status&faultHighThresh != 0 {
		causes = append(causes, "rtd resistance above high threshold")
	}
	if status&faultLowThresh != 0 {
		causes = append(causes, "rtd resistance below low threshold")
	}
	if status&faultRefInLow != 0 {
		causes = append(causes, "refin- voltage above 0.85*vbias")
	}
	if status&faultRefInHigh != 0 {
		causes = append(causes, "refin- voltage below 0.85*vbias (force open)")
	}
	if status&faultRtdInLow != 0 {
		causes = append(causes, "rtdin- voltage below 0.85*vbias (force open)")
	}
	if status&faultOvUv != 0 {
		causes = append(causes, "over/under voltage on fet pins")
	}
	return causes
}

// frame is the chip's 7-byte register block starting at the RTD MSB
// register. The 16-bit RTD and high threshold fields carry their low bit
// as a status flag and are right-shifted off it.
type frame struct {
	rtd       uint16
	highFault uint16
	lowFault  uint16
	fault     uint8
}

func decodeFrame(b []byte) frame {
	return frame{
		rtd:       (uint16(b[0])<<8 | uint16(b[1])) >> 1,
		highFault: (uint16(b[2])<<8 | uint16(b[3])) >> 1,
		lowFault:  uint16(b[4])<<8 | uint16(b[5]),
		fault:     b[6],
	}
}

func (d *Dev) setFault(active bool, status uint8) {
	d.faultMu.Lock()
	defer d.faultMu.Unlock()
	d.faulted = active
	if active {
		d.lastFault = status
		d.faults++
	}
}

// init writes the whole configuration register: bias on, automatic
// conversion mode, fault status clear, 50Hz filter, plus 3-wire mode when
// selected. That is 0xC3 for 2- or 4-wire sensors and 0xD3 for 3-wire.
func (d *Dev) init(wires WireCount) error {
	cfg := configBias | configModeAuto | configFaultStat | configFilt50Hz
	if wires == WireCount3 {
		cfg |= config3Wire
	}
	return d.writeCommands([]byte{configReg, cfg})
}

func (d *Dev) readReg(reg uint8, b []byte) error {
	read := make([]byte, len(b)+1)
	write := make([]byte, len(read))

	write[0] = reg & 0x7F
	if err := d.d.Tx(write, read); err != nil {
		return d.wrap(err)
	}
	copy(b, read[1:])

	return nil
}

// writeCommands writes a command to the device.
//
// Warning: b may be modified!
func (d *Dev) writeCommands(b []byte) error {
	for i := 0; i < len(b); i += 2 {
		b[i] |= 0x80
	}

	if err := d.d.Tx(b, nil); err != nil {
		return d.wrap(err)
	}

	return nil
}

func (d *Dev) wrap(err error) error {
	return fmt.Errorf("%s: %v", strings.ToLower(d.name), err)
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
