// Package ds18b20 provides a driver for the DS18B20 digital thermometer.
// It exposes a two-phase measurement API:
//
//	d.Trigger()              // start a conversion (fast)
//	err := d.Collect(&s)     // fetch the scratchpad once the conversion is done
//
// Trigger performs no waiting; TriggerHint() returns the conversion latency
// for the configured resolution so the caller can schedule Collect itself.
//
// The driver is fixed-point throughout: Sample.MilliCelsius returns
// thousandths of a degree. DisconnectedMilliC keeps sentinel parity with the
// DallasTemperature DEVICE_DISCONNECTED_C convention.
package ds18b20

import (
	"errors"
	"time"

	"tempdisplay-go/drivers/onewire"
	"tempdisplay-go/x/mathx"
)

// Function commands (DS18B20 datasheet).
const (
	cmdConvertT        = 0x44
	cmdWriteScratchpad = 0x4E
	cmdReadScratchpad  = 0xBE
)

// DisconnectedMilliC is the sentinel reading reported when no device
// answers or the scratchpad is corrupt (-127 °C, below the sensor range).
const DisconnectedMilliC int32 = -127000

// Errors returned by the driver.
var (
	ErrCRC = errors.New("ds18b20: scratchpad crc mismatch")
)

// Config controls conversion resolution. All fields are optional.
type Config struct {
	// Resolution in bits, 9..12. Default 12 (0.0625 °C steps, 750 ms
	// conversions).
	Resolution uint8
}

// Device wraps a 1-Wire bus with a single DS18B20 on it (SKIP ROM
// addressing; multi-drop enumeration is out of scope).
type Device struct {
	bus onewire.Bus
	cfg Config
	buf [9]byte // scratchpad buffer, reused to avoid allocations
}

// New creates a DS18B20 connection. The bus must already be configured.
// This only creates the Device object; it does not touch the wire.
func New(bus onewire.Bus) Device {
	return Device{bus: bus, cfg: Config{Resolution: 12}}
}

// Configure applies the resolution to the device's scratchpad configuration
// register. TH/TL alarm registers are left at zero; alarms are unused.
func (d *Device) Configure(cfgs ...Config) error {
	c := Config{Resolution: 12}
	if len(cfgs) > 0 && cfgs[0].Resolution != 0 {
		c.Resolution = mathx.Clamp(cfgs[0].Resolution, 9, 12)
	}
	d.cfg = c

	if err := d.bus.Reset(); err != nil {
		return err
	}
	if err := d.bus.Skip(); err != nil {
		return err
	}
	if err := d.bus.WriteByte(cmdWriteScratchpad); err != nil {
		return err
	}
	// TH, TL, then the configuration register: R1 R0 1 1 1 1 1.
	for _, b := range [3]byte{0x00, 0x00, configReg(c.Resolution)} {
		if err := d.bus.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}

// Resolution returns the configured resolution in bits.
func (d *Device) Resolution() uint8 { return d.cfg.Resolution }

// Trigger starts a temperature conversion. It is quick and never waits for
// the conversion itself.
func (d *Device) Trigger() error {
	if err := d.bus.Reset(); err != nil {
		return err
	}
	if err := d.bus.Skip(); err != nil {
		return err
	}
	return d.bus.WriteByte(cmdConvertT)
}

// TriggerHint returns the worst-case conversion time for the configured
// resolution: 94/188/375/750 ms for 9..12 bits.
func (d *Device) TriggerHint() time.Duration {
	res := d.cfg.Resolution
	if res == 0 {
		res = 12
	}
	return 750 * time.Millisecond >> (12 - res)
}

// Collect reads and validates the scratchpad. The caller is responsible for
// waiting TriggerHint after Trigger; collecting earlier yields the previous
// conversion result.
func (d *Device) Collect(out *Sample) error {
	if err := d.bus.Reset(); err != nil {
		return err
	}
	if err := d.bus.Skip(); err != nil {
		return err
	}
	if err := d.bus.WriteByte(cmdReadScratchpad); err != nil {
		return err
	}
	for i := range d.buf {
		b, err := d.bus.ReadByte()
		if err != nil {
			return err
		}
		d.buf[i] = b
	}
	if onewire.CRC8(d.buf[:8]) != d.buf[8] {
		return ErrCRC
	}

	raw := int16(d.buf[1])<<8 | int16(d.buf[0])
	// Undefined low bits at reduced resolution read as garbage; mask them.
	raw &^= int16(1)<<(12-d.cfg.Resolution) - 1

	if out != nil {
		out.Raw = raw
	}
	return nil
}

// ReadMilliCelsius performs Collect and returns the fixed-point value, or
// the disconnect sentinel alongside the error.
func (d *Device) ReadMilliCelsius() (int32, error) {
	var s Sample
	if err := d.Collect(&s); err != nil {
		return DisconnectedMilliC, err
	}
	return s.MilliCelsius(), nil
}

// Sample holds one raw conversion result (sixteenths of a degree).
type Sample struct {
	Raw int16
}

// MilliCelsius converts the raw reading to thousandths of a degree.
func (s Sample) MilliCelsius() int32 {
	return int32(s.Raw) * 1000 / 16
}

func configReg(resolution uint8) byte {
	return (resolution-9)<<5 | 0x1F
}
