// Package onewire implements the Dallas 1-Wire line protocol over a single
// open-drain GPIO. It exposes the transactional Bus interface the ds18b20
// driver builds on; the bit-banged Line implementation lives here so that
// byte-level fakes can stand in for the whole wire during tests.
//
// Timing follows the standard-speed slots from the DS18B20 datasheet. The
// line must have an external pull-up; the pin is only ever driven low or
// released.
package onewire

import (
	"errors"
	"time"
)

// Errors returned by the line driver.
var (
	ErrNoPresence = errors.New("onewire: no presence pulse")
)

// Pin is the minimal GPIO contract the line driver needs.
// Low drives the line low; Release floats it (input, external pull-up);
// Get samples the current level.
type Pin interface {
	Low()
	Release()
	Get() bool
}

// Bus is the byte-level transaction surface.
type Bus interface {
	// Reset issues a reset pulse and returns ErrNoPresence when no device
	// answers with a presence pulse.
	Reset() error
	// Skip addresses all devices on the bus (SKIP ROM, single-drop use).
	Skip() error
	WriteByte(b byte) error
	ReadByte() (byte, error)
}

// Standard-speed slot timing.
const (
	resetLowTime     = 480 * time.Microsecond
	presenceWaitTime = 70 * time.Microsecond
	resetTailTime    = 410 * time.Microsecond

	writeOneLowTime  = 6 * time.Microsecond
	writeOneHighTime = 64 * time.Microsecond
	writeZeroLowTime = 60 * time.Microsecond
	writeZeroTail    = 10 * time.Microsecond

	readInitTime   = 6 * time.Microsecond
	readSampleTime = 9 * time.Microsecond
	readSlotTail   = 55 * time.Microsecond
)

const cmdSkipROM = 0xCC

// Line bit-bangs the protocol on one pin.
type Line struct {
	pin   Pin
	sleep func(time.Duration)
}

var _ Bus = (*Line)(nil)

// NewLine creates a line driver on pin. The pin must already be wired with
// a pull-up; no configuration happens here.
func NewLine(pin Pin) *Line {
	return &Line{pin: pin, sleep: time.Sleep}
}

func (l *Line) Reset() error {
	l.pin.Low()
	l.sleep(resetLowTime)
	l.pin.Release()
	l.sleep(presenceWaitTime)
	present := !l.pin.Get() // a device holds the line low
	l.sleep(resetTailTime)
	if !present {
		return ErrNoPresence
	}
	return nil
}

func (l *Line) Skip() error { return l.WriteByte(cmdSkipROM) }

func (l *Line) WriteByte(b byte) error {
	for i := 0; i < 8; i++ {
		l.writeBit(b&1 != 0)
		b >>= 1
	}
	return nil
}

func (l *Line) ReadByte() (byte, error) {
	var b byte
	for i := 0; i < 8; i++ {
		b >>= 1
		if l.readBit() {
			b |= 0x80
		}
	}
	return b, nil
}

func (l *Line) writeBit(bit bool) {
	if bit {
		l.pin.Low()
		l.sleep(writeOneLowTime)
		l.pin.Release()
		l.sleep(writeOneHighTime)
	} else {
		l.pin.Low()
		l.sleep(writeZeroLowTime)
		l.pin.Release()
		l.sleep(writeZeroTail)
	}
}

func (l *Line) readBit() bool {
	l.pin.Low()
	l.sleep(readInitTime)
	l.pin.Release()
	l.sleep(readSampleTime)
	bit := l.pin.Get()
	l.sleep(readSlotTail)
	return bit
}

// CRC8 computes the Dallas/Maxim CRC (poly 0x31 reflected) over data.
// The last scratchpad byte must equal the CRC of the first eight.
func CRC8(data []byte) byte {
	var crc byte
	for _, b := range data {
		for i := 0; i < 8; i++ {
			mix := (crc ^ b) & 0x01
			crc >>= 1
			if mix != 0 {
				crc ^= 0x8C
			}
			b >>= 1
		}
	}
	return crc
}
