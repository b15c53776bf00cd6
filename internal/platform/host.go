//go:build !rp2040

package platform

import (
	"image/color"
	"io"
	"os"
	"sync"

	"tempdisplay-go/drivers/onewire"
	"tempdisplay-go/services/config"
	"tempdisplay-go/x/fmtx"
)

// Setup builds the simulation platform: an ANSI terminal surface on stdout
// and a DS18B20 emulation that drifts through a temperature ramp with a
// periodic dropout window, so the disconnect path gets exercised too.
func Setup(cfg config.Config) (*Platform, error) {
	sim := NewSimSensor()
	sim.dropoutEvery = 30
	sim.dropoutLen = 3

	return &Platform{
		Surface:    NewTermSurface(os.Stdout),
		SensorBus:  sim,
		ConsoleOut: os.Stdout,
	}, nil
}

// ---- terminal surface ----

// Pixel-to-character cell mapping for the fixed layout rows.
const (
	termCellW = 8
	termCellH = 16
)

// TermSurface draws cursor-addressed text with ANSI escapes.
type TermSurface struct {
	w    io.Writer
	x, y int16
}

func NewTermSurface(w io.Writer) *TermSurface {
	return &TermSurface{w: w}
}

func (s *TermSurface) Clear() {
	_, _ = io.WriteString(s.w, "\x1b[2J\x1b[H")
	s.x, s.y = 0, 0
}

func (s *TermSurface) SetCursor(x, y int16) { s.x, s.y = x, y }

func (s *TermSurface) SetColor(fg, bg color.RGBA) {}

func (s *TermSurface) Print(text string) {
	if text == "" {
		return
	}
	row := int(s.y)/termCellH + 1
	col := int(s.x)/termCellW + 1
	_, _ = fmtx.Fprintf(s.w, "\x1b[%d;%dH%s", row, col, text)
	s.x += int16(len(text) * termCellW)
}

func (s *TermSurface) Println(text string) {
	s.Print(text)
	s.x = 0
	s.y += termCellH
}

// ---- simulated sensor ----

const (
	simRawMin  = 18 * 16 // 18.00 C
	simRawMax  = 26 * 16 // 26.00 C
	simRawStep = 4       // 0.25 C per conversion
)

// SimSensor emulates a single DS18B20 at the 1-Wire byte level, so the
// real driver runs unmodified against it. Each CONVERT T advances a
// triangle ramp unless a value was pinned with SetMilliC.
type SimSensor struct {
	mu      sync.Mutex
	absent  bool
	raw     int16
	dir     int16
	ramp    bool
	count   int
	th, tl  byte
	cfgReg  byte
	cmd     byte
	pending int // config bytes still expected after WRITE SCRATCHPAD
	scratch [9]byte
	idx     int

	dropoutEvery int // conversions per dropout period, 0 disables
	dropoutLen   int // absent conversions at the end of each period
}

var _ onewire.Bus = (*SimSensor)(nil)

func NewSimSensor() *SimSensor {
	return &SimSensor{
		raw:    344, // 21.50 C
		dir:    1,
		ramp:   true,
		cfgReg: 0x7F,
	}
}

// SetPresent forces the device on or off the wire.
func (s *SimSensor) SetPresent(present bool) {
	s.mu.Lock()
	s.absent = !present
	s.mu.Unlock()
}

// SetMilliC pins the temperature and stops the ramp.
func (s *SimSensor) SetMilliC(mc int32) {
	s.mu.Lock()
	s.raw = int16((mc*16 + 500) / 1000)
	s.ramp = false
	s.mu.Unlock()
}

func (s *SimSensor) presentLocked() bool {
	if s.absent {
		return false
	}
	if s.dropoutEvery > 0 && s.count%s.dropoutEvery >= s.dropoutEvery-s.dropoutLen {
		return false
	}
	return true
}

func (s *SimSensor) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmd = 0
	s.pending = 0
	if !s.presentLocked() {
		return onewire.ErrNoPresence
	}
	return nil
}

func (s *SimSensor) Skip() error { return nil }

func (s *SimSensor) WriteByte(b byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending > 0 {
		switch s.pending {
		case 3:
			s.th = b
		case 2:
			s.tl = b
		case 1:
			s.cfgReg = b
		}
		s.pending--
		return nil
	}

	switch b {
	case 0x44: // CONVERT T
		s.count++
		if s.ramp {
			s.raw += simRawStep * s.dir
			if s.raw >= simRawMax || s.raw <= simRawMin {
				s.dir = -s.dir
			}
		}
	case 0x4E: // WRITE SCRATCHPAD
		s.pending = 3
	case 0xBE: // READ SCRATCHPAD
		s.latchLocked()
		s.idx = 0
	}
	s.cmd = b
	return nil
}

func (s *SimSensor) ReadByte() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx >= len(s.scratch) {
		return 0xFF, nil
	}
	b := s.scratch[s.idx]
	s.idx++
	return b, nil
}

func (s *SimSensor) latchLocked() {
	s.scratch[0] = byte(s.raw)
	s.scratch[1] = byte(s.raw >> 8)
	s.scratch[2] = s.th
	s.scratch[3] = s.tl
	s.scratch[4] = s.cfgReg
	s.scratch[5] = 0xFF
	s.scratch[6] = 0x0C
	s.scratch[7] = 0x10
	s.scratch[8] = onewire.CRC8(s.scratch[:8])
}
