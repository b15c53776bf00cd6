//go:build rp2040

package platform

import (
	"image/color"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/st7789"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"

	"tempdisplay-go/drivers/onewire"
	"tempdisplay-go/services/config"
	"tempdisplay-go/x/fmtx"
)

// Pico wiring.
const (
	pinSensor = machine.GP22

	pinLCDSCK = machine.GP10
	pinLCDSDO = machine.GP11
	pinLCDCS  = machine.GP9
	pinLCDDC  = machine.GP8
	pinLCDRST = machine.GP12
	pinLCDBL  = machine.GP13

	pinUARTTX = machine.GP0
	pinUARTRX = machine.GP1
)

// Setup configures the panel, the sensor line and the debug UART.
func Setup(cfg config.Config) (*Platform, error) {
	err := machine.SPI1.Configure(machine.SPIConfig{
		Frequency: 32_000_000,
		SCK:       pinLCDSCK,
		SDO:       pinLCDSDO,
		Mode:      0,
	})
	if err != nil {
		return nil, err
	}

	dev := st7789.New(machine.SPI1, pinLCDRST, pinLCDDC, pinLCDCS, pinLCDBL)
	dev.Configure(st7789.Config{
		Width:    240,
		Height:   320,
		Rotation: rotation(cfg.Display.Rotation),
	})

	uart := uartx.UART0
	_ = uart.Configure(uartx.UARTConfig{
		BaudRate: uint32(cfg.Console.Baud),
		TX:       pinUARTTX,
		RX:       pinUARTRX,
	})
	fmtx.DefaultOutput = uart

	return &Platform{
		Surface:    &panelSurface{dev: &dev, fg: colorWhite, bg: colorBlack},
		SensorBus:  sensorLine(),
		ConsoleOut: uart,
	}, nil
}

func rotation(quarters int) drivers.Rotation {
	switch quarters {
	case 1:
		return drivers.Rotation90
	case 2:
		return drivers.Rotation180
	case 3:
		return drivers.Rotation270
	}
	return drivers.Rotation0
}

// ---- sensor line ----

// owPin drives the sensor pin open-drain: output-low or floating input.
// The board carries the 4.7k pull-up.
type owPin struct{ p machine.Pin }

func (w owPin) Low() {
	w.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	w.p.Low()
}

func (w owPin) Release() {
	w.p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
}

func (w owPin) Get() bool { return w.p.Get() }

func sensorLine() *onewire.Line {
	return onewire.NewLine(owPin{p: pinSensor})
}

// ---- panel surface ----

var (
	colorWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorBlack = color.RGBA{A: 255}
)

var panelFont = &freemono.Regular9pt7b

// Text cell metrics for the fixed layout. The cursor addresses the top-left
// of a cell; tinyfont positions on the baseline.
const (
	cellHeight = 20
	cellAscent = 14
)

// panelSurface renders cursor-addressed text on the ST7789. Each Print
// first fills the text box with the background colour so shorter values
// overwrite longer stale ones.
type panelSurface struct {
	dev    *st7789.Device
	x, y   int16
	fg, bg color.RGBA
}

func (s *panelSurface) Clear() {
	s.dev.FillScreen(s.bg)
	s.x, s.y = 0, 0
}

func (s *panelSurface) SetCursor(x, y int16) { s.x, s.y = x, y }

func (s *panelSurface) SetColor(fg, bg color.RGBA) { s.fg, s.bg = fg, bg }

func (s *panelSurface) Print(text string) {
	if text == "" {
		return
	}
	_, w := tinyfont.LineWidth(panelFont, text)
	_ = s.dev.FillRectangle(s.x, s.y, int16(w), cellHeight, s.bg)
	tinyfont.WriteLine(s.dev, panelFont, s.x, s.y+cellAscent, text, s.fg)
	s.x += int16(w)
}

func (s *panelSurface) Println(text string) {
	s.Print(text)
	s.x = 0
	s.y += cellHeight
}
