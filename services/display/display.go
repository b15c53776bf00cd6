// Package display renders the fixed screen layout: a header block, unit
// labels, and two numeric value rows. It draws through the primitive
// Surface interface so the same renderer runs against the ST7789 panel and
// a terminal simulation.
package display

import (
	"image/color"

	"tempdisplay-go/types"
	"tempdisplay-go/x/strconvx"
)

// Surface is the minimal drawing contract a platform must provide.
// SetCursor positions in pixels; Print/Println render text at the cursor
// with the current colours.
type Surface interface {
	Clear()
	SetCursor(x, y int16)
	SetColor(fg, bg color.RGBA)
	Print(s string)
	Println(s string)
}

// Fixed layout rows (pixels, portrait orientation). The error row replaces
// the Celsius row; the disconnected layout has no numeric labels.
const (
	CelsiusY    = 85
	FahrenheitY = 133
	ErrorY      = 85
)

var (
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black = color.RGBA{A: 255}
)

const (
	divider     = "---------------------------"
	title       = " DS18B20 Sensor Module"
	errNotFound = "!! Sensor Not Connected !!"
)

// Renderer composes the two higher-level draws the poller needs.
type Renderer struct {
	s Surface
}

func NewRenderer(s Surface) *Renderer {
	return &Renderer{s: s}
}

// Splash clears the screen and shows a startup message.
func (r *Renderer) Splash(msg string) {
	r.s.Clear()
	r.s.SetColor(White, Black)
	r.s.SetCursor(0, 0)
	r.s.Println(msg)
}

// DrawLayout renders the full static layout for the given connectivity
// state. The disconnected layout carries the error message in place of the
// numeric labels.
func (r *Renderer) DrawLayout(connected bool) {
	r.s.Clear()
	r.s.SetColor(White, Black)
	r.s.SetCursor(0, 0)

	r.s.Println(divider)
	r.s.Println(title)
	r.s.Println(divider)

	if connected {
		r.s.Println("")
		r.s.Println("Temp in Celsius:")
		r.s.Println("")
		r.s.Println("")
		r.s.Println("Temp in Fahrenheit:")
	} else {
		r.s.SetCursor(0, ErrorY)
		r.s.Println(errNotFound)
	}
}

// DrawReadings repaints only the two numeric value rows. Trailing blanks
// overwrite stale digits from a previously longer value.
func (r *Renderer) DrawReadings(c types.MilliC, f types.MilliF) {
	r.s.SetColor(White, Black)
	r.s.SetCursor(0, CelsiusY)
	r.s.Print(FormatMilli(int32(c)) + " C    ")
	r.s.SetCursor(0, FahrenheitY)
	r.s.Print(FormatMilli(int32(f)) + " F    ")
}

// FormatMilli renders a milli-degree value with two decimals, rounded half
// away from zero: 21300 -> "21.30", -1550 -> "-1.55".
func FormatMilli(v int32) string {
	neg := v < 0
	if neg {
		v = -v
	}
	centi := (v + 5) / 10
	s := strconvx.Itoa(int(centi/100)) + "." + pad2(int(centi%100))
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconvx.Itoa(n)
	}
	return strconvx.Itoa(n)
}
