// Package platform assembles the board-specific pieces behind small
// interfaces: the drawing surface, the 1-Wire line the sensor hangs off,
// and the console writer. The rp2040 build wires real hardware; every
// other build gets a terminal surface and a simulated sensor so the full
// stack runs on a workstation.
package platform

import (
	"io"

	"tempdisplay-go/drivers/onewire"
	"tempdisplay-go/services/display"
)

type Platform struct {
	Surface    display.Surface
	SensorBus  onewire.Bus
	ConsoleOut io.Writer
}
