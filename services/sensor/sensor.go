// Package sensor adapts the ds18b20 driver to the poller's Sensor contract.
// Driver faults (no presence pulse, corrupt scratchpad) collapse into the
// disconnect sentinel; the poller treats disconnection as a state, not an
// error.
package sensor

import (
	"time"

	"tempdisplay-go/drivers/ds18b20"
	"tempdisplay-go/drivers/onewire"
	"tempdisplay-go/errcode"
	"tempdisplay-go/types"
)

type Adaptor struct {
	dev     ds18b20.Device
	lastErr errcode.Code
}

// New configures a DS18B20 on bus at the given resolution (bits, 9..12).
// A configure failure is tolerated: the sensor may be absent at power-on and
// shows up as disconnected until it answers.
func New(bus onewire.Bus, resolution uint8) *Adaptor {
	a := &Adaptor{dev: ds18b20.New(bus), lastErr: errcode.OK}
	if err := a.dev.Configure(ds18b20.Config{Resolution: resolution}); err != nil {
		a.lastErr = mapDriverErr(err)
	}
	return a
}

// RequestConversion starts a conversion. Fire-and-forget: a failure here
// surfaces as the sentinel at the next read.
func (a *Adaptor) RequestConversion() error {
	return a.dev.Trigger()
}

// ReadMilliCelsius returns the last converted value, or the sentinel when
// the device does not answer or the scratchpad fails its CRC.
func (a *Adaptor) ReadMilliCelsius() types.MilliC {
	v, err := a.dev.ReadMilliCelsius()
	if err != nil {
		a.lastErr = mapDriverErr(err)
		return types.DisconnectedMilliC
	}
	a.lastErr = errcode.OK
	return types.MilliC(v)
}

// ConversionLatency is the wait the poller should allow between request and
// read, derived from the configured resolution.
func (a *Adaptor) ConversionLatency() time.Duration {
	return a.dev.TriggerHint()
}

// LastError reports the most recent driver fault as a stable code.
func (a *Adaptor) LastError() errcode.Code { return a.lastErr }

func mapDriverErr(err error) errcode.Code {
	switch err {
	case nil:
		return errcode.OK
	case onewire.ErrNoPresence:
		return errcode.NoPresence
	case ds18b20.ErrCRC:
		return errcode.CRCMismatch
	}
	return errcode.Error
}
