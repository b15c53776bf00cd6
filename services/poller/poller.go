// Package poller owns the polling state machine at the centre of the
// firmware: request a conversion, wait out the conversion latency, evaluate
// the reading and redraw the display when something meaningful changed.
//
// The machine is cooperative and never blocks. Tick is called repeatedly by
// the owner's loop with the current time; each phase either acts and
// advances, or compares elapsed time against its threshold and returns.
package poller

import (
	"time"

	"tempdisplay-go/types"
	"tempdisplay-go/x/mathx"
)

// Phase is the state machine position.
type Phase uint8

const (
	// PhaseRequest issues a conversion request and advances unconditionally.
	PhaseRequest Phase = iota
	// PhaseAwait waits out the sensor's conversion latency.
	PhaseAwait
	// PhaseEvaluate consumes the reading and holds until the read interval
	// elapses.
	PhaseEvaluate
)

func (p Phase) String() string {
	switch p {
	case PhaseRequest:
		return "request"
	case PhaseAwait:
		return "await"
	case PhaseEvaluate:
		return "evaluate"
	}
	return "unknown"
}

// Sensor is the narrow collaborator contract for the thermometer.
type Sensor interface {
	// RequestConversion starts an asynchronous conversion. Fire-and-forget:
	// a failed request surfaces as the disconnect sentinel at read time.
	RequestConversion() error
	// ReadMilliCelsius returns the last converted value, or
	// types.DisconnectedMilliC when no valid reading exists.
	ReadMilliCelsius() types.MilliC
}

// Screen is the narrow collaborator contract for the display. DrawLayout
// renders the full static layout for the given connectivity state (the
// disconnected layout carries the error message); DrawReadings repaints only
// the two numeric value rows.
type Screen interface {
	DrawLayout(connected bool)
	DrawReadings(c types.MilliC, f types.MilliF)
}

// Event is the telemetry record published on state changes.
type Event struct {
	Kind      types.Kind
	Reading   types.TemperatureValue // set when Kind == KindTemperature
	Connected bool                   // set when Kind == KindConnectivity
}

// Emitter receives events. Implementations must not block.
type Emitter interface {
	Emit(Event)
}

// Config centralises the timing thresholds. Zero values take the defaults.
type Config struct {
	// ConvertLatency is the wait between requesting a conversion and
	// evaluating the result. Default 750 ms (12-bit DS18B20 conversion).
	ConvertLatency time.Duration
	// ReadInterval is the full polling cadence, measured from the moment
	// the wait phase begins. Default 2 s.
	ReadInterval time.Duration
	// Hysteresis is the minimum change, in milli-degrees Celsius, before a
	// new reading is treated as a real update. Default 100 (0.1 °C).
	Hysteresis types.MilliC
}

func (c Config) withDefaults() Config {
	if c.ConvertLatency <= 0 {
		c.ConvertLatency = 750 * time.Millisecond
	}
	if c.ReadInterval <= 0 {
		c.ReadInterval = 2000 * time.Millisecond
	}
	if c.Hysteresis <= 0 {
		c.Hysteresis = 100
	}
	return c
}

// Poller is the session state. It is exclusively owned by one control loop;
// there is no locking because there is exactly one logical thread here.
type Poller struct {
	cfg    Config
	sensor Sensor
	screen Screen
	emit   Emitter // optional

	phase      Phase
	phaseEntry time.Time

	lastC types.MilliC
	lastF types.MilliF
	prevC types.MilliC // last value that armed a redraw

	connected     bool
	redrawPending bool
}

// New creates a poller. emit may be nil. The machine starts in PhaseRequest
// assuming a connected sensor, matching the initial layout drawn at startup.
func New(cfg Config, sensor Sensor, screen Screen, emit Emitter) *Poller {
	return &Poller{
		cfg:       cfg.withDefaults(),
		sensor:    sensor,
		screen:    screen,
		emit:      emit,
		phase:     PhaseRequest,
		connected: true,
	}
}

// Tick advances the state machine. It never blocks; callers invoke it on
// every scheduler tick with a monotonic-enough now.
func (p *Poller) Tick(now time.Time) {
	switch p.phase {
	case PhaseRequest:
		_ = p.sensor.RequestConversion()
		p.phaseEntry = now
		p.phase = PhaseAwait

	case PhaseAwait:
		if now.Sub(p.phaseEntry) < p.cfg.ConvertLatency {
			return
		}
		p.evaluate()
		p.phase = PhaseEvaluate

	case PhaseEvaluate:
		// Runs every tick the phase is revisited, but fires at most once
		// per change: the flag is cleared when consumed. A second
		// qualifying change before consumption coalesces into the newest
		// value.
		if p.redrawPending && p.connected {
			p.screen.DrawReadings(p.lastC, p.lastF)
			p.redrawPending = false
		}
		// Measured from the wait phase entry, not from evaluation.
		if now.Sub(p.phaseEntry) >= p.cfg.ReadInterval {
			p.phase = PhaseRequest
		}

	default:
		p.phase = PhaseRequest
	}
}

// evaluate runs once per cycle, at the moment the conversion latency has
// passed. Connectivity may only change here, never mid-wait.
func (p *Poller) evaluate() {
	reading := p.sensor.ReadMilliCelsius()
	p.lastC = reading
	p.lastF = reading.Fahrenheit()

	cur := reading != types.DisconnectedMilliC
	if cur != p.connected {
		// One-time transition action: redraw the static layout for the new
		// state. Repeated disconnected readings do not redraw again.
		p.connected = cur
		p.screen.DrawLayout(cur)
		p.publish(Event{Kind: types.KindConnectivity, Connected: cur})
	}

	if p.connected && mathx.Abs(int32(reading-p.prevC)) >= int32(p.cfg.Hysteresis) {
		p.redrawPending = true
		p.prevC = reading
		p.publish(Event{
			Kind:    types.KindTemperature,
			Reading: types.TemperatureValue{MilliC: p.lastC, MilliF: p.lastF},
		})
	}
}

func (p *Poller) publish(ev Event) {
	if p.emit != nil {
		p.emit.Emit(ev)
	}
}

// Phase returns the current state machine position.
func (p *Poller) Phase() Phase { return p.phase }

// Connected returns the last known connectivity.
func (p *Poller) Connected() bool { return p.connected }

// Last returns the most recent reading pair, valid or not.
func (p *Poller) Last() (types.MilliC, types.MilliF) { return p.lastC, p.lastF }
