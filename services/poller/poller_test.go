package poller

import (
	"testing"
	"time"

	"tempdisplay-go/types"
)

type fakeSensor struct {
	reading  types.MilliC
	requests int
	reads    int
}

func (f *fakeSensor) RequestConversion() error { f.requests++; return nil }
func (f *fakeSensor) ReadMilliCelsius() types.MilliC {
	f.reads++
	return f.reading
}

type drawOp struct {
	layout    bool
	connected bool
	c         types.MilliC
	f         types.MilliF
}

type fakeScreen struct {
	ops []drawOp
}

func (s *fakeScreen) DrawLayout(connected bool) {
	s.ops = append(s.ops, drawOp{layout: true, connected: connected})
}

func (s *fakeScreen) DrawReadings(c types.MilliC, f types.MilliF) {
	s.ops = append(s.ops, drawOp{c: c, f: f})
}

func (s *fakeScreen) layouts() []drawOp {
	var out []drawOp
	for _, op := range s.ops {
		if op.layout {
			out = append(out, op)
		}
	}
	return out
}

func (s *fakeScreen) readings() []drawOp {
	var out []drawOp
	for _, op := range s.ops {
		if !op.layout {
			out = append(out, op)
		}
	}
	return out
}

// harness drives the machine with a synthetic clock.
type harness struct {
	p      *Poller
	sensor *fakeSensor
	screen *fakeScreen
	now    time.Time
}

func newHarness() *harness {
	h := &harness{
		sensor: &fakeSensor{},
		screen: &fakeScreen{},
		now:    time.Unix(0, 0),
	}
	h.p = New(Config{}, h.sensor, h.screen, nil)
	return h
}

// run advances the clock by d, ticking every step.
func (h *harness) run(d, step time.Duration) {
	end := h.now.Add(d)
	for h.now.Before(end) {
		h.now = h.now.Add(step)
		h.p.Tick(h.now)
	}
}

// cycle runs one full polling cycle (request + read interval).
func (h *harness) cycle() { h.run(2100*time.Millisecond, 50*time.Millisecond) }

func TestPhaseCycleClosure(t *testing.T) {
	h := newHarness()
	h.sensor.reading = 20000

	if h.p.Phase() != PhaseRequest {
		t.Fatalf("initial phase = %v, want request", h.p.Phase())
	}
	h.p.Tick(h.now)
	if h.p.Phase() != PhaseAwait {
		t.Fatalf("after request: phase = %v, want await", h.p.Phase())
	}

	// Still waiting short of the conversion latency.
	h.now = h.now.Add(700 * time.Millisecond)
	h.p.Tick(h.now)
	if h.p.Phase() != PhaseAwait {
		t.Fatalf("at 700ms: phase = %v, want await", h.p.Phase())
	}

	h.now = h.now.Add(100 * time.Millisecond)
	h.p.Tick(h.now)
	if h.p.Phase() != PhaseEvaluate {
		t.Fatalf("at 800ms: phase = %v, want evaluate", h.p.Phase())
	}

	// Holds in evaluate until the read interval has elapsed.
	h.now = h.now.Add(1100 * time.Millisecond)
	h.p.Tick(h.now)
	if h.p.Phase() != PhaseEvaluate {
		t.Fatalf("at 1900ms: phase = %v, want evaluate", h.p.Phase())
	}

	h.now = h.now.Add(200 * time.Millisecond)
	h.p.Tick(h.now)
	if h.p.Phase() != PhaseRequest {
		t.Fatalf("at 2100ms: phase = %v, want request", h.p.Phase())
	}
	if h.sensor.requests != 1 || h.sensor.reads != 1 {
		t.Fatalf("requests=%d reads=%d, want 1/1 per cycle", h.sensor.requests, h.sensor.reads)
	}
}

func TestHysteresisThreshold(t *testing.T) {
	h := newHarness()

	// Seed the previous value at 20.0 °C.
	h.sensor.reading = 20000
	h.cycle()
	if n := len(h.screen.readings()); n != 1 {
		t.Fatalf("seed cycle drew %d times, want 1", n)
	}

	// 20.05 °C is below the 0.1 °C threshold: no redraw.
	h.sensor.reading = 20050
	h.cycle()
	if n := len(h.screen.readings()); n != 1 {
		t.Fatalf("sub-threshold change drew, total %d", n)
	}

	// 20.2 °C qualifies and becomes the new reference.
	h.sensor.reading = 20200
	h.cycle()
	rs := h.screen.readings()
	if len(rs) != 2 {
		t.Fatalf("qualifying change drew %d times total, want 2", len(rs))
	}
	if rs[1].c != 20200 {
		t.Fatalf("redraw value = %d, want 20200", rs[1].c)
	}

	// The reference moved to 20.2: another 20.25 does not qualify.
	h.sensor.reading = 20250
	h.cycle()
	if n := len(h.screen.readings()); n != 2 {
		t.Fatalf("change against stale reference drew, total %d", n)
	}
}

func TestFahrenheitExact(t *testing.T) {
	h := newHarness()
	h.sensor.reading = 21300
	h.cycle()

	rs := h.screen.readings()
	if len(rs) != 1 {
		t.Fatalf("drew %d times, want 1", len(rs))
	}
	if rs[0].c != 21300 || rs[0].f != 70340 {
		t.Fatalf("drew %d m°C / %d m°F, want 21300 / 70340", rs[0].c, rs[0].f)
	}
}

func TestConnectivityTransitionIdempotence(t *testing.T) {
	h := newHarness()
	h.sensor.reading = types.DisconnectedMilliC

	// Repeated disconnected cycles redraw the layout exactly once.
	for i := 0; i < 4; i++ {
		h.cycle()
	}
	ls := h.screen.layouts()
	if len(ls) != 1 || ls[0].connected {
		t.Fatalf("layouts = %+v, want one disconnected redraw", ls)
	}
	if len(h.screen.readings()) != 0 {
		t.Fatal("numeric fields drawn while disconnected")
	}
	if h.p.Connected() {
		t.Fatal("still reported connected")
	}

	// Reconnection redraws the layout once more and resumes values.
	h.sensor.reading = 18000
	for i := 0; i < 3; i++ {
		h.cycle()
	}
	ls = h.screen.layouts()
	if len(ls) != 2 || !ls[1].connected {
		t.Fatalf("layouts after reconnect = %+v, want one connected redraw", ls)
	}
	rs := h.screen.readings()
	if len(rs) != 1 || rs[0].c != 18000 || rs[0].f != 64400 {
		t.Fatalf("readings after reconnect = %+v, want one 18000/64400", rs)
	}
}

func TestAtMostOnceRedrawPerChange(t *testing.T) {
	h := newHarness()
	h.sensor.reading = 21300

	// Dense ticking revisits the evaluate phase many times per cycle; the
	// redraw must still fire exactly once.
	h.run(2100*time.Millisecond, 10*time.Millisecond)
	if n := len(h.screen.readings()); n != 1 {
		t.Fatalf("drew %d times in one cycle, want 1", n)
	}
}

func TestSteadyValueTenSeconds(t *testing.T) {
	h := newHarness()
	h.sensor.reading = 21300

	// Five full cycles at the 2 s cadence.
	h.run(10500*time.Millisecond, 50*time.Millisecond)

	rs := h.screen.readings()
	if len(rs) != 1 {
		t.Fatalf("steady value drew %d times over 5 cycles, want 1", len(rs))
	}
	if rs[0].c != 21300 || rs[0].f != 70340 {
		t.Fatalf("drew %d/%d, want 21300/70340", rs[0].c, rs[0].f)
	}
	if h.sensor.requests < 5 {
		t.Fatalf("only %d conversion requests in 10s", h.sensor.requests)
	}
}

func TestRedrawCoalescesToLatestValue(t *testing.T) {
	// Two qualifying changes armed before a consuming tick coalesce: the
	// flag is a single bit and the reading fields hold the newest value, so
	// the one redraw shows the latest change and the earlier one is
	// silently dropped. Intentional behaviour, not a bug.
	sensor := &fakeSensor{}
	screen := &fakeScreen{}
	p := New(Config{}, sensor, screen, nil)

	p.redrawPending = true
	p.lastC, p.lastF = 21000, types.MilliC(21000).Fahrenheit()
	p.redrawPending = true
	p.lastC, p.lastF = 22000, types.MilliC(22000).Fahrenheit()
	p.phase = PhaseEvaluate
	p.phaseEntry = time.Unix(0, 0)

	p.Tick(time.Unix(0, 0).Add(time.Millisecond))

	rs := screen.readings()
	if len(rs) != 1 {
		t.Fatalf("drew %d times, want 1", len(rs))
	}
	if rs[0].c != 22000 {
		t.Fatalf("drew %d, want the latest value 22000", rs[0].c)
	}
	if p.redrawPending {
		t.Fatal("flag not cleared after consumption")
	}
}

type recordingEmitter struct {
	events []Event
}

func (r *recordingEmitter) Emit(ev Event) { r.events = append(r.events, ev) }

func TestEventsPublishedOnEdges(t *testing.T) {
	sensor := &fakeSensor{reading: 21300}
	screen := &fakeScreen{}
	em := &recordingEmitter{}
	p := New(Config{}, sensor, screen, em)

	h := &harness{p: p, sensor: sensor, screen: screen, now: time.Unix(0, 0)}
	h.cycle()

	if len(em.events) != 1 || em.events[0].Kind != types.KindTemperature {
		t.Fatalf("events = %+v, want one temperature event", em.events)
	}
	if em.events[0].Reading.MilliF != 70340 {
		t.Fatalf("event m°F = %d, want 70340", em.events[0].Reading.MilliF)
	}

	sensor.reading = types.DisconnectedMilliC
	h.cycle()
	last := em.events[len(em.events)-1]
	if last.Kind != types.KindConnectivity || last.Connected {
		t.Fatalf("last event = %+v, want disconnected edge", last)
	}
}
