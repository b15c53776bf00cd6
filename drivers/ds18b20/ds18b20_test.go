package ds18b20

import (
	"testing"

	"tempdisplay-go/drivers/onewire"
)

// fakeBus emulates a single DS18B20 at the byte level: it records the
// command stream and serves a canned scratchpad on READ SCRATCHPAD.
type fakeBus struct {
	present    bool
	scratchpad [9]byte
	writes     []byte
	resets     int
	reads      int
}

func (f *fakeBus) Reset() error {
	f.resets++
	if !f.present {
		return onewire.ErrNoPresence
	}
	return nil
}

func (f *fakeBus) Skip() error { return f.WriteByte(0xCC) }

func (f *fakeBus) WriteByte(b byte) error {
	f.writes = append(f.writes, b)
	return nil
}

func (f *fakeBus) ReadByte() (byte, error) {
	b := f.scratchpad[f.reads%9]
	f.reads++
	return b, nil
}

// scratchpadFor builds a valid scratchpad for a raw sixteenths reading.
func scratchpadFor(raw int16, resolution uint8) [9]byte {
	var sp [9]byte
	sp[0] = byte(raw)
	sp[1] = byte(raw >> 8)
	sp[4] = (resolution-9)<<5 | 0x1F
	sp[8] = onewire.CRC8(sp[:8])
	return sp
}

func TestConfigureWritesResolution(t *testing.T) {
	f := &fakeBus{present: true}
	d := New(f)
	if err := d.Configure(Config{Resolution: 12}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	// SKIP ROM, WRITE SCRATCHPAD, TH, TL, config register.
	want := []byte{0xCC, 0x4E, 0x00, 0x00, 0x7F}
	if len(f.writes) != len(want) {
		t.Fatalf("writes = %#v, want %#v", f.writes, want)
	}
	for i := range want {
		if f.writes[i] != want[i] {
			t.Fatalf("write[%d] = %#02x, want %#02x", i, f.writes[i], want[i])
		}
	}
}

func TestConfigureClampsResolution(t *testing.T) {
	f := &fakeBus{present: true}
	d := New(f)
	if err := d.Configure(Config{Resolution: 15}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if d.Resolution() != 12 {
		t.Fatalf("Resolution = %d, want 12", d.Resolution())
	}
}

func TestTriggerIssuesConvertT(t *testing.T) {
	f := &fakeBus{present: true}
	d := New(f)
	if err := d.Trigger(); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if n := len(f.writes); n == 0 || f.writes[n-1] != 0x44 {
		t.Fatalf("last write = %#v, want CONVERT T (0x44)", f.writes)
	}
}

func TestTriggerHintPerResolution(t *testing.T) {
	for res, wantMs := range map[uint8]int64{9: 93, 10: 187, 11: 375, 12: 750} {
		f := &fakeBus{present: true}
		d := New(f)
		if err := d.Configure(Config{Resolution: res}); err != nil {
			t.Fatalf("Configure(%d): %v", res, err)
		}
		if got := d.TriggerHint().Milliseconds(); got != wantMs {
			t.Fatalf("TriggerHint at %d bits = %dms, want %dms", res, got, wantMs)
		}
	}
}

func TestCollectParsesTemperature(t *testing.T) {
	// 21.3 °C is not representable in sixteenths; use 21.3125 (0x0155) and
	// a plain 25.0 (0x0190).
	for _, c := range []struct {
		raw  int16
		want int32
	}{
		{0x0190, 25000},
		{0x0155, 21312}, // 21.3125 truncated to milli
		{-16, -1000},    // -1.0 °C two's complement
		{0x0550, 85000}, // power-on default reading
	} {
		f := &fakeBus{present: true, scratchpad: scratchpadFor(c.raw, 12)}
		d := New(f)
		var s Sample
		if err := d.Collect(&s); err != nil {
			t.Fatalf("Collect(raw=%#04x): %v", uint16(c.raw), err)
		}
		if got := s.MilliCelsius(); got != c.want {
			t.Fatalf("MilliCelsius(raw=%#04x) = %d, want %d", uint16(c.raw), got, c.want)
		}
	}
}

func TestCollectRejectsBadCRC(t *testing.T) {
	sp := scratchpadFor(0x0190, 12)
	sp[8] ^= 0xFF
	f := &fakeBus{present: true, scratchpad: sp}
	d := New(f)
	if err := d.Collect(nil); err != ErrCRC {
		t.Fatalf("Collect with bad crc: got %v, want ErrCRC", err)
	}
}

func TestReadMilliCelsiusSentinelOnMissingDevice(t *testing.T) {
	f := &fakeBus{present: false}
	d := New(f)
	v, err := d.ReadMilliCelsius()
	if err != onewire.ErrNoPresence {
		t.Fatalf("err = %v, want ErrNoPresence", err)
	}
	if v != DisconnectedMilliC {
		t.Fatalf("value = %d, want sentinel %d", v, DisconnectedMilliC)
	}
}

func TestReducedResolutionMasksLowBits(t *testing.T) {
	// 9-bit mode leaves the low 3 bits undefined; they must read as zero.
	sp := scratchpadFor(0x0197, 9) // 25.0 plus undefined low bits
	f := &fakeBus{present: true, scratchpad: sp}
	d := New(f)
	if err := d.Configure(Config{Resolution: 9}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	f.writes = nil
	var s Sample
	if err := d.Collect(&s); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if s.Raw != 0x0190 {
		t.Fatalf("Raw = %#04x, want 0x0190", uint16(s.Raw))
	}
}
