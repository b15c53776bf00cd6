package config

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tempdisplay-go/bus"
	"tempdisplay-go/services/poller"
	"tempdisplay-go/types"
	"tempdisplay-go/x/mathx"
)

// -----------------------------------------------------------------------------
// String constants (live in flash, not RAM)
// -----------------------------------------------------------------------------

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxDeviceKey = "device" // context key used for device ID
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// -----------------------------------------------------------------------------
// Typed sections
// -----------------------------------------------------------------------------

type Sensor struct {
	Resolution int `json:"resolution"` // bits, 9..12
}

type Poll struct {
	ConvertLatencyMs int `json:"convert_latency_ms"` // 0 derives from resolution
	ReadIntervalMs   int `json:"read_interval_ms"`
	HysteresisMilliC int `json:"hysteresis_millic"`
}

type Display struct {
	Rotation int `json:"rotation"` // quarter turns, 0..3
}

type Console struct {
	Baud int `json:"baud"`
}

type Heartbeat struct {
	IntervalS int `json:"interval_s"`
}

type Config struct {
	Sensor    Sensor    `json:"sensor"`
	Poll      Poll      `json:"poll"`
	Display   Display   `json:"display"`
	Console   Console   `json:"console"`
	Heartbeat Heartbeat `json:"heartbeat"`
}

// PollerConfig translates the poll section into control-loop timings.
func (c Config) PollerConfig(latency time.Duration) poller.Config {
	if c.Poll.ConvertLatencyMs > 0 {
		latency = time.Duration(c.Poll.ConvertLatencyMs) * time.Millisecond
	}
	return poller.Config{
		ConvertLatency: latency,
		ReadInterval:   time.Duration(c.Poll.ReadIntervalMs) * time.Millisecond,
		Hysteresis:     types.MilliC(c.Poll.HysteresisMilliC),
	}
}

// Decode parses and validates a raw JSON config.
func Decode(raw []byte) (Config, error) {
	var c Config
	if err := json.Unmarshal(raw, &c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if !mathx.Between(c.Sensor.Resolution, 9, 12) {
		return errors.New("sensor resolution out of range")
	}
	if c.Poll.ReadIntervalMs <= 0 {
		return errors.New("read interval must be positive")
	}
	if c.Poll.ConvertLatencyMs < 0 {
		return errors.New("convert latency must not be negative")
	}
	if c.Poll.HysteresisMilliC < 0 {
		return errors.New("hysteresis must not be negative")
	}
	if !mathx.Between(c.Display.Rotation, 0, 3) {
		return errors.New("display rotation out of range")
	}
	if c.Console.Baud <= 0 {
		return errors.New("console baud must be positive")
	}
	if c.Heartbeat.IntervalS < 0 {
		return errors.New("heartbeat interval must not be negative")
	}
	return nil
}

// Load resolves and decodes the embedded config for a device.
func Load(device string) (Config, error) {
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return Config{}, errors.New("no embedded config for device: " + device)
	}
	return Decode(raw)
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// publishConfig reads the device config from embedded data and publishes each
// section as a retained message.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errors.New("missing device ID in context")
	}

	cfg, err := Load(device)
	if err != nil {
		return err
	}

	sections := map[string]any{
		"sensor":    cfg.Sensor,
		"poll":      cfg.Poll,
		"display":   cfg.Display,
		"console":   cfg.Console,
		"heartbeat": cfg.Heartbeat,
	}
	for k, v := range sections {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), v, true))
	}

	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		_ = s.publishConfig(ctx, conn)
	}()
}
