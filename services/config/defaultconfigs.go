package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPico = `{
  "sensor": {
    "resolution": 12
  },
  "poll": {
    "convert_latency_ms": 750,
    "read_interval_ms": 2000,
    "hysteresis_millic": 100
  },
  "display": {
    "rotation": 3
  },
  "console": {
    "baud": 115200
  },
  "heartbeat": {
    "interval_s": 5
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
}
