package types

// ---- Capability kinds ----

type Kind string

const (
	KindTemperature  Kind = "temperature"
	KindConnectivity Kind = "connectivity"
)

// Info envelope published once per capability.
type Info struct {
	SchemaVersion int         `json:"schema_version"`
	Driver        string      `json:"driver"`
	Detail        interface{} `json:"detail,omitempty"`
}

type TemperatureInfo struct {
	Sensor     string `json:"sensor"`     // "ds18b20"
	Resolution uint8  `json:"resolution"` // bits, 9..12
}

// ---- Fixed-point temperature values ----

// MilliC is a temperature in thousandths of a degree Celsius.
// Fixed point keeps the hot path float-free and the Fahrenheit
// conversion exact: 21300 m°C -> 70340 m°F.
type MilliC int32

// MilliF is a temperature in thousandths of a degree Fahrenheit.
type MilliF int32

// DisconnectedMilliC is the sentinel reading that encodes "no valid
// measurement" (-127 °C, the DallasTemperature DEVICE_DISCONNECTED_C
// convention, below the DS18B20 range).
const DisconnectedMilliC MilliC = -127000

// Fahrenheit converts exactly: F = C*9/5 + 32.
func (c MilliC) Fahrenheit() MilliF {
	return MilliF(int32(c)*9/5 + 32000)
}

// TemperatureValue is the payload published for each valid reading.
type TemperatureValue struct {
	MilliC MilliC `json:"milli_c"`
	MilliF MilliF `json:"milli_f"`
}

// ConnectivityValue is published on every connect/disconnect edge.
type ConnectivityValue struct {
	Connected bool `json:"connected"`
}
