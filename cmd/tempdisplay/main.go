package main

import (
	"context"
	"time"

	"tempdisplay-go/bus"
	"tempdisplay-go/internal/platform"
	"tempdisplay-go/services/config"
	"tempdisplay-go/services/console"
	"tempdisplay-go/services/display"
	"tempdisplay-go/services/heartbeat"
	"tempdisplay-go/services/poller"
	"tempdisplay-go/services/sensor"
	"tempdisplay-go/services/telemetry"
	"tempdisplay-go/types"
)

const device = "pico"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	cfg, err := config.Load(device)
	if err != nil {
		println("config:", err.Error())
		return
	}

	p, err := platform.Setup(cfg)
	if err != nil {
		println("platform:", err.Error())
		return
	}

	screen := display.NewRenderer(p.Surface)
	screen.Splash("Initialising...")
	time.Sleep(500 * time.Millisecond)

	adaptor := sensor.New(p.SensorBus, uint8(cfg.Sensor.Resolution))

	ctx := context.Background()
	b := bus.NewBus(8)

	svc := config.NewConfigService()
	svc.Start(context.WithValue(ctx, config.CtxDeviceKey, device), b.NewConnection("config"))

	hb := &heartbeat.Service{}
	if err := hb.Start(ctx, b.NewConnection("heartbeat")); err != nil {
		println("heartbeat:", err.Error())
	}

	cons := &console.Service{Out: p.ConsoleOut}
	if err := cons.Start(ctx, b.NewConnection("console")); err != nil {
		println("console:", err.Error())
	}

	pub := telemetry.NewPublisher(b.NewConnection("poller"))
	pub.PublishInfo(types.Info{
		SchemaVersion: 1,
		Driver:        "ds18b20",
		Detail: types.TemperatureInfo{
			Sensor:     "ds18b20",
			Resolution: uint8(cfg.Sensor.Resolution),
		},
	})

	screen.DrawLayout(true)

	loop := poller.New(cfg.PollerConfig(adaptor.ConversionLatency()), adaptor, screen, pub)

	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for now := range tick.C {
		loop.Tick(now)
	}
}
