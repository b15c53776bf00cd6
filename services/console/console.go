// Package console mirrors telemetry to a line-oriented debug output: the
// UART on firmware builds, stdout on host builds. It is a bus consumer and
// never touches the control loop.
package console

import (
	"context"
	"io"

	"tempdisplay-go/bus"
	"tempdisplay-go/services/display"
	"tempdisplay-go/types"
	"tempdisplay-go/x/fmtx"
)

type Service struct {
	Out io.Writer
}

// Start subscribes and logs until ctx is cancelled.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	sub := conn.Subscribe(bus.T("temp", "+"))
	go s.loop(ctx, conn, sub)
	return nil
}

func (s *Service) loop(ctx context.Context, conn *bus.Connection, sub *bus.Subscription) {
	defer conn.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sub.Channel():
			if msg == nil {
				return
			}
			if line := Line(msg); line != "" {
				_, _ = fmtx.Fprintf(s.Out, "%s\n", line)
			}
		}
	}
}

// Line formats one telemetry message; unknown payloads yield "".
func Line(msg *bus.Message) string {
	switch v := msg.Payload.(type) {
	case types.TemperatureValue:
		return fmtx.Sprintf("temp: %s C / %s F",
			display.FormatMilli(int32(v.MilliC)), display.FormatMilli(int32(v.MilliF)))
	case types.ConnectivityValue:
		if v.Connected {
			return "sensor: connected"
		}
		return "sensor: disconnected"
	}
	return ""
}
