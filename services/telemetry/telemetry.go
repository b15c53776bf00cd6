// Package telemetry publishes poller events onto the in-process bus so
// consumers (the debug console, tests) stay decoupled from the control
// loop. Publishing is fire-and-forget and never blocks a tick.
package telemetry

import (
	"tempdisplay-go/bus"
	"tempdisplay-go/services/poller"
	"tempdisplay-go/types"
)

var (
	TopicInfo    = bus.T("temp", "info")
	TopicReading = bus.T("temp", "reading")
	TopicConn    = bus.T("temp", "conn")
)

type Publisher struct {
	conn *bus.Connection
}

func NewPublisher(conn *bus.Connection) *Publisher {
	return &Publisher{conn: conn}
}

var _ poller.Emitter = (*Publisher)(nil)

// PublishInfo announces the capability once at startup, retained so any
// consumer can discover what is measuring.
func (p *Publisher) PublishInfo(info types.Info) {
	p.conn.Publish(p.conn.NewMessage(TopicInfo, info, true))
}

// Emit maps an event to its topic. Messages are retained so a late
// subscriber sees the current state immediately.
func (p *Publisher) Emit(ev poller.Event) {
	switch ev.Kind {
	case types.KindTemperature:
		p.conn.Publish(p.conn.NewMessage(TopicReading, ev.Reading, true))
	case types.KindConnectivity:
		p.conn.Publish(p.conn.NewMessage(TopicConn, types.ConnectivityValue{Connected: ev.Connected}, true))
	}
}
