// Package heartbeat publishes a periodic liveness beat so a watcher on the
// debug console can tell a hung control loop from a quiet one.
package heartbeat

import (
	"context"
	"time"

	"tempdisplay-go/bus"
	"tempdisplay-go/services/config"
)

var (
	topicBeat            = bus.T("sys", "heartbeat")
	topicConfigHeartbeat = bus.T("config", "heartbeat")
)

// Beat is the retained payload; Count starts at 1.
type Beat struct {
	Uptime time.Duration
	Count  int
}

type Service struct{}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, cfgSub *bus.Subscription) {
	defer conn.Unsubscribe(cfgSub)

	interval := 5 * time.Second
	tick := time.NewTicker(interval)
	defer tick.Stop()

	start := time.Now()
	count := 0

	for {
		select {
		case <-ctx.Done():
			println("Info: heartbeat service stopping")
			return
		case t := <-tick.C:
			count++
			conn.Publish(conn.NewMessage(topicBeat, Beat{Uptime: t.Sub(start), Count: count}, true))
		case msg := <-cfgSub.Channel():
			if msg == nil {
				return
			}
			if hc, ok := msg.Payload.(config.Heartbeat); ok && hc.IntervalS > 0 {
				interval = time.Duration(hc.IntervalS) * time.Second
				tick.Reset(interval)
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	go s.serviceLoop(ctx, conn, cfgSub)
	return nil
}
