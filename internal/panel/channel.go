package panel

import (
	"encoding/json"

	"srvpanel/internal/constants"
	"srvpanel/internal/models"
)

// Transport is the externally-owned, possibly reconnecting connection the
// stats channel subscribes against. Subscriptions return release functions;
// after release no callback fires again.
type Transport interface {
	// Connected reports whether the transport currently holds a live
	// connection.
	Connected() bool
	// Send emits a fire-and-forget control message. Implementations drop the
	// message when disconnected.
	Send(event string, args ...string) error
	// Subscribe registers a handler for inbound events of one kind. The
	// handler receives the first payload argument, or "" when none.
	Subscribe(event string, fn func(payload string)) (release func())
	// SubscribeConnect registers a handler invoked on every transition into
	// the connected state, including reconnects.
	SubscribeConnect(fn func()) (release func())
}

// Channel ties the stats request/response protocol to a transport: it asks
// the daemon for stats once per connect event and forwards every decodable
// stats payload as a snapshot. Malformed payloads are dropped without
// surfacing anything; stats are best-effort telemetry, not a correctness
// channel.
type Channel struct {
	transport  Transport
	onSnapshot func(models.ResourceSnapshot)
	releases   []func()
}

// OpenChannel subscribes to the transport and starts the request cycle. If
// the transport is already connected, one stats request is sent immediately;
// each later (re)connect triggers exactly one more. Close releases the
// subscriptions.
func OpenChannel(transport Transport, onSnapshot func(models.ResourceSnapshot)) *Channel {
	ch := &Channel{
		transport:  transport,
		onSnapshot: onSnapshot,
	}
	ch.releases = append(ch.releases,
		transport.SubscribeConnect(ch.requestStats),
		transport.Subscribe(constants.EventStats, ch.handleStats),
	)
	if transport.Connected() {
		ch.requestStats()
	}
	return ch
}

// Close releases the channel's transport subscriptions. No handler fires
// after Close returns.
func (ch *Channel) Close() {
	for _, release := range ch.releases {
		release()
	}
	ch.releases = nil
}

func (ch *Channel) requestStats() {
	if !ch.transport.Connected() {
		return
	}
	// Fire-and-forget; the transport performs no retry and neither do we.
	_ = ch.transport.Send(constants.EventRequestStats)
}

func (ch *Channel) handleStats(payload string) {
	var stats models.StatsPayload
	if err := json.Unmarshal([]byte(payload), &stats); err != nil {
		// Silently retain the previous state on malformed payloads.
		return
	}
	if ch.onSnapshot != nil {
		ch.onSnapshot(stats.Snapshot())
	}
}
