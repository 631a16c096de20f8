package session

import (
	"context"
	"time"
)

// tickStaleAfter is how long a session can go without a controller-driven
// Tick/TickResponse round trip before the supervision loop treats the
// data channel as unresponsive. Ground truth: original_source's
// room_service.rs drives this same round trip (a controller-originated
// Tick echoed back on the "tick_response" topic) to let the controller
// measure RTT; nothing on the core side previously watched for its
// absence, so a stalled channel went unnoticed until the viewer's own UI
// flagged it.
const (
	tickStaleAfter   = 20 * time.Second
	pingPollInterval = 5 * time.Second
)

// runPingLoop periodically checks whether the active session's data
// channel is still producing Tick traffic, logging a warning once it goes
// stale so operators can correlate playback freezes with a dead data
// channel rather than a dead video track.
func (o *Orchestrator) runPingLoop(ctx context.Context) {
	defer o.wg.Done()
	ticker := time.NewTicker(pingPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-o.stopCh:
			return
		case <-ticker.C:
			o.checkTickStaleness()
		}
	}
}

func (o *Orchestrator) checkTickStaleness() {
	o.mu.Lock()
	active := o.room != nil
	lastTick := o.lastTickAt
	o.mu.Unlock()

	if !active || lastTick.IsZero() {
		return
	}
	if since := time.Since(lastTick); since > tickStaleAfter {
		log.Warn("no tick received from controller, data channel may be stalled", "since", since)
	}
}
