package encode

import (
	"sync"
	"time"
)

// minBitsPerFrame bounds how thin a single frame's allotment is allowed to
// get before quality becomes the bottleneck instead of bitrate.
const minBitsPerFrame = 40_000

// AdaptiveBitrate runs an AIMD congestion loop over an Encoder: multiplicative
// decrease on sustained packet loss, gentle additive increase once conditions
// hold clean for a few consecutive samples. It has no notion of RTT because
// the transport layer here only surfaces receiver-report loss fractions, not
// SR/RR round-trip timestamps.
type AdaptiveBitrate struct {
	mu         sync.Mutex
	encoder    Encoder
	minBitrate int
	maxBitrate int
	cooldown   time.Duration
	lastAdjust time.Time
	target     int

	smoothedLoss float64
	samples      int
	stableCount  int
}

func NewAdaptiveBitrate(encoder Encoder, minBitrate, maxBitrate, initialBitrate int) *AdaptiveBitrate {
	if initialBitrate <= 0 {
		initialBitrate = minBitrate
	}
	return &AdaptiveBitrate{
		encoder:    encoder,
		minBitrate: minBitrate,
		maxBitrate: maxBitrate,
		cooldown:   500 * time.Millisecond,
		target:     clampInt(initialBitrate, minBitrate, maxBitrate),
	}
}

// Update feeds a fresh packet-loss-fraction sample (0..1) from a receiver
// report and adjusts the encoder's bitrate when the cooldown has elapsed.
func (a *AdaptiveBitrate) Update(fractionLost float64) {
	if a == nil || a.encoder == nil {
		return
	}
	if fractionLost < 0 {
		fractionLost = 0
	}
	if fractionLost > 1 {
		fractionLost = 1
	}

	a.mu.Lock()
	now := time.Now()
	a.samples++
	if a.samples == 1 {
		a.smoothedLoss = fractionLost
	} else {
		const alpha = 0.3
		a.smoothedLoss = alpha*fractionLost + (1-alpha)*a.smoothedLoss
	}

	if !a.lastAdjust.IsZero() && now.Sub(a.lastAdjust) < a.cooldown {
		a.mu.Unlock()
		return
	}
	if a.samples < 3 {
		a.mu.Unlock()
		return
	}

	loss := a.smoothedLoss
	degrade := loss >= 0.05
	upgrade := loss <= 0.01

	if degrade {
		a.stableCount = 0
	} else if upgrade {
		a.stableCount++
	} else if a.stableCount > 0 {
		a.stableCount--
	}

	const stableRequired = 2
	newBitrate := a.target
	switch {
	case degrade:
		newBitrate = clampInt(int(float64(a.target)*0.70), a.minBitrate, a.maxBitrate)
	case a.stableCount >= stableRequired && a.target < a.maxBitrate:
		step := a.maxBitrate / 20
		if step < 100_000 {
			step = 100_000
		}
		newBitrate = clampInt(a.target+step, a.minBitrate, a.maxBitrate)
		a.stableCount = 0
	}

	if newBitrate == a.target {
		a.mu.Unlock()
		return
	}
	a.target = newBitrate
	a.lastAdjust = now
	encoder := a.encoder
	a.mu.Unlock()

	encoder.SetBitrate(newBitrate)
}

// TargetBitrate returns the controller's current bitrate target.
func (a *AdaptiveBitrate) TargetBitrate() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.target
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
