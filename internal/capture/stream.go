// Package capture implements the screen-capture pipeline: one Stream per
// active session, driving a 16ms capture cadence, converting BGRA frames to
// NV12, scaling them to the published resolution, and restarting the
// underlying platform capturer on permanent failure.
package capture

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/windowpane-rc/core/internal/geometry"
	"github.com/windowpane-rc/core/internal/logging"
	"github.com/windowpane-rc/core/internal/platform"
)

var log = logging.L("capture")

const (
	captureInterval = 16 * time.Millisecond
	maxFailures      = 5
	brandExclusion   = "windowpane"
)

// RuntimeMessage is posted to the stream's owner when something happens on
// the capture-cadence or failure-supervision goroutines that the
// orchestrator's event loop needs to react to.
type RuntimeMessage int

const (
	MessageFailed RuntimeMessage = iota
	MessageUserStoppedCapture
	MessageFatal
	// MessageDisplayChanged is posted when the platform adapter detects a
	// secure-desktop transition (UAC, lock screen) that invalidates any
	// cached window/display geometry downstream. Not a failure: capture
	// keeps running.
	MessageDisplayChanged
)

// VideoSink receives scaled NV12 frames ready for encoding and publishing.
type VideoSink interface {
	WriteNV12(frame []byte, width, height int, pts time.Duration) error
}

// sharedBuffers holds everything Stream.Copy() must carry forward into a
// freshly restarted capturer so an in-flight restart is invisible to
// everything downstream of the stream (encoder, overlay, orchestrator).
type sharedBuffers struct {
	mu             sync.Mutex
	frame          geometry.Frame
	captureBuf     []byte
	streamBuf      []byte
	captureW       int
	captureH       int
	streamW        int
	streamH        int
	sink           VideoSink
	failuresCount  atomic.Uint64
}

// Stream owns one platform capturer and the buffers it feeds.
type Stream struct {
	adapter    platform.Adapter
	sourceID   uint32
	targetRes  geometry.Extent
	shared     *sharedBuffers
	messages   chan<- RuntimeMessage

	mu        sync.Mutex
	capturer  platform.ContinuousCapturer
	running   bool
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewStream allocates a Stream bound to a target stream resolution
// (typically the room's negotiated max resolution). messages delivers
// Failed/UserStoppedCapture/Fatal notifications to the orchestrator.
func NewStream(adapter platform.Adapter, targetRes geometry.Extent, messages chan<- RuntimeMessage) *Stream {
	return &Stream{
		adapter:   adapter,
		targetRes: targetRes,
		shared:    &sharedBuffers{},
		messages:  messages,
	}
}

// Start begins capturing sourceID on a dedicated cadence goroutine plus a
// failure-supervision goroutine that posts MessageFailed to the owner (which
// restarts the capturer via Copy) until FailuresCount exceeds maxFailures,
// then posts MessageFatal instead.
func (s *Stream) Start(sourceID uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("capture: stream already running")
	}

	capturer, err := s.adapter.NewCapturer(platform.CaptureConfig{SourceID: sourceID})
	if err != nil {
		return fmt.Errorf("capture: new capturer: %w", err)
	}
	capturer.SetExcludedPIDs(excludedPIDs(context.Background()))
	if err := capturer.Start(sourceID); err != nil {
		return fmt.Errorf("capture: start: %w", err)
	}

	s.sourceID = sourceID
	s.capturer = capturer
	s.running = true
	s.stopCh = make(chan struct{})
	s.stopOnce = sync.Once{}

	errCh := make(chan RuntimeMessage, 4)
	s.wg.Add(2)
	go s.cadenceLoop(capturer, errCh)
	go s.supervise(errCh)
	return nil
}

// Stop halts the cadence and supervision goroutines and closes the
// underlying capturer. Idempotent and safe to call concurrently with the
// supervision goroutine's own shutdown on a terminal failure.
func (s *Stream) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stopCh := s.stopCh
	capturer := s.capturer
	s.mu.Unlock()

	s.stopOnce.Do(func() { close(stopCh) })
	s.wg.Wait()
	if capturer != nil {
		capturer.Close()
	}
}

// Copy stops the current capturer (if running) and returns a new Stream
// that shares this one's frame/buffer/sink/failure-count state by
// reference, so a restart after a permanent failure is invisible to the
// encoder and overlay, which keep reading through the same shared struct.
func (s *Stream) Copy() (*Stream, error) {
	s.Stop()
	return &Stream{
		adapter:   s.adapter,
		targetRes: s.targetRes,
		shared:    s.shared,
		messages:  s.messages,
	}, nil
}

// SetSink lazily binds the video sink once the transport room publishes a
// track; only the orchestrator calls this.
func (s *Stream) SetSink(sink VideoSink) {
	s.shared.mu.Lock()
	s.shared.sink = sink
	s.shared.mu.Unlock()
}

// FailuresCount returns the number of consecutive permanent failures
// observed across restarts sharing this stream's buffers.
func (s *Stream) FailuresCount() uint64 {
	return s.shared.failuresCount.Load()
}

func (s *Stream) StreamExtent() geometry.Extent {
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()
	return geometry.Extent{Width: float64(s.shared.streamW), Height: float64(s.shared.streamH)}
}

func (s *Stream) cadenceLoop(capturer platform.ContinuousCapturer, errCh chan<- RuntimeMessage) {
	defer s.wg.Done()
	ticker := time.NewTicker(captureInterval)
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if switcher, ok := s.adapter.(platform.DesktopSwitchSource); ok && switcher.ConsumeDesktopSwitch() {
				select {
				case s.messages <- MessageDisplayChanged:
				default:
				}
			}
			result, frame := capturer.CaptureFrame()
			s.handleFrame(result, frame, time.Since(start), errCh)
		}
	}
}

func (s *Stream) handleFrame(result platform.CaptureResult, frame *platform.DesktopFrame, pts time.Duration, errCh chan<- RuntimeMessage) {
	switch result {
	case platform.CaptureErrorTemporary:
		log.Debug("transient capture error")
		return
	case platform.CaptureErrorPermanent:
		s.shared.failuresCount.Add(1)
		select {
		case errCh <- MessageFailed:
		default:
		}
		return
	case platform.CaptureErrorUserStopped:
		select {
		case errCh <- MessageUserStoppedCapture:
		default:
		}
		return
	}
	if frame == nil {
		return
	}
	s.shared.failuresCount.Store(0)
	s.ingest(frame, pts)
}

func (s *Stream) ingest(frame *platform.DesktopFrame, pts time.Duration) {
	sb := s.shared
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.frame.OriginX != float64(frame.OriginX) || sb.frame.OriginY != float64(frame.OriginY) ||
		sb.frame.Extent.Width != float64(frame.Width) || sb.frame.Extent.Height != float64(frame.Height) {
		sb.frame = geometry.Frame{
			OriginX: float64(frame.OriginX),
			OriginY: float64(frame.OriginY),
			Extent:  geometry.Extent{Width: float64(frame.Width), Height: float64(frame.Height)},
		}
	}

	if sb.captureW != frame.Width || sb.captureH != frame.Height {
		sb.captureW, sb.captureH = frame.Width, frame.Height
		sb.captureBuf = make([]byte, frame.Width*frame.Height+frame.Width*frame.Height/2)
		sw, sh := geometry.AspectFit(uint32(frame.Width), uint32(frame.Height), uint32(s.targetRes.Width), uint32(s.targetRes.Height))
		sb.streamW, sb.streamH = int(sw), int(sh)
		sb.streamBuf = make([]byte, sb.streamW*sb.streamH+sb.streamW*sb.streamH/2)
	}

	bgraToNV12(sb.captureBuf, frame.BGRA, frame.Width, frame.Height, frame.Stride)
	scaleNV12(sb.streamBuf, sb.streamW, sb.streamH, sb.captureBuf, sb.captureW, sb.captureH)

	if sb.sink != nil {
		if err := sb.sink.WriteNV12(sb.streamBuf, sb.streamW, sb.streamH, pts); err != nil {
			log.Warn("video sink write failed", "error", err)
		}
	}
}

func (s *Stream) supervise(errCh <-chan RuntimeMessage) {
	defer s.wg.Done()
	stopCh := s.stopCh
	for {
		select {
		case <-stopCh:
			return
		case msg := <-errCh:
			// A terminal message means the cadence goroutine has nothing
			// left to usefully do: stop it here rather than wait for a
			// caller to notice and call Stop(), which would otherwise
			// leave the cadence goroutine spinning on a dead capturer.
			s.stopOnce.Do(func() { close(stopCh) })
			switch msg {
			case MessageFailed:
				count := s.FailuresCount()
				if count > maxFailures {
					log.Error("capture failed too many times, exiting", "count", count)
					s.messages <- MessageFatal
					return
				}
				log.Warn("capture failed, restarting", "count", count)
				s.messages <- MessageFailed
				return
			case MessageUserStoppedCapture:
				s.messages <- MessageUserStoppedCapture
				return
			}
		}
	}
}

// excludedPIDs returns the PIDs of running processes whose executable name
// contains this agent's own brand string, so a shared screen never shows
// the controller its own capture UI.
func excludedPIDs(ctx context.Context) []int32 {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil
	}
	var pids []int32
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if containsFold(name, brandExclusion) {
			pids = append(pids, p.Pid)
		}
	}
	return pids
}

func containsFold(s, sub string) bool {
	if sub == "" {
		return true
	}
	ls, lsub := toLower(s), toLower(sub)
	for i := 0; i+len(lsub) <= len(ls); i++ {
		if ls[i:i+len(lsub)] == lsub {
			return true
		}
	}
	return false
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
