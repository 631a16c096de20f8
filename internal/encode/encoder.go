// Package encode bridges the capture pipeline's raw NV12 frames to the
// transport package's VP9 sample track through a small Encoder interface,
// so the capture and transport packages never need to know about each
// other's codec details directly.
package encode

import (
	"time"

	"github.com/windowpane-rc/core/internal/logging"
)

var log = logging.L("encode")

// Encoder turns one NV12 frame into an encoded bitstream sample.
type Encoder interface {
	Encode(nv12 []byte, width, height int) (sample []byte, keyframe bool, err error)
	RequestKeyframe()
	SetBitrate(bitsPerSecond int)
	Close() error
}

// SampleWriter is the narrow part of transport.EncodedSink the encoder
// pipeline needs.
type SampleWriter interface {
	WriteSample(data []byte, duration time.Duration) error
}

// TrackSink adapts an Encoder and a SampleWriter into a capture.VideoSink,
// so internal/capture.Stream can write raw NV12 straight into the publish
// pipeline without depending on internal/transport.
type TrackSink struct {
	encoder  Encoder
	writer   SampleWriter
	lastPTS  time.Duration
}

func NewTrackSink(encoder Encoder, writer SampleWriter) *TrackSink {
	return &TrackSink{encoder: encoder, writer: writer}
}

func (t *TrackSink) WriteNV12(frame []byte, width, height int, pts time.Duration) error {
	sample, _, err := t.encoder.Encode(frame, width, height)
	if err != nil {
		return err
	}
	if sample == nil {
		return nil
	}
	duration := pts - t.lastPTS
	if duration <= 0 {
		duration = time.Second / 30
	}
	t.lastPTS = pts
	return t.writer.WriteSample(sample, duration)
}
