// Package transport wraps pion/webrtc into the "room" abstraction the
// session orchestrator drives: one peer connection, one outbound video
// track, and reliable/unreliable data channels, with every mutation
// serialized through a single command goroutine so callers never touch the
// underlying PeerConnection concurrently.
package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/webrtc/v4"
	"github.com/windowpane-rc/core/internal/logging"
)

var log = logging.L("transport")

// ICEServer mirrors the subset of webrtc.ICEServer the signaling token
// carries down to the core.
type ICEServer struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

func parseICEServers(servers []ICEServer) []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(servers))
	for _, s := range servers {
		out = append(out, webrtc.ICEServer{
			URLs:       s.URLs,
			Username:   s.Username,
			Credential: s.Credential,
		})
	}
	return out
}

type command func()

// EncodedSink accepts already-encoded VP9 samples for the active track.
type EncodedSink struct {
	track *webrtc.TrackLocalStaticSample
}

func (e *EncodedSink) WriteSample(data []byte, duration time.Duration) error {
	if e.track == nil {
		return fmt.Errorf("transport: no active video track")
	}
	return e.track.WriteSample(webrtc.Sample{Data: data, Duration: duration})
}

// DataHandler receives a decoded data-channel message.
type DataHandler func(msg DataMessage)

// ParticipantHandler receives a remote participant's ID.
// OnParticipantJoined and OnParticipantLeft store handlers of this type;
// Room itself never calls them.
type ParticipantHandler func(participantID string)

// Room owns one peer connection's lifecycle.
type Room struct {
	mu       sync.Mutex
	pc       *webrtc.PeerConnection
	videoTrk *webrtc.TrackLocalStaticSample

	reliableDC   *webrtc.DataChannel
	unreliableDC *webrtc.DataChannel

	commands chan command
	stopCh   chan struct{}
	wg       sync.WaitGroup

	onData       DataHandler
	onJoined     ParticipantHandler
	onLeft       ParticipantHandler
	onRTCPStats  func(fractionLost float64)
}

// NewRoom constructs a Room with its command-serialization goroutine
// running but no peer connection yet; call Connect to create one.
func NewRoom() *Room {
	r := &Room{
		commands: make(chan command, 32),
		stopCh:   make(chan struct{}),
	}
	r.wg.Add(1)
	go r.commandLoop()
	return r
}

func (r *Room) commandLoop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.stopCh:
			return
		case cmd := <-r.commands:
			cmd()
		}
	}
}

// do schedules fn on the command goroutine and blocks for completion.
func (r *Room) do(fn func() error) error {
	done := make(chan error, 1)
	select {
	case r.commands <- func() { done <- fn() }:
	case <-r.stopCh:
		return fmt.Errorf("transport: room closed")
	}
	select {
	case err := <-done:
		return err
	case <-r.stopCh:
		return fmt.Errorf("transport: room closed")
	}
}

// Connect creates a peer connection against the given ICE servers,
// registers the playout-delay RTP header extension so the viewer can
// request low-latency delivery, and routes incoming data-channel messages
// to the OnData handler. It performs no offer/answer exchange.
func (r *Room) Connect(ctx context.Context, iceServers []ICEServer) error {
	return r.do(func() error {
		m := &webrtc.MediaEngine{}
		if err := m.RegisterDefaultCodecs(); err != nil {
			return fmt.Errorf("transport: register codecs: %w", err)
		}
		if err := m.RegisterHeaderExtension(webrtc.RTPHeaderExtensionCapability{URI: "http://www.webrtc.org/experiments/rtp-hdrext/playout-delay"}, webrtc.RTPCodecTypeVideo); err != nil {
			log.Warn("playout-delay header extension unavailable", "error", err)
		}

		api := webrtc.NewAPI(webrtc.WithMediaEngine(m))
		pc, err := api.NewPeerConnection(webrtc.Configuration{ICEServers: parseICEServers(iceServers)})
		if err != nil {
			return fmt.Errorf("transport: new peer connection: %w", err)
		}

		pc.OnDataChannel(func(dc *webrtc.DataChannel) {
			dc.OnMessage(func(m webrtc.DataChannelMessage) {
				msg, err := Decode(m.Data)
				if err != nil {
					log.Warn("dropping malformed data-channel message", "error", err)
					return
				}
				if r.onData != nil {
					r.onData(msg)
				}
			})
		})

		r.pc = pc
		return nil
	})
}

// PublishVideo creates the VP9 sample track and an EncodedSink wrapping it.
// The width argument is not used; no bitrate limit is set on the track.
func (r *Room) PublishVideo(width int) (*EncodedSink, error) {
	var sink *EncodedSink
	err := r.do(func() error {
		track, err := webrtc.NewTrackLocalStaticSample(
			webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP9},
			VideoTrackName, "windowpane",
		)
		if err != nil {
			return fmt.Errorf("transport: new video track: %w", err)
		}
		sender, err := r.pc.AddTrack(track)
		if err != nil {
			return fmt.Errorf("transport: add track: %w", err)
		}
		go r.drainRTCP(sender)
		r.videoTrk = track
		sink = &EncodedSink{track: track}
		return nil
	})
	return sink, err
}

// drainRTCP reads PLI/NACK feedback off the sender so pion's internal
// buffers don't back up; a future keyframe-on-PLI hook can read this
// stream without changing the publish path.
func (r *Room) drainRTCP(sender *webrtc.RTPSender) {
	buf := make([]byte, 1500)
	for {
		n, _, err := sender.Read(buf)
		if err != nil {
			return
		}
		pkts, err := rtcp.Unmarshal(buf[:n])
		if err != nil {
			continue
		}
		for _, p := range pkts {
			switch pkt := p.(type) {
			case *rtcp.PictureLossIndication:
				log.Debug("received PLI, next frame should be a keyframe")
			case *rtcp.ReceiverReport:
				if r.onRTCPStats == nil || len(pkt.Reports) == 0 {
					continue
				}
				r.onRTCPStats(float64(pkt.Reports[0].FractionLost) / 256.0)
			}
		}
	}
}

// PublishData opens the reliable and unreliable data channels used for
// click/keystroke (reliable) and cursor-move/wheel (unreliable) traffic.
func (r *Room) PublishData() error {
	return r.do(func() error {
		ordered := true
		reliable, err := r.pc.CreateDataChannel("control", &webrtc.DataChannelInit{Ordered: &ordered})
		if err != nil {
			return fmt.Errorf("transport: reliable data channel: %w", err)
		}
		maxRetransmits := uint16(0)
		unorderedFlag := false
		unreliable, err := r.pc.CreateDataChannel("cursor", &webrtc.DataChannelInit{
			Ordered:        &unorderedFlag,
			MaxRetransmits: &maxRetransmits,
		})
		if err != nil {
			return fmt.Errorf("transport: unreliable data channel: %w", err)
		}
		r.reliableDC = reliable
		r.unreliableDC = unreliable
		return nil
	})
}

// Send publishes a tagged message on the reliable or unreliable channel.
func (r *Room) Send(msgType string, payload any, reliable bool) error {
	data, err := Encode(msgType, payload)
	if err != nil {
		return err
	}
	return r.do(func() error {
		dc := r.unreliableDC
		if reliable {
			dc = r.reliableDC
		}
		if dc == nil {
			return fmt.Errorf("transport: data channel not open")
		}
		return dc.Send(data)
	})
}

func (r *Room) OnData(handler DataHandler)                    { r.onData = handler }
func (r *Room) OnParticipantJoined(handler ParticipantHandler) { r.onJoined = handler }
func (r *Room) OnParticipantLeft(handler ParticipantHandler)   { r.onLeft = handler }

// OnRTCPStats registers a callback invoked with the receiver-reported packet
// loss fraction (0..1) every time a Receiver Report arrives on the video
// sender, driving bitrate adaptation without transport depending on encode.
func (r *Room) OnRTCPStats(handler func(fractionLost float64)) { r.onRTCPStats = handler }

// Close tears down the peer connection and stops the command goroutine.
func (r *Room) Close() error {
	close(r.stopCh)
	r.wg.Wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pc != nil {
		return r.pc.Close()
	}
	return nil
}
