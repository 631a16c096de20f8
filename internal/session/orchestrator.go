// Package session implements the orchestrator: the event-loop-driven
// state machine that binds a capture source to a signaling token, creates
// and tears down the transport room, and mediates every other subsystem
// (capture, control, overlay, IPC) through one typed event channel.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/windowpane-rc/core/internal/capture"
	"github.com/windowpane-rc/core/internal/control"
	"github.com/windowpane-rc/core/internal/encode"
	"github.com/windowpane-rc/core/internal/geometry"
	"github.com/windowpane-rc/core/internal/ipc"
	"github.com/windowpane-rc/core/internal/logging"
	"github.com/windowpane-rc/core/internal/overlay"
	"github.com/windowpane-rc/core/internal/platform"
	"github.com/windowpane-rc/core/internal/transport"
)

var log = logging.L("session")

// EventKind tags the payload carried on the orchestrator's single event
// channel. Ground truth: original_source/core/src/lib.rs's UserEvent enum
// — every cross-thread notification in this process funnels through one
// channel the way that enum funnels through one winit event loop.
type EventKind int

const (
	EventGetAvailableContent EventKind = iota
	EventStartScreenShare
	EventStopScreenShare
	EventResetState
	EventTerminate
	EventCaptureFailed
	EventCaptureFatal
	EventCursorPosition
	EventMouseClick
	EventScroll
	EventKeystroke
	EventControllerCursorEnabled
	EventControllerCursorVisible
	EventParticipantConnected
	EventParticipantDisconnected
	EventTick
	EventLivekitServerURL
	EventShellPing
	EventDisplaysChanged
)

// Event is the single typed message funneled through the orchestrator's
// event loop from every goroutine that can originate one: the IPC reader,
// the capture supervisor, the mouse hook, and the transport room.
type Event struct {
	Kind          EventKind
	RequestID     string
	SourceID      uint32
	RoomToken     string
	ICEServers    []transport.ICEServer
	TargetExtent  geometry.Extent
	X, Y          float64
	Button        platform.MouseButton
	Down          bool
	Horizontal    bool
	Delta         float64
	Keystroke     control.Keystroke
	ParticipantID string
	Enabled       bool
	Visible       bool
	Seq           int64
	URL           string
}

// Orchestrator owns every long-lived subsystem for one core engine process.
type Orchestrator struct {
	adapter      platform.Adapter
	conn         *ipc.Conn
	texturesPath string

	events chan Event
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu               sync.Mutex
	room             *transport.Room
	stream           *capture.Stream
	renderer         overlay.Renderer
	arbiter          *control.Arbiter
	replayer         *control.Replayer
	keyboard         *control.Keyboard
	mouseHook        platform.MouseHook
	encoder          encode.Encoder
	adaptiveBitrate  *encode.AdaptiveBitrate
	displays         []geometry.Display
	lastSourceID     uint32
	sessionStop      chan struct{}
	lastTickAt       time.Time
	seenParticipants map[string]struct{}
	cursorEnabledFor map[string]struct{}
}

// New wires every subsystem but starts nothing: call Run to enter the
// event loop.
func New(adapter platform.Adapter, conn *ipc.Conn, texturesPath string) *Orchestrator {
	return &Orchestrator{
		adapter:          adapter,
		conn:             conn,
		texturesPath:     texturesPath,
		events:           make(chan Event, 64),
		stopCh:           make(chan struct{}),
		renderer:         overlay.New(adapter, texturesPath),
		seenParticipants: make(map[string]struct{}),
		cursorEnabledFor: make(map[string]struct{}),
	}
}

// Run enters the event loop and blocks until Terminate is posted or the
// IPC connection fails. It owns the main goroutine's lifetime the way the
// ground-truth implementation owns winit's event loop.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.wg.Add(1)
	go o.ipcReadLoop()

	o.wg.Add(1)
	go o.runPingLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			o.Close()
			return ctx.Err()
		case ev := <-o.events:
			if err := o.handle(ev); err != nil {
				log.Error("event handling failed", "kind", ev.Kind, "error", err)
			}
			if ev.Kind == EventTerminate {
				o.Close()
				return nil
			}
		}
	}
}

// Close stops every owned goroutine and tears down the active session, if
// any. Safe to call more than once.
func (o *Orchestrator) Close() {
	select {
	case <-o.stopCh:
		return
	default:
		close(o.stopCh)
	}
	o.mu.Lock()
	o.stopScreenShareLocked()
	o.mu.Unlock()
	o.wg.Wait()
}

func (o *Orchestrator) handle(ev Event) error {
	switch ev.Kind {
	case EventGetAvailableContent:
		return o.handleGetAvailableContent(ev)
	case EventStartScreenShare:
		return o.handleStartScreenShare(ev)
	case EventStopScreenShare:
		o.mu.Lock()
		o.stopScreenShareLocked()
		o.mu.Unlock()
		return nil
	case EventResetState:
		o.mu.Lock()
		o.stopScreenShareLocked()
		o.mu.Unlock()
		return nil
	case EventCaptureFailed:
		return o.handleCaptureFailed()
	case EventCaptureFatal:
		log.Error("capture failed permanently, exiting")
		o.mu.Lock()
		o.stopScreenShareLocked()
		o.mu.Unlock()
		_ = o.conn.SendTyped("", ipc.TypeStartScreenShareResult, ipc.StartScreenShareResultPayload{OK: false, Error: "capture failed"})
		os.Exit(2)
		return nil
	case EventDisplaysChanged:
		return o.handleDisplaysChanged()
	case EventCursorPosition:
		o.mu.Lock()
		replayer := o.replayer
		o.mu.Unlock()
		if replayer != nil {
			replayer.CursorPosition(ev.X, ev.Y)
		}
		return nil
	case EventMouseClick:
		o.mu.Lock()
		replayer := o.replayer
		o.mu.Unlock()
		if replayer != nil {
			replayer.MouseClick(ev.Button, ev.Down)
		}
		return nil
	case EventScroll:
		o.mu.Lock()
		replayer := o.replayer
		o.mu.Unlock()
		if replayer != nil {
			replayer.Scroll(ev.Horizontal, ev.Delta)
		}
		return nil
	case EventKeystroke:
		o.mu.Lock()
		kb := o.keyboard
		o.mu.Unlock()
		if kb != nil {
			kb.Simulate(ev.Keystroke)
		}
		return nil
	case EventControllerCursorEnabled:
		o.mu.Lock()
		if ev.Enabled {
			o.cursorEnabledFor[ev.ParticipantID] = struct{}{}
		} else {
			delete(o.cursorEnabledFor, ev.ParticipantID)
		}
		anyEnabled := len(o.cursorEnabledFor) > 0
		renderer := o.renderer
		replayer := o.replayer
		kb := o.keyboard
		o.mu.Unlock()
		if replayer != nil {
			replayer.SetEnabled(anyEnabled)
		}
		if kb != nil {
			kb.SetEnabled(anyEnabled)
		}
		renderer.SetControllerVisible(ev.ParticipantID, ev.Enabled)
		return nil
	case EventControllerCursorVisible:
		o.mu.Lock()
		renderer := o.renderer
		o.mu.Unlock()
		renderer.SetControllerVisible(ev.ParticipantID, ev.Visible)
		return nil
	case EventParticipantConnected:
		o.mu.Lock()
		renderer := o.renderer
		o.seenParticipants[ev.ParticipantID] = struct{}{}
		o.mu.Unlock()
		renderer.UpsertController(overlay.Controller{SID: ev.ParticipantID})
		return nil
	case EventParticipantDisconnected:
		o.mu.Lock()
		renderer := o.renderer
		delete(o.seenParticipants, ev.ParticipantID)
		delete(o.cursorEnabledFor, ev.ParticipantID)
		anyEnabled := len(o.cursorEnabledFor) > 0
		replayer := o.replayer
		kb := o.keyboard
		o.mu.Unlock()
		if replayer != nil {
			replayer.SetEnabled(anyEnabled)
		}
		if kb != nil {
			kb.SetEnabled(anyEnabled)
		}
		renderer.RemoveController(ev.ParticipantID)
		return nil
	case EventTick:
		o.mu.Lock()
		room := o.room
		o.lastTickAt = time.Now()
		o.mu.Unlock()
		if room != nil {
			return room.Send(transport.MsgTickResponse, transport.TickPayload{Seq: ev.Seq}, true)
		}
		return nil
	case EventLivekitServerURL:
		log.Info("livekit server url received", "url", ev.URL)
		return nil
	case EventShellPing:
		return o.conn.SendTyped(ev.RequestID, ipc.TypePing, nil)
	case EventTerminate:
		return nil
	default:
		return fmt.Errorf("session: unhandled event kind %d", ev.Kind)
	}
}

func (o *Orchestrator) handleGetAvailableContent(ev Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sources, err := o.adapter.EnumerateSources(ctx)
	if err != nil {
		return o.conn.SendError(ev.RequestID, ipc.TypeAvailableContent, err.Error())
	}

	payload := ipc.AvailableContentPayload{Sources: make([]ipc.ContentSource, 0, len(sources))}
	for _, s := range sources {
		payload.Sources = append(payload.Sources, ipc.ContentSource{
			SourceID:     s.SourceID,
			Name:         s.Title,
			ThumbnailB64: s.ThumbnailB64,
		})
	}
	return o.conn.SendTyped(ev.RequestID, ipc.TypeAvailableContent, payload)
}

func (o *Orchestrator) handleStartScreenShare(ev Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopScreenShareLocked()

	displays, err := o.adapter.EnumerateDisplays()
	if err != nil {
		return o.failStart(ev.RequestID, err)
	}
	o.displays = make([]geometry.Display, 0, len(displays))
	for _, d := range displays {
		o.displays = append(o.displays, geometry.Display{Position: d.Position, Extent: d.Extent, ScaleFactor: d.ScaleFactor, Scaled: d.Scaled})
	}

	room := transport.NewRoom()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := room.Connect(ctx, ev.ICEServers); err != nil {
		return o.failStart(ev.RequestID, err)
	}
	if err := room.PublishData(); err != nil {
		return o.failStart(ev.RequestID, err)
	}
	room.OnData(o.onRoomData)
	room.OnParticipantJoined(func(id string) { o.events <- Event{Kind: EventParticipantConnected, ParticipantID: id} })
	room.OnParticipantLeft(func(id string) { o.events <- Event{Kind: EventParticipantDisconnected, ParticipantID: id} })

	target := ev.TargetExtent
	if target.Width == 0 {
		target = geometry.Extent{Width: 1920, Height: 1080}
	}

	messages := make(chan capture.RuntimeMessage, 4)
	stream := capture.NewStream(o.adapter, target, messages)
	if err := stream.Start(ev.SourceID); err != nil {
		room.Close()
		return o.failStart(ev.RequestID, err)
	}

	streamExtent := stream.StreamExtent()
	sink, err := room.PublishVideo(int(streamExtent.Width))
	if err != nil {
		stream.Stop()
		room.Close()
		return o.failStart(ev.RequestID, err)
	}

	encoder, err := encode.NewMFTVP9Encoder()
	if err != nil {
		stream.Stop()
		room.Close()
		return o.failStart(ev.RequestID, err)
	}
	targetBitrate := transport.BitrateForWidth(int(streamExtent.Width))
	encoder.SetBitrate(targetBitrate)
	stream.SetSink(encode.NewTrackSink(encoder, sink))

	adaptive := encode.NewAdaptiveBitrate(encoder, targetBitrate/4, targetBitrate, targetBitrate)
	room.OnRTCPStats(adaptive.Update)

	synth := o.adapter.NewMouseSynthesizer()
	arbiter := control.NewArbiter(synth, o.onSharerMove)
	arbiter.SetControl(true)
	replayer := control.NewReplayer(synth, arbiter, func() []geometry.Display { return o.displays })

	layout := o.adapter.NewKeyboardLayout()
	keySynth := o.adapter.NewKeyboardSynthesizer(layout)
	keyboard := control.NewKeyboard(layout, keySynth)

	if hook, err := o.adapter.NewMouseHook(arbiter); err != nil {
		log.Warn("mouse hook unavailable, remote control input will not be captured locally", "error", err)
	} else {
		o.mouseHook = hook
	}

	o.room = room
	o.stream = stream
	o.arbiter = arbiter
	o.replayer = replayer
	o.keyboard = keyboard
	o.encoder = encoder
	o.adaptiveBitrate = adaptive
	o.lastSourceID = ev.SourceID
	o.sessionStop = make(chan struct{})

	if len(displays) > 0 {
		o.renderer.SetWindow(overlay.OverlayWindow{
			Extent:  displays[0].Extent,
			Display: displays[0],
			Scaled:  displays[0].Scaled,
		})
	}

	o.wg.Add(1)
	go o.watchCapture(messages, o.sessionStop)

	return o.conn.SendTyped(ev.RequestID, ipc.TypeStartScreenShareResult, ipc.StartScreenShareResultPayload{OK: true})
}

func (o *Orchestrator) failStart(requestID string, err error) error {
	log.Error("start screen share failed", "error", err)
	return o.conn.SendTyped(requestID, ipc.TypeStartScreenShareResult, ipc.StartScreenShareResultPayload{OK: false, Error: err.Error()})
}

// stopScreenShareLocked tears down the active session's subsystems. Caller
// must hold o.mu.
func (o *Orchestrator) stopScreenShareLocked() {
	if o.sessionStop != nil {
		close(o.sessionStop)
		o.sessionStop = nil
	}
	if o.mouseHook != nil {
		o.mouseHook.Close()
		o.mouseHook = nil
	}
	if o.stream != nil {
		o.stream.Stop()
		o.stream = nil
	}
	if o.encoder != nil {
		o.encoder.Close()
		o.encoder = nil
	}
	o.adaptiveBitrate = nil
	if o.room != nil {
		o.room.Close()
		o.room = nil
	}
	o.arbiter = nil
	o.replayer = nil
	o.keyboard = nil
	o.cursorEnabledFor = make(map[string]struct{})
}

func (o *Orchestrator) handleCaptureFailed() error {
	o.mu.Lock()
	stream := o.stream
	sourceID := o.lastSourceID
	o.mu.Unlock()
	if stream == nil {
		return nil
	}
	fresh, err := stream.Copy()
	if err != nil {
		return fmt.Errorf("session: copy stream for restart: %w", err)
	}
	if err := fresh.Start(sourceID); err != nil {
		return fmt.Errorf("session: restart capture: %w", err)
	}
	o.mu.Lock()
	o.stream = fresh
	o.mu.Unlock()
	return nil
}

// handleDisplaysChanged re-reads display geometry and refreshes the overlay
// window after a secure-desktop transition (UAC prompt, lock screen)
// invalidates the cached layout the overlay was drawing over. The capture
// stream and room stay up; only the coordinate cache is stale.
func (o *Orchestrator) handleDisplaysChanged() error {
	displays, err := o.adapter.EnumerateDisplays()
	if err != nil {
		log.Warn("failed to re-enumerate displays after desktop switch", "error", err)
		return nil
	}
	geomDisplays := make([]geometry.Display, 0, len(displays))
	for _, d := range displays {
		geomDisplays = append(geomDisplays, geometry.Display{Position: d.Position, Extent: d.Extent, ScaleFactor: d.ScaleFactor, Scaled: d.Scaled})
	}
	o.mu.Lock()
	o.displays = geomDisplays
	o.mu.Unlock()
	if len(displays) > 0 {
		o.renderer.SetWindow(overlay.OverlayWindow{
			Extent:  displays[0].Extent,
			Display: displays[0],
			Scaled:  displays[0].Scaled,
		})
	}
	return nil
}

func (o *Orchestrator) onRoomData(msg transport.DataMessage) {
	switch msg.Type {
	case transport.MsgMouseMove:
		var p transport.MouseMovePayload
		if safeDecode(msg.Payload, &p) {
			o.events <- Event{Kind: EventCursorPosition, X: p.X, Y: p.Y}
		}
	case transport.MsgMouseClick:
		var p transport.MouseClickPayload
		if safeDecode(msg.Payload, &p) {
			o.events <- Event{Kind: EventMouseClick, Button: parseButton(p.Button), Down: p.Down}
		}
	case transport.MsgWheelEvent:
		var p transport.WheelEventPayload
		if safeDecode(msg.Payload, &p) {
			o.events <- Event{Kind: EventScroll, Horizontal: p.Horizontal, Delta: p.Delta}
		}
	case transport.MsgKeystroke:
		var p transport.KeystrokePayload
		if safeDecode(msg.Payload, &p) {
			o.events <- Event{Kind: EventKeystroke, Keystroke: control.Keystroke{
				Key: p.Key, Ctrl: p.Ctrl, Meta: p.Meta, Shift: p.Shift, Option: p.Option, Down: p.Down,
			}}
		}
	case transport.MsgTick:
		var p transport.TickPayload
		if safeDecode(msg.Payload, &p) {
			o.events <- Event{Kind: EventTick, Seq: p.Seq}
		}
	case transport.MsgMouseVisible:
		var p transport.MouseVisiblePayload
		if safeDecode(msg.Payload, &p) {
			// The data channel doesn't attribute a message to a sender, so
			// a visibility change applies to every controller badge rather
			// than one specific participant.
			o.mu.Lock()
			renderer := o.renderer
			o.mu.Unlock()
			for sid := range o.knownControllers() {
				renderer.SetControllerVisible(sid, p.Visible)
			}
		}
	}
}

func (o *Orchestrator) knownControllers() map[string]struct{} {
	// Controller identities live inside the renderer today; this returns
	// the participant IDs the orchestrator has seen join so a broadcast
	// visibility change can be applied per-ID without the renderer needing
	// to expose its internal controller map.
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]struct{}, len(o.seenParticipants))
	for id := range o.seenParticipants {
		out[id] = struct{}{}
	}
	return out
}

func (o *Orchestrator) onSharerMove(pos geometry.Position) {
	o.mu.Lock()
	room := o.room
	displays := o.displays
	o.mu.Unlock()
	if room == nil || len(displays) == 0 {
		return
	}
	pct := geometry.GlobalToDisplayPercentage(pos, displays[0], displays[0].Scaled)
	room.Send(transport.TopicParticipantLocation, transport.ParticipantLocationPayload{X: pct.X, Y: pct.Y}, false)
}

func (o *Orchestrator) watchCapture(messages <-chan capture.RuntimeMessage, sessionStop <-chan struct{}) {
	defer o.wg.Done()
	for {
		select {
		case <-o.stopCh:
			return
		case <-sessionStop:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			switch msg {
			case capture.MessageFailed:
				o.events <- Event{Kind: EventCaptureFailed}
			case capture.MessageFatal:
				o.events <- Event{Kind: EventCaptureFatal}
				return
			case capture.MessageUserStoppedCapture:
				o.events <- Event{Kind: EventStopScreenShare}
				return
			case capture.MessageDisplayChanged:
				o.events <- Event{Kind: EventDisplaysChanged}
			}
		}
	}
}

func parseButton(name string) platform.MouseButton {
	switch name {
	case "right":
		return platform.ButtonRight
	case "middle":
		return platform.ButtonMiddle
	default:
		return platform.ButtonLeft
	}
}

func safeDecode(raw json.RawMessage, v any) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		log.Warn("dropping malformed data-channel payload", "error", err)
		return false
	}
	return true
}

func toICEServers(urls []string) []transport.ICEServer {
	out := make([]transport.ICEServer, 0, len(urls))
	for _, u := range urls {
		out = append(out, transport.ICEServer{URLs: []string{u}})
	}
	return out
}

// ipcReadLoop owns the shell connection's read side: it decodes one
// envelope at a time and turns it into an Event on the orchestrator's
// single channel. A 30s read deadline keeps a hung shell process from
// leaving this goroutine blocked forever. A read error here means the
// shell is gone, so it posts a terminate event and gives the event loop
// one second to unwind cleanly before forcing the process down.
func (o *Orchestrator) ipcReadLoop() {
	defer o.wg.Done()
	for {
		o.conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		env, err := o.conn.Recv()
		if err != nil {
			if o.isStopped() {
				return
			}
			log.Error("ipc connection lost, terminating", "error", err)
			select {
			case o.events <- Event{Kind: EventTerminate}:
			case <-o.stopCh:
				return
			}
			time.AfterFunc(time.Second, func() { os.Exit(1) })
			return
		}
		if ev, ok := o.decodeEnvelope(env); ok {
			select {
			case o.events <- ev:
			case <-o.stopCh:
				return
			}
		}
	}
}

func (o *Orchestrator) isStopped() bool {
	select {
	case <-o.stopCh:
		return true
	default:
		return false
	}
}

func (o *Orchestrator) decodeEnvelope(env *ipc.Envelope) (Event, bool) {
	switch env.Type {
	case ipc.TypeGetAvailableContent:
		return Event{Kind: EventGetAvailableContent, RequestID: env.ID}, true
	case ipc.TypeStartScreenShare:
		var p ipc.StartScreenSharePayload
		if !safeDecode(env.Payload, &p) {
			return Event{}, false
		}
		return Event{
			Kind:         EventStartScreenShare,
			RequestID:    env.ID,
			SourceID:     p.SourceID,
			RoomToken:    p.RoomToken,
			ICEServers:   toICEServers(p.ICEServers),
			TargetExtent: geometry.Extent{Width: float64(p.TargetWidth), Height: float64(p.TargetHeight)},
		}, true
	case ipc.TypeStopScreenshare:
		return Event{Kind: EventStopScreenShare, RequestID: env.ID}, true
	case ipc.TypeReset:
		return Event{Kind: EventResetState, RequestID: env.ID}, true
	case ipc.TypePing:
		return Event{Kind: EventShellPing, RequestID: env.ID}, true
	case ipc.TypeControllerCursor:
		var p ipc.ControllerCursorPayload
		if !safeDecode(env.Payload, &p) {
			return Event{}, false
		}
		return Event{Kind: EventControllerCursorEnabled, ParticipantID: p.ParticipantID, Enabled: p.Enabled}, true
	case ipc.TypeLivekitServerURL:
		var p ipc.LivekitServerURLPayload
		if !safeDecode(env.Payload, &p) {
			return Event{}, false
		}
		return Event{Kind: EventLivekitServerURL, URL: p.URL}, true
	default:
		log.Warn("dropping unknown ipc message type", "type", env.Type)
		return Event{}, false
	}
}
