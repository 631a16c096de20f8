package ipc

import "encoding/json"

// Message type tags exchanged between the UI process and the core
// engine over the local IPC channel.
const (
	TypeGetAvailableContent    = "GetAvailableContent"
	TypeAvailableContent       = "AvailableContent"
	TypeStartScreenShare       = "StartScreenShare"
	TypeStartScreenShareResult = "StartScreenShareResult"
	TypeStopScreenshare        = "StopScreenshare"
	TypeReset                  = "Reset"
	TypePing                   = "Ping"
	TypeControllerCursor       = "ControllerCursorEnabled"
	TypeLivekitServerURL       = "LivekitServerUrl"
)

// MaxMessageSize bounds a single length-prefixed JSON frame.
const MaxMessageSize = 16 * 1024 * 1024

// Envelope is the wire-format wrapper for every IPC message. The local
// IPC channel connects two processes owned by the same user session, so
// there is no HMAC signing or replay protection
// here — length-prefixed framing and a message ID are all that's
// needed to multiplex requests and responses.
type Envelope struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ContentSource describes one capturable display or window surfaced
// to the UI for the user to pick from.
type ContentSource struct {
	SourceID     uint32 `json:"sourceId"`
	Name         string `json:"name"`
	ThumbnailB64 string `json:"thumbnailBase64,omitempty"`
	Width        uint32 `json:"width"`
	Height       uint32 `json:"height"`
}

// AvailableContentPayload answers GetAvailableContent.
type AvailableContentPayload struct {
	Sources []ContentSource `json:"sources"`
}

// StartScreenSharePayload requests capture + publish of one source.
type StartScreenSharePayload struct {
	SourceID     uint32   `json:"sourceId"`
	RoomToken    string   `json:"roomToken"`
	ICEServers   []string `json:"iceServers,omitempty"`
	TargetWidth  uint32   `json:"targetWidth,omitempty"`
	TargetHeight uint32   `json:"targetHeight,omitempty"`
}

// StartScreenShareResultPayload reports whether the share started.
type StartScreenShareResultPayload struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ControllerCursorPayload toggles whether a remote controller's cursor
// badge is rendered on the overlay.
type ControllerCursorPayload struct {
	ParticipantID string `json:"participantId"`
	Enabled       bool   `json:"enabled"`
}

// LivekitServerURLPayload carries the signaling server URL the UI
// resolved for this session, forwarded down so the core can hand it to
// diagnostics/telemetry without hardcoding it.
type LivekitServerURLPayload struct {
	URL string `json:"url"`
}
