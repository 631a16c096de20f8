package transport

import "encoding/json"

// Data-channel topics published by the room.
const (
	TopicParticipantLocation  = "participant_location"
	TopicRemoteControlEnabled = "remote_control_enabled"
	TopicTickResponse         = "tick_response"
)

const (
	VideoTrackName = "screen_share"
	MaxFramerate   = 30.0
)

// Bitrate tiers keyed by the stream's long-edge pixel width, matching the
// room's codec negotiation: wider streams get proportionally more
// bandwidth up to a hard ceiling.
const (
	widthThreshold1920 = 1920
	widthThreshold2048 = 2048
	widthThreshold2560 = 2560

	bitrate1920  = 2_000_000
	bitrate2048  = 3_500_000
	bitrate2560  = 5_000_000
	bitrateDefault = 8_000_000
)

// BitrateForWidth returns the max video bitrate, in bits per second, for a
// stream of the given pixel width.
func BitrateForWidth(width int) int {
	switch {
	case width <= widthThreshold1920:
		return bitrate1920
	case width <= widthThreshold2048:
		return bitrate2048
	case width <= widthThreshold2560:
		return bitrate2560
	default:
		return bitrateDefault
	}
}

// DataMessage is the tagged-union envelope carried over the reliable and
// unreliable data channels.
type DataMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type MouseMovePayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type MouseClickPayload struct {
	Button string `json:"button"`
	Down   bool   `json:"down"`
}

type MouseVisiblePayload struct {
	Visible bool `json:"visible"`
}

type KeystrokePayload struct {
	Key    string `json:"key"`
	Ctrl   bool   `json:"ctrl"`
	Meta   bool   `json:"meta"`
	Shift  bool   `json:"shift"`
	Option bool   `json:"option"`
	Down   bool   `json:"down"`
}

type WheelEventPayload struct {
	Horizontal bool    `json:"horizontal"`
	Delta      float64 `json:"delta"`
}

type TickPayload struct {
	Seq int64 `json:"seq"`
}

type RemoteControlEnabledPayload struct {
	ParticipantSID string `json:"participant_sid"`
	Enabled        bool   `json:"enabled"`
}

type ParticipantLocationPayload struct {
	ParticipantSID string  `json:"participant_sid"`
	Name           string  `json:"name"`
	Color          string  `json:"color"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
}

// Message type tags.
const (
	MsgMouseMove             = "mouse_move"
	MsgMouseClick            = "mouse_click"
	MsgMouseVisible          = "mouse_visible"
	MsgKeystroke             = "keystroke"
	MsgWheelEvent            = "wheel_event"
	MsgTick                  = "tick"
	MsgTickResponse          = "tick_response"
	MsgRemoteControlEnabled  = "remote_control_enabled"
)

// Encode marshals a typed payload into a DataMessage ready to send.
func Encode(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(DataMessage{Type: msgType, Payload: raw})
}

// Decode unmarshals a DataMessage envelope.
func Decode(data []byte) (DataMessage, error) {
	var m DataMessage
	err := json.Unmarshal(data, &m)
	return m, err
}
