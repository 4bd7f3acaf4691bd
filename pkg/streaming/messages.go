// Package streaming defines the messages a globe server sends to browser
// renderers over WebSocket.
package streaming

import (
	"encoding/json"
	"fmt"
)

// Message type constants of the frame stream.
const (
	TypeHello = "hello"
	TypeFrame = "frame"
	TypeBye   = "bye"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// HubInfo describes a traffic hub for 2D overlays.
type HubInfo struct {
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	MercatorX float64 `json:"mercatorX"` // EPSG:3857 metres
	MercatorY float64 `json:"mercatorY"`
	// great-circle distance from the origin hub, zero for the origin itself
	DistanceKm float64 `json:"distanceKm"`
}

// HelloPayload is sent once to every client after it connects.
type HelloPayload struct {
	Demo  string    `json:"demo"`
	Demos []string  `json:"demos"`
	Rate  float64   `json:"rate"` // frames per second sent
	Hubs  []HubInfo `json:"hubs,omitempty"`
}

// ByePayload tells clients the server is going away.
type ByePayload struct {
	Reason string `json:"reason"`
}

// Marshal builds a JSON-encoded Envelope from a message type and payload.
func Marshal(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	data, err := json.Marshal(Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// Decode unwraps an envelope and unmarshals its payload into v.
func Decode(data []byte, v any) (string, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("unmarshal envelope: %w", err)
	}
	if v != nil && len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, v); err != nil {
			return env.Type, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
		}
	}
	return env.Type, nil
}
