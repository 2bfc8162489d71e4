package websocket

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

// NewMessage encodes an action and its payload.
func NewMessage(action string, payload any) ([]byte, error) {
	return json.Marshal(Message{Action: action, Payload: payload})
}

// NewErrorMessage encodes an "error" message for a single client.
func NewErrorMessage(text string) []byte {
	msg, err := NewMessage("error", map[string]string{"message": text})
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode websocket error message")
		return nil
	}
	return msg
}
