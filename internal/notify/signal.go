package notify

import "encoding/json"

// Signal ids understood by clients.
const (
	SignalConnected = 1
	SignalError     = 2
	SignalJoin      = 3
	SignalUpdate    = 4
)

// Signal is the fixed push-channel envelope. Update and connected signals
// carry no payload; they only mean "state changed, re-fetch".
type Signal struct {
	ID   int    `json:"id"`
	Data string `json:"data"`
}

func marshalSignal(id int, data string) []byte {
	b, _ := json.Marshal(Signal{ID: id, Data: data})
	return b
}

// ConnectedSignal is sent once when a connection is established.
func ConnectedSignal() []byte {
	return marshalSignal(SignalConnected, "")
}

// ErrorSignal carries a message describing a rejected client frame.
func ErrorSignal(msg string) []byte {
	return marshalSignal(SignalError, msg)
}

// UpdateSignal tells a client its screen is stale.
func UpdateSignal() []byte {
	return marshalSignal(SignalUpdate, "")
}
