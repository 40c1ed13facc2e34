package server

import (
	"encoding/json"
	"log"
	"net/http"

	"nhooyr.io/websocket"

	"rps/internal/notify"
)

// registerMessage is what a client sends to claim a nickname on the push
// channel.
type registerMessage struct {
	Action   string `json:"action"`
	Nickname string `json:"nickname"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // allow any origin for dev
	})
	if err != nil {
		log.Printf("websocket accept: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()
	log.Printf("[ws] new connection established")
	if err := conn.Write(ctx, websocket.MessageText, notify.ConnectedSignal()); err != nil {
		return
	}

	send := make(chan []byte, 64)
	defer close(send)

	// Writer goroutine: push signals from the registry to the socket.
	go func() {
		for msg := range send {
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}()

	// Nicknames this connection registered, so they can be cleared on
	// disconnect instead of leaking in the registry.
	var registered []string

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		var msg registerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sendSignal(send, notify.ErrorSignal("invalid message"))
			continue
		}
		if msg.Action != "add" || msg.Nickname == "" {
			sendSignal(send, notify.ErrorSignal("unknown action"))
			continue
		}
		log.Printf("[ws] adding a new connection for user with nickname: %s", msg.Nickname)
		s.registry.Add(msg.Nickname, send)
		registered = append(registered, msg.Nickname)
	}

	for _, nickname := range registered {
		s.registry.Remove(nickname, send)
	}
	log.Printf("[ws] connection closed, removed %d registration(s)", len(registered))
}

func sendSignal(send chan []byte, msg []byte) {
	select {
	case send <- msg:
	default:
	}
}
