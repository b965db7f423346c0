package server

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/pkg/collection"
)

// Websocket message types.
const (
	MessageSnapshot = "snapshot"
	MessageResult   = "result"
	MessageError    = "error"
	MessageIntent   = "intent"
	MessagePing     = "ping"
	MessagePong     = "pong"
)

// ClientMessage is sent by editors over the websocket.
type ClientMessage struct {
	Type   string             `json:"type"`
	ID     string             `json:"id,omitempty"`
	Intent *collection.Intent `json:"intent,omitempty"`
}

// ServerMessage is pushed to editors over the websocket. A snapshot message
// follows every applied mutation, whichever connection sent it.
type ServerMessage struct {
	Type      string             `json:"type"`
	RequestID string             `json:"requestId,omitempty"`
	State     *SnapshotView      `json:"state,omitempty"`
	Result    *collection.Result `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.origins,
	})
	if err != nil {
		logging.Error(r.Context(), goerr.Wrap(err, "failed to accept websocket"), "websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Subscribe first so no mutation falls between the initial snapshot and
	// the stream.
	snapshots, unsubscribe := s.session.Subscribe()
	defer unsubscribe()

	view := NewSnapshotView(s.session.Snapshot())
	if err := wsjson.Write(ctx, conn, ServerMessage{Type: MessageSnapshot, State: &view}); err != nil {
		return
	}

	go s.readMessages(ctx, cancel, conn)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			view := NewSnapshotView(snapshot)
			if err := wsjson.Write(ctx, conn, ServerMessage{Type: MessageSnapshot, State: &view}); err != nil {
				return
			}
		}
	}
}

func (s *Server) readMessages(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	defer cancel()
	logger := logging.From(ctx)

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				logger.Debug("websocket closed", "status", status)
			}
			return
		}

		var reply ServerMessage
		switch msg.Type {
		case MessageIntent:
			reply = s.applyMessage(msg)
		case MessagePing:
			reply = ServerMessage{Type: MessagePong, RequestID: msg.ID}
		default:
			reply = ServerMessage{Type: MessageError, RequestID: msg.ID, Error: "unknown message type: " + msg.Type}
		}
		if err := wsjson.Write(ctx, conn, reply); err != nil {
			return
		}
	}
}

func (s *Server) applyMessage(msg ClientMessage) ServerMessage {
	if msg.Intent == nil {
		return ServerMessage{Type: MessageError, RequestID: msg.ID, Error: "intent is required"}
	}
	res, _, err := s.session.Apply(*msg.Intent)
	if err != nil {
		return ServerMessage{Type: MessageError, RequestID: msg.ID, Error: err.Error()}
	}
	return ServerMessage{Type: MessageResult, RequestID: msg.ID, Result: &res}
}
