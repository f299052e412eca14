package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aretw0/canopy/internal/sanitize"
	"github.com/aretw0/canopy/pkg/decoder"
	"github.com/aretw0/canopy/pkg/screen"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsInbound is a client frame. Type is "ping" or "patch". Patches stay raw
// so a bad patch is answered with an error frame instead of closing the socket.
type wsInbound struct {
	Type    string          `json:"type"`
	Patches json.RawMessage `json:"patches,omitempty"`
}

type wsOutbound struct {
	Type    string         `json:"type"`
	Update  *screen.Update `json:"update,omitempty"`
	Matches *int           `json:"matches,omitempty"`
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
}

// ScreenSocket handles GET /screens/{name}/ws. The server pushes every
// update of the screen and, unless read-only, accepts patch frames.
func (s *Server) ScreenSocket(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "screen", name, "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	out := make(chan wsOutbound, 16)
	updates := s.Screens.Subscribe(ctx, name)

	go s.writeLoop(ctx, cancel, conn, updates, out)

	conn.SetReadLimit(s.maxBody)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "screen", name, "err", err)
			}
			return
		}
		var reply wsOutbound
		var in wsInbound
		if err := json.Unmarshal(frame, &in); err != nil {
			reply = wsError("bad_request", "malformed frame: "+err.Error())
		} else {
			reply = s.handleFrame(ctx, name, in)
		}
		select {
		case out <- reply:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) handleFrame(ctx context.Context, name string, in wsInbound) wsOutbound {
	switch in.Type {
	case "ping":
		return wsOutbound{Type: "pong"}
	case "patch":
		if s.readOnly {
			return wsError("read_only", "server is read-only")
		}
		if len(in.Patches) == 0 {
			return wsError("bad_request", "no patches")
		}
		patches, err := decoder.ParsePatchSet(in.Patches)
		if err != nil {
			return wsError("bad_request", err.Error())
		}
		if err := sanitize.Patches(patches, s.maxTextSize); err != nil {
			return wsError("bad_request", err.Error())
		}
		_, matches, err := s.Screens.Patch(ctx, name, patches...)
		if err != nil {
			return wsError("patch_failed", err.Error())
		}
		return wsOutbound{Type: "ack", Matches: &matches}
	default:
		return wsError("unknown_type", "unsupported frame type: "+in.Type)
	}
}

func wsError(code, msg string) wsOutbound {
	return wsOutbound{Type: "error", Code: code, Message: msg}
}

// writeLoop owns all writes to conn.
func (s *Server) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, updates <-chan screen.Update, out <-chan wsOutbound) {
	defer cancel()
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	write := func(v any) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(v); err != nil {
			s.logger.Debug("websocket write failed", "err", err)
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if !write(wsOutbound{Type: string(u.Kind), Update: &u}) {
				return
			}
		case msg := <-out:
			if !write(msg) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

