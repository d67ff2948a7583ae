package server

import (
	"net/http"
	"net/url"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"reflexa/internal/wshub"
)

// handleLive streams verified scores and badge claims over a WebSocket.
// The feed is one-way; anything the client sends is discarded.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originHosts(s.AllowedOrigins),
	})
	if err != nil {
		s.Log.Warn("websocket accept failed", zap.Error(err))
		return
	}

	client := wshub.NewClient(uuid.NewString(), conn)
	s.Hub.Register(client)
	defer s.Hub.Unregister(client.ID)

	// CloseRead drains control frames and cancels ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())
	client.WritePump(ctx)

	conn.Close(websocket.StatusNormalClosure, "")
}

// originHosts turns configured origins into the host patterns the WebSocket
// handshake matches against.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
			continue
		}
		hosts = append(hosts, o)
	}
	return hosts
}
