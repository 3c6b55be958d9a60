package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API has no authentication; any origin on the network may subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades the request and registers the connection with hub. The
// optional "types" query parameter is a comma-separated event filter, e.g.
// ?types=device.,scene.applied. ctx bounds the hand-off to the hub so a
// request arriving during shutdown cannot block.
func Handler(ctx context.Context, hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := parseFilter(r.URL.Query().Get("types"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("ws: upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
			return
		}

		client := hub.NewClient(conn, filter)
		select {
		case hub.register <- client:
		case <-ctx.Done():
			_ = conn.Close()
			return
		}

		go client.writePump()
		go client.readPump(ctx)
	}
}

func parseFilter(raw string) []string {
	var out []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
