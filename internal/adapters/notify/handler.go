package notify

import (
	"net/http"
	"net/url"

	ws "github.com/coder/websocket"
)

// Handler upgrades GET /ws to a WebSocket and runs it as a hub client.
// allowedOrigins are full origins as configured for CORS.
func Handler(hub *Hub, allowedOrigins []string) http.HandlerFunc {
	patterns := originPatterns(allowedOrigins)
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{OriginPatterns: patterns})
		if err != nil {
			hub.logger.Warn("websocket accept failed", "error", err)
			return
		}

		NewClient(hub, conn).Run(r.Context())
	}
}

// originPatterns turns origins into the host patterns Accept matches on.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}
