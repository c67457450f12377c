package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"paw-guardian/internal/domain/runs"
	"paw-guardian/internal/platform/logger"
)

const (
	// Mensajes encolados por cliente antes de considerarlo lento.
	clientSendBuffer = 32

	writeTimeout = 5 * time.Second

	// El feed es de salida; lo único que se lee del cliente son frames de
	// control, así que el límite puede ser chico.
	readLimitBytes = 512
)

// Hub es el subscriber de websockets: fan-out de cada evento a todos los
// clientes conectados. Un cliente que no drena su buffer se desconecta; el
// feed nunca frena al pipeline.
type Hub struct {
	log      logger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: isOriginAllowed},
		clients:  make(map[*wsClient]struct{}),
	}
}

func (h *Hub) Name() string { return "websocket-hub" }

// wsEvent es la forma JSON que viaja por el websocket: run_id + los campos
// de la entrada, aplanados.
type wsEvent struct {
	RunID string `json:"run_id"`
	runs.Entry
}

// Handle publica el evento a todos los clientes conectados. Los clientes con
// el buffer lleno se dan de baja acá mismo: mejor perder un espectador que
// frenar la corrida.
func (h *Hub) Handle(_ context.Context, ev Event) error {
	payload, err := json.Marshal(wsEvent{RunID: ev.RunID, Entry: ev.Entry})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			delete(h.clients, c)
			close(c.send)
			h.log.Warn("ws client dropped: send buffer full", nil)
		}
	}
	h.mu.Unlock()
	return nil
}

// ClientCount devuelve la cantidad de clientes conectados.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgradea la conexión y la suma al fan-out. Bloquea hasta que el
// cliente se desconecta.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade ya escribió el error HTTP.
		h.log.Warn("ws upgrade failed", map[string]any{"error": err.Error()})
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, clientSendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Info("ws client connected", map[string]any{"remote": r.RemoteAddr})

	go h.writePump(c)
	h.readPump(c)
}

// writePump drena el buffer del cliente hacia la conexión. Termina cuando el
// hub cierra el canal (cliente lento o baja) o cuando la escritura falla.
func (h *Hub) writePump(c *wsClient) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.drop(c)
			return
		}
	}
	// Canal cerrado por el hub: avisar y cortar.
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "slow consumer"))
}

// readPump sólo existe para detectar la desconexión del cliente.
func (h *Hub) readPump(c *wsClient) {
	defer func() {
		h.drop(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimitBytes)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// drop saca al cliente del fan-out una sola vez.
func (h *Hub) drop(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// isOriginAllowed acepta requests sin Origin (clientes no-browser) y
// browsers del mismo host.
func isOriginAllowed(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return false
	}
	return strings.EqualFold(parsed.Host, r.Host)
}
