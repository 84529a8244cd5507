package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/alanyang/agent-market/internal/domain/route"
	"github.com/alanyang/agent-market/internal/domain/viewer"
	"github.com/alanyang/agent-market/internal/service/coordinator"
	"github.com/alanyang/agent-market/internal/transport/httpx"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// DefaultWriteWait bounds a single write; a browser that cannot take a frame
// in time is dropped.
const DefaultWriteWait = 5 * time.Second

// Frame types browsers send over the socket.
const (
	FrameNavigate = "navigate"
	FramePrefetch = "prefetch"
	FrameRedirect = "redirect"
)

// Frame is a browser message. Path is set for navigate, Route for prefetch.
type Frame struct {
	Type     string `json:"type"`
	Path     string `json:"path,omitempty"`
	Route    string `json:"route,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

type client struct {
	conn   *websocket.Conn
	viewer viewer.Viewer
	mu     sync.Mutex // gorilla allows one concurrent writer
}

func (c *client) write(data []byte, wait time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(wait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub fans events out to connected browsers and turns their navigate frames
// into coordinator navigation signals.
// [LSP] Satisfies both notifier.Broadcaster and notifier.ViewerNotifier.
type Hub struct {
	coord     *coordinator.Coordinator
	writeWait time.Duration
	clients   map[*client]struct{}
	mu        sync.RWMutex
}

func NewHub(coord *coordinator.Coordinator) *Hub {
	return &Hub{
		coord:     coord,
		writeWait: DefaultWriteWait,
		clients:   make(map[*client]struct{}),
	}
}

func (h *Hub) Register(rg *gin.RouterGroup) {
	rg.GET("", h.handleWS)
}

func (h *Hub) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	cl := &client{conn: conn, viewer: httpx.Viewer(c)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	// ctx carries the viewer, so navigation invalidates this viewer's scope.
	ctx, cancel := context.WithCancel(c.Request.Context())
	nav := make(chan string, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.coord.Watch(ctx, nav)
	}()

	defer func() {
		h.mu.Lock()
		delete(h.clients, cl)
		h.mu.Unlock()
		close(nav)
		cancel()
		<-done
		conn.Close()
	}()

	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		h.handleFrame(ctx, cl, f, nav)
	}
}

func (h *Hub) handleFrame(ctx context.Context, cl *client, f Frame, nav chan<- string) {
	switch f.Type {
	case FrameNavigate:
		if d := route.Guard(f.Path, cl.viewer); !d.Allowed {
			data, _ := json.Marshal(Frame{Type: FrameRedirect, Path: f.Path, Redirect: d.Redirect})
			if err := cl.write(data, h.writeWait); err != nil {
				slog.ErrorContext(ctx, "websocket write failed", "error", err)
			}
			return
		}
		select {
		case nav <- f.Path:
		case <-ctx.Done():
		}
	case FramePrefetch:
		h.coord.PrefetchRoute(ctx, f.Route)
	default:
		slog.DebugContext(ctx, "websocket: unknown frame", "type", f.Type)
	}
}

// Broadcast sends event to every connected browser.
func (h *Hub) Broadcast(ctx context.Context, event any) error {
	return h.send(ctx, event, func(*client) bool { return true })
}

// NotifyViewer sends event only to viewerID's connections.
func (h *Hub) NotifyViewer(ctx context.Context, viewerID uuid.UUID, event any) error {
	return h.send(ctx, event, func(c *client) bool { return c.viewer.ID == viewerID })
}

func (h *Hub) send(ctx context.Context, event any, to func(*client) bool) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	for _, cl := range h.targets(to) {
		if err := cl.write(data, h.writeWait); err != nil {
			slog.ErrorContext(ctx, "websocket write failed, dropping client", "viewer_id", cl.viewer.ID, "error", err)
			// Closing unblocks the reader, whose cleanup unregisters the client.
			cl.conn.Close()
		}
	}
	return nil
}

// targets snapshots the matching clients so writes happen without the hub lock.
func (h *Hub) targets(to func(*client) bool) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		if to(cl) {
			out = append(out, cl)
		}
	}
	return out
}

// Len reports the number of connected browsers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
