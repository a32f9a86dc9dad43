package broadcast

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/wyrmlight/ledcore/internal/colorfx"
)

const (
	senderInterval = time.Second / 30 // viewer framerate cap, independent of render rate
	viewerTimeout  = 250 * time.Millisecond
	sendBuffer     = 8
)

// viewer is one connected Socket.IO client: its raw connection plus an
// outbound queue drained by its own writePump.
type viewer struct {
	id   string
	conn *websocket.Conn
	send chan string
}

// Hub is the frame broadcaster: a roster of viewers, a
// single-slot "latest frame" mailbox the render loop writes
// non-blockingly, and a dedicated sender that serializes once per tick
// and fans out to everyone. With no viewers connected, PublishFrame's
// fast path is one read-locked roster length check and nothing else.
type Hub struct {
	mu      sync.RWMutex
	viewers map[string]*viewer

	frameMu    sync.Mutex
	frame      []colorfx.Color
	frameDirty bool

	register   chan *viewer
	unregister chan *viewer
	stop       chan struct{}
}

// NewHub creates a Hub. Call Run in its own goroutine to start the
// sender loop.
func NewHub() *Hub {
	return &Hub{
		viewers:    make(map[string]*viewer),
		register:   make(chan *viewer),
		unregister: make(chan *viewer),
		stop:       make(chan struct{}),
	}
}

// HasViewers reports whether any client is currently connected, the
// check PublishFrame uses to skip serialization entirely.
func (h *Hub) HasViewers() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers) > 0
}

// PublishFrame offers the render loop's latest frame to the broadcaster.
// It never blocks: if a previous frame is still waiting to be picked up
// by the sender, it is overwritten. The frame is copied so the render
// loop can keep reusing its buffer.
func (h *Hub) PublishFrame(f []colorfx.Color) {
	if !h.HasViewers() {
		return
	}
	h.frameMu.Lock()
	if cap(h.frame) < len(f) {
		h.frame = make([]colorfx.Color, len(f))
	}
	h.frame = h.frame[:len(f)]
	copy(h.frame, f)
	h.frameDirty = true
	h.frameMu.Unlock()
}

// takeFrame returns the pending frame and clears the dirty flag, or nil
// if nothing new has arrived since the last send.
func (h *Hub) takeFrame() []colorfx.Color {
	h.frameMu.Lock()
	defer h.frameMu.Unlock()
	if !h.frameDirty {
		return nil
	}
	h.frameDirty = false
	out := make([]colorfx.Color, len(h.frame))
	copy(out, h.frame)
	return out
}

// Run drives the sender loop: wake on a fixed interval, and only do
// real work (serialize + fan out) when there is both a fresh frame and
// at least one viewer.
func (h *Hub) Run() {
	ticker := time.NewTicker(senderInterval)
	defer ticker.Stop()

	for {
		select {
		case v := <-h.register:
			h.addViewer(v)
		case v := <-h.unregister:
			h.removeViewer(v)
		case <-ticker.C:
			h.tick()
		case <-h.stop:
			return
		}
	}
}

// Stop ends the sender loop.
func (h *Hub) Stop() {
	close(h.stop)
}

func (h *Hub) tick() {
	if !h.HasViewers() {
		return
	}
	frame := h.takeFrame()
	if frame == nil {
		return
	}
	packet, err := EncodeEvent("led_update", ledUpdatePayload(frame))
	if err != nil {
		return
	}
	h.broadcastRaw(packet)
}

func ledUpdatePayload(frame []colorfx.Color) map[string]interface{} {
	leds := make([]map[string]uint8, len(frame))
	for i, c := range frame {
		leds[i] = map[string]uint8{"r": c.R, "g": c.G, "b": c.B, "w": c.W}
	}
	return map[string]interface{}{"leds": leds}
}

// BroadcastEvent fans out an arbitrary named event (state_update,
// effects_update, presets_update) to every connected viewer, unrelated
// to the frame rate cap above since these fire on mutation, not on a
// tick.
func (h *Hub) BroadcastEvent(name string, payload interface{}) error {
	packet, err := EncodeEvent(name, payload)
	if err != nil {
		return err
	}
	h.broadcastRaw(packet)
	return nil
}

func (h *Hub) broadcastRaw(packet string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, v := range h.viewers {
		select {
		case v.send <- packet:
		case <-time.After(viewerTimeout):
			// Slow viewer; drop this packet for them rather than stall
			// the rest of the roster.
		}
	}
}

func (h *Hub) addViewer(v *viewer) {
	h.mu.Lock()
	h.viewers[v.id] = v
	h.mu.Unlock()
}

func (h *Hub) removeViewer(v *viewer) {
	h.mu.Lock()
	if _, ok := h.viewers[v.id]; ok {
		delete(h.viewers, v.id)
		close(v.send)
	}
	h.mu.Unlock()
}

// HandleConnection drives one client's Socket.IO v4 session end to end:
// handshake, registration with the hub, and the read/write pumps. It
// blocks until the connection closes, so callers run it in the fiber
// websocket handler goroutine.
func (h *Hub) HandleConnection(conn *websocket.Conn, onConnect func() []string) {
	v := &viewer{id: uuid.NewString(), conn: conn, send: make(chan string, sendBuffer)}

	conn.WriteMessage(websocket.TextMessage, []byte(EncodeOpen(v.id)))
	conn.WriteMessage(websocket.TextMessage, []byte(EncodeNamespaceConnect()))
	for _, packet := range onConnect() {
		conn.WriteMessage(websocket.TextMessage, []byte(packet))
	}

	h.register <- v

	done := make(chan struct{})
	go v.writePump(done)
	v.readPump()
	close(done)
	h.unregister <- v
}

func (v *viewer) writePump(done <-chan struct{}) {
	for {
		select {
		case packet, ok := <-v.send:
			if !ok {
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, []byte(packet)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (v *viewer) readPump() {
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return
		}
	}
}
