// Package broadcast fans frames and state-change events out to
// connected viewers over a Socket.IO v4-compatible WebSocket stream, so
// the shipped browser UI works against this server unmodified. The wire
// framing is hand-rolled atop gofiber/websocket; no dependency here
// speaks Socket.IO and the emitted subset is small.
package broadcast

import (
	"encoding/json"
	"fmt"
)

// Engine.IO packet type prefixes (the outer transport Socket.IO rides
// on). Only the subset this server emits/consumes is implemented: open,
// and message framing; ping/pong keepalive is handled by the fiber
// websocket layer's own control frames.
const (
	eioOpen    = "0"
	eioMessage = "4"
)

// Socket.IO packet type prefixes, appended after the Engine.IO "4"
// message prefix.
const (
	sioConnect = "0"
	sioEvent   = "2"
)

// openPayload is the handshake body a Socket.IO v4 client expects on
// the Engine.IO "0" open packet.
type openPayload struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
}

// EncodeOpen builds the Engine.IO open packet sent immediately after a
// client connects, before any namespace traffic.
func EncodeOpen(sid string) string {
	data, _ := json.Marshal(openPayload{
		SID:          sid,
		Upgrades:     []string{},
		PingInterval: 25000,
		PingTimeout:  20000,
	})
	return eioOpen + string(data)
}

// EncodeNamespaceConnect builds the "40" packet that completes a
// client's connection to the default namespace.
func EncodeNamespaceConnect() string {
	return eioMessage + sioConnect + `{}`
}

// EncodeEvent builds a "42[...]" Socket.IO event packet carrying name
// and a single JSON-serializable payload, the framing every continuous
// event (led_update, state_update, effects_update, presets_update)
// uses.
func EncodeEvent(name string, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("broadcast: encode event %q: %w", name, err)
	}
	return fmt.Sprintf("%s%s[%q,%s]", eioMessage, sioEvent, name, data), nil
}
