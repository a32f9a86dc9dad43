package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wyrmlight/ledcore/internal/colorfx"
)

func TestPublishFrameNoopWithoutViewers(t *testing.T) {
	h := NewHub()
	h.PublishFrame([]colorfx.Color{{R: 1}})
	assert.Nil(t, h.takeFrame(), "frame must not be staged when nobody is listening")
}

func TestPublishThenTakeFrameDrainsDirtyFlag(t *testing.T) {
	h := NewHub()
	h.viewers["fake"] = &viewer{id: "fake"} // simulate a connected viewer without a real socket

	h.PublishFrame([]colorfx.Color{{R: 9, G: 8, B: 7}})
	got := h.takeFrame()
	assert.Equal(t, []colorfx.Color{{R: 9, G: 8, B: 7}}, got)

	assert.Nil(t, h.takeFrame(), "second take before a new publish should be empty")
}

func TestLedUpdatePayloadShape(t *testing.T) {
	payload := ledUpdatePayload([]colorfx.Color{{R: 1, G: 2, B: 3, W: 4}})
	leds := payload["leds"].([]map[string]uint8)
	assert.Equal(t, uint8(1), leds[0]["r"])
	assert.Equal(t, uint8(4), leds[0]["w"])
}
