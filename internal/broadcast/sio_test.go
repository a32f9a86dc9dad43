package broadcast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeOpenIsEngineIOOpenPacket(t *testing.T) {
	packet := EncodeOpen("abc123")
	assert.True(t, strings.HasPrefix(packet, "0"))
	assert.Contains(t, packet, `"sid":"abc123"`)
}

func TestEncodeNamespaceConnect(t *testing.T) {
	assert.Equal(t, `40{}`, EncodeNamespaceConnect())
}

func TestEncodeEvent(t *testing.T) {
	packet, err := EncodeEvent("state_update", map[string]bool{"power_state": true})
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(packet, "42"))
	assert.Contains(t, packet, `"state_update"`)
	assert.Contains(t, packet, `"power_state":true`)
}
