package hal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchBoardModelPrecedence(t *testing.T) {
	assert.Equal(t, BoardRPi5, matchBoardModel("Raspberry Pi 5 Model B Rev 1.0"))
	assert.Equal(t, BoardRPi3Plus, matchBoardModel("Raspberry Pi 3 Model B+ Rev 1.3"))
	assert.Equal(t, BoardRPi3, matchBoardModel("Raspberry Pi 3 Model B Rev 1.2"))
	assert.Equal(t, BoardRPiZero2W, matchBoardModel("Raspberry Pi Zero 2 W Rev 1.0"))
	assert.Equal(t, BoardUnknown, matchBoardModel("Some Other SBC"))
}

func TestBoardModelStringMatchesSpecTable(t *testing.T) {
	for model := range boardSpecs {
		assert.NotEqual(t, "Unknown", model.String())
	}
	assert.Equal(t, "Unknown", BoardUnknown.String())
}

func TestTrustedForBitBang(t *testing.T) {
	assert.False(t, (*BoardInfo)(nil).TrustedForBitBang())
	assert.False(t, (&BoardInfo{Model: BoardUnknown}).TrustedForBitBang())
	assert.True(t, (&BoardInfo{Model: BoardRPi4}).TrustedForBitBang())
}
