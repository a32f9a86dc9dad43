package hal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateGPIOPinAcceptsGeneralPurposePin(t *testing.T) {
	assert.NoError(t, ValidateGPIOPin(18))
}

func TestValidateGPIOPinRejectsOffHeaderPin(t *testing.T) {
	assert.Error(t, ValidateGPIOPin(99))
}

func TestGetPinByBCMReturnsExpectedName(t *testing.T) {
	pin := GetPinByBCM(18)
	if assert.NotNil(t, pin) {
		assert.Equal(t, "GPIO18 (PWM0)", pin.Name)
		assert.Equal(t, 12, pin.Physical)
		assert.True(t, pin.Capabilities&CapPWM != 0)
	}
}
