package hal

import "fmt"

type PinCapability int

const (
	CapGPIO PinCapability = 1 << iota
	CapPWM
	CapI2C
	CapSPI
	CapUART
	Cap1Wire
)

// PinInfo describes one BCM-numbered GPIO line on the 40-pin header: its
// physical header position, a human label, and which capabilities it
// carries. Config and the pixel sinks address pins exclusively by BCM
// number, so the table is keyed by BCM rather than physical position.
type PinInfo struct {
	Physical     int
	BCM          int
	Name         string
	Capabilities PinCapability
}

var raspberryPiPins = map[int]*PinInfo{
	2:  {Physical: 3, BCM: 2, Name: "GPIO2 (SDA1)", Capabilities: CapGPIO | CapI2C},
	3:  {Physical: 5, BCM: 3, Name: "GPIO3 (SCL1)", Capabilities: CapGPIO | CapI2C},
	4:  {Physical: 7, BCM: 4, Name: "GPIO4 (GPCLK0)", Capabilities: CapGPIO | Cap1Wire},
	14: {Physical: 8, BCM: 14, Name: "GPIO14 (TXD0)", Capabilities: CapGPIO | CapUART},
	15: {Physical: 10, BCM: 15, Name: "GPIO15 (RXD0)", Capabilities: CapGPIO | CapUART},
	17: {Physical: 11, BCM: 17, Name: "GPIO17", Capabilities: CapGPIO},
	18: {Physical: 12, BCM: 18, Name: "GPIO18 (PWM0)", Capabilities: CapGPIO | CapPWM},
	27: {Physical: 13, BCM: 27, Name: "GPIO27", Capabilities: CapGPIO},
	22: {Physical: 15, BCM: 22, Name: "GPIO22", Capabilities: CapGPIO},
	23: {Physical: 16, BCM: 23, Name: "GPIO23", Capabilities: CapGPIO},
	24: {Physical: 18, BCM: 24, Name: "GPIO24", Capabilities: CapGPIO},
	10: {Physical: 19, BCM: 10, Name: "GPIO10 (MOSI)", Capabilities: CapGPIO | CapSPI},
	9:  {Physical: 21, BCM: 9, Name: "GPIO9 (MISO)", Capabilities: CapGPIO | CapSPI},
	25: {Physical: 22, BCM: 25, Name: "GPIO25", Capabilities: CapGPIO},
	11: {Physical: 23, BCM: 11, Name: "GPIO11 (SCLK)", Capabilities: CapGPIO | CapSPI},
	8:  {Physical: 24, BCM: 8, Name: "GPIO8 (CE0)", Capabilities: CapGPIO | CapSPI},
	7:  {Physical: 26, BCM: 7, Name: "GPIO7 (CE1)", Capabilities: CapGPIO | CapSPI},
	5:  {Physical: 29, BCM: 5, Name: "GPIO5", Capabilities: CapGPIO},
	6:  {Physical: 31, BCM: 6, Name: "GPIO6", Capabilities: CapGPIO},
	12: {Physical: 32, BCM: 12, Name: "GPIO12 (PWM0)", Capabilities: CapGPIO | CapPWM},
	13: {Physical: 33, BCM: 13, Name: "GPIO13 (PWM1)", Capabilities: CapGPIO | CapPWM},
	19: {Physical: 35, BCM: 19, Name: "GPIO19 (PWM1)", Capabilities: CapGPIO | CapPWM},
	16: {Physical: 36, BCM: 16, Name: "GPIO16", Capabilities: CapGPIO},
	26: {Physical: 37, BCM: 26, Name: "GPIO26", Capabilities: CapGPIO},
	20: {Physical: 38, BCM: 20, Name: "GPIO20", Capabilities: CapGPIO},
	21: {Physical: 40, BCM: 21, Name: "GPIO21", Capabilities: CapGPIO},
}

// GetPinByBCM looks up a header pin by its BCM number, for the GET /hal
// introspection response.
func GetPinByBCM(bcm int) *PinInfo {
	return raspberryPiPins[bcm]
}

// ValidateGPIOPin rejects a configured BCM pin number that either isn't
// on the 40-pin header at all or carries no general-purpose I/O
// capability (some header positions are fixed-function only), before
// buildSink commits to bit-banging a WS2812 strand on it.
func ValidateGPIOPin(bcm int) error {
	pin := raspberryPiPins[bcm]
	if pin == nil {
		return fmt.Errorf("BCM%d is not a header GPIO pin", bcm)
	}
	if pin.Capabilities&CapGPIO == 0 {
		return fmt.Errorf("BCM%d (%s) has no general-purpose I/O capability", bcm, pin.Name)
	}
	return nil
}
