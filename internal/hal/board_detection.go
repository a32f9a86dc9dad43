package hal

import (
	"fmt"
	"os"
	"strings"
)

type BoardModel int

const (
	BoardUnknown BoardModel = iota
	BoardRPiZero
	BoardRPiZeroW
	BoardRPiZero2W
	BoardRPi1
	BoardRPi2
	BoardRPi3
	BoardRPi3Plus
	BoardRPi4
	BoardRPi5
	BoardRPiCM3
	BoardRPiCM4
)

type BoardInfo struct {
	Model    BoardModel
	Name     string
	HasWiFi  bool
	HasBT    bool
	NumGPIO  int
	NumPWM   int
	NumI2C   int
	NumSPI   int
	CPUCores int
	RAMSize  int
	GPIOChip string
}

// TrustedForBitBang reports whether this board's timing is known well
// enough to drive a software bit-banged sink (WS2812 over plain GPIO).
// Unknown boards and anything we've never measured fall back to false so
// buildSink falls back to the mock sink instead of guessing at cycle counts.
func (b *BoardInfo) TrustedForBitBang() bool {
	return b != nil && b.Model != BoardUnknown
}

// boardSpec is the fixed hardware profile for one board model, shared by
// DetectBoard (to populate a BoardInfo) and String (to name it) so the
// two never drift out of sync the way a pair of parallel switches can.
type boardSpec struct {
	name     string
	hasWiFi  bool
	hasBT    bool
	numGPIO  int
	numPWM   int
	numI2C   int
	numSPI   int
	cpuCores int
	ramSize  int // fixed RAM in MB; 0 means probe /proc/meminfo instead
}

var boardSpecs = map[BoardModel]boardSpec{
	BoardRPiZero:   {name: "Raspberry Pi Zero", numGPIO: 26, numPWM: 2, numI2C: 1, numSPI: 2, cpuCores: 1, ramSize: 512},
	BoardRPiZeroW:  {name: "Raspberry Pi Zero W", hasWiFi: true, hasBT: true, numGPIO: 26, numPWM: 2, numI2C: 1, numSPI: 2, cpuCores: 1, ramSize: 512},
	BoardRPiZero2W: {name: "Raspberry Pi Zero 2 W", hasWiFi: true, hasBT: true, numGPIO: 26, numPWM: 2, numI2C: 1, numSPI: 2, cpuCores: 4, ramSize: 512},
	BoardRPi1:      {name: "Raspberry Pi 1", numGPIO: 26, numPWM: 2, numI2C: 1, numSPI: 1, cpuCores: 1, ramSize: 512},
	BoardRPi2:      {name: "Raspberry Pi 2", numGPIO: 26, numPWM: 2, numI2C: 1, numSPI: 2, cpuCores: 4, ramSize: 1024},
	BoardRPi3:      {name: "Raspberry Pi 3", hasWiFi: true, hasBT: true, numGPIO: 26, numPWM: 4, numI2C: 1, numSPI: 2, cpuCores: 4, ramSize: 1024},
	BoardRPi3Plus:  {name: "Raspberry Pi 3 B+", hasWiFi: true, hasBT: true, numGPIO: 26, numPWM: 4, numI2C: 1, numSPI: 2, cpuCores: 4, ramSize: 1024},
	BoardRPi4:      {name: "Raspberry Pi 4", hasWiFi: true, hasBT: true, numGPIO: 26, numPWM: 4, numI2C: 6, numSPI: 5, cpuCores: 4},
	BoardRPi5:      {name: "Raspberry Pi 5", hasWiFi: true, hasBT: true, numGPIO: 26, numPWM: 4, numI2C: 8, numSPI: 5, cpuCores: 4},
	BoardRPiCM3:    {name: "Raspberry Pi Compute Module 3", numGPIO: 28, numPWM: 4, numI2C: 1, numSPI: 2, cpuCores: 4, ramSize: 1024},
	BoardRPiCM4:    {name: "Raspberry Pi Compute Module 4", numGPIO: 28, numPWM: 4, numI2C: 6, numSPI: 5, cpuCores: 4},
}

// GPIOChipName returns the GPIO character device name for this board model.
// Auto-detects by reading the sysfs labels of gpiochip0 and gpiochip4 for
// the RP1 or BCM2835 controller; the model itself is not consulted.
// Falls back to gpiochip0 if auto-detection fails.
func (b BoardModel) GPIOChipName() string {
	// Pi 5 RP1 chip can be on gpiochip0 or gpiochip4 depending on OS version
	for _, chip := range []string{"gpiochip0", "gpiochip4"} {
		labelPath := fmt.Sprintf("/sys/bus/gpio/devices/%s/label", chip)
		data, err := os.ReadFile(labelPath)
		if err != nil {
			continue
		}
		label := strings.TrimSpace(string(data))
		// Pi 5 uses pinctrl-rp1, Pi 4 and earlier use pinctrl-bcm2835
		if strings.Contains(label, "pinctrl-rp1") || strings.Contains(label, "pinctrl-bcm2") {
			return chip
		}
	}
	return "gpiochip0"
}

// DetectBoard identifies the host board from /proc/cpuinfo (falling back
// to /proc/device-tree/model for Pi 5, which omits the cpuinfo Model
// line) and fills in its fixed hardware profile from boardSpecs.
func DetectBoard() (*BoardInfo, error) {
	data, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to read cpuinfo: %w", err)
	}

	model := extractModel(string(data))
	spec, ok := boardSpecs[model]
	if !ok {
		return &BoardInfo{
			Model:    BoardUnknown,
			Name:     "Unknown Board",
			NumGPIO:  26,
			NumPWM:   2,
			NumI2C:   1,
			NumSPI:   1,
			CPUCores: 1,
			RAMSize:  512,
			GPIOChip: "gpiochip0",
		}, nil
	}

	ramSize := spec.ramSize
	if ramSize == 0 {
		ramSize = detectRAMSize()
	}

	return &BoardInfo{
		Model:    model,
		Name:     spec.name,
		HasWiFi:  spec.hasWiFi,
		HasBT:    spec.hasBT,
		NumGPIO:  spec.numGPIO,
		NumPWM:   spec.numPWM,
		NumI2C:   spec.numI2C,
		NumSPI:   spec.numSPI,
		CPUCores: spec.cpuCores,
		RAMSize:  ramSize,
		GPIOChip: model.GPIOChipName(),
	}, nil
}

func extractModel(cpuinfo string) BoardModel {
	lines := strings.Split(cpuinfo, "\n")
	for _, line := range lines {
		if strings.HasPrefix(line, "Model") {
			if m := matchBoardModel(line); m != BoardUnknown {
				return m
			}
		}
	}

	// Pi 5 doesn't have a Model line in cpuinfo; check device-tree instead.
	if dtModel, err := os.ReadFile("/proc/device-tree/model"); err == nil {
		if m := matchBoardModel(string(dtModel)); m != BoardUnknown {
			return m
		}
	}

	return BoardUnknown
}

func matchBoardModel(text string) BoardModel {
	model := strings.ToLower(text)

	switch {
	case strings.Contains(model, "pi 5"):
		return BoardRPi5
	case strings.Contains(model, "pi 4"):
		return BoardRPi4
	case strings.Contains(model, "pi 3 model b+"):
		return BoardRPi3Plus
	case strings.Contains(model, "pi 3"):
		return BoardRPi3
	case strings.Contains(model, "pi 2"):
		return BoardRPi2
	case strings.Contains(model, "pi 1") || strings.Contains(model, "model b"):
		return BoardRPi1
	case strings.Contains(model, "zero 2 w"):
		return BoardRPiZero2W
	case strings.Contains(model, "zero w"):
		return BoardRPiZeroW
	case strings.Contains(model, "zero"):
		return BoardRPiZero
	case strings.Contains(model, "compute module 4"):
		return BoardRPiCM4
	case strings.Contains(model, "compute module 3"):
		return BoardRPiCM3
	}
	return BoardUnknown
}

func detectRAMSize() int {
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return 0
	}

	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		if strings.HasPrefix(line, "MemTotal:") {
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				var kb int
				fmt.Sscanf(parts[1], "%d", &kb)
				return kb / 1024
			}
		}
	}

	return 0
}

func (b BoardModel) String() string {
	if b == BoardUnknown {
		return "Unknown"
	}
	if spec, ok := boardSpecs[b]; ok {
		return spec.name
	}
	return "Unknown"
}
