//go:build linux
// +build linux

package main

import (
	"go.uber.org/zap"

	"github.com/wyrmlight/ledcore/internal/hal"
)

// detectBoard probes for a known Raspberry Pi model via /proc/cpuinfo
// (and /proc/device-tree/model as a fallback) and logs what it finds.
// config.Render.Sink picks the driver; buildSink consults the detected
// board only to fall back to the mock sink when a gpio sink is requested
// on a board not trusted for bit-banging.
func detectBoard(log *zap.Logger) *hal.BoardInfo {
	board, err := hal.DetectBoard()
	if err != nil {
		log.Info("no known board detected, GPIO pin map unavailable", zap.Error(err))
		return nil
	}
	log.Info("board detected", zap.String("model", board.Name), zap.String("gpiochip", board.GPIOChip))
	return board
}
