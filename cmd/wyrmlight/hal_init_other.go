//go:build !linux
// +build !linux

package main

import (
	"go.uber.org/zap"

	"github.com/wyrmlight/ledcore/internal/hal"
)

// detectBoard always reports no board on non-Linux platforms: the
// /proc/cpuinfo and /proc/device-tree probes hal.DetectBoard relies on
// don't exist there.
func detectBoard(log *zap.Logger) *hal.BoardInfo {
	log.Info("non-Linux platform, GPIO pin map unavailable")
	return nil
}
