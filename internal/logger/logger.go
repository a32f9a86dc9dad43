// Package logger builds the process logger: console output, an
// optional rotating JSON file, and an EventBridge that forwards
// warn-and-above entries to connected viewers as notification events,
// so a browser watching the strand also sees sink failures and effect
// faults as they happen.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the log level, console encoding, and file rotation.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // console or json, for the stdout stream
	LogDir     string // directory for rotated files; empty disables file logging
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// logFileName is the rotated JSON log lumberjack writes under LogDir.
const logFileName = "ledcore.log"

// New builds the logger from cfg. A non-nil bridge is wired in as an
// extra core so warn/error entries reach viewers once a sink is
// attached to it.
func New(cfg Config, bridge *EventBridge) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	stdout := zapcore.NewConsoleEncoder(encoderCfg)
	if cfg.Format == "json" {
		stdout = zapcore.NewJSONEncoder(encoderCfg)
	}
	cores := []zapcore.Core{
		zapcore.NewCore(stdout, zapcore.AddSync(os.Stdout), level),
	}

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("logger: create log directory: %w", err)
		}
		rotated := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogDir, logFileName),
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(rotated), level))
	}

	if bridge != nil {
		cores = append(cores, bridge)
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// Event is one log entry as forwarded to viewers.
type Event struct {
	Level   string
	Message string
	Source  string
	Fields  map[string]interface{}
}

// EventBridge is a zapcore.Core that hands warn-and-above entries to an
// attached sink. The sink is attached after the broadcast hub exists;
// entries logged before that are dropped rather than queued, since a
// viewer that wasn't connected yet has no use for them.
type EventBridge struct {
	mu     sync.RWMutex
	sink   func(Event)
	fields []zapcore.Field
}

// NewEventBridge creates a bridge with no sink attached.
func NewEventBridge() *EventBridge {
	return &EventBridge{}
}

// Attach sets the function that receives forwarded entries.
func (b *EventBridge) Attach(sink func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sink = sink
}

func (b *EventBridge) Enabled(lvl zapcore.Level) bool {
	return lvl >= zapcore.WarnLevel
}

func (b *EventBridge) With(fields []zapcore.Field) zapcore.Core {
	combined := make([]zapcore.Field, 0, len(b.fields)+len(fields))
	combined = append(combined, b.fields...)
	combined = append(combined, fields...)
	return &EventBridge{sink: b.sink, fields: combined}
}

func (b *EventBridge) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if b.Enabled(entry.Level) {
		ce = ce.AddCore(entry, b)
	}
	return ce
}

func (b *EventBridge) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	b.mu.RLock()
	sink := b.sink
	b.mu.RUnlock()
	if sink == nil {
		return nil
	}

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range b.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	source := "engine"
	if s, ok := enc.Fields["source"].(string); ok {
		source = s
		delete(enc.Fields, "source")
	}

	sink(Event{
		Level:   entry.Level.String(),
		Message: entry.Message,
		Source:  source,
		Fields:  enc.Fields,
	})
	return nil
}

func (b *EventBridge) Sync() error { return nil }
