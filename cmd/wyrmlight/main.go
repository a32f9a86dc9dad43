package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlog "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/wyrmlight/ledcore/internal/api"
	"github.com/wyrmlight/ledcore/internal/broadcast"
	"github.com/wyrmlight/ledcore/internal/config"
	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/hal"
	"github.com/wyrmlight/ledcore/internal/layout"
	"github.com/wyrmlight/ledcore/internal/logger"
	"github.com/wyrmlight/ledcore/internal/persistence"
	"github.com/wyrmlight/ledcore/internal/preset"
	"github.com/wyrmlight/ledcore/internal/render"
	"github.com/wyrmlight/ledcore/internal/sink"
	"github.com/wyrmlight/ledcore/internal/state"

	_ "github.com/wyrmlight/ledcore/pkg/effects"
)

var Version = "0.1.0"

func main() {
	fmt.Printf("ledcore %s\n", Version)

	flags, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledcore: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledcore: %v\n", err)
		os.Exit(1)
	}
	config.ApplyFlags(cfg, flags)

	logCfg := logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		LogDir:     cfg.Logger.LogDir,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
		Compress:   cfg.Logger.Compress,
	}
	bridge := logger.NewEventBridge()
	log, err := logger.New(logCfg, bridge)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledcore: init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	board := detectBoard(log)

	activeLayout, err := buildLayout(cfg)
	if err != nil {
		log.Fatal("build layout", zap.Error(err))
	}
	pixelSink, sinkKind := buildSink(cfg, log, activeLayout.PixelCount(), board)
	ctrl := layout.NewController(activeLayout, pixelSink)

	presets := preset.NewStore()
	store, err := persistence.NewStore(cfg.Persistence.Path)
	if err != nil {
		log.Fatal("open persistence store", zap.Error(err))
	}

	registry := effect.Global()
	st, err := state.New(registry, presets, cfg.Render.DefaultEffect)
	if err != nil {
		log.Fatal("build initial state", zap.Error(err))
	}

	restorePersisted(store, registry, st, presets, log)

	hub := broadcast.NewHub()
	go hub.Run()
	bridge.Attach(func(ev logger.Event) {
		_ = hub.BroadcastEvent("notification", map[string]interface{}{
			"level":   ev.Level,
			"message": ev.Message,
			"source":  ev.Source,
			"fields":  ev.Fields,
		})
	})

	regime := render.RegimeReal
	if cfg.Render.Mock {
		regime = render.RegimeMock
	}
	loop := render.NewLoop(ctrl, st, hub, log, regime)

	sinkInfo := api.SinkInfo{Kind: sinkKind}
	if sinkKind == "gpio" {
		sinkInfo.GPIOPin = cfg.Render.GPIOPin
	}
	svc := api.NewService(st, presets, store, hub, ctrl, loop, sinkInfo, log)
	handler := api.NewHandler(svc)

	app := fiber.New(fiber.Config{
		AppName:               "ledcore v" + Version,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(fiberlog.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	handler.SetupRoutes(app)
	app.Static("/static", "./static")
	app.Static("/", "./static")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renderDone := make(chan error, 1)
	go func() { renderDone <- loop.Run(ctx) }()

	if flags.Debug {
		c := cron.New()
		_, err := c.AddFunc("@every 1s", func() {
			log.Debug("render fps", zap.Float64("fps", loop.FPS()))
		})
		if err != nil {
			log.Warn("schedule fps debug job", zap.Error(err))
		} else {
			c.Start()
			defer c.Stop()
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Error("http server stopped", zap.Error(err))
		}
	}()
	log.Info("ledcore listening", zap.String("addr", addr), zap.String("sink", sinkKind))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	cancel()
	select {
	case <-renderDone:
	case <-time.After(2 * time.Second):
	}
	hub.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()
	_ = app.ShutdownWithContext(shutdownCtx)
	_ = pixelSink.Close()
}

func buildLayout(cfg *config.Config) (layout.Layout, error) {
	r := cfg.Render
	if r.DefaultLayout == "hex" {
		return layout.LoadHexFile(r.HexLayoutPath)
	}
	if r.ScaleXCount < 1 || r.ScaleYCount < 1 || r.PanelCount < 1 {
		return nil, fmt.Errorf("scale layout needs positive x_count/y_count/panel_count, got %d/%d/%d", r.ScaleXCount, r.ScaleYCount, r.PanelCount)
	}
	return layout.NewScale(r.ScaleXCount, r.ScaleYCount, r.PanelCount, r.Spacing, r.ScaleLength, r.ScaleWidth), nil
}

func buildSink(cfg *config.Config, log *zap.Logger, n int, board *hal.BoardInfo) (sink.PixelSink, string) {
	if cfg.Render.Mock {
		return sink.NewMock(), "mock"
	}

	switch cfg.Render.Sink {
	case "gpio":
		if err := hal.ValidateGPIOPin(cfg.Render.GPIOPin); err != nil {
			log.Warn("gpio sink misconfigured, falling back to mock", zap.Error(err))
			return sink.NewMock(), "mock"
		}
		if !board.TrustedForBitBang() {
			log.Warn("gpio sink needs a known board to bit-bang reliably, falling back to mock")
			return sink.NewMock(), "mock"
		}
		s, err := sink.NewWS2812(cfg.Render.GPIOPin, n)
		if err != nil {
			log.Warn("gpio sink unavailable, falling back to mock", zap.Error(err))
			return sink.NewMock(), "mock"
		}
		return s, "gpio"
	case "serial":
		s, err := sink.NewSerial(cfg.Render.SerialPort, cfg.Render.SerialBaud, n)
		if err != nil {
			log.Warn("serial sink unavailable, falling back to mock", zap.Error(err))
			return sink.NewMock(), "mock"
		}
		return s, "serial"
	default:
		s, err := sink.NewAPA102(cfg.Render.SPIBus, n)
		if err != nil {
			log.Warn("spi sink unavailable, falling back to mock", zap.Error(err))
			return sink.NewMock(), "mock"
		}
		return s, "spi"
	}
}

// restorePersisted loads the blob store's saved effect/brightness/power
// state and presets into freshly built state and preset objects. A
// missing or unreadable blob just leaves the in-code defaults in place.
func restorePersisted(store *persistence.Store, registry *effect.Registry, st *state.GlobalState, presets *preset.Store, log *zap.Logger) {
	blob, err := store.Load()
	if err != nil {
		log.Warn("load persisted state, starting from defaults", zap.Error(err))
		return
	}

	restored := make([]preset.Preset, 0, len(blob.Presets))
	for _, pb := range blob.Presets {
		p, err := pb.ToPreset(registry)
		if err != nil {
			log.Warn("decode persisted preset, skipping", zap.Int64("preset_id", pb.ID), zap.Error(err))
			continue
		}
		restored = append(restored, p)
	}
	presets.LoadAll(restored)

	if blob.CurrentEffect == "" {
		return
	}
	raw := blob.ParametersByEffect[blob.CurrentEffect]
	params, err := persistence.DecodeParams(registry, blob.CurrentEffect, raw)
	if err != nil {
		log.Warn("decode persisted parameters, starting from defaults", zap.Error(err))
		return
	}
	if err := st.SetEffect(blob.CurrentEffect, params); err != nil {
		log.Warn("restore persisted effect, starting from default", zap.Error(err))
		return
	}
	st.SetBrightness(blob.Brightness)
	st.SetPowerState(blob.PowerState)

	if blob.ActivePresetID != nil {
		if p, ok := presets.Get(*blob.ActivePresetID); ok {
			if err := st.ApplyPreset(p); err != nil {
				log.Warn("restore active preset, leaving unset", zap.Int64("preset_id", *blob.ActivePresetID), zap.Error(err))
			}
		}
	}
}
