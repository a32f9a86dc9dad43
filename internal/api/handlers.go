package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Handler adapts fiber's request/response cycle onto Service calls,
// keeping routes thin and business logic in Service.
type Handler struct {
	service *Service
}

// NewHandler builds a Handler bound to service.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SetupRoutes registers the control-plane endpoints, the hex-setup
// flow, the HAL introspection endpoint, and the streaming socket.
func (h *Handler) SetupRoutes(app *fiber.App) {
	app.Get("/effects", h.getEffects)
	app.Post("/effects", h.postEffects)

	app.Get("/state", h.getState)
	app.Post("/state", h.postState)

	app.Get("/presets", h.listPresets)
	app.Post("/presets", h.createPreset)
	app.Delete("/presets/:id", h.deletePreset)
	app.Post("/presets/apply", h.applyPreset)

	app.Get("/config", h.getConfig)
	app.Get("/hal", h.getHAL)

	app.Post("/config/hex/assign", h.hexAssign)
	app.Post("/config/hex/next", h.hexNext)
	app.Post("/config/hex/reset", h.hexReset)
	app.Get("/config/hex/export", h.hexExport)

	app.Get("/socket.io/", websocket.New(h.handleSocket))
}

func (h *Handler) getEffects(c *fiber.Ctx) error {
	return c.JSON(h.service.GetEffects())
}

func (h *Handler) postEffects(c *fiber.Ctx) error {
	var req SetEffectRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, ClientError("malformed request body"))
	}
	if err := h.service.SetEffect(req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) getState(c *fiber.Ctx) error {
	return c.JSON(h.service.GetState())
}

func (h *Handler) postState(c *fiber.Ctx) error {
	var req SetStateRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, ClientError("malformed request body"))
	}
	view, err := h.service.SetState(req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) listPresets(c *fiber.Ctx) error {
	return c.JSON(h.service.ListPresets())
}

func (h *Handler) createPreset(c *fiber.Ctx) error {
	var req PresetRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, ClientError("malformed request body"))
	}
	saved, err := h.service.CreatePreset(req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(saved)
}

func (h *Handler) deletePreset(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return writeError(c, ClientError("id must be an integer"))
	}
	if err := h.service.DeletePreset(id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) applyPreset(c *fiber.Ctx) error {
	var req PresetRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, ClientError("malformed request body"))
	}
	result, err := h.service.ApplyPreset(req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

func (h *Handler) getConfig(c *fiber.Ctx) error {
	return c.JSON(h.service.GetConfig())
}

func (h *Handler) getHAL(c *fiber.Ctx) error {
	return c.JSON(h.service.GetHAL())
}

// --- hex setup mode ---

type hexAssignRequest struct {
	LED  int `json:"led"`
	Cell int `json:"cell"`
}

func (h *Handler) hexAssign(c *fiber.Ctx) error {
	var req hexAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, ClientError("malformed request body"))
	}
	if err := h.service.HexAssign(req.LED, req.Cell); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) hexNext(c *fiber.Ctx) error {
	cursor, more, err := h.service.HexNext()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"cursor": cursor, "has_more": more})
}

func (h *Handler) hexReset(c *fiber.Ctx) error {
	if err := h.service.HexReset(); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) hexExport(c *fiber.Ctx) error {
	export, err := h.service.HexExport()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(export)
}

// handleSocket drives the Socket.IO-compatible streaming connection:
// handshake, on-connect snapshot, then the hub's register/write/read
// pump cycle.
func (h *Handler) handleSocket(conn *websocket.Conn) {
	h.service.hub.HandleConnection(conn, h.service.ConnectSnapshot)
}
