package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wyrmlight/ledcore/internal/broadcast"
	"github.com/wyrmlight/ledcore/internal/effect"
	"github.com/wyrmlight/ledcore/internal/layout"
	"github.com/wyrmlight/ledcore/internal/persistence"
	"github.com/wyrmlight/ledcore/internal/preset"
	"github.com/wyrmlight/ledcore/internal/render"
	"github.com/wyrmlight/ledcore/internal/sink"
	"github.com/wyrmlight/ledcore/internal/state"

	_ "github.com/wyrmlight/ledcore/pkg/effects"
)

func testApp(t *testing.T, lay layout.Layout) (*fiber.App, *state.GlobalState) {
	t.Helper()

	presets := preset.NewStore()
	store, err := persistence.NewStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	st, err := state.New(effect.Global(), presets, "SingleColor")
	require.NoError(t, err)

	ctrl := layout.NewController(lay, sink.NewMock())
	hub := broadcast.NewHub()
	loop := render.NewLoop(ctrl, st, hub, zap.NewNop(), render.RegimeMock)

	svc := NewService(st, presets, store, hub, ctrl, loop, SinkInfo{Kind: "mock"}, zap.NewNop())
	app := fiber.New()
	NewHandler(svc).SetupRoutes(app)
	return app, st
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	fields := map[string]json.RawMessage{}
	_ = json.Unmarshal(raw, &fields)
	return resp, fields
}

func scaleApp(t *testing.T) (*fiber.App, *state.GlobalState) {
	return testApp(t, layout.NewScale(3, 2, 1, 0, 0, 0))
}

func TestPostEffectsMissingNameIs400(t *testing.T) {
	app, _ := scaleApp(t)
	resp, body := doJSON(t, app, "POST", "/effects", map[string]interface{}{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `false`, string(body["success"]))
}

func TestPostEffectsUnknownNameIs404(t *testing.T) {
	app, _ := scaleApp(t)
	resp, _ := doJSON(t, app, "POST", "/effects", map[string]interface{}{"effect_name": "Nope"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPostEffectsSwitchesAndMergesParameters(t *testing.T) {
	app, st := scaleApp(t)
	resp, body := doJSON(t, app, "POST", "/effects", map[string]interface{}{
		"effect_name": "SingleColor",
		"parameters":  map[string]interface{}{"color": map[string]int{"r": 255, "g": 128, "b": 0}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `true`, string(body["success"]))

	snap := st.Snapshot()
	assert.Equal(t, "SingleColor", snap.EffectClass)
	assert.Equal(t, uint8(255), snap.Params["color"].Color.R)
	assert.Equal(t, uint8(128), snap.Params["color"].Color.G)
}

func TestPostEffectsSameEffectMergesOntoLiveParams(t *testing.T) {
	app, st := scaleApp(t)

	resp, _ := doJSON(t, app, "POST", "/effects", map[string]interface{}{
		"effect_name": "RainbowSpin",
		"parameters":  map[string]interface{}{"direction": "ccw"},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// a repeat POST naming the active effect with only one parameter
	// must leave the previously customized one untouched
	resp, _ = doJSON(t, app, "POST", "/effects", map[string]interface{}{
		"effect_name": "RainbowSpin",
		"parameters":  map[string]interface{}{"speed": 0.9},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	snap := st.Snapshot()
	assert.Equal(t, "RainbowSpin", snap.EffectClass)
	assert.Equal(t, "ccw", snap.Params["direction"].Enum)
	assert.Equal(t, 0.9, snap.Params["speed"].Float)
}

func TestPostEffectsHexOnlyEffectOnScaleLayoutIs400(t *testing.T) {
	app, _ := scaleApp(t)
	resp, _ := doJSON(t, app, "POST", "/effects", map[string]interface{}{"effect_name": "RandomColorHex"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPostStateClampsBrightnessAndClearsPreset(t *testing.T) {
	app, st := scaleApp(t)
	require.NoError(t, st.ApplyPreset(preset.Preset{ID: 7, EffectClass: "SingleColor", Brightness: 0.5}))

	resp, body := doJSON(t, app, "POST", "/state", map[string]interface{}{"brightness": 1.7})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `1`, string(body["brightness"]))
	assert.JSONEq(t, `null`, string(body["active_preset_id"]))
}

func TestPostStatePowerOffStartsFade(t *testing.T) {
	app, st := scaleApp(t)
	resp, body := doJSON(t, app, "POST", "/state", map[string]interface{}{"power_state": false})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// mid-fade: power still reads on, target reads off
	assert.JSONEq(t, `true`, string(body["power_state"]))
	assert.JSONEq(t, `false`, string(body["target_power_state"]))
	assert.True(t, st.Snapshot().FadeActive)
}

func TestPresetLifecycle(t *testing.T) {
	app, st := scaleApp(t)

	resp, created := doJSON(t, app, "POST", "/presets", map[string]interface{}{
		"name":       "orange",
		"effect":     "SingleColor",
		"brightness": 0.6,
		"parameters": map[string]interface{}{"color": map[string]int{"r": 255, "g": 128, "b": 0}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var id int64
	require.NoError(t, json.Unmarshal(created["id"], &id))
	require.NotZero(t, id)

	resp, _ = doJSON(t, app, "POST", "/presets/apply", map[string]interface{}{"id": id})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	snap := st.Snapshot()
	require.NotNil(t, snap.ActivePresetID)
	assert.Equal(t, id, *snap.ActivePresetID)
	assert.Equal(t, 0.6, snap.Brightness)

	// a manual brightness change clears the active preset
	doJSON(t, app, "POST", "/state", map[string]interface{}{"brightness": 0.7})
	snap = st.Snapshot()
	assert.Nil(t, snap.ActivePresetID)
	assert.Equal(t, 0.7, snap.Brightness)

	resp, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/presets/%d", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/presets/%d", id), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestApplyHexOnlyPresetOnScaleFallsBack(t *testing.T) {
	app, st := scaleApp(t)
	resp, body := doJSON(t, app, "POST", "/presets/apply", map[string]interface{}{
		"effect": "RandomColorHex",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `false`, string(body["success"]))
	assert.Equal(t, "SingleColor", st.Snapshot().EffectClass)
}

func TestGetConfigScale(t *testing.T) {
	app, _ := scaleApp(t)
	resp, body := doJSON(t, app, "GET", "/config", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `"scale"`, string(body["type"]))
	assert.JSONEq(t, `3`, string(body["x_count"]))
}

func TestGetConfigHexListsEveryLEDOnce(t *testing.T) {
	hex := layout.NewHex([]layout.HexCell{
		{X: 0, Y: 0, LEDs: []int{0, 1, 2}},
		{X: 1, Y: 0.5, LEDs: []int{3, 4, 5}},
	}, 6)
	require.NoError(t, hex.Validate())
	app, _ := testApp(t, hex)

	resp, body := doJSON(t, app, "GET", "/config", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `"hex"`, string(body["type"]))

	var cells []struct {
		OrderedLEDs []int `json:"ordered_leds"`
	}
	require.NoError(t, json.Unmarshal(body["hexagons"], &cells))
	seen := map[int]bool{}
	for _, c := range cells {
		for _, led := range c.OrderedLEDs {
			assert.False(t, seen[led], "led %d listed twice", led)
			seen[led] = true
		}
	}
	assert.Len(t, seen, 6)
}

func TestGetEffectsReflectsLiveValues(t *testing.T) {
	app, _ := scaleApp(t)
	doJSON(t, app, "POST", "/effects", map[string]interface{}{
		"effect_name": "SingleColor",
		"parameters":  map[string]interface{}{"color": map[string]int{"r": 9, "g": 8, "b": 7}},
	})

	resp, body := doJSON(t, app, "GET", "/effects", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `"SingleColor"`, string(body["current_effect"]))

	var params map[string]map[string]struct {
		Value json.RawMessage `json:"value"`
	}
	require.NoError(t, json.Unmarshal(body["effect_parameters"], &params))
	assert.JSONEq(t, `{"r":9,"g":8,"b":7}`, string(params["SingleColor"]["color"].Value))
}

func TestHexSetupFlow(t *testing.T) {
	hex := layout.NewHex([]layout.HexCell{
		{X: 0, Y: 0, LEDs: []int{0, 1}},
		{X: 1, Y: 0, LEDs: []int{2, 3}},
	}, 4)
	app, _ := testApp(t, hex)

	// export before reset: no session active yet
	resp, _ := doJSON(t, app, "GET", "/config/hex/export", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/config/hex/reset", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	for led := 0; led < 4; led++ {
		resp, _ = doJSON(t, app, "POST", "/config/hex/assign", map[string]int{"led": led, "cell": led / 2})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, export := doJSON(t, app, "GET", "/config/hex/export", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[0,1]`, string(export["0"]))
	assert.JSONEq(t, `[2,3]`, string(export["1"]))
}
