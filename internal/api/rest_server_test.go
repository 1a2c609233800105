package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/annel0/cauldron-witchery/internal/auth"
	"github.com/annel0/cauldron-witchery/internal/cauldron"
	"github.com/annel0/cauldron-witchery/internal/config"
	"github.com/annel0/cauldron-witchery/internal/eventbus"
	"github.com/annel0/cauldron-witchery/internal/events"
	"github.com/annel0/cauldron-witchery/internal/flags"
	"github.com/annel0/cauldron-witchery/internal/i18n"
	"github.com/annel0/cauldron-witchery/internal/island"
	"github.com/annel0/cauldron-witchery/internal/recipe"
	"github.com/annel0/cauldron-witchery/internal/scheduler"
	"github.com/annel0/cauldron-witchery/internal/stick"
	"github.com/annel0/cauldron-witchery/internal/storage"
	"github.com/annel0/cauldron-witchery/internal/user"
	"github.com/annel0/cauldron-witchery/internal/world"
	_ "github.com/annel0/cauldron-witchery/internal/world/block/implementations"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const operatorSecret = "brew-secret"

type testServer struct {
	rs    *RestServer
	bus   eventbus.EventBus
	store    *storage.MemoryIslandRepo
	recorder *user.CaptureMessenger
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Default()

	tr, err := i18n.LoadEmbedded(i18n.BaseLocale)
	require.NoError(t, err)
	worlds, err := world.NewManagerFromConfig(cfg.Worlds)
	require.NoError(t, err)
	sticks, err := stick.NewManagerFromConfig(cfg.MagicSticks)
	require.NoError(t, err)

	recorder := user.NewCaptureMessenger()
	users := user.NewService(tr, recorder)
	islands := island.NewManager()
	store := storage.NewMemoryIslandRepo()
	bus := eventbus.NewMemoryBus(16)
	t.Cleanup(func() { _ = bus.Close() })

	registry := flags.NewRegistry()
	flag, err := cauldron.RegisterProtectionFlag(registry, island.RankMember)
	require.NoError(t, err)

	dispatcher := events.NewDispatcher(nil)
	cauldron.NewClickListener(cauldron.Deps{
		Worlds:    worlds,
		Users:     users,
		Sticks:    sticks,
		Islands:   islands,
		Flags:     flags.NewChecker(islands, cfg.Addon.PermissionPrefix),
		Scheduler: scheduler.Sync{},
		Tasks:     recipe.NewTaskFactory(bus),
		Flag:      flag,
	}).Register(dispatcher)

	tokens, err := auth.NewTokenService("", 0)
	require.NoError(t, err)

	rs := NewRestServer(Config{
		AdminSecret: operatorSecret,
		Tokens:      tokens,
		Registerer:  prometheus.NewRegistry(),
		Host: Host{
			Worlds:     worlds,
			Islands:    islands,
			Users:      users,
			Sticks:     sticks,
			Dispatcher: dispatcher,
			Bus:        bus,
			Recorder:   recorder,
			Store:      store,
		},
	})
	return &testServer{rs: rs, bus: bus, store: store, recorder: recorder}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, GenericResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.rs.Handler().ServeHTTP(w, req)

	var resp GenericResponse
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

func (ts *testServer) token(t *testing.T, readOnly bool) string {
	t.Helper()
	w, resp := ts.do(t, http.MethodPost, "/api/auth/token", "", TokenRequest{Operator: "ops", Secret: operatorSecret, ReadOnly: readOnly})
	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	return data["token"].(string)
}

func TestHealthAndAuth(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = ts.do(t, http.MethodGet, "/api/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = ts.do(t, http.MethodPost, "/api/auth/token", "", TokenRequest{Operator: "ops", Secret: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	readOnly := ts.token(t, true)
	w, _ = ts.do(t, http.MethodGet, "/api/stats", readOnly, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = ts.do(t, http.MethodPost, "/api/players", readOnly, JoinPlayerRequest{Name: "x", World: "bskyblock_world"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp := ts.do(t, http.MethodGet, "/api/server", readOnly, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Version, resp.Data.(map[string]interface{})["version"])
}

func TestInteractionFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, false)

	w, _ := ts.do(t, http.MethodPost, "/api/players", token, JoinPlayerRequest{Name: "witch", World: "bskyblock_world"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = ts.do(t, http.MethodPost, "/api/blocks", token, SetBlockRequest{World: "bskyblock_world", Position: Position{X: 2, Y: 64, Z: 2}, Type: "water_cauldron"})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = ts.do(t, http.MethodPost, "/api/items", token, DropItemRequest{World: "bskyblock_world", Position: Position{X: 2, Y: 64, Z: 2}, Item: ItemRequest{Material: "REDSTONE", Amount: 2}})
	require.Equal(t, http.StatusCreated, w.Code)

	click := InteractionRequest{
		Player: "witch",
		Block:  &Position{X: 2, Y: 64, Z: 2},
		Item:   &ItemRequest{Material: "STICK", DisplayName: "Magic Stick"},
	}

	// Острова ещё нет
	w, resp := ts.do(t, http.MethodPost, "/api/interactions", token, click)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["cancelled"])
	assert.Len(t, data["messages"], 1)
	assert.Zero(t, ts.bus.Metrics().Published)

	w, _ = ts.do(t, http.MethodPost, "/api/islands", token, CreateIslandRequest{World: "bskyblock_world", Range: 50, Owner: "witch"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp = ts.do(t, http.MethodPost, "/api/interactions", token, click)
	require.Equal(t, http.StatusOK, w.Code)
	data = resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["cancelled"])
	assert.Empty(t, data["messages"])
	assert.Equal(t, uint64(1), ts.bus.Metrics().Published)

	// Обычная палка не трогает событие
	click.Item = &ItemRequest{Material: "STICK"}
	_, resp = ts.do(t, http.MethodPost, "/api/interactions", token, click)
	assert.Equal(t, false, resp.Data.(map[string]interface{})["cancelled"])

	w, resp = ts.do(t, http.MethodGet, "/api/islands", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, resp.Data.(map[string]interface{})["total"])
	assert.Equal(t, 1, ts.store.Count())
}

func TestInteractionValidation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, false)

	w, _ := ts.do(t, http.MethodPost, "/api/interactions", token, InteractionRequest{Player: "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = ts.do(t, http.MethodPost, "/api/interactions", token, InteractionRequest{Player: "ghost", Action: "jump"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = ts.do(t, http.MethodPost, "/api/blocks", token, SetBlockRequest{World: "bskyblock_world", Type: "obsidian"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = ts.do(t, http.MethodPost, "/api/islands", token, CreateIslandRequest{World: "world", Range: 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInteractionMessagesAreScopedToRequest(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, false)

	w, _ := ts.do(t, http.MethodPost, "/api/players", token, JoinPlayerRequest{Name: "witch", World: "bskyblock_world"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = ts.do(t, http.MethodPost, "/api/blocks", token, SetBlockRequest{World: "bskyblock_world", Position: Position{X: 2, Y: 64, Z: 2}, Type: "cauldron"})
	require.Equal(t, http.StatusOK, w.Code)

	// Сообщение вне обработки клика не попадает в ответ и не хранится
	witch, ok := ts.rs.host.Users.ByName("witch")
	require.True(t, ok)
	witch.SendMessage("general.errors.no-island")

	click := InteractionRequest{
		Player: "witch",
		Block:  &Position{X: 2, Y: 64, Z: 2},
		Item:   &ItemRequest{Material: "STICK", DisplayName: "Magic Stick"},
	}
	for i := 0; i < 20; i++ {
		w, resp := ts.do(t, http.MethodPost, "/api/interactions", token, click)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, resp.Data.(map[string]interface{})["messages"], 1)
	}
	assert.Zero(t, ts.recorder.Active())
}
