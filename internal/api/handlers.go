package api

import (
	"net/http"
	"time"

	"github.com/annel0/cauldron-witchery/internal/auth"
	"github.com/annel0/cauldron-witchery/internal/island"
	"github.com/annel0/cauldron-witchery/internal/world/entity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, GenericResponse{Success: false, Message: message})
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, GenericResponse{Success: true, Message: message, Data: data})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// TokenRequest - запрос токена оператора
type TokenRequest struct {
	Operator string `json:"operator" binding:"required"`
	Secret   string `json:"secret" binding:"required"`
	ReadOnly bool   `json:"read_only"`
}

// TokenResponse - выданный токен
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	IsAdmin   bool      `json:"is_admin"`
}

// handleToken выдаёт JWT оператору, знающему секрет
func (rs *RestServer) handleToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}

	if !auth.CheckOperatorSecret(rs.adminSecret, req.Secret) {
		rs.logger.Warn("Отказ в выдаче токена оператору %s (ip=%s)", req.Operator, c.ClientIP())
		respondError(c, http.StatusUnauthorized, "Неверный секрет оператора")
		return
	}

	token, expires, err := rs.tokens.Issue(req.Operator, !req.ReadOnly)
	if err != nil {
		rs.logger.Error("Ошибка генерации JWT: %v", err)
		respondError(c, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	rs.logger.Info("🔑 Выдан токен оператору %s (admin=%v)", req.Operator, !req.ReadOnly)
	respondOK(c, http.StatusOK, "Токен выдан", TokenResponse{Token: token, ExpiresAt: expires, IsAdmin: !req.ReadOnly})
}

// handleStats возвращает статистику сервера
func (rs *RestServer) handleStats(c *gin.Context) {
	stats := make(map[string]interface{})

	if rs.host.Worlds != nil {
		worlds := make(map[string]interface{})
		for _, name := range rs.host.Worlds.Worlds() {
			if w, ok := rs.host.Worlds.World(name); ok {
				worlds[name] = w.Stats()
			}
		}
		stats["worlds"] = worlds
		stats["managed_worlds"] = rs.host.Worlds.ManagedWorlds()
	}
	if rs.host.Islands != nil {
		stats["islands"] = rs.host.Islands.Count()
	}
	if rs.host.Users != nil {
		stats["players_online"] = len(rs.host.Users.Online())
	}
	if rs.host.Bus != nil {
		stats["eventbus"] = rs.host.Bus.Metrics()
	}
	stats["memory_details"] = rs.metrics.GetDetailedMemoryStats()

	respondOK(c, http.StatusOK, "Статистика получена", stats)
}

// handleServerInfo возвращает информацию о сервере
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	info := map[string]interface{}{
		"version": Version,
		"name":    "Cauldron Witchery",
		"status":  "running",
		"process": rs.metrics.Snapshot(),
	}
	if rs.host.Sticks != nil {
		info["magic_sticks"] = rs.host.Sticks.All()
	}
	respondOK(c, http.StatusOK, "Информация о сервере", info)
}

// handleListIslands возвращает все острова
func (rs *RestServer) handleListIslands(c *gin.Context) {
	islands := rs.host.Islands.All()
	views := make([]island.View, 0, len(islands))
	for _, is := range islands {
		views = append(views, is.View())
	}
	respondOK(c, http.StatusOK, "Список островов", gin.H{"islands": views, "total": len(views)})
}

// handleListPlayers возвращает игроков на сервере
func (rs *RestServer) handleListPlayers(c *gin.Context) {
	online := rs.host.Users.Online()
	players := make([]PlayerView, 0, len(online))
	for _, u := range online {
		players = append(players, newPlayerView(u.Player()))
	}
	respondOK(c, http.StatusOK, "Игроки на сервере", gin.H{"players": players, "total": len(players)})
}

// PlayerView - представление игрока в ответах API
type PlayerView struct {
	UUID     string   `json:"uuid"`
	Name     string   `json:"name"`
	World    string   `json:"world"`
	Position Position `json:"position"`
	Op       bool     `json:"op"`
	Locale   string   `json:"locale"`
}

func newPlayerView(p *entity.Player) PlayerView {
	pos := p.Position.ToBlock()
	return PlayerView{
		UUID:     p.UUID.String(),
		Name:     p.Name,
		World:    p.World,
		Position: Position{X: pos.X, Y: pos.Y, Z: pos.Z},
		Op:       p.Op,
		Locale:   p.Locale,
	}
}

// CreateIslandRequest - запрос на создание острова
type CreateIslandRequest struct {
	World           string         `json:"world" binding:"required"`
	Center          Position       `json:"center"`
	Range           int            `json:"range" binding:"required,min=1"`
	ProtectionRange int            `json:"protection_range"`
	Owner           string         `json:"owner"`
	Flags           map[string]int `json:"flags"`
}

// handleCreateIsland создаёт остров
func (rs *RestServer) handleCreateIsland(c *gin.Context) {
	var req CreateIslandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса: "+err.Error())
		return
	}
	if !rs.host.Worlds.InWorld(req.World) {
		respondError(c, http.StatusBadRequest, "Мир не управляется аддоном")
		return
	}

	owner := uuid.Nil
	if req.Owner != "" {
		u, ok := rs.host.Users.ByName(req.Owner)
		if !ok {
			respondError(c, http.StatusNotFound, "Игрок не найден")
			return
		}
		owner = u.UUID()
	}

	is := island.New(req.World, req.Center.Vec3(), req.Range, owner)
	if req.ProtectionRange > 0 {
		is.ProtectionRange = req.ProtectionRange
	}
	for flag, rank := range req.Flags {
		is.SetFlag(flag, island.Rank(rank))
	}

	if err := rs.host.Islands.Add(is); err != nil {
		respondError(c, http.StatusConflict, err.Error())
		return
	}
	if err := rs.persistIsland(c, is); err != nil {
		_ = rs.host.Islands.Remove(is.ID)
		respondError(c, http.StatusInternalServerError, "Не удалось сохранить остров")
		return
	}
	rs.logger.Info("🏝️ Создан остров %s в %s (%d,%d,%d)", is.ID, is.World, is.Center.X, is.Center.Y, is.Center.Z)
	respondOK(c, http.StatusCreated, "Остров создан", is.View())
}

// SetMemberRequest - изменение ранга игрока на острове
type SetMemberRequest struct {
	Player string `json:"player" binding:"required"`
	Rank   int    `json:"rank"`
}

// handleSetMember устанавливает ранг игрока на острове
func (rs *RestServer) handleSetMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Неверный ID острова")
		return
	}
	var req SetMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}

	is, ok := rs.host.Islands.Get(id)
	if !ok {
		respondError(c, http.StatusNotFound, "Остров не найден")
		return
	}
	u, ok := rs.host.Users.ByName(req.Player)
	if !ok {
		respondError(c, http.StatusNotFound, "Игрок не найден")
		return
	}

	is.SetRank(u.UUID(), island.Rank(req.Rank))
	if err := rs.persistIsland(c, is); err != nil {
		respondError(c, http.StatusInternalServerError, "Не удалось сохранить остров")
		return
	}
	respondOK(c, http.StatusOK, "Ранг обновлён", is.View())
}

// persistIsland сохраняет снимок острова, если хранилище подключено
func (rs *RestServer) persistIsland(c *gin.Context, is *island.Island) error {
	if rs.host.Store == nil {
		return nil
	}
	if err := rs.host.Store.Save(c.Request.Context(), is.View()); err != nil {
		rs.logger.Error("❌ Ошибка сохранения острова %s: %v", is.ID, err)
		return err
	}
	return nil
}
