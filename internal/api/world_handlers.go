package api

import (
	"net/http"
	"strings"

	"github.com/annel0/cauldron-witchery/internal/item"
	"github.com/annel0/cauldron-witchery/internal/vec"
	"github.com/annel0/cauldron-witchery/internal/world/block"
	"github.com/annel0/cauldron-witchery/internal/world/entity"
	"github.com/gin-gonic/gin"
)

// Position - координаты блока в запросах
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Vec3 переводит позицию в координаты блока
func (p Position) Vec3() vec.Vec3 {
	return vec.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

// ItemRequest - описание предмета
type ItemRequest struct {
	Material    string            `json:"material" binding:"required"`
	Amount      int               `json:"amount"`
	DisplayName string            `json:"display_name"`
	Tags        map[string]string `json:"tags"`
}

// Stack создаёт стопку предметов
func (r *ItemRequest) Stack() *item.Stack {
	amount := r.Amount
	if amount <= 0 {
		amount = 1
	}
	s := item.New(r.Material, amount)
	s.DisplayName = r.DisplayName
	for k, v := range r.Tags {
		s.WithTag(k, v)
	}
	return s
}

// JoinPlayerRequest - вход игрока на сервер
type JoinPlayerRequest struct {
	Name        string   `json:"name" binding:"required"`
	World       string   `json:"world" binding:"required"`
	Position    Position `json:"position"`
	Op          bool     `json:"op"`
	Locale      string   `json:"locale"`
	Permissions []string `json:"permissions"`
}

// handleJoinPlayer добавляет игрока в мир
func (rs *RestServer) handleJoinPlayer(c *gin.Context) {
	var req JoinPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	if _, exists := rs.host.Users.ByName(req.Name); exists {
		respondError(c, http.StatusConflict, "Игрок уже на сервере")
		return
	}
	w, ok := rs.host.Worlds.World(req.World)
	if !ok {
		respondError(c, http.StatusNotFound, "Мир не найден")
		return
	}

	p := entity.NewPlayer(req.Name, req.World, req.Position.Vec3().Center())
	p.Op = req.Op
	if req.Locale != "" {
		p.Locale = req.Locale
	}
	for _, perm := range req.Permissions {
		p.SetPermission(perm, true)
	}

	err := rs.onMain(c.Request.Context(), func() {
		w.AddEntity(&p.Entity)
		rs.host.Users.Join(p)
	})
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondOK(c, http.StatusCreated, "Игрок на сервере", newPlayerView(p))
}

// SetBlockRequest - установка блока
type SetBlockRequest struct {
	World    string   `json:"world" binding:"required"`
	Position Position `json:"position"`
	Type     string   `json:"type" binding:"required"`
}

// handleSetBlock ставит блок в мире
func (rs *RestServer) handleSetBlock(c *gin.Context) {
	var req SetBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	w, ok := rs.host.Worlds.World(req.World)
	if !ok {
		respondError(c, http.StatusNotFound, "Мир не найден")
		return
	}
	id, ok := block.Lookup(req.Type)
	if !ok {
		respondError(c, http.StatusBadRequest, "Неизвестный тип блока "+strings.ToUpper(req.Type))
		return
	}

	var placed string
	err := rs.onMain(c.Request.Context(), func() {
		placed = w.SetBlock(req.Position.Vec3(), id).String()
	})
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondOK(c, http.StatusOK, "Блок установлен", gin.H{"block": placed})
}

// DropItemRequest - выброс предмета в мир
type DropItemRequest struct {
	World    string      `json:"world" binding:"required"`
	Position Position    `json:"position"`
	Item     ItemRequest `json:"item"`
}

// handleDropItem выбрасывает предмет в центр блока
func (rs *RestServer) handleDropItem(c *gin.Context) {
	var req DropItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	w, ok := rs.host.Worlds.World(req.World)
	if !ok {
		respondError(c, http.StatusNotFound, "Мир не найден")
		return
	}

	var e *entity.Entity
	err := rs.onMain(c.Request.Context(), func() {
		e = w.DropItem(req.Item.Stack(), req.Position.Vec3().Center())
	})
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondOK(c, http.StatusCreated, "Предмет выброшен", gin.H{"entity_id": e.ID})
}
