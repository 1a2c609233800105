package api

import (
	"net/http"

	"github.com/annel0/cauldron-witchery/internal/events"
	"github.com/annel0/cauldron-witchery/internal/world"
	"github.com/gin-gonic/gin"
)

// InteractionRequest - клик игрока, который нужно провести через диспетчер событий
type InteractionRequest struct {
	Player   string       `json:"player" binding:"required"`
	Action   string       `json:"action"`
	Hand     string       `json:"hand"`
	Sneaking bool         `json:"sneaking"`
	Block    *Position    `json:"block"`
	Item     *ItemRequest `json:"item"`
}

// InteractionResponse - результат обработки клика
type InteractionResponse struct {
	Cancelled bool     `json:"cancelled"`
	Block     string   `json:"block,omitempty"`
	Messages  []string `json:"messages"`
}

// handleInteraction строит PlayerInteractEvent и диспатчит его в главной горутине
func (rs *RestServer) handleInteraction(c *gin.Context) {
	var req InteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}

	action := events.RightClickBlock
	if req.Action != "" {
		a, err := events.ParseAction(req.Action)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		action = a
	}
	hand, err := events.ParseHand(req.Hand)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	u, ok := rs.host.Users.ByName(req.Player)
	if !ok {
		respondError(c, http.StatusNotFound, "Игрок не найден")
		return
	}
	p := u.Player()

	resp := InteractionResponse{Messages: []string{}}

	err = rs.onMain(c.Request.Context(), func() {
		if rs.host.Recorder != nil {
			stop := rs.host.Recorder.Capture(p.UUID)
			defer func() { resp.Messages = stop() }()
		}
		p.SetSneaking(req.Sneaking)

		if req.Item != nil {
			if hand == events.HandOff {
				p.Inventory.SetItemInOffHand(req.Item.Stack())
			} else {
				p.Inventory.SetItemInMainHand(req.Item.Stack())
			}
		}
		it := p.Inventory.ItemInMainHand()
		if hand == events.HandOff {
			it = p.Inventory.ItemInOffHand()
		}

		var b *world.Block
		if req.Block != nil {
			if w, ok := rs.host.Worlds.World(p.World); ok {
				b = w.BlockAt(req.Block.Vec3())
				resp.Block = b.String()
			}
		}

		ev := events.NewPlayerInteractEvent(p, action, it, b, hand)
		rs.host.Dispatcher.Dispatch(c.Request.Context(), ev)
		resp.Cancelled = ev.Cancelled()
	})
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, err.Error())
		return
	}

	respondOK(c, http.StatusOK, "Событие обработано", resp)
}
