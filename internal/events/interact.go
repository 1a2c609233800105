package events

import (
	"fmt"
	"strings"

	"github.com/annel0/cauldron-witchery/internal/item"
	"github.com/annel0/cauldron-witchery/internal/world"
	"github.com/annel0/cauldron-witchery/internal/world/entity"
)

// PlayerInteractEventName - имя события взаимодействия игрока
const PlayerInteractEventName = "PlayerInteractEvent"

// Action - тип клика
type Action int

const (
	LeftClickAir Action = iota
	LeftClickBlock
	RightClickAir
	RightClickBlock
	Physical
)

var actionNames = map[Action]string{
	LeftClickAir:    "LEFT_CLICK_AIR",
	LeftClickBlock:  "LEFT_CLICK_BLOCK",
	RightClickAir:   "RIGHT_CLICK_AIR",
	RightClickBlock: "RIGHT_CLICK_BLOCK",
	Physical:        "PHYSICAL",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction разбирает имя действия (RIGHT_CLICK_BLOCK и т.п.)
func ParseAction(s string) (Action, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Hand - рука, которой совершено действие
type Hand int

const (
	HandNone Hand = iota
	HandMain
	HandOff
)

func (h Hand) String() string {
	switch h {
	case HandMain:
		return "HAND"
	case HandOff:
		return "OFF_HAND"
	default:
		return "NONE"
	}
}

// ParseHand разбирает имя руки. Пустая строка означает основную руку.
func ParseHand(s string) (Hand, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "HAND", "MAIN", "MAIN_HAND":
		return HandMain, nil
	case "OFF_HAND", "OFFHAND", "OFF":
		return HandOff, nil
	case "NONE":
		return HandNone, nil
	}
	return HandNone, fmt.Errorf("unknown hand %q", s)
}

// PlayerInteractEvent - игрок кликнул по воздуху или блоку
type PlayerInteractEvent struct {
	Player *entity.Player
	Action Action
	Hand   Hand
	Block  *world.Block
	Item   *item.Stack

	cancelled bool
}

// NewPlayerInteractEvent создаёт событие взаимодействия
func NewPlayerInteractEvent(p *entity.Player, action Action, it *item.Stack, b *world.Block, hand Hand) *PlayerInteractEvent {
	return &PlayerInteractEvent{Player: p, Action: action, Item: it, Block: b, Hand: hand}
}

func (e *PlayerInteractEvent) EventName() string { return PlayerInteractEventName }

// HasItem - в руке есть непустой предмет
func (e *PlayerInteractEvent) HasItem() bool { return e.Item != nil && !e.Item.IsAir() }

// HasBlock - клик пришёлся по блоку
func (e *PlayerInteractEvent) HasBlock() bool { return e.Block != nil }

func (e *PlayerInteractEvent) Cancelled() bool { return e.cancelled }

func (e *PlayerInteractEvent) SetCancelled(cancel bool) { e.cancelled = cancel }
