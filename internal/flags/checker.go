package flags

import (
	"github.com/annel0/cauldron-witchery/internal/events"
	"github.com/annel0/cauldron-witchery/internal/island"
	"github.com/annel0/cauldron-witchery/internal/logging"
	"github.com/annel0/cauldron-witchery/internal/user"
	"github.com/annel0/cauldron-witchery/internal/world"
)

// Islands - поиск защищённого острова по локации
type Islands interface {
	ProtectedIslandAt(loc world.Location) (*island.Island, bool)
}

// Checker проверяет защитные флаги и сам сообщает игроку об отказе
type Checker struct {
	islands          Islands
	permissionPrefix string
	logger           *logging.Logger
}

// NewChecker создаёт проверку флагов. permissionPrefix - префикс прав аддона (например, "cauldronwitchery").
func NewChecker(islands Islands, permissionPrefix string) *Checker {
	return &Checker{
		islands:          islands,
		permissionPrefix: permissionPrefix,
		logger:           logging.GetComponentLogger("flags"),
	}
}

// BypassPermission - право обхода флага: <prefix>.mod.bypass.<FLAG>
func (c *Checker) BypassPermission(f *Flag) string {
	return c.permissionPrefix + ".mod.bypass." + f.ID
}

// CheckIsland проверяет, может ли пользователь выполнить действие в локации.
// При отказе событие отменяется, а игрок получает сообщение protection.protected.
func (c *Checker) CheckIsland(ev events.Cancellable, u *user.User, loc world.Location, f *Flag) bool {
	if u == nil || f == nil {
		return true
	}
	if u.IsOp() || u.HasPermission(c.BypassPermission(f)) {
		return true
	}

	var allowed bool
	if is, ok := c.islands.ProtectedIslandAt(loc); ok {
		allowed = is.IsAllowed(u.UUID(), f.ID, f.DefaultRank)
	} else {
		allowed = f.WorldDefault
	}
	if allowed {
		return true
	}

	c.logger.Debug("Флаг %s запрещает действие %s в %s", f.ID, u.Name(), loc)
	if ev != nil {
		ev.SetCancelled(true)
	}
	u.SendMessage("protection.protected", "[description]", u.Translation(f.NameKey()))
	return false
}
