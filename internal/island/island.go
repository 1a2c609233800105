package island

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/annel0/cauldron-witchery/internal/vec"
	"github.com/annel0/cauldron-witchery/internal/world"
	"github.com/google/uuid"
)

// Rank - ранг игрока на острове. Сравнивается с рангом, который требует флаг.
type Rank int

const (
	RankBanned   Rank = -1
	RankVisitor  Rank = 0
	RankCoop     Rank = 200
	RankTrusted  Rank = 400
	RankMember   Rank = 500
	RankSubOwner Rank = 900
	RankOwner    Rank = 1000
	RankMod      Rank = 5000
	RankAdmin    Rank = 10000
)

// String возвращает имя ранга
func (r Rank) String() string {
	switch r {
	case RankBanned:
		return "banned"
	case RankVisitor:
		return "visitor"
	case RankCoop:
		return "coop"
	case RankTrusted:
		return "trusted"
	case RankMember:
		return "member"
	case RankSubOwner:
		return "sub-owner"
	case RankOwner:
		return "owner"
	case RankMod:
		return "mod"
	case RankAdmin:
		return "admin"
	default:
		return "custom"
	}
}

// Island - защищённая область мира, принадлежащая игроку.
// Пространство острова - квадрат center±Range по X/Z на всю высоту мира,
// защищённая зона - center±ProtectionRange (не больше Range).
type Island struct {
	ID              uuid.UUID
	World           string
	Center          vec.Vec3
	Range           int
	ProtectionRange int
	Owner           uuid.UUID
	CreatedAt       time.Time

	mu      sync.RWMutex
	members map[uuid.UUID]Rank
	flags   map[string]Rank
}

// New создает остров с владельцем
func New(worldName string, center vec.Vec3, islandRange int, owner uuid.UUID) *Island {
	is := &Island{
		ID:              uuid.New(),
		World:           worldName,
		Center:          center,
		Range:           islandRange,
		ProtectionRange: islandRange,
		Owner:           owner,
		CreatedAt:       time.Now().UTC(),
		members:         make(map[uuid.UUID]Rank),
		flags:           make(map[string]Rank),
	}
	if owner != uuid.Nil {
		is.members[owner] = RankOwner
	}
	return is
}

// inSquare проверяет попадание X/Z в квадрат [c-r, c+r)
func (is *Island) inSquare(pos vec.Vec3, r int) bool {
	return pos.X >= is.Center.X-r && pos.X < is.Center.X+r &&
		pos.Z >= is.Center.Z-r && pos.Z < is.Center.Z+r
}

// InIslandSpace проверяет, принадлежит ли локация пространству острова
func (is *Island) InIslandSpace(loc world.Location) bool {
	return loc.World == is.World && is.inSquare(loc.Pos, is.Range)
}

// OnIsland проверяет, находится ли локация в защищённой зоне
func (is *Island) OnIsland(loc world.Location) bool {
	r := is.ProtectionRange
	if r > is.Range {
		r = is.Range
	}
	return loc.World == is.World && is.inSquare(loc.Pos, r)
}

// Rank возвращает ранг игрока (посетитель, если не участник)
func (is *Island) Rank(player uuid.UUID) Rank {
	is.mu.RLock()
	defer is.mu.RUnlock()
	if r, ok := is.members[player]; ok {
		return r
	}
	return RankVisitor
}

// SetRank устанавливает ранг игрока. RankVisitor удаляет игрока из участников.
func (is *Island) SetRank(player uuid.UUID, rank Rank) {
	is.mu.Lock()
	defer is.mu.Unlock()
	if rank == RankVisitor {
		delete(is.members, player)
		return
	}
	is.members[player] = rank
}

// Members возвращает копию карты участников
func (is *Island) Members() map[uuid.UUID]Rank {
	is.mu.RLock()
	defer is.mu.RUnlock()
	out := make(map[uuid.UUID]Rank, len(is.members))
	for k, v := range is.members {
		out[k] = v
	}
	return out
}

// FlagRank возвращает минимальный ранг для флага или def, если флаг не настроен
func (is *Island) FlagRank(flagID string, def Rank) Rank {
	is.mu.RLock()
	defer is.mu.RUnlock()
	if r, ok := is.flags[flagID]; ok {
		return r
	}
	return def
}

// SetFlag задает минимальный ранг для флага
func (is *Island) SetFlag(flagID string, rank Rank) {
	is.mu.Lock()
	defer is.mu.Unlock()
	is.flags[flagID] = rank
}

// IsAllowed проверяет, разрешён ли флаг игроку на острове
func (is *Island) IsAllowed(player uuid.UUID, flagID string, def Rank) bool {
	return is.Rank(player) >= is.FlagRank(flagID, def)
}

// View - сериализуемое представление острова
type View struct {
	ID              string          `json:"id"`
	World           string          `json:"world"`
	Center          vec.Vec3        `json:"center"`
	Range           int             `json:"range"`
	ProtectionRange int             `json:"protection_range"`
	Owner           string          `json:"owner"`
	Members         map[string]Rank `json:"members"`
	Flags           map[string]Rank `json:"flags"`
	CreatedAt       time.Time       `json:"created_at"`
}

// View возвращает снимок острова
func (is *Island) View() View {
	is.mu.RLock()
	defer is.mu.RUnlock()

	v := View{
		ID:              is.ID.String(),
		World:           is.World,
		Center:          is.Center,
		Range:           is.Range,
		ProtectionRange: is.ProtectionRange,
		Owner:           is.Owner.String(),
		Members:         make(map[string]Rank, len(is.members)),
		Flags:           make(map[string]Rank, len(is.flags)),
		CreatedAt:       is.CreatedAt,
	}
	for id, r := range is.members {
		v.Members[id.String()] = r
	}
	for f, r := range is.flags {
		v.Flags[f] = r
	}
	return v
}

// sortByCenter упорядочивает острова детерминированно
func sortByCenter(islands []*Island) {
	sort.Slice(islands, func(i, j int) bool {
		a, b := islands[i].Center, islands[j].Center
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Z < b.Z
	})
}

// FromView восстанавливает остров из снимка (используется хранилищем)
func FromView(v View) (*Island, error) {
	id, err := uuid.Parse(v.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad id %q", ErrInvalid, v.ID)
	}
	owner := uuid.Nil
	if v.Owner != "" {
		if owner, err = uuid.Parse(v.Owner); err != nil {
			return nil, fmt.Errorf("%w: bad owner %q", ErrInvalid, v.Owner)
		}
	}

	is := &Island{
		ID:              id,
		World:           v.World,
		Center:          v.Center,
		Range:           v.Range,
		ProtectionRange: v.ProtectionRange,
		Owner:           owner,
		CreatedAt:       v.CreatedAt,
		members:         make(map[uuid.UUID]Rank, len(v.Members)),
		flags:           make(map[string]Rank, len(v.Flags)),
	}
	for raw, r := range v.Members {
		member, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: bad member %q", ErrInvalid, raw)
		}
		is.members[member] = r
	}
	for f, r := range v.Flags {
		is.flags[f] = r
	}
	return is, nil
}
