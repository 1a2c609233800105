package recipe

import (
	"context"
	"sort"
	"time"

	"github.com/annel0/cauldron-witchery/internal/eventbus"
	"github.com/annel0/cauldron-witchery/internal/item"
	"github.com/annel0/cauldron-witchery/internal/logging"
	"github.com/annel0/cauldron-witchery/internal/stick"
	"github.com/annel0/cauldron-witchery/internal/user"
	"github.com/annel0/cauldron-witchery/internal/vec"
	"github.com/annel0/cauldron-witchery/internal/world"
	"github.com/annel0/cauldron-witchery/internal/world/entity"
)

const (
	// AttemptEventType - тип события попытки варки в шине
	AttemptEventType = "CauldronRecipeAttempt"
	source           = "cauldron-witchery"

	// AttemptPriority - попытки варки не отбрасываются при переполнении шины,
	// публикация ждёт места в буфере в горутине воркера
	AttemptPriority = eventbus.PriorityHigh + 2
)

// Task - асинхронная задача обработки рецепта
type Task interface {
	Run(ctx context.Context)
}

// Factory создаёт задачу для клика по котлу
type Factory func(u *user.User, b *world.Block, s *stick.MagicStick, entities []*entity.Entity) Task

// Ingredient - предметы одного материала, лежащие в котле
type Ingredient struct {
	Material string `json:"material"`
	Amount   int    `json:"amount"`
}

// Attempt - нагрузка события CauldronRecipeAttempt
type Attempt struct {
	PlayerUUID  string       `json:"player_uuid"`
	PlayerName  string       `json:"player_name"`
	World       string       `json:"world"`
	Position    vec.Vec3     `json:"position"`
	BlockType   string       `json:"block_type"`
	StickID     string       `json:"stick_id,omitempty"`
	StickPower  int          `json:"stick_power"`
	Ingredients []Ingredient `json:"ingredients"`
	EntityIDs   []uint64     `json:"entity_ids"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ProcessingTask передаёт попытку варки движку рецептов через шину событий.
// Подбор рецепта здесь не выполняется.
type ProcessingTask struct {
	user     *user.User
	block    *world.Block
	stick    *stick.MagicStick
	entities []*entity.Entity
	items    []*item.Stack
	bus      eventbus.EventBus
	logger   *logging.Logger
	created  time.Time
}

// NewTaskFactory возвращает фабрику задач, публикующих в bus.
// Фабрика вызывается уже в горутине воркера: предметы копируются там, в момент создания задачи,
// и дальше задача работает только с копиями.
func NewTaskFactory(bus eventbus.EventBus) Factory {
	logger := logging.GetComponentLogger("recipe")
	return func(u *user.User, b *world.Block, s *stick.MagicStick, entities []*entity.Entity) Task {
		items := make([]*item.Stack, 0, len(entities))
		for _, e := range entities {
			if e != nil && e.Item != nil {
				items = append(items, e.Item.Clone())
			}
		}
		return &ProcessingTask{
			user:     u,
			block:    b,
			stick:    s,
			entities: append([]*entity.Entity(nil), entities...),
			items:    items,
			bus:      bus,
			logger:   logger,
			created:  time.Now().UTC(),
		}
	}
}

// Ingredients группирует предметы по материалу, отсортировано по материалу
func (t *ProcessingTask) Ingredients() []Ingredient {
	totals := make(map[string]int)
	for _, it := range t.items {
		if it.IsAir() {
			continue
		}
		totals[it.Material] += it.Amount
	}

	out := make([]Ingredient, 0, len(totals))
	for m, n := range totals {
		out = append(out, Ingredient{Material: m, Amount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Material < out[j].Material })
	return out
}

// Attempt собирает нагрузку события
func (t *ProcessingTask) Attempt() Attempt {
	a := Attempt{
		Ingredients: t.Ingredients(),
		EntityIDs:   make([]uint64, 0, len(t.entities)),
		CreatedAt:   t.created,
	}
	if t.user != nil {
		a.PlayerUUID = t.user.UUID().String()
		a.PlayerName = t.user.Name()
	}
	if t.block != nil {
		loc := t.block.Location()
		a.World = loc.World
		a.Position = loc.Pos
		a.BlockType = t.block.Type.Name()
	}
	if t.stick != nil {
		a.StickID = t.stick.ID
		a.StickPower = t.stick.Power
	}
	for _, e := range t.entities {
		if e != nil {
			a.EntityIDs = append(a.EntityIDs, e.ID)
		}
	}
	return a
}

// Run публикует попытку варки. Ошибки публикации только логируются.
func (t *ProcessingTask) Run(ctx context.Context) {
	a := t.Attempt()
	t.logger.Info("🧪 %s варит в %s(%d,%d,%d): ингредиентов=%d", a.PlayerName, a.World, a.Position.X, a.Position.Y, a.Position.Z, len(a.Ingredients))
	for _, ing := range a.Ingredients {
		t.logger.Debug("  %s x%d", ing.Material, ing.Amount)
	}

	if t.bus == nil {
		return
	}
	env, err := eventbus.NewEnvelope(source, AttemptEventType, a)
	if err != nil {
		t.logger.Error("Не удалось сериализовать попытку варки: %v", err)
		return
	}
	env.CorrelationID = a.PlayerUUID
	env.Priority = AttemptPriority
	if err := t.bus.Publish(ctx, env); err != nil {
		t.logger.Error("Не удалось опубликовать попытку варки: %v", err)
	}
}
