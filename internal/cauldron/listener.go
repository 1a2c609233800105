package cauldron

import (
	"context"
	"strings"

	"github.com/annel0/cauldron-witchery/internal/events"
	"github.com/annel0/cauldron-witchery/internal/flags"
	"github.com/annel0/cauldron-witchery/internal/island"
	"github.com/annel0/cauldron-witchery/internal/item"
	"github.com/annel0/cauldron-witchery/internal/logging"
	"github.com/annel0/cauldron-witchery/internal/observability"
	"github.com/annel0/cauldron-witchery/internal/recipe"
	"github.com/annel0/cauldron-witchery/internal/scheduler"
	"github.com/annel0/cauldron-witchery/internal/stick"
	"github.com/annel0/cauldron-witchery/internal/user"
	"github.com/annel0/cauldron-witchery/internal/world"
	"github.com/annel0/cauldron-witchery/internal/world/entity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Worlds отвечает, управляет ли аддон миром
type Worlds interface {
	InWorld(name string) bool
}

// Users выдаёт пользователя для игрока
type Users interface {
	User(p *entity.Player) *user.User
}

// Sticks распознаёт волшебные палочки
type Sticks interface {
	IsMagicStick(it *item.Stack, u *user.User) bool
	MagicStick(it *item.Stack, u *user.User) *stick.MagicStick
}

// Islands ищет остров по локации
type Islands interface {
	IslandAt(loc world.Location) (*island.Island, bool)
}

// FlagChecker проверяет защитный флаг и сам сообщает игроку об отказе
type FlagChecker interface {
	CheckIsland(ev events.Cancellable, u *user.User, loc world.Location, f *flags.Flag) bool
}

// Исходы клика для метрики cauldron_clicks_total
const (
	outcomeScheduled = "scheduled"
	outcomeOffhand   = "offhand"
	outcomeNoIsland  = "no_island"
	outcomeProtected = "protected"
	outcomeDropped   = "dropped"
)

// Deps - зависимости слушателя
type Deps struct {
	Worlds    Worlds
	Users     Users
	Sticks    Sticks
	Islands   Islands
	Flags     FlagChecker
	Scheduler scheduler.Scheduler
	Tasks     recipe.Factory
	// Flag - защитный флаг, который проверяется на острове
	Flag *flags.Flag
	// Registerer для метрик; nil - метрики не регистрируются
	Registerer prometheus.Registerer
}

// ClickListener ловит клики волшебной палочкой по котлу и запускает обработку рецепта
type ClickListener struct {
	deps   Deps
	logger *logging.Logger
	clicks *prometheus.CounterVec
}

// NewClickListener создаёт слушатель
func NewClickListener(deps Deps) *ClickListener {
	return &ClickListener{
		deps:   deps,
		logger: logging.GetCauldronLogger(),
		clicks: promauto.With(deps.Registerer).NewCounterVec(prometheus.CounterOpts{
			Name: "cauldron_clicks_total",
			Help: "Клики волшебной палочкой по котлу по исходу.",
		}, []string{"outcome"}),
	}
}

// Register подписывает слушатель на PlayerInteractEvent с приоритетом LOWEST,
// уже отменённые события пропускаются
func (l *ClickListener) Register(d *events.Dispatcher) *events.Registration {
	return d.Register(events.PlayerInteractEventName, events.Lowest, true, func(ctx context.Context, ev events.Event) {
		if pie, ok := ev.(*events.PlayerInteractEvent); ok {
			l.OnCauldronClick(ctx, pie)
		}
	})
}

// OnCauldronClick проверяет условия по порядку; любое невыполненное условие молча завершает обработку
func (l *ClickListener) OnCauldronClick(ctx context.Context, ev *events.PlayerInteractEvent) {
	if ev == nil || ev.Player == nil {
		return
	}
	if ev.Action != events.RightClickBlock || ev.Player.IsSneaking() {
		return
	}

	// Подходят все варианты котлов, в том числе будущие
	if ev.Block == nil || !strings.Contains(ev.Block.Type.Name(), "CAULDRON") {
		return
	}

	if !ev.HasItem() || (ev.Hand != events.HandMain && ev.Hand != events.HandOff) {
		l.logger.Debug("Клик по котлу без предмета или руки: %s", ev.Player.Name)
		return
	}

	u := l.deps.Users.User(ev.Player)
	if u == nil {
		return
	}

	if !l.deps.Worlds.InWorld(u.World()) {
		l.logger.Debug("Мир %s не управляется аддоном", u.World())
		return
	}

	magicStick := ev.Player.Inventory.ItemInMainHand()
	if !l.deps.Sticks.IsMagicStick(magicStick, u) {
		l.logger.Debug("%s кликнул по котлу не волшебной палочкой", u.Name())
		return
	}

	b := ev.Block
	loc := b.Location()

	ctx, span := observability.Tracer().Start(ctx, "cauldron.click")
	defer span.End()
	span.SetAttributes(
		attribute.String("player", u.Name()),
		attribute.String("location", loc.String()),
		attribute.String("hand", ev.Hand.String()),
	)

	// Блокирует стандартное взаимодействие (например, установку блока в котёл)
	ev.SetCancelled(true)

	if ev.Hand == events.HandOff {
		// Клик обрабатывается в событии основной руки
		l.finish(span, outcomeOffhand)
		return
	}

	if _, ok := l.deps.Islands.IslandAt(loc); !ok {
		u.SendMessage("general.errors.no-island")
		l.finish(span, outcomeNoIsland)
		return
	}

	if !l.deps.Flags.CheckIsland(ev, u, loc, l.deps.Flag) {
		l.finish(span, outcomeProtected)
		return
	}

	nearby := b.World.NearbyEntities(b.BoundingBox(), entity.IsDroppedItem)

	sticks, tasks := l.deps.Sticks, l.deps.Tasks
	accepted := l.deps.Scheduler.RunAsync(func(ctx context.Context) {
		tasks(u, b, sticks.MagicStick(magicStick, u), nearby).Run(ctx)
	})

	span.SetAttributes(attribute.Int("entities", len(nearby)))
	if !accepted {
		l.finish(span, outcomeDropped)
		l.logger.Warn("⚠️ Варка %s в %s не запущена: планировщик отклонил задачу", u.Name(), loc)
		return
	}
	l.finish(span, outcomeScheduled)
	l.logger.Info("🧙 %s запускает варку в %s, предметов рядом: %d", u.Name(), loc, len(nearby))
}

func (l *ClickListener) finish(span oteltrace.Span, outcome string) {
	span.SetAttributes(attribute.String("outcome", outcome))
	l.clicks.WithLabelValues(outcome).Inc()
}
