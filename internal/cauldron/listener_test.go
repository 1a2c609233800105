package cauldron

import (
	"context"
	"testing"

	"github.com/annel0/cauldron-witchery/internal/config"
	"github.com/annel0/cauldron-witchery/internal/events"
	"github.com/annel0/cauldron-witchery/internal/flags"
	"github.com/annel0/cauldron-witchery/internal/i18n"
	"github.com/annel0/cauldron-witchery/internal/island"
	"github.com/annel0/cauldron-witchery/internal/item"
	"github.com/annel0/cauldron-witchery/internal/recipe"
	"github.com/annel0/cauldron-witchery/internal/scheduler"
	"github.com/annel0/cauldron-witchery/internal/stick"
	"github.com/annel0/cauldron-witchery/internal/user"
	"github.com/annel0/cauldron-witchery/internal/vec"
	"github.com/annel0/cauldron-witchery/internal/world"
	"github.com/annel0/cauldron-witchery/internal/world/block"
	_ "github.com/annel0/cauldron-witchery/internal/world/block/implementations"
	"github.com/annel0/cauldron-witchery/internal/world/entity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gameWorld = "bskyblock_world"

// queueScheduler складывает задачи, не выполняя их; full - отклонять новые задачи
type queueScheduler struct {
	jobs []scheduler.Job
	full bool
}

func (s *queueScheduler) RunAsync(job scheduler.Job) bool {
	if s.full {
		return false
	}
	s.jobs = append(s.jobs, job)
	return true
}

func (s *queueScheduler) runAll() {
	for _, job := range s.jobs {
		job(context.Background())
	}
}

// taskCall - аргументы, с которыми была создана задача
type taskCall struct {
	user     *user.User
	block    *world.Block
	stick    *stick.MagicStick
	entities []*entity.Entity
	ran      bool
}

func (c *taskCall) Run(ctx context.Context) { c.ran = true }

type fixture struct {
	worlds    *world.Manager
	world     *world.World
	islands   *island.Manager
	island    *island.Island
	users     *user.Service
	messenger *user.MemoryMessenger
	sticks    *stick.Manager
	sched     *queueScheduler
	calls     []*taskCall
	listener  *ClickListener
	reg       *prometheus.Registry
	owner     *entity.Player
	cauldron  *world.Block
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tr, err := i18n.LoadEmbedded(i18n.BaseLocale)
	require.NoError(t, err)

	worlds, err := world.NewManagerFromConfig(config.Default().Worlds)
	require.NoError(t, err)
	w, ok := worlds.World(gameWorld)
	require.True(t, ok)

	f := &fixture{
		worlds:    worlds,
		world:     w,
		islands:   island.NewManager(),
		messenger: user.NewMemoryMessenger(),
		sched:     &queueScheduler{},
		reg:       prometheus.NewRegistry(),
	}
	f.users = user.NewService(tr, f.messenger)

	f.sticks, err = stick.NewManagerFromConfig(config.Default().MagicSticks)
	require.NoError(t, err)

	f.owner = f.newPlayer("owner")
	f.island, err = f.islands.Create(gameWorld, vec.Vec3{X: 0, Y: 64, Z: 0}, 50, f.owner.UUID)
	require.NoError(t, err)

	registry := flags.NewRegistry()
	flag, err := RegisterProtectionFlag(registry, island.RankMember)
	require.NoError(t, err)

	f.listener = NewClickListener(Deps{
		Worlds:    worlds,
		Users:     f.users,
		Sticks:    f.sticks,
		Islands:   f.islands,
		Flags:     flags.NewChecker(f.islands, "cauldronwitchery"),
		Scheduler: f.sched,
		Tasks: func(u *user.User, b *world.Block, s *stick.MagicStick, ents []*entity.Entity) recipe.Task {
			c := &taskCall{user: u, block: b, stick: s, entities: ents}
			f.calls = append(f.calls, c)
			return c
		},
		Flag:       flag,
		Registerer: f.reg,
	})

	f.cauldron = w.SetBlock(vec.Vec3{X: 2, Y: 64, Z: 2}, block.WaterCauldronBlockID)
	return f
}

func (f *fixture) newPlayer(name string) *entity.Player {
	p := entity.NewPlayer(name, gameWorld, vec.Vec3Float{X: 1, Y: 64, Z: 1})
	basic, _ := f.sticks.Get("basic")
	p.Inventory.SetItemInMainHand(basic.Item())
	return p
}

// click строит клик правой кнопкой по блоку предметом из основной руки
func (f *fixture) click(p *entity.Player, b *world.Block, hand events.Hand) *events.PlayerInteractEvent {
	it := p.Inventory.ItemInMainHand()
	if hand == events.HandOff {
		it = p.Inventory.ItemInOffHand()
		if it == nil {
			it = item.New(item.MaterialStick, 1)
		}
	}
	return events.NewPlayerInteractEvent(p, events.RightClickBlock, it, b, hand)
}

func (f *fixture) outcome(name string) float64 {
	return testutil.ToFloat64(f.listener.clicks.WithLabelValues(name))
}

// assertNoEffect - событие не тронуто, сообщений и задач нет
func (f *fixture) assertNoEffect(t *testing.T, ev *events.PlayerInteractEvent) {
	t.Helper()
	assert.False(t, ev.Cancelled())
	assert.Empty(t, f.messenger.Messages())
	assert.Empty(t, f.sched.jobs)
}

func TestIgnoresNonRightClickAndSneaking(t *testing.T) {
	for _, action := range []events.Action{events.LeftClickAir, events.LeftClickBlock, events.RightClickAir, events.Physical} {
		t.Run(action.String(), func(t *testing.T) {
			f := newFixture(t)
			ev := f.click(f.owner, f.cauldron, events.HandMain)
			ev.Action = action
			f.listener.OnCauldronClick(context.Background(), ev)
			f.assertNoEffect(t, ev)
		})
	}

	t.Run("sneaking", func(t *testing.T) {
		f := newFixture(t)
		f.owner.SetSneaking(true)
		ev := f.click(f.owner, f.cauldron, events.HandMain)
		f.listener.OnCauldronClick(context.Background(), ev)
		f.assertNoEffect(t, ev)
	})
}

func TestIgnoresNonCauldronBlocks(t *testing.T) {
	f := newFixture(t)
	for _, id := range []block.BlockID{block.StoneBlockID, block.ChestBlockID, block.CraftingTableBlockID, block.AirBlockID} {
		b := f.world.SetBlock(vec.Vec3{X: 5, Y: 64, Z: 5}, id)
		ev := f.click(f.owner, b, events.HandMain)
		f.listener.OnCauldronClick(context.Background(), ev)
		f.assertNoEffect(t, ev)
	}

	ev := f.click(f.owner, nil, events.HandMain)
	f.listener.OnCauldronClick(context.Background(), ev)
	f.assertNoEffect(t, ev)
}

func TestAcceptsEveryCauldronVariant(t *testing.T) {
	ids := []block.BlockID{block.CauldronBlockID, block.WaterCauldronBlockID, block.LavaCauldronBlockID, block.PowderSnowCauldronBlockID}
	for _, id := range ids {
		t.Run(id.Name(), func(t *testing.T) {
			f := newFixture(t)
			b := f.world.SetBlock(vec.Vec3{X: -3, Y: 64, Z: 7}, id)
			ev := f.click(f.owner, b, events.HandMain)
			f.listener.OnCauldronClick(context.Background(), ev)
			assert.True(t, ev.Cancelled())
			assert.Len(t, f.sched.jobs, 1)
		})
	}
}

func TestIgnoresMissingItemOrHand(t *testing.T) {
	f := newFixture(t)

	ev := f.click(f.owner, f.cauldron, events.HandMain)
	ev.Item = nil
	f.listener.OnCauldronClick(context.Background(), ev)
	f.assertNoEffect(t, ev)

	ev = f.click(f.owner, f.cauldron, events.HandMain)
	ev.Item = item.New(item.MaterialAir, 1)
	f.listener.OnCauldronClick(context.Background(), ev)
	f.assertNoEffect(t, ev)

	ev = f.click(f.owner, f.cauldron, events.HandNone)
	f.listener.OnCauldronClick(context.Background(), ev)
	f.assertNoEffect(t, ev)
}

func TestIgnoresUnmanagedWorld(t *testing.T) {
	f := newFixture(t)
	other, ok := f.worlds.World("world")
	require.True(t, ok)

	f.owner.World = "world"
	b := other.SetBlock(vec.Vec3{X: 2, Y: 64, Z: 2}, block.CauldronBlockID)
	ev := f.click(f.owner, b, events.HandMain)
	f.listener.OnCauldronClick(context.Background(), ev)
	f.assertNoEffect(t, ev)
}

func TestIgnoresNonMagicStick(t *testing.T) {
	f := newFixture(t)

	plain := item.New(item.MaterialStick, 1)
	f.owner.Inventory.SetItemInMainHand(plain)
	ev := f.click(f.owner, f.cauldron, events.HandMain)
	f.listener.OnCauldronClick(context.Background(), ev)
	f.assertNoEffect(t, ev)

	// Палочка в событии не важна: проверяется предмет в основной руке
	basic, _ := f.sticks.Get("basic")
	ev = events.NewPlayerInteractEvent(f.owner, events.RightClickBlock, basic.Item(), f.cauldron, events.HandMain)
	f.listener.OnCauldronClick(context.Background(), ev)
	f.assertNoEffect(t, ev)
}

func TestOffHandOnlyCancels(t *testing.T) {
	f := newFixture(t)
	ev := f.click(f.owner, f.cauldron, events.HandOff)
	f.listener.OnCauldronClick(context.Background(), ev)

	assert.True(t, ev.Cancelled())
	assert.Empty(t, f.sched.jobs)
	assert.Empty(t, f.messenger.Messages())
	assert.Equal(t, 1.0, f.outcome(outcomeOffhand))
}

func TestNoIslandSendsOneMessage(t *testing.T) {
	f := newFixture(t)
	b := f.world.SetBlock(vec.Vec3{X: 500, Y: 64, Z: 500}, block.CauldronBlockID)

	ev := f.click(f.owner, b, events.HandMain)
	f.listener.OnCauldronClick(context.Background(), ev)

	assert.True(t, ev.Cancelled())
	assert.Empty(t, f.sched.jobs)
	msgs := f.messenger.For(f.owner.UUID)
	require.Len(t, msgs, 1)
	assert.Equal(t, "&cYou do not have an island here!", msgs[0])
	assert.Equal(t, 1.0, f.outcome(outcomeNoIsland))
}

func TestProtectedIslandDeniesVisitor(t *testing.T) {
	f := newFixture(t)
	visitor := f.newPlayer("visitor")

	ev := f.click(visitor, f.cauldron, events.HandMain)
	f.listener.OnCauldronClick(context.Background(), ev)

	assert.True(t, ev.Cancelled())
	assert.Empty(t, f.sched.jobs)
	// Сообщение отправляет проверка флага
	assert.Len(t, f.messenger.For(visitor.UUID), 1)
	assert.Equal(t, 1.0, f.outcome(outcomeProtected))
}

func TestAllowedClickSchedulesTask(t *testing.T) {
	f := newFixture(t)
	member := f.newPlayer("member")
	f.island.SetRank(member.UUID, island.RankMember)

	center := f.cauldron.Pos.Center()
	inside := []*entity.Entity{
		f.world.DropItem(item.New("REDSTONE", 2), center),
		f.world.DropItem(item.New("SUGAR", 1), vec.Vec3Float{X: center.X, Y: float64(f.cauldron.Pos.Y) + 0.9, Z: center.Z}),
	}
	f.world.DropItem(item.New("GLOWSTONE_DUST", 1), vec.Vec3Float{X: center.X + 4, Y: center.Y, Z: center.Z})
	f.world.SpawnEntity(entity.EntityTypeAnimal, center)

	ev := f.click(member, f.cauldron, events.HandMain)
	f.listener.OnCauldronClick(context.Background(), ev)

	assert.True(t, ev.Cancelled())
	assert.Empty(t, f.messenger.Messages())
	require.Len(t, f.sched.jobs, 1)
	// Задача создаётся в асинхронной части
	assert.Empty(t, f.calls)

	f.sched.runAll()
	require.Len(t, f.calls, 1)
	call := f.calls[0]
	assert.True(t, call.ran)
	assert.Same(t, f.users.User(member), call.user)
	assert.Same(t, f.cauldron, call.block)
	require.NotNil(t, call.stick)
	assert.Equal(t, "basic", call.stick.ID)
	assert.ElementsMatch(t, inside, call.entities)
	assert.Equal(t, 1.0, f.outcome(outcomeScheduled))
}

func TestIgnoresItemsTouchingCauldronFromOutside(t *testing.T) {
	f := newFixture(t)
	p := f.cauldron.Pos.ToFloat()

	inside := f.world.DropItem(item.New("REDSTONE", 1), vec.Vec3Float{X: p.X + 0.5, Y: p.Y + 0.2, Z: p.Z + 0.5})
	// Хитбокс начинается на грани X соседнего блока
	f.world.DropItem(item.New("SUGAR", 1), vec.Vec3Float{X: p.X + 1.125, Y: p.Y, Z: p.Z + 0.5})
	// Целиком в блоке под котлом
	f.world.DropItem(item.New("SALT", 1), vec.Vec3Float{X: p.X + 0.5, Y: p.Y - 0.25, Z: p.Z + 0.5})
	// Лежит на крышке
	f.world.DropItem(item.New("GLOWSTONE_DUST", 1), vec.Vec3Float{X: p.X + 0.5, Y: p.Y + 1, Z: p.Z + 0.5})

	f.listener.OnCauldronClick(context.Background(), f.click(f.owner, f.cauldron, events.HandMain))
	f.sched.runAll()

	require.Len(t, f.calls, 1)
	require.Len(t, f.calls[0].entities, 1)
	assert.Equal(t, inside.ID, f.calls[0].entities[0].ID)
}

func TestRejectedTaskIsNotCountedAsScheduled(t *testing.T) {
	f := newFixture(t)
	f.sched.full = true

	ev := f.click(f.owner, f.cauldron, events.HandMain)
	f.listener.OnCauldronClick(context.Background(), ev)

	assert.True(t, ev.Cancelled())
	assert.Empty(t, f.sched.jobs)
	assert.Equal(t, 0.0, f.outcome(outcomeScheduled))
	assert.Equal(t, 1.0, f.outcome(outcomeDropped))
}

func TestEveryClickSchedulesItsOwnTask(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.listener.OnCauldronClick(context.Background(), f.click(f.owner, f.cauldron, events.HandMain))
	}
	assert.Len(t, f.sched.jobs, 3)
}

func TestRegisterSkipsCancelledEvents(t *testing.T) {
	f := newFixture(t)
	d := events.NewDispatcher(nil)
	f.listener.Register(d)

	var seen []bool
	d.Register(events.PlayerInteractEventName, events.Monitor, false, func(ctx context.Context, ev events.Event) {
		seen = append(seen, ev.(events.Cancellable).Cancelled())
	})

	ev := f.click(f.owner, f.cauldron, events.HandMain)
	d.Dispatch(context.Background(), ev)
	assert.Len(t, f.sched.jobs, 1)

	pre := f.click(f.owner, f.cauldron, events.HandMain)
	pre.SetCancelled(true)
	d.Dispatch(context.Background(), pre)
	assert.Len(t, f.sched.jobs, 1)

	assert.Equal(t, []bool{true, true}, seen)
}

func TestWithRealPool(t *testing.T) {
	f := newFixture(t)
	pool := scheduler.NewPool(2, 8, nil)
	f.listener.deps.Scheduler = pool

	done := make(chan struct{})
	f.listener.deps.Tasks = func(u *user.User, b *world.Block, s *stick.MagicStick, ents []*entity.Entity) recipe.Task {
		return taskFunc(func(ctx context.Context) { close(done) })
	}

	f.listener.OnCauldronClick(context.Background(), f.click(f.owner, f.cauldron, events.HandMain))
	require.NoError(t, pool.Stop(context.Background()))

	select {
	case <-done:
	default:
		t.Fatal("task did not run")
	}
}

type taskFunc func(ctx context.Context)

func (fn taskFunc) Run(ctx context.Context) { fn(ctx) }
