package recipe

import (
	"context"
	"sync"
	"testing"

	"github.com/annel0/cauldron-witchery/internal/eventbus"
	"github.com/annel0/cauldron-witchery/internal/item"
	"github.com/annel0/cauldron-witchery/internal/stick"
	"github.com/annel0/cauldron-witchery/internal/user"
	"github.com/annel0/cauldron-witchery/internal/vec"
	"github.com/annel0/cauldron-witchery/internal/world"
	"github.com/annel0/cauldron-witchery/internal/world/block"
	_ "github.com/annel0/cauldron-witchery/internal/world/block/implementations"
	"github.com/annel0/cauldron-witchery/internal/world/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBus запоминает опубликованные конверты
type recordingBus struct {
	mu        sync.Mutex
	envelopes []*eventbus.Envelope
}

func (b *recordingBus) Publish(ctx context.Context, ev *eventbus.Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.envelopes = append(b.envelopes, ev)
	return nil
}

func (b *recordingBus) Subscribe(ctx context.Context, f eventbus.Filter, h eventbus.Handler) (eventbus.Subscription, error) {
	return nil, nil
}

func (b *recordingBus) Metrics() eventbus.Stats { return eventbus.Stats{} }
func (b *recordingBus) Close() error            { return nil }

func TestTaskPublishesGroupedIngredients(t *testing.T) {
	w := world.NewWorld("bskyblock_world", world.EnvironmentNormal)
	pos := vec.Vec3{X: 3, Y: 64, Z: 3}
	b := w.SetBlock(pos, block.WaterCauldronBlockID)

	center := pos.Center()
	ents := []*entity.Entity{
		w.DropItem(item.New("REDSTONE", 2), center),
		w.DropItem(item.New("SUGAR", 1), center),
		w.DropItem(item.New("REDSTONE", 3), center),
	}

	p := entity.NewPlayer("witch", "bskyblock_world", center)
	u := user.NewService(nil, nil).User(p)
	s := &stick.MagicStick{ID: "basic", Power: 2}

	bus := &recordingBus{}
	task := NewTaskFactory(bus)(u, b, s, ents)

	// Изменения после создания задачи не влияют на снимок
	ents[1].Item.Amount = 64

	task.Run(context.Background())

	require.Len(t, bus.envelopes, 1)
	env := bus.envelopes[0]
	assert.Equal(t, AttemptEventType, env.EventType)
	assert.Equal(t, p.UUID.String(), env.CorrelationID)
	// Попытку нельзя потерять при переполненной in-memory шине
	assert.GreaterOrEqual(t, env.Priority, eventbus.PriorityHigh)

	var a Attempt
	require.NoError(t, env.Decode(&a))
	assert.Equal(t, []Ingredient{{Material: "REDSTONE", Amount: 5}, {Material: "SUGAR", Amount: 1}}, a.Ingredients)
	assert.Equal(t, "WATER_CAULDRON", a.BlockType)
	assert.Equal(t, pos, a.Position)
	assert.Equal(t, "basic", a.StickID)
	assert.Equal(t, 2, a.StickPower)
	assert.Len(t, a.EntityIDs, 3)
}

func TestTaskWithoutBusOrItems(t *testing.T) {
	task := NewTaskFactory(nil)(nil, nil, nil, nil).(*ProcessingTask)
	assert.NotPanics(t, func() { task.Run(context.Background()) })
	assert.Empty(t, task.Ingredients())
}
