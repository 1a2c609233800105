package events

import (
	"context"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/annel0/cauldron-witchery/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registration - подписка обработчика, позволяет отписаться
type Registration struct {
	d               *Dispatcher
	name            string
	priority        Priority
	ignoreCancelled bool
	handler         Handler
	seq             uint64
}

// Priority возвращает приоритет подписки
func (r *Registration) Priority() Priority { return r.priority }

// Unregister снимает обработчик. Повторный вызов безопасен.
func (r *Registration) Unregister() {
	if r == nil || r.d == nil {
		return
	}
	r.d.remove(r)
}

// Dispatcher - реестр обработчиков событий с приоритетами.
// Dispatch выполняется синхронно в горутине вызывающего.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]*Registration
	nextSeq  uint64
	logger   *logging.Logger

	dispatched *prometheus.CounterVec
	panics     *prometheus.CounterVec
}

// NewDispatcher создаёт диспетчер. При reg == nil метрики не регистрируются.
func NewDispatcher(reg prometheus.Registerer) *Dispatcher {
	factory := promauto.With(reg)
	return &Dispatcher{
		handlers: make(map[string][]*Registration),
		logger:   logging.GetEventsLogger(),
		dispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "events_dispatched_total",
			Help: "Количество событий, прошедших через диспетчер.",
		}, []string{"event"}),
		panics: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "events_handler_panics_total",
			Help: "Паники в обработчиках событий.",
		}, []string{"event"}),
	}
}

// Register подписывает обработчик на событие с указанным именем
func (d *Dispatcher) Register(name string, priority Priority, ignoreCancelled bool, h Handler) *Registration {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextSeq++
	r := &Registration{
		d:               d,
		name:            name,
		priority:        priority,
		ignoreCancelled: ignoreCancelled,
		handler:         h,
		seq:             d.nextSeq,
	}

	list := append(d.handlers[name], r)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].priority != list[j].priority {
			return list[i].priority < list[j].priority
		}
		return list[i].seq < list[j].seq
	})
	d.handlers[name] = list

	d.logger.Debug("Зарегистрирован обработчик %s priority=%s ignoreCancelled=%v", name, priority, ignoreCancelled)
	return r
}

func (d *Dispatcher) remove(r *Registration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list := d.handlers[r.name]
	for i, other := range list {
		if other == r {
			// Копируем, чтобы не портить снимки, взятые Dispatch
			next := make([]*Registration, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			d.handlers[r.name] = next
			return
		}
	}
}

// HandlerCount возвращает количество обработчиков события
func (d *Dispatcher) HandlerCount(name string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[name])
}

// Dispatch вызывает обработчики по приоритету. Возвращает событие для удобства цепочек.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) Event {
	if ev == nil {
		return nil
	}
	name := ev.EventName()

	d.mu.RLock()
	list := d.handlers[name]
	d.mu.RUnlock()

	d.dispatched.WithLabelValues(name).Inc()

	cancellable, _ := ev.(Cancellable)
	for _, r := range list {
		if r.ignoreCancelled && cancellable != nil && cancellable.Cancelled() {
			continue
		}
		d.call(ctx, r, ev)
	}
	return ev
}

func (d *Dispatcher) call(ctx context.Context, r *Registration, ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			d.panics.WithLabelValues(r.name).Inc()
			d.logger.Error("❌ Паника в обработчике %s (priority=%s): %v\n%s", r.name, r.priority, rec, debug.Stack())
		}
	}()
	r.handler(ctx, ev)
}
