package scheduler

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"

	"github.com/annel0/cauldron-witchery/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

// ErrStopped - пул уже остановлен
var ErrStopped = errors.New("scheduler stopped")

// Job - асинхронная задача
type Job func(ctx context.Context)

// Scheduler - fire-and-forget запуск задач вне горутины диспетчера.
// RunAsync возвращает false, если задача не принята.
type Scheduler interface {
	RunAsync(job Job) bool
}

// Pool - пул воркеров с ограниченной очередью.
// RunAsync никогда не блокирует: при переполнении задача отбрасывается.
type Pool struct {
	queue  chan Job
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	logger *logging.Logger

	mu      sync.RWMutex
	stopped bool

	jobs  *prometheus.CounterVec
	depth prometheus.Gauge
}

// NewPool запускает workers воркеров с очередью queueSize
func NewPool(workers, queueSize int, reg prometheus.Registerer) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}

	factory := promauto.With(reg)
	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)

	p := &Pool{
		queue:  make(chan Job, queueSize),
		ctx:    gctx,
		cancel: cancel,
		group:  group,
		logger: logging.GetSchedulerLogger(),
		jobs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_jobs_total",
			Help: "Асинхронные задачи по результату (ok, panic, dropped).",
		}, []string{"result"}),
		depth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_queue_depth",
			Help: "Количество задач в очереди.",
		}),
	}

	for i := 0; i < workers; i++ {
		id := i
		group.Go(func() error {
			p.worker(id)
			return nil
		})
	}
	p.logger.Info("🧵 Пул задач запущен: воркеров=%d, очередь=%d", workers, queueSize)
	return p
}

// RunAsync ставит задачу в очередь и сразу возвращается.
// false - задача отброшена (очередь полна или пул остановлен).
func (p *Pool) RunAsync(job Job) bool {
	if job == nil {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		p.jobs.WithLabelValues("dropped").Inc()
		p.logger.Warn("Пул остановлен, задача отброшена")
		return false
	}

	select {
	case p.queue <- job:
		p.depth.Set(float64(len(p.queue)))
		return true
	default:
		p.jobs.WithLabelValues("dropped").Inc()
		p.logger.Warn("⚠️ Очередь задач переполнена (%d), задача отброшена", cap(p.queue))
		return false
	}
}

func (p *Pool) worker(id int) {
	for job := range p.queue {
		p.depth.Set(float64(len(p.queue)))
		p.run(id, job)
	}
}

func (p *Pool) run(id int, job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			p.jobs.WithLabelValues("panic").Inc()
			p.logger.Error("❌ Паника в задаче (воркер %d): %v\n%s", id, rec, debug.Stack())
		}
	}()
	job(p.ctx)
	p.jobs.WithLabelValues("ok").Inc()
}

// Stop закрывает очередь и ждёт, пока воркеры доработают оставшиеся задачи.
// Если ctx истекает раньше, контекст задач отменяется и возвращается ошибка ctx.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrStopped
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- p.group.Wait() }()

	select {
	case err := <-done:
		p.cancel()
		p.logger.Info("🛑 Пул задач остановлен")
		return err
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

// Sync выполняет задачи сразу в горутине вызывающего. Используется в тестах и утилитах.
type Sync struct{}

func (Sync) RunAsync(job Job) bool {
	if job == nil {
		return false
	}
	job(context.Background())
	return true
}
