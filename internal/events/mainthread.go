package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrLoopStopped - главный цикл уже остановлен
var ErrLoopStopped = errors.New("main loop stopped")

// MainLoop - единственная горутина, в которой сервер диспатчит игровые события.
// Обработчики могут рассчитывать, что Dispatch не вызывается параллельно.
type MainLoop struct {
	tasks chan func()
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once

	started atomic.Bool
}

// NewMainLoop создаёт цикл с очередью заданного размера
func NewMainLoop(buffer int) *MainLoop {
	if buffer <= 0 {
		buffer = 64
	}
	return &MainLoop{
		tasks: make(chan func(), buffer),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Run обрабатывает задачи до Stop или отмены контекста
func (l *MainLoop) Run(ctx context.Context) {
	l.started.Store(true)
	defer close(l.done)
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-l.quit:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Call выполняет fn в главной горутине и ждёт завершения
func (l *MainLoop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.tasks <- wrapped:
	case <-l.quit:
		return ErrLoopStopped
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// Цикл мог завершиться, не взяв задачу
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop останавливает цикл и ждёт его завершения, если он был запущен
func (l *MainLoop) Stop() {
	l.once.Do(func() { close(l.quit) })
	if l.started.Load() {
		<-l.done
	}
}
