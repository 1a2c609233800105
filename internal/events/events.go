package events

import "context"

// Priority определяет порядок вызова обработчиков. Lowest вызывается первым, Monitor последним.
type Priority int

const (
	Lowest Priority = iota
	Low
	Normal
	High
	Highest
	Monitor
)

// String возвращает имя приоритета
func (p Priority) String() string {
	switch p {
	case Lowest:
		return "LOWEST"
	case Low:
		return "LOW"
	case Normal:
		return "NORMAL"
	case High:
		return "HIGH"
	case Highest:
		return "HIGHEST"
	case Monitor:
		return "MONITOR"
	default:
		return "UNKNOWN"
	}
}

// Event - любое событие, проходящее через диспетчер
type Event interface {
	EventName() string
}

// Cancellable - событие с изменяемым флагом отмены
type Cancellable interface {
	Event
	Cancelled() bool
	SetCancelled(cancel bool)
}

// Handler обрабатывает событие
type Handler func(ctx context.Context, ev Event)
