package user

import (
	"sync"

	"github.com/annel0/cauldron-witchery/internal/logging"
	"github.com/annel0/cauldron-witchery/internal/world/entity"
	"github.com/google/uuid"
)

// LogMessenger пишет сообщения игрокам в лог (сервер без клиентского соединения)
type LogMessenger struct {
	logger *logging.Logger
}

// NewLogMessenger создает мессенджер поверх логгера компонента
func NewLogMessenger(logger *logging.Logger) *LogMessenger {
	return &LogMessenger{logger: logger}
}

// Send пишет сообщение в лог
func (m *LogMessenger) Send(p *entity.Player, message string) {
	m.logger.Info("💬 -> %s: %s", p.Name, message)
}

// Message - доставленное сообщение
type Message struct {
	Player uuid.UUID
	Text   string
}

// MemoryMessenger запоминает все отправленные сообщения без ограничений. Только для тестов.
type MemoryMessenger struct {
	mu       sync.Mutex
	messages []Message
}

// NewMemoryMessenger создает пустой мессенджер
func NewMemoryMessenger() *MemoryMessenger {
	return &MemoryMessenger{}
}

// Send сохраняет сообщение
func (m *MemoryMessenger) Send(p *entity.Player, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{Player: p.UUID, Text: message})
}

// Messages возвращает копию всех сообщений
func (m *MemoryMessenger) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

// For возвращает тексты сообщений конкретного игрока
func (m *MemoryMessenger) For(id uuid.UUID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, msg := range m.messages {
		if msg.Player == id {
			out = append(out, msg.Text)
		}
	}
	return out
}

// Reset очищает сообщения
func (m *MemoryMessenger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}

// MultiMessenger рассылает сообщение в несколько мессенджеров
type MultiMessenger []Messenger

// Send отправляет во все мессенджеры
func (mm MultiMessenger) Send(p *entity.Player, message string) {
	for _, m := range mm {
		m.Send(p, message)
	}
}

// CaptureMessenger сохраняет сообщения игрока только пока для него открыт захват.
// Сообщения вне захвата отбрасываются, закрытый захват освобождает память.
type CaptureMessenger struct {
	mu       sync.Mutex
	captures map[uuid.UUID][]*capture
}

type capture struct {
	messages []string
}

// NewCaptureMessenger создает мессенджер без активных захватов
func NewCaptureMessenger() *CaptureMessenger {
	return &CaptureMessenger{captures: make(map[uuid.UUID][]*capture)}
}

// Send добавляет сообщение во все открытые захваты игрока
func (m *CaptureMessenger) Send(p *entity.Player, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.captures[p.UUID] {
		c.messages = append(c.messages, message)
	}
}

// Capture открывает захват сообщений игрока. Возвращённая функция закрывает его
// и отдает сообщения, отправленные игроку за время захвата.
func (m *CaptureMessenger) Capture(id uuid.UUID) func() []string {
	c := &capture{}
	m.mu.Lock()
	m.captures[id] = append(m.captures[id], c)
	m.mu.Unlock()

	return func() []string {
		m.mu.Lock()
		defer m.mu.Unlock()
		list := m.captures[id]
		for i, other := range list {
			if other == c {
				list = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(list) == 0 {
			delete(m.captures, id)
		} else {
			m.captures[id] = list
		}
		if c.messages == nil {
			return []string{}
		}
		return c.messages
	}
}

// Active возвращает количество открытых захватов
func (m *CaptureMessenger) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, list := range m.captures {
		n += len(list)
	}
	return n
}
