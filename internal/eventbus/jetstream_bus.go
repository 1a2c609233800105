package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/annel0/cauldron-witchery/internal/logging"
	nats "github.com/nats-io/nats.go"
)

// SubjectPrefix - префикс subject'ов стрима
const SubjectPrefix = "cauldron"

// Subject возвращает subject для типа события
func Subject(eventType string) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, eventType)
}

// JetStreamBus реализует EventBus поверх NATS JetStream.
type JetStreamBus struct {
	nc               *nats.Conn
	js               nats.JetStreamContext
	stream           string
	compressMinBytes int
	published        uint64
	consumed         uint64
	dropped          uint64
}

// NewJetStreamBus подключается к кластеру NATS и гарантирует наличие стрима.
// url: nats://127.0.0.1:4222, stream: "CAULDRON". Нагрузки от compressMinBytes байт сжимаются zstd.
func NewJetStreamBus(url, stream string, retention time.Duration, compressMinBytes int) (*JetStreamBus, error) {
	if stream == "" {
		stream = "CAULDRON"
	}

	nc, err := nats.Connect(url, nats.Name("cauldron-witchery"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Drain()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure stream exists (subjects: cauldron.*)
	_, err = js.StreamInfo(stream)
	if err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:      stream,
			Subjects:  []string{SubjectPrefix + ".*"},
			Retention: nats.LimitsPolicy,
			MaxAge:    retention,
			Storage:   nats.FileStorage,
		})
		if err != nil {
			nc.Drain()
			return nil, fmt.Errorf("add stream: %w", err)
		}
	}

	logging.Info("📡 JetStream подключен: %s stream=%s", url, stream)
	return &JetStreamBus{nc: nc, js: js, stream: stream, compressMinBytes: compressMinBytes}, nil
}

// Publish сериализует Envelope в JSON и публикует в subject cauldron.<type>.
func (jb *JetStreamBus) Publish(ctx context.Context, ev *Envelope) error {
	data, err := json.Marshal(compressPayload(ev, jb.compressMinBytes))
	if err != nil {
		atomic.AddUint64(&jb.dropped, 1)
		return err
	}
	_, err = jb.js.Publish(Subject(ev.EventType), data, nats.Context(ctx), nats.MsgId(ev.ID))
	if err != nil {
		atomic.AddUint64(&jb.dropped, 1)
		return err
	}
	atomic.AddUint64(&jb.published, 1)
	return nil
}

// Subscribe создаёт durable consumer и вызывает handler асинхронно.
func (jb *JetStreamBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	subj := SubjectPrefix + ".*"
	if len(f.Types) == 1 {
		subj = Subject(f.Types[0])
	}

	durable := nats.Durable(fmt.Sprintf("sub_%d", time.Now().UnixNano()))

	natSub, err := jb.js.Subscribe(subj, func(msg *nats.Msg) {
		ev, err := DecodeMessage(msg.Data)
		if err != nil {
			atomic.AddUint64(&jb.dropped, 1)
			logging.Warn("JetStream: не удалось разобрать сообщение %s: %v", msg.Subject, err)
			_ = msg.Ack()
			return
		}
		if matchFilter(ev, f) {
			h(ctx, ev)
			atomic.AddUint64(&jb.consumed, 1)
		}
		_ = msg.Ack()
	}, nats.ManualAck(), durable, nats.AckWait(30*time.Second))
	if err != nil {
		return nil, err
	}

	return &jetSub{natSub}, nil
}

// DecodeMessage разбирает сообщение стрима в Envelope с распакованной нагрузкой
func DecodeMessage(data []byte) (*Envelope, error) {
	var ev Envelope
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if err := decompressPayload(&ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// jetSub обёртка вокруг *nats.Subscription чтобы удовлетворить наш интерфейс.
type jetSub struct {
	s *nats.Subscription
}

func (j *jetSub) Unsubscribe() {
	_ = j.s.Unsubscribe()
}

// Metrics возвращает текущие метрики.
func (jb *JetStreamBus) Metrics() Stats {
	return Stats{
		Published: atomic.LoadUint64(&jb.published),
		Consumed:  atomic.LoadUint64(&jb.consumed),
		Dropped:   atomic.LoadUint64(&jb.dropped),
		InFlight:  0, // jetstream keeps its own queue
	}
}

// Close закрывает соединение, дожидаясь отправки буферов
func (jb *JetStreamBus) Close() error {
	return jb.nc.Drain()
}
