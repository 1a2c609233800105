package eventbus

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// ErrClosed - шина закрыта
var ErrClosed = errors.New("eventbus closed")

const (
	encodingKey  = "content-encoding"
	encodingZstd = "zstd"
)

// Кодеры zstd потокобезопасны для EncodeAll/DecodeAll
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// compressPayload сжимает нагрузку, если она не меньше minBytes. minBytes <= 0 отключает сжатие.
func compressPayload(ev *Envelope, minBytes int) *Envelope {
	if minBytes <= 0 || len(ev.Payload) < minBytes || ev.Metadata[encodingKey] != "" {
		return ev
	}
	out := *ev
	out.Metadata = make(map[string]string, len(ev.Metadata)+1)
	for k, v := range ev.Metadata {
		out.Metadata[k] = v
	}
	out.Metadata[encodingKey] = encodingZstd
	out.Payload = zstdEncoder.EncodeAll(ev.Payload, nil)
	return &out
}

// decompressPayload восстанавливает нагрузку, сжатую compressPayload
func decompressPayload(ev *Envelope) error {
	switch ev.Metadata[encodingKey] {
	case "":
		return nil
	case encodingZstd:
		data, err := zstdDecoder.DecodeAll(ev.Payload, nil)
		if err != nil {
			return fmt.Errorf("zstd decode %s: %w", ev.ID, err)
		}
		ev.Payload = data
		delete(ev.Metadata, encodingKey)
		return nil
	default:
		return fmt.Errorf("unsupported content-encoding %q", ev.Metadata[encodingKey])
	}
}
