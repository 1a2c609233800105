package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrInvalid возвращается Validate при некорректной конфигурации
var ErrInvalid = errors.New("invalid config")

// Config корневая структура конфигурации аддона и хоста.
type Config struct {
	Server      ServerConfig       `yaml:"server"`
	Logging     LoggingConfig      `yaml:"logging"`
	EventBus    EventBusConfig     `yaml:"eventbus"`
	Telemetry   TelemetryConfig    `yaml:"telemetry"`
	Storage     StorageConfig      `yaml:"storage"`
	Addon       AddonConfig        `yaml:"addon"`
	Worlds      []WorldConfig      `yaml:"worlds"`
	MagicSticks []MagicStickConfig `yaml:"magic_sticks"`
}

type ServerConfig struct {
	RESTPort     int    `yaml:"rest_port"`
	MetricsPort  int    `yaml:"metrics_port"`
	AdminSecret  string `yaml:"admin_secret"`
	JWTSecret    string `yaml:"jwt_secret"`
	EventsBuffer int    `yaml:"events_buffer"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type EventBusConfig struct {
	// URL пустой - используется in-memory шина
	URL              string `yaml:"url"`
	Stream           string `yaml:"stream"`
	Retention        int    `yaml:"retention_hours"`
	Buffer           int    `yaml:"buffer"`
	CompressMinBytes int    `yaml:"compress_min_bytes"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// StorageConfig выбирает хранилище островов: memory, badger, redis или mariadb
type StorageConfig struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path"`       // каталог BadgerDB
	RedisAddr string `yaml:"redis_addr"` // адрес Redis
	RedisDB   int    `yaml:"redis_db"`
	KeyPrefix string `yaml:"key_prefix"`
	DSN       string `yaml:"dsn"` // user:pass@tcp(host:port)/dbname
}

// AddonConfig настройки самого аддона
type AddonConfig struct {
	PermissionPrefix string `yaml:"permission_prefix"`
	ProtectionRank   int    `yaml:"protection_rank"`
	Workers          int    `yaml:"workers"`
	QueueSize        int    `yaml:"queue_size"`
	DefaultLocale    string `yaml:"default_locale"`
}

// WorldConfig описывает мир хоста. Managed - мир игрового режима, в котором работает аддон.
type WorldConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Managed     bool   `yaml:"managed"`
	IslandRange int    `yaml:"island_range"`
}

// MagicStickConfig описывает волшебную палочку
type MagicStickConfig struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Material    string `yaml:"material"`
	DisplayName string `yaml:"display_name"`
	Permission  string `yaml:"permission"`
	Power       int    `yaml:"power"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			EventsBuffer: 256,
		},
		Logging: LoggingConfig{Level: "INFO"},
		EventBus: EventBusConfig{
			Stream:           "CAULDRON",
			Retention:        24,
			Buffer:           1024,
			CompressMinBytes: 512,
		},
		Telemetry: TelemetryConfig{ServiceName: "cauldron-witchery"},
		Storage: StorageConfig{
			Backend:   "memory",
			Path:      "data",
			RedisAddr: "localhost:6379",
			KeyPrefix: "cauldron:island:",
		},
		Addon: AddonConfig{
			PermissionPrefix: "cauldronwitchery",
			ProtectionRank:   500,
			Workers:          4,
			QueueSize:        128,
			DefaultLocale:    "en-US",
		},
		Worlds: []WorldConfig{
			{Name: "bskyblock_world", Environment: "normal", Managed: true, IslandRange: 400},
			{Name: "bskyblock_world_nether", Environment: "nether", Managed: true, IslandRange: 400},
			{Name: "world", Environment: "normal", Managed: false},
		},
		MagicSticks: []MagicStickConfig{
			{ID: "basic", Name: "Basic Stick", Material: "STICK", DisplayName: "Magic Stick", Power: 1},
		},
	}
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "CAULDRON_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "CAULDRON_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV CAULDRON_CONFIG, иначе возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("CAULDRON_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Addon.Workers <= 0 {
		return fmt.Errorf("%w: addon.workers must be positive, got %d", ErrInvalid, c.Addon.Workers)
	}
	if c.Addon.QueueSize <= 0 {
		return fmt.Errorf("%w: addon.queue_size must be positive, got %d", ErrInvalid, c.Addon.QueueSize)
	}

	switch c.Storage.Backend {
	case "", "memory", "badger", "redis", "mariadb":
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalid, c.Storage.Backend)
	}
	if c.Storage.Backend == "mariadb" && c.Storage.DSN == "" {
		return fmt.Errorf("%w: storage.dsn is required for mariadb", ErrInvalid)
	}

	seenWorlds := make(map[string]struct{}, len(c.Worlds))
	for _, w := range c.Worlds {
		if w.Name == "" {
			return fmt.Errorf("%w: world without name", ErrInvalid)
		}
		if _, dup := seenWorlds[w.Name]; dup {
			return fmt.Errorf("%w: duplicate world %q", ErrInvalid, w.Name)
		}
		seenWorlds[w.Name] = struct{}{}
	}

	seenSticks := make(map[string]struct{}, len(c.MagicSticks))
	for _, s := range c.MagicSticks {
		if s.ID == "" || s.Material == "" {
			return fmt.Errorf("%w: magic stick requires id and material", ErrInvalid)
		}
		if _, dup := seenSticks[s.ID]; dup {
			return fmt.Errorf("%w: duplicate magic stick %q", ErrInvalid, s.ID)
		}
		seenSticks[s.ID] = struct{}{}
	}
	return nil
}
