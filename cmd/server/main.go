package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/cauldron-witchery/internal/api"
	"github.com/annel0/cauldron-witchery/internal/auth"
	"github.com/annel0/cauldron-witchery/internal/cauldron"
	"github.com/annel0/cauldron-witchery/internal/config"
	"github.com/annel0/cauldron-witchery/internal/eventbus"
	"github.com/annel0/cauldron-witchery/internal/events"
	"github.com/annel0/cauldron-witchery/internal/flags"
	"github.com/annel0/cauldron-witchery/internal/i18n"
	"github.com/annel0/cauldron-witchery/internal/island"
	"github.com/annel0/cauldron-witchery/internal/logging"
	"github.com/annel0/cauldron-witchery/internal/observability"
	"github.com/annel0/cauldron-witchery/internal/recipe"
	"github.com/annel0/cauldron-witchery/internal/scheduler"
	"github.com/annel0/cauldron-witchery/internal/stick"
	"github.com/annel0/cauldron-witchery/internal/storage"
	"github.com/annel0/cauldron-witchery/internal/user"
	"github.com/annel0/cauldron-witchery/internal/world"
	_ "github.com/annel0/cauldron-witchery/internal/world/block/implementations"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию $CAULDRON_CONFIG)")
	flag.Parse()

	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	if err := run(*configPath); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("конфигурация: %w", err)
	}
	logging.SetConsoleLevel(logging.ParseLevel(cfg.Logging.Level))

	logging.Info("🧙 Запуск Cauldron Witchery %s", api.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТЕЛЕМЕТРИЯ ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("телеметрия: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// === ШИНА СОБЫТИЙ ===
	bus, err := newEventBus(cfg.EventBus)
	if err != nil {
		return err
	}
	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("LoggingListener не запущен: %v", err)
	}
	busMetrics := eventbus.NewMetricsExporter(bus, reg)
	busMetrics.Start()

	// === ХОСТ ===
	translator, err := i18n.LoadEmbedded(cfg.Addon.DefaultLocale)
	if err != nil {
		return fmt.Errorf("переводы: %w", err)
	}
	worlds, err := world.NewManagerFromConfig(cfg.Worlds)
	if err != nil {
		return fmt.Errorf("миры: %w", err)
	}
	sticks, err := stick.NewManagerFromConfig(cfg.MagicSticks)
	if err != nil {
		return fmt.Errorf("палочки: %w", err)
	}

	recorder := user.NewCaptureMessenger()
	users := user.NewService(translator, user.MultiMessenger{
		user.NewLogMessenger(logging.GetComponentLogger("chat")),
		recorder,
	})
	islands := island.NewManager()

	// === ХРАНИЛИЩЕ ОСТРОВОВ ===
	store, err := storage.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("хранилище: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("Ошибка закрытия хранилища: %v", err)
		}
	}()
	restored, err := storage.Restore(ctx, store, islands)
	if err != nil {
		return fmt.Errorf("хранилище: %w", err)
	}
	logging.Info("💾 Хранилище %q: восстановлено островов: %d", cfg.Storage.Backend, restored)

	flagRegistry := flags.NewRegistry()
	protection, err := cauldron.RegisterProtectionFlag(flagRegistry, island.Rank(cfg.Addon.ProtectionRank))
	if err != nil {
		return err
	}

	pool := scheduler.NewPool(cfg.Addon.Workers, cfg.Addon.QueueSize, reg)
	dispatcher := events.NewDispatcher(reg)
	loop := events.NewMainLoop(cfg.Server.EventsBuffer)
	go loop.Run(ctx)

	// === АДДОН ===
	listener := cauldron.NewClickListener(cauldron.Deps{
		Worlds:     worlds,
		Users:      users,
		Sticks:     sticks,
		Islands:    islands,
		Flags:      flags.NewChecker(islands, cfg.Addon.PermissionPrefix),
		Scheduler:  pool,
		Tasks:      recipe.NewTaskFactory(bus),
		Flag:       protection,
		Registerer: reg,
	})
	listener.Register(dispatcher)
	logging.Info("✅ Слушатель котлов зарегистрирован, миры: %v", worlds.ManagedWorlds())

	// === REST API ===
	tokens, err := auth.NewTokenService(cfg.Server.JWTSecret, 0)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	if cfg.Server.AdminSecret == "" {
		logging.Warn("⚠️ server.admin_secret не задан: выдача токенов отключена")
	}

	rest := api.NewRestServer(api.Config{
		Port:        cfg.Server.GetRESTPort(),
		AdminSecret: cfg.Server.AdminSecret,
		Tokens:      tokens,
		Registerer:  reg,
		Gatherer:    reg,
		Host: api.Host{
			Worlds:     worlds,
			Islands:    islands,
			Users:      users,
			Sticks:     sticks,
			Dispatcher: dispatcher,
			Loop:       loop,
			Bus:        bus,
			Recorder:   recorder,
			Store:      store,
		},
	})

	restErr := make(chan error, 1)
	go func() { restErr <- rest.Start() }()

	logging.Info("   🌐 REST API: http://localhost:%d", cfg.Server.GetRESTPort())
	logging.Info("   ❤️  Health check: http://localhost:%d/health", cfg.Server.GetRESTPort())

	select {
	case <-ctx.Done():
		logging.Info("📡 Получен сигнал завершения, останавливаемся...")
	case err := <-restErr:
		if err != nil {
			logging.Error("❌ REST API завершился с ошибкой: %v", err)
		}
	}

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rest.Stop(shutdownCtx); err != nil {
		logging.Error("Ошибка остановки REST API: %v", err)
	}
	loop.Stop()
	if err := pool.Stop(shutdownCtx); err != nil {
		logging.Error("Ошибка остановки пула задач: %v", err)
	}
	busMetrics.Stop()
	if err := bus.Close(); err != nil {
		logging.Error("Ошибка закрытия шины: %v", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Error("Ошибка остановки телеметрии: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
	return nil
}

// newEventBus подключает JetStream, если задан URL, иначе создаёт in-memory шину
func newEventBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		logging.Info("🚌 Используется in-memory шина событий")
		return eventbus.NewMemoryBus(cfg.Buffer), nil
	}
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour, cfg.CompressMinBytes)
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return bus, nil
}
