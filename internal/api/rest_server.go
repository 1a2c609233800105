package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/annel0/cauldron-witchery/internal/auth"
	"github.com/annel0/cauldron-witchery/internal/eventbus"
	"github.com/annel0/cauldron-witchery/internal/events"
	"github.com/annel0/cauldron-witchery/internal/island"
	"github.com/annel0/cauldron-witchery/internal/logging"
	"github.com/annel0/cauldron-witchery/internal/middleware"
	"github.com/annel0/cauldron-witchery/internal/stick"
	"github.com/annel0/cauldron-witchery/internal/storage"
	"github.com/annel0/cauldron-witchery/internal/user"
	"github.com/annel0/cauldron-witchery/internal/world"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Version - версия аддона, отдаваемая /api/server
const Version = "v0.1.0"

// Host - состояние сервера, с которым работает API
type Host struct {
	Worlds     *world.Manager
	Islands    *island.Manager
	Users      *user.Service
	Sticks     *stick.Manager
	Dispatcher *events.Dispatcher
	// Loop - главная горутина диспетчеризации; nil - вызовы выполняются в горутине запроса
	Loop *events.MainLoop
	Bus  eventbus.EventBus
	// Store - хранилище островов; nil - острова живут только в памяти
	Store storage.IslandRepo
	// Recorder - захват сообщений игроку на время обработки /api/interactions (может быть nil)
	Recorder *user.CaptureMessenger
}

// RestServer представляет REST API сервер
type RestServer struct {
	router      *gin.Engine
	httpServer  *http.Server
	host        Host
	tokens      *auth.TokenService
	adminSecret string
	port        int
	metrics     *ServerMetrics
	logger      *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port        int
	AdminSecret string
	Tokens      *auth.TokenService
	Host        Host
	Registerer  prometheus.Registerer
	Gatherer    prometheus.Gatherer
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == 0 {
		config.Port = 8088
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	logger := logging.GetAPILogger()
	router.Use(middleware.NewRequestLogger(logger).Handler())
	router.Use(otelgin.Middleware("rest_api"))

	promMw := middleware.NewPrometheusMiddleware("rest_api", config.Registerer)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Gatherer)

	server := &RestServer{
		router:      router,
		host:        config.Host,
		tokens:      config.Tokens,
		adminSecret: config.AdminSecret,
		port:        config.Port,
		metrics:     NewServerMetrics(),
		logger:      logger,
	}
	server.setupRoutes()
	return server
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")

	// Выдача токена оператора (без JWT защиты)
	api.POST("/auth/token", rs.handleToken)

	protected := api.Group("/")
	protected.Use(rs.jwtMiddleware())
	{
		protected.GET("/stats", rs.handleStats)
		protected.GET("/server", rs.handleServerInfo)
		protected.GET("/islands", rs.handleListIslands)
		protected.GET("/players", rs.handleListPlayers)

		admin := protected.Group("/")
		admin.Use(rs.adminMiddleware())
		{
			admin.POST("/islands", rs.handleCreateIsland)
			admin.POST("/islands/:id/members", rs.handleSetMember)
			admin.POST("/players", rs.handleJoinPlayer)
			admin.POST("/blocks", rs.handleSetBlock)
			admin.POST("/items", rs.handleDropItem)
			admin.POST("/interactions", rs.handleInteraction)
		}
	}
}

// Handler возвращает http.Handler (используется в тестах)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Start запускает REST сервер и блокируется до его остановки
func (rs *RestServer) Start() error {
	rs.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", rs.port),
		Handler:           rs.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	rs.logger.Info("🌐 REST API слушает :%d", rs.port)
	if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop корректно останавливает REST сервер
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.httpServer == nil {
		return nil
	}
	return rs.httpServer.Shutdown(ctx)
}

// onMain выполняет fn в главной горутине сервера
func (rs *RestServer) onMain(ctx context.Context, fn func()) error {
	if rs.host.Loop == nil {
		fn()
		return nil
	}
	return rs.host.Loop.Call(ctx, fn)
}
