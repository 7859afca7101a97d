package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"qtrack/internal/controllers"
	"qtrack/internal/lifecycle"
	"qtrack/internal/listeners"
	"qtrack/internal/repositories"
	"qtrack/internal/services"
	"qtrack/pkg/config"
	"qtrack/pkg/eventbus"
	"qtrack/pkg/middleware"
	"qtrack/pkg/service"
)

// InitRouter собирает весь граф зависимостей и регистрирует маршруты.
// Возвращает сервис SLA-мониторинга — его же дергает планировщик.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	bus *eventbus.Bus,
	logger *zap.Logger,
	cfg *config.Config,
) services.SlaMonitorServiceInterface {
	logger.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)

	// --- 1. РЕПОЗИТОРИИ ---
	defectRepo := repositories.NewDefectRepository(dbConn, logger)
	supplierRepo := repositories.NewSupplierRepository(dbConn)
	slaConfigRepo := repositories.NewSlaConfigRepository(dbConn)
	notificationRepo := repositories.NewNotificationRepository(dbConn)
	webhookRepo := repositories.NewWebhookRepository(dbConn)
	dashboardRepo := repositories.NewDashboardRepository(dbConn, logger)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- 2. СЕРВИСЫ ---
	defectService := services.NewDefectService(defectRepo, bus, logger)
	supplierService := services.NewSupplierService(supplierRepo, logger)
	slaConfigService := services.NewSlaConfigService(slaConfigRepo, cacheRepo, cfg.Sla.ConfigCacheTTL, logger)
	slaDefaults := lifecycle.SlaThresholds{
		WarningDays: cfg.Sla.DefaultWarningDays,
		MaxDays:     cfg.Sla.DefaultMaxDays,
	}
	slaMonitorService := services.NewSlaMonitorService(defectRepo, slaConfigService, slaDefaults, bus, logger)
	notificationService := services.NewNotificationService(notificationRepo, services.NewLogSender(logger), logger)
	webhookService := services.NewWebhookService(webhookRepo, cfg.Webhook, logger)
	dashboardService := services.NewDashboardService(dashboardRepo, slaMonitorService, logger)
	reportService := services.NewReportService(defectRepo, logger)

	// Слушатели событий жизненного цикла.
	listeners.NewDefectListener(notificationService, webhookService, logger).Register(bus)

	// --- 3. КОНТРОЛЛЕРЫ ---
	defectCtrl := controllers.NewDefectController(defectService, logger)
	supplierCtrl := controllers.NewSupplierController(supplierService, logger)
	slaConfigCtrl := controllers.NewSlaConfigController(slaConfigService, logger)
	slaMonitorCtrl := controllers.NewSlaMonitorController(slaMonitorService, logger)
	notificationCtrl := controllers.NewNotificationController(notificationService, logger)
	webhookCtrl := controllers.NewWebhookController(webhookService, logger)
	dashboardCtrl := controllers.NewDashboardController(dashboardService, logger)
	reportCtrl := controllers.NewReportController(reportService, logger)

	// --- 4. РОУТЕРЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runDefectRouter(secureGroup, defectCtrl)
	runSupplierRouter(secureGroup, supplierCtrl)
	runSlaRouter(secureGroup, slaConfigCtrl, slaMonitorCtrl)
	runNotificationRouter(secureGroup, notificationCtrl)
	runWebhookRouter(secureGroup, webhookCtrl)
	runDashboardRouter(secureGroup, dashboardCtrl)
	runReportRouter(secureGroup, reportCtrl)

	logger.Info("InitRouter: Создание маршрутов завершено")
	return slaMonitorService
}
