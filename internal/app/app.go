package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"nutritrack_backend/internal/config"
	"nutritrack_backend/internal/controller"
	"nutritrack_backend/internal/repository"
	"nutritrack_backend/internal/service"
	"nutritrack_backend/pkg/database"
	"nutritrack_backend/pkg/logger"
	"nutritrack_backend/pkg/monitoring"
	"nutritrack_backend/pkg/security"
	"nutritrack_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services *services
	tracer   *sdktrace.TracerProvider
	stop     context.CancelFunc

	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	foodLog       *repository.FoodLogRepository
	nutrientGoal  *repository.NutrientGoalRepository
	progress      *repository.ProgressRepository
	goal          *repository.GoalRepository
	challenge     *repository.ChallengeRepository
	notification  *repository.NotificationRepository
	analysisCache repository.AnalysisCache
}

type services struct {
	foodLog      *service.FoodLogService
	nutrientGoal *service.NutrientGoalService
	analysis     *service.AnalysisService
	goal         *service.GoalService
	challenge    *service.ChallengeService
	notification *service.NotificationService
	reminder     *service.ReminderService
}

type controllers struct {
	health       *controller.HealthController
	foodLog      *controller.FoodLogController
	nutrientGoal *controller.NutrientGoalController
	analysis     *controller.AnalysisController
	goal         *controller.GoalController
	challenge    *controller.ChallengeController
	notification *controller.NotificationController
}

// RegisterConfigCallback 配置热更新时按注册顺序调用
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 供 configwatcher 调用
func (a *App) ApplyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	repos := &repositories{
		foodLog:      repository.NewFoodLogRepository(db),
		nutrientGoal: repository.NewNutrientGoalRepository(db),
		progress:     repository.NewProgressRepository(db),
		goal:         repository.NewGoalRepository(db),
		challenge:    repository.NewChallengeRepository(db),
		notification: repository.NewNotificationRepository(db),
	}
	if rdb != nil {
		repos.analysisCache = repository.NewRedisAnalysisCache(rdb)
	} else {
		repos.analysisCache = repository.NewMemoryAnalysisCache()
	}
	return repos
}

func newInsightGenerator(cfg *config.Config) service.InsightGenerator {
	if !cfg.Analysis.InsightsEnabled || cfg.AI.BaseURL == "" {
		logger.Log.Info("AI insights disabled")
		return service.NoopInsightGenerator{}
	}
	return service.NewAIService(cfg.AI)
}

func initServices(repos *repositories, cfg *config.Config) *services {
	loc := cfg.Server.Location()
	insights := newInsightGenerator(cfg)
	notification := service.NewNotificationService(repos.notification)
	analysis := service.NewAnalysisService(
		repos.foodLog,
		repos.nutrientGoal,
		repos.progress,
		repos.analysisCache,
		insights,
		cfg.Analysis,
		loc,
	)

	goal := service.NewGoalService(repos.goal, notification, insights, loc)
	goal.UpdateConfig(cfg.Analysis)

	return &services{
		foodLog:      service.NewFoodLogService(repos.foodLog, repos.analysisCache, loc),
		nutrientGoal: service.NewNutrientGoalService(repos.nutrientGoal, repos.analysisCache),
		analysis:     analysis,
		goal:         goal,
		challenge:    service.NewChallengeService(repos.challenge, analysis, notification, loc),
		notification: notification,
		reminder:     service.NewReminderService(repos.foodLog, notification, loc),
	}
}

func initControllers(s *services, db *gorm.DB, rdb *redis.Client, loc *time.Location) *controllers {
	return &controllers{
		health:       controller.NewHealthController(db, rdb),
		foodLog:      controller.NewFoodLogController(s.foodLog, loc),
		nutrientGoal: controller.NewNutrientGoalController(s.nutrientGoal),
		analysis:     controller.NewAnalysisController(s.analysis, loc),
		goal:         controller.NewGoalController(s.goal),
		challenge:    controller.NewChallengeController(s.challenge),
		notification: controller.NewNotificationController(s.notification, s.reminder),
	}
}

func (a *App) setupMiddlewares(ctx context.Context, router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	if cfg.RateLimit.MaxRequests > 0 {
		window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
		router.Use(security.RateLimiter(ctx, cfg.RateLimit.MaxRequests, window))
	}
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}
	router.Use(monitoring.MetricsMiddleware())
}

// Build 在已建立的连接上组装路由，rdb 为 nil 时分析缓存退回进程内存
func Build(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	ctx, stop := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		stop:   stop,
	}

	repos := initRepositories(db, rdb)
	app.services = initServices(repos, cfg)
	ctrls := initControllers(app.services, db, rdb, cfg.Server.Location())

	router := gin.New()
	router.Use(gin.Recovery())
	app.setupMiddlewares(ctx, router, cfg)
	app.registerRoutes(router, ctrls, cfg)
	app.Router = router

	analysis, goals := app.services.analysis, app.services.goal
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		if newCfg.Log.Level != "" && !logger.SetLevel(newCfg.Log.Level) {
			logger.Log.Warn("Unknown log level in reloaded config", zap.String("level", newCfg.Log.Level))
		}
	})
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		analysis.UpdateConfig(newCfg.Analysis)
		goals.UpdateConfig(newCfg.Analysis)
		logger.Log.Info("Analysis config updated",
			zap.Int("max_range_days", newCfg.Analysis.MaxRangeDays),
			zap.Int("parallel_days", newCfg.Analysis.ParallelDays),
		)
	})
	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		logger.Log.Fatal("Failed to connect database", zap.Error(err))
	}

	if cfg.ForceMigrate || cfg.Server.Mode == gin.DebugMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory analysis cache", zap.Error(err))
	}

	monitoring.Init()

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app := Build(cfg, db, rdb)
	app.tracer = tp
	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	a.Close(ctx)

	logger.Log.Info("Server exiting")
}

// Close 释放后台协程与外部连接
func (a *App) Close(ctx context.Context) {
	if a.stop != nil {
		a.stop()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
