package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/config"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/controller"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/repository"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/service"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/pkg/database"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/pkg/logger"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/pkg/monitoring"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/pkg/security"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	question *repository.QuestionRepository
	battle   *repository.BattleRepository
	history  *repository.BattleHistoryRepository
}

type services struct {
	auth      *service.AuthService
	storage   *service.StorageService
	user      *service.UserService
	ai        *service.AIService
	assembler *service.BattleAssembler
	battle    *service.BattleService
	evaluator *service.BattleEvaluator
}

type controllers struct {
	auth   *controller.AuthController
	user   *controller.UserController
	battle *controller.BattleController
	health *controller.HealthController
}

// RegisterConfigCallback subscribes to config hot reloads.
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig fans a reloaded config out to subscribers.
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		question: repository.NewQuestionRepository(db),
		battle:   repository.NewBattleRepository(db),
		history:  repository.NewBattleHistoryRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, repos.history, s.storage)

	s.ai = service.NewAIService(cfg.AI)
	a.RegisterConfigCallback(func(updated *config.Config) {
		s.ai.UpdateConfig(updated.AI)
	})

	s.assembler = service.NewBattleAssembler(repos.question, s.ai)
	s.battle = service.NewBattleService(repos.battle, s.assembler, cfg.Battle, rdb)
	s.evaluator = service.NewBattleEvaluator(s.battle, s.ai, s.user, cfg.Battle)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:   controller.NewAuthController(s.auth),
		user:   controller.NewUserController(s.user),
		battle: controller.NewBattleController(s.battle, s.evaluator, s.user),
		health: controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// The analysis cache is optional; everything else works without redis.
		logger.Log.Warn("Redis unavailable, running without analysis cache", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("learn-nova", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
