package api

import (
	"tradekeep/api/handlers/activities"
	contenthandler "tradekeep/api/handlers/content"
	"tradekeep/api/handlers/notifications"
	"tradekeep/api/handlers/social"
	"tradekeep/api/handlers/users"
	"tradekeep/api/handlers/workflows"
	"tradekeep/internal/activity"
	"tradekeep/internal/auth"
	"tradekeep/internal/config"
	"tradekeep/internal/content"
	"tradekeep/internal/identity"
	"tradekeep/internal/infra/queue"
	"tradekeep/internal/logger"
	"tradekeep/internal/notification"
	"tradekeep/internal/platform"
	"tradekeep/internal/publishing"
	"tradekeep/internal/worker"
	"tradekeep/internal/workflow"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AppContainer 聚合全部服务依赖
type AppContainer struct {
	DB           *gorm.DB
	Config       *config.Config
	JWTService   *auth.JWTService
	Registry     *platform.Registry
	Queue        queue.Client
	Content      *content.Service
	Identity     *identity.Service
	Activity     *activity.Service
	Notification *notification.Service
	Orchestrator *publishing.Orchestrator
	Engine       *workflow.Engine
}

// Handlers 聚合全部 HTTP 处理器
type Handlers struct {
	Workflows     *workflows.Handler
	Content       *contenthandler.Handler
	Social        *social.Handler
	Notifications *notifications.Handler
	Activities    *activities.Handler
	Users         *users.Handler
}

// BuildContainer 按依赖顺序组装全部服务
func BuildContainer(db *gorm.DB, cfg *config.Config) *AppContainer {
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)

	registry := platform.NewRegistryFromConfig(cfg)
	queueClient := queue.NewClient(cfg.Redis)

	contentSvc := content.NewService(db)
	identitySvc := identity.NewService(db)
	activitySvc := activity.NewService(db, logger.Named("activity"))

	notificationOpts := []notification.Option{}
	if emailNotifier := notification.NewEmailNotifier(cfg.SMTP); emailNotifier != nil {
		notificationOpts = append(notificationOpts, notification.WithEmailNotifier(emailNotifier))
	}
	notificationSvc := notification.NewService(db, identitySvc, logger.Named("notification"), notificationOpts...)

	orchestrator := publishing.NewOrchestrator(db, contentSvc, registry,
		publishing.WithQueue(queueClient),
		publishing.WithActivity(activitySvc),
		publishing.WithPlatformTimeout(cfg.Publishing.PlatformTimeoutDuration()),
		publishing.WithLogger(logger.Named("publishing")),
	)

	engine := workflow.NewEngine(db, contentSvc,
		workflow.WithNotifier(notificationSvc),
		workflow.WithPublisher(orchestrator),
		workflow.WithActivity(activitySvc),
		workflow.WithEngineLogger(logger.Named("workflow")),
	)

	return &AppContainer{
		DB:           db,
		Config:       cfg,
		JWTService:   jwtService,
		Registry:     registry,
		Queue:        queueClient,
		Content:      contentSvc,
		Identity:     identitySvc,
		Activity:     activitySvc,
		Notification: notificationSvc,
		Orchestrator: orchestrator,
		Engine:       engine,
	}
}

// BuildHandlers 组装 HTTP 处理器
func BuildHandlers(c *AppContainer) *Handlers {
	return &Handlers{
		Workflows:     workflows.NewHandler(c.Engine),
		Content:       contenthandler.NewHandler(c.Content, c.Orchestrator),
		Social:        social.NewHandler(c.Orchestrator),
		Notifications: notifications.NewHandler(c.Notification),
		Activities:    activities.NewHandler(c.Activity),
		Users:         users.NewHandler(c.Identity),
	}
}

// SetupRouter 组装 HTTP 路由与后台 Worker
func SetupRouter(db *gorm.DB, cfg *config.Config) (*gin.Engine, *worker.Server, *AppContainer) {
	gin.SetMode(cfg.Server.Mode)

	container := BuildContainer(db, cfg)
	handlers := BuildHandlers(container)

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(), CORS())

	RegisterRoutes(router, container, handlers)

	workerServer := worker.NewServer(cfg.Redis, container.Orchestrator, logger.Named("worker"))
	return router, workerServer, container
}
