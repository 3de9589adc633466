package routes

import (
	"github.com/easayliu/tg-autorename/internal/application/contracts"
	"github.com/easayliu/tg-autorename/internal/infrastructure/config"
	"github.com/easayliu/tg-autorename/internal/interfaces/http/handlers"
	"github.com/easayliu/tg-autorename/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies 路由所需的服务
type Dependencies struct {
	Config      *config.Config
	Preferences contracts.PreferenceService
	Queue       contracts.RenameQueue
	// Webhook 为空时不注册 webhook 路由
	Webhook gin.HandlerFunc
}

// SetupRoutes 创建 gin 引擎并注册全部路由
func SetupRoutes(deps Dependencies) *gin.Engine {
	router := gin.New()

	// 全局中间件
	router.Use(middleware.RecoverMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.ErrorHandlerMiddleware())

	// Swagger文档路由
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Telegram Webhook路由
	if deps.Webhook != nil && deps.Config != nil && deps.Config.Telegram.Webhook.Enabled {
		router.POST(deps.Config.Telegram.Webhook.Path, deps.Webhook)
	}

	api := router.Group("/api/v1")
	{
		api.GET("/health", handlers.HealthCheck)

		if deps.Queue != nil {
			queueHandler := handlers.NewQueueHandler(deps.Queue)
			api.GET("/queue/stats", queueHandler.GetStats)
		}

		if deps.Preferences != nil {
			prefHandler := handlers.NewPreferenceHandler(deps.Preferences)
			users := api.Group("/users")
			{
				users.GET("/:id/preferences", prefHandler.GetPreferences)
				users.PUT("/:id/preferences", prefHandler.PutPreferences)
			}
		}
	}

	return router
}
