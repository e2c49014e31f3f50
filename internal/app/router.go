package app

import (
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/docs"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/config"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/middleware"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.PUT("/profile", c.user.UpdateProfile)
		authGroup.POST("/profile/avatar", c.user.UploadAvatar)

		battles := authGroup.Group("/battles")
		{
			battles.POST("", c.battle.Create)
			battles.GET("", c.battle.List)
			battles.POST("/join", c.battle.Join)
			battles.GET("/history", c.battle.History)
			battles.GET("/:id", c.battle.Get)
			battles.POST("/:id/submit", c.battle.Submit)
			battles.GET("/:id/analysis", c.battle.Analysis)
		}
	}
}
