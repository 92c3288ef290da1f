package app

import (
	"concept_review_backend/docs"
	"concept_review_backend/internal/config"
	"concept_review_backend/internal/middleware"

	"concept_review_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 学生端（无需登录）
	a.registerPublicRoutes(router, c)

	// 2. 管理后台
	a.registerAdminRoutes(router, c, s)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		// 问卷
		public.POST("/survey", c.survey.Submit)
		public.GET("/survey", c.survey.List)
		public.POST("/survey/webhook/:formId/:responseId", c.survey.Webhook)

		// 排行榜
		public.GET("/leaderboard", c.leaderboard.GetLeaderboard)

		// 概念图
		public.POST("/upload", c.image.Upload)
		public.GET("/image", c.image.GetImage)
		public.GET("/blob-list", c.image.ListBlobs)
		public.GET("/groups", c.image.GetGroups)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, s *services) {
	adminAuth := middleware.AdminAuth(s.auth)

	router.POST("/api/admin/login", c.admin.Login)
	router.POST("/api/survey/import", adminAuth, c.survey.Import)

	admin := router.Group("/api/admin")
	admin.Use(adminAuth)
	{
		admin.GET("/survey-data", c.admin.ListSurveyData)
		admin.GET("/survey-data/export", c.admin.ExportSurveyData)
	}
}
