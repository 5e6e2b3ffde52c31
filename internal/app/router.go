package app

import (
	"nutritrack_backend/internal/config"
	"nutritrack_backend/internal/middleware"
	"nutritrack_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT))
	{
		registerFoodRoutes(authGroup, c)
		registerAnalysisRoutes(authGroup, c)
		registerGoalRoutes(authGroup, c)
		registerChallengeRoutes(authGroup, c)
		registerNotificationRoutes(authGroup, c)
	}
}

func registerFoodRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/food-logs", c.foodLog.Create)
	rg.GET("/food-logs", c.foodLog.List)
	rg.GET("/food-logs/:id", c.foodLog.Get)
	rg.DELETE("/food-logs/:id", c.foodLog.Delete)

	rg.PUT("/nutrient-goals", c.nutrientGoal.Set)
	rg.GET("/nutrient-goals", c.nutrientGoal.List)
}

func registerAnalysisRoutes(rg *gin.RouterGroup, c *controllers) {
	analysis := rg.Group("/analysis")
	{
		analysis.GET("/daily", c.analysis.GetDaily)
		analysis.POST("/daily/snapshot", c.analysis.SaveSnapshot)
		analysis.GET("/snapshots", c.analysis.ListSnapshots)
		analysis.GET("/period", c.analysis.GetPeriod)
		analysis.GET("/streak", c.analysis.GetStreak)
	}
}

func registerGoalRoutes(rg *gin.RouterGroup, c *controllers) {
	goals := rg.Group("/goals")
	{
		goals.POST("", c.goal.Create)
		goals.GET("", c.goal.List)
		// 静态路径需先于 /:id 注册
		goals.GET("/analysis", c.goal.Analyze)
		goals.POST("/:id/progress", c.goal.UpdateProgress)
		goals.PUT("/:id", c.goal.Adjust)
		goals.PATCH("/:id/status", c.goal.SetStatus)
	}
}

func registerChallengeRoutes(rg *gin.RouterGroup, c *controllers) {
	challenges := rg.Group("/challenges")
	{
		challenges.POST("", c.challenge.Create)
		challenges.POST("/:id/join", c.challenge.Join)
		challenges.POST("/:id/track", c.challenge.Track)
		challenges.GET("/:id/leaderboard", c.challenge.Leaderboard)
	}
}

func registerNotificationRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/reminders/meal", c.notification.MealReminder)
	rg.GET("/notifications", c.notification.List)
	rg.PATCH("/notifications/read", c.notification.MarkRead)
}
