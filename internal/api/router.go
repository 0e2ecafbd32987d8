package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kennelworks/kennelworks/internal/api/cron"
	v1 "github.com/kennelworks/kennelworks/internal/api/v1"
	"github.com/kennelworks/kennelworks/internal/config"
	"github.com/kennelworks/kennelworks/internal/logger"
	"github.com/kennelworks/kennelworks/internal/rest/middleware"
)

type Handlers struct {
	Health *v1.HealthHandler
	Animal *v1.AnimalHandler
	Jobs   *cron.JobsHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.RateLimiterMiddleware(cfg, logger),
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	// Everything below requires the API key when one is configured.
	private := router.Group("/", middleware.APIKeyAuthMiddleware(cfg, logger))

	v1Group := private.Group("/v1")
	registerV1Routes(v1Group, handlers)

	cronGroup := private.Group("/cron")
	registerCronRoutes(cronGroup, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	animals := router.Group("/animals")
	{
		animals.POST("", handlers.Animal.CreateAnimal)
		animals.GET("", handlers.Animal.ListAnimals)

		// The changes feed is the replica-sync surface; register it
		// before the id routes so "changes" never binds as an id.
		animals.GET("/changes", handlers.Animal.ListChanges)
		animals.POST("/purge", handlers.Animal.PurgeTombstones)

		animals.GET("/:id", handlers.Animal.GetAnimal)
		animals.PUT("/:id", handlers.Animal.UpdateAnimal)
		animals.DELETE("/:id", handlers.Animal.DeleteAnimal)

		animals.POST("/:id/checkin", handlers.Animal.CheckIn)
		animals.POST("/:id/checkout", handlers.Animal.CheckOut)
		animals.POST("/:id/boarding", handlers.Animal.BeginBoarding)
		animals.POST("/:id/departure", handlers.Animal.SetDeparture)
	}
}

func registerCronRoutes(router *gin.RouterGroup, handlers Handlers) {
	jobs := router.Group("/jobs")
	{
		jobs.POST("/transitions", handlers.Jobs.RunDailyTransitions)
		jobs.POST("/reminder", handlers.Jobs.RunDepartureReminder)
		jobs.POST("/backup", handlers.Jobs.RunBackup)
	}
}
