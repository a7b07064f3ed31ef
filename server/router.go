package server

import (
	"time"

	httpHandler "content-platform/interfaces/http"
	"content-platform/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	SecretKey      string
	MaintenanceKey string
	AllowOrigins   []string
}

func InitiateRouter(
	cfg RouterConfig,
	actionHandler httpHandler.IActionHandler,
	temporaryContentHandler httpHandler.ITemporaryContentHandler,
	maintenanceHandler httpHandler.IMaintenanceHandler,
	actionStream gin.HandlerFunc,
) *gin.Engine {
	allowed := make(map[string]struct{}, len(cfg.AllowOrigins))
	for _, origin := range cfg.AllowOrigins {
		allowed[origin] = struct{}{}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.MaintenanceKeyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			_, ok := allowed[origin]
			return ok
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/healthz", maintenanceHandler.Healthz)

	api := router.Group("api")
	api.Use(middleware.Auth(cfg.SecretKey))

	actions := api.Group("/actions")
	{
		actions.POST("", actionHandler.CreateAction)
		if actionStream != nil {
			actions.GET("/stream", actionStream)
		}
		actions.GET("/:id", actionHandler.GetAction)
		actions.POST("/:id/approve", actionHandler.Approve)
		actions.POST("/:id/review", actionHandler.RequestNewGeneration)
		actions.POST("/:id/image-edit", actionHandler.StartImageEdit)
		actions.POST("/:id/image-edit/complete", actionHandler.CompleteImageEdit)
	}

	teams := api.Group("/teams/:teamId")
	{
		teams.GET("/actions", actionHandler.ListTeamActions)
		teams.GET("/usage", actionHandler.GetTeamUsage)
	}

	api.POST("/temporary-contents", temporaryContentHandler.StageQuickContent)
	api.GET("/temporary-contents/:id", temporaryContentHandler.GetTemporaryContent)

	// Operator routes sit outside the tenant JWT group.
	maintenance := router.Group("api/maintenance")
	maintenance.Use(middleware.MaintenanceKey(cfg.MaintenanceKey))
	{
		maintenance.POST("/temporary-contents/cleanup", maintenanceHandler.CleanupTemporaryContent)
		maintenance.POST("/outbox/dispatch", maintenanceHandler.DispatchOutbox)
	}

	return router
}
