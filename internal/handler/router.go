package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"foodbridge/internal/handler/api"
	"foodbridge/internal/handler/middleware"
	"foodbridge/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	lotHandler *api.LotHandler,
	reservationHandler *api.ReservationHandler,
	notificationHandler *api.NotificationHandler,
	maintenanceHandler *api.MaintenanceHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, lotHandler, reservationHandler, notificationHandler, maintenanceHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	lotHandler *api.LotHandler,
	reservationHandler *api.ReservationHandler,
	notificationHandler *api.NotificationHandler,
	maintenanceHandler *api.MaintenanceHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	apiGroup.Use(authMiddleware.RequireAuth())
	{
		lots := apiGroup.Group("/lots")
		{
			addRoutes(lots, []route{
				{Method: http.MethodPost, Path: "", Handler: lotHandler.CreateLot},
				{Method: http.MethodGet, Path: "", Handler: lotHandler.ListLots},
				{Method: http.MethodGet, Path: "/:id", Handler: lotHandler.GetLot},
				{Method: http.MethodPatch, Path: "/:id", Handler: lotHandler.UpdateLot},
				{Method: http.MethodPost, Path: "/:id/claims", Handler: reservationHandler.ClaimLot},
			})
		}

		reservations := apiGroup.Group("/reservations")
		{
			addRoutes(reservations, []route{
				{Method: http.MethodGet, Path: "", Handler: reservationHandler.ListReservations},
				{Method: http.MethodGet, Path: "/:id", Handler: reservationHandler.GetReservation},
				{Method: http.MethodPost, Path: "/:id/transitions", Handler: reservationHandler.TransitionReservation},
			})
		}

		notifications := apiGroup.Group("/notifications")
		{
			addRoutes(notifications, []route{
				{Method: http.MethodGet, Path: "", Handler: notificationHandler.ListNotifications},
				{Method: http.MethodGet, Path: "/stream", Handler: notificationHandler.StreamNotifications},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireOperator())
		{
			addRoutes(admin, []route{
				{Method: http.MethodPost, Path: "/maintenance/cleanup-orphans", Handler: maintenanceHandler.CleanupOrphans},
				{Method: http.MethodPost, Path: "/maintenance/deduplicate-claims", Handler: maintenanceHandler.DeduplicateActiveClaims},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
