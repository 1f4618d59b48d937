package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homeserve/handlers"
	"homeserve/middleware"
	"homeserve/models"
	"homeserve/utils"
)

// Bundle carries everything the router needs.
type Bundle struct {
	Scheduling        *handlers.SchedulingHandler
	Tokens            *utils.TokenIssuer
	Health            *utils.HealthMonitor
	Logger            *zap.Logger
	MaxRequestsPerMin int
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, monitor *utils.HealthMonitor) {
	r.GET("/health", func(c *gin.Context) {
		if monitor == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		status := monitor.Status()
		if !status.Healthy() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "backends": status})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "backends": status})
	})
}

// RegisterSchedulingRoutes sets up the endpoints for the scheduling engine.
func RegisterSchedulingRoutes(r *gin.Engine, b Bundle) {
	h := b.Scheduling
	api := r.Group("/api/scheduling")
	{
		api.Use(middleware.ActorMiddleware(b.Tokens))
		api.POST("/contractors/:contractorID/slots", h.GenerateSlotsHandler)
		api.POST("/contractors/:contractorID/preferred-dates", h.PreferredDatesHandler)
		api.POST("/conflicts", h.DetectConflictsHandler)
		api.POST("/bookings", h.BookSlotHandler)
		api.DELETE("/bookings/:workOrderID", h.CancelBookingHandler)
		api.POST("/alternatives", h.AlternativesHandler)

		privileged := api.Group("")
		privileged.Use(middleware.RequireRole(models.RoleAdmin, models.RoleManager))
		privileged.POST("/bookings/override", h.AdminOverrideHandler)
		privileged.GET("/audit/:entityID", h.AuditTrailHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, b Bundle) {
	r.Use(utils.ErrorHandler(b.Logger))
	r.Use(middleware.RequestLogger(b.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware(b.MaxRequestsPerMin, b.Logger))

	RegisterHealthRoute(r, b.Health)
	RegisterSchedulingRoutes(r, b)
}
