package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aeroclubhq/membership-backend/internal/config"
	"github.com/aeroclubhq/membership-backend/internal/http/handlers"
	"github.com/aeroclubhq/membership-backend/internal/http/middleware"
	"github.com/aeroclubhq/membership-backend/internal/metrics"
	"github.com/aeroclubhq/membership-backend/internal/models"
	"github.com/aeroclubhq/membership-backend/internal/service"
)

// Handlers собирает все HTTP-хэндлеры приложения.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Profile      *handlers.ProfileHandler
	Skill        *handlers.SkillHandler
	Proposal     *handlers.ProposalHandler
	Event        *handlers.EventHandler
	Resource     *handlers.ResourceHandler
	Notification *handlers.NotificationHandler
	Media        *handlers.MediaHandler
	WS           *handlers.WSHandler
	Health       *handlers.HealthHandler
	Seed         *handlers.SeedHandler
}

// SetupRouter настраивает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	h Handlers,
	tokenManager *service.TokenManager,
	m *metrics.Metrics,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", m.Handler())
	}

	r.GET("/health", h.Health.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	if h.Seed != nil && cfg.Env == "development" {
		api.POST("/seed", h.Seed.Seed)
		api.GET("/seed", h.Seed.Seed)
	}

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.POST("/logout", h.Auth.Logout)
		protectedAuth.GET("/sessions", h.Auth.ListSessions)
	}

	// Публичные маршруты
	api.GET("/ws", h.WS.Handle)
	api.GET("/skills", h.Skill.List)
	api.GET("/members/:id", middleware.UUIDValidator("id"), h.Profile.GetMember)
	api.GET("/events", h.Event.List)
	api.GET("/events/:id", middleware.UUIDValidator("id"), h.Event.Get)
	api.GET("/resources", h.Resource.List)
	api.GET("/resources/:id", middleware.UUIDValidator("id"), h.Resource.Get)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/profile", h.Profile.GetMe)
		protected.PATCH("/profile", h.Profile.UpdateMe)

		protected.GET("/skills/selectable", h.Skill.Selectable)
		protected.GET("/skills/:id", middleware.UUIDValidator("id"), h.Skill.Get)

		protected.POST("/proposals", h.Proposal.Submit)
		protected.GET("/proposals/mine", h.Proposal.ListMine)
		protected.GET("/proposals/pending", h.Proposal.ListPending)
		protected.GET("/proposals/resolved", h.Proposal.ListResolved)
		protected.GET("/proposals/:id", middleware.UUIDValidator("id"), h.Proposal.Get)
		protected.PUT("/proposals/:id/resolve", middleware.UUIDValidator("id"), h.Proposal.Resolve)

		protected.GET("/notifications", h.Notification.ListNotifications)
		protected.GET("/notifications/unread/count", h.Notification.CountUnread)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), h.Notification.MarkAsRead)
		protected.PUT("/notifications/read-all", h.Notification.MarkAllAsRead)

		protected.POST("/media", h.Media.Upload)
		protected.GET("/media/mine", h.Media.ListMine)
		protected.DELETE("/media/:id", middleware.UUIDValidator("id"), h.Media.Delete)
	}

	// Маршруты инструкторов и администраторов
	staff := api.Group("/")
	staff.Use(middleware.AuthMiddleware(tokenManager))
	staff.Use(middleware.RequireRole(models.RoleInstructor, models.RoleAdmin))
	{
		staff.POST("/events", h.Event.Create)
		staff.PUT("/events/:id", middleware.UUIDValidator("id"), h.Event.Update)
		staff.DELETE("/events/:id", middleware.UUIDValidator("id"), h.Event.Delete)
		staff.POST("/events/:id/dates", middleware.UUIDValidator("id"), h.Event.AddDate)
		staff.DELETE("/events/:id/dates/:dateID", middleware.UUIDValidator("id"), middleware.UUIDValidator("dateID"), h.Event.DeleteDate)
	}

	// Маршруты администратора
	admin := api.Group("/")
	admin.Use(middleware.AuthMiddleware(tokenManager))
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/skills", h.Skill.Create)
		admin.PUT("/skills/:id/levels/:level", middleware.UUIDValidator("id"), h.Skill.UpdateLevel)
		admin.PUT("/members/:id/role", middleware.UUIDValidator("id"), h.Profile.UpdateRole)

		admin.POST("/resources", h.Resource.Create)
		admin.PUT("/resources/:id", middleware.UUIDValidator("id"), h.Resource.Update)
		admin.DELETE("/resources/:id", middleware.UUIDValidator("id"), h.Resource.Delete)
	}

	return r
}
