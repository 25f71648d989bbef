package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/cache"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/config"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/middleware"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/repository"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/service"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/storage"
)

type HandlerSet struct {
	log zerolog.Logger
	cfg *config.AppConfig

	authService         *service.AuthService
	sessionService      *service.SessionService
	completionService   *service.CompletionService
	cancellationService *service.CancellationService

	db    *pgxpool.Pool
	cache *redis.Client

	users         *repository.UserRepository
	skills        *repository.SkillRepository
	notifications *repository.NotificationRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cacheClient *redis.Client, store *storage.EvidenceStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	skillRepo := repository.NewSkillRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	offerRepo := repository.NewCounterOfferRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	cancellationRepo := repository.NewCancellationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notifier := service.NewNotifier(notificationRepo, cacheClient, log)
	invalidator := cache.NewInvalidator(cacheClient, log)

	var uploader service.EvidenceUploader
	if store != nil {
		uploader = store
	}

	return HandlerSet{
		log: log,
		cfg: cfg,

		authService:         service.NewAuthService(userRepo, cfg, log),
		sessionService:      service.NewSessionService(sessionRepo, skillRepo, offerRepo, notifier, invalidator, cfg, log),
		completionService:   service.NewCompletionService(sessionRepo, completionRepo, notifier, invalidator, log),
		cancellationService: service.NewCancellationService(sessionRepo, cancellationRepo, uploader, notifier, invalidator, log),

		db:    db,
		cache: cacheClient,

		users:         userRepo,
		skills:        skillRepo,
		notifications: notificationRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", h.RegisterUser)
	auth.POST("/login", h.Login)

	protected := v1.Group("")
	protected.Use(middleware.Auth(h.cfg, h.users))

	protected.GET("/auth/me", h.Me)

	protected.POST("/skills", h.CreateSkill)
	protected.GET("/skills", h.ListSkills)
	protected.DELETE("/skills/:id", h.DeleteSkill)

	sessions := protected.Group("/sessions")
	sessions.POST("", h.CreateSession)
	sessions.GET("", h.ListSessions)
	sessions.GET("/:id", h.GetSession)
	sessions.PATCH("/:id/respond", h.RespondSession)
	sessions.DELETE("/:id", h.DeleteSession)

	sessions.POST("/:id/counter-offers", h.CreateCounterOffer)
	sessions.GET("/:id/counter-offers", h.ListCounterOffers)
	sessions.PATCH("/:id/counter-offers/:offerId", h.DecideCounterOffer)

	sessions.POST("/:id/completion-requests", h.RequestCompletion)
	sessions.GET("/:id/completion-requests", h.ListCompletionRequests)
	sessions.PATCH("/:id/completion-requests", h.RespondCompletion)
	// Legacy clients still send PUT; the semantics are identical.
	sessions.PUT("/:id/completion-requests", h.RespondCompletion)

	sessions.POST("/:id/cancellation", h.RequestCancellation)
	sessions.GET("/:id/cancellation", h.GetCancellation)
	sessions.PATCH("/:id/cancellation", h.RespondCancellation)

	protected.GET("/completion-requests", h.ListMyCompletionRequests)

	protected.GET("/notifications", h.ListNotifications)
	protected.PATCH("/notifications/:id/read", h.MarkNotificationRead)
}
