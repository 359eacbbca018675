package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"jobdesk/api/internal/cache"
	"jobdesk/api/internal/config"
	"jobdesk/api/internal/mail"
	"jobdesk/api/internal/middleware"
	"jobdesk/api/internal/models"
	"jobdesk/api/internal/repository"
	"jobdesk/api/internal/security"
	"jobdesk/api/internal/service"
	"jobdesk/api/internal/storage"
)

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	tokens      *security.TokenService
	authService *service.AuthService
	jobService  *service.JobService
	appService  *service.ApplicationService
	userService *service.UserService
	resumeSvc   *service.ResumeService
	limiter     *middleware.RedisLimiter
	db          *pgxpool.Pool
	cacheClient *redis.Client
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cacheClient *redis.Client,
	store *storage.ObjectStore,
	cfg *config.AppConfig,
) HandlerSet {
	tokens := security.NewTokenService(
		cfg.Security.JWTSecret,
		cfg.Security.AccessTokenTTL,
		cfg.Security.RefreshTokenTTL,
	)

	userRepo := repository.NewUserRepository(db)
	jobRepo := repository.NewJobRepository(db)
	appRepo := repository.NewApplicationRepository(db)

	verifications := cache.NewVerificationStore(cacheClient)
	listCache := cache.NewListCache(cacheClient, log)
	mailer := mail.NewSMTPMailer(cfg.Mail, log)

	return HandlerSet{
		log:         log,
		cfg:         cfg,
		tokens:      tokens,
		authService: service.NewAuthService(userRepo, tokens, verifications, mailer, cfg, log),
		jobService:  service.NewJobService(jobRepo, listCache, log),
		appService:  service.NewApplicationService(appRepo, jobRepo, log),
		userService: service.NewUserService(userRepo, log),
		resumeSvc:   service.NewResumeService(store, userRepo, log),
		limiter:     middleware.NewRedisLimiter(cacheClient),
		db:          db,
		cacheClient: cacheClient,
	}
}

// JobService exposes the job service for background workers.
func (h HandlerSet) JobService() *service.JobService {
	return h.jobService
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	requireAuth := middleware.Auth(h.tokens)
	optionalAuth := middleware.OptionalAuth(h.tokens)
	authLimit := middleware.RateLimit(h.limiter, "auth",
		h.cfg.Security.AuthRateLimit, h.cfg.Security.AuthRateWindow)

	auth := router.Group("/auth")
	{
		auth.POST("/register", authLimit, h.RegisterUser)
		auth.POST("/login", authLimit, h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.POST("/verify-email", h.VerifyEmail)
		auth.GET("/me", requireAuth, h.Me)
	}

	jobs := router.Group("/jobs")
	{
		jobs.GET("", h.ListJobs)
		jobs.GET("/my", requireAuth,
			middleware.RequireRoles(models.UserRoleRecruiter, models.UserRoleAdmin), h.MyJobs)
		jobs.GET("/:id", optionalAuth, h.GetJob)
		jobs.GET("/:id/applications", requireAuth, h.JobApplications)
		jobs.POST("", requireAuth,
			middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleRecruiter), h.CreateJob)
		jobs.PUT("/:id", requireAuth, h.UpdateJob)
		jobs.PATCH("/:id", requireAuth, h.UpdateJob)
		jobs.DELETE("/:id", requireAuth, h.DeleteJob)
		jobs.PATCH("/:id/close", requireAuth,
			middleware.RequireRoles(models.UserRoleRecruiter, models.UserRoleAdmin), h.CloseJob)
	}

	applications := router.Group("/applications", requireAuth)
	{
		applications.POST("", middleware.RequireRoles(models.UserRoleCandidate), h.Apply)
		applications.GET("/my", middleware.RequireRoles(models.UserRoleCandidate), h.MyApplications)
		applications.PUT("/:id",
			middleware.RequireRoles(models.UserRoleRecruiter, models.UserRoleAdmin), h.UpdateApplication)
		applications.POST("/:id/withdraw",
			middleware.RequireRoles(models.UserRoleCandidate), h.WithdrawApplication)
	}

	profile := router.Group("/profile", requireAuth)
	{
		profile.POST("/resume",
			middleware.RequireRoles(models.UserRoleCandidate), h.UploadResume)
	}

	admin := router.Group("/admin", requireAuth, middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.POST("/jobs/:jobId/approve", h.ApproveJob)
		admin.POST("/jobs/:jobId/reject", h.RejectJob)
		admin.GET("/jobs/pending", h.PendingJobs)
		admin.GET("/jobs/approved", h.ApprovedJobs)
		admin.GET("/jobs/all", h.AllJobs)
		admin.GET("/users", h.ListUsers)
		admin.PATCH("/users/:id/suspend", h.SuspendUser)
	}
}
