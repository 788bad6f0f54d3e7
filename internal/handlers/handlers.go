package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"glaciercare/internal/analyzer"
	"glaciercare/internal/config"
	"glaciercare/internal/extractor"
	"glaciercare/internal/middleware"
	"glaciercare/internal/repository"
	"glaciercare/internal/service"
	"glaciercare/internal/storage"
)

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	authService *service.AuthService
	analysis    *service.AnalysisService
	db          *pgxpool.Pool
	cache       *redis.Client
	users       *repository.UserRepository
	sessions    *repository.SessionRepository
	reports     *repository.ReportRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	reportRepo := repository.NewReportRepository(db)
	auth := service.NewAuthService(userRepo, sessionRepo, cfg, log)
	analysis := service.NewAnalysisService(
		reportRepo,
		store,
		analyzer.New(cfg.Analyzer, log),
		extractor.New(cfg.Extractor),
		cfg,
		log,
	)

	return HandlerSet{
		log:         log,
		cfg:         cfg,
		authService: auth,
		analysis:    analysis,
		db:          db,
		cache:       cache,
		users:       userRepo,
		sessions:    sessionRepo,
		reports:     reportRepo,
	}
}

func (h HandlerSet) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)

	auth := router.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.Logout)

	protected := router.Group("")
	protected.Use(middleware.Auth(h.cfg, h.users, h.sessions))
	protected.GET("/user", h.User)
	protected.POST("/analyze", h.AnalyzeText)
	protected.POST("/analyze/file", h.AnalyzeFile)
	protected.GET("/reports", h.ListReports)
}

// All replies share the {status, data|error} envelope the clients expect.
func respondSuccess(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}

func respondError(c *gin.Context, status int, code string) {
	c.JSON(status, gin.H{"status": "error", "error": code})
}
