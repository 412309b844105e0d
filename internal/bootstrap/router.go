package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/projecthub-dev/projecthub-backend/config"
	httpapi "github.com/projecthub-dev/projecthub-backend/internal/api/http"
	"github.com/projecthub-dev/projecthub-backend/internal/api/http/middleware"
	"github.com/projecthub-dev/projecthub-backend/internal/auth"
	authhttp "github.com/projecthub-dev/projecthub-backend/internal/auth/http"
	authmw "github.com/projecthub-dev/projecthub-backend/internal/auth/middleware"
	authrepo "github.com/projecthub-dev/projecthub-backend/internal/auth/repository"
	authservice "github.com/projecthub-dev/projecthub-backend/internal/auth/service"
	commenthttp "github.com/projecthub-dev/projecthub-backend/internal/comments/http"
	commentrepo "github.com/projecthub-dev/projecthub-backend/internal/comments/repository"
	commentservice "github.com/projecthub-dev/projecthub-backend/internal/comments/service"
	projecthttp "github.com/projecthub-dev/projecthub-backend/internal/projects/http"
	projectrepo "github.com/projecthub-dev/projecthub-backend/internal/projects/repository"
	projectservice "github.com/projecthub-dev/projecthub-backend/internal/projects/service"
	"github.com/projecthub-dev/projecthub-backend/internal/realtime"
	realtimehttp "github.com/projecthub-dev/projecthub-backend/internal/realtime/http"
	"github.com/projecthub-dev/projecthub-backend/internal/storage/avatars"
	"github.com/projecthub-dev/projecthub-backend/internal/storage/postgres"
	taskhttp "github.com/projecthub-dev/projecthub-backend/internal/tasks/http"
	taskrepo "github.com/projecthub-dev/projecthub-backend/internal/tasks/repository"
	taskservice "github.com/projecthub-dev/projecthub-backend/internal/tasks/service"
	"github.com/projecthub-dev/projecthub-backend/internal/users"
	usershttp "github.com/projecthub-dev/projecthub-backend/internal/users/http"
)

type RouterDeps struct {
	Config *config.Config
	DB     *pgxpool.Pool
	Redis  redis.UniversalClient

	// Optional. Without Firebase only locally issued tokens are accepted;
	// without a presigner avatar uploads answer 503.
	Firebase auth.IDTokenVerifier
	Avatars  *avatars.Presigner
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	cfg := dep.Config
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestIDMiddleware())

	healthHandler := httpapi.NewHealthHandler(cfg.App.ServiceName, cfg.App.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	db := postgres.NewConnection(dep.DB)
	userRepo := users.NewRepo(db)
	projectRepo := projectrepo.NewProjectRepository(db)
	taskRepo := taskrepo.NewTaskRepository(db)
	commentRepo := commentrepo.NewCommentRepository(db)
	resetRepo := authrepo.NewResetTokenRepository(dep.Redis, cfg.Auth.ResetTokenTTL)

	broker := realtime.NewBroker(dep.Redis)
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	verifiers := []auth.TokenVerifier{issuer}
	if dep.Firebase != nil {
		verifiers = append(verifiers, auth.NewFirebaseVerifier(dep.Firebase, userRepo))
	}

	authSvc := authservice.NewAuthService(userRepo, resetRepo, issuer, authservice.LogMailer{}, cfg.Auth.ResetURL)
	projectSvc := projectservice.NewProjectService(projectRepo, userRepo, taskRepo, broker)
	taskSvc := taskservice.NewTaskService(taskRepo, projectRepo, broker)
	commentSvc := commentservice.NewCommentService(commentRepo, projectRepo, taskRepo, userRepo, broker)

	api := r.Group("/api/v1")
	protected := api.Group("", authmw.RequireUser(verifiers...))

	limiter := middleware.NewIPRateLimiter(cfg.Auth.LoginPerMinute, cfg.Auth.LoginBurst)
	authhttp.New(authSvc).Register(api.Group("/auth"), protected.Group("/auth"), limiter)

	var presigner usershttp.AvatarPresigner
	if dep.Avatars != nil {
		presigner = dep.Avatars
	}
	usershttp.New(presigner, userRepo).Register(protected.Group("/users"))

	projectsGroup := protected.Group("/projects")
	projecthttp.New(projectSvc).Register(projectsGroup)
	taskhttp.New(taskSvc).Register(projectsGroup)
	commenthttp.New(commentSvc).Register(projectsGroup, protected.Group("/comments"))
	realtimehttp.New(broker, projectSvc, taskSvc, commentSvc).Register(projectsGroup)

	return r
}
