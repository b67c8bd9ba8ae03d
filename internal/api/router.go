package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/Sanyister/SubjectTeacherApi/docs"
	"github.com/Sanyister/SubjectTeacherApi/internal/api/handler"
	"github.com/Sanyister/SubjectTeacherApi/internal/api/middleware"
	"github.com/Sanyister/SubjectTeacherApi/internal/core/domain"
	"github.com/Sanyister/SubjectTeacherApi/internal/core/ports"
	"github.com/Sanyister/SubjectTeacherApi/internal/core/service"
	mongodb "github.com/Sanyister/SubjectTeacherApi/internal/infrastructure/db/mongo"
	redisdb "github.com/Sanyister/SubjectTeacherApi/internal/infrastructure/db/redis"
)

// NewRouter builds the Echo instance with all routes registered. rdb may be
// nil; login throttling is then disabled.
func NewRouter(db *mongo.Database, rdb *redis.Client, tokens ports.TokenService, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("subjectteacher"))

	// --- Dependencies ---
	var throttle service.LoginThrottle
	if rdb != nil {
		throttle = redisdb.NewLoginThrottle(rdb)
	}

	authRepo := mongodb.NewAuthRepository(db)
	authService := service.NewAuthService(authRepo, tokens, throttle, log)
	authHandler := handler.NewAuthHandler(authService)
	authGate := middleware.Auth(tokens)

	subjectRepo := mongodb.NewGenericRepository[domain.Subject](db, "subjects", domain.ErrSubjectNotFound)
	subjectHandler := handler.NewSubjectHandler(subjectRepo)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authGate)

	// Bootstrap-only seeding endpoints. Intentionally unauthenticated so an
	// empty environment can be initialised; production deployments must
	// fence or remove them.
	e.POST("/auth/init-roles", authHandler.InitRoles)
	e.POST("/auth/init-users", authHandler.InitUsers)

	// --- Subject routes (token gate, writes Admin only) ---
	subjects := e.Group("/subjects", authGate)
	subjects.GET("", subjectHandler.List)
	subjects.GET("/:id", subjectHandler.Get)
	subjects.POST("", subjectHandler.Create, middleware.RBAC(domain.RoleAdmin))
	subjects.PUT("/:id", subjectHandler.Update, middleware.RBAC(domain.RoleAdmin))
	subjects.DELETE("/:id", subjectHandler.Delete, middleware.RBAC(domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(db, rdb)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
