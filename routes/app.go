package routes

import (
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/sirswa/crm_backend/controllers"
	"github.com/sirswa/crm_backend/middleware"
	"github.com/sirswa/crm_backend/models"
	"github.com/sirswa/crm_backend/repositories"
	"github.com/sirswa/crm_backend/services"
	"github.com/sirswa/crm_backend/utils"
)

// Options configures the HTTP application.
type Options struct {
	Store  repositories.Store
	Redis  *redis.Client
	Logger *zap.Logger

	JWTSecret    string
	JWTExpiresIn time.Duration
	BreakGlass   services.BreakGlass

	UploadDir   string
	CORSOrigins []string
	SMTP        services.SMTPConfig

	// RateLimit enables per-IP request limiting.
	RateLimit bool
	// HSTS sends Strict-Transport-Security.
	HSTS bool
}

// App is the wired HTTP application.
type App struct {
	Echo    *echo.Echo
	Users   *services.UserService
	Revoker services.TokenRevoker
	Photos  *utils.PhotoStore
	// Limiter is nil unless Options.RateLimit is set.
	Limiter *middleware.RateLimiter
}

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *services.InputValidator
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Validate(i)
}

// NewApp builds repositories, services and controllers over the store and
// registers every route.
func NewApp(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := opts.Store

	userRepo := repositories.NewUserRepository(store)
	leadRepo := repositories.NewRepository[models.Lead](store, repositories.LeadsCollection)
	clientRepo := repositories.NewRepository[models.Client](store, repositories.ClientsCollection)
	developmentRepo := repositories.NewRepository[models.Development](store, repositories.DevelopmentsCollection)
	expenseRepo := repositories.NewRepository[models.Expense](store, repositories.ExpensesCollection)
	eventRepo := repositories.NewRepository[models.Event](store, repositories.EventsCollection)
	messageRepo := repositories.NewRepository[models.Message](store, repositories.MessagesCollection)

	validator := services.NewInputValidator()
	revoker := services.NewTokenRevoker(opts.Redis)
	tokens := services.NewTokenService(opts.JWTSecret, opts.JWTExpiresIn, revoker)
	authService := services.NewAuthService(userRepo, tokens, opts.BreakGlass, logger)
	populator := services.NewPopulator(userRepo, clientRepo, authService.BreakGlassRef())
	userService := services.NewUserService(userRepo, validator, services.NewMailer(opts.SMTP, logger), logger)
	messageService := services.NewMessageService(messageRepo, userRepo, populator, validator)
	aggregator := services.NewStoreAggregator(leadRepo, clientRepo, expenseRepo, developmentRepo)
	photos := utils.NewPhotoStore(opts.UploadDir)

	leads := services.NewResourceService[models.Lead, *models.Lead, models.LeadInput](
		"Lead", leadRepo, services.OpenPolicy[models.Lead](), populator, validator)
	clients := services.NewResourceService[models.Client, *models.Client, models.ClientInput](
		"Client", clientRepo, services.OpenPolicy[models.Client](), populator, validator)
	developments := services.NewResourceService[models.Development, *models.Development, models.DevelopmentInput](
		"Development", developmentRepo, services.DevelopmentPolicy(), populator, validator)
	expenses := services.NewResourceService[models.Expense, *models.Expense, models.ExpenseInput](
		"Expense", expenseRepo, services.ExpensePolicy(), populator, validator)
	events := services.NewResourceService[models.Event, *models.Event, models.EventInput](
		"Event", eventRepo, services.EventPolicy(), populator, validator)

	ctrl := Controllers{
		Auth:        controllers.NewAuthController(authService, logger),
		Users:       controllers.NewUserController(userService, photos, logger),
		Leads:       controllers.NewResourceController(leads, logger),
		Clients:     controllers.NewResourceController(clients, logger),
		Development: controllers.NewResourceController(developments, logger),
		Expenses:    controllers.NewResourceController(expenses, logger),
		Events:      controllers.NewResourceController(events, logger),
		Messages:    controllers.NewMessageController(messageService, logger),
		Analytics:   controllers.NewAnalyticsController(aggregator, logger),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator}

	metrics := middleware.NewMetrics()

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.ZapLogger(logger))
	e.Use(metrics.Middleware())
	e.Use(middleware.CORSWithConfig(middleware.NewCORSConfig(opts.CORSOrigins)))
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: opts.CORSOrigins,
		HSTS:           opts.HSTS,
	}))
	e.Use(echoMiddleware.BodyLimit("6M"))
	var limiter *middleware.RateLimiter
	if opts.RateLimit {
		limiter = middleware.NewRateLimiter()
		e.Use(limiter.RateLimit())
	}

	e.GET("/health", controllers.Health(store, logger))
	e.GET("/metrics", metrics.Handler())
	e.Static("/uploads", photos.Dir())

	SetupRoutes(e, ctrl, middleware.Authenticate(authService, logger))

	return &App{Echo: e, Users: userService, Revoker: revoker, Photos: photos, Limiter: limiter}
}
