package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/diakonovmakar/yatube-final/internal/app/auth"
	appControllers "github.com/diakonovmakar/yatube-final/internal/app/controllers"
	appMigrations "github.com/diakonovmakar/yatube-final/internal/app/migrations"
	appRepos "github.com/diakonovmakar/yatube-final/internal/app/repositories"
	"github.com/diakonovmakar/yatube-final/internal/app/repositories/memstore"
	appRoutes "github.com/diakonovmakar/yatube-final/internal/app/routes"
	appServices "github.com/diakonovmakar/yatube-final/internal/app/services"
	"github.com/diakonovmakar/yatube-final/internal/app/urls"
	"github.com/diakonovmakar/yatube-final/internal/app/views"
	"github.com/diakonovmakar/yatube-final/internal/config"
	"github.com/diakonovmakar/yatube-final/internal/db"
	appMiddleware "github.com/diakonovmakar/yatube-final/internal/middleware"
	pkgAuth "github.com/diakonovmakar/yatube-final/internal/pkg/auth"
	"github.com/diakonovmakar/yatube-final/internal/pkg/cache"
	"github.com/diakonovmakar/yatube-final/internal/pkg/events"
	"github.com/diakonovmakar/yatube-final/internal/pkg/filestorage"
	"github.com/diakonovmakar/yatube-final/internal/pkg/logger"
	"github.com/diakonovmakar/yatube-final/web"
)

// maxRequestBody bounds form posts: one image plus the text fields.
const maxRequestBody = filestorage.MaxImageSize + 1<<20

// Infrastructure is what the services run on. Tests build one from the
// memory store and a manual clock.
type Infrastructure struct {
	Stores   appServices.Stores
	Timeline cache.Timeline
	Events   events.Publisher
	closers  []func()
}

// Close releases connections opened by SetupInfrastructure.
func (i *Infrastructure) Close() {
	for n := len(i.closers) - 1; n >= 0; n-- {
		i.closers[n]()
	}
	i.closers = nil
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Infrastructure
	Logger zerolog.Logger

	Images       *filestorage.LocalStorage
	Sessions     *pkgAuth.SessionManager
	AuthzService *appAuth.AuthorizationService

	PostService    *appServices.PostService
	CommentService *appServices.CommentService
	FollowService  *appServices.FollowService
	AuthService    *appServices.AuthService
	GroupService   *appServices.GroupService

	PostController   *appControllers.PostController
	FollowController *appControllers.FollowController
	AuthController   *appControllers.AuthController
	AboutController  *appControllers.AboutController
	AuthMiddleware   *appMiddleware.AuthMiddleware
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string, envFiles ...string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath, envFiles...)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Format: logger.Format(cfg.Logging.Format),
	})
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	if overrides := cfg.EnvOverrides(); len(overrides) > 0 {
		lgr.Debug().Strs("vars", overrides).Msg("Configuration overridden from environment")
	}
	return cfg, lgr, nil
}

// SetupInfrastructure opens the configured store, cache and event bus.
func SetupInfrastructure(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{}

	stores, closeStores, err := SetupStores(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}
	infra.Stores = stores
	infra.closers = append(infra.closers, closeStores)

	timeline, closeTimeline := SetupTimeline(ctx, cfg, lgr)
	infra.Timeline = timeline
	infra.closers = append(infra.closers, closeTimeline)

	publisher, closePublisher := SetupPublisher(cfg, lgr)
	infra.Events = publisher
	infra.closers = append(infra.closers, closePublisher)

	return infra, nil
}

// SetupStores connects the configured database driver and, for Postgres,
// applies pending migrations when auto_migrate is on.
func SetupStores(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (appServices.Stores, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		lgr.Warn().Msg("Using the in-memory store; data is lost on restart")
		store := memstore.New(time.Now)
		return appServices.Stores{
			Users:    store.Users(),
			Groups:   store.Groups(),
			Posts:    store.Posts(),
			Comments: store.Comments(),
			Follows:  store.Follows(),
		}, func() {}, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, lgr)
	if err != nil {
		return appServices.Stores{}, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		lgr.Info().Msg("Running database migrations...")
		if err := appMigrations.NewMigrator(database.Pool, lgr).Migrate(ctx); err != nil {
			database.Close()
			return appServices.Stores{}, nil, fmt.Errorf("database migrations failed: %w", err)
		}
	}

	repos := appRepos.NewRepositories(database.Pool)
	return appServices.Stores{
		Users:    repos.UserRepository,
		Groups:   repos.GroupRepository,
		Posts:    repos.PostRepository,
		Comments: repos.CommentRepository,
		Follows:  repos.FollowRepository,
	}, database.Close, nil
}

// SetupTimeline returns the home timeline cache for the configured backend.
// An unreachable Redis is logged and still used: its errors read as misses.
func SetupTimeline(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (cache.Timeline, func()) {
	if cfg.Cache.Backend != config.CacheRedis {
		return cache.NewMemoryTimeline(cfg.CacheTTL(), cache.SystemClock{}), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		lgr.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis is not reachable, the timeline cache will miss until it is")
	} else {
		lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	}

	timeline := cache.NewRedisTimeline(client, cfg.Cache.Key, cfg.CacheTTL(), logger.Component(lgr, "cache"))
	return timeline, func() { _ = client.Close() }
}

// SetupPublisher connects to NATS when a URL is configured.
func SetupPublisher(cfg *config.Config, lgr zerolog.Logger) (events.Publisher, func()) {
	if cfg.NATS.URL == "" {
		return events.NoopPublisher{}, func() {}
	}

	publisher, err := events.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger.Component(lgr, "events"))
	if err != nil {
		lgr.Error().Err(err).Str("url", cfg.NATS.URL).Msg("Failed to connect to NATS, events are disabled")
		return events.NoopPublisher{}, func() {}
	}
	return publisher, func() { _ = publisher.Close() }
}

// BuildDependencies initializes services, controllers and middleware on
// top of infra.
func BuildDependencies(cfg *config.Config, infra *Infrastructure, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Infrastructure: *infra, Logger: lgr}

	var err error
	deps.Images, err = filestorage.NewLocalStorage(cfg.Server.MediaRoot, logger.Component(lgr, "storage"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Sessions = pkgAuth.NewSessionManager(pkgAuth.SessionConfig{
		SecretKey:  cfg.Session.Secret,
		Expiration: cfg.SessionExpiration(),
		Issuer:     cfg.Session.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService()

	serviceLogger := logger.Component(lgr, "service")
	pageSize := cfg.Pagination.PageSize
	deps.PostService = appServices.NewPostService(infra.Stores, infra.Timeline, deps.Images, deps.AuthzService, infra.Events, pageSize, serviceLogger)
	deps.CommentService = appServices.NewCommentService(infra.Stores, deps.PostService, infra.Events, serviceLogger)
	deps.FollowService = appServices.NewFollowService(infra.Stores, deps.AuthzService, infra.Events, pageSize, serviceLogger)
	deps.AuthService = appServices.NewAuthService(infra.Stores.Users, deps.Sessions, serviceLogger)
	deps.GroupService = appServices.NewGroupService(infra.Stores.Groups, serviceLogger)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService, appMiddleware.CookieConfig{
		Name:   cfg.Session.CookieName,
		MaxAge: deps.Sessions.MaxAge(),
		Secure: cfg.Session.Secure,
	}, logger.Component(lgr, "auth"))

	controllerLogger := logger.Component(lgr, "http")
	deps.PostController = appControllers.NewPostController(deps.PostService, deps.CommentService, controllerLogger)
	deps.FollowController = appControllers.NewFollowController(deps.FollowService, controllerLogger)
	deps.AuthController = appControllers.NewAuthController(deps.AuthService, deps.AuthMiddleware, controllerLogger)
	deps.AboutController = appControllers.NewAboutController()

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware, templates, static
// files and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = maxRequestBody
	router.Use(
		appMiddleware.RequestLogger(logger.Component(deps.Logger, "http")),
		appMiddleware.Recovery(deps.Logger),
		appMiddleware.MaxBodySize(maxRequestBody),
		deps.AuthMiddleware.LoadSession(),
	)

	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return nil, err
	}
	renderer, err := views.NewRenderer(templates)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	router.HTMLRender = renderer

	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, err
	}
	router.StaticFS(urls.Static, http.FS(static))
	router.Static(urls.Media, cfg.Server.MediaRoot)

	appRoutes.SetupRouter(router, appRoutes.Controllers{
		Posts:   deps.PostController,
		Follows: deps.FollowController,
		Auth:    deps.AuthController,
		About:   deps.AboutController,
	}, deps.AuthMiddleware)

	return router, nil
}
