package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"fxacademy/docs"
	"fxacademy/internal/auth"
	"fxacademy/internal/billing"
	"fxacademy/internal/cache"
	"fxacademy/internal/chat"
	"fxacademy/internal/config"
	"fxacademy/internal/database"
	"fxacademy/internal/database/migration"
	handlers "fxacademy/internal/http/handler"
	"fxacademy/internal/http/middleware"
	"fxacademy/internal/logging"
	"fxacademy/internal/mail"
	"fxacademy/internal/otel"
	"fxacademy/internal/repository/postgres"
	"fxacademy/internal/service"
	"fxacademy/internal/storage"
	"fxacademy/internal/video"
)

const shutdownTimeout = 15 * time.Second

// @title FX Academy API
// @version 1.0
// @description Courses, drip-released lessons, chat and subscriptions for the FX Academy platform.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Location())
	logging.SetDefault(logger)

	if cfg.JWT.Secret == "" {
		fatal(logger, "config_invalid", nil, map[string]any{"missing": "JWT_SECRET"})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		fatal(logger, "tracing_init_failed", err, nil)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		fatal(logger, "db_connect_failed", err, nil)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		fatal(logger, "db_migration_failed", err, nil)
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		fatal(logger, "storage_init_failed", err, nil)
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		fatal(logger, "redis_connect_failed", err, nil)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Mail
	var sender mail.Sender
	if cfg.SendGrid.APIKey != "" {
		sender = mail.NewSendGrid(cfg.SendGrid)
	} else {
		sender = mail.NewConsole(logger)
	}
	mailer := mail.NewDispatcher(sender, logger)
	defer mailer.Wait()
	composer := mail.NewComposer(cfg.SendGrid.FromName, cfg.FrontendURL)

	// Repositories
	users := postgres.NewUserPostgres(db)
	invites := postgres.NewInvitePostgres(db)
	courses := postgres.NewCoursePostgres(db)
	lessons := postgres.NewLessonPostgres(db)
	enrollments := postgres.NewEnrollmentPostgres(db)
	progress := postgres.NewProgressPostgres(db)
	grants := postgres.NewAdhocAccessPostgres(db)
	plans := postgres.NewPlanPostgres(db)
	subs := postgres.NewSubscriptionPostgres(db)
	messages := postgres.NewChatPostgres(db)
	rooms := postgres.NewPrivateRoomPostgres(db)

	// Services
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	videos := video.NewClient(cfg.Vimeo, videoCache(redisClient))

	authSvc := service.NewAuthService(users, invites, auth.NewPasswordHasher(), tokens, mailer, composer, cfg.AdminEmails, logger)
	adminSvc := service.NewAdminService(users, invites, courses, lessons, enrollments, grants, plans, mailer, composer)
	catalogSvc := service.NewCatalogService(courses, lessons, objStore, logger)
	courseSvc := service.NewCourseService(users, courses, lessons, enrollments, progress, grants, objStore, videos, logger)
	chatSvc := service.NewChatService(messages, rooms, users, courseSvc, cfg.Chat)
	billingSvc := service.NewBillingService(plans, subs, users, billing.NewPayPal(cfg.PayPal), logger)

	// Chat
	chatMetrics, err := chat.NewMetrics(reg)
	if err != nil {
		fatal(logger, "metrics_init_failed", err, nil)
	}
	var (
		broker   chat.Broker   = chat.NewLocalBroker()
		presence chat.Presence = chat.NewLocalPresence()
	)
	if redisClient != nil {
		broker = chat.NewRedisBroker(redisClient, chat.DefaultChannel, logger)
		presence = cache.NewPresence(redisClient)
	}
	defer broker.Close()

	hub := chat.NewHub(broker, chatMetrics, logger)
	if err := hub.Start(ctx); err != nil {
		fatal(logger, "chat_hub_start_failed", err, nil)
	}
	chatServer := chat.NewServer(hub, chatSvc, presence, logger, cfg.Chat.HistorySize, cfg.Chat.SendBufferSize)

	// HTTP
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		fatal(logger, "metrics_init_failed", err, nil)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    storage.MaxCoverSize + 1<<20,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(recover.New())
	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/healthz"
	})))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	deps := handlers.Deps{
		DB:             db,
		Tokens:         tokens,
		Log:            logger,
		AuthRateLimit:  cfg.RateLimit.AuthAttempts,
		AuthRateWindow: cfg.RateLimit.AuthWindow,
		Auth:           authSvc,
		Admin:          adminSvc,
		Catalog:        catalogSvc,
		Courses:        courseSvc,
		Chat:           chatSvc,
		Billing:        billingSvc,
		ChatServer:     chatServer,
		ChatContext:    ctx,
	}
	if redisClient != nil {
		deps.Limiter = cache.NewRateLimiter(redisClient)
	}
	handlers.RegisterRoutes(app, deps)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			logger.Error("http_shutdown_failed", err, nil)
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("http_listening", map[string]any{"addr": addr, "redis": redisClient != nil})
	if err := app.Listen(addr); err != nil {
		fatal(logger, "http_listen_failed", err, nil)
	}
	logger.Info("http_stopped", nil)
}

// videoCache keeps a nil client from becoming a non-nil interface holding a nil pointer.
func videoCache(client *redis.Client) video.Cache {
	if client == nil {
		return nil
	}
	return cache.NewJSONCache(client, "vimeo:oembed:")
}

func fatal(log *logging.Logger, msg string, err error, fields map[string]any) {
	log.Error(msg, err, fields)
	os.Exit(1)
}
