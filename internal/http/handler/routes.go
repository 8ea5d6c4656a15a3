package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"fxacademy/internal/chat"
	"fxacademy/internal/http/middleware"
	"fxacademy/internal/logging"
	"fxacademy/internal/service"
)

// Deps is everything the HTTP layer needs. Limiter may be nil, which disables rate limiting.
type Deps struct {
	DB     *sql.DB
	Tokens middleware.TokenValidator
	Log    *logging.Logger

	Limiter        middleware.Limiter
	AuthRateLimit  int
	AuthRateWindow time.Duration

	Auth    service.AuthService
	Admin   service.AdminService
	Catalog service.CatalogService
	Courses service.CourseService
	Chat    service.ChatService
	Billing service.BillingService

	// ChatServer and ChatContext back the websocket endpoint; it is not mounted without a server.
	ChatServer  *chat.Server
	ChatContext context.Context
}

// RegisterRoutes attaches the health probes and the /api tree to app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")
	authn := middleware.Authenticate(d.Tokens)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.RateLimit(d.Limiter, "register", d.AuthRateLimit, d.AuthRateWindow, d.Log), Register(d.Auth))
	authGroup.Post("/login", middleware.RateLimit(d.Limiter, "login", d.AuthRateLimit, d.AuthRateWindow, d.Log), Login(d.Auth))
	authGroup.Get("/me", authn, Me(d.Auth))

	api.Get("/courses", authn, ListCourses(d.Courses))
	api.Get("/courses/:slug", authn, GetCourse(d.Courses))
	api.Post("/courses/:slug/enroll", authn, EnrollCourse(d.Courses))
	api.Get("/courses/:slug/progress", authn, CourseProgress(d.Courses))
	api.Get("/covers/:id", CourseCover(d.Catalog))
	api.Get("/lessons/:id", authn, GetLesson(d.Courses))
	api.Post("/lessons/:id/complete", authn, CompleteLesson(d.Courses))

	if d.ChatServer != nil {
		ctx := d.ChatContext
		if ctx == nil {
			ctx = context.Background()
		}
		api.Get("/chat/ws", authn, ChatUpgrade(d.Auth), ChatSocket(ctx, d.ChatServer))
	}
	api.Get("/chat/rooms/:room/messages", authn, ChatHistory(d.Chat))

	dm := api.Group("/dm", authn)
	dm.Get("/", ListConversations(d.Chat))
	dm.Get("/unread", UnreadConversations(d.Chat))
	dm.Post("/:room/read", MarkConversationRead(d.Chat))
	dm.Post("/:userId", OpenConversation(d.Chat))

	billing := api.Group("/billing")
	billing.Get("/plans", ListPlans(d.Billing))
	billing.Post("/checkout", authn, Checkout(d.Billing))
	billing.Post("/confirm", authn, ConfirmSubscription(d.Billing))
	billing.Post("/webhook", PayPalWebhook(d.Billing))

	admin := api.Group("/admin", authn, middleware.RequireAdmin())
	admin.Get("/users", AdminListUsers(d.Admin))
	admin.Post("/users/:id/approve", AdminApproveUser(d.Admin))
	admin.Post("/users/:id/reject", AdminRejectUser(d.Admin))
	admin.Put("/users/:id/subscription", AdminSetSubscription(d.Admin))
	admin.Get("/users/:id/grants", AdminListGrants(d.Admin))

	admin.Get("/invites", AdminListInvites(d.Admin))
	admin.Post("/invites", AdminCreateInvite(d.Admin))
	admin.Delete("/invites/:code", AdminRevokeInvite(d.Admin))

	admin.Get("/courses", AdminListCourses(d.Catalog))
	admin.Post("/courses", AdminCreateCourse(d.Catalog))
	admin.Put("/courses/:id", AdminUpdateCourse(d.Catalog))
	admin.Delete("/courses/:id", AdminDeleteCourse(d.Catalog))
	admin.Post("/courses/:id/cover", AdminUploadCover(d.Catalog))
	admin.Get("/courses/:id/lessons", AdminListLessons(d.Catalog))

	admin.Post("/lessons", AdminCreateLesson(d.Catalog))
	admin.Put("/lessons/:id", AdminUpdateLesson(d.Catalog))
	admin.Delete("/lessons/:id", AdminDeleteLesson(d.Catalog))

	admin.Post("/enrollments", AdminEnrollUser(d.Admin))
	admin.Post("/grants", AdminGrantAccess(d.Admin))
	admin.Delete("/grants/:id", AdminRevokeGrant(d.Admin))
}
