package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carelink/care-service/internal/api/http/handlers"
	"github.com/carelink/care-service/internal/auth"
	"github.com/carelink/care-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Requests       *handlers.RequestsHandler
	Reviews        *handlers.ReviewsHandler
	Reports        *handlers.ReportsHandler
	Care           *handlers.CareHandler
	Notifications  *handlers.NotificationsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Accounts.Register)
	authGroup.Post("/login", cfg.Accounts.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Accounts.Me)

	requests := app.Group("/requests", cfg.AuthMiddleware.Handle)
	requests.Get("", auth.RequireRole(domain.RoleVolunteer), cfg.Requests.ListOpen)
	requests.Post("", auth.RequireRole(domain.RoleElderly), cfg.Requests.Create)
	requests.Get("/mine", cfg.Requests.Mine)
	requests.Post("/:requestId/accept", auth.RequireRole(domain.RoleVolunteer), cfg.Requests.Accept)
	requests.Post("/:requestId/complete", auth.RequireRole(domain.RoleVolunteer), cfg.Requests.Complete)
	requests.Post("/:requestId/cancel", auth.RequireRole(domain.RoleElderly), cfg.Requests.Cancel)

	reviews := app.Group("/reviews", cfg.AuthMiddleware.Handle)
	reviews.Post("", auth.RequireRole(domain.RoleElderly), cfg.Reviews.Create)
	reviews.Patch("/:reviewId", auth.RequireRole(domain.RoleElderly), cfg.Reviews.Edit)
	reviews.Get("/user/:userId", cfg.Reviews.ListByUser)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle)
	reports.Post("", auth.RequireRole(domain.RoleElderly, domain.RoleVolunteer, domain.RoleCaregiver), cfg.Reports.Create)
	reports.Get("/mine", cfg.Reports.Mine)

	care := app.Group("/care", cfg.AuthMiddleware.Handle)
	care.Post("/pin", auth.RequireRole(domain.RoleElderly), cfg.Care.IssuePin)
	care.Post("/link", auth.RequireRole(domain.RoleCaregiver), cfg.Care.RedeemPin)
	care.Get("/elderly", auth.RequireRole(domain.RoleCaregiver), cfg.Care.ListElderly)
	care.Delete("/link/:elderlyId", auth.RequireRole(domain.RoleCaregiver), cfg.Care.Unlink)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle)
	notifications.Get("", cfg.Notifications.List)
	notifications.Post("/:notificationId/read", cfg.Notifications.MarkRead)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Post("/users/:userId/suspend", cfg.Admin.Suspend)
	admin.Post("/users/:userId/unsuspend", cfg.Admin.Unsuspend)
	admin.Post("/users/:userId/deactivate", cfg.Admin.Deactivate)
	admin.Post("/users/:userId/reactivate", cfg.Admin.Reactivate)
	admin.Delete("/users/:userId", cfg.Admin.DeleteUser)
	admin.Post("/maintenance/expire-suspensions", cfg.Admin.ExpireSuspensions)
	admin.Get("/reports", cfg.Admin.ListReports)
	admin.Get("/reports/:reportId/history", cfg.Admin.ReportHistory)
	admin.Post("/reports/:reportId/start-review", cfg.Admin.StartReview)
	admin.Post("/reports/:reportId/resolve", cfg.Admin.ResolveReport)
	admin.Post("/reports/:reportId/reject", cfg.Admin.RejectReport)
	admin.Delete("/reviews/:reviewId", cfg.Admin.DeleteReview)
	admin.Get("/audit-log", cfg.Admin.AuditLog)
	admin.Post("/broadcast", cfg.Admin.Broadcast)
}
