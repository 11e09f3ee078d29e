// Package handlers provides HTTP handlers for API endpoints
package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"med-field-force/internal/middleware"
	"med-field-force/internal/models"
	"med-field-force/internal/repository"
	"med-field-force/internal/services"
)

// Handler serves the field-force API
type Handler struct {
	auth       *services.AuthService
	attendance *services.AttendanceService
	billing    *services.BillingService
	staff      *services.StaffService
	leaves     *services.LeaveService
	dashboard  *services.DashboardService
	insights   *services.InsightService
	sales      repository.SalesStore

	captureTimeout time.Duration
	validate       *validator.Validate
}

// Deps bundles what the handler needs
type Deps struct {
	Auth           *services.AuthService
	Attendance     *services.AttendanceService
	Billing        *services.BillingService
	Staff          *services.StaffService
	Leaves         *services.LeaveService
	Dashboard      *services.DashboardService
	Insights       *services.InsightService
	Sales          repository.SalesStore
	CaptureTimeout time.Duration
}

// New creates a handler
func New(d Deps) *Handler {
	return &Handler{
		auth:           d.Auth,
		attendance:     d.Attendance,
		billing:        d.Billing,
		staff:          d.Staff,
		leaves:         d.Leaves,
		dashboard:      d.Dashboard,
		insights:       d.Insights,
		sales:          d.Sales,
		captureTimeout: d.CaptureTimeout,
		validate:       validator.New(),
	}
}

// Register mounts every route on app. Everything under /api except auth and
// the catalog needs a bearer token signed with secret.
func (h *Handler) Register(app *fiber.App, secret []byte) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Post("/auth/register", h.register)
	api.Post("/auth/login", h.login)
	api.Get("/catalog", h.catalog)

	api.Use(middleware.JWT(secret))
	manager := middleware.RequireRole(models.RoleManager)

	api.Get("/attendance/status", h.attendanceStatus)
	api.Get("/attendance", h.attendanceHistory)
	api.Post("/attendance/:type", h.recordAttendance)

	api.Get("/bills/draft", h.draft)
	api.Post("/bills/draft/items", h.addLineItem)
	api.Patch("/bills/draft/items/:itemId", h.setItemQuantity)
	api.Delete("/bills/draft/items/:itemId", h.removeLineItem)
	api.Post("/bills/draft/commit", h.commitBill)
	api.Get("/bills", h.billHistory)
	api.Get("/bills/:id", h.bill)
	api.Post("/bills/:id/corrections", h.correctBill)
	api.Get("/bills/:id/invoice.pdf", h.invoice)

	api.Get("/sales", h.salesList)
	api.Get("/sales/export.xlsx", h.salesExport)

	api.Get("/leaves", h.leaveList)
	api.Post("/leaves", h.applyLeave)
	api.Post("/leaves/:id/decision", manager, h.decideLeave)

	api.Get("/staff", manager, h.staffList)
	api.Put("/staff/:id", manager, h.updateStaff)
	api.Post("/staff/:id/tasks", manager, h.assignTask)
	api.Post("/tasks/:taskId/complete", h.completeTask)

	api.Get("/dashboard", h.dashboardView)
	api.Get("/insights", h.insightsView)
}

// parseBody decodes the JSON body into dst and validates its tags
func (h *Handler) parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return badRequest("Invalid request body")
	}
	return h.validate.Struct(dst)
}

func caller(c *fiber.Ctx) (middleware.Caller, error) {
	who, ok := middleware.CallerFrom(c)
	if !ok {
		return who, fiber.NewError(fiber.StatusUnauthorized, "Request unauthorized")
	}
	return who, nil
}

func (h *Handler) catalog(c *fiber.Ctx) error {
	return c.JSON(models.Catalog)
}
