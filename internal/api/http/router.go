package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/infocustec/ubs-helpdesk/internal/api/http/handlers"
	"github.com/infocustec/ubs-helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Reports        *handlers.ReportsHandler
	Inventory      *handlers.InventoryHandler
	Stock          *handlers.StockHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	LoginLimiter   *auth.LoginLimiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Post("/auth/login", cfg.LoginLimiter.Handle, cfg.Admin.Login)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.Open)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/defect-types", cfg.Tickets.DefectTypes)
	tickets.Get("/protocol/:protocol", cfg.Tickets.GetByProtocol)
	tickets.Post("/:id/close", cfg.Tickets.Close)
	tickets.Post("/:id/reopen", cfg.Tickets.Reopen)

	reports := api.Group("/reports")
	reports.Get("/summary", cfg.Reports.Summary)
	reports.Get("/monthly", cfg.Reports.MonthlyTrend)

	inventory := api.Group("/inventory")
	inventory.Get("", cfg.Inventory.List)
	inventory.Get("/:tag", cfg.Inventory.Get)
	inventory.Get("/:tag/maintenance", cfg.Inventory.MaintenanceHistory)
	inventory.Get("/:tag/parts", cfg.Inventory.PartsUsed)
	inventory.Get("/:tag/tickets", cfg.Tickets.ListByAsset)
	inventory.Post("", auth.RequireAdmin(), cfg.Inventory.Register)
	inventory.Put("/:tag", auth.RequireAdmin(), cfg.Inventory.Update)
	inventory.Delete("/:tag", auth.RequireAdmin(), cfg.Inventory.Remove)

	stock := api.Group("/stock")
	stock.Get("", cfg.Stock.List)
	stock.Post("", auth.RequireAdmin(), cfg.Stock.Add)
	stock.Put("/:id", auth.RequireAdmin(), cfg.Stock.Update)
	stock.Delete("/:id", auth.RequireAdmin(), cfg.Stock.Remove)

	directory := api.Group("/directory")
	directory.Get("/ubs", cfg.Admin.ListUBS)
	directory.Get("/sectors", cfg.Admin.ListSectors)
	directory.Post("/ubs", auth.RequireAdmin(), cfg.Admin.AddUBS)
	directory.Put("/ubs/:name", auth.RequireAdmin(), cfg.Admin.RenameUBS)
	directory.Delete("/ubs/:name", auth.RequireAdmin(), cfg.Admin.RemoveUBS)
	directory.Post("/sectors", auth.RequireAdmin(), cfg.Admin.AddSector)
	directory.Put("/sectors/:name", auth.RequireAdmin(), cfg.Admin.RenameSector)
	directory.Delete("/sectors/:name", auth.RequireAdmin(), cfg.Admin.RemoveSector)

	admin := api.Group("/admin", auth.RequireAdmin())
	admin.Post("/users", cfg.Admin.CreateUser)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Put("/users/:username/role", cfg.Admin.UpdateRole)
	admin.Put("/users/:username/password", cfg.Admin.SetPassword)
	admin.Delete("/users/:username", cfg.Admin.RemoveUser)
}
