package handler

import (
	"walldecor-admin/internal/middleware"
	"walldecor-admin/internal/model"
	"walldecor-admin/internal/service"

	"github.com/gofiber/fiber/v2"
)

type Services struct {
	Auth      service.AuthService
	Inventory service.InventoryService
	Trading   service.TradingService
	Staff     service.StaffService
	Finance   service.FinanceService
}

// RegisterRoutes mounts the REST API on router, usually the /api/v1 group
func RegisterRoutes(router fiber.Router, s Services) {
	authHandler := NewAuthHandler(s.Auth)
	invHandler := NewInventoryHandler(s.Inventory)
	tradeHandler := NewTradingHandler(s.Trading)
	staffHandler := NewStaffHandler(s.Staff)
	finHandler := NewFinanceHandler(s.Finance)

	// ============ PUBLIC ROUTES ============
	auth := router.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)

	// ============ AUTHENTICATED ROUTES ============
	// PENDING accounts stop here
	authed := router.Group("", middleware.RequireAuth(s.Auth))
	authed.Get("/auth/me", authHandler.Me)
	authed.Post("/auth/change-password", authHandler.ChangePassword)

	// ============ STAFF ROUTES ============
	staff := authed.Group("", middleware.RequireStaff())

	// Snapshot & analytics
	staff.Get("/app-data", finHandler.GetAppData)
	staff.Get("/meta", finHandler.GetMeta)
	staff.Get("/finance/summary", finHandler.GetSummary)
	staff.Get("/analytics/monthly", finHandler.GetMonthly)
	staff.Get("/dashboard", finHandler.GetDashboard)
	staff.Get("/settings", finHandler.GetSettings)
	staff.Patch("/settings", finHandler.UpdateSettings)

	// Employees
	staff.Get("/employees", staffHandler.GetEmployees)
	staff.Get("/employees/:id", staffHandler.GetEmployee)
	staff.Post("/employees", staffHandler.CreateEmployee)
	staff.Patch("/employees/:id", staffHandler.UpdateEmployee)
	staff.Put("/employees/:id/role", middleware.RequireRole(model.RoleCEO), staffHandler.SetRole)

	// Products & stock
	staff.Get("/products", invHandler.GetProducts)
	staff.Post("/products", invHandler.CreateProduct)
	staff.Patch("/products/:id", invHandler.UpdateProduct)
	staff.Delete("/products/:id", invHandler.DeleteProduct)
	staff.Get("/stock", invHandler.GetStock)
	staff.Get("/stock-movements", invHandler.GetMovements)
	staff.Post("/stock-movements", invHandler.CreateMovement)
	staff.Delete("/stock-movements/:id", invHandler.DeleteMovement)

	// Transactions & productions
	staff.Get("/transactions", tradeHandler.GetTransactions)
	staff.Post("/transactions", tradeHandler.CreateTransaction)
	staff.Delete("/transactions/:id", tradeHandler.DeleteTransaction)
	staff.Get("/productions", tradeHandler.GetProductions)
	staff.Post("/productions", tradeHandler.CreateProduction)
	staff.Delete("/productions/:id", tradeHandler.DeleteProduction)

	// Meetings
	staff.Get("/meetings", staffHandler.GetMeetings)
	staff.Post("/meetings", staffHandler.CreateMeeting)
	staff.Patch("/meetings/:id", staffHandler.UpdateMeeting)
	staff.Delete("/meetings/:id", staffHandler.DeleteMeeting)
}
