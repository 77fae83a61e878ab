package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Inventario-pos/internal/application/checkout"
	"github.com/jhoicas/Inventario-pos/internal/application/credit"
	"github.com/jhoicas/Inventario-pos/internal/application/ledger"
	"github.com/jhoicas/Inventario-pos/internal/application/reports"
	"github.com/jhoicas/Inventario-pos/internal/application/usecase"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

// AppConfig parámetros del servidor Fiber.
type AppConfig struct {
	Name         string
	CORSOrigins  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewApp crea la aplicación Fiber con recover, CORS y el manejador central de errores.
func NewApp(cfg AppConfig, log *logger.Logger) *fiber.App {
	if cfg.CORSOrigins == "" {
		cfg.CORSOrigins = "*"
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	return app
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC  *usecase.ProductUseCase
	CategoryUC *usecase.CategoryUseCase
	BatchUC    *usecase.BatchUseCase
	Ledger     *ledger.Engine
	Credit     *credit.Engine
	Checkout   *checkout.Service
	Reports    *reports.Service
	ReceiptPDF ReceiptRenderer
	Jobs       ReconcileQueue // opcional
	JWTSecret  string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las de escritura
// se restringen por rol.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	anyRole := RequireRole(RoleAdmin, RoleBodeguero, RoleCajero)
	stockRoles := RequireRole(RoleAdmin, RoleBodeguero)
	tillRoles := RequireRole(RoleAdmin, RoleCajero)
	adminOnly := RequireRole(RoleAdmin)

	// Catálogo
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories := api.Group("/categories")
	categories.Get("/", anyRole, categoryHandler.List)
	categories.Post("/", stockRoles, categoryHandler.Create)
	categories.Put("/:id", stockRoles, categoryHandler.Update)

	productHandler := NewProductHandler(deps.ProductUC, deps.BatchUC, deps.Reports)
	products := api.Group("/products")
	products.Get("/", anyRole, productHandler.List)
	products.Post("/", stockRoles, productHandler.Create)
	products.Get("/:id", anyRole, productHandler.GetByID)
	products.Put("/:id", stockRoles, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)
	products.Get("/:id/batches", anyRole, productHandler.Batches)
	api.Put("/batches/:id/pricing", adminOnly, productHandler.CorrectBatchPricing)

	// Libro de existencias
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Reports, deps.Jobs)
	inv := api.Group("/inventory")
	inv.Post("/receipts", stockRoles, inventoryHandler.Receive)
	inv.Post("/invoices", stockRoles, inventoryHandler.ReceiveInvoice)
	inv.Post("/sales", tillRoles, inventoryHandler.Sell)
	inv.Post("/adjustments", stockRoles, inventoryHandler.Adjust)
	inv.Post("/returns", tillRoles, inventoryHandler.Return)
	inv.Post("/movements/:id/void", adminOnly, inventoryHandler.Void)
	inv.Get("/movements", anyRole, inventoryHandler.Movements)
	inv.Post("/reconcile", adminOnly, inventoryHandler.Reconcile)

	// Cobro y crédito
	salesHandler := NewSalesHandler(deps.Checkout, deps.Credit)
	api.Post("/checkout", tillRoles, salesHandler.Checkout)
	creditGroup := api.Group("/credit/:receipt_id")
	creditGroup.Post("/payments", tillRoles, salesHandler.RecordPayment)
	creditGroup.Get("/payments", anyRole, salesHandler.Payments)
	creditGroup.Get("/verify", anyRole, salesHandler.Verify)

	// Reportes
	var payments paymentLog
	if deps.Credit != nil {
		payments = deps.Credit
	}
	reportHandler := NewReportHandler(deps.Reports, payments, deps.ReceiptPDF)
	rep := api.Group("/reports", anyRole)
	rep.Get("/low-stock", reportHandler.LowStock)
	rep.Get("/sales", reportHandler.Sales)
	rep.Get("/unpaid", reportHandler.Unpaid)
	rep.Get("/margin", reportHandler.Margin)
	rep.Get("/receipts/:receipt_id/items", reportHandler.ReceiptItems)
	rep.Get("/receipts/:receipt_id/pdf", reportHandler.ReceiptPDF)
	rep.Get("/products/:id/stock-card", reportHandler.StockCard)
}
