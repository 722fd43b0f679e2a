package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/pharma-pos/internal/application/restock"
	"github.com/tu-usuario/pharma-pos/internal/application/sales"
	"github.com/tu-usuario/pharma-pos/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	MedicineUC *usecase.MedicineUseCase
	CustomerUC *usecase.CustomerUseCase
	SupplierUC *usecase.SupplierUseCase
	SalesUC    *sales.UseCase
	RestockUC  *restock.UseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo de medicamentos (protegido)
	medicines := protected.Group("/medicines")
	medicineHandler := NewMedicineHandler(deps.MedicineUC)
	medicines.Post("/", medicineHandler.Create)
	medicines.Get("/", medicineHandler.List)
	medicines.Get("/low-stock", medicineHandler.LowStock)
	medicines.Get("/:id", medicineHandler.GetByID)
	medicines.Put("/:id", medicineHandler.Update)

	// Clientes (protegido)
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/by-phone/:phone", customerHandler.GetByPhone)
	customers.Get("/:id", customerHandler.GetByID)

	// Proveedores (protegido)
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)

	// Ventas (protegido)
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SalesUC)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.History)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Post("/:id/cancel", RequireRole("admin"), saleHandler.Cancel)

	// Reabastecimiento (protegido)
	restockGroup := protected.Group("/restock")
	restockHandler := NewRestockHandler(deps.RestockUC)
	restockGroup.Post("/", restockHandler.Create)
	restockGroup.Get("/", restockHandler.List)
	restockGroup.Get("/low-stock", restockHandler.LowStock)
	restockGroup.Get("/:id", restockHandler.GetByID)
	restockGroup.Post("/:id/confirm", restockHandler.Confirm)
	restockGroup.Post("/:id/receive", restockHandler.Receive)
	restockGroup.Post("/:id/cancel", restockHandler.Cancel)
}
