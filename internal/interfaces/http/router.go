package http

import (
	"github.com/gofiber/fiber/v2"
	appstock "github.com/ntiendat/fastfood-api/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockQuery    *appstock.QueryUseCase
	StockMutation *appstock.MutationUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	stock := api.Group("/stock")
	handler := NewStockHandler(deps.StockQuery, deps.StockMutation)

	// Las rutas fijas van antes que /:productId para que Fiber no las capture
	// como parámetro.
	stock.Get("/", handler.List)
	stock.Get("/stats", handler.Stats)
	stock.Post("/initialize", handler.Initialize)
	stock.Post("/check-availability", handler.CheckAvailability)
	stock.Post("/reduce", handler.Reduce)
	stock.Post("/reduce-atomic", handler.ReduceAtomic)
	stock.Get("/:productId", handler.GetByProduct)
	stock.Put("/:productId", handler.UpdateQuantity)
	stock.Get("/:productId/movements", handler.Movements)
}
