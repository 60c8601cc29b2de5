package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/ntiendat/fastfood-api/internal/application/dto"
	appstock "github.com/ntiendat/fastfood-api/internal/application/stock"
	"github.com/ntiendat/fastfood-api/internal/domain"
)

// StockHandler maneja las peticiones HTTP del módulo de stock (consola de
// administración y flujo de órdenes).
type StockHandler struct {
	query    *appstock.QueryUseCase
	mutation *appstock.MutationUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(query *appstock.QueryUseCase, mutation *appstock.MutationUseCase) *StockHandler {
	return &StockHandler{query: query, mutation: mutation}
}

// mapDomainError traduce errores de dominio a respuestas HTTP.
func mapDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "registro de stock no encontrado"})
	case errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: "la cantidad debe ser un entero no negativo"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "ya existe un registro de stock para el producto"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// List godoc
// @Summary      Listar stock con catálogo
// @Tags         stock
// @Produce      json
// @Param        page      query  int     false  "Página"          default(1)
// @Param        pageSize  query  int     false  "Tamaño de página" default(20)
// @Param        search    query  string  false  "Busca por nombre o categoría (insensible a mayúsculas y tildes)"
// @Param        status    query  string  false  "in_stock | low_stock | out_of_stock"
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	var req dto.StockListRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.query.List(c.Context(), req)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Agregados de stock para el dashboard
// @Tags         stock
// @Produce      json
// @Success      200  {object}  dto.StockStatsResponse
// @Router       /api/stock/stats [get]
func (h *StockHandler) Stats(c *fiber.Ctx) error {
	out, err := h.query.Stats(c.Context())
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// GetByProduct godoc
// @Summary      Stock de un producto con campos de catálogo
// @Tags         stock
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId} [get]
func (h *StockHandler) GetByProduct(c *fiber.Ctx) error {
	out, err := h.query.GetByProduct(c.Context(), c.Params("productId"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// UpdateQuantity godoc
// @Summary      Fijar cantidad de un producto (upsert)
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        productId  path  string                     true  "ID del producto"
// @Param        body       body  dto.UpdateQuantityRequest  true  "quantity (entero >= 0), maxStockLevel y actor opcionales"
// @Success      200  {object}  dto.StockItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId} [put]
func (h *StockHandler) UpdateQuantity(c *fiber.Ctx) error {
	var in dto.UpdateQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		// También cubre cantidades no enteras en el JSON (p. ej. 3.5).
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.mutation.UpdateQuantity(c.Context(), c.Params("productId"), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// Initialize godoc
// @Summary      Inicializar/resetear stock de todo el catálogo
// @Description  Operación masiva deliberada de reposición: crea registros
// @Description  faltantes y resetea los existentes a defaultQuantity. Los
// @Description  errores por producto se aíslan; la llamada siempre responde 200
// @Description  con el detalle por producto.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InitializeStockRequest  false  "defaultQuantity (50), defaultMaxStock (1000), actor (system)"
// @Success      200  {object}  dto.InitializeStockResponse
// @Router       /api/stock/initialize [post]
func (h *StockHandler) Initialize(c *fiber.Ctx) error {
	var in dto.InitializeStockRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	out, err := h.mutation.InitializeForCatalog(c.Context(), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// CheckAvailability godoc
// @Summary      Verificar disponibilidad (solo lectura, sin reserva)
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckAvailabilityRequest  true  "productId y quantity solicitada"
// @Success      200  {object}  dto.CheckAvailabilityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/check-availability [post]
func (h *StockHandler) CheckAvailability(c *fiber.Ctx) error {
	var in dto.CheckAvailabilityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.mutation.CheckAvailability(c.Context(), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// Reduce godoc
// @Summary      Descontar stock por orden (líneas independientes)
// @Description  Cada línea se aplica por separado y NO se revierte si otra
// @Description  falla. Siempre responde 200; el caller debe revisar success y
// @Description  el detalle por línea.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReduceStockRequest  true  "orderId e items"
// @Success      200  {object}  dto.ReduceStockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/reduce [post]
func (h *StockHandler) Reduce(c *fiber.Ctx) error {
	var in dto.ReduceStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.mutation.ReduceStock(c.Context(), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// ReduceAtomic godoc
// @Summary      Descontar stock por orden (todo o nada)
// @Description  Variante transaccional: el primer fallo revierte todos los
// @Description  descuentos de la orden.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReduceStockRequest  true  "orderId e items"
// @Success      200  {object}  dto.ReduceStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/reduce-atomic [post]
func (h *StockHandler) ReduceAtomic(c *fiber.Ctx) error {
	var in dto.ReduceStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.mutation.ReduceStockAtomic(c.Context(), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Historial de movimientos de un producto
// @Tags         stock
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        page       query  int     false  "Página"           default(1)
// @Param        pageSize   query  int     false  "Tamaño de página"  default(20)
// @Success      200  {array}  dto.StockMovementResponse
// @Router       /api/stock/{productId}/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.query.ListMovements(c.Context(), c.Params("productId"), page)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}
