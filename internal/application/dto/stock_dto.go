package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockListRequest query params de GET /api/stock.
type StockListRequest struct {
	PageRequest
	Search string `query:"search"`
	Status string `query:"status"` // in_stock | low_stock | out_of_stock; otro valor se ignora
}

// StockItemResponse registro de stock unido con los campos de catálogo.
type StockItemResponse struct {
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	Quantity      int             `json:"quantity"`
	MaxStockLevel int             `json:"maxStockLevel"`
	Status        string          `json:"status"`
	LastUpdated   time.Time       `json:"lastUpdated"`
	UpdatedBy     string          `json:"updatedBy,omitempty"`
}

// StockListResponse página de registros + metadatos.
type StockListResponse struct {
	Items []StockItemResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// StockStatsResponse agregados del ledger para el dashboard.
type StockStatsResponse struct {
	TotalItems int             `json:"totalItems"`
	InStock    int             `json:"inStock"`
	LowStock   int             `json:"lowStock"`
	OutOfStock int             `json:"outOfStock"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// UpdateQuantityRequest body de PUT /api/stock/{productId}.
// Quantity es puntero para distinguir "ausente" de cero.
type UpdateQuantityRequest struct {
	Quantity      *int   `json:"quantity"`
	MaxStockLevel *int   `json:"maxStockLevel,omitempty"`
	Actor         string `json:"actor,omitempty"`
}

// InitializeStockRequest body de POST /api/stock/initialize. Todos opcionales.
type InitializeStockRequest struct {
	DefaultQuantity *int   `json:"defaultQuantity,omitempty"` // por defecto 50
	DefaultMaxStock *int   `json:"defaultMaxStock,omitempty"` // por defecto 1000
	Actor           string `json:"actor,omitempty"`           // por defecto "system"
}

// InitializeItemResult resultado por producto de la inicialización masiva.
type InitializeItemResult struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Outcome   string `json:"outcome"` // created | updated | error
	Message   string `json:"message,omitempty"`
}

// InitializeStockResponse resumen + detalle por producto.
type InitializeStockResponse struct {
	OperationID  string                 `json:"operationId"`
	CreatedCount int                    `json:"createdCount"`
	UpdatedCount int                    `json:"updatedCount"`
	ErrorCount   int                    `json:"errorCount"`
	Results      []InitializeItemResult `json:"results"`
}

// CheckAvailabilityRequest body de POST /api/stock/check-availability.
type CheckAvailabilityRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CheckAvailabilityResponse disponibilidad ADVISORY: la cantidad reportada
// puede cambiar antes de un reduce posterior (no reserva stock).
type CheckAvailabilityResponse struct {
	ProductID    string `json:"productId"`
	Available    bool   `json:"available"`
	CurrentStock int    `json:"currentStock"`
}

// ReduceItemRequest una línea de orden a descontar.
type ReduceItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// ReduceStockRequest body de POST /api/stock/reduce y /api/stock/reduce-atomic.
type ReduceStockRequest struct {
	OrderID string              `json:"orderId"`
	Items   []ReduceItemRequest `json:"items"`
}

// ReduceItemResult resultado por línea. En la variante no atómica cada línea
// exitosa queda aplicada aunque otra falle.
type ReduceItemResult struct {
	ProductID   string `json:"productId"`
	Success     bool   `json:"success"`
	OldQuantity int    `json:"oldQuantity"`
	NewQuantity int    `json:"newQuantity"`
	ReducedBy   int    `json:"reducedBy"`
	Message     string `json:"message,omitempty"`
}

// ReduceStockResponse success global = AND de todas las líneas.
type ReduceStockResponse struct {
	Success bool               `json:"success"`
	OrderID string             `json:"orderId"`
	Results []ReduceItemResult `json:"results"`
}

// StockMovementResponse asiento del historial de movimientos.
type StockMovementResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"productId"`
	Delta         int       `json:"delta"`
	QuantityAfter int       `json:"quantityAfter"`
	Actor         string    `json:"actor"`
	Reference     string    `json:"reference,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
