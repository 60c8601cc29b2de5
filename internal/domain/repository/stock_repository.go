package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ntiendat/fastfood-api/internal/domain/entity"
	"github.com/ntiendat/fastfood-api/internal/domain/stock"
)

// StockListFilter filtros para el listado paginado de stock.
// SearchFolded es la variante del texto sin tildes; el adaptador la compara
// contra las columnas también plegadas, para que la búsqueda sea insensible a
// acentos en ambas direcciones.
type StockListFilter struct {
	Search       string
	SearchFolded string
	Status       stock.Status // "" = sin filtro; se evalúa sobre el estado RECALCULADO
	Limit        int
	Offset       int
}

// StockItem registro de stock unido a los campos de catálogo para mostrar.
type StockItem struct {
	ProductID     string
	Name          string
	Category      string
	Price         decimal.Decimal
	ImageURL      string
	Quantity      int
	MaxStockLevel int
	Status        stock.Status // estado PERSISTIDO (puede estar obsoleto; ver ReconcileStatuses)
	LastUpdated   time.Time
	UpdatedBy     string
}

// StockStats agregados sobre todo el ledger, con estados derivados de la cantidad.
type StockStats struct {
	TotalItems int
	InStock    int
	LowStock   int
	OutOfStock int
	TotalValue decimal.Decimal // Σ cantidad × precio de catálogo
}

// DecrementResult cantidades antes y después de un descuento exitoso.
type DecrementResult struct {
	OldQuantity int
	NewQuantity int
}

// StockRepository puerto de persistencia del ledger de stock. Único escritor
// de quantity/status: toda mutación recalcula el estado en la misma escritura.
type StockRepository interface {
	// Create inserta un registro nuevo; domain.ErrDuplicate si ya existe.
	Create(ctx context.Context, rec *entity.StockRecord) error
	// Get devuelve nil, nil si no hay registro para el producto.
	Get(ctx context.Context, productID string) (*entity.StockRecord, error)
	// SetQuantity upsert: crea el registro si no existe, si no sobreescribe la
	// cantidad (y maxStockLevel si viene) recalculando el estado.
	SetQuantity(ctx context.Context, productID string, quantity int, maxStockLevel *int, actor string) (*entity.StockRecord, error)
	// Decrement descuenta de forma atómica condicionada (quantity >= amount en
	// una sola operación). domain.ErrNotFound si no hay registro;
	// domain.ErrInsufficientStock si no alcanza, sin escribir nada.
	Decrement(ctx context.Context, productID string, amount int, actor string) (*DecrementResult, error)
	// List devuelve la página y el total de registros que cumplen el filtro,
	// ordenados por last_updated descendente.
	List(ctx context.Context, f StockListFilter) ([]StockItem, int, error)
	// GetJoined devuelve nil, nil si no hay registro para el producto.
	GetJoined(ctx context.Context, productID string) (*StockItem, error)
	Stats(ctx context.Context) (*StockStats, error)
	// ReconcileStatuses corrige el estado persistido de los productos indicados
	// cuando difiere del derivado de su cantidad actual. Idempotente; devuelve
	// cuántas filas corrigió.
	ReconcileStatuses(ctx context.Context, productIDs []string) (int64, error)
}

// StockMovementRepository puerto del historial de movimientos (auditoría).
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
}
