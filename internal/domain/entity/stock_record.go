package entity

import (
	"time"

	"github.com/ntiendat/fastfood-api/internal/domain/stock"
)

// StockRecord registro canónico de existencias de un producto (1:1 con catálogo).
// Quantity es la única fuente de verdad; Status se recalcula en cada escritura.
type StockRecord struct {
	ProductID     string
	Quantity      int
	MaxStockLevel int // capacidad sugerida de reposición, no es tope duro
	Status        stock.Status
	LastUpdated   time.Time
	UpdatedBy     string // admin, "system", u "order_<id>" en ventas
}

// DefaultMaxStockLevel capacidad por defecto al crear un registro.
const DefaultMaxStockLevel = 1000
