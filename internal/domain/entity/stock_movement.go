package entity

import "time"

// StockMovement asiento de auditoría por cada escritura del ledger de stock.
// Delta positivo = reposición; negativo = descuento por venta.
type StockMovement struct {
	ID            string
	ProductID     string
	Delta         int
	QuantityAfter int
	Actor         string // mismo valor que StockRecord.UpdatedBy
	Reference     string // id de orden u operación masiva, si aplica
	CreatedAt     time.Time
}
