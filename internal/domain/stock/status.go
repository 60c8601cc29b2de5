// Package stock contiene la regla de clasificación de stock del catálogo.
// El estado NUNCA se fija desde afuera: siempre se deriva de la cantidad.
package stock

// Status clasificación derivada del nivel de stock de un producto.
type Status string

const (
	StatusInStock    Status = "in_stock"
	StatusLowStock   Status = "low_stock"
	StatusOutOfStock Status = "out_of_stock"
)

// LowStockThreshold unidades a partir de las cuales (inclusive) un producto
// con existencias se considera en stock bajo. Constante global de política;
// no es configurable por producto.
const LowStockThreshold = 20

// DeriveStatus deriva el estado desde la cantidad actual. Función pura y total
// sobre q >= 0 (cantidades negativas no existen en el ledger; se clasifican
// como out_of_stock por seguridad).
func DeriveStatus(q int) Status {
	switch {
	case q <= 0:
		return StatusOutOfStock
	case q <= LowStockThreshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// ParseStatus valida un filtro de estado recibido por query string.
// Devuelve ("", false) si el valor no es uno de los tres estados.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusInStock, StatusLowStock, StatusOutOfStock:
		return Status(s), true
	}
	return "", false
}
