package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/ntiendat/fastfood-api/internal/domain"
	"github.com/ntiendat/fastfood-api/internal/domain/entity"
	"github.com/ntiendat/fastfood-api/internal/domain/repository"
	"github.com/ntiendat/fastfood-api/internal/domain/stock"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
// Todas las escrituras recalculan status en la MISMA sentencia que toca quantity.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// statusCase expresión SQL que deriva el estado desde la cantidad indicada.
// El umbral de stock bajo entra como parámetro para que la constante de Go
// (stock.LowStockThreshold) sea la única fuente de la política.
func statusCase(qtyExpr, thresholdParam string) string {
	return fmt.Sprintf(
		`CASE WHEN %s <= 0 THEN 'out_of_stock' WHEN %s <= %s THEN 'low_stock' ELSE 'in_stock' END`,
		qtyExpr, qtyExpr, thresholdParam,
	)
}

// Create inserta un registro nuevo con estado derivado.
func (r *StockRepo) Create(ctx context.Context, rec *entity.StockRecord) error {
	query := `
		INSERT INTO stock_records (product_id, quantity, max_stock_level, status, last_updated, updated_by)
		VALUES ($1, $2, $3, ` + statusCase("$2", "$4") + `, now(), $5)
		RETURNING last_updated`
	err := r.q.QueryRow(ctx, query,
		rec.ProductID, rec.Quantity, rec.MaxStockLevel, stock.LowStockThreshold, rec.UpdatedBy,
	).Scan(&rec.LastUpdated)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert stock record: %w", err)
	}
	rec.Status = stock.DeriveStatus(rec.Quantity)
	return nil
}

// Get obtiene el registro crudo de un producto. nil, nil si no existe.
func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.StockRecord, error) {
	query := `
		SELECT product_id, quantity, max_stock_level, status, last_updated, updated_by
		FROM stock_records WHERE product_id = $1`
	var rec entity.StockRecord
	var status string
	err := r.q.QueryRow(ctx, query, productID).Scan(
		&rec.ProductID, &rec.Quantity, &rec.MaxStockLevel, &status, &rec.LastUpdated, &rec.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	rec.Status = stock.Status(status)
	return &rec, nil
}

// SetQuantity upsert: crea el registro si no existe, si no sobreescribe la
// cantidad (y max_stock_level si viene) recalculando el estado.
func (r *StockRepo) SetQuantity(ctx context.Context, productID string, quantity int, maxStockLevel *int, actor string) (*entity.StockRecord, error) {
	query := `
		INSERT INTO stock_records (product_id, quantity, max_stock_level, status, last_updated, updated_by)
		VALUES ($1, $2, COALESCE($3, $4), ` + statusCase("$2", "$5") + `, now(), $6)
		ON CONFLICT (product_id) DO UPDATE SET
			quantity        = EXCLUDED.quantity,
			max_stock_level = COALESCE($3, stock_records.max_stock_level),
			status          = EXCLUDED.status,
			last_updated    = now(),
			updated_by      = EXCLUDED.updated_by
		RETURNING product_id, quantity, max_stock_level, status, last_updated, updated_by`
	var rec entity.StockRecord
	var status string
	err := r.q.QueryRow(ctx, query,
		productID, quantity, maxStockLevel, entity.DefaultMaxStockLevel, stock.LowStockThreshold, actor,
	).Scan(&rec.ProductID, &rec.Quantity, &rec.MaxStockLevel, &status, &rec.LastUpdated, &rec.UpdatedBy)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("upsert stock record: %w", err)
	}
	rec.Status = stock.Status(status)
	return &rec, nil
}

// Decrement descuenta con una actualización condicionada atómica: la guarda
// quantity >= amount y la resta ocurren en una sola sentencia, de modo que dos
// descuentos concurrentes sobre el mismo producto nunca pasan ambos con stock
// para uno solo (correcto incluso con varias instancias del servicio).
func (r *StockRepo) Decrement(ctx context.Context, productID string, amount int, actor string) (*repository.DecrementResult, error) {
	query := `
		UPDATE stock_records
		SET quantity     = quantity - $2,
		    status       = ` + statusCase("quantity - $2", "$3") + `,
		    last_updated = now(),
		    updated_by   = $4
		WHERE product_id = $1 AND quantity >= $2
		RETURNING quantity + $2, quantity`
	var res repository.DecrementResult
	err := r.q.QueryRow(ctx, query, productID, amount, stock.LowStockThreshold, actor).
		Scan(&res.OldQuantity, &res.NewQuantity)
	if err == nil {
		return &res, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}
	// La guarda no pasó: distinguir registro inexistente de stock insuficiente.
	var have int
	err = r.q.QueryRow(ctx, `SELECT quantity FROM stock_records WHERE product_id = $1`, productID).Scan(&have)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("decrement stock: %w", err)
	}
	return nil, fmt.Errorf("%w: hay %d, se pidieron %d", domain.ErrInsufficientStock, have, amount)
}

// List devuelve una página de registros unidos al catálogo y el total que
// cumple el filtro. El filtro de estado se evalúa sobre el estado RECALCULADO
// desde la cantidad, no sobre la columna persistida.
func (r *StockRepo) List(ctx context.Context, f repository.StockListFilter) ([]repository.StockItem, int, error) {
	base := `FROM stock_records s JOIN products p ON p.id = s.product_id`
	var conds []string
	var args []any

	if f.Search != "" {
		// Ambos lados sin tildes: unaccent() sobre las columnas y el patrón ya
		// plegado en Go, así "jalapeno" encuentra "Jalapeño" y viceversa.
		needle := f.SearchFolded
		if needle == "" {
			needle = f.Search
		}
		args = append(args, "%"+needle+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(unaccent(p.name) ILIKE $%d OR unaccent(p.category) ILIKE $%d)", n, n))
	}
	if f.Status != "" {
		args = append(args, stock.LowStockThreshold)
		thresholdParam := fmt.Sprintf("$%d", len(args))
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("%s = $%d", statusCase("s.quantity", thresholdParam), len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, "SELECT COUNT(*) "+base+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock records: %w", err)
	}

	query := `
		SELECT s.product_id, p.name, p.category, p.price, p.image_url,
		       s.quantity, s.max_stock_level, s.status, s.last_updated, s.updated_by
		` + base + where + fmt.Sprintf(" ORDER BY s.last_updated DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock records: %w", err)
	}
	defer rows.Close()

	var items []repository.StockItem
	for rows.Next() {
		var it repository.StockItem
		var status string
		if err := rows.Scan(
			&it.ProductID, &it.Name, &it.Category, &it.Price, &it.ImageURL,
			&it.Quantity, &it.MaxStockLevel, &status, &it.LastUpdated, &it.UpdatedBy,
		); err != nil {
			return nil, 0, fmt.Errorf("scan stock item: %w", err)
		}
		it.Status = stock.Status(status)
		items = append(items, it)
	}
	return items, total, rows.Err()
}

// GetJoined obtiene el registro unido a los campos de catálogo. nil, nil si no existe.
func (r *StockRepo) GetJoined(ctx context.Context, productID string) (*repository.StockItem, error) {
	query := `
		SELECT s.product_id, p.name, p.category, p.price, p.image_url,
		       s.quantity, s.max_stock_level, s.status, s.last_updated, s.updated_by
		FROM stock_records s JOIN products p ON p.id = s.product_id
		WHERE s.product_id = $1`
	var it repository.StockItem
	var status string
	err := r.q.QueryRow(ctx, query, productID).Scan(
		&it.ProductID, &it.Name, &it.Category, &it.Price, &it.ImageURL,
		&it.Quantity, &it.MaxStockLevel, &status, &it.LastUpdated, &it.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get joined stock record: %w", err)
	}
	it.Status = stock.Status(status)
	return &it, nil
}

// Stats agregados de todo el ledger; los conteos por estado se derivan de la
// cantidad (no de la columna status, que podría estar obsoleta).
func (r *StockRepo) Stats(ctx context.Context) (*repository.StockStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE s.quantity > $1),
		       COUNT(*) FILTER (WHERE s.quantity > 0 AND s.quantity <= $1),
		       COUNT(*) FILTER (WHERE s.quantity <= 0),
		       COALESCE(SUM(s.quantity * p.price), 0)
		FROM stock_records s JOIN products p ON p.id = s.product_id`
	var st repository.StockStats
	err := r.q.QueryRow(ctx, query, stock.LowStockThreshold).Scan(
		&st.TotalItems, &st.InStock, &st.LowStock, &st.OutOfStock, &st.TotalValue,
	)
	if err != nil {
		return nil, fmt.Errorf("stock stats: %w", err)
	}
	return &st, nil
}

// ReconcileStatuses corrige el estado persistido de los productos indicados
// cuando difiere del derivado de su cantidad actual. Idempotente: una segunda
// pasada sin escrituras intermedias no toca ninguna fila.
func (r *StockRepo) ReconcileStatuses(ctx context.Context, productIDs []string) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	derived := statusCase("quantity", "$2")
	query := `
		UPDATE stock_records
		SET status = ` + derived + `, last_updated = now()
		WHERE product_id = ANY($1) AND status IS DISTINCT FROM ` + derived
	tag, err := r.q.Exec(ctx, query, productIDs, stock.LowStockThreshold)
	if err != nil {
		return 0, fmt.Errorf("reconcile stock statuses: %w", err)
	}
	return tag.RowsAffected(), nil
}
