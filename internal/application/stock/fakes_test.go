package stock_test

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ntiendat/fastfood-api/internal/domain"
	"github.com/ntiendat/fastfood-api/internal/domain/entity"
	"github.com/ntiendat/fastfood-api/internal/domain/repository"
	domstock "github.com/ntiendat/fastfood-api/internal/domain/stock"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria de los puertos de persistencia. Replican el contrato de
// los repositorios Postgres (nil,nil para ausente, errores de dominio,
// descuento condicionado) sin base de datos.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	products  []*entity.Product
	records   map[string]*entity.StockRecord
	movements []*entity.StockMovement
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]*entity.StockRecord)}
}

func (s *memStore) addProduct(id, name, category string, price float64) {
	s.products = append(s.products, &entity.Product{
		ID:       id,
		Name:     name,
		Category: category,
		Price:    decimal.NewFromFloat(price),
		Active:   true,
	})
}

func (s *memStore) setStock(productID string, quantity int) {
	s.records[productID] = &entity.StockRecord{
		ProductID:     productID,
		Quantity:      quantity,
		MaxStockLevel: entity.DefaultMaxStockLevel,
		Status:        domstock.DeriveStatus(quantity),
		LastUpdated:   time.Now(),
		UpdatedBy:     "test",
	}
}

// corruptStatus fuerza un estado persistido desalineado de la cantidad,
// simulando un escritor histórico que no recalculaba.
func (s *memStore) corruptStatus(productID string, st domstock.Status) {
	s.records[productID].Status = st
}

func (s *memStore) product(id string) *entity.Product {
	for _, p := range s.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ─── StockRepository ─────────────────────────────────────────────────────────

type fakeStockRepo struct {
	s *memStore
	// errOn fuerza un error en las operaciones sobre un producto concreto
	errOn map[string]error
}

func newFakeStockRepo(s *memStore) *fakeStockRepo {
	return &fakeStockRepo{s: s, errOn: make(map[string]error)}
}

func (r *fakeStockRepo) Create(_ context.Context, rec *entity.StockRecord) error {
	if err := r.errOn[rec.ProductID]; err != nil {
		return err
	}
	if _, ok := r.s.records[rec.ProductID]; ok {
		return domain.ErrDuplicate
	}
	cp := *rec
	cp.Status = domstock.DeriveStatus(cp.Quantity)
	cp.LastUpdated = time.Now()
	r.s.records[rec.ProductID] = &cp
	return nil
}

func (r *fakeStockRepo) Get(_ context.Context, productID string) (*entity.StockRecord, error) {
	if err := r.errOn[productID]; err != nil {
		return nil, err
	}
	rec, ok := r.s.records[productID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeStockRepo) SetQuantity(_ context.Context, productID string, quantity int, maxStockLevel *int, actor string) (*entity.StockRecord, error) {
	if err := r.errOn[productID]; err != nil {
		return nil, err
	}
	rec, ok := r.s.records[productID]
	if !ok {
		rec = &entity.StockRecord{ProductID: productID, MaxStockLevel: entity.DefaultMaxStockLevel}
		r.s.records[productID] = rec
	}
	rec.Quantity = quantity
	if maxStockLevel != nil {
		rec.MaxStockLevel = *maxStockLevel
	}
	rec.Status = domstock.DeriveStatus(quantity)
	rec.LastUpdated = time.Now()
	rec.UpdatedBy = actor
	cp := *rec
	return &cp, nil
}

func (r *fakeStockRepo) Decrement(_ context.Context, productID string, amount int, actor string) (*repository.DecrementResult, error) {
	if err := r.errOn[productID]; err != nil {
		return nil, err
	}
	rec, ok := r.s.records[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if rec.Quantity < amount {
		return nil, fmt.Errorf("%w: hay %d, se pidieron %d", domain.ErrInsufficientStock, rec.Quantity, amount)
	}
	old := rec.Quantity
	rec.Quantity -= amount
	rec.Status = domstock.DeriveStatus(rec.Quantity)
	rec.LastUpdated = time.Now()
	rec.UpdatedBy = actor
	return &repository.DecrementResult{OldQuantity: old, NewQuantity: rec.Quantity}, nil
}

func (r *fakeStockRepo) joined(rec *entity.StockRecord) repository.StockItem {
	it := repository.StockItem{
		ProductID:     rec.ProductID,
		Quantity:      rec.Quantity,
		MaxStockLevel: rec.MaxStockLevel,
		Status:        rec.Status,
		LastUpdated:   rec.LastUpdated,
		UpdatedBy:     rec.UpdatedBy,
	}
	if p := r.s.product(rec.ProductID); p != nil {
		it.Name = p.Name
		it.Category = p.Category
		it.Price = p.Price
		it.ImageURL = p.ImageURL
	}
	return it
}

func (r *fakeStockRepo) List(_ context.Context, f repository.StockListFilter) ([]repository.StockItem, int, error) {
	var all []repository.StockItem
	for _, rec := range r.s.records {
		it := r.joined(rec)
		if f.Search != "" {
			// Como el adaptador real: ambos lados se pliegan antes de comparar
			hay := strings.ToLower(foldForTest(it.Name + " " + it.Category))
			needle := strings.ToLower(f.SearchFolded)
			if needle == "" {
				needle = strings.ToLower(f.Search)
			}
			if !strings.Contains(hay, needle) {
				continue
			}
		}
		if f.Status != "" && domstock.DeriveStatus(it.Quantity) != f.Status {
			continue
		}
		all = append(all, it)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].LastUpdated.Equal(all[j].LastUpdated) {
			return all[i].LastUpdated.After(all[j].LastUpdated)
		}
		return all[i].ProductID < all[j].ProductID
	})
	total := len(all)
	if f.Offset >= total {
		return nil, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return all[f.Offset:end], total, nil
}

func (r *fakeStockRepo) GetJoined(_ context.Context, productID string) (*repository.StockItem, error) {
	rec, ok := r.s.records[productID]
	if !ok {
		return nil, nil
	}
	it := r.joined(rec)
	return &it, nil
}

func (r *fakeStockRepo) Stats(_ context.Context) (*repository.StockStats, error) {
	st := &repository.StockStats{TotalValue: decimal.Zero}
	for _, rec := range r.s.records {
		st.TotalItems++
		switch domstock.DeriveStatus(rec.Quantity) {
		case domstock.StatusInStock:
			st.InStock++
		case domstock.StatusLowStock:
			st.LowStock++
		default:
			st.OutOfStock++
		}
		if p := r.s.product(rec.ProductID); p != nil {
			st.TotalValue = st.TotalValue.Add(p.Price.Mul(decimal.NewFromInt(int64(rec.Quantity))))
		}
	}
	return st, nil
}

func (r *fakeStockRepo) ReconcileStatuses(_ context.Context, productIDs []string) (int64, error) {
	var fixed int64
	for _, id := range productIDs {
		rec, ok := r.s.records[id]
		if !ok {
			continue
		}
		if derived := domstock.DeriveStatus(rec.Quantity); rec.Status != derived {
			rec.Status = derived
			rec.LastUpdated = time.Now()
			fixed++
		}
	}
	return fixed, nil
}

// ─── ProductRepository ───────────────────────────────────────────────────────

type fakeProductRepo struct {
	s *memStore
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p := r.s.product(id)
	if p == nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	out := make([]*entity.Product, len(r.s.products))
	copy(out, r.s.products)
	return out, nil
}

// ─── StockMovementRepository ─────────────────────────────────────────────────

type fakeMovementRepo struct {
	s *memStore
}

func (r *fakeMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	cp := *m
	if cp.ID == "" {
		cp.ID = "mov-" + strconv.Itoa(len(r.s.movements)+1)
	}
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *fakeMovementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var all []*entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		if r.s.movements[i].ProductID == productID {
			all = append(all, r.s.movements[i])
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// foldForTest hace lo que unaccent() hace en el adaptador Postgres: quitar
// las marcas diacríticas del lado almacenado antes de comparar.
func foldForTest(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func decimalFrom(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func movement(productID string, delta, after int, actor string) *entity.StockMovement {
	return &entity.StockMovement{
		ProductID:     productID,
		Delta:         delta,
		QuantityAfter: after,
		Actor:         actor,
		CreatedAt:     time.Now(),
	}
}

// ─── TxRunner ────────────────────────────────────────────────────────────────

// fakeTxRunner copia el estado del ledger antes de ejecutar fn y lo restaura
// si fn devuelve error, imitando el rollback de la transacción real.
type fakeTxRunner struct {
	s         *memStore
	stockRepo *fakeStockRepo
	movRepo   *fakeMovementRepo
}

func (tr *fakeTxRunner) Run(_ context.Context, fn func(repository.StockRepository, repository.StockMovementRepository) error) error {
	snapshot := make(map[string]*entity.StockRecord, len(tr.s.records))
	for id, rec := range tr.s.records {
		cp := *rec
		snapshot[id] = &cp
	}
	movCount := len(tr.s.movements)

	if err := fn(tr.stockRepo, tr.movRepo); err != nil {
		tr.s.records = snapshot
		tr.s.movements = tr.s.movements[:movCount]
		return err
	}
	return nil
}
