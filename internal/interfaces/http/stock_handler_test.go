package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstock "github.com/ntiendat/fastfood-api/internal/application/stock"
	"github.com/ntiendat/fastfood-api/internal/domain"
	"github.com/ntiendat/fastfood-api/internal/domain/entity"
	"github.com/ntiendat/fastfood-api/internal/domain/repository"
	domstock "github.com/ntiendat/fastfood-api/internal/domain/stock"
	apphttp "github.com/ntiendat/fastfood-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Doble mínimo de persistencia para probar el mapeo HTTP. La lógica fina de
// los casos de uso se cubre en internal/application/stock.
// ──────────────────────────────────────────────────────────────────────────────

type stubRepo struct {
	products map[string]*entity.Product
	records  map[string]*entity.StockRecord
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		products: make(map[string]*entity.Product),
		records:  make(map[string]*entity.StockRecord),
	}
}

func (r *stubRepo) add(id, name string, quantity int) {
	r.products[id] = &entity.Product{ID: id, Name: name, Category: "general", Price: decimal.NewFromFloat(4.99), Active: true}
	r.records[id] = &entity.StockRecord{
		ProductID:     id,
		Quantity:      quantity,
		MaxStockLevel: entity.DefaultMaxStockLevel,
		Status:        domstock.DeriveStatus(quantity),
		UpdatedBy:     "test",
	}
}

func (r *stubRepo) Create(_ context.Context, rec *entity.StockRecord) error {
	if _, ok := r.records[rec.ProductID]; ok {
		return domain.ErrDuplicate
	}
	cp := *rec
	cp.Status = domstock.DeriveStatus(cp.Quantity)
	r.records[rec.ProductID] = &cp
	return nil
}

func (r *stubRepo) Get(_ context.Context, id string) (*entity.StockRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *stubRepo) SetQuantity(_ context.Context, id string, quantity int, maxStockLevel *int, actor string) (*entity.StockRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		rec = &entity.StockRecord{ProductID: id, MaxStockLevel: entity.DefaultMaxStockLevel}
		r.records[id] = rec
	}
	rec.Quantity = quantity
	if maxStockLevel != nil {
		rec.MaxStockLevel = *maxStockLevel
	}
	rec.Status = domstock.DeriveStatus(quantity)
	rec.UpdatedBy = actor
	cp := *rec
	return &cp, nil
}

func (r *stubRepo) Decrement(_ context.Context, id string, amount int, actor string) (*repository.DecrementResult, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if rec.Quantity < amount {
		return nil, fmt.Errorf("%w: hay %d, se pidieron %d", domain.ErrInsufficientStock, rec.Quantity, amount)
	}
	old := rec.Quantity
	rec.Quantity -= amount
	rec.Status = domstock.DeriveStatus(rec.Quantity)
	return &repository.DecrementResult{OldQuantity: old, NewQuantity: rec.Quantity}, nil
}

func (r *stubRepo) item(rec *entity.StockRecord) repository.StockItem {
	it := repository.StockItem{
		ProductID:     rec.ProductID,
		Quantity:      rec.Quantity,
		MaxStockLevel: rec.MaxStockLevel,
		Status:        rec.Status,
		LastUpdated:   rec.LastUpdated,
		UpdatedBy:     rec.UpdatedBy,
	}
	if p, ok := r.products[rec.ProductID]; ok {
		it.Name = p.Name
		it.Category = p.Category
		it.Price = p.Price
	}
	return it
}

func (r *stubRepo) List(_ context.Context, f repository.StockListFilter) ([]repository.StockItem, int, error) {
	var out []repository.StockItem
	for _, rec := range r.records {
		it := r.item(rec)
		if f.Status != "" && domstock.DeriveStatus(it.Quantity) != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, it)
	}
	return out, len(out), nil
}

func (r *stubRepo) GetJoined(_ context.Context, id string) (*repository.StockItem, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	it := r.item(rec)
	return &it, nil
}

func (r *stubRepo) Stats(_ context.Context) (*repository.StockStats, error) {
	st := &repository.StockStats{TotalValue: decimal.Zero}
	for _, rec := range r.records {
		st.TotalItems++
		switch domstock.DeriveStatus(rec.Quantity) {
		case domstock.StatusInStock:
			st.InStock++
		case domstock.StatusLowStock:
			st.LowStock++
		default:
			st.OutOfStock++
		}
	}
	return st, nil
}

func (r *stubRepo) ReconcileStatuses(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if rec, ok := r.records[id]; ok {
			if d := domstock.DeriveStatus(rec.Quantity); rec.Status != d {
				rec.Status = d
				n++
			}
		}
	}
	return n, nil
}

type stubProducts struct{ r *stubRepo }

func (s stubProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := s.r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s stubProducts) List(_ context.Context) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(s.r.products))
	for _, p := range s.r.products {
		out = append(out, p)
	}
	return out, nil
}

type stubMovements struct{}

func (stubMovements) Create(_ context.Context, _ *entity.StockMovement) error { return nil }
func (stubMovements) ListByProduct(_ context.Context, _ string, _, _ int) ([]*entity.StockMovement, error) {
	return nil, nil
}

type stubTx struct{ r *stubRepo }

func (s stubTx) Run(_ context.Context, fn func(repository.StockRepository, repository.StockMovementRepository) error) error {
	// Sin rollback real: suficiente para probar el mapeo de errores HTTP
	return fn(s.r, stubMovements{})
}

func buildApp(r *stubRepo) *fiber.App {
	queryUC := appstock.NewQueryUseCase(r, stubMovements{})
	mutationUC := appstock.NewMutationUseCase(r, stubProducts{r: r}, stubMovements{}, stubTx{r: r})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{StockQuery: queryUC, StockMutation: mutationUC})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

// ──────────────────────────────────────────────────────────────────────────────
// Rutas y mapeo de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestListStock_OK(t *testing.T) {
	r := newStubRepo()
	r.add("p1", "Burger", 50)
	app := buildApp(r)

	resp, body := doJSON(t, app, http.MethodGet, "/api/stock?page=1&pageSize=10", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "in_stock", item["status"])
	page := body["page"].(map[string]interface{})
	assert.Equal(t, float64(1), page["totalItems"])
}

// /api/stock/stats no debe capturarse como /:productId.
func TestStats_NoColisionaConProductId(t *testing.T) {
	r := newStubRepo()
	r.add("p1", "Burger", 50)
	r.add("p2", "Papas", 0)
	app := buildApp(r)

	resp, body := doJSON(t, app, http.MethodGet, "/api/stock/stats", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["totalItems"])
	assert.Equal(t, float64(1), body["outOfStock"])
}

func TestGetByProduct_404(t *testing.T) {
	app := buildApp(newStubRepo())

	resp, body := doJSON(t, app, http.MethodGet, "/api/stock/no-existe", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestUpdateQuantity_CantidadNegativa400(t *testing.T) {
	r := newStubRepo()
	r.add("p1", "Burger", 50)
	app := buildApp(r)

	resp, body := doJSON(t, app, http.MethodPut, "/api/stock/p1", `{"quantity": -2}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUANTITY", body["code"])
}

func TestUpdateQuantity_OK(t *testing.T) {
	r := newStubRepo()
	r.add("p1", "Burger", 50)
	app := buildApp(r)

	resp, body := doJSON(t, app, http.MethodPut, "/api/stock/p1", `{"quantity": 15, "actor": "gerente"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(15), body["quantity"])
	assert.Equal(t, "low_stock", body["status"])
}

func TestCheckAvailability_404SinRegistro(t *testing.T) {
	app := buildApp(newStubRepo())

	resp, body := doJSON(t, app, http.MethodPost, "/api/stock/check-availability", `{"productId": "x", "quantity": 1}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

// La reducción por líneas SIEMPRE responde 200; el fallo va en el cuerpo.
func TestReduce_FalloParcialRespuesta200(t *testing.T) {
	r := newStubRepo()
	r.add("a", "Burger", 10)
	r.add("b", "Papas", 5)
	app := buildApp(r)

	resp, body := doJSON(t, app, http.MethodPost, "/api/stock/reduce",
		`{"orderId": "ord-1", "items": [{"productId": "a", "quantity": 3}, {"productId": "b", "quantity": 1000}]}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	results := body["results"].([]interface{})
	require.Len(t, results, 2)
	assert.Equal(t, true, results[0].(map[string]interface{})["success"])
	assert.Equal(t, false, results[1].(map[string]interface{})["success"])
}

// La variante atómica sí se mapea a 409 cuando no alcanza el stock.
func TestReduceAtomic_StockInsuficiente409(t *testing.T) {
	r := newStubRepo()
	r.add("a", "Burger", 2)
	app := buildApp(r)

	resp, body := doJSON(t, app, http.MethodPost, "/api/stock/reduce-atomic",
		`{"orderId": "ord-1", "items": [{"productId": "a", "quantity": 5}]}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
}

func TestReduce_BodyInvalido400(t *testing.T) {
	app := buildApp(newStubRepo())

	resp, body := doJSON(t, app, http.MethodPost, "/api/stock/reduce", `{"orderId": "", "items": []}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
}
