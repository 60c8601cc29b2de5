package stock

import (
	"context"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ntiendat/fastfood-api/internal/application/dto"
	"github.com/ntiendat/fastfood-api/internal/domain"
	"github.com/ntiendat/fastfood-api/internal/domain/repository"
	domstock "github.com/ntiendat/fastfood-api/internal/domain/stock"
)

// QueryUseCase vistas de lectura sobre el ledger de stock, unidas al catálogo.
// La lectura de listado trae un efecto de autocuración: los estados persistidos
// que difieren del derivado se corrigen al servir la página (ver List).
type QueryUseCase struct {
	stockRepo repository.StockRepository
	movRepo   repository.StockMovementRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(stockRepo repository.StockRepository, movRepo repository.StockMovementRepository) *QueryUseCase {
	return &QueryUseCase{stockRepo: stockRepo, movRepo: movRepo}
}

// foldAccents quita marcas diacríticas para búsqueda insensible a tildes
// ("jalapeno" encuentra "Jalapeño").
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// List devuelve una página de registros unidos al catálogo, ordenada por
// última actualización descendente. El filtro de estado solo aplica si es uno
// de los tres valores válidos; cualquier otro texto se ignora.
//
// Autocuración (escritura disparada por lectura, intencional): todo registro
// de la página cuyo estado persistido difiere del derivado de su cantidad se
// corrige vía ReconcileStatuses. Si la corrección falla, la respuesta sale
// igual con los estados derivados; nunca se bloquea la lectura.
func (uc *QueryUseCase) List(ctx context.Context, req dto.StockListRequest) (*dto.StockListResponse, error) {
	req.DefaultPage()

	var statusFilter domstock.Status
	if req.Status != "" {
		if st, ok := domstock.ParseStatus(req.Status); ok {
			statusFilter = st
		}
	}
	search := strings.TrimSpace(req.Search)
	f := repository.StockListFilter{
		Search:       search,
		SearchFolded: foldAccents(search),
		Status:       statusFilter,
		Limit:        req.PageSize,
		Offset:       req.Offset(),
	}

	items, total, err := uc.stockRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	var stale []string
	rows := make([]dto.StockItemResponse, 0, len(items))
	for _, it := range items {
		derived := domstock.DeriveStatus(it.Quantity)
		if derived != it.Status {
			stale = append(stale, it.ProductID)
		}
		rows = append(rows, toItemResponse(it, derived))
	}
	if len(stale) > 0 {
		if _, err := uc.stockRepo.ReconcileStatuses(ctx, stale); err != nil {
			log.Warn().Err(err).Int("records", len(stale)).
				Msg("reconciliación de estados de stock falló; la respuesta lleva los estados derivados")
		}
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + req.PageSize - 1) / req.PageSize
	}
	return &dto.StockListResponse{
		Items: rows,
		Page: dto.PageResponse{
			Page:       req.Page,
			PageSize:   req.PageSize,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}, nil
}

// GetByProduct devuelve el registro unido a los campos de catálogo para mostrar
// (nombre, imagen, categoría, precio). domain.ErrNotFound si no hay registro.
func (uc *QueryUseCase) GetByProduct(ctx context.Context, productID string) (*dto.StockItemResponse, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	it, err := uc.stockRepo.GetJoined(ctx, productID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, domain.ErrNotFound
	}
	out := toItemResponse(*it, domstock.DeriveStatus(it.Quantity))
	return &out, nil
}

// Stats agregados para el dashboard; los conteos por estado salen del
// recálculo sobre la cantidad, no del estado persistido.
func (uc *QueryUseCase) Stats(ctx context.Context) (*dto.StockStatsResponse, error) {
	st, err := uc.stockRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.StockStatsResponse{
		TotalItems: st.TotalItems,
		InStock:    st.InStock,
		LowStock:   st.LowStock,
		OutOfStock: st.OutOfStock,
		TotalValue: st.TotalValue,
	}, nil
}

// ListMovements historial de auditoría de un producto, más recientes primero.
func (uc *QueryUseCase) ListMovements(ctx context.Context, productID string, page dto.PageRequest) ([]dto.StockMovementResponse, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	page.DefaultPage()
	movs, err := uc.movRepo.ListByProduct(ctx, productID, page.PageSize, page.Offset())
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.StockMovementResponse{
			ID:            m.ID,
			ProductID:     m.ProductID,
			Delta:         m.Delta,
			QuantityAfter: m.QuantityAfter,
			Actor:         m.Actor,
			Reference:     m.Reference,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out, nil
}

func toItemResponse(it repository.StockItem, derived domstock.Status) dto.StockItemResponse {
	return dto.StockItemResponse{
		ProductID:     it.ProductID,
		Name:          it.Name,
		Category:      it.Category,
		Price:         it.Price,
		ImageURL:      it.ImageURL,
		Quantity:      it.Quantity,
		MaxStockLevel: it.MaxStockLevel,
		Status:        string(derived),
		LastUpdated:   it.LastUpdated,
		UpdatedBy:     it.UpdatedBy,
	}
}
