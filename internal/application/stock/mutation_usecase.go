package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ntiendat/fastfood-api/internal/application/dto"
	"github.com/ntiendat/fastfood-api/internal/domain"
	"github.com/ntiendat/fastfood-api/internal/domain/entity"
	"github.com/ntiendat/fastfood-api/internal/domain/repository"
)

// Valores por defecto de la inicialización masiva y de la atribución de escrituras.
const (
	DefaultInitialQuantity = 50
	defaultActor           = "admin"
	systemActor            = "system"
)

// MutationUseCase entradas de escritura del ledger: upsert de cantidades,
// inicialización masiva, verificación de disponibilidad y descuento por orden.
type MutationUseCase struct {
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
	txRunner    TxRunner
}

// NewMutationUseCase construye el caso de uso.
func NewMutationUseCase(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	txRunner TxRunner,
) *MutationUseCase {
	return &MutationUseCase{
		stockRepo:   stockRepo,
		productRepo: productRepo,
		movRepo:     movRepo,
		txRunner:    txRunner,
	}
}

// recordMovement guarda el asiento de auditoría; un fallo aquí no revierte la
// escritura del ledger, solo se registra en el log.
func (uc *MutationUseCase) recordMovement(ctx context.Context, productID string, delta, after int, actor, reference string) {
	err := uc.movRepo.Create(ctx, &entity.StockMovement{
		ProductID:     productID,
		Delta:         delta,
		QuantityAfter: after,
		Actor:         actor,
		Reference:     reference,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("no se pudo guardar el movimiento de stock")
	}
}

// UpdateQuantity upsert de la cantidad de un producto: crea el registro si no
// existe, si no lo sobreescribe con estado recalculado. Devuelve el registro
// unido a los campos de catálogo.
func (uc *MutationUseCase) UpdateQuantity(ctx context.Context, productID string, in dto.UpdateQuantityRequest) (*dto.StockItemResponse, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity == nil || *in.Quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.MaxStockLevel != nil && *in.MaxStockLevel <= 0 {
		return nil, domain.ErrInvalidInput
	}
	actor := in.Actor
	if actor == "" {
		actor = defaultActor
	}

	// El producto debe existir en el catálogo: el upsert crea registros de
	// stock, nunca productos.
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	prev, err := uc.stockRepo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	oldQty := 0
	if prev != nil {
		oldQty = prev.Quantity
	}

	rec, err := uc.stockRepo.SetQuantity(ctx, productID, *in.Quantity, in.MaxStockLevel, actor)
	if err != nil {
		return nil, err
	}
	uc.recordMovement(ctx, productID, rec.Quantity-oldQty, rec.Quantity, actor, "")

	it, err := uc.stockRepo.GetJoined(ctx, productID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, domain.ErrNotFound
	}
	out := toItemResponse(*it, rec.Status)
	return &out, nil
}

// InitializeForCatalog recorre TODO el catálogo: crea registros para los
// productos sin stock y RESETEA a defaultQuantity los que ya tenían. Es una
// operación deliberada de reposición de tienda, no un merge; los errores por
// producto se aíslan y la llamada siempre devuelve el detalle completo.
func (uc *MutationUseCase) InitializeForCatalog(ctx context.Context, in dto.InitializeStockRequest) (*dto.InitializeStockResponse, error) {
	qty := DefaultInitialQuantity
	if in.DefaultQuantity != nil {
		if *in.DefaultQuantity < 0 {
			return nil, domain.ErrInvalidQuantity
		}
		qty = *in.DefaultQuantity
	}
	maxStock := entity.DefaultMaxStockLevel
	if in.DefaultMaxStock != nil {
		if *in.DefaultMaxStock <= 0 {
			return nil, domain.ErrInvalidInput
		}
		maxStock = *in.DefaultMaxStock
	}
	actor := in.Actor
	if actor == "" {
		actor = systemActor
	}

	products, err := uc.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	opID := uuid.New().String()
	resp := &dto.InitializeStockResponse{OperationID: opID, Results: make([]dto.InitializeItemResult, 0, len(products))}
	for _, p := range products {
		result := dto.InitializeItemResult{ProductID: p.ID, Name: p.Name}

		existing, err := uc.stockRepo.Get(ctx, p.ID)
		switch {
		case err != nil:
			result.Outcome = "error"
			result.Message = err.Error()
			resp.ErrorCount++
		case existing == nil:
			rec := &entity.StockRecord{ProductID: p.ID, Quantity: qty, MaxStockLevel: maxStock, UpdatedBy: actor}
			if err := uc.stockRepo.Create(ctx, rec); err != nil {
				result.Outcome = "error"
				result.Message = err.Error()
				resp.ErrorCount++
			} else {
				uc.recordMovement(ctx, p.ID, qty, qty, actor, opID)
				result.Outcome = "created"
				resp.CreatedCount++
			}
		default:
			rec, err := uc.stockRepo.SetQuantity(ctx, p.ID, qty, &maxStock, actor)
			if err != nil {
				result.Outcome = "error"
				result.Message = err.Error()
				resp.ErrorCount++
			} else {
				uc.recordMovement(ctx, p.ID, rec.Quantity-existing.Quantity, rec.Quantity, actor, opID)
				result.Outcome = "updated"
				resp.UpdatedCount++
			}
		}
		resp.Results = append(resp.Results, result)
	}

	log.Info().Str("operation_id", opID).
		Int("created", resp.CreatedCount).Int("updated", resp.UpdatedCount).Int("errors", resp.ErrorCount).
		Msg("inicialización de stock de catálogo")
	return resp, nil
}

// CheckAvailability comparación de solo lectura quantity >= solicitado.
// NO reserva stock: la cantidad reportada puede cambiar antes de un
// ReduceStock posterior, que aun así puede fallar por stock insuficiente.
func (uc *MutationUseCase) CheckAvailability(ctx context.Context, in dto.CheckAvailabilityRequest) (*dto.CheckAvailabilityResponse, error) {
	if in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	rec, err := uc.stockRepo.Get(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		// Un producto sin registro no se puede vender; jamás se crea uno aquí.
		return nil, domain.ErrNotFound
	}
	return &dto.CheckAvailabilityResponse{
		ProductID:    in.ProductID,
		Available:    rec.Quantity >= in.Quantity,
		CurrentStock: rec.Quantity,
	}, nil
}

// ReduceStock descuenta cada línea de la orden DE FORMA INDEPENDIENTE: una
// línea que pasa su verificación queda aplicada definitivamente aunque una
// línea posterior falle (contrato histórico del sistema; no hay rollback).
// success global = AND de todas las líneas; el caller debe revisar el detalle
// para saber qué líneas se aplicaron. Para todo-o-nada usar ReduceStockAtomic.
func (uc *MutationUseCase) ReduceStock(ctx context.Context, in dto.ReduceStockRequest) (*dto.ReduceStockResponse, error) {
	if in.OrderID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	actor := "order_" + in.OrderID

	resp := &dto.ReduceStockResponse{Success: true, OrderID: in.OrderID, Results: make([]dto.ReduceItemResult, 0, len(in.Items))}
	for _, item := range in.Items {
		result := dto.ReduceItemResult{ProductID: item.ProductID}
		switch {
		case item.ProductID == "":
			result.Message = domain.ErrInvalidInput.Error()
		case item.Quantity <= 0:
			result.Message = domain.ErrInvalidQuantity.Error()
		default:
			res, err := uc.stockRepo.Decrement(ctx, item.ProductID, item.Quantity, actor)
			if err != nil {
				result.Message = err.Error()
			} else {
				uc.recordMovement(ctx, item.ProductID, -item.Quantity, res.NewQuantity, actor, in.OrderID)
				result.Success = true
				result.OldQuantity = res.OldQuantity
				result.NewQuantity = res.NewQuantity
				result.ReducedBy = item.Quantity
			}
		}
		if !result.Success {
			resp.Success = false
		}
		resp.Results = append(resp.Results, result)
	}

	log.Info().Str("order_id", in.OrderID).Bool("success", resp.Success).
		Int("items", len(in.Items)).Msg("reducción de stock por orden")
	return resp, nil
}

// ReduceStockAtomic variante todo-o-nada: todos los descuentos corren en una
// transacción y el primer fallo revierte los anteriores. Operación separada;
// el comportamiento por defecto del sistema sigue siendo ReduceStock.
func (uc *MutationUseCase) ReduceStockAtomic(ctx context.Context, in dto.ReduceStockRequest) (*dto.ReduceStockResponse, error) {
	if in.OrderID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	actor := "order_" + in.OrderID

	resp := &dto.ReduceStockResponse{Success: true, OrderID: in.OrderID, Results: make([]dto.ReduceItemResult, 0, len(in.Items))}
	err := uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository, movRepo repository.StockMovementRepository) error {
		for _, item := range in.Items {
			if item.ProductID == "" {
				return fmt.Errorf("producto %q: %w", item.ProductID, domain.ErrInvalidInput)
			}
			if item.Quantity <= 0 {
				return fmt.Errorf("producto %s: %w", item.ProductID, domain.ErrInvalidQuantity)
			}
			res, err := stockRepo.Decrement(ctx, item.ProductID, item.Quantity, actor)
			if err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("producto %s: %w", item.ProductID, err)
				}
				return err
			}
			if err := movRepo.Create(ctx, &entity.StockMovement{
				ProductID:     item.ProductID,
				Delta:         -item.Quantity,
				QuantityAfter: res.NewQuantity,
				Actor:         actor,
				Reference:     in.OrderID,
				CreatedAt:     time.Now(),
			}); err != nil {
				return err
			}
			resp.Results = append(resp.Results, dto.ReduceItemResult{
				ProductID:   item.ProductID,
				Success:     true,
				OldQuantity: res.OldQuantity,
				NewQuantity: res.NewQuantity,
				ReducedBy:   item.Quantity,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
