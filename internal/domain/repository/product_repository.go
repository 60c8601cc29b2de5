package repository

import (
	"context"

	"github.com/ntiendat/fastfood-api/internal/domain/entity"
)

// ProductRepository puerto de consulta del catálogo (colaborador externo).
// Este subsistema solo lee el catálogo; el CRUD de productos vive en otro módulo.
type ProductRepository interface {
	// GetByID devuelve nil, nil si el producto no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
}
