// seed puebla el catálogo de productos con datos de demostración e
// inicializa su stock. Pensado para entornos de desarrollo; los inserts
// usan ON CONFLICT para que el comando sea re-ejecutable.
//
// Uso: go run ./cmd/seed
// Lee la conexión de las mismas variables de entorno que la API (DATABASE_URL
// o DB_HOST/DB_PORT/...).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/ntiendat/fastfood-api/internal/domain/stock"
	"github.com/ntiendat/fastfood-api/internal/infrastructure/postgres"
	"github.com/ntiendat/fastfood-api/pkg/config"
	"github.com/shopspring/decimal"
)

type seedProduct struct {
	name     string
	desc     string
	category string
	price    decimal.Decimal
	quantity int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conectar a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	products := []seedProduct{
		{"Hamburguesa Clásica", "Carne de res, lechuga, tomate y salsa de la casa", "burgers", decimal.NewFromFloat(5.99), 80},
		{"Hamburguesa Doble Queso", "Doble carne con queso cheddar fundido", "burgers", decimal.NewFromFloat(7.99), 60},
		{"Papas Fritas Medianas", "Papas crujientes con sal marina", "sides", decimal.NewFromFloat(2.49), 120},
		{"Nuggets de Pollo x10", "Pollo empanizado con salsa a elección", "chicken", decimal.NewFromFloat(4.99), 15},
		{"Refresco de Cola 500ml", "Bebida gaseosa fría", "drinks", decimal.NewFromFloat(1.99), 200},
		{"Helado de Vainilla", "Cono de vainilla con topping", "desserts", decimal.NewFromFloat(1.49), 0},
		{"Ensalada César", "Lechuga romana, crutones y aderezo césar", "salads", decimal.NewFromFloat(4.49), 8},
		{"Wrap de Pollo", "Tortilla con pollo a la parrilla y vegetales", "chicken", decimal.NewFromFloat(5.49), 35},
	}

	created := 0
	for _, p := range products {
		id := uuid.New().String()
		// El nombre es la clave natural del demo: si ya existe, se conserva el
		// registro original y su stock.
		tag, err := pool.Exec(ctx, `
			INSERT INTO products (id, name, description, category, price, image_url, active)
			VALUES ($1, $2, $3, $4, $5, '', TRUE)
			ON CONFLICT (name) DO NOTHING`,
			id, p.name, p.desc, p.category, p.price,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Insertar producto %q: %v\n", p.name, err)
			os.Exit(1)
		}
		if tag.RowsAffected() == 0 {
			continue
		}
		created++

		_, err = pool.Exec(ctx, `
			INSERT INTO stock_records (product_id, quantity, max_stock_level, status, last_updated, updated_by)
			VALUES ($1, $2, $3, $4, NOW(), 'seed')
			ON CONFLICT (product_id) DO NOTHING`,
			id, p.quantity, 1000, string(stock.DeriveStatus(p.quantity)),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Insertar stock de %q: %v\n", p.name, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Seed completado: %d productos nuevos de %d\n", created, len(products))
}
