// seed-stock aplica el esquema de conciliación y carga saldos de demostración
// en la tabla stock.
//
// Uso: go run ./cmd/seed-stock
// Lee la conexión de las mismas variables de entorno que cmd/api (DATABASE_URL
// o DB_HOST, DB_PORT, ...). Es idempotente: el esquema usa IF NOT EXISTS y los
// saldos se insertan con ON CONFLICT DO NOTHING.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/invorya/cyclecount-api/internal/infrastructure/postgres"
	"github.com/invorya/cyclecount-api/pkg/config"
)

type seedRow struct {
	skuID       string
	description string
	baseUnit    string
	sellable    float64
	allocated   float64
	damaged     float64
	expired     float64
	onRoute     float64
}

var demoStock = []seedRow{
	{"SKU001", "Harina de trigo 25kg", "CS", 120, 10, 0, 4, 30},
	{"SKU002", "Aceite vegetal 20L", "CS", 80, 5, 2, 0, 0},
	{"SKU003", "Azúcar refinada 50kg", "CS", 200, 0, 0, 0, 50},
	{"SKU004", "Levadura seca 500g", "EA", 340, 20, 6, 12, 0},
	{"SKU005", "Sal industrial 25kg", "CS", 64, 0, 1, 0, 16},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conectar a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	schemaPath := filepath.Join("internal", "infrastructure", "postgres", "migrations", "001_schema.sql")
	if len(os.Args) > 1 {
		schemaPath = os.Args[1]
	}
	ddl, err := os.ReadFile(schemaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer esquema %s: %v\n", schemaPath, err)
		os.Exit(1)
	}
	if _, err := pool.Exec(ctx, string(ddl)); err != nil {
		fmt.Fprintf(os.Stderr, "Aplicar esquema: %v\n", err)
		os.Exit(1)
	}

	inserted := 0
	for _, r := range demoStock {
		tag, err := pool.Exec(ctx, `
			INSERT INTO stock (sku_id, description, base_unit, sellable_qty, allocated_qty, damaged_qty, expired_qty, onroute_qty)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (sku_id) DO NOTHING`,
			r.skuID, r.description, r.baseUnit,
			r.sellable, r.allocated, r.damaged, r.expired, r.onRoute,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Insertar stock %s: %v\n", r.skuID, err)
			os.Exit(1)
		}
		inserted += int(tag.RowsAffected())
	}

	fmt.Printf("Esquema aplicado, %d saldos nuevos (de %d)\n", inserted, len(demoStock))
}
