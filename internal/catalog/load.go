package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
)

// LoadFromDB reads the rate tables seeded into the database.
func LoadFromDB(ctx context.Context, db *sql.DB) (Tables, error) {
	t := Tables{
		SystemRates: make(map[string]map[string]map[string]float64),
		LaborRates:  make(map[string]float64),
		GlassPrices: make(map[string]float64),
	}

	if err := loadSystemRates(ctx, db, t.SystemRates); err != nil {
		return Tables{}, err
	}
	if err := loadPairs(ctx, db, `SELECT operation_type, rate FROM labor_rates`, t.LaborRates); err != nil {
		return Tables{}, fmt.Errorf("load labor rates: %w", err)
	}
	if err := loadPairs(ctx, db, `SELECT glass_type, unit_cost FROM glass_prices WHERE active = TRUE`, t.GlassPrices); err != nil {
		return Tables{}, fmt.Errorf("load glass prices: %w", err)
	}

	return t, nil
}

func loadSystemRates(ctx context.Context, db *sql.DB, dst map[string]map[string]map[string]float64) error {
	rows, err := db.QueryContext(ctx, `
		SELECT brand, model, operation_key, rate
		FROM system_rates
		WHERE active = TRUE
	`)
	if err != nil {
		return fmt.Errorf("query system rates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var brand, model, key string
		var rate float64
		if err := rows.Scan(&brand, &model, &key, &rate); err != nil {
			return fmt.Errorf("scan system rate: %w", err)
		}
		if dst[brand] == nil {
			dst[brand] = make(map[string]map[string]float64)
		}
		if dst[brand][model] == nil {
			dst[brand][model] = make(map[string]float64)
		}
		dst[brand][model][key] = rate
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate system rates: %w", err)
	}
	return nil
}

func loadPairs(ctx context.Context, db *sql.DB, query string, dst map[string]float64) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value float64
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		dst[key] = value
	}
	return rows.Err()
}

// LoadFile reads tables from a JSON document shaped like Tables.
func LoadFile(path string) (Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read catalog file: %w", err)
	}

	var t Tables
	if err := json.Unmarshal(raw, &t); err != nil {
		return Tables{}, fmt.Errorf("decode catalog file: %w", err)
	}
	return t, nil
}
