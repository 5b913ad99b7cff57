package seed

import (
	"database/sql"
	"fmt"
	"sort"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/alu.works/internal/catalog"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// SystemRate is one seeded catalog row.
type SystemRate struct {
	Brand string
	Model string
	Key   string
	Rate  float64
}

// DefaultSystemRates is the starter catalog in USD per square foot.
var DefaultSystemRates = []SystemRate{
	{"Aluprof", "MB-70", "Fixed", 26},
	{"Aluprof", "MB-70", "Tilt & Turn", 41},
	{"Aluprof", "MB-70", "Casement", 33},
	{"Aluprof", "MB-70", "Awning", 31},
	{"Aluprof", "MB-70", "Tilt Only", 38},
	{"Schuco", "AWS 75", "Fixed", 29},
	{"Schuco", "AWS 75", "Tilt & Turn", 45},
	{"Schuco", "AWS 75", "Casement", 36},
	{"Schuco", "ADS 75", "Single Door", 72},
	{"Schuco", "ADS 75", "Double Door", 78},
	{"Schuco", "ADS 75", "Pivot Door", 88},
	{"Schuco", "ADS 75", "Fixed", 33},
	{"Schuco", "ASS 77", "OX", 31},
	{"Schuco", "ASS 77", "XO", 31},
	{"Schuco", "ASS 77", "OXXO", 36},
	{"Schuco", "ASS 77", "OXXXO", 34},
	{"Schuco", "ASS 77", "OXXXXO", 35.5},
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureSystemRates(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureLaborRates(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureGlassPrices(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureSystemRates(tx *sql.Tx, stats *Stats) error {
	for _, r := range DefaultSystemRates {
		result, err := tx.Exec(`
			INSERT INTO system_rates (brand, model, operation_key, rate, active)
			VALUES (?, ?, ?, ?, TRUE)
			ON CONFLICT(brand, model, operation_key) DO NOTHING
		`, r.Brand, r.Model, r.Key, r.Rate)
		if err != nil {
			return fmt.Errorf("insert system rate %s/%s/%s: %w", r.Brand, r.Model, r.Key, err)
		}
		if err := countInserts(result, stats); err != nil {
			return err
		}
	}
	return nil
}

func ensureLaborRates(tx *sql.Tx, stats *Stats) error {
	rates := catalog.Defaults().LaborRates
	for _, op := range sortedKeys(rates) {
		result, err := tx.Exec(`
			INSERT INTO labor_rates (operation_type, rate)
			VALUES (?, ?)
			ON CONFLICT(operation_type) DO NOTHING
		`, op, rates[op])
		if err != nil {
			return fmt.Errorf("insert labor rate %s: %w", op, err)
		}
		if err := countInserts(result, stats); err != nil {
			return err
		}
	}
	return nil
}

func ensureGlassPrices(tx *sql.Tx, stats *Stats) error {
	prices := catalog.Defaults().GlassPrices
	for _, glass := range sortedKeys(prices) {
		result, err := tx.Exec(`
			INSERT INTO glass_prices (glass_type, unit_cost, active)
			VALUES (?, ?, TRUE)
			ON CONFLICT(glass_type) DO NOTHING
		`, glass, prices[glass])
		if err != nil {
			return fmt.Errorf("insert glass price %s: %w", glass, err)
		}
		if err := countInserts(result, stats); err != nil {
			return err
		}
	}
	return nil
}

func countInserts(result sql.Result, stats *Stats) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read seed rows affected: %w", err)
	}
	stats.Inserts += int(affected)
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
