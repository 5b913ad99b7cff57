// Package repository persists quotes in SQLite. Only inputs are stored:
// line items, additional costs and client details. Prices are recomputed by
// callers on every read.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/alu.works/internal/pricing"
	"github.com/Simplici0/alu.works/internal/quote"
)

const timeLayout = "2006-01-02 15:04:05"

var ErrQuoteNotFound = errors.New("quote not found")

// Quotes is the quote store backed by the quotes table.
type Quotes struct {
	db  *sql.DB
	now func() time.Time
}

// NewQuotes returns a repository over db.
func NewQuotes(db *sql.DB) *Quotes {
	return &Quotes{
		db:  db,
		now: func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// Save inserts q when it has no id, assigning id and date. Otherwise it
// updates the stored quote, keeping its id and original date.
func (r *Quotes) Save(ctx context.Context, q quote.Quote) (quote.Quote, error) {
	itemsJSON, err := marshalItems(q.Items)
	if err != nil {
		return quote.Quote{}, err
	}
	now := r.now()

	if q.ID == 0 {
		result, err := r.db.ExecContext(ctx, `
			INSERT INTO quotes (
				created_at, updated_at,
				client_name, client_email, client_phone, client_address,
				tariff, shipping, delivery, margin,
				items_json
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			now.Format(timeLayout), now.Format(timeLayout),
			q.Client.Name, q.Client.Email, q.Client.Phone, q.Client.Address,
			q.AdditionalCosts.Tariff, q.AdditionalCosts.Shipping, q.AdditionalCosts.Delivery, q.AdditionalCosts.Margin,
			itemsJSON,
		)
		if err != nil {
			return quote.Quote{}, fmt.Errorf("insert quote: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return quote.Quote{}, fmt.Errorf("read quote id: %w", err)
		}
		return r.Load(ctx, id)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE quotes
		SET
			updated_at = ?,
			client_name = ?,
			client_email = ?,
			client_phone = ?,
			client_address = ?,
			tariff = ?,
			shipping = ?,
			delivery = ?,
			margin = ?,
			items_json = ?
		WHERE id = ?
	`,
		now.Format(timeLayout),
		q.Client.Name, q.Client.Email, q.Client.Phone, q.Client.Address,
		q.AdditionalCosts.Tariff, q.AdditionalCosts.Shipping, q.AdditionalCosts.Delivery, q.AdditionalCosts.Margin,
		itemsJSON,
		q.ID,
	)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("update quote: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return quote.Quote{}, fmt.Errorf("update quote: %w", err)
	}
	if affected == 0 {
		return quote.Quote{}, ErrQuoteNotFound
	}

	return r.Load(ctx, q.ID)
}

// Load returns the quote with id.
func (r *Quotes) Load(ctx context.Context, id int64) (quote.Quote, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, created_at, updated_at,
			client_name, client_email, client_phone, client_address,
			tariff, shipping, delivery, margin,
			items_json
		FROM quotes
		WHERE id = ?
	`, id)

	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return quote.Quote{}, ErrQuoteNotFound
	}
	if err != nil {
		return quote.Quote{}, fmt.Errorf("load quote %d: %w", id, err)
	}
	return q, nil
}

// List returns quotes newest first. A non-empty query filters on client name,
// email and address.
func (r *Quotes) List(ctx context.Context, query string) ([]quote.Quote, error) {
	search := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, created_at, updated_at,
			client_name, client_email, client_phone, client_address,
			tariff, shipping, delivery, margin,
			items_json
		FROM quotes
		WHERE (? = '' OR client_name LIKE ? OR client_email LIKE ? OR client_address LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]quote.Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return quotes, nil
}

// Delete removes the quote with id.
func (r *Quotes) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if affected == 0 {
		return ErrQuoteNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(s scanner) (quote.Quote, error) {
	var (
		q                    quote.Quote
		createdAt, updatedAt string
		itemsJSON            string
	)
	err := s.Scan(
		&q.ID, &createdAt, &updatedAt,
		&q.Client.Name, &q.Client.Email, &q.Client.Phone, &q.Client.Address,
		&q.AdditionalCosts.Tariff, &q.AdditionalCosts.Shipping, &q.AdditionalCosts.Delivery, &q.AdditionalCosts.Margin,
		&itemsJSON,
	)
	if err != nil {
		return quote.Quote{}, err
	}

	if q.Date, err = parseTime(createdAt); err != nil {
		return quote.Quote{}, fmt.Errorf("parse created_at: %w", err)
	}
	if q.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return quote.Quote{}, fmt.Errorf("parse updated_at: %w", err)
	}
	if err := json.Unmarshal([]byte(itemsJSON), &q.Items); err != nil {
		return quote.Quote{}, fmt.Errorf("decode items: %w", err)
	}
	if q.Items == nil {
		q.Items = []pricing.LineItem{}
	}
	return q, nil
}

// parseTime accepts the stored layout and the RFC 3339 form the driver may
// return for DATETIME columns.
func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func marshalItems(items []pricing.LineItem) (string, error) {
	if items == nil {
		items = []pricing.LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode items: %w", err)
	}
	return string(raw), nil
}
