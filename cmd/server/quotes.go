package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/alu.works/internal/export"
	"github.com/Simplici0/alu.works/internal/pricing"
	"github.com/Simplici0/alu.works/internal/pricingsvc"
	"github.com/Simplici0/alu.works/internal/quote"
	"github.com/Simplici0/alu.works/internal/repository"
)

const (
	maxBodyBytes = 1 << 20
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type quoteRequest struct {
	Items           []pricing.LineItem      `json:"items"`
	AdditionalCosts pricing.AdditionalCosts `json:"additionalCosts"`
	Client          quote.Client            `json:"clientInfo"`
}

// quoteResponse is a stored quote with totals recomputed on read.
type quoteResponse struct {
	quote.Quote
	Pricing pricing.PricedQuote `json:"pricing"`
}

type quoteListItem struct {
	ID         int64     `json:"id"`
	Date       time.Time `json:"date"`
	ClientName string    `json:"clientName"`
	ItemCount  int       `json:"itemCount"`
	GrandTotal float64   `json:"grandTotal"`
}

type moveRequest struct {
	Index int `json:"index"`
}

// quantityRequest takes the raw text the rep typed or a JSON number.
type quantityRequest struct {
	Quantity json.RawMessage `json:"quantity"`
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	quotes, err := s.quotes.List(r.Context(), query)
	if err != nil {
		s.internalError(w, err, "failed to load quotes")
		return
	}

	out := make([]quoteListItem, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, quoteListItem{
			ID:         q.ID,
			Date:       q.Date,
			ClientName: q.Client.Name,
			ItemCount:  len(q.Items),
			GrandTotal: pricing.RoundCents(s.engine.Aggregate(q.Items, q.AdditionalCosts).GrandTotal),
		})
	}
	pricingsvc.WriteJSON(w, http.StatusOK, out)
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	q, ok := s.decodeQuote(w, r)
	if !ok {
		return
	}

	saved, err := s.quotes.Save(r.Context(), q)
	if err != nil {
		s.internalError(w, err, "failed to save quote")
		return
	}
	s.writeQuote(w, http.StatusCreated, saved)
}

func (s *server) handleQuoteGet(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return
	}
	s.writeQuote(w, http.StatusOK, q)
}

func (s *server) handleQuoteUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := quoteID(w, r)
	if !ok {
		return
	}
	q, ok := s.decodeQuote(w, r)
	if !ok {
		return
	}
	q.ID = id

	saved, err := s.quotes.Save(r.Context(), q)
	if errors.Is(err, repository.ErrQuoteNotFound) {
		pricingsvc.WriteError(w, http.StatusNotFound, "quote not found")
		return
	}
	if err != nil {
		s.internalError(w, err, "failed to save quote")
		return
	}
	s.writeQuote(w, http.StatusOK, saved)
}

func (s *server) handleQuoteDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := quoteID(w, r)
	if !ok {
		return
	}

	err := s.quotes.Delete(r.Context(), id)
	if errors.Is(err, repository.ErrQuoteNotFound) {
		pricingsvc.WriteError(w, http.StatusNotFound, "quote not found")
		return
	}
	if err != nil {
		s.internalError(w, err, "failed to delete quote")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return
	}

	summary := export.NewSummary(q, q.Price(s.engine), s.taxPercent)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(export.Text(summary)))
}

func (s *server) handleQuoteExport(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return
	}

	data, err := export.XLSX(export.NewSummary(q, q.Price(s.engine), s.taxPercent))
	if err != nil {
		s.internalError(w, err, "failed to build export")
		return
	}
	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="quote-%d.xlsx"`, q.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *server) handleItemAdd(w http.ResponseWriter, r *http.Request) {
	var item pricing.LineItem
	if !decodeBody(w, r, &item) {
		return
	}
	if err := quote.ValidateItem(item); err != nil {
		pricingsvc.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.editItems(w, r, http.StatusCreated, func(store *quote.Store) error {
		item.ID = ""
		store.Add(item)
		return nil
	})
}

func (s *server) handleItemReplace(w http.ResponseWriter, r *http.Request) {
	var item pricing.LineItem
	if !decodeBody(w, r, &item) {
		return
	}
	if err := quote.ValidateItem(item); err != nil {
		pricingsvc.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	item.ID = chi.URLParam(r, "itemID")

	s.editItems(w, r, http.StatusOK, func(store *quote.Store) error {
		_, err := store.Replace(item)
		return err
	})
}

func (s *server) handleItemDelete(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	s.editItems(w, r, http.StatusOK, func(store *quote.Store) error {
		return store.Remove(itemID)
	})
}

func (s *server) handleItemDuplicate(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	s.editItems(w, r, http.StatusCreated, func(store *quote.Store) error {
		_, err := store.Copy(itemID)
		return err
	})
}

func (s *server) handleItemMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	itemID := chi.URLParam(r, "itemID")
	s.editItems(w, r, http.StatusOK, func(store *quote.Store) error {
		return store.Move(itemID, req.Index)
	})
}

func (s *server) handleItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	raw := strings.Trim(string(req.Quantity), `"`)
	itemID := chi.URLParam(r, "itemID")
	s.editItems(w, r, http.StatusOK, func(store *quote.Store) error {
		return store.SetQuantityText(itemID, raw)
	})
}

// editItems loads the quote, applies edit to its items and saves it. The
// quote is left untouched when edit fails.
func (s *server) editItems(w http.ResponseWriter, r *http.Request, status int, edit func(*quote.Store) error) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return
	}

	store := quote.NewStore(q.Items)
	if err := edit(store); err != nil {
		switch {
		case errors.Is(err, quote.ErrItemNotFound):
			pricingsvc.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, quote.ErrInvalidQuantity), errors.Is(err, quote.ErrIndexOutOfRange):
			pricingsvc.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			s.internalError(w, err, "failed to edit items")
		}
		return
	}
	q.Items = store.Items()

	saved, err := s.quotes.Save(r.Context(), q)
	if err != nil {
		s.internalError(w, err, "failed to save quote")
		return
	}
	s.writeQuote(w, status, saved)
}

func (s *server) decodeQuote(w http.ResponseWriter, r *http.Request) (quote.Quote, bool) {
	var req quoteRequest
	if !decodeBody(w, r, &req) {
		return quote.Quote{}, false
	}
	if err := quote.ValidateCosts(req.AdditionalCosts); err != nil {
		pricingsvc.WriteError(w, http.StatusBadRequest, err.Error())
		return quote.Quote{}, false
	}
	for i, item := range req.Items {
		if err := quote.ValidateItem(item); err != nil {
			pricingsvc.WriteError(w, http.StatusBadRequest, fmt.Sprintf("item %d: %v", i+1, err))
			return quote.Quote{}, false
		}
	}

	return quote.Quote{
		Items:           quote.NewStore(req.Items).Items(),
		AdditionalCosts: req.AdditionalCosts,
		Client:          req.Client,
	}, true
}

func (s *server) loadQuote(w http.ResponseWriter, r *http.Request) (quote.Quote, bool) {
	id, ok := quoteID(w, r)
	if !ok {
		return quote.Quote{}, false
	}

	q, err := s.quotes.Load(r.Context(), id)
	if errors.Is(err, repository.ErrQuoteNotFound) {
		pricingsvc.WriteError(w, http.StatusNotFound, "quote not found")
		return quote.Quote{}, false
	}
	if err != nil {
		s.internalError(w, err, "failed to load quote")
		return quote.Quote{}, false
	}
	return q, true
}

func (s *server) writeQuote(w http.ResponseWriter, status int, q quote.Quote) {
	if q.Items == nil {
		q.Items = []pricing.LineItem{}
	}
	pricingsvc.WriteJSON(w, status, quoteResponse{Quote: q, Pricing: q.Price(s.engine)})
}

func (s *server) internalError(w http.ResponseWriter, err error, msg string) {
	s.logger.Error().Err(err).Msg(msg)
	pricingsvc.WriteError(w, http.StatusInternalServerError, msg)
}

func quoteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		pricingsvc.WriteError(w, http.StatusBadRequest, "invalid quote id")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		pricingsvc.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
