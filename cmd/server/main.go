package main

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Simplici0/alu.works/internal/catalog"
	"github.com/Simplici0/alu.works/internal/config"
	"github.com/Simplici0/alu.works/internal/db"
	"github.com/Simplici0/alu.works/internal/migrations"
	"github.com/Simplici0/alu.works/internal/pricing"
	"github.com/Simplici0/alu.works/internal/pricingsvc"
	"github.com/Simplici0/alu.works/internal/repository"
	"github.com/Simplici0/alu.works/internal/seed"
)

type server struct {
	auth       *authService
	quotes     *repository.Quotes
	catalog    *catalog.Catalog
	engine     *pricing.Engine
	pricing    *pricingsvc.Handler
	taxPercent float64
	logger     zerolog.Logger
}

func main() {
	cfg := config.Load()
	logger := cfg.Logger()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		logger.Fatal().Err(err).Msg("failed to run database migrations")
	}

	stats, err := seed.Run(database, seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to seed database")
	}
	logger.Info().Int("inserts", stats.Inserts).Msg("seed complete")

	tables, err := loadCatalog(context.Background(), cfg, database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalog")
	}

	srv := newServer(database, tables, cfg, logger)

	addr := ":" + cfg.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().Str("addr", addr).Str("env", cfg.AppEnv).Msg("listening")
	if err := httpServer.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func newServer(database *sql.DB, tables catalog.Tables, cfg config.Config, logger zerolog.Logger) *server {
	cat := catalog.New(tables, catalog.WithLogger(logger.With().Str("component", "catalog").Logger()))
	engine := pricing.NewEngine(cat)

	return &server{
		auth:       newAuthService(database, cfg.SessionSecret),
		quotes:     repository.NewQuotes(database),
		catalog:    cat,
		engine:     engine,
		pricing:    pricingsvc.NewHandler(pricingsvc.NewLocal(engine)),
		taxPercent: cfg.TaxPercent,
		logger:     logger,
	}
}

// loadCatalog prefers a JSON catalog file over the seeded tables.
func loadCatalog(ctx context.Context, cfg config.Config, database *sql.DB) (catalog.Tables, error) {
	if cfg.CatalogPath != "" {
		return catalog.LoadFile(cfg.CatalogPath)
	}
	return catalog.LoadFromDB(ctx, database)
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.authMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	s.pricing.Mount(r)
	r.Get("/api/catalog", s.handleCatalog)

	r.Route("/api/quotes", func(r chi.Router) {
		r.Get("/", s.handleQuotesList)
		r.Post("/", s.handleQuoteCreate)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleQuoteGet)
			r.Put("/", s.handleQuoteUpdate)
			r.Delete("/", s.handleQuoteDelete)
			r.Get("/text", s.handleQuoteText)
			r.Get("/export.xlsx", s.handleQuoteExport)

			r.Post("/items", s.handleItemAdd)
			r.Put("/items/{itemID}", s.handleItemReplace)
			r.Delete("/items/{itemID}", s.handleItemDelete)
			r.Post("/items/{itemID}/duplicate", s.handleItemDuplicate)
			r.Post("/items/{itemID}/move", s.handleItemMove)
			r.Patch("/items/{itemID}/quantity", s.handleItemQuantity)
		})
	})

	return r
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	pricingsvc.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		pricingsvc.WriteError(w, http.StatusBadRequest, "invalid form")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	valid, err := s.auth.validateCredentials(email, r.FormValue("password"))
	if err != nil {
		s.logger.Error().Err(err).Msg("validate credentials")
		pricingsvc.WriteError(w, http.StatusInternalServerError, "authentication error")
		return
	}
	if !valid {
		pricingsvc.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.auth.setSessionCookie(w, email)
	pricingsvc.WriteJSON(w, http.StatusOK, map[string]string{"email": email})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	pricingsvc.WriteJSON(w, http.StatusOK, s.catalog.Tables())
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if _, ok := s.auth.sessionEmail(r); !ok {
			pricingsvc.WriteError(w, http.StatusUnauthorized, "login required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isPublicPath(path string) bool {
	return path == "/login" || path == "/healthz" || strings.HasPrefix(path, "/api/pricing/")
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
