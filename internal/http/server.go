// Package http exposes the JSON API.
package http

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"paragony/internal/auth"
	"paragony/internal/services"
	"paragony/internal/storage"
)

type Server struct {
	http.Server

	repo    *storage.SQLiteRepository
	service *services.ReceiptService
	authn   *auth.PasswordAuthenticator
	jwt     *auth.JWTManager
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, repo *storage.SQLiteRepository, service *services.ReceiptService, authn *auth.PasswordAuthenticator, jwt *auth.JWTManager, corsOrigins []string) *Server {
	s := &Server{
		repo:    repo,
		service: service,
		authn:   authn,
		jwt:     jwt,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	public := func(route string, h http.HandlerFunc) {
		mux.HandleFunc(route, s.withObservability(route, h))
	}
	protected := func(route string, h http.HandlerFunc) {
		mux.HandleFunc(route, s.withObservability(route, s.withAuth(h)))
	}

	public("POST /api/auth/register", s.handleRegister)
	public("POST /api/auth/login", s.handleLogin)

	protected("GET /api/owners", s.handleListOwners)
	protected("POST /api/owners", s.handleCreateOwner)
	protected("PUT /api/owners/{id}", s.handleUpdateOwner)
	protected("DELETE /api/owners/{id}", s.handleDeleteOwner)

	protected("GET /api/items", s.handleListItems)
	protected("POST /api/items", s.handleCreateItem)
	protected("GET /api/items/{id}", s.handleGetItem)
	protected("PUT /api/items/{id}", s.handleUpdateItem)
	protected("DELETE /api/items/{id}", s.handleDeleteItem)

	protected("GET /api/receipts", s.handleListReceipts)
	protected("POST /api/receipts", s.handleCreateReceipt)
	protected("GET /api/receipts/{id}", s.handleGetReceipt)
	protected("PUT /api/receipts/{id}", s.handleUpdateReceipt)
	protected("DELETE /api/receipts/{id}", s.handleDeleteReceipt)

	protected("GET /api/recent-shops", s.handleSearchRecentShops)
	protected("POST /api/recent-shops", s.handleRebuildRecentShops)
	protected("DELETE /api/recent-shops", s.handleDeleteRecentShops)

	protected("GET /api/item-predictions", s.handleSearchItemPredictions)
	protected("POST /api/item-predictions", s.handleRebuildItemPredictions)
	protected("DELETE /api/item-predictions", s.handleDeleteItemPredictions)

	protected("GET /api/fetch/bar-persons", s.handleBarPersons)
	protected("GET /api/fetch/bar-shops", s.handleBarShops)
	protected("GET /api/fetch/line-sums", s.handleLineSums)
	protected("GET /api/fetch/pie-categories", s.handlePieCategories)

	protected("GET /api/debug/receipts/duplicates", s.handleDuplicateReceipts)

	c := cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
