// Package http exposes the accounts-payable ledger as a JSON API:
// dashboard and history views, supplier and invoice CRUD, and the
// export/import endpoints the backup tooling drives.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fornitori/internal/cache"
	"fornitori/internal/middleware/ratelimit"
	"fornitori/internal/middleware/security"
	"fornitori/internal/middleware/trace"
	"fornitori/internal/services"
)

// View cache sizing. Keys are canonicalized filters, so 100 entries is
// plenty; the short TTL bounds staleness for writes that bypass this
// process (a direct import on another instance, for example).
const (
	viewCacheSize   = 100
	viewCacheTTL    = 30 * time.Second
	cacheSweepEvery = 10 * time.Minute

	// maxRequestBodyLen bounds single-entity writes; imports carry the
	// whole dataset and get a wider limit of their own.
	maxRequestBodyLen = 1 << 20
	maxImportBodyLen  = 32 << 20
)

type Server struct {
	http.Server

	ledger *services.LedgerService

	limiter     *ratelimit.Limiter
	ipExtractor *security.ClientIPExtractor

	// Per-filter view caches. Any mutation purges both: a saved invoice
	// can move between buckets and views no matter which filter a cached
	// entry was computed under.
	dashboardCache *cache.LRUCache[services.DashboardView]
	historyCache   *cache.LRUCache[services.HistoryView]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. Callers own the listen/shutdown lifecycle.
func NewServer(addr string, ledger *services.LedgerService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:         ledger,
		limiter:        ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		ipExtractor:    security.NewClientIPExtractor(),
		dashboardCache: cache.NewLRUCache[services.DashboardView](viewCacheSize, viewCacheTTL),
		historyCache:   cache.NewLRUCache[services.HistoryView](viewCacheSize, viewCacheTTL),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.dashboardCache)
	s.cacheManager.Register(s.historyCache)
	s.cacheManager.StartCleanup(cacheSweepEvery)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/history", s.handleHistory)

	mux.HandleFunc("GET /api/suppliers", s.handleListSuppliers)
	mux.HandleFunc("POST /api/suppliers", s.handleSaveSupplier)
	mux.HandleFunc("DELETE /api/suppliers/{id}", s.handleDeleteSupplier)

	mux.HandleFunc("GET /api/invoices", s.handleListInvoices)
	mux.HandleFunc("POST /api/invoices", s.handleSaveInvoice)
	mux.HandleFunc("DELETE /api/invoices/{id}", s.handleDeleteInvoice)

	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("DELETE /api/database", s.handleWipe)

	// Outermost first: tracing sees every request, headers apply to
	// throttled responses too, the limiter runs just before routing.
	extractIP := s.ipExtractor.ExtractClientIP
	handler := s.limiter.Middleware(extractIP)(mux)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = trace.Middleware(extractIP)(handler)
	s.Handler = handler

	return s
}

// Shutdown stops the background routines and then the HTTP server. Safe
// to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateViews drops every cached view. Called after each successful
// mutation.
func (s *Server) invalidateViews() {
	s.dashboardCache.Purge()
	s.historyCache.Purge()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	// In futuro: aggiungere un check sul gateway.
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
