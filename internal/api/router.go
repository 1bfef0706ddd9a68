package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kioskops/ledger/internal/ingestion"
	"github.com/kioskops/ledger/internal/repository"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	store *repository.Store,
	txnRepo *repository.TransactionRepo,
	termRepo *repository.TerminalRepo,
	importRepo *repository.ImportRepo,
	ingestSvc *ingestion.Service,
) http.Handler {
	h := &Handlers{
		store:      store,
		txnRepo:    txnRepo,
		termRepo:   termRepo,
		importRepo: importRepo,
		ingestSvc:  ingestSvc,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		// Import workflow.
		r.Post("/imports", h.CreateImport)
		r.Get("/imports", h.ListImports)
		r.Get("/imports/sessions/{id}", h.GetImportSession)
		r.Post("/imports/sessions/{id}/file", h.UploadImportFile)
		r.Post("/imports/sessions/{id}/mapping", h.SetImportMapping)
		r.Post("/imports/sessions/{id}/process", h.ProcessImport)

		// Persisted state.
		r.Get("/data", h.GetData)
		r.Get("/transactions", h.ListTransactions)

		// Reports.
		r.Get("/reports/profitability", h.GetProfitability)
		r.Get("/dashboard", h.GetDashboard)
	})

	return r
}
