package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kioskops/ledger/internal/domain"
	"github.com/kioskops/ledger/internal/ingestion"
	"github.com/kioskops/ledger/internal/profitability"
	"github.com/kioskops/ledger/internal/repository"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	store      *repository.Store
	txnRepo    *repository.TransactionRepo
	termRepo   *repository.TerminalRepo
	importRepo *repository.ImportRepo
	ingestSvc  *ingestion.Service
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// --- import workflow ---

// CreateImport opens a new import session from the operator's batch
// configuration (provider code and reporting period).
func (h *Handlers) CreateImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source string `json:"source"`
		Period string `json:"period"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Period == "" {
		writeError(w, http.StatusBadRequest, "period is required")
		return
	}
	source := domain.Source(req.Source)
	if source == "" {
		source = domain.SourceOther
	}

	sess := h.ingestSvc.CreateSession(source, req.Period)
	writeJSON(w, http.StatusCreated, sess)
}

func (h *Handlers) GetImportSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.ingestSvc.Session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "import session not found")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// UploadImportFile accepts the batch file, parses its header and preview
// rows and runs preset detection. Nothing is persisted at this phase; an
// abandoned session expires without side effects.
func (h *Handlers) UploadImportFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read file: "+err.Error())
		return
	}

	sess, err := h.ingestSvc.AttachFile(chi.URLParam(r, "id"), data)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handlers) SetImportMapping(w http.ResponseWriter, r *http.Request) {
	var mapping ingestion.ManualMapping
	if err := json.NewDecoder(r.Body).Decode(&mapping); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	sess, err := h.ingestSvc.SetMapping(chi.URLParam(r, "id"), mapping)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// ProcessImport runs the full parse, canonicalization and atomic merge. A
// persistence failure leaves no partial state and is surfaced verbatim.
func (h *Handlers) ProcessImport(w http.ResponseWriter, r *http.Request) {
	sess, err := h.ingestSvc.Process(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handlers) ListImports(w http.ResponseWriter, r *http.Request) {
	recs, err := h.importRepo.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imports": recs, "total": len(recs)})
}

func statusFor(err error) int {
	if errors.Is(err, ingestion.ErrIllegalTransition) {
		return http.StatusConflict
	}
	return http.StatusUnprocessableEntity
}

// --- persisted state ---

// GetData returns the full persisted entity sets, the same payload shape
// the UI and narrative generator consume.
func (h *Handlers) GetData(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.FetchAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.TransactionFilter{
		Source:     q.Get("source"),
		Period:     q.Get("period"),
		Status:     q.Get("status"),
		TerminalSN: q.Get("terminal"),
		Page:       parseIntDefault(q.Get("page"), 1),
		Limit:      parseIntDefault(q.Get("limit"), 50),
	}

	txns, total, err := h.txnRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txns,
		"total":        total,
		"page":         filter.Page,
		"limit":        filter.Limit,
	})
}

// --- reports ---

// GetProfitability recomputes the per-location P&L from current persisted
// state and returns it sorted worst performers first.
func (h *Handlers) GetProfitability(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.FetchAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	report := profitability.Compute(snap.Locations, snap.Terminals, snap.Transactions, r.URL.Query().Get("period"))
	writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")

	totals, err := h.txnRepo.Totals(period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	daily, err := h.txnRepo.DailyStats(period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	states, err := h.termRepo.SummarizeByState(period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"period":      period,
		"totals":      totals,
		"daily_stats": daily,
		"by_state":    states,
	})
}
