package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	"github.com/mizan-erp/mizan/internal/finance"
	"github.com/mizan-erp/mizan/internal/ledger"
	"github.com/mizan-erp/mizan/internal/platform/httpx"
	"github.com/mizan-erp/mizan/internal/shared"
)

// Handler serves CSV downloads of the reporting output.
type Handler struct {
	logger  *slog.Logger
	finance *finance.Service
}

// NewHandler constructs the export handler.
func NewHandler(logger *slog.Logger, financeSvc *finance.Service) *Handler {
	return &Handler{logger: logger, finance: financeSvc}
}

// MountRoutes registers export routes. Downloads rebuild the full snapshot
// per request, so they are rate limited per client.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))
		r.Get("/budget.csv", h.budget)
		r.Get("/people/{id}/statement.csv", h.statement)
	})
}

func (h *Handler) budget(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.finance.Budget(r.Context())
	if err != nil {
		h.logger.Error("export budget", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	ordered := make([]finance.BudgetSummary, 0, len(summaries))
	for _, currency := range ledger.Currencies() {
		ordered = append(ordered, summaries[currency])
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="budget.csv"`)
	if err := WriteBudgetCSV(w, ordered); err != nil {
		h.logger.Error("write budget csv", slog.Any("error", err))
	}
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed id", shared.ErrValidation))
		return
	}
	personType := ledger.PersonType(r.URL.Query().Get("type"))
	if personType != ledger.PersonCustomer && personType != ledger.PersonSupplier {
		httpx.RespondError(w, fmt.Errorf("%w: type must be customer or supplier", shared.ErrValidation))
		return
	}
	currency := ledger.Currency(r.URL.Query().Get("currency"))
	if currency == "" {
		currency = ledger.CurrencyYER
	}
	if !ledger.ValidCurrency(currency) {
		httpx.RespondError(w, fmt.Errorf("%w: unsupported currency %q", shared.ErrValidation, currency))
		return
	}

	rows, _, err := h.finance.PersonStatement(r.Context(), id, personType, currency)
	if err != nil {
		h.logger.Error("export statement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="statement-%s-%s.csv"`, id, currency))
	if err := WriteStatementCSV(w, rows); err != nil {
		h.logger.Error("write statement csv", slog.Any("error", err))
	}
}
