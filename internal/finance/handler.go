package finance

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mizan-erp/mizan/internal/ledger"
	"github.com/mizan-erp/mizan/internal/platform/httpx"
	"github.com/mizan-erp/mizan/internal/shared"
)

// Handler wires the reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the finance handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers reporting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/budget", h.budget)
	r.Get("/people/{id}/balances", h.balances)
	r.Get("/people/{id}/statement", h.statement)
	r.Get("/rates", h.rates)
	r.Put("/rates", h.updateRates)
}

func (h *Handler) budget(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.Budget(r.Context())
	if err != nil {
		h.logger.Error("budget summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summaries)
}

func statementParams(r *http.Request) (uuid.UUID, ledger.PersonType, ledger.Currency, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, "", "", fmt.Errorf("%w: malformed id", shared.ErrValidation)
	}
	personType := ledger.PersonType(r.URL.Query().Get("type"))
	if personType != ledger.PersonCustomer && personType != ledger.PersonSupplier {
		return uuid.Nil, "", "", fmt.Errorf("%w: type must be customer or supplier", shared.ErrValidation)
	}
	currency := ledger.Currency(r.URL.Query().Get("currency"))
	if currency == "" {
		currency = ledger.CurrencyYER
	}
	if !ledger.ValidCurrency(currency) {
		return uuid.Nil, "", "", fmt.Errorf("%w: unsupported currency %q", shared.ErrValidation, currency)
	}
	return id, personType, currency, nil
}

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	id, personType, _, err := statementParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	balances, err := h.service.Balances(r.Context(), id, personType)
	if err != nil {
		h.logger.Error("person balances", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, balances)
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	id, personType, currency, err := statementParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, balance, err := h.service.PersonStatement(r.Context(), id, personType, currency)
	if err != nil {
		h.logger.Error("statement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"currency": currency,
		"balance":  balance,
		"rows":     rows,
	})
}

func (h *Handler) rates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.service.Rates(r.Context())
	if err != nil {
		h.logger.Error("load rates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rates)
}

func (h *Handler) updateRates(w http.ResponseWriter, r *http.Request) {
	var rates ExchangeRates
	if err := httpx.DecodeJSON(r, &rates); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.service.UpdateRates(r.Context(), rates); err != nil {
		h.logger.Error("update rates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rates)
}
