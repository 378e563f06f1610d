package holding

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockfolio/api/internal/auth"
	"github.com/stockfolio/api/internal/httputil"
	"github.com/stockfolio/api/internal/logging"
)

// Handler contains HTTP handlers for holding endpoints. All of them run
// behind auth.Middleware, so the user ID is always in the context.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// HoldingRequest represents the create/update request body. Pointer fields
// distinguish "absent" from zero. Owner and current price are not accepted.
type HoldingRequest struct {
	StockName string           `json:"stockName"`
	Ticker    string           `json:"ticker"`
	Quantity  *int64           `json:"quantity"`
	BuyPrice  *decimal.Decimal `json:"buyPrice"`
}

// HoldingResponse wraps a single holding
type HoldingResponse struct {
	Holding *Holding `json:"holding"`
}

// ListResponse wraps the caller's holdings
type ListResponse struct {
	Holdings []*Holding `json:"holdings"`
}

// MessageResponse carries a confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}

// List returns the caller's holdings
// @Summary      List holdings
// @Tags         holdings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} ListResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /holdings [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := auth.GetUserIDFromContext(r.Context())

	holdings, err := h.service.List(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list holdings", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list holdings", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, ListResponse{Holdings: holdings}, http.StatusOK)
}

// Create adds a holding owned by the caller
// @Summary      Create holding
// @Tags         holdings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body HoldingRequest true "Holding fields"
// @Success      201 {object} HoldingResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing or invalid fields"
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /holdings [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := auth.GetUserIDFromContext(r.Context())

	var req HoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), userID, CreateParams{
		StockName: req.StockName,
		Ticker:    req.Ticker,
		Quantity:  req.Quantity,
		BuyPrice:  req.BuyPrice,
	})
	if err != nil {
		if isValidationError(err) {
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationError, http.StatusBadRequest)
			return
		}
		logger.Error("failed to create holding", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create holding", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("holding created", "holding_id", created.ID, "ticker", created.Ticker)
	httputil.RespondJSON(w, HoldingResponse{Holding: created}, http.StatusCreated)
}

// Get returns one holding by id
// @Summary      Get holding
// @Tags         holdings
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Holding ID"
// @Success      200 {object} HoldingResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse "Not found"
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /holdings/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := auth.GetUserIDFromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	found, err := h.service.Get(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respondNotFound(w)
			return
		}
		logger.Error("failed to get holding", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get holding", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, HoldingResponse{Holding: found}, http.StatusOK)
}

// Update mutates the client-editable fields of a holding
// @Summary      Update holding
// @Tags         holdings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Holding ID"
// @Param        request body HoldingRequest true "Holding fields"
// @Success      200 {object} HoldingResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing or invalid fields"
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse "Not found"
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /holdings/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := auth.GetUserIDFromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req HoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), id, userID, CreateParams{
		StockName: req.StockName,
		Ticker:    req.Ticker,
		Quantity:  req.Quantity,
		BuyPrice:  req.BuyPrice,
	})
	if err != nil {
		if isValidationError(err) {
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationError, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrNotFound) {
			respondNotFound(w)
			return
		}
		logger.Error("failed to update holding", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update holding", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("holding updated", "holding_id", updated.ID)
	httputil.RespondJSON(w, HoldingResponse{Holding: updated}, http.StatusOK)
}

// Delete removes a holding
// @Summary      Delete holding
// @Tags         holdings
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Holding ID"
// @Success      200 {object} MessageResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse "Not found"
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /holdings/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := auth.GetUserIDFromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondNotFound(w)
			return
		}
		logger.Error("failed to delete holding", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete holding", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("holding deleted", "holding_id", id)
	httputil.RespondJSON(w, MessageResponse{Message: "holding deleted"}, http.StatusOK)
}

// Summary returns aggregate portfolio metrics for the caller
// @Summary      Portfolio summary
// @Tags         holdings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} Summary
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /holdings/summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := auth.GetUserIDFromContext(r.Context())

	summary, err := h.service.Summarize(r.Context(), userID)
	if err != nil {
		logger.Error("failed to summarize holdings", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to summarize holdings", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, summary, http.StatusOK)
}

// parseID reads the id path parameter. A value that is not a UUID cannot
// name an existing holding, so it gets the same uniform not-found.
func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondNotFound(w)
		return uuid.Nil, false
	}
	return id, true
}

func respondNotFound(w http.ResponseWriter) {
	httputil.RespondErrorWithCode(w, "holding not found", httputil.CodeHoldingNotFound, http.StatusNotFound)
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrStockNameRequired) ||
		errors.Is(err, ErrTickerRequired) ||
		errors.Is(err, ErrQuantityRequired) ||
		errors.Is(err, ErrQuantityNegative) ||
		errors.Is(err, ErrBuyPriceRequired) ||
		errors.Is(err, ErrBuyPriceNegative)
}
