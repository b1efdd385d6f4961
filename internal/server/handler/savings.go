package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/poolside-labs/darksave/internal/domain"
)

// SavingsService defines what the savings handler needs from the service
// layer.
type SavingsService interface {
	Estimate(ctx context.Context, req domain.SavingsRequest) (domain.SavingsEstimate, error)
	ListRecent(ctx context.Context, limit int) ([]domain.SavingsRecord, error)
}

// SavingsHandler serves the savings estimation endpoints.
type SavingsHandler struct {
	savings SavingsService
	logger  *slog.Logger
}

// NewSavingsHandler creates a SavingsHandler.
func NewSavingsHandler(savings SavingsService, logger *slog.Logger) *SavingsHandler {
	return &SavingsHandler{
		savings: savings,
		logger:  logger,
	}
}

// zeroSavingsResponse is returned for falsy amounts without running a
// simulation; it deliberately has no savingsBps field.
type zeroSavingsResponse struct {
	Savings float64 `json:"savings"`
}

// EstimateSavings simulates a market order against the public book and
// returns the midpoint-venue savings.
// POST /api/savings
func (h *SavingsHandler) EstimateSavings(w http.ResponseWriter, r *http.Request) {
	var req domain.SavingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	// A missing or zero amount is answered directly, before any validation
	// of the remaining fields.
	if req.Amount == 0 {
		writeJSON(w, http.StatusOK, zeroSavingsResponse{Savings: 0})
		return
	}

	if msg, ok := validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	req.BaseMint = strings.ToLower(common.HexToAddress(req.BaseMint).Hex())

	est, err := h.savings.Estimate(r.Context(), req)
	if err != nil {
		h.writeEstimateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, est)
}

// validateRequest checks field presence and basic shape. Semantic checks
// (token mapping, venue fees) are the service's concern.
func validateRequest(req domain.SavingsRequest) (string, bool) {
	switch {
	case req.BaseMint == "":
		return "baseMint is required", false
	case !common.IsHexAddress(req.BaseMint):
		return "baseMint must be a hex address", false
	case req.QuoteTicker == "":
		return "quoteTicker is required", false
	case req.Direction == "":
		return "direction is required", false
	case req.MidpointFeeRate == nil:
		return "renegadeFeeRate is required", false
	case *req.MidpointFeeRate < 0:
		return "renegadeFeeRate must be non-negative", false
	case req.Amount < 0:
		return "amount must be non-negative", false
	}
	return "", true
}

func (h *SavingsHandler) writeEstimateError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnknownToken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUpstream):
		h.logger.ErrorContext(r.Context(), "handler: upstream fetch failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "market data fetch failed")
	case errors.Is(err, domain.ErrNoLiquidity), errors.Is(err, domain.ErrCrossedBook):
		h.logger.ErrorContext(r.Context(), "handler: book unusable",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "handler: estimate failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to estimate savings")
	}
}

// listRecentResponse wraps the recent-estimates output.
type listRecentResponse struct {
	Estimates []domain.SavingsRecord `json:"estimates"`
}

// ListRecent returns recently recorded estimates.
// GET /api/savings/recent?limit=50
func (h *SavingsHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	records, err := h.savings.ListRecent(r.Context(), limit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "estimate recording is not enabled")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: list recent estimates failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list estimates")
		return
	}

	if records == nil {
		records = []domain.SavingsRecord{}
	}
	writeJSON(w, http.StatusOK, listRecentResponse{Estimates: records})
}
