package loyalty

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stayrewards/stayrewards-api/internal/middleware"
	"github.com/stayrewards/stayrewards-api/internal/pkg/authz"
	"github.com/stayrewards/stayrewards-api/internal/pkg/errorhandler"
	"github.com/stayrewards/stayrewards-api/internal/pkg/response"
	"github.com/stayrewards/stayrewards-api/internal/pkg/validator"
)

// Handler handles loyalty HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates loyalty handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListTiers handles GET /loyalty/tiers
func (h *Handler) ListTiers(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.service.ListTiers())
}

// GetMyAccount handles GET /loyalty/me
func (h *Handler) GetMyAccount(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	h.writeAccount(w, r, actor, actor.ID)
}

// GetMyProgress handles GET /loyalty/me/progress
func (h *Handler) GetMyProgress(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	if !authz.CanViewAccount(actor, actor.ID) {
		errorhandler.Handle(r.Context(), w, ErrForbidden)
		return
	}

	result, err := h.service.TierProgress(r.Context(), actor.ID)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, result)
}

// ListMyTransactions handles GET /loyalty/me/transactions
func (h *Handler) ListMyTransactions(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	h.writeTransactions(w, r, actor, actor.ID)
}

// GetRedemptionQuote handles GET /loyalty/me/redemption-quote?amount=
func (h *Handler) GetRedemptionQuote(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	if !authz.CanRedeemPoints(actor, actor.ID) {
		errorhandler.Handle(r.Context(), w, ErrForbidden)
		return
	}

	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		response.BadRequest(w, "amount query parameter must be a number")
		return
	}

	result, err := h.service.RedemptionQuote(r.Context(), actor.ID, amount)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, result)
}

// Earn handles POST /loyalty/accounts/{id}/earn, called when a booking completes
func (h *Handler) Earn(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseAccountID(w, r)
	if !ok {
		return
	}
	if !authz.CanEarnPoints(middleware.GetActor(r.Context())) {
		errorhandler.Handle(r.Context(), w, ErrForbidden)
		return
	}

	var req EarnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		errorhandler.HandleValidation(r.Context(), w, errors)
		return
	}

	t, err := h.service.EarnPoints(r.Context(), userID, req.BookingID, req.Amount)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.Created(w, NewTransactionResponse(t))
}

// Redeem handles POST /loyalty/me/redeem
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	if !authz.CanRedeemPoints(actor, actor.ID) {
		errorhandler.Handle(r.Context(), w, ErrForbidden)
		return
	}

	var req RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		errorhandler.HandleValidation(r.Context(), w, errors)
		return
	}

	t, err := h.service.RedeemPoints(r.Context(), actor.ID, req.BookingID, req.Points)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.Created(w, NewTransactionResponse(t))
}

// GetAccount handles GET /loyalty/accounts/{id}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseAccountID(w, r)
	if !ok {
		return
	}
	h.writeAccount(w, r, middleware.GetActor(r.Context()), userID)
}

// ListAccountTransactions handles GET /loyalty/accounts/{id}/transactions
func (h *Handler) ListAccountTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseAccountID(w, r)
	if !ok {
		return
	}
	h.writeTransactions(w, r, middleware.GetActor(r.Context()), userID)
}

// Adjust handles POST /loyalty/accounts/{id}/adjust
func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseAccountID(w, r)
	if !ok {
		return
	}

	var req AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		errorhandler.HandleValidation(r.Context(), w, errors)
		return
	}

	t, err := h.service.AdjustPoints(r.Context(), middleware.GetActor(r.Context()), userID, req.Delta, req.Reason)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.Created(w, NewTransactionResponse(t))
}

func (h *Handler) writeAccount(w http.ResponseWriter, r *http.Request, actor authz.Actor, userID uuid.UUID) {
	if !authz.CanViewAccount(actor, userID) {
		errorhandler.Handle(r.Context(), w, ErrForbidden)
		return
	}

	result, err := h.service.GetAccount(r.Context(), userID)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, result)
}

func (h *Handler) writeTransactions(w http.ResponseWriter, r *http.Request, actor authz.Actor, userID uuid.UUID) {
	if !authz.CanViewTransactions(actor, userID) {
		errorhandler.Handle(r.Context(), w, ErrForbidden)
		return
	}

	page, limit := 1, DefaultPageSize
	if p := r.URL.Query().Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= MaxPageSize {
			limit = v
		}
	}

	txs, total, err := h.service.ListTransactions(r.Context(), userID, page, limit)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	items := make([]TransactionResponse, len(txs))
	for i, t := range txs {
		items[i] = NewTransactionResponse(t)
	}

	response.WithMeta(w, items, response.NewMeta(total, page, limit))
}

func parseAccountID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid account ID")
		return uuid.Nil, false
	}
	return id, true
}
