// Package api exposes the split ledger over HTTP. It owns marshaling and
// error translation only; all financial semantics live in the core
// packages behind the service.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"gitlab.com/yelinaung/split-ledger/internal/ledger"
	"gitlab.com/yelinaung/split-ledger/internal/logger"
	"gitlab.com/yelinaung/split-ledger/internal/money"
	"gitlab.com/yelinaung/split-ledger/internal/service"
	"gitlab.com/yelinaung/split-ledger/internal/split"
)

// Handler serves the HTTP API.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Router builds the chi router with all routes mounted under /api/v1.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/expenses", h.createExpense)
		r.Post("/settlements", h.settle)
		r.Get("/balances/{userA}/{userB}", h.pairBalance)
		r.Get("/repayments", h.suggestedRepayments)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/balances", h.memberBalances)
			r.Get("/owed", h.owedByMe)
			r.Get("/owed-to-me", h.owedToMe)
			r.Get("/summary", h.monthlySummary)
		})
	})
	return r
}

// createExpense handles POST /api/v1/expenses.
func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	total, err := money.FromString(req.TotalAmount)
	if err != nil {
		badRequest(w, "total_amount must be a decimal with at most 2 fractional digits")
		return
	}
	method := split.Method(req.SplitMethod)
	if !method.Valid() {
		badRequest(w, fmt.Sprintf("unknown split method %q", req.SplitMethod))
		return
	}

	inputs := make([]split.ShareInput, 0, len(req.Participants))
	for _, p := range req.Participants {
		in, err := p.toInput()
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		inputs = append(inputs, in)
	}

	expense, results, err := h.svc.CreateExpense(r.Context(), service.CreateExpenseRequest{
		PayerID:     req.PayerID,
		Total:       total,
		Currency:    req.Currency,
		Method:      method,
		Description: req.Description,
		Inputs:      inputs,
	})
	if err != nil {
		h.writeCoreError(w, err)
		return
	}

	resp := expenseResponse{
		ID:          expense.ID.String(),
		PayerID:     expense.PayerID,
		TotalAmount: total.String(),
		Currency:    expense.Currency,
		SplitMethod: expense.SplitMethod,
		Description: expense.Description,
		Shares:      make([]shareItem, 0, len(results)),
	}
	for _, res := range results {
		resp.Shares = append(resp.Shares, shareItem{UserID: res.UserID, AmountOwed: res.AmountOwed.String()})
	}
	writeJSON(w, http.StatusCreated, resp)
}

// settle handles POST /api/v1/settlements.
func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	amount, err := money.FromString(req.Amount)
	if err != nil {
		badRequest(w, "amount must be a decimal with at most 2 fractional digits")
		return
	}

	balance, err := h.svc.Settle(r.Context(), req.FromUserID, req.ToUserID, amount, req.Note)
	if err != nil {
		h.writeCoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, settleResponse{
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		NetBalance: balance.String(),
	})
}

// pairBalance handles GET /api/v1/balances/{userA}/{userB}. A pair with
// no history reads as zero.
func (h *Handler) pairBalance(w http.ResponseWriter, r *http.Request) {
	a, errA := strconv.ParseInt(chi.URLParam(r, "userA"), 10, 64)
	b, errB := strconv.ParseInt(chi.URLParam(r, "userB"), 10, 64)
	if errA != nil || errB != nil {
		badRequest(w, "user IDs must be integers")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"net_balance": h.svc.NetBalance(a, b).String(),
	})
}

func (h *Handler) memberBalances(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	balances := h.svc.MemberBalances(userID)
	out := make([]memberBalanceItem, 0, len(balances))
	for _, mb := range balances {
		out = append(out, memberBalanceItem{UserID: mb.CounterpartID, Net: mb.Net.String()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) owedByMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCounterpartItems(h.svc.OwedByMe(userID)))
}

func (h *Handler) owedToMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCounterpartItems(h.svc.OwedToMe(userID)))
}

// monthlySummary handles GET /api/v1/users/{userID}/summary?months=n.
func (h *Handler) monthlySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	months := 6
	if s := r.URL.Query().Get("months"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 36 {
			badRequest(w, "months must be between 1 and 36")
			return
		}
		months = n
	}

	summary := h.svc.MonthlySummary(userID, months)
	out := make([]monthTotalItem, 0, len(summary))
	for _, mt := range summary {
		out = append(out, monthTotalItem{
			Month: fmt.Sprintf("%04d-%02d", mt.Year, int(mt.Month)),
			Total: mt.Total.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) suggestedRepayments(w http.ResponseWriter, r *http.Request) {
	repayments := h.svc.SuggestedRepayments()
	out := make([]repaymentItem, 0, len(repayments))
	for _, rp := range repayments {
		out = append(out, repaymentItem{FromUserID: rp.FromUserID, ToUserID: rp.ToUserID, Amount: rp.Amount.String()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		badRequest(w, "Invalid user ID")
		return 0, false
	}
	return id, true
}

// writeCoreError maps the core error taxonomy onto HTTP statuses:
// configuration mistakes the client can fix are 422, malformed requests
// are 400, anything else is 500.
func (h *Handler) writeCoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, split.ErrEmptyParticipantSet):
		unprocessable(w, "EMPTY_PARTICIPANT_SET", err.Error())
	case errors.Is(err, split.ErrInvalidSplitConfiguration):
		unprocessable(w, "INVALID_SPLIT_CONFIGURATION", err.Error())
	case errors.Is(err, split.ErrAmountMismatch):
		unprocessable(w, "AMOUNT_MISMATCH", err.Error())
	case errors.Is(err, split.ErrNegativeShareComputed):
		unprocessable(w, "NEGATIVE_SHARE_COMPUTED", err.Error())
	case errors.Is(err, split.ErrDuplicateParticipant):
		unprocessable(w, "DUPLICATE_PARTICIPANT", err.Error())
	case errors.Is(err, ledger.ErrNonPositiveSettlementAmount):
		unprocessable(w, "NON_POSITIVE_SETTLEMENT_AMOUNT", err.Error())
	case errors.Is(err, ledger.ErrSamePairUsers):
		unprocessable(w, "SAME_PAIR_USERS", err.Error())
	case errors.Is(err, money.ErrInvalidAmount):
		badRequest(w, err.Error())
	case errors.Is(err, service.ErrUnsupportedCurrency),
		errors.Is(err, service.ErrDescriptionTooLong),
		errors.Is(err, service.ErrNoteTooLong):
		badRequest(w, err.Error())
	default:
		logger.Log.Error().Err(err).Msg("Request failed")
		internalError(w, "Internal server error")
	}
}
