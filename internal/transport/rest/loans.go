package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"carloan-service/internal/domain"
	"carloan-service/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

func carIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "car_id"), 10, 64)
}

// ownedCarID resolves the car_id path param and verifies the car belongs to
// the session user. The loan core trusts whatever car id it gets, so the
// ownership check lives here at the boundary.
func (h *Handler) ownedCarID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return 0, false
	}

	carID, err := carIDParam(r)
	if err != nil {
		ErrorBadRequest(w, "invalid car id")
		return 0, false
	}

	car := h.cars.CarByID(r.Context(), carID)
	if car == nil || car.UserID != userID {
		ErrorNotFound(w, "car not found")
		return 0, false
	}

	return carID, true
}

func (h *Handler) getLoan(w http.ResponseWriter, r *http.Request) {
	carID, ok := h.ownedCarID(w, r)
	if !ok {
		return
	}

	loan := h.loans.GetByCarID(r.Context(), carID)
	if loan == nil {
		ErrorNotFound(w, "no loan for this car")
		return
	}

	Success(w, "", loan)
}

// getLoanQuote computes the on-demand figures for a loan: the amortized
// monthly payment for retail, the early termination fee as of now for a
// lease.
func (h *Handler) getLoanQuote(w http.ResponseWriter, r *http.Request) {
	carID, ok := h.ownedCarID(w, r)
	if !ok {
		return
	}

	loan := h.loans.GetByCarID(r.Context(), carID)
	if loan == nil {
		ErrorNotFound(w, "no loan for this car")
		return
	}

	quote := map[string]any{
		"loan_id": loan.ID,
		"kind":    loan.Kind,
	}
	switch loan.Kind {
	case domain.KindRetail:
		quote["monthly_payment"] = loan.MonthlyPayment()
	case domain.KindLease:
		quote["monthly_payment"] = loan.Lease.MonthlyPayment
		quote["early_termination_fee"] = loan.EarlyTerminationFee(time.Now())
	}

	Success(w, "", quote)
}

type payoffRequest struct {
	Name string `json:"name"`
}

func (h *Handler) payoffLoan(w http.ResponseWriter, r *http.Request) {
	carID, ok := h.ownedCarID(w, r)
	if !ok {
		return
	}

	var req payoffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	paidOff, err := h.loans.Payoff(r.Context(), carID, req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrBlankPayer) {
			ErrorBadRequest(w, "name is required to pay off the loan")
			return
		}
		ErrorInternal(w, "failed to pay off loan")
		return
	}

	if !paidOff {
		Success(w, "loan does not exist or is already paid off", map[string]any{
			"paid_off": false,
		})
		return
	}

	if h.notifier != nil {
		userID, _ := auth.GetUserID(r.Context())
		_ = h.notifier.NotifyLoanPaidOff(r.Context(), userID, carID, req.Name)
	}

	Success(w, "loan paid off", map[string]any{
		"paid_off": true,
		"loan":     h.loans.GetByCarID(r.Context(), carID),
	})
}
