package rest

import (
	"net/http"

	"carloan-service/internal/transport/auth"
)

// listMyCars is the dashboard payload: every car of the session user with
// its loan (or none) attached.
func (h *Handler) listMyCars(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	cars := h.cars.CarsByUserID(r.Context(), userID)
	Success(w, "", cars)
}
