package rest

import (
	"log"
	"net/http"
	"strings"

	"carloan-service/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	reports, err := h.reports.GetReports(r.Context(), userID)
	if err != nil {
		log.Printf("[HTTP] list reports error: %v", err)
		ErrorInternal(w, "failed to list reports")
		return
	}

	Success(w, "", reports)
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	reportID := chi.URLParam(r, "report_id")
	if !strings.HasPrefix(reportID, "reports:") {
		reportID = "reports:" + reportID
	}

	status, err := h.reports.GetReport(r.Context(), reportID, userID)
	if err != nil {
		ErrorNotFound(w, "report not found")
		return
	}

	Success(w, "", status)
}

func (h *Handler) startLoansReport(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	reportID, err := h.reports.StartLoansReport(r.Context(), userID)
	if err != nil {
		log.Printf("[HTTP] start loans report error: %v", err)
		ErrorInternal(w, "failed to start report")
		return
	}

	SuccessAccepted(w, "report generation started", map[string]any{
		"report_id": reportID,
	})
}
