package rest

import (
	"context"
	"time"

	"carloan-service/internal/domain"
	"carloan-service/internal/service"
	"carloan-service/internal/transport/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type LoanOperations interface {
	Payoff(ctx context.Context, carID int64, payer string) (bool, error)
	GetByCarID(ctx context.Context, carID int64) *domain.LoanRecord
}

type CarReader interface {
	CarsByUserID(ctx context.Context, userID int64) []domain.Car
	CarByID(ctx context.Context, carID int64) *domain.Car
}

type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) *domain.User
}

type ReportRunner interface {
	StartLoansReport(ctx context.Context, userID int64) (string, error)
	GetReports(ctx context.Context, userID int64) ([]service.ReportStatus, error)
	GetReport(ctx context.Context, reportID string, userID int64) (*service.ReportStatus, error)
}

type PayoffNotifier interface {
	NotifyLoanPaidOff(ctx context.Context, userID, carID int64, paidOffBy string) error
}

type Handler struct {
	loans    LoanOperations
	cars     CarReader
	users    Authenticator
	reports  ReportRunner
	sessions auth.SessionStore
	notifier PayoffNotifier // optional
}

func NewHandler(
	loans LoanOperations,
	cars CarReader,
	users Authenticator,
	reports ReportRunner,
	sessions auth.SessionStore,
	notifier PayoffNotifier,
) *Handler {
	return &Handler{
		loans:    loans,
		cars:     cars,
		users:    users,
		reports:  reports,
		sessions: sessions,
		notifier: notifier,
	}
}

// InitRouter builds the authenticated part of the API. Login, health and
// file downloads stay on the public root router in main.
func (h *Handler) InitRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	r.Use(auth.SessionMiddleware(h.sessions))

	r.Post("/logout", h.logout)

	r.Get("/me/cars", h.listMyCars)

	r.Route("/cars/{car_id}/loan", func(r chi.Router) {
		r.Get("/", h.getLoan)
		r.Get("/quote", h.getLoanQuote)
		r.Post("/payoff", h.payoffLoan)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.listReports)
		r.Get("/{report_id}", h.getReport)
		r.Post("/loans", h.startLoansReport)
	})

	return r
}
