package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"carloan-service/internal/domain"
)

type LoanStore interface {
	FindByCarID(ctx context.Context, carID int64) *domain.LoanRecord
	FindByID(ctx context.Context, id int64) *domain.LoanRecord
	Upsert(ctx context.Context, rec domain.LoanRecord)
}

// LoanService owns the payoff lifecycle. The lookup-then-mutate sequence in
// Payoff and Update runs under mu so two concurrent payoffs of the same car
// cannot both see an active loan and both succeed.
type LoanService struct {
	mu    sync.Mutex
	loans LoanStore
	now   func() time.Time
}

func NewLoanService(loans LoanStore) *LoanService {
	return &LoanService{loans: loans, now: time.Now}
}

// Payoff settles the loan financing the given car. It returns true when a
// loan was settled, false when the car has no loan or the loan is already
// paid off (a normal outcome, not an error), and ErrBlankPayer when the
// payer name is blank.
func (s *LoanService) Payoff(ctx context.Context, carID int64, payer string) (bool, error) {
	if strings.TrimSpace(payer) == "" {
		return false, domain.ErrBlankPayer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loan := s.loans.FindByCarID(ctx, carID)
	if loan == nil || loan.IsPaidOff {
		return false, nil
	}

	if err := loan.MarkPaidOff(payer, s.now()); err != nil {
		return false, err
	}
	s.loans.Upsert(ctx, *loan)

	return true, nil
}

// GetByCarID returns the loan financing the given car, or nil.
func (s *LoanService) GetByCarID(ctx context.Context, carID int64) *domain.LoanRecord {
	return s.loans.FindByCarID(ctx, carID)
}

// Update persists caller-supplied corrections to the payoff bookkeeping of
// an existing loan. Kind and the per-kind terms are never touched through
// this path; a loan id that does not exist is a no-op.
func (s *LoanService) Update(ctx context.Context, loan *domain.LoanRecord) error {
	if loan == nil {
		return domain.ErrNilLoan
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.loans.FindByID(ctx, loan.ID)
	if existing == nil {
		return nil
	}

	existing.PayoffAmount = loan.PayoffAmount
	existing.IsPaidOff = loan.IsPaidOff
	existing.PaidOffBy = loan.PaidOffBy
	existing.PaidOffDate = loan.PaidOffDate
	s.loans.Upsert(ctx, *existing)

	return nil
}
