package repository

import (
	"context"
	"sync"

	"carloan-service/internal/domain"
)

// LoanRepository is an in-memory store of loan records. Record counts are
// small (tens), so every lookup is a linear scan over a slice kept in seed
// order. All access goes through the mutex and lookups hand out copies, so a
// reader can never observe a record mid-update.
type LoanRepository struct {
	mu    sync.RWMutex
	loans []domain.LoanRecord
}

func NewLoanRepository(seed []domain.LoanRecord) *LoanRepository {
	loans := make([]domain.LoanRecord, len(seed))
	copy(loans, seed)
	return &LoanRepository{loans: loans}
}

// FindByCarID returns a copy of the first loan financing the given car, or
// nil when the car has none. Iteration order is stable, so even if the
// one-loan-per-car invariant were violated upstream the same record wins.
func (r *LoanRepository) FindByCarID(ctx context.Context, carID int64) *domain.LoanRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.loans {
		if r.loans[i].CarID == carID {
			rec := r.loans[i]
			return &rec
		}
	}
	return nil
}

// FindByID returns a copy of the loan with the given id, or nil.
func (r *LoanRepository) FindByID(ctx context.Context, id int64) *domain.LoanRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.loans {
		if r.loans[i].ID == id {
			rec := r.loans[i]
			return &rec
		}
	}
	return nil
}

// Upsert replaces the stored record with the same ID. Records are never
// inserted through this path; an unknown ID is a silent no-op.
func (r *LoanRepository) Upsert(ctx context.Context, rec domain.LoanRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.loans {
		if r.loans[i].ID == rec.ID {
			r.loans[i] = rec
			return
		}
	}
}

// All returns a copy of every stored loan in seed order.
func (r *LoanRepository) All(ctx context.Context) []domain.LoanRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.LoanRecord, len(r.loans))
	copy(out, r.loans)
	return out
}
