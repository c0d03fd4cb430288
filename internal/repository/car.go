package repository

import (
	"context"
	"sync"

	"carloan-service/internal/domain"
)

// CarRepository is an in-memory store of vehicles, same shape as
// LoanRepository. The Loan field on stored cars is always nil; attaching
// loans is the car service's job.
type CarRepository struct {
	mu   sync.RWMutex
	cars []domain.Car
}

func NewCarRepository(seed []domain.Car) *CarRepository {
	cars := make([]domain.Car, len(seed))
	copy(cars, seed)
	return &CarRepository{cars: cars}
}

// ListByUserID returns copies of all cars owned by the given user.
func (r *CarRepository) ListByUserID(ctx context.Context, userID int64) []domain.Car {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Car
	for i := range r.cars {
		if r.cars[i].UserID == userID {
			out = append(out, r.cars[i])
		}
	}
	return out
}

// FindByID returns a copy of the car with the given id, or nil.
func (r *CarRepository) FindByID(ctx context.Context, id int64) *domain.Car {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.cars {
		if r.cars[i].ID == id {
			car := r.cars[i]
			return &car
		}
	}
	return nil
}

// Update replaces the vehicle fields of the stored car with the same ID;
// unknown IDs are a no-op. Ownership and loan linkage are not touched.
func (r *CarRepository) Update(ctx context.Context, car domain.Car) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.cars {
		if r.cars[i].ID == car.ID {
			r.cars[i].Make = car.Make
			r.cars[i].Model = car.Model
			r.cars[i].Year = car.Year
			r.cars[i].VIN = car.VIN
			return
		}
	}
}
