package service

import (
	"context"

	"carloan-service/internal/domain"
)

type CarStore interface {
	ListByUserID(ctx context.Context, userID int64) []domain.Car
	FindByID(ctx context.Context, id int64) *domain.Car
	Update(ctx context.Context, car domain.Car)
}

// CarService joins vehicles with their loans for presentation.
type CarService struct {
	cars  CarStore
	loans LoanStore
}

func NewCarService(cars CarStore, loans LoanStore) *CarService {
	return &CarService{cars: cars, loans: loans}
}

// CarsByUserID returns the user's cars with their loans attached. Cars owned
// outright come back with a nil Loan.
func (s *CarService) CarsByUserID(ctx context.Context, userID int64) []domain.Car {
	cars := s.cars.ListByUserID(ctx, userID)
	for i := range cars {
		cars[i].Loan = s.loans.FindByCarID(ctx, cars[i].ID)
	}
	return cars
}

// CarByID returns a single car with its loan attached, or nil.
func (s *CarService) CarByID(ctx context.Context, carID int64) *domain.Car {
	car := s.cars.FindByID(ctx, carID)
	if car == nil {
		return nil
	}
	car.Loan = s.loans.FindByCarID(ctx, carID)
	return car
}

// UpdateCar persists changes to the vehicle fields only.
func (s *CarService) UpdateCar(ctx context.Context, car domain.Car) {
	s.cars.Update(ctx, car)
}
