package repository

import (
	"log"
	"time"

	"carloan-service/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// SeedData is the initial dataset loaded once at process start. There is no
// runtime loan origination; everything the service manages comes from here.
type SeedData struct {
	Users []domain.User
	Cars  []domain.Car
	Loans []domain.LoanRecord
}

func strp(s string) *string { return &s }

func timep(t time.Time) *time.Time { return &t }

// Seed builds the demo dataset: two users, nine cars and eight loans in a
// mix of active, settled and loan-free states. Loan start dates are relative
// to now so the lease fee math stays meaningful.
func Seed(now time.Time) SeedData {
	hash := func(password string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("seed: hash password: %v", err)
		}
		return string(h)
	}

	users := []domain.User{
		{ID: 1, Username: "john", PasswordHash: hash("password123"), FullName: "John Doe"},
		{ID: 2, Username: "jane", PasswordHash: hash("password456"), FullName: "Jane Smith"},
	}

	cars := []domain.Car{
		{ID: 1, Make: "Tesla", Model: "Model 3", Year: 2023, VIN: "5YJ3E1EA5PF123456", UserID: 1},
		{ID: 2, Make: "BMW", Model: "330i", Year: 2022, VIN: "WBA5R1C05NDT12345", UserID: 1},
		{ID: 3, Make: "Toyota", Model: "Prius", Year: 2024, VIN: "JTDKARFP8P3123456", UserID: 1},
		{ID: 4, Make: "Ford", Model: "F-150", Year: 2021, VIN: "1FTFW1E84MFC12345", UserID: 1},
		{ID: 5, Make: "Audi", Model: "Q7", Year: 2023, VIN: "WA1LMAF71PD123456", UserID: 2},
		{ID: 6, Make: "Mercedes-Benz", Model: "C-Class", Year: 2022, VIN: "55SWF8DB5NU123456", UserID: 2},
		{ID: 7, Make: "Lexus", Model: "RX 350", Year: 2024, VIN: "2T2BZMCA8PC123456", UserID: 2},
		{ID: 8, Make: "Honda", Model: "Accord", Year: 2020, VIN: "1HGCV1F36LA123456", UserID: 2},
		// Car 9 is owned outright, no loan.
		{ID: 9, Make: "Porsche", Model: "Macan", Year: 2023, VIN: "WP1AB2A59PLB12345", UserID: 2},
	}

	loans := []domain.LoanRecord{
		{
			ID: 1, CarID: 1, Kind: domain.KindRetail,
			OriginalAmount: 52000, PayoffAmount: 44200,
			StartDate: now.AddDate(0, -8, 0),
			Retail:    &domain.RetailTerms{InterestRate: 3.25, TermInMonths: 72},
		},
		{
			ID: 2, CarID: 2, Kind: domain.KindLease,
			OriginalAmount: 48000, PayoffAmount: 35000,
			StartDate: now.AddDate(0, -14, 0),
			Lease:     &domain.LeaseTerms{MonthlyPayment: 525, LeaseTermMonths: 36, ResidualValue: 28000},
		},
		{
			ID: 3, CarID: 3, Kind: domain.KindRetail,
			OriginalAmount: 28000, PayoffAmount: 0,
			StartDate: now.AddDate(0, -24, 0),
			IsPaidOff: true, PaidOffBy: strp("John Doe"), PaidOffDate: timep(now.AddDate(0, 0, -15)),
			Retail: &domain.RetailTerms{InterestRate: 2.9, TermInMonths: 60},
		},
		{
			ID: 4, CarID: 4, Kind: domain.KindRetail,
			OriginalAmount: 65000, PayoffAmount: 58900,
			StartDate: now.AddDate(0, -6, 0),
			Retail:    &domain.RetailTerms{InterestRate: 4.75, TermInMonths: 84},
		},
		{
			ID: 5, CarID: 5, Kind: domain.KindLease,
			OriginalAmount: 72000, PayoffAmount: 52000,
			StartDate: now.AddDate(0, -10, 0),
			Lease:     &domain.LeaseTerms{MonthlyPayment: 775, LeaseTermMonths: 39, ResidualValue: 42000},
		},
		{
			ID: 6, CarID: 6, Kind: domain.KindRetail,
			OriginalAmount: 42000, PayoffAmount: 12800,
			StartDate: now.AddDate(0, -36, 0),
			Retail:    &domain.RetailTerms{InterestRate: 3.5, TermInMonths: 60},
		},
		{
			ID: 7, CarID: 7, Kind: domain.KindLease,
			OriginalAmount: 55000, PayoffAmount: 51000,
			StartDate: now.AddDate(0, -3, 0),
			Lease:     &domain.LeaseTerms{MonthlyPayment: 625, LeaseTermMonths: 36, ResidualValue: 32000},
		},
		{
			ID: 8, CarID: 8, Kind: domain.KindRetail,
			OriginalAmount: 32000, PayoffAmount: 0,
			StartDate: now.AddDate(0, -48, 0),
			IsPaidOff: true, PaidOffBy: strp("Jane Smith"), PaidOffDate: timep(now.AddDate(0, -12, 0)),
			Retail: &domain.RetailTerms{InterestRate: 4.2, TermInMonths: 60},
		},
	}

	return SeedData{Users: users, Cars: cars, Loans: loans}
}
