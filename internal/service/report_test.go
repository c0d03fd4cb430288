package service

import (
	"context"
	"testing"
	"time"

	"carloan-service/internal/domain"
)

func TestBuildLoansWorkbook(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	payer := "John Doe"
	paidAt := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	cars := []domain.Car{
		{
			ID: 1, Make: "Honda", Model: "Civic", Year: 2023, VIN: "VIN0001",
			Loan: &domain.LoanRecord{
				ID: 1, CarID: 1, Kind: domain.KindLease,
				OriginalAmount: 18000,
				StartDate:      now.AddDate(0, -12, 0),
				Lease:          &domain.LeaseTerms{MonthlyPayment: 300, LeaseTermMonths: 36},
			},
		},
		{
			ID: 2, Make: "Ford", Model: "F-150", Year: 2022, VIN: "VIN0002",
			Loan: &domain.LoanRecord{
				ID: 2, CarID: 2, Kind: domain.KindRetail,
				OriginalAmount: 40000, IsPaidOff: true,
				StartDate: time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC),
				PaidOffBy: &payer, PaidOffDate: &paidAt,
				Retail: &domain.RetailTerms{InterestRate: 5, TermInMonths: 60},
			},
		},
		{ID: 3, Make: "Porsche", Model: "Macan", Year: 2024, VIN: "VIN0003"},
	}

	svc := NewReportService(nil, nil, nil, nil)
	f, err := svc.BuildLoansWorkbook(cars, now)
	if err != nil {
		t.Fatalf("BuildLoansWorkbook: %v", err)
	}
	defer f.Close()

	cell := func(ref string) string {
		v, err := f.GetCellValue("Loans", ref)
		if err != nil {
			t.Fatalf("get cell %s: %v", ref, err)
		}
		return v
	}

	if got := cell("A1"); got != "Vehicle" {
		t.Errorf("A1 = %q, want Vehicle", got)
	}
	if got := cell("K1"); got != "Paid Off Date" {
		t.Errorf("K1 = %q, want Paid Off Date", got)
	}

	if got := cell("A2"); got != "2023 Honda Civic" {
		t.Errorf("A2 = %q", got)
	}
	// 12 of 36 lease months elapsed: 24 * 300 * 0.5
	if got := cell("H2"); got != "3600" {
		t.Errorf("early termination fee = %q, want 3600", got)
	}
	if got := cell("I2"); got != "Active" {
		t.Errorf("status = %q, want Active", got)
	}

	if got := cell("I3"); got != "Paid off" {
		t.Errorf("status = %q, want Paid off", got)
	}
	if got := cell("J3"); got != "John Doe" {
		t.Errorf("paid off by = %q, want John Doe", got)
	}
	if got := cell("K3"); got != "2025-06-10" {
		t.Errorf("paid off date = %q, want 2025-06-10", got)
	}

	if got := cell("I4"); got != "Owned outright" {
		t.Errorf("status = %q, want Owned outright", got)
	}
	if got := cell("C4"); got != "" {
		t.Errorf("loan type for loan-free car = %q, want empty", got)
	}
}

func TestReportService_RequiresRedis(t *testing.T) {
	svc := NewReportService(nil, nil, nil, nil)
	ctx := context.Background()

	if _, err := svc.GetReports(ctx, 1); err == nil {
		t.Error("GetReports without redis did not error")
	}
	if _, err := svc.GetReport(ctx, "reports:x", 1); err == nil {
		t.Error("GetReport without redis did not error")
	}
}
