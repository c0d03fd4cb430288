package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestMonthlyPayment_WithInterest(t *testing.T) {
	loan := &LoanRecord{
		Kind:           KindRetail,
		OriginalAmount: 20000,
		Retail:         &RetailTerms{InterestRate: 5.0, TermInMonths: 60},
	}

	payment := loan.MonthlyPayment()

	if payment <= 0 {
		t.Fatalf("expected positive payment, got %f", payment)
	}
	if payment >= loan.OriginalAmount {
		t.Fatalf("payment %f should be less than principal %f", payment, loan.OriginalAmount)
	}
	// $20,000 at 5% over 60 months amortizes to about $377.42/month.
	if math.Abs(payment-377.42) > 0.01 {
		t.Fatalf("expected ~377.42, got %f", payment)
	}
}

func TestMonthlyPayment_ZeroInterest(t *testing.T) {
	loan := &LoanRecord{
		Kind:           KindRetail,
		OriginalAmount: 24000,
		Retail:         &RetailTerms{InterestRate: 0, TermInMonths: 48},
	}

	if payment := loan.MonthlyPayment(); payment != 500 {
		t.Fatalf("expected exactly 500, got %f", payment)
	}
}

func TestMonthlyPayment_NotRetail(t *testing.T) {
	loan := &LoanRecord{
		Kind:  KindLease,
		Lease: &LeaseTerms{MonthlyPayment: 300, LeaseTermMonths: 36},
	}

	if payment := loan.MonthlyPayment(); payment != 0 {
		t.Fatalf("expected 0 for a lease, got %f", payment)
	}
}

func TestEarlyTerminationFee_MidTerm(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	loan := &LoanRecord{
		Kind:      KindLease,
		StartDate: now.AddDate(0, -12, 0),
		Lease:     &LeaseTerms{MonthlyPayment: 300, LeaseTermMonths: 36},
	}

	// 12 months elapsed, 24 remaining: 24 * 300 * 0.5 = 3600.
	if fee := loan.EarlyTerminationFee(now); fee != 3600 {
		t.Fatalf("expected 3600, got %f", fee)
	}
}

func TestEarlyTerminationFee_TermElapsed(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	loan := &LoanRecord{
		Kind:      KindLease,
		StartDate: now.AddDate(-4, 0, 0),
		Lease:     &LeaseTerms{MonthlyPayment: 300, LeaseTermMonths: 36},
	}

	if fee := loan.EarlyTerminationFee(now); fee != 0 {
		t.Fatalf("expected no fee after term elapsed, got %f", fee)
	}
}

func TestEarlyTerminationFee_NotLease(t *testing.T) {
	loan := &LoanRecord{
		Kind:   KindRetail,
		Retail: &RetailTerms{InterestRate: 5, TermInMonths: 60},
	}

	if fee := loan.EarlyTerminationFee(time.Now()); fee != 0 {
		t.Fatalf("expected 0 for a retail loan, got %f", fee)
	}
}

func TestMarkPaidOff(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	loan := &LoanRecord{
		ID:             1,
		CarID:          1,
		Kind:           KindRetail,
		OriginalAmount: 20000,
		PayoffAmount:   15000,
		Retail:         &RetailTerms{InterestRate: 5, TermInMonths: 60},
	}

	if err := loan.MarkPaidOff("  John Doe  ", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !loan.IsPaidOff {
		t.Error("loan should be marked paid off")
	}
	if loan.PayoffAmount != 0 {
		t.Errorf("payoff amount should be zero, got %f", loan.PayoffAmount)
	}
	if loan.PaidOffBy == nil || *loan.PaidOffBy != "John Doe" {
		t.Errorf("expected trimmed payer name, got %v", loan.PaidOffBy)
	}
	if loan.PaidOffDate == nil || !loan.PaidOffDate.Equal(now) {
		t.Errorf("expected paid off date %v, got %v", now, loan.PaidOffDate)
	}
}

func TestMarkPaidOff_BlankPayer(t *testing.T) {
	for _, payer := range []string{"", "   ", "\t\n"} {
		loan := &LoanRecord{
			Kind:         KindRetail,
			PayoffAmount: 15000,
			Retail:       &RetailTerms{InterestRate: 5, TermInMonths: 60},
		}

		err := loan.MarkPaidOff(payer, time.Now())
		if !errors.Is(err, ErrBlankPayer) {
			t.Fatalf("payer %q: expected ErrBlankPayer, got %v", payer, err)
		}

		// The record must be left untouched on failure.
		if loan.IsPaidOff || loan.PaidOffBy != nil || loan.PaidOffDate != nil || loan.PayoffAmount != 15000 {
			t.Fatalf("payer %q: record changed after failed payoff: %+v", payer, loan)
		}
	}
}
