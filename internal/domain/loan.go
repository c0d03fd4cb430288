package domain

import (
	"errors"
	"math"
	"strings"
	"time"
)

var (
	// ErrBlankPayer is returned when a payoff is attempted without a payer name.
	ErrBlankPayer = errors.New("payer name cannot be empty")
	// ErrNilLoan is returned when a nil loan is passed where a record is required.
	ErrNilLoan = errors.New("loan is nil")
)

type LoanKind string

const (
	KindRetail LoanKind = "Retail"
	KindLease  LoanKind = "Lease"
)

// RetailTerms holds the fields specific to an amortized installment loan.
type RetailTerms struct {
	InterestRate float64 `json:"interest_rate"` // annual percentage, e.g. 4.5 for 4.5%
	TermInMonths int     `json:"term_in_months"`
}

// LeaseTerms holds the fields specific to a fixed-payment lease agreement.
// ResidualValue is informational and plays no part in the fee calculation.
type LeaseTerms struct {
	MonthlyPayment  float64 `json:"monthly_payment"`
	LeaseTermMonths int     `json:"lease_term_months"`
	ResidualValue   float64 `json:"residual_value"`
}

// LoanRecord is a single vehicle loan. Kind selects which of Retail/Lease is
// populated; kind and the per-kind terms are fixed at construction. Only the
// status fields (IsPaidOff, PayoffAmount, PaidOffBy, PaidOffDate) ever change.
type LoanRecord struct {
	ID             int64        `json:"id"`
	CarID          int64        `json:"car_id"`
	Kind           LoanKind     `json:"kind"`
	OriginalAmount float64      `json:"original_amount"`
	PayoffAmount   float64      `json:"payoff_amount"`
	StartDate      time.Time    `json:"start_date"`
	IsPaidOff      bool         `json:"is_paid_off"`
	PaidOffBy      *string      `json:"paid_off_by,omitempty"`
	PaidOffDate    *time.Time   `json:"paid_off_date,omitempty"`
	Retail         *RetailTerms `json:"retail,omitempty"`
	Lease          *LeaseTerms  `json:"lease,omitempty"`
}

// MonthlyPayment returns the monthly installment for a retail loan using the
// standard amortization formula. A zero interest rate degenerates to exact
// division of the principal. Returns 0 for non-retail records.
func (l *LoanRecord) MonthlyPayment() float64 {
	if l.Kind != KindRetail || l.Retail == nil {
		return 0
	}

	if l.Retail.InterestRate == 0 {
		return l.OriginalAmount / float64(l.Retail.TermInMonths)
	}

	monthlyRate := l.Retail.InterestRate / 100 / 12
	power := math.Pow(1+monthlyRate, float64(l.Retail.TermInMonths))

	return l.OriginalAmount * monthlyRate * power / (power - 1)
}

// EarlyTerminationFee returns the penalty for ending a lease at the given
// moment: 50% of the remaining monthly payments, or 0 once the term has run
// out. Elapsed time is counted in approximate 30-day months, not calendar
// months. Returns 0 for non-lease records.
func (l *LoanRecord) EarlyTerminationFee(now time.Time) float64 {
	if l.Kind != KindLease || l.Lease == nil {
		return 0
	}

	elapsedMonths := int(now.Sub(l.StartDate).Hours() / 24 / 30)
	remainingMonths := l.Lease.LeaseTermMonths - elapsedMonths
	if remainingMonths <= 0 {
		return 0
	}

	return float64(remainingMonths) * l.Lease.MonthlyPayment * 0.5
}

// MarkPaidOff flips the record to its terminal settled state: zero balance,
// trimmed payer name and the payoff timestamp recorded. It does not check
// IsPaidOff; guarding against double payoff is the service's job.
func (l *LoanRecord) MarkPaidOff(payer string, now time.Time) error {
	payer = strings.TrimSpace(payer)
	if payer == "" {
		return ErrBlankPayer
	}

	l.IsPaidOff = true
	l.PaidOffBy = &payer
	l.PaidOffDate = &now
	l.PayoffAmount = 0

	return nil
}
