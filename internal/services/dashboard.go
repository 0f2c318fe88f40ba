package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/loankeeper/internal/models"
)

// recentLimit caps the recent-activity lists on the dashboard.
const recentLimit = 6

// Summary is the dashboard aggregate over one user's portfolio.
type Summary struct {
	TotalBorrowed  decimal.Decimal
	TotalPaid      decimal.Decimal
	TotalPending   decimal.Decimal
	ActiveLoans    int
	PerLender      []LenderOutstanding
	RecentLoans    []models.Loan
	RecentPayments []models.Payment
}

// LenderOutstanding is one lender's share of the pending balance, keyed
// by the denormalized lender name frozen on each loan.
type LenderOutstanding struct {
	Name        string
	Outstanding decimal.Decimal
}

// BuildSummary aggregates already-fetched loans and payments. Pure so it
// can be driven both from one-shot reads and from live subscriptions.
func BuildSummary(loans []models.Loan, payments []models.Payment) Summary {
	s := Summary{}
	byLender := make(map[string]decimal.Decimal)
	for _, l := range loans {
		s.TotalBorrowed = s.TotalBorrowed.Add(l.TotalAmount)
		s.TotalPaid = s.TotalPaid.Add(l.PaidAmount)
		if l.Remaining().IsPositive() {
			s.ActiveLoans++
			byLender[l.LenderName] = byLender[l.LenderName].Add(l.Remaining())
		}
	}
	s.TotalPending = s.TotalBorrowed.Sub(s.TotalPaid)

	for name, outstanding := range byLender {
		s.PerLender = append(s.PerLender, LenderOutstanding{Name: name, Outstanding: outstanding})
	}
	sort.Slice(s.PerLender, func(i, j int) bool {
		if !s.PerLender[i].Outstanding.Equal(s.PerLender[j].Outstanding) {
			return s.PerLender[i].Outstanding.GreaterThan(s.PerLender[j].Outstanding)
		}
		return s.PerLender[i].Name < s.PerLender[j].Name
	})

	recentLoans := make([]models.Loan, len(loans))
	copy(recentLoans, loans)
	sort.Slice(recentLoans, func(i, j int) bool { return recentLoans[i].Date > recentLoans[j].Date })
	if len(recentLoans) > recentLimit {
		recentLoans = recentLoans[:recentLimit]
	}
	s.RecentLoans = recentLoans

	recentPayments := make([]models.Payment, len(payments))
	copy(recentPayments, payments)
	sort.Slice(recentPayments, func(i, j int) bool { return recentPayments[i].Date > recentPayments[j].Date })
	if len(recentPayments) > recentLimit {
		recentPayments = recentPayments[:recentLimit]
	}
	s.RecentPayments = recentPayments

	return s
}

// Summary fetches the user's loans and payments and aggregates them.
func (s *LoanService) Summary(ctx context.Context, userID string) (Summary, error) {
	loans, err := s.ListLoans(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	payments, err := s.ListPayments(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	return BuildSummary(loans, payments), nil
}
