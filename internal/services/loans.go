package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/loankeeper/internal/common"
	"github.com/dmitrijs2005/loankeeper/internal/docstore"
	"github.com/dmitrijs2005/loankeeper/internal/logging"
	"github.com/dmitrijs2005/loankeeper/internal/models"
)

// LoanService owns the loan/payment mutation paths and the derived
// balance they maintain: after every successful mutation sequence,
// loan.paidAmount equals the sum of the loan's payments.
//
// Every path is two sequential writes with no transaction around them.
// If the second write fails the first one persists; Reconcile recomputes
// paid amounts from payments and self-heals that drift.
type LoanService struct {
	store  docstore.Store
	logger logging.Logger
}

func NewLoanService(store docstore.Store, logger logging.Logger) *LoanService {
	return &LoanService{store: store, logger: logger.With("component", "loans")}
}

type CreateLoanInput struct {
	LenderID      string
	Date          string
	DueDate       string
	TotalAmount   decimal.Decimal
	UpfrontAmount decimal.Decimal
	Notes         string
	DocumentKey   string
}

// CreateLoan records a borrowing event. A nonzero upfront amount seeds
// paidAmount and is backed by a companion payment created right after
// the loan; the lender name and type are copied onto the loan and
// frozen there.
func (s *LoanService) CreateLoan(ctx context.Context, userID string, in CreateLoanInput) (*models.Loan, error) {
	if in.LenderID == "" {
		return nil, common.ErrLenderRequired
	}
	if !in.TotalAmount.IsPositive() {
		return nil, common.ErrAmountNotPositive
	}
	if in.UpfrontAmount.IsNegative() || in.UpfrontAmount.GreaterThan(in.TotalAmount) {
		return nil, common.ErrPaidExceedsTotal
	}
	if in.Date == "" {
		in.Date = time.Now().UTC().Format(models.DateLayout)
	}

	lender, err := s.getLender(ctx, userID, in.LenderID)
	if err != nil {
		return nil, err
	}

	loan := &models.Loan{
		UserID:      userID,
		LenderID:    lender.ID,
		LenderName:  lender.Name,
		Type:        lender.Type,
		Date:        in.Date,
		DueDate:     in.DueDate,
		TotalAmount: in.TotalAmount,
		PaidAmount:  in.UpfrontAmount,
		Notes:       in.Notes,
		DocumentKey: in.DocumentKey,
	}
	data, err := docstore.Encode(loan)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Create(ctx, models.CollectionLoans, data)
	if err != nil {
		return nil, fmt.Errorf("create loan: %w", err)
	}
	loan.ID = id

	if in.UpfrontAmount.IsPositive() {
		payment := &models.Payment{
			UserID:     userID,
			LoanID:     id,
			LenderName: lender.Name,
			Amount:     in.UpfrontAmount,
			Date:       in.Date,
			Note:       "Initial payment at loan creation",
			Upfront:    true,
			CreatedAt:  time.Now().UTC(),
		}
		pdata, err := docstore.Encode(payment)
		if err != nil {
			return loan, err
		}
		if _, err := s.store.Create(ctx, models.CollectionPayments, pdata); err != nil {
			// the loan now carries a paid amount unbacked by any payment
			// record until the next Reconcile
			s.logger.Error(ctx, "upfront payment not recorded", "loanId", id, "error", err)
			return loan, fmt.Errorf("record upfront payment: %w", err)
		}
	}

	return loan, nil
}

type UpdateLoanInput struct {
	Date        string
	DueDate     string
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
	Notes       string
	DocumentKey string
}

// UpdateLoan edits loan attributes. The paid amount is bounded by the
// total at form level; keeping it consistent with the payment records
// remains the payment paths' job.
func (s *LoanService) UpdateLoan(ctx context.Context, userID, loanID string, in UpdateLoanInput) error {
	if !in.TotalAmount.IsPositive() {
		return common.ErrAmountNotPositive
	}
	if in.PaidAmount.IsNegative() || in.PaidAmount.GreaterThan(in.TotalAmount) {
		return common.ErrPaidExceedsTotal
	}
	if _, err := s.GetLoan(ctx, userID, loanID); err != nil {
		return err
	}

	return s.store.Update(ctx, models.CollectionLoans, loanID, map[string]any{
		"date":        in.Date,
		"dueDate":     in.DueDate,
		"totalAmount": in.TotalAmount,
		"paidAmount":  in.PaidAmount,
		"notes":       in.Notes,
		"documentKey": in.DocumentKey,
	})
}

// DeleteLoan removes the loan document only. Its payments are left in
// place as orphans; they are invisible to loan-scoped queries.
func (s *LoanService) DeleteLoan(ctx context.Context, userID, loanID string) error {
	if _, err := s.GetLoan(ctx, userID, loanID); err != nil {
		return err
	}
	return s.store.Delete(ctx, models.CollectionLoans, loanID)
}

// AddPayment validates the amount against the remaining balance loaded
// at submission time, creates the payment, then bumps the loan's paid
// amount as a second write.
func (s *LoanService) AddPayment(ctx context.Context, userID, loanID string, amount decimal.Decimal, date, note string) (*models.Payment, error) {
	loan, err := s.GetLoan(ctx, userID, loanID)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, common.ErrAmountNotPositive
	}
	if amount.GreaterThan(loan.Remaining()) {
		return nil, common.ErrAmountExceedsDue
	}
	if date == "" {
		date = time.Now().UTC().Format(models.DateLayout)
	}

	payment := &models.Payment{
		UserID:     userID,
		LoanID:     loanID,
		LenderName: loan.LenderName,
		Amount:     amount,
		Date:       date,
		Note:       note,
		CreatedAt:  time.Now().UTC(),
	}
	data, err := docstore.Encode(payment)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Create(ctx, models.CollectionPayments, data)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	payment.ID = id

	newPaid := loan.PaidAmount.Add(amount)
	if err := s.store.Update(ctx, models.CollectionLoans, loanID, map[string]any{"paidAmount": newPaid}); err != nil {
		s.logger.Error(ctx, "paid amount not updated", "loanId", loanID, "error", err)
		return payment, fmt.Errorf("update paid amount: %w", err)
	}

	return payment, nil
}

// EditPayment replaces a payment's amount/date/note. The amount bound
// temporarily re-admits the amount being replaced.
func (s *LoanService) EditPayment(ctx context.Context, userID, paymentID string, amount decimal.Decimal, date, note string) error {
	payment, err := s.getPayment(ctx, userID, paymentID)
	if err != nil {
		return err
	}
	loan, err := s.GetLoan(ctx, userID, payment.LoanID)
	if err != nil {
		return err
	}

	if !amount.IsPositive() {
		return common.ErrAmountNotPositive
	}
	maxAllowed := loan.Remaining().Add(payment.Amount)
	if amount.GreaterThan(maxAllowed) {
		return common.ErrAmountExceedsDue
	}
	if date == "" {
		date = payment.Date
	}

	patch := map[string]any{"amount": amount, "date": date, "note": note}
	if err := s.store.Update(ctx, models.CollectionPayments, paymentID, patch); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}

	newPaid := loan.PaidAmount.Sub(payment.Amount).Add(amount)
	if err := s.store.Update(ctx, models.CollectionLoans, loan.ID, map[string]any{"paidAmount": newPaid}); err != nil {
		s.logger.Error(ctx, "paid amount not updated", "loanId", loan.ID, "error", err)
		return fmt.Errorf("update paid amount: %w", err)
	}
	return nil
}

// DeletePayment removes the payment, then lowers the loan's paid amount,
// flooring at zero so a duplicate or inconsistent delete can never drive
// it negative.
func (s *LoanService) DeletePayment(ctx context.Context, userID, paymentID string) error {
	payment, err := s.getPayment(ctx, userID, paymentID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, models.CollectionPayments, paymentID); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}

	loan, err := s.GetLoan(ctx, userID, payment.LoanID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// orphaned payment, nothing to adjust
			return nil
		}
		return err
	}

	newPaid := loan.PaidAmount.Sub(payment.Amount)
	if newPaid.IsNegative() {
		newPaid = decimal.Zero
	}
	if err := s.store.Update(ctx, models.CollectionLoans, loan.ID, map[string]any{"paidAmount": newPaid}); err != nil {
		s.logger.Error(ctx, "paid amount not updated", "loanId", loan.ID, "error", err)
		return fmt.Errorf("update paid amount: %w", err)
	}
	return nil
}

// Reconcile recomputes every loan's paid amount from its payments and
// rewrites the ones that drifted, healing interrupted two-write
// sequences. Returns the number of loans fixed.
func (s *LoanService) Reconcile(ctx context.Context, userID string) (int, error) {
	loans, err := s.ListLoans(ctx, userID)
	if err != nil {
		return 0, err
	}
	payments, err := s.ListPayments(ctx, userID)
	if err != nil {
		return 0, err
	}

	sums := make(map[string]decimal.Decimal, len(loans))
	for _, p := range payments {
		sums[p.LoanID] = sums[p.LoanID].Add(p.Amount)
	}

	fixed := 0
	for _, loan := range loans {
		want := sums[loan.ID]
		if loan.PaidAmount.Equal(want) {
			continue
		}
		if err := s.store.Update(ctx, models.CollectionLoans, loan.ID, map[string]any{"paidAmount": want}); err != nil {
			return fixed, fmt.Errorf("reconcile loan %s: %w", loan.ID, err)
		}
		s.logger.Warn(ctx, "paid amount reconciled",
			"loanId", loan.ID, "was", loan.PaidAmount.String(), "now", want.String())
		fixed++
	}
	return fixed, nil
}

func (s *LoanService) GetLoan(ctx context.Context, userID, loanID string) (*models.Loan, error) {
	q := docstore.C(models.CollectionLoans).
		Where(docstore.Eq("id", loanID), docstore.Eq("userId", userID))
	docs, err := docstore.GetOnce(ctx, s.store, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.ErrorNotFound
	}
	loan := &models.Loan{}
	if err := docs[0].Decode(loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// ListLoans returns the user's loans newest-first by origination date.
func (s *LoanService) ListLoans(ctx context.Context, userID string) ([]models.Loan, error) {
	q := docstore.C(models.CollectionLoans).Where(docstore.Eq("userId", userID))
	docs, err := docstore.GetOnce(ctx, s.store, q)
	if err != nil {
		return nil, err
	}
	loans, err := docstore.DecodeAll[models.Loan](docs)
	if err != nil {
		return nil, err
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].Date > loans[j].Date })
	return loans, nil
}

// ListPayments returns the user's payments newest-first.
func (s *LoanService) ListPayments(ctx context.Context, userID string) ([]models.Payment, error) {
	q := docstore.C(models.CollectionPayments).Where(docstore.Eq("userId", userID))
	docs, err := docstore.GetOnce(ctx, s.store, q)
	if err != nil {
		return nil, err
	}
	payments, err := docstore.DecodeAll[models.Payment](docs)
	if err != nil {
		return nil, err
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].Date > payments[j].Date })
	return payments, nil
}

// LoanPayments returns one loan's payments newest-first.
func (s *LoanService) LoanPayments(ctx context.Context, userID, loanID string) ([]models.Payment, error) {
	q := docstore.C(models.CollectionPayments).
		Where(docstore.Eq("userId", userID), docstore.Eq("loanId", loanID))
	docs, err := docstore.GetOnce(ctx, s.store, q)
	if err != nil {
		return nil, err
	}
	payments, err := docstore.DecodeAll[models.Payment](docs)
	if err != nil {
		return nil, err
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].Date > payments[j].Date })
	return payments, nil
}

func (s *LoanService) getPayment(ctx context.Context, userID, paymentID string) (*models.Payment, error) {
	q := docstore.C(models.CollectionPayments).
		Where(docstore.Eq("id", paymentID), docstore.Eq("userId", userID))
	docs, err := docstore.GetOnce(ctx, s.store, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.ErrorNotFound
	}
	payment := &models.Payment{}
	if err := docs[0].Decode(payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *LoanService) getLender(ctx context.Context, userID, lenderID string) (*models.Lender, error) {
	q := docstore.C(models.CollectionLenders).
		Where(docstore.Eq("id", lenderID), docstore.Eq("userId", userID))
	docs, err := docstore.GetOnce(ctx, s.store, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.ErrorNotFound
	}
	lender := &models.Lender{}
	if err := docs[0].Decode(lender); err != nil {
		return nil, err
	}
	return lender, nil
}
