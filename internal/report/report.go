// Package report renders the portfolio report and the whole-database
// backup. The CSV layout keeps the historical section structure so the
// files stay importable into the same spreadsheets.
package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/loankeeper/internal/docstore"
	"github.com/dmitrijs2005/loankeeper/internal/logging"
	"github.com/dmitrijs2005/loankeeper/internal/models"
)

const reportTitle = "DATA REPORT - LOANKEEPER"

type Service struct {
	store  docstore.Store
	logger logging.Logger
}

func NewService(store docstore.Store, logger logging.Logger) *Service {
	return &Service{store: store, logger: logger.With("component", "report")}
}

// CSV writes the user's report: a totals section, the loan summary and
// the payment history, newest records last in entry order.
func (s *Service) CSV(ctx context.Context, w io.Writer, userID string) error {
	loans, err := s.userLoans(ctx, userID)
	if err != nil {
		return err
	}
	payments, err := s.userPayments(ctx, userID)
	if err != nil {
		return err
	}
	return WriteCSV(w, loans, payments)
}

// WriteCSV renders the report for already-fetched records.
func WriteCSV(w io.Writer, loans []models.Loan, payments []models.Payment) error {
	cw := csv.NewWriter(w)

	var borrowed, paid decimal.Decimal
	for _, l := range loans {
		borrowed = borrowed.Add(l.TotalAmount)
		paid = paid.Add(l.PaidAmount)
	}

	rows := [][]string{
		{reportTitle},
		{},
		{"SUMMARY"},
		{"Total Borrowed", "Total Paid", "Total Pending"},
		{borrowed.String(), paid.String(), borrowed.Sub(paid).String()},
		{},
		{"LOAN SUMMARY"},
		{"Lender", "Type", "Date", "Due Date", "Total Amount", "Paid Amount", "Remaining"},
	}
	for _, l := range loans {
		rows = append(rows, []string{
			l.LenderName, string(l.Type), l.Date, orNA(l.DueDate),
			l.TotalAmount.String(), l.PaidAmount.String(), l.Remaining().String(),
		})
	}

	rows = append(rows, []string{}, []string{"PAYMENT HISTORY"},
		[]string{"Lender", "Date", "Amount", "Note"})
	for _, p := range payments {
		rows = append(rows, []string{orNA(p.LenderName), p.Date, p.Amount.String(), orNA(p.Note)})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Backup writes the full database snapshot as indented JSON, one array
// per collection with ids inlined into each record.
func (s *Service) Backup(ctx context.Context, w io.Writer) error {
	snapshot, err := s.store.Dump(ctx)
	if err != nil {
		return err
	}

	out := make(map[string][]map[string]any, len(snapshot))
	for collection, docs := range snapshot {
		records := make([]map[string]any, 0, len(docs))
		for _, d := range docs {
			record := make(map[string]any, len(d.Data)+1)
			for k, v := range d.Data {
				record[k] = v
			}
			record["id"] = d.ID
			records = append(records, record)
		}
		sort.Slice(records, func(i, j int) bool {
			a, _ := records[i]["id"].(string)
			b, _ := records[j]["id"].(string)
			return a < b
		})
		out[collection] = records
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// ReportFileName returns the dated default name for the CSV report.
func ReportFileName(now time.Time) string {
	return fmt.Sprintf("Financial_Report_%s.csv", now.Format(models.DateLayout))
}

// BackupFileName returns the dated default name for the JSON backup.
func BackupFileName(now time.Time) string {
	return fmt.Sprintf("LoanKeeper_Backup_%s.json", now.Format(models.DateLayout))
}

func (s *Service) userLoans(ctx context.Context, userID string) ([]models.Loan, error) {
	q := docstore.C(models.CollectionLoans).Where(docstore.Eq("userId", userID))
	docs, err := docstore.GetOnce(ctx, s.store, q)
	if err != nil {
		return nil, err
	}
	loans, err := docstore.DecodeAll[models.Loan](docs)
	if err != nil {
		return nil, err
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].Date < loans[j].Date })
	return loans, nil
}

func (s *Service) userPayments(ctx context.Context, userID string) ([]models.Payment, error) {
	q := docstore.C(models.CollectionPayments).Where(docstore.Eq("userId", userID))
	docs, err := docstore.GetOnce(ctx, s.store, q)
	if err != nil {
		return nil, err
	}
	payments, err := docstore.DecodeAll[models.Payment](docs)
	if err != nil {
		return nil, err
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].Date < payments[j].Date })
	return payments, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
