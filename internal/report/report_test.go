package report

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/loankeeper/internal/docstore"
	"github.com/dmitrijs2005/loankeeper/internal/logging"
	"github.com/dmitrijs2005/loankeeper/internal/models"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestWriteCSV(t *testing.T) {
	loans := []models.Loan{
		{LenderName: "HDFC", Type: models.LenderTypeBank, Date: "2026-01-10",
			DueDate: "2026-06-10", TotalAmount: dec(10000), PaidAmount: dec(3000)},
		{LenderName: "Uncle", Type: models.LenderTypeIndividual, Date: "2026-02-01",
			TotalAmount: dec(500), PaidAmount: dec(500)},
	}
	payments := []models.Payment{
		{LenderName: "HDFC", Date: "2026-01-10", Amount: dec(3000), Note: "upfront"},
		{Date: "2026-02-01", Amount: dec(500)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, loans, payments))
	out := buf.String()

	assert.Contains(t, out, "SUMMARY\n")
	assert.Contains(t, out, "Total Borrowed,Total Paid,Total Pending\n10500,3500,7000\n")
	assert.Contains(t, out, "LOAN SUMMARY\n")
	assert.Contains(t, out, "HDFC,Bank,2026-01-10,2026-06-10,10000,3000,7000\n")
	assert.Contains(t, out, "Uncle,Individual,2026-02-01,N/A,500,500,0\n")
	assert.Contains(t, out, "PAYMENT HISTORY\n")
	assert.Contains(t, out, "HDFC,2026-01-10,3000,upfront\n")
	assert.Contains(t, out, "N/A,2026-02-01,500,N/A\n")

	// loan section comes before the payment section
	assert.Less(t, strings.Index(out, "LOAN SUMMARY"), strings.Index(out, "PAYMENT HISTORY"))
}

func TestServiceCSV_FiltersByUser(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewLocalStore(filepath.Join(t.TempDir(), "data.json"), logging.NewNopLogger())
	svc := NewService(store, logging.NewNopLogger())

	mustCreate(t, store, models.CollectionLoans, map[string]any{
		"userId": "u1", "lenderName": "HDFC", "type": "Bank", "date": "2026-01-01",
		"totalAmount": "1000", "paidAmount": "0",
	})
	mustCreate(t, store, models.CollectionLoans, map[string]any{
		"userId": "u2", "lenderName": "Other", "type": "Bank", "date": "2026-01-01",
		"totalAmount": "9000", "paidAmount": "0",
	})

	var buf bytes.Buffer
	require.NoError(t, svc.CSV(ctx, &buf, "u1"))
	assert.Contains(t, buf.String(), "HDFC")
	assert.NotContains(t, buf.String(), "Other")
}

func TestServiceBackup(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewLocalStore(filepath.Join(t.TempDir(), "data.json"), logging.NewNopLogger())
	svc := NewService(store, logging.NewNopLogger())

	id := mustCreate(t, store, models.CollectionLenders, map[string]any{
		"userId": "u1", "name": "HDFC", "type": "Bank",
	})

	var buf bytes.Buffer
	require.NoError(t, svc.Backup(ctx, &buf))

	var out map[string][]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Contains(t, out, models.CollectionLenders)
	require.Len(t, out[models.CollectionLenders], 1)
	assert.Equal(t, id, out[models.CollectionLenders][0]["id"])
	assert.Equal(t, "HDFC", out[models.CollectionLenders][0]["name"])
}

func TestFileNames(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "Financial_Report_2026-03-15.csv", ReportFileName(now))
	assert.Equal(t, "LoanKeeper_Backup_2026-03-15.json", BackupFileName(now))
}

func mustCreate(t *testing.T, store docstore.Store, collection string, data map[string]any) string {
	t.Helper()
	id, err := store.Create(context.Background(), collection, data)
	require.NoError(t, err)
	return id
}
