package docstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/loankeeper/internal/logging"
	"github.com/dmitrijs2005/loankeeper/internal/models"
)

func TestQueryWhere_DoesNotMutateReceiver(t *testing.T) {
	base := C("loans").Where(Eq("userId", "u1"))
	withLender := base.Where(Eq("lenderId", "l1"))

	assert.Len(t, base.Filters, 1)
	assert.Len(t, withLender.Filters, 2)
	assert.Equal(t, "loans", withLender.Collection)
}

func TestEncode_StripsID(t *testing.T) {
	loan := &models.Loan{
		ID:          "id_stale",
		UserID:      "u1",
		TotalAmount: decimal.NewFromInt(5000),
	}
	data, err := Encode(loan)
	require.NoError(t, err)

	_, hasID := data["id"]
	assert.False(t, hasID)
	assert.Equal(t, "u1", data["userId"])
}

func TestDocumentDecode_RoundTrip(t *testing.T) {
	in := &models.Payment{
		UserID: "u1",
		LoanID: "loan1",
		Amount: decimal.RequireFromString("1234.56"),
		Date:   "2026-03-01",
		Note:   "march installment",
	}
	data, err := Encode(in)
	require.NoError(t, err)

	doc := Document{ID: "id_abc123", Data: data}
	var out models.Payment
	require.NoError(t, doc.Decode(&out))

	assert.Equal(t, "id_abc123", out.ID)
	assert.Equal(t, "loan1", out.LoanID)
	assert.True(t, out.Amount.Equal(decimal.RequireFromString("1234.56")))
}

func TestMatches_EqualityConjunction(t *testing.T) {
	doc := map[string]any{"userId": "u1", "loanId": "l1", "amount": float64(300)}

	assert.True(t, matches(doc, nil))
	assert.True(t, matches(doc, []Filter{Eq("userId", "u1")}))
	assert.True(t, matches(doc, []Filter{Eq("userId", "u1"), Eq("loanId", "l1")}))
	assert.False(t, matches(doc, []Filter{Eq("userId", "u1"), Eq("loanId", "other")}))

	// numeric values compare across Go types via JSON normalization
	assert.True(t, matches(doc, []Filter{Eq("amount", 300)}))

	// non-equality operators are accepted but do not filter
	assert.True(t, matches(doc, []Filter{{Field: "amount", Op: ">", Value: 1000000}}))
}

func TestGetOnce(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(filepath.Join(t.TempDir(), "data.json"), logging.NewNopLogger())

	_, err := s.Create(ctx, "lenders", map[string]any{"userId": "u1", "name": "HDFC"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "lenders", map[string]any{"userId": "u2", "name": "Uncle"})
	require.NoError(t, err)

	docs, err := GetOnce(ctx, s, C("lenders").Where(Eq("userId", "u1")))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "HDFC", docs[0].Data["name"])

	// no subscriptions left behind
	s.mu.Lock()
	assert.Empty(t, s.subs)
	s.mu.Unlock()
}
