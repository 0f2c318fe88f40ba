package docstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/loankeeper/internal/logging"
)

func newLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	return NewLocalStore(path, logging.NewNopLogger())
}

func TestLocalStore_CreateAssignsPrefixedID(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	id, err := s.Create(ctx, "loans", map[string]any{"userId": "u1"})
	require.NoError(t, err)
	assert.Regexp(t, `^id_[0-9a-f]{12}$`, id)

	docs, err := GetOnce(ctx, s, C("loans"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].ID)
	assert.Equal(t, id, docs[0].Data["id"])
}

func TestLocalStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.json")

	s1 := NewLocalStore(path, logging.NewNopLogger())
	id, err := s1.Create(ctx, "lenders", map[string]any{"userId": "u1", "name": "SBI"})
	require.NoError(t, err)

	s2 := NewLocalStore(path, logging.NewNopLogger())
	docs, err := GetOnce(ctx, s2, C("lenders"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].ID)
}

func TestLocalStore_LoadToleratesDamagedFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := NewLocalStore(path, logging.NewNopLogger())
	docs, err := GetOnce(ctx, s, C("loans"))
	require.NoError(t, err)
	assert.Empty(t, docs)

	// known collections are always present in the skeleton
	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	for _, c := range localCollections {
		_, ok := dump[c]
		assert.True(t, ok, "missing collection %s", c)
	}
}

func TestLocalStore_UpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	id, err := s.Create(ctx, "loans", map[string]any{"userId": "u1", "paidAmount": "0", "notes": "car"})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, "loans", id, map[string]any{"paidAmount": "500"}))

	docs, err := GetOnce(ctx, s, C("loans"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "500", docs[0].Data["paidAmount"])
	assert.Equal(t, "car", docs[0].Data["notes"], "untouched fields survive a merge")
}

func TestLocalStore_UpdateMissingIsSilentNoop(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	notified := 0
	cancel, err := s.Subscribe(ctx, C("loans"), func(docs []Document) { notified++ })
	require.NoError(t, err)
	defer cancel()
	require.Equal(t, 1, notified)

	require.NoError(t, s.Update(ctx, "loans", "id_missing", map[string]any{"x": 1}))
	require.NoError(t, s.Delete(ctx, "loans", "id_missing"))

	assert.Equal(t, 1, notified, "no-op mutations must not broadcast")
}

func TestLocalStore_SubscriptionLiveness(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	var snapshots [][]Document
	cancel, err := s.Subscribe(ctx, C("loans").Where(Eq("userId", "u1")), func(docs []Document) {
		snapshots = append(snapshots, docs)
	})
	require.NoError(t, err)
	defer cancel()

	// fires once immediately with the current (empty) matching set
	require.Len(t, snapshots, 1)
	assert.Empty(t, snapshots[0])

	_, err = s.Create(ctx, "loans", map[string]any{"userId": "u1", "lenderName": "SBI"})
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	require.Len(t, snapshots[1], 1)

	// a write to a different collection still triggers a recompute
	_, err = s.Create(ctx, "payments", map[string]any{"userId": "u1"})
	require.NoError(t, err)
	require.Len(t, snapshots, 3)
	assert.Len(t, snapshots[2], 1, "result set unchanged, but redelivered in full")
}

func TestLocalStore_UnsubscribeStopsDelivery(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	notified := 0
	cancel, err := s.Subscribe(ctx, C("loans"), func(docs []Document) { notified++ })
	require.NoError(t, err)
	require.Equal(t, 1, notified)

	cancel()

	_, err = s.Create(ctx, "loans", map[string]any{"userId": "u1"})
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
}

func TestLocalStore_OwnerIsolation(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	for _, userID := range []string{"a", "a", "b", "c"} {
		_, err := s.Create(ctx, "loans", map[string]any{"userId": userID})
		require.NoError(t, err)
	}

	docs, err := GetOnce(ctx, s, C("loans").Where(Eq("userId", "a")))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.Equal(t, "a", d.Data["userId"])
	}
}

func TestLocalStore_FilteringIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	for i := 0; i < 5; i++ {
		_, err := s.Create(ctx, "payments", map[string]any{"userId": "u1", "loanId": "l1"})
		require.NoError(t, err)
	}

	q := C("payments").Where(Eq("userId", "u1"), Eq("loanId", "l1"))
	first, err := GetOnce(ctx, s, q)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := GetOnce(ctx, s, q)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestLocalStore_DeleteRemovesDocument(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	id1, err := s.Create(ctx, "lenders", map[string]any{"userId": "u1", "name": "one"})
	require.NoError(t, err)
	id2, err := s.Create(ctx, "lenders", map[string]any{"userId": "u1", "name": "two"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "lenders", id1))

	docs, err := GetOnce(ctx, s, C("lenders"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id2, docs[0].ID)
}

func TestLocalStore_FailedSaveIsSilent(t *testing.T) {
	ctx := context.Background()
	// a directory path makes every write fail
	dir := t.TempDir()
	s := NewLocalStore(dir, logging.NewNopLogger())

	notified := 0
	cancel, err := s.Subscribe(ctx, C("loans"), func(docs []Document) { notified++ })
	require.NoError(t, err)
	defer cancel()

	_, err = s.Create(ctx, "loans", map[string]any{"userId": "u1"})
	require.NoError(t, err, "storage failures are logged, not returned")
	assert.Equal(t, 1, notified, "unpersisted writes must not broadcast")
}
