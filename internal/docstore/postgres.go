package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/loankeeper/internal/docstore/migrations"
	"github.com/dmitrijs2005/loankeeper/internal/logging"
)

// changeChannel is the LISTEN/NOTIFY channel fired by a statement trigger
// on the documents table. Notifications carry no payload; subscribers
// re-query rather than inspect a delta.
const changeChannel = "loankeeper_changes"

const remoteIDPrefix = "doc_"

type pgSub struct {
	q  Query
	fn func([]Document)
}

// PostgresStore keeps every collection in a single documents table with
// a jsonb payload. Change notification uses a dedicated pgx connection
// listening on changeChannel; each notification triggers a full
// recompute of every active subscription, mirroring the local backend's
// global-recompute semantics. Backend errors propagate to callers.
type PostgresStore struct {
	db     *sql.DB
	dsn    string
	logger logging.Logger

	mu      sync.Mutex
	subs    map[int]*pgSub
	nextSub int

	cancelListener context.CancelFunc
	listenerDone   chan struct{}
}

func NewPostgresStore(ctx context.Context, dsn string, logger logging.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	s := newPostgresStoreWithDB(db, logger)
	s.dsn = dsn

	listenerCtx, cancel := context.WithCancel(context.Background())
	s.cancelListener = cancel
	s.listenerDone = make(chan struct{})
	go s.listen(listenerCtx)

	return s, nil
}

// newPostgresStoreWithDB wires a store around an existing handle without
// migrations or the notification listener. Used by tests.
func newPostgresStoreWithDB(db *sql.DB, logger logging.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger.With("component", "docstore", "mode", "remote"),
		subs:   make(map[int]*pgSub),
	}
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *PostgresStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := remoteIDPrefix + uuid.NewString()

	doc := make(map[string]any, len(data)+1)
	for k, v := range data {
		doc[k] = v
	}
	doc["id"] = id

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	query := `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`
	if _, err := s.db.ExecContext(ctx, query, collection, id, raw); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection string, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}

	// jsonb concatenation implements the merge-patch contract; zero rows
	// affected is the silent not-found no-op.
	query := `UPDATE documents SET data = data || $3::jsonb WHERE collection = $1 AND id = $2`
	if _, err := s.db.ExecContext(ctx, query, collection, id, raw); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection string, id string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if _, err := s.db.ExecContext(ctx, query, collection, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) Subscribe(ctx context.Context, q Query, fn func(docs []Document)) (func(), error) {
	docs, err := s.queryDocs(ctx, q)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = &pgSub{q: q, fn: fn}
	s.mu.Unlock()

	fn(docs)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}, nil
}

func (s *PostgresStore) Dump(ctx context.Context) (map[string][]Document, error) {
	query := `SELECT collection, id, data FROM documents ORDER BY collection, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]Document)
	for rows.Next() {
		var collection, id string
		var raw []byte
		if err := rows.Scan(&collection, &id, &raw); err != nil {
			return nil, err
		}
		var data map[string]any
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
		out[collection] = append(out[collection], Document{ID: id, Data: data})
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close(ctx context.Context) error {
	if s.cancelListener != nil {
		s.cancelListener()
		select {
		case <-s.listenerDone:
		case <-ctx.Done():
		}
	}
	return s.db.Close()
}

func (s *PostgresStore) queryDocs(ctx context.Context, q Query) ([]Document, error) {
	query := `SELECT id, data FROM documents WHERE collection = $1`
	args := []any{q.Collection}

	for _, f := range q.Filters {
		if f.Op != OpEqual {
			continue
		}
		obj, err := json.Marshal(map[string]any{f.Field: f.Value})
		if err != nil {
			return nil, fmt.Errorf("encode filter: %w", err)
		}
		args = append(args, string(obj))
		query += fmt.Sprintf(" AND data @> $%d::jsonb", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		var data map[string]any
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
		out = append(out, Document{ID: id, Data: data})
	}
	return out, rows.Err()
}

// listen keeps a LISTEN connection alive, reconnecting with a small
// backoff, and triggers a broadcast on every notification.
func (s *PostgresStore) listen(ctx context.Context) {
	defer close(s.listenerDone)

	for {
		err := s.runListener(ctx)
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn(ctx, "change listener disconnected", "error", err)

		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return
		}
	}
}

func (s *PostgresStore) runListener(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, s.dsn)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "listen "+changeChannel); err != nil {
		return err
	}

	for {
		if _, err := conn.WaitForNotification(ctx); err != nil {
			return err
		}
		s.broadcast(ctx)
	}
}

// broadcast recomputes every subscription. Failed recomputes are logged
// and skipped so one broken query does not starve other subscribers.
func (s *PostgresStore) broadcast(ctx context.Context) {
	s.mu.Lock()
	subs := make([]*pgSub, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		docs, err := s.queryDocs(ctx, sub.q)
		if err != nil {
			s.logger.Error(ctx, "subscription recompute failed", "collection", sub.q.Collection, "error", err)
			continue
		}
		sub.fn(docs)
	}
}
