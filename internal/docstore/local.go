package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/dmitrijs2005/loankeeper/internal/common"
	"github.com/dmitrijs2005/loankeeper/internal/logging"
)

// Default collections ensured in the persisted layout even when the
// data file is missing or damaged.
var localCollections = []string{"users", "lenders", "loans", "payments"}

const localIDPrefix = "id_"

type localSub struct {
	q  Query
	fn func([]Document)
}

// LocalStore keeps all collections inside one JSON root object persisted
// under a single file path. Every write loads the root, mutates it and
// rewrites it wholesale, then fires a single store-wide change broadcast:
// every active subscription re-evaluates its query against a freshly
// reloaded copy, regardless of which collection changed. Correctness
// over efficiency, acceptable at single-family data volumes.
//
// A failed file write is logged, not returned: the write silently does
// not persist and state reverts to the last saved version on the next
// reload.
type LocalStore struct {
	path   string
	logger logging.Logger

	mu      sync.Mutex
	subs    map[int]*localSub
	nextSub int
}

func NewLocalStore(path string, logger logging.Logger) *LocalStore {
	return &LocalStore{
		path:   path,
		logger: logger.With("component", "docstore", "mode", "local"),
		subs:   make(map[int]*localSub),
	}
}

// load reads and parses the root object. Any read or parse failure
// yields an empty skeleton; known collections are always present.
func (s *LocalStore) load() map[string][]map[string]any {
	root := make(map[string][]map[string]any)

	raw, err := os.ReadFile(s.path)
	if err == nil {
		if err := json.Unmarshal(raw, &root); err != nil {
			root = make(map[string][]map[string]any)
		}
	}

	for _, c := range localCollections {
		if root[c] == nil {
			root[c] = []map[string]any{}
		}
	}
	return root
}

// save rewrites the whole root object. Returns whether the write
// actually persisted; failures are logged only.
func (s *LocalStore) save(ctx context.Context, root map[string][]map[string]any) bool {
	raw, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		s.logger.Error(ctx, "marshal data file", "error", err)
		return false
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		s.logger.Error(ctx, "write data file", "path", s.path, "error", err)
		return false
	}
	return true
}

func (s *LocalStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	suffix, err := common.MakeRandHexString(6)
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	id := localIDPrefix + suffix

	doc := make(map[string]any, len(data)+1)
	for k, v := range data {
		doc[k] = v
	}
	doc["id"] = id

	s.mu.Lock()
	root := s.load()
	root[collection] = append(root[collection], doc)
	saved := s.save(ctx, root)
	s.mu.Unlock()

	if saved {
		s.broadcast()
	}
	return id, nil
}

func (s *LocalStore) Update(ctx context.Context, collection string, id string, data map[string]any) error {
	s.mu.Lock()
	root := s.load()
	idx := -1
	for i, doc := range root[collection] {
		if docID(doc) == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		// silent no-op per contract
		s.mu.Unlock()
		return nil
	}
	for k, v := range data {
		root[collection][idx][k] = v
	}
	root[collection][idx]["id"] = id
	saved := s.save(ctx, root)
	s.mu.Unlock()

	if saved {
		s.broadcast()
	}
	return nil
}

func (s *LocalStore) Delete(ctx context.Context, collection string, id string) error {
	s.mu.Lock()
	root := s.load()
	docs := root[collection]
	kept := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		if docID(doc) != id {
			kept = append(kept, doc)
		}
	}
	if len(kept) == len(docs) {
		s.mu.Unlock()
		return nil
	}
	root[collection] = kept
	saved := s.save(ctx, root)
	s.mu.Unlock()

	if saved {
		s.broadcast()
	}
	return nil
}

func (s *LocalStore) Subscribe(ctx context.Context, q Query, fn func(docs []Document)) (func(), error) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = &localSub{q: q, fn: fn}
	root := s.load()
	s.mu.Unlock()

	fn(evalQuery(root, q))

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}, nil
}

// broadcast redelivers every subscription from a fresh reload. Callbacks
// run outside the store lock so they may issue further store calls.
func (s *LocalStore) broadcast() {
	s.mu.Lock()
	root := s.load()
	subs := make([]*localSub, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(evalQuery(root, sub.q))
	}
}

func (s *LocalStore) Dump(ctx context.Context) (map[string][]Document, error) {
	s.mu.Lock()
	root := s.load()
	s.mu.Unlock()

	out := make(map[string][]Document, len(root))
	for collection := range root {
		out[collection] = evalQuery(root, C(collection))
	}
	return out, nil
}

func (s *LocalStore) Close(ctx context.Context) error {
	return nil
}

func evalQuery(root map[string][]map[string]any, q Query) []Document {
	var out []Document
	for _, doc := range root[q.Collection] {
		if matches(doc, q.Filters) {
			out = append(out, Document{ID: docID(doc), Data: doc})
		}
	}
	return out
}
