// internal/trip/store.go
package trip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotFound is returned when no trip exists for a uid.
var ErrNotFound = errors.New("TRIP_NOT_FOUND")

// Store reads trip documents by user id.
type Store interface {
	Get(ctx context.Context, uid string) (*Document, error)
}

// FirestoreStore reads trips from a Firestore collection keyed by uid.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	if collection == "" {
		collection = "trips"
	}
	return &FirestoreStore{client: client, collection: collection}
}

func (s *FirestoreStore) Get(ctx context.Context, uid string) (*Document, error) {
	snap, err := s.client.Collection(s.collection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, uid)
		}
		return nil, fmt.Errorf("firestore get %s/%s: %w", s.collection, uid, err)
	}
	if !snap.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uid)
	}

	doc, err := Decode(snap.Data())
	if err != nil {
		return nil, fmt.Errorf("decode trip %s: %w", uid, err)
	}
	doc.UID = uid
	return doc, nil
}

// Decode converts a loosely typed document (Firestore data, request JSON)
// into a Document. Timestamps become RFC 3339 strings on the way through;
// unusable optional fields end up in Document.Ignored rather than failing.
func Decode(data map[string]interface{}) (*Document, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// MemoryStore is an in-process Store used by the CLI and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	trips map[string]*Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{trips: make(map[string]*Document)}
}

// Put stores a copy of doc under uid.
func (s *MemoryStore) Put(uid string, doc *Document) {
	cp := *doc
	cp.UID = uid
	s.mu.Lock()
	s.trips[uid] = &cp
	s.mu.Unlock()
}

func (s *MemoryStore) Get(ctx context.Context, uid string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	doc, ok := s.trips[uid]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uid)
	}
	cp := *doc
	return &cp, nil
}

// LoadMemoryStore reads a JSON object of uid -> trip document.
func LoadMemoryStore(data []byte) (*MemoryStore, error) {
	var trips map[string]*Document
	if err := json.Unmarshal(data, &trips); err != nil {
		return nil, fmt.Errorf("parse trips: %w", err)
	}
	store := NewMemoryStore()
	for uid, doc := range trips {
		if doc == nil {
			continue
		}
		store.Put(uid, doc)
	}
	return store, nil
}
