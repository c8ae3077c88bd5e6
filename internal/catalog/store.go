package catalog

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/google/btree"
	"github.com/google/uuid"

	"github.com/talkincode/prodcatalog/internal/domain"
)

// TopicAppended is published after every successful Append.
const TopicAppended = "catalog:appended"

// AppendedEvent is the payload of TopicAppended.
type AppendedEvent struct {
	ID    uuid.UUID
	Name  string
	Total int
}

// DuplicateIDError is returned by Append when the product tree carries an id
// already present in the catalog, or the same id twice.
type DuplicateIDError struct {
	ID uuid.UUID
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate id %s", e.ID)
}

type indexEntry struct {
	id  uuid.UUID
	pos int // top-level position of the owning product
}

func lessEntry(a, b indexEntry) bool {
	return bytes.Compare(a.id[:], b.id[:]) < 0
}

// Store is the in-memory catalog: an append-only ordered list of products
// with an index over every id in every tree. Readers get deep copies, so
// stored products are never mutated after insertion.
type Store struct {
	mu       sync.RWMutex
	products []domain.Product
	index    *btree.BTreeG[indexEntry]
	bus      EventBus.Bus
}

// NewStore returns a store holding the given products in order.
func NewStore(seed ...domain.Product) (*Store, error) {
	s := &Store{
		index: btree.NewG[indexEntry](16, lessEntry),
		bus:   EventBus.New(),
	}
	for i := range seed {
		if err := s.insert(seed[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Subscribe registers fn for append events. fn runs synchronously on the
// appending goroutine, after the store lock is released.
func (s *Store) Subscribe(fn func(AppendedEvent)) error {
	return s.bus.Subscribe(TopicAppended, fn)
}

func (s *Store) List() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	for i := range s.products {
		out[i] = s.products[i].Clone()
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Append adds p to the end of the catalog. Appends are serialized; on error
// the catalog is unchanged.
func (s *Store) Append(p domain.Product) error {
	s.mu.Lock()
	err := s.insert(p)
	total := len(s.products)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.bus.Publish(TopicAppended, AppendedEvent{ID: p.ID, Name: p.Name, Total: total})
	return nil
}

// insert must be called with mu held for writing.
func (s *Store) insert(p domain.Product) error {
	ids := p.IDs()
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || s.index.Has(indexEntry{id: id}) {
			return &DuplicateIDError{ID: id}
		}
		seen[id] = struct{}{}
	}

	pos := len(s.products)
	s.products = append(s.products, p.Clone())
	for _, id := range ids {
		s.index.ReplaceOrInsert(indexEntry{id: id, pos: pos})
	}
	return nil
}

// Get returns the product with the given id, whether it is a top-level entry
// or a material nested anywhere below one.
func (s *Store) Get(id uuid.UUID) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.index.Get(indexEntry{id: id})
	if !ok {
		return domain.Product{}, false
	}
	var found *domain.Product
	s.products[entry.pos].Walk(func(item *domain.Product, _ int) bool {
		if item.ID == id {
			found = item
			return false
		}
		return true
	})
	if found == nil {
		// id belongs to a location
		return domain.Product{}, false
	}
	return found.Clone(), true
}
