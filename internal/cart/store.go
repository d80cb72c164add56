package cart

import (
	"context"
	"fmt"
	"sync"
)

// Mutation changes a loaded cart. Stores apply it to a copy and keep the
// result only when it succeeds.
type Mutation func(*Cart) error

func AddItem(item LineItem) Mutation {
	return func(c *Cart) error {
		return c.Add(item)
	}
}

func AddItems(items []LineItem) Mutation {
	return func(c *Cart) error {
		return c.AddBatch(items)
	}
}

func RemoveItem(id string) Mutation {
	return func(c *Cart) error {
		if !c.Remove(id) {
			return fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		return nil
	}
}

func SetQuantity(id string, quantity int) Mutation {
	return func(c *Cart) error {
		return c.UpdateQuantity(id, quantity)
	}
}

func DropBundle(bundleID string) Mutation {
	return func(c *Cart) error {
		if c.RemoveBundle(bundleID) == 0 {
			return fmt.Errorf("%w: bundle %s", ErrItemNotFound, bundleID)
		}
		return nil
	}
}

func ClearAll() Mutation {
	return func(c *Cart) error {
		c.Clear()
		return nil
	}
}

// Clone copies the cart so a mutation cannot touch the original.
func (c *Cart) Clone() *Cart {
	return &Cart{SessionID: c.SessionID, Items: append([]LineItem(nil), c.Items...)}
}

// MemoryStore keeps carts in process. It backs tests and single-instance
// development runs.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]*Cart)}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[sessionID]; ok {
		return c.Clone(), nil
	}
	return &Cart{SessionID: sessionID}, nil
}

func (s *MemoryStore) update(ctx context.Context, sessionID string, m Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.carts[sessionID]
	if !ok {
		current = &Cart{SessionID: sessionID}
	}
	next := current.Clone()
	if err := m(next); err != nil {
		return err
	}
	s.carts[sessionID] = next
	return nil
}

func (s *MemoryStore) Add(ctx context.Context, sessionID string, item LineItem) error {
	return s.update(ctx, sessionID, AddItem(item))
}

func (s *MemoryStore) AddBatch(ctx context.Context, sessionID string, items []LineItem) error {
	return s.update(ctx, sessionID, AddItems(items))
}

func (s *MemoryStore) Remove(ctx context.Context, sessionID, itemID string) error {
	return s.update(ctx, sessionID, RemoveItem(itemID))
}

func (s *MemoryStore) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) error {
	return s.update(ctx, sessionID, SetQuantity(itemID, quantity))
}

func (s *MemoryStore) RemoveBundle(ctx context.Context, sessionID, bundleID string) error {
	return s.update(ctx, sessionID, DropBundle(bundleID))
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	return s.update(ctx, sessionID, ClearAll())
}
