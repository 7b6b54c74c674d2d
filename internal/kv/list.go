package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Record is an element of a List.
type Record interface {
	GetID() string
}

// List keeps a JSON array of records under "<prefix>:<scope>", or under
// prefix alone when scope is empty. Every write replaces the whole array
// with a single Set.
type List[T Record] struct {
	store  Store
	prefix string
}

func NewList[T Record](store Store, prefix string) *List[T] {
	return &List[T]{store: store, prefix: prefix}
}

// Key returns the storage key for scope.
func (l *List[T]) Key(scope string) string {
	if scope == "" {
		return l.prefix
	}
	return l.prefix + ":" + scope
}

// Load returns the stored records. Missing keys, read failures and
// malformed payloads all yield an empty list; the latter two are logged.
func (l *List[T]) Load(ctx context.Context, scope string) []T {
	items, err := l.load(ctx, scope)
	if err != nil {
		log.Warn().Err(err).Str("key", l.Key(scope)).Msg("Falling back to empty list")
		return []T{}
	}
	return items
}

// LoadStrict is Load without the fallback: read and decode errors are
// returned. A missing key is still an empty list.
func (l *List[T]) LoadStrict(ctx context.Context, scope string) ([]T, error) {
	return l.load(ctx, scope)
}

func (l *List[T]) load(ctx context.Context, scope string) ([]T, error) {
	key := l.Key(scope)
	data, err := l.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// ReplaceAll overwrites the stored list with items.
func (l *List[T]) ReplaceAll(ctx context.Context, scope string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", l.Key(scope), err)
	}
	return l.store.Set(ctx, l.Key(scope), data)
}

// UpsertOne replaces the record with the same id in place, or inserts item
// at the front of the list.
func (l *List[T]) UpsertOne(ctx context.Context, scope string, item T) error {
	items := l.Load(ctx, scope)
	for i := range items {
		if items[i].GetID() == item.GetID() {
			items[i] = item
			return l.ReplaceAll(ctx, scope, items)
		}
	}
	return l.ReplaceAll(ctx, scope, append([]T{item}, items...))
}

// DeleteOne removes the record with id. Unknown ids are not an error.
func (l *List[T]) DeleteOne(ctx context.Context, scope, id string) error {
	items := l.Load(ctx, scope)
	kept := items[:0]
	for _, item := range items {
		if item.GetID() != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	return l.ReplaceAll(ctx, scope, kept)
}
