// Package store provides the generic client-side collection store: one
// instance per entity type, holding the in-memory collection together with
// loading/error/pagination state, and CRUD operations that reflect backend
// success into the collection without a follow-up fetch.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/openmechanic/garage-manager/client"
	"github.com/openmechanic/garage-manager/models"
)

// Store holds the in-memory collection for one resource type
type Store[T models.Resource] struct {
	client *client.Client
	path   string

	mu         sync.Mutex
	items      []T
	loading    bool
	lastErr    string
	pagination *Pagination

	// Fetches are tagged with a monotonically increasing sequence and a
	// response older than the last applied one is discarded, so a slow
	// fetch resolving after a delete cannot resurrect the deleted record.
	issuedSeq  uint64
	appliedSeq uint64
}

// New creates a store for a top-level resource such as "owners/"
func New[T models.Resource](c *client.Client, resource string) *Store[T] {
	return &Store[T]{client: c, path: ensureSlash(resource)}
}

// NewNested creates a store for a resource owned by a parent record, such as
// "reports/42/tasks/"
func NewNested[T models.Resource](c *client.Client, parent string, parentID uint, resource string) *Store[T] {
	path := fmt.Sprintf("%s%d/%s", ensureSlash(parent), parentID, ensureSlash(resource))
	return &Store[T]{client: c, path: path}
}

func ensureSlash(path string) string {
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path
}

// Items returns a copy of the in-memory collection
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the size of the in-memory collection
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Find returns the collection record with the given id
func (s *Store[T]) Find(id uint) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.GetID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Loading reports whether a fetch is in flight
func (s *Store[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the message of the last failed operation, or ""
func (s *Store[T]) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Page returns the pagination state of the last fetch, or nil when the last
// fetch returned a flat array
func (s *Store[T]) Page() *Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pagination == nil {
		return nil
	}
	page := *s.pagination
	return &page
}

// Fetch replaces the collection with the backend's list response. On failure
// the error is recorded in store state and the prior collection is left
// untouched. A response that arrives after a newer fetch (or after the store
// applied a later sequence) is discarded.
func (s *Store[T]) Fetch(ctx context.Context, opts ListOptions) error {
	s.mu.Lock()
	s.issuedSeq++
	seq := s.issuedSeq
	s.loading = true
	s.mu.Unlock()

	var raw json.RawMessage
	err := s.client.Get(ctx, s.path, opts.Query(), &raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.appliedSeq {
		// A newer fetch already resolved; this response is stale.
		return nil
	}
	s.appliedSeq = seq
	if seq == s.issuedSeq {
		s.loading = false
	}

	if err != nil {
		s.lastErr = err.Error()
		return err
	}

	items, page, err := decodeList[T](raw)
	if err != nil {
		s.lastErr = err.Error()
		return err
	}

	s.items = items
	s.pagination = page
	s.lastErr = ""
	return nil
}

// Create POSTs the payload and appends the created record on success
func (s *Store[T]) Create(ctx context.Context, payload interface{}) (T, error) {
	var created T
	if err := s.client.Post(ctx, s.path, payload, &created); err != nil {
		s.recordError(err)
		return created, err
	}

	s.mu.Lock()
	s.items = append(s.items, created)
	s.lastErr = ""
	s.mu.Unlock()
	return created, nil
}

// Update PATCHes the record and replaces it in the collection on success.
// Callers pass the record's last-known updated_at in the patch so the
// backend can reject stale writes; a conflict surfaces as an error matching
// client.IsConflict.
func (s *Store[T]) Update(ctx context.Context, id uint, patch map[string]interface{}) (T, error) {
	var updated T
	if err := s.client.Patch(ctx, s.itemPath(id), patch, &updated); err != nil {
		s.recordError(err)
		return updated, err
	}

	s.mu.Lock()
	for i, item := range s.items {
		if item.GetID() == id {
			s.items[i] = updated
			break
		}
	}
	s.lastErr = ""
	s.mu.Unlock()
	return updated, nil
}

// Delete removes the record on the backend, then from the collection
func (s *Store[T]) Delete(ctx context.Context, id uint) error {
	if err := s.client.Delete(ctx, s.itemPath(id)); err != nil {
		s.recordError(err)
		return err
	}

	s.mu.Lock()
	for i, item := range s.items {
		if item.GetID() == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.lastErr = ""
	s.mu.Unlock()
	return nil
}

func (s *Store[T]) itemPath(id uint) string {
	return fmt.Sprintf("%s%d/", s.path, id)
}

func (s *Store[T]) recordError(err error) {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
}

// decodeList normalizes the two list response shapes: a paginated envelope
// {count,next,previous,results} or a flat JSON array.
func decodeList[T any](raw json.RawMessage) ([]T, *Pagination, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []T{}, nil, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, nil, fmt.Errorf("failed to decode list response: %w", err)
		}
		return items, nil, nil
	}

	var page models.Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, nil, fmt.Errorf("failed to decode paginated response: %w", err)
	}
	return page.Results, &Pagination{
		Count:    page.Count,
		Next:     page.Next,
		Previous: page.Previous,
	}, nil
}
