// Package store provides in-memory storage for named style expressions, so
// the evaluation service can register an expression once and apply it to
// many feature environments.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/flywave/flywave-style/pkg/expr"
)

// Expression is a stored, parsed style expression.
type Expression struct {
	Name       string          `json:"name"`
	Source     json.RawMessage `json:"expr"`
	Expr       expr.Expr       `json:"-"`
	RevisionID string          `json:"revisionId"`
	CreateTime time.Time       `json:"createTime"`
	UpdateTime time.Time       `json:"updateTime"`
}

// Store is a thread-safe in-memory registry of expressions.
type Store struct {
	mu          sync.RWMutex
	expressions map[string]*Expression

	revCounter int64
}

// New creates a new empty store.
func New() *Store {
	return &Store{
		expressions: make(map[string]*Expression),
	}
}

// Put creates or replaces a named expression. The source must already have
// parsed into e; both are kept so the API can echo the original document.
func (s *Store) Put(name string, source json.RawMessage, e expr.Expr) *Expression {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.revCounter++
	entry := &Expression{
		Name:       name,
		Source:     source,
		Expr:       e,
		RevisionID: fmt.Sprintf("%06d", s.revCounter),
		CreateTime: now,
		UpdateTime: now,
	}
	if prev, ok := s.expressions[name]; ok {
		entry.CreateTime = prev.CreateTime
	}
	s.expressions[name] = entry
	return entry
}

// Get retrieves an expression by name.
func (s *Store) Get(name string) (*Expression, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expressions[name]
	return e, ok
}

// List returns all expressions sorted by name.
func (s *Store) List() []*Expression {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Expression, 0, len(s.expressions))
	for _, e := range s.expressions {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Delete removes an expression. Returns false if it does not exist.
func (s *Store) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expressions[name]; !ok {
		return false
	}
	delete(s.expressions, name)
	return true
}
