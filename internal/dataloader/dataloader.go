// Package dataloader collapses per-parent lookups of one operation into a
// single call. Loader functions are registered by name when the schema is
// compiled; every request gets a fresh Scope holding its own loader
// instances and memo.
package dataloader

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	json "github.com/goccy/go-json"

	eventbus "github.com/hanpama/gqlboot/internal/eventbus"
	events "github.com/hanpama/gqlboot/internal/events"
)

var (
	ErrResultCount   = errors.New("batch function returned a different number of results than keys")
	ErrUnknownLoader = errors.New("unknown batch loader")
)

// Result is the outcome for one key.
type Result struct {
	Value any
	Err   error
}

// BatchFunc answers keys in order: result i belongs to keys[i].
type BatchFunc func(ctx context.Context, keys []any) []Result

// Name is the stable loader name of a batch operation on an owning type.
func Name(owningType, operation string) string { return owningType + "_" + operation }

// Registry holds the batch functions known at compile time.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]BatchFunc
}

func NewRegistry() *Registry { return &Registry{funcs: make(map[string]BatchFunc)} }

// Register adds fn under name. The first registration wins; a later one with
// the same name is ignored and Register returns false.
func (r *Registry) Register(name string, fn BatchFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.funcs[name]; ok {
		return false
	}
	r.funcs[name] = fn
	return true
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.funcs[name]
	return ok
}

// Names returns the registered loader names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewScope creates the per-request loader set.
func (r *Registry) NewScope() *Scope {
	return &Scope{registry: r, loaders: make(map[string]*Loader)}
}

// Scope holds the loader instances of one request.
type Scope struct {
	registry *Registry
	mu       sync.Mutex
	loaders  map[string]*Loader
}

// Loader returns the instance of the named loader for one argument set,
// creating it on first use.
func (s *Scope) Loader(name string, args map[string]any) (*Loader, error) {
	id := name
	if k := ArgumentsKey(args); k != "" {
		id += "#" + k
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.loaders[id]; ok {
		return l, nil
	}
	s.registry.mu.RLock()
	fn, ok := s.registry.funcs[name]
	s.registry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLoader, name)
	}
	l := &Loader{name: name, fn: fn, memo: make(map[any]Result)}
	s.loaders[id] = l
	return l, nil
}

type scopeKey struct{}

// NewContext attaches scope to ctx.
func NewContext(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// FromContext returns the scope attached to ctx.
func FromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	return s, ok && s != nil
}

// Loader deduplicates keys and memoizes results for one request.
type Loader struct {
	name string
	fn   BatchFunc
	mu   sync.Mutex
	memo map[any]Result
}

func (l *Loader) Name() string { return l.name }

// Load resolves a single key.
func (l *Loader) Load(ctx context.Context, key any) (any, error) {
	r := l.LoadMany(ctx, []any{key})[0]
	return r.Value, r.Err
}

// LoadMany resolves keys with at most one call to the batch function. Keys
// already answered earlier in the request come from the memo; the rest are
// deduplicated and sent in first-seen order. Results follow the order of
// keys.
func (l *Loader) LoadMany(ctx context.Context, keys []any) []Result {
	ids := make([]any, len(keys))
	var pending []any
	var pendingIDs []any
	seen := make(map[any]struct{})

	l.mu.Lock()
	for i, k := range keys {
		id := identity(k)
		ids[i] = id
		if _, ok := l.memo[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		pending = append(pending, k)
		pendingIDs = append(pendingIDs, id)
	}
	l.mu.Unlock()

	if len(pending) > 0 {
		start := time.Now()
		answers := l.fn(ctx, pending)
		var dispatchErr error
		if len(answers) != len(pending) {
			dispatchErr = fmt.Errorf("%w: loader %s got %d keys, returned %d", ErrResultCount, l.name, len(pending), len(answers))
			answers = make([]Result, len(pending))
			for i := range answers {
				answers[i].Err = dispatchErr
			}
		}
		eventbus.Publish(ctx, events.BatchDispatch{
			Loader:     l.name,
			Keys:       len(keys),
			UniqueKeys: len(pending),
			Err:        dispatchErr,
			Duration:   time.Since(start),
		})
		l.mu.Lock()
		for i, id := range pendingIDs {
			l.memo[id] = answers[i]
		}
		l.mu.Unlock()
	}

	out := make([]Result, len(keys))
	l.mu.Lock()
	for i, id := range ids {
		out[i] = l.memo[id]
	}
	l.mu.Unlock()
	return out
}

// hashedKey identifies a key that cannot be used as a map key itself.
type hashedKey struct {
	typ  reflect.Type
	hash uint64
}

type nilKey struct{}

// identity maps a key onto a comparable value. Keys whose dynamic value is
// comparable identify themselves, so unexported fields and json:"-" fields
// still tell two keys apart. Maps, slices and structs holding them are
// identified by their type and a hash of their Go-syntax representation,
// which includes unexported fields and sorts map keys.
func identity(k any) any {
	if k == nil {
		return nilKey{}
	}
	v := reflect.ValueOf(k)
	if v.Comparable() {
		return k
	}
	return hashedKey{typ: v.Type(), hash: xxhash.Sum64String(fmt.Sprintf("%#v", k))}
}

// ArgumentsKey identifies an argument set; empty arguments yield "".
func ArgumentsKey(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	b, err := json.Marshal(args)
	if err != nil {
		return strconv.FormatUint(xxhash.Sum64String(fmt.Sprintf("%v", args)), 16)
	}
	return strconv.FormatUint(xxhash.Sum64(b), 16)
}
