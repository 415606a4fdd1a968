package schema

import (
	"sort"
	"sync"
)

// Registry holds one schema per operation name and caches compiled validators.
// Operations without a schema always validate.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]entry
	next    uint64

	validators sync.Map // cacheKey -> *Validator
}

type entry struct {
	schema  *Schema
	version uint64
}

// cacheKey ties a compiled validator to the schema version it came from so a
// re-registered schema never reuses a stale validator.
type cacheKey struct {
	name    string
	version uint64
}

// NewRegistry returns a registry seeded with schemas.
func NewRegistry(schemas map[string]*Schema) *Registry {
	r := &Registry{schemas: make(map[string]entry, len(schemas))}
	for name, s := range schemas {
		r.Register(name, s)
	}
	return r
}

// Default returns a registry seeded with DefaultSchemas.
func Default() *Registry {
	return NewRegistry(DefaultSchemas())
}

// Register sets the schema for name, replacing any previous one. A nil schema
// removes the operation from the registry.
func (r *Registry) Register(name string, s *Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.schemas == nil {
		r.schemas = make(map[string]entry)
	}
	if prev, ok := r.schemas[name]; ok {
		r.validators.Delete(cacheKey{name: name, version: prev.version})
	}
	if s == nil {
		delete(r.schemas, name)
		return
	}
	r.next++
	r.schemas[name] = entry{schema: s, version: r.next}
}

// Has reports whether name has a schema.
func (r *Registry) Has(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// Names lists registered operations in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Cached reports whether a validator for the current schema of name has
// already been compiled.
func (r *Registry) Cached(name string) bool {
	e, ok := r.lookup(name)
	if !ok {
		return false
	}
	_, ok = r.validators.Load(cacheKey{name: name, version: e.version})
	return ok
}

// Validator returns the compiled validator for name, compiling it on first
// use. The boolean is false when name has no schema.
func (r *Registry) Validator(name string) (*Validator, bool, error) {
	e, ok := r.lookup(name)
	if !ok {
		return nil, false, nil
	}
	key := cacheKey{name: name, version: e.version}
	if cached, ok := r.validators.Load(key); ok {
		return cached.(*Validator), true, nil
	}
	compiled, err := Compile(e.schema)
	if err != nil {
		return nil, true, err
	}
	// concurrent first use may compile twice; every caller ends up with the
	// validator that won LoadOrStore
	actual, _ := r.validators.LoadOrStore(key, compiled)
	return actual.(*Validator), true, nil
}

// Validate checks data against the schema registered for name. Operations
// without a schema pass. The error reports a schema that failed to compile or
// data that could not be encoded.
func (r *Registry) Validate(name string, data any) (Result, error) {
	v, ok, err := r.Validator(name)
	if err != nil || !ok {
		return Result{}, err
	}
	return v.Validate(data)
}

func (r *Registry) lookup(name string) (entry, bool) {
	if r == nil {
		return entry{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.schemas[name]
	return e, ok
}
