package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	ErrSchemaExists = errors.New("schema: already registered")
	ErrSchemaNil    = errors.New("schema: nil schema")
)

// ValidationError reports a malformed schema declaration.
type ValidationError struct {
	Schema string
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema: %s: %s", e.Schema, e.Reason)
	}
	return fmt.Sprintf("schema: %s field=%s: %s", e.Schema, e.Field, e.Reason)
}

// Registry stores resolved schemas by name. Schemas are immutable once
// defined, so lookups are safe from many goroutines.
type Registry struct {
	mu    sync.RWMutex
	items map[string]*Schema
}

// NewRegistry creates a registry that already knows AnyName.
func NewRegistry() *Registry {
	return &Registry{items: map[string]*Schema{AnyName: Any}}
}

// Define validates decls, resolves every Ref against the registry and decls
// together, and registers them. Nothing is registered when any decl fails.
func (r *Registry) Define(decls ...*Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make(map[string]*Schema, len(decls))
	for _, s := range decls {
		if s == nil {
			return ErrSchemaNil
		}
		if err := validateDeclaration(s); err != nil {
			return err
		}
		if _, ok := r.items[s.Name]; ok {
			return fmt.Errorf("%w: %s", ErrSchemaExists, s.Name)
		}
		if _, ok := pending[s.Name]; ok {
			return fmt.Errorf("%w: %s", ErrSchemaExists, s.Name)
		}
		pending[s.Name] = s
	}

	resolve := func(name string) (*Schema, bool) {
		if s, ok := pending[name]; ok {
			return s, true
		}
		s, ok := r.items[name]
		return s, ok
	}

	resolved := make(map[string][]*Schema, len(decls))
	for _, s := range decls {
		nested := make([]*Schema, len(s.Fields))
		for i, f := range s.Fields {
			if !f.Kind.HoldsDocuments() || f.Kind == KindAny {
				continue
			}
			if f.Ref == "" {
				nested[i] = Any
				continue
			}
			target, ok := resolve(f.Ref)
			if !ok {
				log.Error().Str("schema", s.Name).Str("field", f.Name).Str("ref", f.Ref).Msg("schema.Define unknown ref")
				return ValidationError{Schema: s.Name, Field: f.Name, Reason: fmt.Sprintf("unknown schema ref %q", f.Ref)}
			}
			nested[i] = target
		}
		resolved[s.Name] = nested
	}

	for _, s := range decls {
		nested := resolved[s.Name]
		s.index = make(map[string]int, len(s.Fields))
		for i := range s.Fields {
			s.Fields[i].Nested = nested[i]
			s.index[s.Fields[i].Name] = i
		}
		r.items[s.Name] = s
		log.Debug().Str("schema", s.Name).Int("fields", len(s.Fields)).Bool("open", s.Open).Msg("schema.Define ok")
	}
	return nil
}

// Resolve returns a schema by name.
func (r *Registry) Resolve(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[name]
	return s, ok
}

// Names returns registered schema names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.items))
	for name := range r.items {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func validateDeclaration(s *Schema) error {
	name := strings.TrimSpace(s.Name)
	if !isValidName(name) || name != s.Name {
		return ValidationError{Schema: s.Name, Reason: "invalid schema name"}
	}
	if s.Name == AnyName {
		return ValidationError{Schema: s.Name, Reason: "reserved schema name"}
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if !isValidName(f.Name) {
			return ValidationError{Schema: s.Name, Field: f.Name, Reason: "invalid field name"}
		}
		if _, dup := seen[f.Name]; dup {
			return ValidationError{Schema: s.Name, Field: f.Name, Reason: "duplicate field"}
		}
		seen[f.Name] = struct{}{}
		if f.Kind > KindChunks {
			return ValidationError{Schema: s.Name, Field: f.Name, Reason: fmt.Sprintf("unknown kind %s", f.Kind)}
		}
		if f.Ref != "" && !(f.Kind == KindDocument || f.Kind == KindChunks) {
			return ValidationError{Schema: s.Name, Field: f.Name, Reason: fmt.Sprintf("ref set on %s field", f.Kind)}
		}
	}
	return nil
}

// isValidName accepts identifiers: a letter or underscore, then letters,
// digits, underscores.
func isValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
		isDigit := c >= '0' && c <= '9'
		if i == 0 && !isLetter {
			return false
		}
		if !(isLetter || isDigit) {
			return false
		}
	}
	return true
}
