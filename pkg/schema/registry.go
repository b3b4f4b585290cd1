package schema

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/fixgen/fixgen/internal/embedded"
	"github.com/fixgen/fixgen/pkg/errors"
)

// Registry holds the loaded entity types, keyed by name.
// A Registry is immutable after loading.
type Registry struct {
	types  []EntityType
	byName map[string]EntityType
}

// registryFile is the on-disk yaml shape of a registry.
type registryFile struct {
	EntityTypes []EntityType `yaml:"entityTypes"`
}

// Builtin loads the embedded schema registry shipped with the engine.
func Builtin() (*Registry, error) {
	data, err := embedded.FS.ReadFile(embedded.RegistryPath)
	if err != nil {
		return nil, errors.NewConfigError("schema", "builtin registry missing from embedded assets", err)
	}
	return Load(data)
}

// LoadFile loads a registry from a yaml file on disk.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError("read", path, err)
	}
	reg, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}
	return reg, nil
}

// LoadReader loads a registry from a yaml stream.
func LoadReader(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIOError("read", "registry", err)
	}
	return Load(data)
}

// Load parses and validates a yaml registry document.
func Load(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewParseError("yaml", "", "cannot parse schema registry", err)
	}
	if len(file.EntityTypes) == 0 {
		return nil, errors.NewConfigError("schema", "registry declares no entity types", nil)
	}

	reg := &Registry{
		types:  file.EntityTypes,
		byName: make(map[string]EntityType, len(file.EntityTypes)),
	}
	for _, t := range file.EntityTypes {
		if _, dup := reg.byName[t.Name]; dup {
			return nil, errors.NewConfigError("schema",
				fmt.Sprintf("duplicate entity type %q", t.Name), nil)
		}
		reg.byName[t.Name] = t
	}
	if err := reg.validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

// validate checks every field definition against the supported kinds.
// A schema declaring an unsupported field type is a configuration error
// raised here, before any record is produced.
func (r *Registry) validate() error {
	for _, t := range r.types {
		if t.Name == "" {
			return errors.NewConfigError("schema", "entity type with empty name", nil)
		}
		if len(t.Fields) == 0 {
			return errors.NewConfigError("schema",
				fmt.Sprintf("entity type %q declares no fields", t.Name), nil)
		}
		seen := make(map[string]bool, len(t.Fields))
		for _, f := range t.Fields {
			where := fmt.Sprintf("%s.%s", t.Name, f.Name)
			if f.Name == "" {
				return errors.NewConfigError("schema",
					fmt.Sprintf("entity type %q has a field with empty name", t.Name), nil)
			}
			if seen[f.Name] {
				return errors.NewConfigError("schema", "duplicate field "+where, nil)
			}
			seen[f.Name] = true
			if !f.Kind.Valid() {
				return errors.NewConfigError("schema",
					fmt.Sprintf("unsupported field kind %q on %s", f.Kind, where), nil)
			}
			switch f.Kind {
			case KindEnum:
				if len(f.Values) == 0 {
					return errors.NewConfigError("schema", "enum field "+where+" has no values", nil)
				}
			case KindReference:
				if len(f.Targets) == 0 {
					return errors.NewConfigError("schema", "reference field "+where+" has no targets", nil)
				}
				for _, target := range f.Targets {
					if _, ok := r.byName[target]; !ok {
						return errors.NewConfigError("schema",
							fmt.Sprintf("reference field %s targets unknown type %q", where, target), nil)
					}
				}
			case KindDate:
				if f.MinYear == 0 || f.MaxYear == 0 || f.MinYear > f.MaxYear {
					return errors.NewConfigError("schema",
						fmt.Sprintf("date field %s has invalid year range %d..%d", where, f.MinYear, f.MaxYear), nil)
				}
			}
		}
	}
	return nil
}

// Type returns the named entity type.
func (r *Registry) Type(name string) (EntityType, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Has reports whether the registry knows the named entity type.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Names returns all entity type names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.types))
	for _, t := range r.types {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Types returns all entity types in registry declaration order.
func (r *Registry) Types() []EntityType {
	out := make([]EntityType, len(r.types))
	copy(out, r.types)
	return out
}

// Len returns the number of entity types in the registry.
func (r *Registry) Len() int {
	return len(r.types)
}
