package catalog

import (
	"fmt"

	"github.com/kailas-cloud/archivist/internal/domain"
)

// Registry is the immutable catalog built once at startup.
// All accessors return copies; it is safe for concurrent use.
type Registry struct {
	entities   []Entity
	entityIdx  map[string]int
	categories map[int]categoryRef
}

type categoryRef struct {
	entity   int
	category int
	name     string
}

// New validates the declared entities and builds a registry.
// Every category receives a synthesized FULL_TEXT attribute numbered one past
// its highest declared field number.
func New(entities []Entity) (*Registry, error) {
	r := &Registry{
		entities:   make([]Entity, 0, len(entities)),
		entityIdx:  make(map[string]int, len(entities)),
		categories: make(map[int]categoryRef),
	}

	for _, e := range entities {
		if e.Name == "" {
			return nil, fmt.Errorf("%w: entity %d has no name", domain.ErrInvalidCatalog, e.ID)
		}
		if _, dup := r.entityIdx[e.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate entity %q", domain.ErrInvalidCatalog, e.Name)
		}

		built := Entity{ID: e.ID, Name: e.Name, Categories: make([]Category, 0, len(e.Categories))}
		names := make(map[string]bool, len(e.Categories))
		for _, c := range e.Categories {
			if prev, dup := r.categories[c.ID]; dup {
				return nil, fmt.Errorf("%w: category id %d used by %q and %q",
					domain.ErrInvalidCatalog, c.ID, prev.name, c.Name)
			}
			if names[c.Name] {
				return nil, fmt.Errorf("%w: duplicate category %q in entity %q",
					domain.ErrInvalidCatalog, c.Name, e.Name)
			}
			names[c.Name] = true
			cat, err := buildCategory(e.ID, c)
			if err != nil {
				return nil, err
			}
			r.categories[c.ID] = categoryRef{entity: len(r.entities), category: len(built.Categories), name: c.Name}
			built.Categories = append(built.Categories, cat)
		}

		r.entityIdx[e.Name] = len(r.entities)
		r.entities = append(r.entities, built)
	}

	return r, nil
}

// MustNew calls New and panics on error.
func MustNew(entities []Entity) *Registry {
	r, err := New(entities)
	if err != nil {
		panic(err)
	}
	return r
}

func buildCategory(entityID int, c Category) (Category, error) {
	if c.Name == "" {
		return Category{}, fmt.Errorf("%w: category %d has no name", domain.ErrInvalidCatalog, c.ID)
	}

	seen := make(map[int]bool, len(c.Attributes))
	attrs := make([]Attribute, 0, len(c.Attributes)+1)
	maxField := 0
	for _, a := range c.Attributes {
		if a.Type.Name == FullText {
			return Category{}, fmt.Errorf("%w: category %q declares a full-text attribute",
				domain.ErrInvalidCatalog, c.Name)
		}
		t, ok := TypeOf(a.Type.Name)
		if !ok {
			return Category{}, fmt.Errorf("%w: attribute %q of %q has unknown type %q",
				domain.ErrInvalidCatalog, a.Name, c.Name, a.Type.Name)
		}
		if a.FieldNumber < 1 || seen[a.FieldNumber] {
			return Category{}, fmt.Errorf("%w: attribute %q of %q has invalid field number %d",
				domain.ErrInvalidCatalog, a.Name, c.Name, a.FieldNumber)
		}
		seen[a.FieldNumber] = true
		maxField = max(maxField, a.FieldNumber)
		attrs = append(attrs, Attribute{FieldNumber: a.FieldNumber, Name: a.Name, Type: t})
	}
	if maxField != len(attrs) {
		return Category{}, fmt.Errorf("%w: field numbers of %q are not dense from 1",
			domain.ErrInvalidCatalog, c.Name)
	}

	ft, _ := TypeOf(FullText)
	attrs = append(attrs, Attribute{
		FieldNumber: maxField + 1,
		Name:        FullTextAttributeName,
		Type:        ft,
	})

	return Category{
		ID:                 c.ID,
		EntityID:           entityID,
		Name:               c.Name,
		DisplayName:        c.DisplayName,
		NotPublicFieldName: c.NotPublicFieldName,
		Attributes:         attrs,
	}, nil
}

// Entities returns all entities with their categories, in declaration order.
func (r *Registry) Entities() []Entity {
	out := make([]Entity, len(r.entities))
	for i, e := range r.entities {
		out[i] = e.clone()
	}
	return out
}

// AttributeTypes returns every attribute type with its operators.
func (r *Registry) AttributeTypes() []Type {
	return AttributeTypes()
}

// Entity looks up an entity by name.
func (r *Registry) Entity(name string) (Entity, error) {
	i, ok := r.entityIdx[name]
	if !ok {
		return Entity{}, fmt.Errorf("entity %q: %w", name, domain.ErrNotFound)
	}
	return r.entities[i].clone(), nil
}

// Category looks up a category by entity and category name.
func (r *Registry) Category(entityName, categoryName string) (Category, error) {
	i, ok := r.entityIdx[entityName]
	if !ok {
		return Category{}, fmt.Errorf("entity %q: %w", entityName, domain.ErrNotFound)
	}
	for _, c := range r.entities[i].Categories {
		if c.Name == categoryName {
			return c.clone(), nil
		}
	}
	return Category{}, fmt.Errorf("category %q of %q: %w", categoryName, entityName, domain.ErrNotFound)
}

// CategoryByID looks up a category by its catalog-wide identifier.
func (r *Registry) CategoryByID(id int) (Category, error) {
	ref, ok := r.categories[id]
	if !ok {
		return Category{}, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	return r.entities[ref.entity].Categories[ref.category].clone(), nil
}
