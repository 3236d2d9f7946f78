package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/archivist/internal/domain"
)

// fileCatalog is the YAML layout of a catalog file.
type fileCatalog struct {
	Entities []fileEntity `yaml:"entities"`
}

type fileEntity struct {
	ID         int            `yaml:"id"`
	Name       string         `yaml:"name"`
	Categories []fileCategory `yaml:"categories"`
}

type fileCategory struct {
	ID             int             `yaml:"id"`
	Name           string          `yaml:"name"`
	DisplayName    string          `yaml:"display_name"`
	NotPublicField string          `yaml:"not_public_field"`
	Attributes     []fileAttribute `yaml:"attributes"`
}

type fileAttribute struct {
	Field int    `yaml:"field"`
	Name  string `yaml:"name"`
	Type  Kind   `yaml:"type"`
}

// LoadFile builds a registry from a YAML catalog file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML catalog content.
func Parse(data []byte) (*Registry, error) {
	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %w", domain.ErrInvalidCatalog, err)
	}
	if len(fc.Entities) == 0 {
		return nil, fmt.Errorf("%w: no entities declared", domain.ErrInvalidCatalog)
	}

	entities := make([]Entity, len(fc.Entities))
	for i, fe := range fc.Entities {
		cats := make([]Category, len(fe.Categories))
		for j, fcat := range fe.Categories {
			attrs := make([]Attribute, len(fcat.Attributes))
			for k, fa := range fcat.Attributes {
				attrs[k] = Attribute{FieldNumber: fa.Field, Name: fa.Name, Type: Type{Name: fa.Type}}
			}
			cats[j] = Category{
				ID:                 fcat.ID,
				Name:               fcat.Name,
				DisplayName:        fcat.DisplayName,
				NotPublicFieldName: fcat.NotPublicField,
				Attributes:         attrs,
			}
		}
		entities[i] = Entity{ID: fe.ID, Name: fe.Name, Categories: cats}
	}

	return New(entities)
}
