// Package catalog is the taxonomy of entities, document categories and typed
// attributes exposed by the gateway.
package catalog

// FullTextAttributeName names the synthesized full-text attribute of every category.
const FullTextAttributeName = FullTextOperator

// Entity is an organizational unit owning a set of categories.
type Entity struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
}

// Category is a document collection mapped to one repository application.
type Category struct {
	ID          int    `json:"id"`
	EntityID    int    `json:"entityId"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	// NotPublicFieldName is the index column flagging restricted documents.
	// It is never taken from a request.
	NotPublicFieldName string      `json:"-"`
	Attributes         []Attribute `json:"attributes"`
}

// Attribute is a typed field of a category. The selection and the filter values
// are populated by callers at query time only.
type Attribute struct {
	FieldNumber        int         `json:"fieldNumber"`
	Name               string      `json:"name"`
	Type               Type        `json:"type"`
	SelectedFilterType *FilterType `json:"selectedFilterType,omitempty"`
	FilterValue1       string      `json:"filterValue1,omitempty"`
	FilterValue2       string      `json:"filterValue2,omitempty"`
}

// AttributeByField returns the attribute with the given field number.
func (c Category) AttributeByField(fieldNumber int) (Attribute, bool) {
	for _, a := range c.Attributes {
		if a.FieldNumber == fieldNumber {
			return a, true
		}
	}
	return Attribute{}, false
}

// HasVisibilityField reports whether the category declares a not-public column.
func (c Category) HasVisibilityField() bool { return c.NotPublicFieldName != "" }

func (e Entity) clone() Entity {
	cats := make([]Category, len(e.Categories))
	for i, c := range e.Categories {
		cats[i] = c.clone()
	}
	e.Categories = cats
	return e
}

func (c Category) clone() Category {
	attrs := make([]Attribute, len(c.Attributes))
	for i, a := range c.Attributes {
		a.Type = a.Type.clone()
		if a.SelectedFilterType != nil {
			ft := *a.SelectedFilterType
			a.SelectedFilterType = &ft
		}
		attrs[i] = a
	}
	c.Attributes = attrs
	return c
}
