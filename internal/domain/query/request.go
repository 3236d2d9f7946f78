// Package query compiles category filter selections into the repository's
// ad-hoc query representation.
package query

// Index is a named index condition. Value is a repository value expression.
type Index struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// FullText is the single full-text condition of a request.
type FullText struct {
	Value string `json:"Value"`
}

// Request is the compiled, backend-agnostic query.
type Request struct {
	Indexes  []Index   `json:"Indexes"`
	FullText *FullText `json:"FullText,omitempty"`
}

// NewRequest returns an empty request.
func NewRequest() *Request {
	return &Request{Indexes: []Index{}}
}

// AddIndex appends a named index condition.
func (r *Request) AddIndex(name, value string) {
	r.Indexes = append(r.Indexes, Index{Name: name, Value: value})
}

// SetFullText replaces the full-text condition.
func (r *Request) SetFullText(value string) {
	r.FullText = &FullText{Value: value}
}

// IsEmpty reports whether the request has no conditions.
func (r *Request) IsEmpty() bool {
	return len(r.Indexes) == 0 && r.FullText == nil
}
