package catalog

// Kind is the value type of an attribute.
type Kind string

// Attribute kinds.
const (
	Numeric  Kind = "NUMERIC"
	Date     Kind = "DATE"
	Text     Kind = "TEXT"
	FullText Kind = "FULL_TEXT"
)

// IsValid reports whether the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == Numeric || k == Date || k == Text || k == FullText
}

// Slot is the structural position of an operator within its type.
// Every filterable type exposes the same four slots under its own names;
// FULL_TEXT has a single slot of its own.
type Slot int

// Operator slots.
const (
	SlotNone Slot = iota
	SlotEquals
	SlotGreater
	SlotLess
	SlotBetween
	SlotFullText
)

// Operator names. The same literal can appear under several types.
const (
	EqualsOperator      = "EQUALS"
	GreaterThanOperator = "GREATER_THAN"
	LessThanOperator    = "LESS_THAN"
	BetweenOperator     = "BETWEEN"
	AfterOperator       = "AFTER"
	BeforeOperator      = "BEFORE"
	StartsWithOperator  = "STARTS_WITH"
	EndsWithOperator    = "ENDS_WITH"
	ContainsOperator    = "CONTAINS"
	FullTextOperator    = "FULL_TEXT"
)

// FilterType is an operator scoped to a Type.
// Its slot is only known for operators taken from the catalog; operators decoded
// from a request carry a name and must be resolved with Type.Operator.
type FilterType struct {
	Name string `json:"name"`
	slot Slot
}

// Slot returns the operator's structural slot.
func (f FilterType) Slot() Slot { return f.slot }

// Type is an attribute type with its fixed, ordered operator list.
type Type struct {
	Name        Kind         `json:"name"`
	FilterTypes []FilterType `json:"filterTypes"`
}

// Operator resolves an operator by name within this type.
func (t Type) Operator(name string) (FilterType, bool) {
	for _, ft := range t.FilterTypes {
		if ft.Name == name {
			return ft, true
		}
	}
	return FilterType{}, false
}

func (t Type) clone() Type {
	return Type{Name: t.Name, FilterTypes: append([]FilterType(nil), t.FilterTypes...)}
}

func newType(kind Kind, names ...string) Type {
	slots := []Slot{SlotEquals, SlotGreater, SlotLess, SlotBetween}
	if kind == FullText {
		slots = []Slot{SlotFullText}
	}
	fts := make([]FilterType, len(names))
	for i, n := range names {
		fts[i] = FilterType{Name: n, slot: slots[i]}
	}
	return Type{Name: kind, FilterTypes: fts}
}

// attributeTypes is fixed catalog data in presentation order.
var attributeTypes = []Type{
	newType(Numeric, EqualsOperator, GreaterThanOperator, LessThanOperator, BetweenOperator),
	newType(Date, EqualsOperator, AfterOperator, BeforeOperator, BetweenOperator),
	newType(Text, EqualsOperator, StartsWithOperator, EndsWithOperator, ContainsOperator),
	newType(FullText, FullTextOperator),
}

// AttributeTypes returns a copy of all attribute types.
func AttributeTypes() []Type {
	out := make([]Type, len(attributeTypes))
	for i, t := range attributeTypes {
		out[i] = t.clone()
	}
	return out
}

// TypeOf returns the catalog type for a kind.
func TypeOf(kind Kind) (Type, bool) {
	for _, t := range attributeTypes {
		if t.Name == kind {
			return t.clone(), true
		}
	}
	return Type{}, false
}
