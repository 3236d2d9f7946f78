package query

import "github.com/kailas-cloud/archivist/internal/domain/catalog"

// Overlay copies the caller's filter selections onto the authoritative catalog
// category. Attributes are matched by field number and operators are resolved
// by name within the catalog type, so a request cannot change attribute types,
// names or the visibility column. Unknown operators are dropped.
func Overlay(base, selection catalog.Category) catalog.Category {
	base.Attributes = append([]catalog.Attribute(nil), base.Attributes...)
	for i := range base.Attributes {
		a := &base.Attributes[i]
		a.SelectedFilterType = nil
		a.FilterValue1, a.FilterValue2 = "", ""

		sel, ok := selection.AttributeByField(a.FieldNumber)
		if !ok || sel.SelectedFilterType == nil {
			continue
		}
		op, ok := a.Type.Operator(sel.SelectedFilterType.Name)
		if !ok {
			continue
		}
		a.SelectedFilterType = &op
		a.FilterValue1 = sel.FilterValue1
		a.FilterValue2 = sel.FilterValue2
	}
	return base
}
