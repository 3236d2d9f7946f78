package catalog

// Built-in catalog identifiers.
const (
	HistoricalCommissionID   = 1
	HistoricalCommissionName = "HISTORICAL_COMMISSION"

	// NotPublicField is the repository index flagging restricted scans.
	NotPublicField = "NOT PUBLIC"
)

// Default returns the registry for the built-in catalog of the historical
// commission archive.
func Default() *Registry {
	return MustNew(builtinEntities())
}

func builtinEntities() []Entity {
	num, _ := TypeOf(Numeric)
	date, _ := TypeOf(Date)
	text, _ := TypeOf(Text)

	return []Entity{
		{
			ID:   HistoricalCommissionID,
			Name: HistoricalCommissionName,
			Categories: []Category{
				{
					ID:                 6,
					Name:               "HISTORICAL_COMM-CARD_CATALOG",
					DisplayName:        "Card Catalog",
					NotPublicFieldName: NotPublicField,
					Attributes: numbered(
						field("HOUSE NUMBER", num),
						field("STREET DIRECTION", text),
						field("STREET NAME", text),
						field("STREET DESIGNATION", text),
						field("SCAN DATE", date),
						field("BOX #", num),
					),
				},
				{
					ID:          7,
					Name:        "HISTORICAL_COMM-MEETING_MINUTES",
					DisplayName: "Meeting Minutes",
					Attributes: numbered(
						field("MEETING DATE", date),
						field("MEETING DESIGNATION", num),
						field("SCAN DATE", date),
						field("BOX #", num),
					),
				},
				{
					ID:                 4,
					Name:               "HISTORICAL_COMM-PERMITS",
					DisplayName:        "Permits",
					NotPublicFieldName: NotPublicField,
					Attributes: numbered(
						field("PERMIT NUMBER", num),
						field("HOUSE NUMBER", num),
						field("STREET DIRECTION", text),
						field("STREET NAME", text),
						field("STREET DESIGNATION", text),
						field("LOCATION", text),
						field("SCAN DATE", date),
						field("BOX #", num),
					),
				},
				{
					ID:          3,
					Name:        "HISTORICAL_COMM-POLAROIDS",
					DisplayName: "Polaroids",
					Attributes: numbered(
						field("LOCATION", num),
						field("SCAN DATE", date),
						field("BOX #", num),
					),
				},
				{
					ID:          5,
					Name:        "HISTORICAL_COMM-REGISTRY",
					DisplayName: "Registry",
					Attributes: numbered(
						field("LOCATION", text),
						field("SCAN DATE", date),
						field("BOX #", num),
					),
				},
			},
		},
	}
}

func field(name string, t Type) Attribute {
	return Attribute{Name: name, Type: t}
}

// numbered assigns field numbers in declaration order.
func numbered(attrs ...Attribute) []Attribute {
	for i := range attrs {
		attrs[i].FieldNumber = i + 1
	}
	return attrs
}
