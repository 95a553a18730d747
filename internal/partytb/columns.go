package partytb

// Column describes how a presentation layer renders one report field.
type Column struct {
	FieldName string `json:"fieldname"`
	Label     string `json:"label"`
	FieldType string `json:"fieldtype"`
	Options   string `json:"options,omitempty"`
	Width     int    `json:"width,omitempty"`
	Hidden    bool   `json:"hidden,omitempty"`
}

func currencyColumn(field, label string) Column {
	return Column{FieldName: field, Label: label, FieldType: "Currency", Options: "currency", Width: 120}
}

// Columns returns the report layout; the party name column is only present
// when names are visible for the party type.
func Columns(partyType PartyType, showPartyName bool) []Column {
	cols := []Column{
		{FieldName: "party", Label: string(partyType), FieldType: "Link", Options: string(partyType), Width: 200},
	}
	if showPartyName {
		cols = append(cols, Column{FieldName: "party_name", Label: string(partyType) + " Name", FieldType: "Data", Width: 200})
	}
	return append(cols,
		currencyColumn("opening_debit", "Opening (Dr)"),
		currencyColumn("opening_credit", "Opening (Cr)"),
		currencyColumn("debit", "Debit"),
		currencyColumn("credit", "Credit"),
		currencyColumn("closing_debit", "Closing (Dr)"),
		currencyColumn("closing_credit", "Closing (Cr)"),
		Column{FieldName: "currency", Label: "Currency", FieldType: "Link", Options: "Currency", Hidden: true},
	)
}
