package product

// Attribute is one (fieldId, value) data point for a product instance.
// Value carries a string, float64 or bool depending on the owning
// field's data type.
type Attribute struct {
	FieldID int64 `json:"fieldId"`
	Value   any   `json:"value"`
}

// SearchAttribute is the enriched attribute shape returned by product
// search, carrying field metadata for column rendering.
type SearchAttribute struct {
	FieldID   int64  `json:"fieldId"`
	FieldName string `json:"fieldName"`
	DataType  string `json:"dataType"`
	Value     any    `json:"value"`
}

// Product is one instance of a series. The owning series is fixed at
// creation and never reassigned through edit. Deletion is a soft flag;
// archival is a separate, permission-gated state.
type Product struct {
	ItemID     int64       `json:"itemId"`
	SeriesID   int64       `json:"seriesId"`
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes"`
	IsDeleted  bool        `json:"isDeleted"`
	HasArchive bool        `json:"hasArchive"`
}

// SaveInput is one element of the batch save payload. ItemID is absent
// on create; SeriesID is absent on edit.
type SaveInput struct {
	ItemID     *int64      `json:"itemId,omitempty"`
	SeriesID   *int64      `json:"seriesId,omitempty"`
	Attributes []Attribute `json:"attributes"`
	IsDeleted  *bool       `json:"isDeleted,omitempty"`
}
