package clients

// Keyed is implemented by every collection item. Items with the same key are
// the same fact; a later version replaces an earlier one in place.
type Keyed interface {
	comparable
	Key() string
}

// Collection names a client's owned child collection.
type Collection string

// Collections owned by a client.
const (
	CollectionMeetings          Collection = "meetings"
	CollectionChangeEvents      Collection = "change_events"
	CollectionPlannedEquipment  Collection = "planned_equipment"
	CollectionSelectedEquipment Collection = "selected_equipment"
	CollectionSalesRecords      Collection = "sales_records"
)

// Meeting records a care conference or service-provider meeting.
type Meeting struct {
	ID           string      `json:"id" yaml:"id"`
	Date         string      `json:"date" yaml:"date"`
	Type         MeetingType `json:"type" yaml:"type"`
	Place        string      `json:"place,omitempty" yaml:"place,omitempty"`
	Participants string      `json:"participants,omitempty" yaml:"participants,omitempty"`
	Notes        string      `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Key returns the meeting ID.
func (m Meeting) Key() string { return m.ID }

// ChangeEvent is an append-only fact about a billing-relevant transition.
// ID is a synthetic key derived from the upstream event identity, so
// re-ingesting the same upstream fact replaces rather than duplicates.
type ChangeEvent struct {
	ID            string     `json:"id" yaml:"id"`
	EffectiveDate string     `json:"effective_date" yaml:"effective_date"`
	Kind          EventKind  `json:"kind" yaml:"kind"`
	Note          string     `json:"note,omitempty" yaml:"note,omitempty"`
	Provenance    Provenance `json:"provenance" yaml:"provenance"`

	Source        string `json:"source,omitempty" yaml:"source,omitempty"`
	SourceEventID string `json:"source_event_id,omitempty" yaml:"source_event_id,omitempty"`
	SourceKind    string `json:"source_kind,omitempty" yaml:"source_kind,omitempty"`

	Office           string `json:"office,omitempty" yaml:"office,omitempty"`
	Recorder         string `json:"recorder,omitempty" yaml:"recorder,omitempty"`
	UsageCategory    string `json:"usage_category,omitempty" yaml:"usage_category,omitempty"`
	WholesalerStatus string `json:"wholesaler_status,omitempty" yaml:"wholesaler_status,omitempty"`
}

// Key returns the synthetic event ID.
func (e ChangeEvent) Key() string { return e.ID }

// Equipment is a planned or selected welfare equipment item.
type Equipment struct {
	ID          string `json:"id" yaml:"id"`
	ProductName string `json:"product_name" yaml:"product_name"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
	UnitPrice   int    `json:"unit_price,omitempty" yaml:"unit_price,omitempty"`
	Quantity    int    `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	TaxType     string `json:"tax_type,omitempty" yaml:"tax_type,omitempty"`
	TaxIncluded int    `json:"tax_included,omitempty" yaml:"tax_included,omitempty"`
	Date        string `json:"date,omitempty" yaml:"date,omitempty"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Key returns the equipment item ID.
func (e Equipment) Key() string { return e.ID }

// IsSelfPay reports whether the item is rented outside insurance and
// therefore billed through a sales record.
func (e Equipment) IsSelfPay() bool { return e.Status == StatusSelfPayRental }

// SalesRecord is a billable line derived from a self-pay equipment item.
type SalesRecord struct {
	ID          string `json:"id" yaml:"id"`
	EquipmentID string `json:"equipment_id,omitempty" yaml:"equipment_id,omitempty"`
	Date        string `json:"date,omitempty" yaml:"date,omitempty"`
	ProductName string `json:"product_name" yaml:"product_name"`
	Quantity    int    `json:"quantity" yaml:"quantity"`
	UnitPrice   int    `json:"unit_price" yaml:"unit_price"`
	Subtotal    int    `json:"subtotal" yaml:"subtotal"`
	TaxType     string `json:"tax_type,omitempty" yaml:"tax_type,omitempty"`
	TaxIncluded int    `json:"tax_included" yaml:"tax_included"`
}

// Key returns the sales record ID.
func (s SalesRecord) Key() string { return s.ID }

// SalesRecordID is the key of the sales record derived from an equipment item.
func SalesRecordID(equipmentID string) string {
	return "sales-" + equipmentID
}

// SalesRecordFor derives the sales record for a self-pay equipment item.
func SalesRecordFor(e Equipment) SalesRecord {
	qty := e.Quantity
	if qty == 0 {
		qty = 1
	}
	subtotal := e.UnitPrice * qty
	taxIncluded := e.TaxIncluded
	if taxIncluded == 0 {
		taxIncluded = subtotal
	}
	taxType := e.TaxType
	if taxType == "" {
		taxType = TaxExempt
	}
	return SalesRecord{
		ID:          SalesRecordID(e.ID),
		EquipmentID: e.ID,
		Date:        e.Date,
		ProductName: e.ProductName,
		Quantity:    qty,
		UnitPrice:   e.UnitPrice,
		Subtotal:    subtotal,
		TaxType:     taxType,
		TaxIncluded: taxIncluded,
	}
}
