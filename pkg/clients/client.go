// Package clients defines the canonical client roster model: the Client
// entity, its keyed child collections, the closed enumerations used for
// categorical fields, and the field table that drives merging and inference.
package clients

import (
	"time"

	"github.com/agentstation/careroster/pkg/errors"
)

// Client is the canonical record for one care client, keyed by the
// provider-issued roster ID.
type Client struct {
	ID string `json:"id" yaml:"id"`

	// Demographics
	Name      string `json:"name" yaml:"name"`
	NameKana  string `json:"name_kana,omitempty" yaml:"name_kana,omitempty"`
	BirthDate string `json:"birth_date,omitempty" yaml:"birth_date,omitempty"` // YYYY-MM-DD
	Gender    Gender `json:"gender,omitempty" yaml:"gender,omitempty"`

	// Insurance and classification
	CareLevel           CareLevel     `json:"care_level" yaml:"care_level"`
	CopayRate           CopayRate     `json:"copay_rate" yaml:"copay_rate"`
	PaymentType         PaymentType   `json:"payment_type" yaml:"payment_type"`
	CurrentStatus       CurrentStatus `json:"current_status" yaml:"current_status"`
	InsuranceCardStatus string        `json:"insurance_card_status" yaml:"insurance_card_status"`

	// Residence and contacts
	FacilityName string    `json:"facility_name,omitempty" yaml:"facility_name,omitempty"`
	RoomNumber   string    `json:"room_number,omitempty" yaml:"room_number,omitempty"`
	Address      string    `json:"address,omitempty" yaml:"address,omitempty"`
	KeyPerson    KeyPerson `json:"key_person,omitempty" yaml:"key_person,omitempty"`

	// Care coordination
	CareManager          string `json:"care_manager,omitempty" yaml:"care_manager,omitempty"`
	CareSupportOffice    string `json:"care_support_office,omitempty" yaml:"care_support_office,omitempty"`
	WelfareEquipmentUser bool   `json:"welfare_equipment_user" yaml:"welfare_equipment_user"`
	StartDate            string `json:"start_date,omitempty" yaml:"start_date,omitempty"`

	// Clinical notes
	MedicalHistory string `json:"medical_history,omitempty" yaml:"medical_history,omitempty"`

	// Owned collections, kept in first-seen order
	Meetings          []Meeting     `json:"meetings,omitempty" yaml:"meetings,omitempty"`
	ChangeEvents      []ChangeEvent `json:"change_events,omitempty" yaml:"change_events,omitempty"`
	PlannedEquipment  []Equipment   `json:"planned_equipment,omitempty" yaml:"planned_equipment,omitempty"`
	SelectedEquipment []Equipment   `json:"selected_equipment,omitempty" yaml:"selected_equipment,omitempty"`
	SalesRecords      []SalesRecord `json:"sales_records,omitempty" yaml:"sales_records,omitempty"`

	// Audit
	EditedBy  string `json:"edited_by,omitempty" yaml:"edited_by,omitempty"`
	EditedAt  string `json:"edited_at,omitempty" yaml:"edited_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// KeyPerson is the family member or guardian to contact for a client.
type KeyPerson struct {
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	Relationship string `json:"relationship,omitempty" yaml:"relationship,omitempty"`
	Contact      string `json:"contact,omitempty" yaml:"contact,omitempty"`
}

// IsZero reports whether no key person detail is recorded.
func (k KeyPerson) IsZero() bool {
	return k == KeyPerson{}
}

// New returns a client with every scalar field at its baseline value.
func New(id string) Client {
	c := Client{ID: id}
	for _, spec := range fieldTable {
		_ = spec.set(&c, spec.baseline)
	}
	return c
}

// Validate checks the invariants a persisted client must satisfy.
func (c *Client) Validate() error {
	if c.ID == "" {
		return errors.NewValidationError("id", c.ID, "stable identifier is required")
	}
	if !c.Gender.IsValid() {
		return errors.NewValidationError(string(FieldGender), c.Gender, "unknown gender")
	}
	if !c.CareLevel.IsValid() {
		return errors.NewValidationError(string(FieldCareLevel), c.CareLevel, "unknown care level")
	}
	if !c.CopayRate.IsValid() {
		return errors.NewValidationError(string(FieldCopayRate), c.CopayRate, "unknown copay rate")
	}
	if !c.PaymentType.IsValid() {
		return errors.NewValidationError(string(FieldPaymentType), c.PaymentType, "unknown payment type")
	}
	if !c.CurrentStatus.IsValid() {
		return errors.NewValidationError(string(FieldCurrentStatus), c.CurrentStatus, "unknown status")
	}

	seen := make(map[string]bool, len(c.ChangeEvents))
	for _, ev := range c.ChangeEvents {
		if seen[ev.ID] {
			return errors.NewValidationError("change_events", ev.ID, "duplicate change event id")
		}
		seen[ev.ID] = true
	}
	return nil
}

// Clone returns a deep copy of the client.
func (c Client) Clone() Client {
	c.Meetings = append([]Meeting(nil), c.Meetings...)
	c.ChangeEvents = append([]ChangeEvent(nil), c.ChangeEvents...)
	c.PlannedEquipment = append([]Equipment(nil), c.PlannedEquipment...)
	c.SelectedEquipment = append([]Equipment(nil), c.SelectedEquipment...)
	c.SalesRecords = append([]SalesRecord(nil), c.SalesRecords...)
	return c
}

// FormatTime renders a timestamp the way the registry stores audit times.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
