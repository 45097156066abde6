package clients

import "fmt"

// Patch is a partial client record. A nil field was not supplied by the
// layer the patch came from.
type Patch struct {
	Name                 *string        `json:"name,omitempty" yaml:"name,omitempty"`
	NameKana             *string        `json:"name_kana,omitempty" yaml:"name_kana,omitempty"`
	BirthDate            *string        `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	Gender               *Gender        `json:"gender,omitempty" yaml:"gender,omitempty"`
	CareLevel            *CareLevel     `json:"care_level,omitempty" yaml:"care_level,omitempty"`
	CopayRate            *CopayRate     `json:"copay_rate,omitempty" yaml:"copay_rate,omitempty"`
	PaymentType          *PaymentType   `json:"payment_type,omitempty" yaml:"payment_type,omitempty"`
	CurrentStatus        *CurrentStatus `json:"current_status,omitempty" yaml:"current_status,omitempty"`
	InsuranceCardStatus  *string        `json:"insurance_card_status,omitempty" yaml:"insurance_card_status,omitempty"`
	FacilityName         *string        `json:"facility_name,omitempty" yaml:"facility_name,omitempty"`
	RoomNumber           *string        `json:"room_number,omitempty" yaml:"room_number,omitempty"`
	Address              *string        `json:"address,omitempty" yaml:"address,omitempty"`
	KeyPerson            *KeyPerson     `json:"key_person,omitempty" yaml:"key_person,omitempty"`
	CareManager          *string        `json:"care_manager,omitempty" yaml:"care_manager,omitempty"`
	CareSupportOffice    *string        `json:"care_support_office,omitempty" yaml:"care_support_office,omitempty"`
	WelfareEquipmentUser *bool          `json:"welfare_equipment_user,omitempty" yaml:"welfare_equipment_user,omitempty"`
	StartDate            *string        `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	MedicalHistory       *string        `json:"medical_history,omitempty" yaml:"medical_history,omitempty"`
}

// Get returns the patched value of f and whether the patch supplies it.
func (p *Patch) Get(f Field) (any, bool) {
	if p == nil {
		return nil, false
	}
	s, ok := lookup(f)
	if !ok {
		return nil, false
	}
	return s.patchGet(p)
}

// Set supplies a value for f.
func (p *Patch) Set(f Field, v any) error {
	s, ok := lookup(f)
	if !ok {
		return fmt.Errorf("unknown field %s", f)
	}
	return s.patchSet(p, v)
}

// Fields returns the fields the patch supplies, in table order.
func (p *Patch) Fields() []Field {
	var out []Field
	for _, s := range fieldTable {
		if _, ok := s.patchGet(p); ok {
			out = append(out, s.field)
		}
	}
	return out
}

// IsEmpty reports whether the patch supplies no fields.
func (p *Patch) IsEmpty() bool {
	return p == nil || len(p.Fields()) == 0
}
