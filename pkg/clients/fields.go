package clients

import (
	"fmt"
	"slices"
)

// Field names a scalar client field.
type Field string

// Scalar client fields.
const (
	FieldName                 Field = "name"
	FieldNameKana             Field = "name_kana"
	FieldBirthDate            Field = "birth_date"
	FieldGender               Field = "gender"
	FieldCareLevel            Field = "care_level"
	FieldCopayRate            Field = "copay_rate"
	FieldPaymentType          Field = "payment_type"
	FieldCurrentStatus        Field = "current_status"
	FieldInsuranceCardStatus  Field = "insurance_card_status"
	FieldFacilityName         Field = "facility_name"
	FieldRoomNumber           Field = "room_number"
	FieldAddress              Field = "address"
	FieldKeyPerson            Field = "key_person"
	FieldCareManager          Field = "care_manager"
	FieldCareSupportOffice    Field = "care_support_office"
	FieldWelfareEquipmentUser Field = "welfare_equipment_user"
	FieldStartDate            Field = "start_date"
	FieldMedicalHistory       Field = "medical_history"
)

// String returns the field name.
func (f Field) String() string { return string(f) }

type fieldSpec struct {
	field    Field
	baseline any
	get      func(*Client) any
	set      func(*Client, any) error
	patchGet func(*Patch) (any, bool)
	patchSet func(*Patch, any) error
}

func scalar[T comparable](f Field, baseline T, onClient func(*Client) *T, onPatch func(*Patch) **T) fieldSpec {
	mismatch := func(v any) error {
		return fmt.Errorf("field %s: cannot assign %T", f, v)
	}
	return fieldSpec{
		field:    f,
		baseline: baseline,
		get:      func(c *Client) any { return *onClient(c) },
		set: func(c *Client, v any) error {
			t, ok := v.(T)
			if !ok {
				return mismatch(v)
			}
			*onClient(c) = t
			return nil
		},
		patchGet: func(p *Patch) (any, bool) {
			ptr := *onPatch(p)
			if ptr == nil {
				return nil, false
			}
			return *ptr, true
		},
		patchSet: func(p *Patch, v any) error {
			t, ok := v.(T)
			if !ok {
				return mismatch(v)
			}
			*onPatch(p) = &t
			return nil
		},
	}
}

var fieldTable = []fieldSpec{
	scalar(FieldName, "", func(c *Client) *string { return &c.Name }, func(p *Patch) **string { return &p.Name }),
	scalar(FieldNameKana, "", func(c *Client) *string { return &c.NameKana }, func(p *Patch) **string { return &p.NameKana }),
	scalar(FieldBirthDate, "", func(c *Client) *string { return &c.BirthDate }, func(p *Patch) **string { return &p.BirthDate }),
	scalar(FieldGender, GenderUnset, func(c *Client) *Gender { return &c.Gender }, func(p *Patch) **Gender { return &p.Gender }),
	scalar(FieldCareLevel, CareLevelPending, func(c *Client) *CareLevel { return &c.CareLevel }, func(p *Patch) **CareLevel { return &p.CareLevel }),
	scalar(FieldCopayRate, CopayOneTenth, func(c *Client) *CopayRate { return &c.CopayRate }, func(p *Patch) **CopayRate { return &p.CopayRate }),
	scalar(FieldPaymentType, PaymentStandard, func(c *Client) *PaymentType { return &c.PaymentType }, func(p *Patch) **PaymentType { return &p.PaymentType }),
	scalar(FieldCurrentStatus, StatusAtHome, func(c *Client) *CurrentStatus { return &c.CurrentStatus }, func(p *Patch) **CurrentStatus { return &p.CurrentStatus }),
	scalar(FieldInsuranceCardStatus, StatusUnconfirmed, func(c *Client) *string { return &c.InsuranceCardStatus }, func(p *Patch) **string { return &p.InsuranceCardStatus }),
	scalar(FieldFacilityName, "", func(c *Client) *string { return &c.FacilityName }, func(p *Patch) **string { return &p.FacilityName }),
	scalar(FieldRoomNumber, "", func(c *Client) *string { return &c.RoomNumber }, func(p *Patch) **string { return &p.RoomNumber }),
	scalar(FieldAddress, "", func(c *Client) *string { return &c.Address }, func(p *Patch) **string { return &p.Address }),
	scalar(FieldKeyPerson, KeyPerson{}, func(c *Client) *KeyPerson { return &c.KeyPerson }, func(p *Patch) **KeyPerson { return &p.KeyPerson }),
	scalar(FieldCareManager, "", func(c *Client) *string { return &c.CareManager }, func(p *Patch) **string { return &p.CareManager }),
	scalar(FieldCareSupportOffice, "", func(c *Client) *string { return &c.CareSupportOffice }, func(p *Patch) **string { return &p.CareSupportOffice }),
	scalar(FieldWelfareEquipmentUser, false, func(c *Client) *bool { return &c.WelfareEquipmentUser }, func(p *Patch) **bool { return &p.WelfareEquipmentUser }),
	scalar(FieldStartDate, "", func(c *Client) *string { return &c.StartDate }, func(p *Patch) **string { return &p.StartDate }),
	scalar(FieldMedicalHistory, "", func(c *Client) *string { return &c.MedicalHistory }, func(p *Patch) **string { return &p.MedicalHistory }),
}

func lookup(f Field) (fieldSpec, bool) {
	i := slices.IndexFunc(fieldTable, func(s fieldSpec) bool { return s.field == f })
	if i < 0 {
		return fieldSpec{}, false
	}
	return fieldTable[i], true
}

// Fields returns every scalar field in declaration order.
func Fields() []Field {
	out := make([]Field, len(fieldTable))
	for i, s := range fieldTable {
		out[i] = s.field
	}
	return out
}

// IsKnown reports whether f names a scalar field.
func IsKnown(f Field) bool {
	_, ok := lookup(f)
	return ok
}

// Baseline returns the canonical unset value of a field.
func Baseline(f Field) any {
	s, ok := lookup(f)
	if !ok {
		return nil
	}
	return s.baseline
}

// IsBaseline reports whether v is the unset value of f.
func IsBaseline(f Field, v any) bool {
	s, ok := lookup(f)
	return ok && v == s.baseline
}

// Get returns the value of a field.
func (c *Client) Get(f Field) any {
	s, ok := lookup(f)
	if !ok {
		return nil
	}
	return s.get(c)
}

// Set assigns a field. The value must have the field's Go type.
func (c *Client) Set(f Field, v any) error {
	s, ok := lookup(f)
	if !ok {
		return fmt.Errorf("unknown field %s", f)
	}
	return s.set(c, v)
}
