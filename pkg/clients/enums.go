package clients

// Gender is the recorded gender of a client.
type Gender string

// Gender values. GenderUnset is the baseline.
const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "男性"
	GenderFemale Gender = "女性"
	GenderOther  Gender = "その他"
)

// IsValid reports whether g is a known gender.
func (g Gender) IsValid() bool {
	switch g {
	case GenderUnset, GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// String returns the string representation of a Gender.
func (g Gender) String() string { return string(g) }

// PaymentType classifies how a client's care is paid for.
type PaymentType string

// PaymentType values. PaymentStandard is the baseline.
const (
	PaymentStandard PaymentType = "非生保"
	PaymentWelfare  PaymentType = "生保"
)

// IsValid reports whether p is a known payment type.
func (p PaymentType) IsValid() bool {
	return p == PaymentStandard || p == PaymentWelfare
}

// String returns the string representation of a PaymentType.
func (p PaymentType) String() string { return string(p) }

// CopayRate is the client's co-payment share under long-term care insurance.
type CopayRate string

// CopayRate values. CopayOneTenth is the baseline.
const (
	CopayOneTenth    CopayRate = "1割"
	CopayTwoTenths   CopayRate = "2割"
	CopayThreeTenths CopayRate = "3割"
)

// IsValid reports whether r is a known copay rate.
func (r CopayRate) IsValid() bool {
	switch r {
	case CopayOneTenth, CopayTwoTenths, CopayThreeTenths:
		return true
	}
	return false
}

// String returns the string representation of a CopayRate.
func (r CopayRate) String() string { return string(r) }

// CareLevel is the certified long-term care level.
type CareLevel string

// CareLevel values. CareLevelPending is the baseline.
const (
	CareLevelSupport1    CareLevel = "要支援1"
	CareLevelSupport2    CareLevel = "要支援2"
	CareLevelCare1       CareLevel = "要介護1"
	CareLevelCare2       CareLevel = "要介護2"
	CareLevelCare3       CareLevel = "要介護3"
	CareLevelCare4       CareLevel = "要介護4"
	CareLevelCare5       CareLevel = "要介護5"
	CareLevelProgramOnly CareLevel = "事業対象者"
	CareLevelPending     CareLevel = "申請中"
)

// CareLevels lists every care level in certification order.
func CareLevels() []CareLevel {
	return []CareLevel{
		CareLevelSupport1, CareLevelSupport2,
		CareLevelCare1, CareLevelCare2, CareLevelCare3, CareLevelCare4, CareLevelCare5,
		CareLevelProgramOnly, CareLevelPending,
	}
}

// IsValid reports whether l is a known care level.
func (l CareLevel) IsValid() bool {
	for _, known := range CareLevels() {
		if l == known {
			return true
		}
	}
	return false
}

// String returns the string representation of a CareLevel.
func (l CareLevel) String() string { return string(l) }

// CurrentStatus is where the client is currently living.
type CurrentStatus string

// CurrentStatus values. StatusAtHome is the baseline.
const (
	StatusAtHome       CurrentStatus = "在宅"
	StatusHospitalized CurrentStatus = "入院中"
	StatusInFacility   CurrentStatus = "施設入居中"
)

// IsValid reports whether s is a known status.
func (s CurrentStatus) IsValid() bool {
	switch s {
	case StatusAtHome, StatusHospitalized, StatusInFacility:
		return true
	}
	return false
}

// String returns the string representation of a CurrentStatus.
func (s CurrentStatus) String() string { return string(s) }

// EventKind is the billing-relevant transition a change event records.
type EventKind string

// EventKind values.
const (
	EventNewEnrollment       EventKind = "新規"
	EventHospitalizationStop EventKind = "入院（サービス停止）"
	EventDischargeResume     EventKind = "退院（サービス開始）"
	EventCancellation        EventKind = "解約"
)

// IsValid reports whether k is a known event kind.
func (k EventKind) IsValid() bool {
	switch k {
	case EventNewEnrollment, EventHospitalizationStop, EventDischargeResume, EventCancellation:
		return true
	}
	return false
}

// String returns the string representation of an EventKind.
func (k EventKind) String() string { return string(k) }

// Provenance distinguishes machine-ingested items from human-entered ones.
type Provenance string

// Provenance values.
const (
	ProvenanceMachine Provenance = "machine"
	ProvenanceHuman   Provenance = "human"
)

// MeetingType is the kind of care meeting recorded.
type MeetingType string

// MeetingType values.
const (
	MeetingConference   MeetingType = "カンファレンス"
	MeetingCareProvider MeetingType = "担当者会議"
)

// Status strings used for document and registration tracking.
const (
	StatusUnconfirmed   = "未確認"
	StatusNotHandled    = "未対応"
	StatusSelfPayRental = "自費レンタル"
	TaxExempt           = "非課税"
	UsageInsuredRental  = "介護保険レンタル"
)
