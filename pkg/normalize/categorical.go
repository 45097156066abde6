package normalize

import (
	"strings"

	"github.com/agentstation/careroster/pkg/clients"
)

// CopayRate maps a benefit-rate code to a copay rate. Codes are read by
// their leading digits: 90 (percent covered) is 1割, 80 is 2割, 70 is 3割.
// The rate names themselves are accepted as-is.
func CopayRate(raw string) (clients.CopayRate, bool) {
	s := strings.TrimSuffix(Compact(raw), "%")
	switch {
	case s == "":
		return clients.CopayOneTenth, true
	case clients.CopayRate(s).IsValid():
		return clients.CopayRate(s), true
	case strings.HasPrefix(s, "90"):
		return clients.CopayOneTenth, true
	case strings.HasPrefix(s, "80"):
		return clients.CopayTwoTenths, true
	case strings.HasPrefix(s, "70"):
		return clients.CopayThreeTenths, true
	}
	return clients.CopayOneTenth, false
}

var careLevelAliases = strings.NewReplacer(
	"要介護度", "要介護",
	"要支援度", "要支援",
	"事業対象者", "事業対象者",
	"事業対象", "事業対象者",
)

// CareLevel maps a care level written with full-width digits, stray spaces or
// a shortened prefix ("介護3", "支援1") to its canonical form.
func CareLevel(raw string) (clients.CareLevel, bool) {
	s := careLevelAliases.Replace(Compact(raw))
	if s == "" {
		return clients.CareLevelPending, true
	}
	if strings.HasPrefix(s, "介護") || strings.HasPrefix(s, "支援") {
		s = "要" + s
	}
	if level := clients.CareLevel(s); level.IsValid() {
		return level, true
	}
	return clients.CareLevelPending, false
}

// Gender maps the spellings sources use for gender.
func Gender(raw string) (clients.Gender, bool) {
	switch strings.ToLower(Compact(raw)) {
	case "":
		return clients.GenderUnset, true
	case "男", "男性", "m", "male":
		return clients.GenderMale, true
	case "女", "女性", "f", "female":
		return clients.GenderFemale, true
	case "その他", "other":
		return clients.GenderOther, true
	}
	return clients.GenderUnset, false
}

// PaymentType maps a payment classification.
func PaymentType(raw string) (clients.PaymentType, bool) {
	switch Compact(raw) {
	case "", "非生保", "一般":
		return clients.PaymentStandard, true
	case "生保", "生活保護", "生活保護受給":
		return clients.PaymentWelfare, true
	}
	return clients.PaymentStandard, false
}

// CurrentStatus maps where a client lives.
func CurrentStatus(raw string) (clients.CurrentStatus, bool) {
	switch Compact(raw) {
	case "", "在宅", "自宅":
		return clients.StatusAtHome, true
	case "入院", "入院中":
		return clients.StatusHospitalized, true
	case "施設", "入居中", "施設入居中", "施設入所":
		return clients.StatusInFacility, true
	}
	return clients.StatusAtHome, false
}
