package inference

import (
	"strings"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/normalize"
)

const (
	femaleKanjiEndings = "子美江代枝乃香花菜音葉恵絵加佳華"
	femaleKanji        = "女婦姫"
	femaleKanaEndings  = "コミエヨナカリサキハアイ"
)

// GenderFromName proposes 女性 from the given name's characters.
type GenderFromName struct{}

func (GenderFromName) Name() string         { return "gender-from-name" }
func (GenderFromName) Field() clients.Field { return clients.FieldGender }

func (GenderFromName) Propose(s Snapshot) (any, bool) {
	given := normalize.Name(normalize.GivenName(s.Client.Name))
	if given == "" {
		return nil, false
	}
	if strings.ContainsAny(given, femaleKanji) {
		return clients.GenderFemale, true
	}
	last := string([]rune(given)[len([]rune(given))-1])
	if strings.Contains(femaleKanjiEndings, last) || strings.Contains(femaleKanaEndings, last) {
		return clients.GenderFemale, true
	}
	return nil, false
}

// PaymentFromWelfareFlag proposes 生保 for rows flagged as public assistance.
type PaymentFromWelfareFlag struct{}

func (PaymentFromWelfareFlag) Name() string         { return "payment-from-welfare-flag" }
func (PaymentFromWelfareFlag) Field() clients.Field { return clients.FieldPaymentType }

func (PaymentFromWelfareFlag) Propose(s Snapshot) (any, bool) {
	if !s.WelfareFlag {
		return nil, false
	}
	return clients.PaymentWelfare, true
}

// StatusFromFacility proposes 施設入居中 for clients with a facility.
type StatusFromFacility struct{}

func (StatusFromFacility) Name() string         { return "status-from-facility" }
func (StatusFromFacility) Field() clients.Field { return clients.FieldCurrentStatus }

func (StatusFromFacility) Propose(s Snapshot) (any, bool) {
	if normalize.Text(s.Client.FacilityName) == "" {
		return nil, false
	}
	return clients.StatusInFacility, true
}
