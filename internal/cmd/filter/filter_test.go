package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/careroster/internal/cmd/filter"
	"github.com/agentstation/careroster/pkg/clients"
)

func sample() []clients.Client {
	a := clients.New("AZ-1000")
	a.Name, a.NameKana = "佐藤 花子", "サトウ ハナコ"
	a.CareLevel = clients.CareLevelCare2

	b := clients.New("AZ-1001")
	b.Name, b.NameKana = "鈴木 太郎", "スズキ タロウ"
	b.CurrentStatus = clients.StatusInFacility
	b.FacilityName = "ひだまり荘"

	c := clients.New("AZ-1002")
	c.Name = "高橋 一郎"
	c.CurrentStatus = clients.StatusInFacility
	c.FacilityName = "あおば苑"
	return []clients.Client{a, b, c}
}

func ids(list []clients.Client) []string {
	var out []string
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

func TestClientFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter *filter.ClientFilter
		want   []string
	}{
		{"nil keeps all", nil, []string{"AZ-1000", "AZ-1001", "AZ-1002"}},
		{"status", &filter.ClientFilter{Status: "施設入居中"}, []string{"AZ-1001", "AZ-1002"}},
		{"care level alias", &filter.ClientFilter{CareLevel: "介護２"}, []string{"AZ-1000"}},
		{"facility", &filter.ClientFilter{Facility: "ひだまり"}, []string{"AZ-1001"}},
		{"search kana half width", &filter.ClientFilter{Search: "ｽｽﾞｷ"}, []string{"AZ-1001"}},
		{"search id", &filter.ClientFilter{Search: "az-1002"}, []string{"AZ-1002"}},
		{"limit", &filter.ClientFilter{Status: "施設入居中", Limit: 1}, []string{"AZ-1001"}},
		{"unknown status matches nothing", &filter.ClientFilter{Status: "不明"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(sample())))
		})
	}
}
