package csvsource

import (
	"strings"

	"github.com/agentstation/careroster/pkg/normalize"
	"github.com/agentstation/careroster/pkg/sources"
)

// Canonical column names.
const (
	colID                = "id"
	colName              = "name"
	colFamilyName        = "family_name"
	colGivenName         = "given_name"
	colKana              = "kana"
	colFamilyKana        = "family_kana"
	colGivenKana         = "given_kana"
	colBirthDate         = "birth_date"
	colGender            = "gender"
	colCareLevel         = "care_level"
	colCopay             = "copay"
	colWelfare           = "welfare"
	colCareManager       = "care_manager"
	colCareSupportOffice = "care_support_office"
	colFacility          = "facility"
	colRoom              = "room"
	colAddress           = "address"
	colStartDate         = "start_date"

	colSource        = "source"
	colEventID       = "event_id"
	colKind          = "kind"
	colDate          = "date"
	colNote          = "note"
	colOffice        = "office"
	colRecorder      = "recorder"
	colUsageCategory = "usage_category"

	colRowID       = "row_id"
	colProduct     = "product"
	colCategory    = "category"
	colStatus      = "status"
	colUnitPrice   = "unit_price"
	colQuantity    = "quantity"
	colTaxType     = "tax_type"
	colTaxIncluded = "tax_included"
)

// aliases lists the header spellings accepted for each canonical column.
var aliases = map[string][]string{
	colID:                {"id", "client_id", "clientid", "利用者id", "利用者番号", "利用者コード", "被保険者番号"},
	colName:              {"name", "full_name", "氏名", "利用者名", "利用者氏名"},
	colFamilyName:        {"family_name", "last_name", "姓"},
	colGivenName:         {"given_name", "first_name", "名"},
	colKana:              {"kana", "name_kana", "フリガナ", "ふりがな", "カナ", "氏名カナ"},
	colFamilyKana:        {"family_kana", "last_kana", "セイ"},
	colGivenKana:         {"given_kana", "first_kana", "メイ"},
	colBirthDate:         {"birth_date", "birthday", "生年月日"},
	colGender:            {"gender", "sex", "性別"},
	colCareLevel:         {"care_level", "要介護度", "介護度", "要介護状態区分"},
	colCopay:             {"copay", "copay_rate", "給付率", "負担割合"},
	colWelfare:           {"welfare", "public_assistance", "生保", "生活保護"},
	colCareManager:       {"care_manager", "ケアマネ", "ケアマネジャー", "担当ケアマネ", "介護支援専門員"},
	colCareSupportOffice: {"care_support_office", "居宅介護支援事業所", "居宅", "支援事業所"},
	colFacility:          {"facility", "facility_name", "施設名", "入居施設"},
	colRoom:              {"room", "room_number", "部屋番号", "居室"},
	colAddress:           {"address", "住所"},
	colStartDate:         {"start_date", "利用開始日", "開始日"},

	colSource:        {"source", "source_system", "システム"},
	colEventID:       {"event_id", "source_event_id", "イベントid", "記録id"},
	colKind:          {"kind", "event_kind", "type", "種別", "イベント種別", "区分"},
	colDate:          {"date", "effective_date", "日付", "発生日", "適用日"},
	colNote:          {"note", "notes", "備考", "メモ"},
	colOffice:        {"office", "事業所"},
	colRecorder:      {"recorder", "記録者", "担当者"},
	colUsageCategory: {"usage_category", "利用区分"},

	colRowID:       {"row_id", "line_id", "明細id", "行id"},
	colProduct:     {"product", "product_name", "商品名", "品名"},
	colCategory:    {"category", "種目", "カテゴリ"},
	colStatus:      {"status", "状態", "ステータス"},
	colUnitPrice:   {"unit_price", "price", "単価"},
	colQuantity:    {"quantity", "qty", "数量"},
	colTaxType:     {"tax_type", "税区分"},
	colTaxIncluded: {"tax_included", "税込金額", "税込"},
}

// required lists, per feed, column groups of which at least one must exist.
var required = map[sources.ID][][]string{
	sources.BaselineID:  {{colID, colName, colFamilyName}},
	sources.EventsID:    {{colEventID}, {colKind}, {colDate}, {colID, colName, colFamilyName}},
	sources.EquipmentID: {{colRowID}, {colProduct}, {colID, colName, colFamilyName}},
}

var aliasIndex = func() map[string]string {
	idx := make(map[string]string)
	for canonical, names := range aliases {
		for _, n := range names {
			idx[headerKey(n)] = canonical
		}
	}
	return idx
}()

func headerKey(h string) string {
	h = strings.ToLower(normalize.Compact(h))
	return strings.NewReplacer("_", "", "-", "", "・", "").Replace(h)
}

// header maps canonical column names to record positions.
type header map[string]int

func parseHeader(cols []string) header {
	h := make(header, len(cols))
	for i, c := range cols {
		if canonical, ok := aliasIndex[headerKey(c)]; ok {
			if _, dup := h[canonical]; !dup {
				h[canonical] = i
			}
		}
	}
	return h
}

func (h header) missing(feed sources.ID) []string {
	var out []string
	for _, group := range required[feed] {
		found := false
		for _, c := range group {
			if _, ok := h[c]; ok {
				found = true
				break
			}
		}
		if !found {
			out = append(out, group[0])
		}
	}
	return out
}

func (h header) get(record []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (h header) name(record []string) string {
	if n := h.get(record, colName); n != "" {
		return n
	}
	return normalize.DisplayName(h.get(record, colFamilyName), h.get(record, colGivenName))
}

func (h header) kana(record []string) string {
	if n := h.get(record, colKana); n != "" {
		return n
	}
	return normalize.DisplayName(h.get(record, colFamilyKana), h.get(record, colGivenKana))
}
