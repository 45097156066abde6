package csvsource_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"

	"github.com/agentstation/careroster/internal/sources/csvsource"
	"github.com/agentstation/careroster/internal/transport"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/sources"
)

const rosterCSV = "利用者ID,姓,名,セイ,メイ,生年月日,性別,要介護度,給付率,生保,ケアマネ,施設名,利用開始日\n" +
	"AZ-1000,佐藤,花子,サトウ,ハナコ,1940/3/5,,要介護３,90,,田中,,2025/4/1\n" +
	",,,,,,,,,,,,\n" +
	"AZ-1001,鈴木,一郎,スズキ,イチロウ,1938年1月2日,男,要支援1,80,〇,田中,さくら苑,\n"

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func fetch(t *testing.T, feed sources.ID, location string, opts ...csvsource.Option) *sources.Extract {
	t.Helper()
	src, err := csvsource.New(feed, location, opts...)
	require.NoError(t, err)
	ext, err := src.Fetch(context.Background())
	require.NoError(t, err)
	return ext
}

func TestBaselineUTF8WithAliases(t *testing.T) {
	ext := fetch(t, sources.BaselineID, writeFile(t, "roster.csv", []byte(rosterCSV)))

	require.Len(t, ext.Baseline, 2, "blank rows are skipped")
	first := ext.Baseline[0]
	assert.Equal(t, 1, first.Row)
	assert.Equal(t, "AZ-1000", first.ID)
	assert.Equal(t, "佐藤 花子", first.Name)
	assert.Equal(t, "サトウ ハナコ", first.NameKana)
	assert.Equal(t, "1940/3/5", first.BirthDate)
	assert.Equal(t, "要介護３", first.CareLevel)
	assert.Equal(t, "90", first.CopayCode)
	assert.Equal(t, "2025/4/1", first.StartDate)

	second := ext.Baseline[1]
	assert.Equal(t, 3, second.Row)
	assert.Equal(t, "〇", second.WelfareFlag)
	assert.Equal(t, "さくら苑", second.FacilityName)
}

func TestShiftJISAndBOM(t *testing.T) {
	sjis, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(rosterCSV))
	require.NoError(t, err)
	data, enc, err := csvsource.Decode(sjis)
	require.NoError(t, err)
	assert.Equal(t, csvsource.EncodingShiftJIS, enc)
	assert.Equal(t, rosterCSV, string(data))

	ext := fetch(t, sources.BaselineID, writeFile(t, "sjis.csv", sjis))
	require.Len(t, ext.Baseline, 2)
	assert.Equal(t, "佐藤 花子", ext.Baseline[0].Name)

	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte(rosterCSV)...)
	data, enc, err = csvsource.Decode(bom)
	require.NoError(t, err)
	assert.Equal(t, csvsource.EncodingUTF8BOM, enc)
	assert.Equal(t, rosterCSV, string(data))

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(rosterCSV))
	require.NoError(t, err)
	data, enc, err = csvsource.Decode(utf16)
	require.NoError(t, err)
	assert.Equal(t, csvsource.EncodingUTF16, enc)
	assert.Equal(t, rosterCSV, string(data))
}

func TestEventRows(t *testing.T) {
	csv := "source,event_id,client_id,kind,effective_date,note\n" +
		"occupancy,501,AZ-1000,move-in,2025-12-03,入居\n" +
		",502,,hospitalization,2025-12-10,\n"
	ext := fetch(t, sources.EventsID, writeFile(t, "events.csv", []byte(csv)), csvsource.WithEventSystem("facility"))

	require.Len(t, ext.Events, 2)
	assert.Equal(t, sources.EventRow{
		Row: 1, Source: "occupancy", SourceEventID: "501", ClientID: "AZ-1000",
		Kind: "move-in", EffectiveDate: "2025-12-03", Note: "入居",
	}, ext.Events[0])
	assert.Equal(t, "facility", ext.Events[1].Source, "default system for rows without a source column value")
}

func TestEquipmentRows(t *testing.T) {
	csv := "明細ID,利用者ID,商品名,種目,状態,単価,数量,税区分,税込金額,日付\n" +
		"r-1,AZ-1000,車いす,車いす,自費レンタル,\"3,000\",1,非課税,3000,2025/12/01\n"
	ext := fetch(t, sources.EquipmentID, writeFile(t, "equipment.csv", []byte(csv)))

	require.Len(t, ext.Equipment, 1)
	row := ext.Equipment[0]
	assert.Equal(t, "r-1", row.RowID)
	assert.Equal(t, "3,000", row.UnitPrice)
	assert.Equal(t, "自費レンタル", row.Status)
	assert.Equal(t, "occupancy", row.Source)
}

func TestMissingColumnsIsPermanent(t *testing.T) {
	src, err := csvsource.New(sources.EventsID, writeFile(t, "events.csv", []byte("client_id,note\nAZ-1,x\n")))
	require.NoError(t, err)

	_, err = src.Fetch(context.Background())
	require.Error(t, err)

	// surfaced as unavailable after a single attempt
	err = sources.Retry(context.Background(), sources.RetryConfig{MaxRetries: 3, Multiplier: 1}, "events",
		func(ctx context.Context) error { _, err := src.Fetch(ctx); return err })
	var sue *errors.SourceUnavailableError
	require.ErrorAs(t, err, &sue)
	assert.Equal(t, 1, sue.Attempts)
}

func TestEmptyFile(t *testing.T) {
	ext := fetch(t, sources.BaselineID, writeFile(t, "empty.csv", nil))
	assert.Empty(t, ext.Baseline)
}

func TestHTTPSource(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, "Bearer feed-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(rosterCSV))
	}))
	defer srv.Close()

	src, err := csvsource.New(sources.BaselineID, srv.URL+"/roster.csv",
		csvsource.WithClient(transport.New(transport.FromToken("feed-token"))))
	require.NoError(t, err)

	cfg := sources.RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, Multiplier: 1}
	ext, err := sources.FetchAll(context.Background(), cfg, src)
	require.NoError(t, err)
	assert.Len(t, ext.Baseline, 2)
	assert.Equal(t, int32(2), calls.Load(), "a 502 is retried")
}

func TestHTTPNotFoundIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	src, err := csvsource.New(sources.BaselineID, srv.URL+"/missing.csv")
	require.NoError(t, err)

	cfg := sources.RetryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, Multiplier: 1}
	_, err = sources.FetchAll(context.Background(), cfg, src)
	var sue *errors.SourceUnavailableError
	require.ErrorAs(t, err, &sue)
	assert.Equal(t, 1, sue.Attempts)
}

func TestNewValidates(t *testing.T) {
	_, err := csvsource.New("fax", "x.csv")
	assert.Error(t, err)
	_, err = csvsource.New(sources.BaselineID, "")
	assert.Error(t, err)
}
