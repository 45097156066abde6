package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/identity"
)

func testIndex(t *testing.T) *identity.Index {
	t.Helper()

	hanako := clients.New("AZ-1000")
	hanako.Name, hanako.NameKana = "山田 花子", "ヤマダ ハナコ"

	taro := clients.New("AZ-1001")
	taro.Name, taro.NameKana = "鈴木 太郎", "スズキ タロウ"

	// Two clients share a name and reading.
	twinA := clients.New("AZ-2000")
	twinA.Name, twinA.NameKana = "佐藤 誠", "サトウ マコト"
	twinB := clients.New("AZ-2001")
	twinB.Name, twinB.NameKana = "佐藤　誠", "さとう まこと"

	reg, err := clients.NewRegistry(hanako, taro, twinA, twinB)
	require.NoError(t, err)
	return identity.NewIndex(reg)
}

func TestResolve(t *testing.T) {
	ix := testIndex(t)

	tests := []struct {
		name   string
		cand   identity.Candidate
		mode   identity.Mode
		status identity.Status
		id     string
		reason string
	}{
		{
			name:   "stable id wins over a conflicting name",
			cand:   identity.Candidate{StableID: "AZ-1000", Name: "鈴木 太郎", Kana: "スズキ タロウ"},
			status: identity.StatusExact,
			id:     "AZ-1000",
		},
		{
			name:   "unknown stable id in match-only mode",
			cand:   identity.Candidate{StableID: "AZ-9999"},
			status: identity.StatusUnresolved,
			reason: identity.ReasonUnknownID,
		},
		{
			name:   "unknown stable id creates in baseline mode",
			cand:   identity.Candidate{StableID: "AZ-9999"},
			mode:   identity.MatchOrCreate,
			status: identity.StatusCreated,
			id:     "AZ-9999",
		},
		{
			name:   "fuzzy match tolerates width, spacing and kana script",
			cand:   identity.Candidate{Name: "山田　花子", Kana: "やまだ  はなこ"},
			status: identity.StatusFuzzy,
			id:     "AZ-1000",
		},
		{
			name:   "fuzzy match with half-width katakana",
			cand:   identity.Candidate{Name: "鈴木 太郎", Kana: "ｽｽﾞｷ ﾀﾛｳ"},
			status: identity.StatusFuzzy,
			id:     "AZ-1001",
		},
		{
			name:   "no fuzzy match",
			cand:   identity.Candidate{Name: "高橋 一郎", Kana: "タカハシ イチロウ"},
			status: identity.StatusUnresolved,
			reason: identity.ReasonNoMatch,
		},
		{
			name:   "same name different reading is no match",
			cand:   identity.Candidate{Name: "山田 花子", Kana: "ヤマダ ハナ"},
			status: identity.StatusUnresolved,
			reason: identity.ReasonNoMatch,
		},
		{
			name:   "ambiguous fuzzy match",
			cand:   identity.Candidate{Name: "佐藤 誠", Kana: "サトウ マコト"},
			status: identity.StatusUnresolved,
			reason: identity.ReasonAmbiguous,
		},
		{
			name:   "fuzzy rows never create even in baseline mode",
			cand:   identity.Candidate{Name: "高橋 一郎", Kana: "タカハシ イチロウ"},
			mode:   identity.MatchOrCreate,
			status: identity.StatusUnresolved,
			reason: identity.ReasonNoMatch,
		},
		{
			name:   "no key at all",
			cand:   identity.Candidate{Kana: "ヤマダ"},
			status: identity.StatusUnresolved,
			reason: identity.ReasonNoKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := identity.Resolve(ix, tt.cand, tt.mode)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.id, got.ID)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestResolveAmbiguousListsCandidates(t *testing.T) {
	got := identity.Resolve(testIndex(t), identity.Candidate{Name: "佐藤 誠", Kana: "サトウ マコト"}, identity.MatchOnly)
	assert.Equal(t, []string{"AZ-2000", "AZ-2001"}, got.Candidates)

	err := got.Err("events", 3)
	require.Error(t, err)
	assert.True(t, errors.IsUnresolved(err))
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestResolveIsPure(t *testing.T) {
	ix := testIndex(t)
	before := len(ix.ByID)

	identity.Resolve(ix, identity.Candidate{StableID: "AZ-5000"}, identity.MatchOrCreate)

	assert.Len(t, ix.ByID, before, "resolution must not mutate the index")
}

func TestIndexAddForSameRunClients(t *testing.T) {
	ix := identity.NewIndex(nil)
	ix.Add("AZ-7", "中村 美咲", "ナカムラ ミサキ")
	ix.Add("AZ-7", "中村 美咲", "ナカムラ ミサキ")

	got := identity.Resolve(ix, identity.Candidate{Name: "中村 美咲", Kana: "なかむら みさき"}, identity.MatchOnly)
	assert.Equal(t, identity.StatusFuzzy, got.Status)
	assert.Equal(t, "AZ-7", got.ID)
}

func TestStats(t *testing.T) {
	var s identity.Stats
	s.Record(identity.Resolution{Status: identity.StatusExact})
	s.Record(identity.Resolution{Status: identity.StatusFuzzy})
	s.Record(identity.Resolution{Status: identity.StatusCreated})
	s.Record(identity.Resolution{Status: identity.StatusUnresolved, Reason: identity.ReasonAmbiguous})
	s.Record(identity.Resolution{Status: identity.StatusUnresolved, Reason: identity.ReasonAmbiguous})

	assert.Equal(t, 3, s.Resolved())
	assert.Equal(t, 2, s.Unresolved)
	assert.Equal(t, 2, s.Reasons[identity.ReasonAmbiguous])
}

func TestFuzzyKey(t *testing.T) {
	assert.Equal(t, "山田 花子|ヤマダ ハナコ", identity.FuzzyKey("山田　花子", "やまだ はなこ"))
	assert.Equal(t, "山田 花子|", identity.FuzzyKey("山田 花子", ""))
	assert.Empty(t, identity.FuzzyKey("", "ヤマダ"))
}
