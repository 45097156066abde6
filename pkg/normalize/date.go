package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// OpenEndDate is the sentinel some sources use for "no end date".
const OpenEndDate = "9999-12-31"

var (
	gregorianDate = regexp.MustCompile(`^(\d{4})\s*[/\-.年]\s*(\d{1,2})\s*[/\-.月]\s*(\d{1,2})\s*日?$`)
	eraDate       = regexp.MustCompile(`^(明治|大正|昭和|平成|令和|[MTSHRmtshr])\s*(元|\d{1,2})\s*[/\-.年]\s*(\d{1,2})\s*[/\-.月]\s*(\d{1,2})\s*日?$`)
	timeSuffix    = regexp.MustCompile(`(?:T|\s+)\d{1,2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:Z|[+\-]\d{2}:?\d{2})?$`)
)

var eraStart = map[string]int{
	"明治": 1868, "M": 1868,
	"大正": 1912, "T": 1912,
	"昭和": 1926, "S": 1926,
	"平成": 1989, "H": 1989,
	"令和": 2019, "R": 2019,
}

// Date converts slash, dash, dot, kanji-separated and Japanese-era dates to
// ISO YYYY-MM-DD. Empty input and the open-end sentinel yield ("", true);
// anything else that is not a real calendar date yields ("", false).
func Date(raw string) (string, bool) {
	s := strings.TrimSpace(HalfWidth(raw))
	if s == "" {
		return "", true
	}
	// Drop a trailing time component: "2025-12-03T09:00:00Z", "2025/12/03 09:00".
	if loc := timeSuffix.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}

	var year, month, day int
	if m := gregorianDate.FindStringSubmatch(s); m != nil {
		year, month, day = atoi(m[1]), atoi(m[2]), atoi(m[3])
	} else if m := eraDate.FindStringSubmatch(s); m != nil {
		n := 1
		if m[2] != "元" {
			n = atoi(m[2])
		}
		year = eraStart[strings.ToUpper(m[1])] + n - 1
		month, day = atoi(m[3]), atoi(m[4])
	} else {
		return "", false
	}

	iso := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	if iso == OpenEndDate {
		return "", true
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return iso, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
