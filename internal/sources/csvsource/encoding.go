package csvsource

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names reported by Decode.
const (
	EncodingUTF8     = "utf-8"
	EncodingUTF8BOM  = "utf-8-bom"
	EncodingUTF16    = "utf-16"
	EncodingShiftJIS = "shift_jis"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Decode converts an extract to UTF-8. A byte-order mark selects UTF-8 or
// UTF-16; otherwise valid UTF-8 is kept and anything else is read as
// Shift_JIS, the usual export encoding of Japanese office software.
func Decode(data []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], EncodingUTF8BOM, nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		out, err := decodeWith(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		return out, EncodingUTF16, err
	case utf8.Valid(data):
		return data, EncodingUTF8, nil
	}
	out, err := decodeWith(japanese.ShiftJIS.NewDecoder(), data)
	return out, EncodingShiftJIS, err
}

func decodeWith(dec transform.Transformer, data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(dec, data)
	return out, err
}
