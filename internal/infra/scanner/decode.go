package scanner

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// DefaultOffset is the width of the "QR-Code:" symbology prefix zbarcam
// writes before each payload.
const DefaultOffset = 8

// RepairShiftJIS undoes zbar decoding UTF-8 payloads as Shift-JIS: the
// text is encoded back to Shift-JIS bytes and kept only if those bytes are
// valid UTF-8.
func RepairShiftJIS(s string) string {
	encoded, err := japanese.ShiftJIS.NewEncoder().String(s)
	if err != nil || !utf8.ValidString(encoded) {
		return s
	}
	return encoded
}

// ExtractCode drops the first offset characters of a scanner line and
// trims trailing whitespace. Lines no longer than offset carry no code.
func ExtractCode(line string, offset int) string {
	if offset <= 0 {
		return strings.TrimSpace(line)
	}
	runes := []rune(line)
	if len(runes) <= offset {
		return ""
	}
	return strings.TrimSpace(string(runes[offset:]))
}
