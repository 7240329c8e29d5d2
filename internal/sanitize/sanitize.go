// Package sanitize clamps and type-checks untrusted client payloads.
// Nothing here trusts the presence or the JSON type of a field.
package sanitize

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	NameMaxLength = 20
	ChatMaxLength = 300
)

var ErrEmptyName = errors.New("name must be at least one character")

// Only printable ASCII survives in display names.
var nonPrintable = runes.Remove(runes.Predicate(func(r rune) bool {
	return r < 0x20 || r > 0x7E
}))

// Name returns the sanitized display name carried by raw, or "" when raw
// is not a JSON string or nothing printable is left.
func Name(raw json.RawMessage) string {
	s, ok := jsonString(raw)
	if !ok {
		return ""
	}
	return NameString(s)
}

// NameString collapses whitespace runs, strips non-printable characters,
// trims and truncates to NameMaxLength.
func NameString(s string) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	cleaned, _, err := transform.String(nonPrintable, collapsed)
	if err != nil {
		return ""
	}
	cleaned = strings.TrimSpace(cleaned)
	if len(cleaned) > NameMaxLength {
		cleaned = cleaned[:NameMaxLength]
	}
	return cleaned
}

// PartyCode upper-cases the code, keeps only A-Z and 0-9 and truncates it
// to length. Numbers are accepted as their decimal text.
func PartyCode(raw json.RawMessage, length int) string {
	s := Stringify(raw)
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if b.Len() >= length {
			break
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Chat coerces any scalar to text and truncates it to ChatMaxLength runes.
func Chat(raw json.RawMessage) string {
	return truncate(Stringify(raw), ChatMaxLength)
}

// Truthy reports whether raw holds a JSON value other than null, false,
// 0 or "". Absent values are falsy.
func Truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case 'n', 'f':
		return false
	case 't', '{', '[':
		return true
	case '"':
		s, _ := jsonString(raw)
		return s != ""
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		return err == nil && f != 0
	}
}

// Stringify renders strings, numbers and true as text; everything else
// becomes "".
func Stringify(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		s, _ := jsonString(raw)
		return s
	case 't':
		return "true"
	case 'n', 'f', '{', '[':
		return ""
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil || f == 0 {
			return ""
		}
		return string(raw)
	}
}

func jsonString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}
