//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseDocumentID checks that parsing never panics on arbitrary input and
// always returns either a valid ID or an error, never both.
func FuzzParseDocumentID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE documents;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseDocumentID(input)

		if err == nil {
			if id.IsNil() {
				t.Errorf("ParseDocumentID(%q) returned nil ID without error", input)
			}
			if !utf8.ValidString(id.String()) {
				t.Errorf("ParseDocumentID(%q) produced non-UTF8 string form", input)
			}
		} else if !id.IsNil() {
			t.Errorf("ParseDocumentID(%q) returned both an ID and an error", input)
		}
	})
}
