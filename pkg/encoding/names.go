// Package encoding decodes material, texture and node names written in legacy
// code pages by older scene exporters, and normalizes the file paths they store.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset is returned for a charset name that has no decoder.
var ErrUnknownCharset = errors.New("unknown charset")

var charsets = map[string]encoding.Encoding{
	"euc-kr":       korean.EUCKR,
	"shift-jis":    japanese.ShiftJIS,
	"gbk":          simplifiedchinese.GBK,
	"windows-1252": charmap.Windows1252,
}

// Charsets lists the accepted charset names besides "utf-8".
func Charsets() []string {
	return []string{"euc-kr", "shift-jis", "gbk", "windows-1252"}
}

// Decoder turns raw name bytes into UTF-8.
type Decoder struct {
	charset string
	enc     encoding.Encoding // nil for utf-8
}

// NewDecoder returns a decoder for charset. An empty name or "utf-8" yields a
// pass-through decoder.
func NewDecoder(charset string) (*Decoder, error) {
	name := strings.ToLower(strings.TrimSpace(charset))
	switch name {
	case "", "utf-8", "utf8":
		return &Decoder{charset: "utf-8"}, nil
	}
	enc, ok := charsets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, charset)
	}
	return &Decoder{charset: name, enc: enc}, nil
}

// Charset returns the normalized charset name.
func (d *Decoder) Charset() string {
	return d.charset
}

// Name decodes s. Strings that are already valid UTF-8 are returned as-is,
// so names from modern exporters are never double-decoded. If conversion
// fails, invalid bytes are replaced with U+FFFD.
func (d *Decoder) Name(s string) string {
	if d == nil || utf8.ValidString(s) {
		return s
	}
	if d.enc == nil {
		return strings.ToValidUTF8(s, "\uFFFD")
	}
	result, _, err := transform.String(d.enc.NewDecoder(), s)
	if err != nil {
		return strings.ToValidUTF8(s, "\uFFFD")
	}
	return result
}

// Fixed decodes a fixed-size, NUL-padded name field.
func (d *Decoder) Fixed(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return d.Name(string(data))
}

// Encode converts a UTF-8 string back into the decoder's charset.
// Returns the input bytes if conversion fails.
func (d *Decoder) Encode(s string) []byte {
	if d == nil || d.enc == nil {
		return []byte(s)
	}
	result, _, err := transform.Bytes(d.enc.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// NormalizePath converts backslashes to forward slashes and cleans the
// result. Drive letters and leading slashes are kept.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

// PathKey returns a case-insensitive lookup key for p.
func PathKey(p string) string {
	return strings.ToLower(NormalizePath(p))
}
