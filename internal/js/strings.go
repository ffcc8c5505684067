package js

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

func utf16Decode(units []uint16) []rune { return utf16.Decode(units) }

func utf16Encode(runes []rune) []uint16 { return utf16.Encode(runes) }

// decodeString decodes a quoted string literal, escapes included.
func decodeString(raw string) ([]uint16, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("invalid string literal %q", raw)
	}
	body := raw[1 : len(raw)-1]
	out := make([]uint16, 0, len(body))

	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			r, size := utf8.DecodeRuneInString(body[i:])
			out = appendRune(out, r)
			i += size
			continue
		}
		i++
		if i >= len(body) {
			return nil, fmt.Errorf("invalid escape at end of %q", raw)
		}
		c = body[i]
		i++
		switch c {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'v':
			out = append(out, '\v')
		case '\r':
			// Line continuation; swallow an optional LF of a CRLF pair.
			if i < len(body) && body[i] == '\n' {
				i++
			}
		case '\n':
		case 'x':
			if i+2 > len(body) {
				return nil, fmt.Errorf("invalid hex escape in %q", raw)
			}
			v, err := strconv.ParseUint(body[i:i+2], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("invalid hex escape in %q", raw)
			}
			out = append(out, uint16(v))
			i += 2
		case 'u':
			if i < len(body) && body[i] == '{' {
				end := strings.IndexByte(body[i:], '}')
				if end < 0 {
					return nil, fmt.Errorf("invalid unicode escape in %q", raw)
				}
				v, err := strconv.ParseUint(body[i+1:i+end], 16, 32)
				if err != nil || v > utf8.MaxRune {
					return nil, fmt.Errorf("invalid unicode escape in %q", raw)
				}
				out = appendRune(out, rune(v))
				i += end + 1
				continue
			}
			if i+4 > len(body) {
				return nil, fmt.Errorf("invalid unicode escape in %q", raw)
			}
			v, err := strconv.ParseUint(body[i:i+4], 16, 16)
			if err != nil {
				return nil, fmt.Errorf("invalid unicode escape in %q", raw)
			}
			out = append(out, uint16(v))
			i += 4
		case '0', '1', '2', '3', '4', '5', '6', '7':
			// Legacy octal escape, at most three digits and a value below 256.
			v := int(c - '0')
			for n := 1; n < 3 && i < len(body) && body[i] >= '0' && body[i] <= '7'; n++ {
				next := v*8 + int(body[i]-'0')
				if next > 255 {
					break
				}
				v = next
				i++
			}
			out = append(out, uint16(v))
		default:
			r, size := utf8.DecodeRuneInString(body[i-1:])
			if r == 0x2028 || r == 0x2029 {
				i += size - 1
				continue
			}
			out = appendRune(out, r)
			i += size - 1
		}
	}
	return out, nil
}

func appendRune(out []uint16, r rune) []uint16 {
	if r >= 0x10000 {
		r1, r2 := utf16.EncodeRune(r)
		return append(out, uint16(r1), uint16(r2))
	}
	return append(out, uint16(r))
}

// quoteString renders a string literal, preferring double quotes unless the
// value holds more double quotes than single quotes.
func quoteString(units []uint16, asciiOnly bool) string {
	var singles, doubles int
	for _, u := range units {
		switch u {
		case '\'':
			singles++
		case '"':
			doubles++
		}
	}
	quote := uint16('"')
	if doubles > singles {
		quote = '\''
	}

	var b strings.Builder
	b.WriteByte(byte(quote))
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u == quote:
			b.WriteByte('\\')
			b.WriteByte(byte(u))
		case u == '\\':
			b.WriteString(`\\`)
		case u == '\n':
			b.WriteString(`\n`)
		case u == '\r':
			b.WriteString(`\r`)
		case u == '\t':
			b.WriteString(`\t`)
		case u == '\b':
			b.WriteString(`\b`)
		case u == '\f':
			b.WriteString(`\f`)
		case u == '\v':
			b.WriteString(`\x0B`)
		case u == 0:
			if i+1 < len(units) && units[i+1] >= '0' && units[i+1] <= '9' {
				b.WriteString(`\x00`)
			} else {
				b.WriteString(`\0`)
			}
		case u < 0x20 || u == 0x7f:
			fmt.Fprintf(&b, `\x%02X`, u)
		case u == 0x2028 || u == 0x2029 || u == 0xfeff:
			fmt.Fprintf(&b, `\u%04X`, u)
		case u < 0x80:
			b.WriteByte(byte(u))
		case asciiOnly:
			if u <= 0xff {
				fmt.Fprintf(&b, `\x%02X`, u)
			} else {
				fmt.Fprintf(&b, `\u%04X`, u)
			}
		case utf16.IsSurrogate(rune(u)):
			if u < 0xdc00 && i+1 < len(units) && units[i+1] >= 0xdc00 && units[i+1] <= 0xdfff {
				b.WriteRune(utf16.DecodeRune(rune(u), rune(units[i+1])))
				i++
			} else {
				fmt.Fprintf(&b, `\u%04X`, u)
			}
		default:
			b.WriteRune(rune(u))
		}
	}
	b.WriteByte(byte(quote))
	return b.String()
}

// escapeNonASCII escapes every non-ASCII character of source text that is
// printed verbatim (identifiers, template chunks, regular expressions).
// Astral characters use \u{...} when braces is set, surrogate pairs otherwise.
func escapeNonASCII(s string, braces bool) string {
	if isASCII(s) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < 0x80:
			b.WriteRune(r)
		case r <= 0xffff:
			fmt.Fprintf(&b, `\u%04X`, r)
		case braces:
			fmt.Fprintf(&b, `\u{%X}`, r)
		default:
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&b, `\u%04X\u%04X`, r1, r2)
		}
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// numberValue parses a numeric literal. Unparseable literals yield 0 and ok
// false.
func numberValue(raw string) (float64, bool) {
	text := strings.ReplaceAll(raw, "_", "")
	text = strings.TrimSuffix(text, "n")
	if len(text) > 2 && text[0] == '0' {
		base := 0
		switch text[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			v, err := strconv.ParseUint(text[2:], base, 64)
			return float64(v), err == nil
		}
	}
	if len(text) > 1 && text[0] == '0' && isDigits(text[1:]) {
		// Legacy octal unless a non-octal digit appears.
		if v, err := strconv.ParseUint(text[1:], 8, 64); err == nil {
			return float64(v), true
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	return v, err == nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// FormatNumber renders v the way a literal key is normalised: integers
// without exponent or fraction, other values in shortest form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
