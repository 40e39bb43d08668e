// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON strings against a
// bounded buffer.
package escape

import (
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"

	"github.com/creachadair/jspan/internal/charbuf"
)

// Decode appends the decoded form of src, a JSON string body with the
// enclosing quotation marks already removed, to b. It reports false for an
// incomplete or unrecognized escape sequence. A valid surrogate pair of
// \uXXXX escapes decodes to a single rune; a lone surrogate half decodes to
// the Unicode replacement rune.
//
// The caller sizes b so that decoding cannot run out of room: every escape
// sequence decodes to fewer bytes than its source form.
func Decode(b *charbuf.Buffer, src mem.RO) bool {
	for src.Len() != 0 {
		i := mem.IndexByte(src, '\\')
		if i < 0 {
			return b.AppendMem(src, 0)
		}
		if !b.AppendMem(src.SliceTo(i), 0) {
			return false
		}

		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return false // incomplete escape sequence
		}
		c := src.At(0)
		src = src.SliceFrom(1)
		switch c {
		case '"', '\\', '/':
			if !b.AppendByte(c, 0) {
				return false
			}
		case 'b':
			if !b.AppendByte('\b', 0) {
				return false
			}
		case 'f':
			if !b.AppendByte('\f', 0) {
				return false
			}
		case 'n':
			if !b.AppendByte('\n', 0) {
				return false
			}
		case 'r':
			if !b.AppendByte('\r', 0) {
				return false
			}
		case 't':
			if !b.AppendByte('\t', 0) {
				return false
			}
		case 'u':
			if src.Len() < 4 {
				return false // incomplete Unicode escape
			}
			v, ok := parseHex4(src)
			if !ok {
				return false
			}
			src = src.SliceFrom(4)

			r := rune(v)
			if utf16.IsSurrogate(r) {
				if r2, ok := peekUnicodeEscape(src); ok {
					if c := utf16.DecodeRune(r, r2); c != utf8.RuneError {
						r = c
						src = src.SliceFrom(6)
					} else {
						r = utf8.RuneError
					}
				} else {
					r = utf8.RuneError
				}
			}
			var rbuf [4]byte
			n := utf8.EncodeRune(rbuf[:], r)
			if !b.AppendBytes(rbuf[:n], 0) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// peekUnicodeEscape reports the value of a \uXXXX escape at the front of src
// without consuming it.
func peekUnicodeEscape(src mem.RO) (rune, bool) {
	if src.Len() < 6 || src.At(0) != '\\' || src.At(1) != 'u' {
		return 0, false
	}
	v, ok := parseHex4(src.SliceFrom(2))
	return rune(v), ok
}

func parseHex4(src mem.RO) (int32, bool) {
	var v int32
	for i := 0; i < 4; i++ {
		b := src.At(i)
		v <<= 4
		if '0' <= b && b <= '9' {
			v += int32(b - '0')
		} else if 'a' <= b && b <= 'f' {
			v += int32(b - 'a' + 10)
		} else if 'A' <= b && b <= 'F' {
			v += int32(b - 'A' + 10)
		} else {
			return 0, false
		}
	}
	return v, true
}
