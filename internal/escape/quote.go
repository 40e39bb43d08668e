// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"go4.org/mem"

	"github.com/creachadair/jspan/internal/charbuf"
)

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

var hexUpper = []byte("0123456789ABCDEF")

// Append writes the escaped form of src to b, without enclosing quotation
// marks. Every append carries the given reserve; Append reports false as soon
// as one fails, leaving b holding a partial encoding for the caller to roll
// back. Backspace, form feed, newline, carriage return and tab use their
// short escapes; other control characters, DEL and the C1 range escape as
// uppercase \uXXXX; forward slash is left alone.
func Append(b *charbuf.Buffer, src mem.RO, reserve int) bool {
	i := 0
	for i < src.Len() {
		c := src.At(i)
		if c < 0x80 {
			switch {
			case c == '"' || c == '\\':
				if !b.AppendByte('\\', reserve) || !b.AppendByte(c, reserve) {
					return false
				}
			case c < 0x20 && controlEsc[c] != 0:
				if !b.AppendByte('\\', reserve) || !b.AppendByte(controlEsc[c], reserve) {
					return false
				}
			case c < 0x20 || c == 0x7f:
				if !appendHex(b, rune(c), reserve) {
					return false
				}
			default:
				if !b.AppendByte(c, reserve) {
					return false
				}
			}
			i++
			continue
		}

		r, n := mem.DecodeRune(src.SliceFrom(i))
		if n == 0 {
			n = 1
		}
		if r >= 0x80 && r <= 0x9f {
			if !appendHex(b, r, reserve) {
				return false
			}
		} else if !b.AppendMem(src.SliceFrom(i).SliceTo(n), reserve) {
			return false
		}
		i += n
	}
	return true
}

func appendHex(b *charbuf.Buffer, r rune, reserve int) bool {
	return b.AppendByte('\\', reserve) && b.AppendByte('u', reserve) &&
		b.AppendByte(hexUpper[(r>>12)&15], reserve) &&
		b.AppendByte(hexUpper[(r>>8)&15], reserve) &&
		b.AppendByte(hexUpper[(r>>4)&15], reserve) &&
		b.AppendByte(hexUpper[r&15], reserve)
}
