// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jspan

import (
	"math"
	"strconv"

	"go4.org/mem"

	"github.com/creachadair/jspan/internal/charbuf"
	"github.com/creachadair/jspan/internal/escape"
)

// A frame records one open container on the scanner's stack: its kind and
// the offset of its opening delimiter, used to span the matching End token.
type frame struct {
	kind  Kind
	start int
}

// A Scanner reads tokens from an in-memory JSON payload, one per call to
// Next. Tokens are reported as segments of the payload; nothing is copied or
// decoded until the caller asks for a value. A Scanner may be reused across
// payloads with Reset, after which its steady state allocates nothing.
//
// A Scanner is not safe for concurrent use.
type Scanner struct {
	payload mem.RO
	pos     int // next byte to examine

	segPos, segLen int  // span of the current token
	kind           Kind // kind of the current token
	close          bool // the top container emits its End token on the next advance
	decode         bool // the current token's text contains escape sequences
	truth          bool // value of the most recent Boolean token
	pending        bool // report Invalid at pendAt on the next advance
	pendAt         int

	scope []frame
	dec   *charbuf.Buffer // scratch for decoded strings
}

// NewScanner constructs a scanner positioned before the first token of
// payload. The decoded-string scratch buffer is sized to the larger of
// sizeHint and the payload length, and the container stack to depthHint.
// NewScanner panics if depthHint is not positive.
func NewScanner(payload mem.RO, sizeHint, depthHint int) *Scanner {
	if depthHint <= 0 {
		panic("jspan: non-positive depth hint")
	}
	size := sizeHint
	if n := payload.Len(); n > size {
		size = n
	}
	s := &Scanner{
		dec:   charbuf.New(size),
		scope: make([]frame, 0, depthHint+1),
	}
	s.Reset(payload)
	return s
}

// Reset repositions s at the start of payload, reusing its allocations. The
// scratch buffer grows if the new payload is larger than any seen before.
func (s *Scanner) Reset(payload mem.RO) {
	s.payload = payload
	s.pos = 0
	s.segPos, s.segLen = 0, 0
	s.kind = None
	s.close = false
	s.decode = false
	s.pending = false
	s.dec.Grow(payload.Len())
	s.dec.Clear()
	s.scope = append(s.scope[:0], frame{kind: None})
}

// Kind returns the kind of the current token.
func (s *Scanner) Kind() Kind { return s.kind }

// Segment returns the span of the payload covered by the current token.
// For End tokens the span covers the whole container, opening delimiter
// through closing delimiter.
func (s *Scanner) Segment() Segment {
	return Segment{Source: s.payload, Pos: s.segPos, Len: s.segLen}
}

// Next advances to the next token. It reports false exactly when the newly
// reached state is terminal: Complete once the root value has ended (any
// input after it is not read), Invalid for a malformed payload. Invalid is
// sticky; there is no resynchronization.
func (s *Scanner) Next() bool {
	if s.kind.IsTerminal() {
		return false
	}
	if s.pending {
		s.pending = false
		return s.fail(s.pendAt)
	}
	s.skipSpace()
	if s.close {
		return s.endContainer()
	}
	if s.top().kind == BeginObject {
		return s.scanProperty()
	}
	return s.scanValue()
}

// Skip advances past the end of the container that is open at entry, or to a
// terminal state, whichever comes first. It reports false exactly when the
// scanner ended in a terminal state.
func (s *Scanner) Skip() bool {
	depth := len(s.scope)
	for s.Next() {
		if len(s.scope) < depth {
			return true
		}
	}
	return false
}

func (s *Scanner) top() *frame { return &s.scope[len(s.scope)-1] }

func (s *Scanner) push(kind Kind, start int) {
	s.scope = append(s.scope, frame{kind: kind, start: start})
}

// token records the current token as kind, spanning from start to the
// current position.
func (s *Scanner) token(kind Kind, start int) {
	s.kind = kind
	s.segPos, s.segLen = start, s.pos-start
}

// fail records a zero-length Invalid token at offset at.
func (s *Scanner) fail(at int) bool {
	if n := s.payload.Len(); at > n {
		at = n // a skipped escape can overshoot the payload
	}
	s.kind = Invalid
	s.segPos, s.segLen = at, 0
	s.close = false
	return false
}

func (s *Scanner) skipSpace() {
	for s.pos < s.payload.Len() {
		switch s.payload.At(s.pos) {
		case ' ', '\t', '\r', '\n':
			s.pos++
		default:
			return
		}
	}
}

// endContainer emits the End token for the container on top of the stack.
// For arrays and objects the position is at the closing delimiter, which the
// reported span includes. Property spans end at the extent of the value
// token just reported.
func (s *Scanner) endContainer() bool {
	s.close = false
	f := s.top()
	switch f.kind {
	case None:
		s.kind = Complete
		s.segPos, s.segLen = s.pos, 0
		return false
	case BeginArray, BeginObject:
		s.segPos = f.start
		s.segLen = s.pos - f.start + 1
		s.pos++
		if f.kind == BeginArray {
			s.kind = EndArray
		} else {
			s.kind = EndObject
		}
	case BeginProperty:
		end := s.segPos + s.segLen
		s.segPos = f.start
		s.segLen = end - f.start
		s.kind = EndProperty
	}
	s.scope = s.scope[:len(s.scope)-1]
	s.prepareClose()
	return true
}

// prepareClose runs after a token completes within the container on top of
// the stack. A root or property with its value in hand is ready to close.
// Inside an array or object the lookahead settles the separator: a closing
// delimiter arms the close flag, a comma is consumed, and anything else is
// recorded to surface as Invalid on the next advance.
func (s *Scanner) prepareClose() {
	switch s.top().kind {
	case None, BeginProperty:
		s.close = true
	case BeginArray:
		s.seekClose(']')
	case BeginObject:
		s.seekClose('}')
	}
}

func (s *Scanner) seekClose(delim byte) {
	s.skipSpace()
	if s.pos >= s.payload.Len() {
		s.pending, s.pendAt = true, s.pos
		return
	}
	switch c := s.payload.At(s.pos); c {
	case delim:
		s.close = true
	case ',':
		s.pos++
	default:
		s.pending, s.pendAt = true, s.pos
	}
}

// afterOpen runs right after an array or object opens: only an immediate
// closing delimiter matters, since a first element needs no separator.
func (s *Scanner) afterOpen(delim byte) {
	s.skipSpace()
	if s.pos < s.payload.Len() && s.payload.At(s.pos) == delim {
		s.close = true
	}
}

var (
	litNull  = mem.S("null")
	litTrue  = mem.S("true")
	litFalse = mem.S("false")
)

// literal consumes the exact bytes of want at the current position.
func (s *Scanner) literal(want mem.RO) bool {
	n := want.Len()
	if s.pos+n > s.payload.Len() {
		return false
	}
	if !s.payload.SliceFrom(s.pos).SliceTo(n).Equal(want) {
		return false
	}
	s.pos += n
	return true
}

func (s *Scanner) scanValue() bool {
	if s.pos >= s.payload.Len() {
		return s.fail(s.pos)
	}
	start := s.pos
	switch s.payload.At(s.pos) {
	case 'n':
		if !s.literal(litNull) {
			return s.fail(start)
		}
		s.token(Null, start)
	case 't':
		if !s.literal(litTrue) {
			return s.fail(start)
		}
		s.truth = true
		s.token(Boolean, start)
	case 'f':
		if !s.literal(litFalse) {
			return s.fail(start)
		}
		s.truth = false
		s.token(Boolean, start)
	case '[':
		s.pos++
		s.push(BeginArray, start)
		s.token(BeginArray, start)
		s.afterOpen(']')
		return true
	case '{':
		s.pos++
		s.push(BeginObject, start)
		s.token(BeginObject, start)
		s.afterOpen('}')
		return true
	case '"':
		if !s.scanString() {
			return s.fail(s.pos)
		}
		s.token(String, start)
	default:
		if !s.scanNumber() {
			return s.fail(s.pos)
		}
		s.segPos, s.segLen = start, s.pos-start // kind set by scanNumber
	}
	s.prepareClose()
	return true
}

// scanProperty recognizes a member name and its colon, and pushes a property
// frame. The reported span runs from the opening quote through the colon.
func (s *Scanner) scanProperty() bool {
	if s.pos >= s.payload.Len() || s.payload.At(s.pos) != '"' {
		return s.fail(s.pos)
	}
	start := s.pos
	if !s.scanString() {
		return s.fail(s.pos)
	}
	s.skipSpace()
	if s.pos >= s.payload.Len() || s.payload.At(s.pos) != ':' {
		return s.fail(s.pos)
	}
	s.pos++
	s.push(BeginProperty, start)
	s.token(BeginProperty, start)
	return true
}

// scanString advances past a quoted string without decoding it. A backslash
// skips the following byte and marks the token as needing a decode pass.
func (s *Scanner) scanString() bool {
	s.decode = false
	s.pos++
	for s.pos < s.payload.Len() {
		switch s.payload.At(s.pos) {
		case '"':
			s.pos++
			return true
		case '\\':
			s.decode = true
			s.pos += 2
		default:
			s.pos++
		}
	}
	return false // unterminated
}

// scanNumber consumes a number and sets the token kind. Beyond RFC 8259 it
// admits 0x/0X unsigned hex integers and does not reject redundant leading
// zeros; a fraction or exponent promotes the token to Float.
func (s *Scanner) scanNumber() bool {
	pl := s.payload
	n := pl.Len()
	if pl.At(s.pos) == '-' {
		s.pos++
	}
	if s.pos >= n || !isDigit(pl.At(s.pos)) {
		return false
	}

	if pl.At(s.pos) == '0' && s.pos+1 < n && (pl.At(s.pos+1) == 'x' || pl.At(s.pos+1) == 'X') {
		s.pos += 2
		digits := s.pos
		for s.pos < n && isHexDigit(pl.At(s.pos)) {
			s.pos++
		}
		if s.pos == digits {
			return false
		}
		s.kind = Integer
		return true
	}

	for s.pos < n && isDigit(pl.At(s.pos)) {
		s.pos++
	}

	isFloat := false
	if s.pos < n && pl.At(s.pos) == '.' {
		s.pos++
		digits := s.pos
		for s.pos < n && isDigit(pl.At(s.pos)) {
			s.pos++
		}
		if s.pos == digits {
			return false // no digits after decimal point
		}
		isFloat = true
	}
	if s.pos < n && (pl.At(s.pos) == 'e' || pl.At(s.pos) == 'E') {
		s.pos++
		if s.pos < n && (pl.At(s.pos) == '+' || pl.At(s.pos) == '-') {
			s.pos++
		}
		digits := s.pos
		for s.pos < n && isDigit(pl.At(s.pos)) {
			s.pos++
		}
		if s.pos == digits {
			return false // missing exponent digits
		}
		isFloat = true
	}
	if isFloat {
		s.kind = Float
	} else {
		s.kind = Integer
	}
	return true
}

// Bool returns the value of a Boolean token.
func (s *Scanner) Bool() (bool, bool) {
	if s.kind != Boolean {
		return false, false
	}
	return s.truth, true
}

const (
	maxInt64Div10 = math.MaxInt64 / 10
	minInt64Div10 = math.MinInt64 / 10
)

// Int64 parses an Integer token as a signed decimal value. Negative values
// accumulate downward so that the minimum representable value parses. Hex
// bodies and overflow report false.
func (s *Scanner) Int64() (int64, bool) {
	if s.kind != Integer {
		return 0, false
	}
	body := s.Segment().View()
	i, neg := 0, false
	if body.Len() > 0 && body.At(0) == '-' {
		neg = true
		i = 1
	}
	if i >= body.Len() {
		return 0, false
	}
	var v int64
	for ; i < body.Len(); i++ {
		c := body.At(i)
		if !isDigit(c) {
			return 0, false
		}
		d := int64(c - '0')
		if neg {
			if v < minInt64Div10 || (v == minInt64Div10 && d > 8) {
				return 0, false
			}
			v = v*10 - d
		} else {
			if v > maxInt64Div10 || (v == maxInt64Div10 && d > 7) {
				return 0, false
			}
			v = v*10 + d
		}
	}
	return v, true
}

// Uint64 parses an Integer token as an unsigned value. A body beginning
// 0x or 0X parses as hexadecimal. Signs and overflow report false.
func (s *Scanner) Uint64() (uint64, bool) {
	if s.kind != Integer {
		return 0, false
	}
	body := s.Segment().View()
	if body.Len() == 0 {
		return 0, false
	}
	if body.Len() > 2 && body.At(0) == '0' && (body.At(1) == 'x' || body.At(1) == 'X') {
		var v uint64
		for i := 2; i < body.Len(); i++ {
			d := hexVal(body.At(i))
			if d < 0 {
				return 0, false
			}
			if v > math.MaxUint64>>4 {
				return 0, false
			}
			v = v<<4 | uint64(d)
		}
		return v, true
	}
	var v uint64
	for i := 0; i < body.Len(); i++ {
		c := body.At(i)
		if !isDigit(c) {
			return 0, false
		}
		d := uint64(c - '0')
		if v > (math.MaxUint64-d)/10 {
			return 0, false
		}
		v = v*10 + d
	}
	return v, true
}

// Float64 parses an Integer or Float token as a double. The conversion
// delegates to strconv, which may allocate a transient string.
func (s *Scanner) Float64() (float64, bool) {
	if !s.kind.IsNumber() {
		return 0, false
	}
	v, err := strconv.ParseFloat(s.Segment().String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Unescape returns the decoded body of a String or BeginProperty token, or a
// zero view for Null. Property names are trimmed of the trailing colon and
// any whitespace before it, then of the enclosing quotes. When the token
// contains no escapes the view aliases the payload; otherwise it aliases the
// scratch buffer and is valid only until the next advance.
func (s *Scanner) Unescape() (mem.RO, bool) {
	var body mem.RO
	switch s.kind {
	case Null:
		return mem.RO{}, true
	case String:
		body = s.payload.SliceFrom(s.segPos + 1).SliceTo(s.segLen - 2)
	case BeginProperty:
		end := s.segPos + s.segLen - 1 // at the colon
		end--
		for end > s.segPos && isSpace(s.payload.At(end)) {
			end--
		}
		// end is at the closing quote
		body = s.payload.SliceFrom(s.segPos + 1).SliceTo(end - s.segPos - 1)
	default:
		return mem.RO{}, false
	}
	if !s.decode {
		return body, true
	}
	s.dec.Clear()
	if !escape.Decode(s.dec, body) {
		return mem.RO{}, false
	}
	return mem.B(s.dec.Bytes()), true
}

// NullBool is Bool with Null admitted as the absent value.
func (s *Scanner) NullBool() (v bool, isNull, ok bool) {
	if s.kind == Null {
		return false, true, true
	}
	v, ok = s.Bool()
	return v, false, ok
}

// NullInt64 is Int64 with Null admitted as the absent value.
func (s *Scanner) NullInt64() (v int64, isNull, ok bool) {
	if s.kind == Null {
		return 0, true, true
	}
	v, ok = s.Int64()
	return v, false, ok
}

// NullUint64 is Uint64 with Null admitted as the absent value.
func (s *Scanner) NullUint64() (v uint64, isNull, ok bool) {
	if s.kind == Null {
		return 0, true, true
	}
	v, ok = s.Uint64()
	return v, false, ok
}

// NullFloat64 is Float64 with Null admitted as the absent value.
func (s *Scanner) NullFloat64() (v float64, isNull, ok bool) {
	if s.kind == Null {
		return 0, true, true
	}
	v, ok = s.Float64()
	return v, false, ok
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }
func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func hexVal(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
