// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jspan

import (
	"math"
	"strconv"

	"go4.org/mem"

	"github.com/creachadair/jspan/internal/charbuf"
	"github.com/creachadair/jspan/internal/escape"
)

// Truncation markers. These forms are bit-exact: consumers key on them to
// detect documents the emitter cut short.
const (
	truncatedObject = `{"(truncated)":true}`
	truncatedMember = `"(truncated)":true`
)

// An Emitter writes a JSON document incrementally into a buffer of fixed
// capacity. Writes that would overflow the buffer instead produce a
// well-formed truncated form: the output of Finish never exceeds the
// capacity and always parses. Every write reserves enough free space to
// close all open containers and append the truncation marker, so overflow
// can never corrupt the document.
//
// After the first capacity failure the emitter is truncated: Open and Write
// calls report false without effect, while CloseToken and Finish continue to
// work. An Emitter is reusable via Clear and is not safe for concurrent use.
type Emitter struct {
	buf       *charbuf.Buffer
	scope     []Kind
	truncated bool
}

// NewEmitter constructs an emitter with the given output capacity and a
// container stack sized to depth. A capacity smaller than the truncated
// object marker is raised to it, so truncation always fits. NewEmitter
// panics if depth is not positive.
func NewEmitter(capacity, depth int) *Emitter {
	if depth <= 0 {
		panic("jspan: non-positive depth")
	}
	if capacity < len(truncatedObject) {
		capacity = len(truncatedObject)
	}
	e := &Emitter{
		buf:   charbuf.New(capacity),
		scope: make([]Kind, 0, depth+1),
	}
	e.scope = append(e.scope, None)
	return e
}

// Clear resets the emitter to empty, keeping its allocations.
func (e *Emitter) Clear() {
	e.buf.Clear()
	e.scope = e.scope[:1]
	e.truncated = false
}

// Resize changes the output capacity to n, provided the content written so
// far plus the current reserve still fits.
func (e *Emitter) Resize(n int) bool { return e.buf.Resize(n, e.reserve()) }

// reserve is the number of free bytes every append must leave behind: one
// closing delimiter per stack slot plus the truncation marker. The extra
// slot contributed by the root sentinel pairs with the strict comparison in
// AppendByte, which is what keeps the budget exact across a frame push.
func (e *Emitter) reserve() int { return len(e.scope) + len(truncatedObject) }

func (e *Emitter) top() Kind { return e.scope[len(e.scope)-1] }

// fail rolls the buffer back to mark, emits the truncated form, and reports
// false.
func (e *Emitter) fail(mark int) bool {
	e.buf.Truncate(mark)
	e.truncate()
	return false
}

// truncate writes the truncated form for the current scope and makes the
// state sticky. The reserve carried by every prior append guarantees these
// writes cannot fail.
func (e *Emitter) truncate() {
	e.truncated = true
	r := len(e.scope) - 1 // one closing delimiter per open container
	switch e.top() {
	case BeginArray:
		if e.buf.Last() != '[' {
			e.buf.AppendByte(',', r+len(truncatedObject))
		}
		e.buf.AppendString(truncatedObject, r)
	case BeginObject:
		if e.buf.Last() != '{' {
			e.buf.AppendByte(',', r+len(truncatedMember))
		}
		e.buf.AppendString(truncatedMember, r)
	case BeginProperty:
		if e.buf.Last() == ':' {
			e.buf.AppendString(truncatedObject, r)
		} else {
			e.buf.AppendByte(',', r+len(truncatedMember))
			e.buf.AppendString(truncatedMember, r)
		}
	default: // root
		e.buf.AppendString(truncatedObject, r)
	}
}

// prepareValue reports whether a primitive value may be written under the
// current top frame, and the separator byte to lead with (0 for none).
func (e *Emitter) prepareValue() (sep byte, ok bool) {
	switch e.top() {
	case BeginArray:
		if e.buf.Last() != '[' {
			return ',', true
		}
		return 0, true
	case BeginProperty:
		return 0, e.buf.Last() == ':'
	case BeginObject:
		return 0, false
	default: // root
		return 0, e.buf.Len() == 0
	}
}

// prepareContainer is prepareValue for an array or object open. A property
// accepts a container only as its value, before anything else is written to
// it; an object accepts neither.
func (e *Emitter) prepareContainer() (sep byte, ok bool) {
	switch e.top() {
	case BeginArray:
		if e.buf.Last() != '[' {
			return ',', true
		}
		return 0, true
	case BeginProperty:
		return 0, e.buf.Last() == ':'
	case BeginObject:
		return 0, false
	default: // root
		return 0, e.buf.Len() == 0
	}
}

// OpenArray begins an array value.
func (e *Emitter) OpenArray() bool { return e.openContainer('[', BeginArray) }

// OpenObject begins an object value.
func (e *Emitter) OpenObject() bool { return e.openContainer('{', BeginObject) }

func (e *Emitter) openContainer(delim byte, kind Kind) bool {
	if e.truncated {
		return false
	}
	sep, ok := e.prepareContainer()
	if !ok {
		return false
	}
	reserve := e.reserve()
	mark := e.buf.Len()
	if sep != 0 && !e.buf.AppendByte(sep, reserve) {
		return e.fail(mark)
	}
	if !e.buf.AppendByte(delim, reserve) {
		return e.fail(mark)
	}
	e.scope = append(e.scope, kind)
	return true
}

// OpenProperty begins an object member with the given name. The name is
// escaped like any string value.
func (e *Emitter) OpenProperty(name string) bool { return e.openProperty(mem.S(name)) }

func (e *Emitter) openProperty(name mem.RO) bool {
	if e.truncated {
		return false
	}
	if e.top() != BeginObject {
		return false
	}
	// Closing a property with no value writes a 4-byte null where other
	// containers close with one delimiter; reserve the difference up front.
	reserve := e.reserve() + len("null") - 1
	mark := e.buf.Len()
	ok := true
	if e.buf.Last() != '{' {
		ok = e.buf.AppendByte(',', reserve)
	}
	ok = ok && e.buf.AppendByte('"', reserve) &&
		escape.Append(e.buf, name, reserve) &&
		e.buf.AppendByte('"', reserve) &&
		e.buf.AppendByte(':', reserve)
	if !ok {
		return e.fail(mark)
	}
	e.scope = append(e.scope, BeginProperty)
	return true
}

// CloseToken ends the innermost open container. Closing a property whose
// value was never written supplies a null, so every member carries a value.
// At the root it is a no-op.
func (e *Emitter) CloseToken() {
	if len(e.scope) <= 1 {
		return
	}
	top := e.top()
	e.scope = e.scope[:len(e.scope)-1]
	r := len(e.scope) - 1 // delimiters still owed after this one
	switch top {
	case BeginArray:
		e.buf.AppendByte(']', r)
	case BeginObject:
		e.buf.AppendByte('}', r)
	case BeginProperty:
		if e.buf.Last() == ':' {
			e.buf.AppendString("null", r)
		}
	}
}

// Finish closes every open container and returns the document. The result
// aliases the emitter's buffer and is valid until the next write or Clear.
func (e *Emitter) Finish() []byte {
	for len(e.scope) > 1 {
		e.CloseToken()
	}
	return e.buf.Bytes()
}

// writeRaw appends a pre-rendered value under the preparation rules.
func (e *Emitter) writeRaw(p []byte) bool {
	if e.truncated {
		return false
	}
	sep, ok := e.prepareValue()
	if !ok {
		return false
	}
	reserve := e.reserve()
	mark := e.buf.Len()
	if sep != 0 && !e.buf.AppendByte(sep, reserve) {
		return e.fail(mark)
	}
	if !e.buf.AppendBytes(p, reserve) {
		return e.fail(mark)
	}
	return true
}

func (e *Emitter) writeRawString(s string) bool {
	if e.truncated {
		return false
	}
	sep, ok := e.prepareValue()
	if !ok {
		return false
	}
	reserve := e.reserve()
	mark := e.buf.Len()
	if sep != 0 && !e.buf.AppendByte(sep, reserve) {
		return e.fail(mark)
	}
	if !e.buf.AppendString(s, reserve) {
		return e.fail(mark)
	}
	return true
}

func (e *Emitter) writeRawMem(m mem.RO) bool {
	if e.truncated {
		return false
	}
	sep, ok := e.prepareValue()
	if !ok {
		return false
	}
	reserve := e.reserve()
	mark := e.buf.Len()
	if sep != 0 && !e.buf.AppendByte(sep, reserve) {
		return e.fail(mark)
	}
	if !e.buf.AppendMem(m, reserve) {
		return e.fail(mark)
	}
	return true
}

// WriteNull writes the null literal.
func (e *Emitter) WriteNull() bool { return e.writeRawString("null") }

// WriteBool writes true or false.
func (e *Emitter) WriteBool(v bool) bool {
	if v {
		return e.writeRawString("true")
	}
	return e.writeRawString("false")
}

// WriteInt writes a signed integer in decimal form.
func (e *Emitter) WriteInt(v int64) bool {
	var tmp [24]byte
	return e.writeRaw(strconv.AppendInt(tmp[:0], v, 10))
}

// WriteUint writes an unsigned integer in decimal form.
func (e *Emitter) WriteUint(v uint64) bool {
	var tmp [24]byte
	return e.writeRaw(strconv.AppendUint(tmp[:0], v, 10))
}

// WriteFloat64 writes the shortest decimal form that round-trips to v.
// Values with no finite decimal form (NaN, infinities) write null.
func (e *Emitter) WriteFloat64(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return e.WriteNull()
	}
	var tmp [32]byte
	return e.writeRaw(strconv.AppendFloat(tmp[:0], v, 'g', -1, 64))
}

// WriteFloat32 is WriteFloat64 at single precision.
func (e *Emitter) WriteFloat32(v float32) bool {
	if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
		return e.WriteNull()
	}
	var tmp [32]byte
	return e.writeRaw(strconv.AppendFloat(tmp[:0], float64(v), 'g', -1, 32))
}

// WriteNumber writes a pre-rendered number verbatim. The caller is
// responsible for text being a valid JSON number in the invariant form; an
// empty text reports false.
func (e *Emitter) WriteNumber(text string) bool {
	if text == "" {
		return false
	}
	return e.writeRawString(text)
}

// WriteString writes s as a quoted, escaped string value.
func (e *Emitter) WriteString(s string) bool { return e.writeString(mem.S(s)) }

// WriteBytes writes p as a quoted, escaped string value; a nil p writes
// null.
func (e *Emitter) WriteBytes(p []byte) bool {
	if p == nil {
		return e.WriteNull()
	}
	return e.writeString(mem.B(p))
}

// writeString emits a quoted string atomically: if any piece fails to fit,
// the whole write rolls back before the emitter truncates.
func (e *Emitter) writeString(src mem.RO) bool {
	if e.truncated {
		return false
	}
	sep, ok := e.prepareValue()
	if !ok {
		return false
	}
	reserve := e.reserve()
	mark := e.buf.Len()
	ok = (sep == 0 || e.buf.AppendByte(sep, reserve)) &&
		e.buf.AppendByte('"', reserve) &&
		escape.Append(e.buf, src, reserve) &&
		e.buf.AppendByte('"', reserve)
	if !ok {
		return e.fail(mark)
	}
	return true
}
