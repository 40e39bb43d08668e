// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package charbuf implements a bounded byte accumulator whose appends never
// reallocate. Each append names a reserve, the number of free bytes that must
// remain after it succeeds, so a caller can guarantee room for work it has
// not done yet.
package charbuf

import "go4.org/mem"

// A Buffer is a fixed-capacity byte accumulator. Appends fail rather than
// grow the allocation; capacity changes only through Grow and Resize.
type Buffer struct {
	data []byte
}

// New returns an empty buffer with the given capacity.
func New(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]byte, 0, capacity)}
}

// AppendByte appends c if at least reserve bytes remain free afterward.
// The comparison is strict: the appended byte does not count against the
// reserve, so a reserve of 0 still permits filling the final slot.
func (b *Buffer) AppendByte(c byte, reserve int) bool {
	if len(b.data)+reserve < cap(b.data) {
		b.data = append(b.data, c)
		return true
	}
	return false
}

// AppendString appends all of s, or nothing. An empty s always succeeds.
func (b *Buffer) AppendString(s string, reserve int) bool {
	if s == "" {
		return true
	}
	if len(b.data)+len(s)+reserve <= cap(b.data) {
		b.data = append(b.data, s...)
		return true
	}
	return false
}

// AppendBytes appends all of p, or nothing. An empty p always succeeds.
func (b *Buffer) AppendBytes(p []byte, reserve int) bool {
	if len(p) == 0 {
		return true
	}
	if len(b.data)+len(p)+reserve <= cap(b.data) {
		b.data = append(b.data, p...)
		return true
	}
	return false
}

// AppendMem appends all of m, or nothing. An empty m always succeeds.
func (b *Buffer) AppendMem(m mem.RO, reserve int) bool {
	if m.Len() == 0 {
		return true
	}
	if len(b.data)+m.Len()+reserve <= cap(b.data) {
		b.data = mem.Append(b.data, m)
		return true
	}
	return false
}

// Len returns the number of bytes accumulated.
func (b *Buffer) Len() int { return len(b.data) }

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int { return cap(b.data) }

// Last returns the most recently appended byte, or 0 if the buffer is empty.
func (b *Buffer) Last() byte {
	if len(b.data) == 0 {
		return 0
	}
	return b.data[len(b.data)-1]
}

// Clear discards the contents, keeping the allocation.
func (b *Buffer) Clear() { b.data = b.data[:0] }

// Truncate restores the length to n, a value previously observed from Len.
// Values outside [0, Len] are ignored.
func (b *Buffer) Truncate(n int) {
	if n >= 0 && n <= len(b.data) {
		b.data = b.data[:n]
	}
}

// Bytes returns the accumulated bytes. The slice is valid until the next
// method call on b.
func (b *Buffer) Bytes() []byte { return b.data }

// String returns a copy of the accumulated bytes as a string.
func (b *Buffer) String() string { return string(b.data) }

// Grow reallocates to capacity n if n exceeds the current capacity, and
// reports whether it did. Contents are preserved.
func (b *Buffer) Grow(n int) bool {
	if n <= cap(b.data) {
		return false
	}
	data := make([]byte, len(b.data), n)
	copy(data, b.data)
	b.data = data
	return true
}

// Resize changes the capacity to exactly n, provided the contents plus the
// given reserve still fit; otherwise it reports false and changes nothing.
func (b *Buffer) Resize(n, reserve int) bool {
	if n-reserve < len(b.data) {
		return false
	}
	if n != cap(b.data) {
		data := make([]byte, len(b.data), n)
		copy(data, b.data)
		b.data = data
	}
	return true
}
