// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jspan

import (
	"fmt"

	"go4.org/mem"
)

// An Anchor is a read-only view of the token a scanner is currently
// positioned on. The Anchor passed to a Handler method is only valid for the
// duration of that method call; the handler must copy any data it needs to
// retain beyond the lifetime of the call.
type Anchor interface {
	Kind() Kind               // the kind of the current token
	Segment() Segment         // the span of the current token
	Unescape() (mem.RO, bool) // the decoded text of a string-bearing token
}

// A Handler handles events from parsing a payload. If a method reports an
// error, parsing stops and that error is returned to the caller. Every End
// event matches the most recent unclosed Begin event. Events are delivered as
// tokens are read, so on malformed input the handler may see Begin events
// whose containers are never closed.
type Handler interface {
	// Begin a new object, whose open brace is at loc.
	BeginObject(loc Anchor) error

	// End the most-recently-opened object. The anchor spans the whole
	// object, open brace through close brace.
	EndObject(loc Anchor) error

	// Begin a new array, whose open bracket is at loc.
	BeginArray(loc Anchor) error

	// End the most-recently-opened array. The anchor spans the whole array.
	EndArray(loc Anchor) error

	// Begin a new object member. The anchor spans the name through its
	// colon; Unescape yields the decoded name.
	BeginProperty(loc Anchor) error

	// End the current object member. The anchor spans the name through the
	// end of the member's value.
	EndProperty(loc Anchor) error

	// Report a primitive value at the given location.
	Value(loc Anchor) error

	// Complete reports that the root value has ended. Input after it is
	// not read.
	Complete(loc Anchor)
}

// Parse drives s to a terminal state, delivering an event to h for
// every token. In case of malformed input the returned error has type
// [*SyntaxError].
func Parse(s *Scanner, h Handler) error {
	for s.Next() {
		var err error
		switch s.Kind() {
		case BeginObject:
			err = h.BeginObject(s)
		case EndObject:
			err = h.EndObject(s)
		case BeginArray:
			err = h.BeginArray(s)
		case EndArray:
			err = h.EndArray(s)
		case BeginProperty:
			err = h.BeginProperty(s)
		case EndProperty:
			err = h.EndProperty(s)
		default:
			err = h.Value(s)
		}
		if err != nil {
			return err
		}
	}
	if s.Kind() == Invalid {
		return &SyntaxError{Offset: s.Segment().Pos}
	}
	h.Complete(s)
	return nil
}

// SyntaxError is the concrete type of errors reported for malformed
// payloads.
type SyntaxError struct {
	Offset int // byte offset of the malformed input
}

// Error satisfies the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid JSON (offset %d)", e.Offset)
}
