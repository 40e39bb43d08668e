// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jspan

import "go4.org/mem"

// A Segment identifies a contiguous span of a source payload without copying
// it. The zero Segment is empty.
type Segment struct {
	Source mem.RO // the payload the segment indexes into
	Pos    int    // the start offset, 0-based
	Len    int    // the number of bytes spanned
}

// End returns the offset one past the last byte of the segment.
func (s Segment) End() int { return s.Pos + s.Len }

// View returns a read-only view of the spanned bytes.
func (s Segment) View() mem.RO { return s.Source.SliceFrom(s.Pos).SliceTo(s.Len) }

// String returns a copy of the spanned bytes as a string.
func (s Segment) String() string { return s.View().StringCopy() }
