// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jspan

// Transcode copies the token stream of s into e, re-serializing the payload
// under the emitter's capacity bound. Numbers copy as raw spans without
// re-rendering; strings and member names decode and re-escape. If the
// emitter truncates, copying stops early and the output carries the
// truncation marker. In case of malformed input the returned error has type
// [*SyntaxError].
func Transcode(e *Emitter, s *Scanner) error {
	for s.Next() {
		if e.truncated {
			return nil
		}
		switch s.Kind() {
		case BeginArray:
			e.OpenArray()
		case BeginObject:
			e.OpenObject()
		case BeginProperty:
			name, ok := s.Unescape()
			if !ok {
				return &SyntaxError{Offset: s.Segment().Pos}
			}
			e.openProperty(name)
		case EndArray, EndObject, EndProperty:
			e.CloseToken()
		case Null:
			e.WriteNull()
		case Boolean:
			v, _ := s.Bool()
			e.WriteBool(v)
		case Integer, Float:
			e.writeRawMem(s.Segment().View())
		case String:
			body, ok := s.Unescape()
			if !ok {
				return &SyntaxError{Offset: s.Segment().Pos}
			}
			e.writeString(body)
		}
	}
	if s.Kind() == Invalid {
		return &SyntaxError{Offset: s.Segment().Pos}
	}
	return nil
}
