// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jspan_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/creachadair/jspan"
	"github.com/google/go-cmp/cmp"
	"go4.org/mem"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`true`, `
Value boolean <true>
.`},

		{`{}`, "BeginObject\nEndObject\n."},
		{`[]`, "BeginArray\nEndArray\n."},

		{`{"a":15}`, `
BeginObject
BeginProperty <a>
Value integer <15>
EndProperty
EndObject
.`},

		{`{"x":null, "y":[true]}`, `
BeginObject
BeginProperty <x>
Value null <null>
EndProperty
BeginProperty <y>
BeginArray
Value boolean <true>
EndArray
EndProperty
EndObject
.`},
	}

	for _, test := range tests {
		th := new(testHandler)
		s := jspan.NewScanner(mem.S(test.input), 0, 4)
		if err := jspan.Parse(s, th); err != nil {
			t.Errorf("Parse failed: %v", err)
		}
		if diff := diffStrings(test.want, th.output()); diff != "" {
			t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		offset int
	}{
		{`{`, `BeginObject`, 1},
		{`}`, ``, 0},
		{`{false:1}`, `BeginObject`, 1},
		{`[15,`, `
BeginArray
Value integer <15>`, 4},
	}

	for _, test := range tests {
		th := new(testHandler)
		s := jspan.NewScanner(mem.S(test.input), 0, 4)
		err := jspan.Parse(s, th)
		if err == nil {
			t.Errorf("Input: %#q: Parse did not report an error", test.input)
			continue
		}
		serr, ok := err.(*jspan.SyntaxError)
		if !ok {
			t.Errorf("Input: %#q: error type %T, want *SyntaxError", test.input, err)
			continue
		}
		if serr.Offset != test.offset {
			t.Errorf("Input: %#q: offset %d, want %d", test.input, serr.Offset, test.offset)
		}
		if diff := diffStrings(test.want, th.output()); diff != "" {
			t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestParseHandlerError(t *testing.T) {
	s := jspan.NewScanner(mem.S(`[1,2,3]`), 0, 4)
	want := fmt.Errorf("stop here")
	err := jspan.Parse(s, &stopHandler{testHandler: new(testHandler), stop: want})
	if err != want {
		t.Errorf("Parse: got %v, want %v", err, want)
	}
}

func diffStrings(want, got string) string {
	return cmp.Diff(strings.Split(strings.TrimSpace(want), "\n"),
		strings.Split(strings.TrimSpace(got), "\n"))
}

type testHandler struct {
	buf bytes.Buffer
}

func (t *testHandler) pr(msg string, args ...any) {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprintf(&t.buf, msg, args...)
}

func (t *testHandler) output() string { return t.buf.String() }

func (t *testHandler) BeginObject(loc jspan.Anchor) error { t.pr("BeginObject"); return nil }
func (t *testHandler) EndObject(loc jspan.Anchor) error   { t.pr("EndObject"); return nil }
func (t *testHandler) BeginArray(loc jspan.Anchor) error  { t.pr("BeginArray"); return nil }
func (t *testHandler) EndArray(loc jspan.Anchor) error    { t.pr("EndArray"); return nil }
func (t *testHandler) EndProperty(loc jspan.Anchor) error { t.pr("EndProperty"); return nil }
func (t *testHandler) Complete(loc jspan.Anchor)          { t.pr(".") }

func (t *testHandler) BeginProperty(loc jspan.Anchor) error {
	name, _ := loc.Unescape()
	t.pr("BeginProperty <%s>", name.StringCopy())
	return nil
}

func (t *testHandler) Value(loc jspan.Anchor) error {
	t.pr("Value %s <%s>", loc.Kind(), loc.Segment().String())
	return nil
}

type stopHandler struct {
	*testHandler
	stop error
}

func (s *stopHandler) Value(loc jspan.Anchor) error { return s.stop }
