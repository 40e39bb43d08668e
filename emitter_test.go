// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jspan_test

import (
	"encoding/json"
	"testing"

	"github.com/creachadair/jspan"
	"github.com/creachadair/mds/mtest"
	gojson "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

func TestEmitterBasics(t *testing.T) {
	e := jspan.NewEmitter(256, 4)
	e.OpenObject()
	e.OpenProperty("name")
	e.WriteString("checkout")
	e.CloseToken()
	e.OpenProperty("durationMs")
	e.WriteFloat64(12.25)
	e.CloseToken()
	e.OpenProperty("attempts")
	e.WriteInt(-3)
	e.CloseToken()
	e.OpenProperty("flags")
	e.OpenArray()
	e.WriteBool(true)
	e.WriteNull()
	e.WriteUint(18446744073709551615)
	e.CloseToken()
	e.CloseToken()

	const want = `{"name":"checkout","durationMs":12.25,"attempts":-3,` +
		`"flags":[true,null,18446744073709551615]}`
	if got := string(e.Finish()); got != want {
		t.Errorf("Finish:\n got %s\nwant %s", got, want)
	}
}

func TestEmitterTruncateArray(t *testing.T) {
	e := jspan.NewEmitter(50, 2)
	if !e.OpenArray() {
		t.Fatal("OpenArray failed")
	}
	for i := 0; e.WriteInt(int64(i)); i++ {
	}
	const want = `[0,1,2,3,4,5,6,7,8,9,10,11,{"(truncated)":true}]`
	if got := string(e.Finish()); got != want {
		t.Errorf("Finish:\n got %s\nwant %s", got, want)
	}
}

func TestEmitterTruncateObject(t *testing.T) {
	e := jspan.NewEmitter(50, 4)
	if !e.OpenObject() {
		t.Fatal("OpenObject failed")
	}
	for i := 0; ; i++ {
		if !e.OpenProperty(string(rune('0' + i))) {
			break
		}
		e.WriteInt(int64(i))
		e.CloseToken()
	}
	const want = `{"0":0,"1":1,"2":2,"3":3,"(truncated)":true}`
	if got := string(e.Finish()); got != want {
		t.Errorf("Finish:\n got %s\nwant %s", got, want)
	}
}

// Whatever the capacity, Finish must fit it and must parse, even when
// truncation strikes mid-structure.
func TestEmitterCapacity(t *testing.T) {
	for capacity := 1; capacity <= 120; capacity++ {
		e := jspan.NewEmitter(capacity, 4)
		e.OpenObject()
		e.OpenProperty("spans")
		e.OpenArray()
		for i := 0; i < 8; i++ {
			e.OpenObject()
			e.OpenProperty("id")
			e.WriteInt(int64(i))
			e.CloseToken()
			e.OpenProperty("note")
			e.WriteString("a\tbc")
			e.CloseToken()
			e.CloseToken()
		}
		got := e.Finish()

		limit := capacity
		if limit < 20 { // capacity is raised to hold the truncated marker
			limit = 20
		}
		if len(got) > limit {
			t.Errorf("Capacity %d: output %d bytes: %s", capacity, len(got), got)
		}
		if !json.Valid(got) {
			t.Errorf("Capacity %d: output does not parse: %s", capacity, got)
		}
		var v any
		if err := gojson.Unmarshal(got, &v); err != nil {
			t.Errorf("Capacity %d: goccy rejects output: %v", capacity, err)
		}
	}
}

func TestEmitterPropertyNull(t *testing.T) {
	e := jspan.NewEmitter(64, 2)
	e.OpenObject()
	e.OpenProperty("empty")
	e.CloseToken() // no value written: closing supplies null
	if got, want := string(e.Finish()), `{"empty":null}`; got != want {
		t.Errorf("Finish: got %s, want %s", got, want)
	}
}

func TestEmitterStringEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", `""`},
		{"plain", `"plain"`},
		{"a\"b\\c", `"a\"b\\c"`},
		{"\b\f\n\r\t", `"\b\f\n\r\t"`},
		{"\x00\x01\x1f", `"\u0000\u0001\u001F"`},
		{"\x7f", `"\u007F"`},
		{"\u0085\u009f", `"\u0085\u009F"`}, // C1 controls escape too
		{"a/b", `"a/b"`},                   // forward slash is not escaped
		{"héllo", `"héllo"`},
	}
	for _, test := range tests {
		e := jspan.NewEmitter(256, 2)
		if !e.WriteString(test.input) {
			t.Errorf("WriteString(%#q) failed", test.input)
			continue
		}
		if got := string(e.Finish()); got != test.want {
			t.Errorf("Input: %#q\nGot:  %s\nWant: %s", test.input, got, test.want)
		}
	}
}

func TestEmitterWriteBytes(t *testing.T) {
	e := jspan.NewEmitter(64, 2)
	e.OpenArray()
	e.WriteBytes(nil) // absent writes null
	e.WriteBytes([]byte{})
	e.WriteBytes([]byte("ok"))
	if got, want := string(e.Finish()), `[null,"","ok"]`; got != want {
		t.Errorf("Finish: got %s, want %s", got, want)
	}
}

func TestEmitterNumbers(t *testing.T) {
	e := jspan.NewEmitter(256, 2)
	e.OpenArray()
	e.WriteFloat64(0.1)
	e.WriteFloat32(1.5)
	e.WriteFloat64(1e21)
	e.WriteNumber("12.3400")
	e.WriteInt(-9223372036854775808)
	if got, want := string(e.Finish()),
		`[0.1,1.5,1e+21,12.3400,-9223372036854775808]`; got != want {
		t.Errorf("Finish: got %s, want %s", got, want)
	}

	e.Clear()
	e.OpenArray()
	e.WriteFloat64(nan())
	if got, want := string(e.Finish()), `[null]`; got != want {
		t.Errorf("NaN: got %s, want %s", got, want)
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

// Ungrammatical calls report false without disturbing the document or
// entering the truncated state.
func TestEmitterGrammar(t *testing.T) {
	e := jspan.NewEmitter(64, 4)
	if !e.WriteInt(1) {
		t.Fatal("root value failed")
	}
	if e.WriteInt(2) {
		t.Error("second root value: got true, want false")
	}
	if e.OpenProperty("x") {
		t.Error("OpenProperty at root: got true, want false")
	}
	if got, want := string(e.Finish()), `1`; got != want {
		t.Errorf("Finish: got %s, want %s", got, want)
	}

	e.Clear()
	e.OpenObject()
	if e.WriteInt(1) {
		t.Error("bare value in object: got true, want false")
	}
	if e.OpenArray() {
		t.Error("array in object without property: got true, want false")
	}
	e.OpenProperty("a")
	if !e.WriteInt(1) {
		t.Error("property value failed")
	}
	if e.WriteInt(2) {
		t.Error("second property value: got true, want false")
	}
	if got, want := string(e.Finish()), `{"a":1}`; got != want {
		t.Errorf("Finish: got %s, want %s", got, want)
	}
}

func TestEmitterClear(t *testing.T) {
	build := func(e *jspan.Emitter) string {
		e.OpenArray()
		e.WriteString("reuse")
		e.WriteInt(7)
		return string(e.Finish())
	}

	e := jspan.NewEmitter(64, 2)
	first := build(e)

	// A double Clear must behave like a single one.
	e.Clear()
	e.Clear()
	second := build(e)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Rebuilt document: (-want, +got)\n%s", diff)
	}

	// Clearing a truncated emitter restores full service.
	e.Clear()
	e.OpenArray()
	for i := 0; e.WriteInt(int64(i)); i++ {
	}
	e.Finish()
	e.Clear()
	third := build(e)
	if diff := cmp.Diff(first, third); diff != "" {
		t.Errorf("Document after truncation+Clear: (-want, +got)\n%s", diff)
	}
}

func TestEmitterResize(t *testing.T) {
	e := jspan.NewEmitter(50, 2)
	e.OpenArray()
	for i := 0; i < 5; i++ {
		e.WriteInt(int64(i))
	}
	if e.Resize(20) {
		t.Error("Resize below content+reserve: got true, want false")
	}
	if !e.Resize(200) {
		t.Fatal("Resize(200) failed")
	}
	for i := 5; i < 20; i++ {
		if !e.WriteInt(int64(i)) {
			t.Fatalf("WriteInt(%d) failed after Resize", i)
		}
	}
	got := string(e.Finish())
	const want = `[0,1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17,18,19]`
	if got != want {
		t.Errorf("Finish: got %s, want %s", got, want)
	}
}

func TestEmitterMinimumCapacity(t *testing.T) {
	// Capacity below the marker length is raised so truncation always fits.
	e := jspan.NewEmitter(1, 1)
	if e.OpenObject() {
		// A 20-byte buffer cannot host an object and still close it under
		// the reserve, so the open itself truncates.
		t.Log("OpenObject succeeded in minimum buffer")
	}
	got := e.Finish()
	if len(got) > 20 {
		t.Errorf("Finish: %d bytes, want at most 20: %s", len(got), got)
	}
	if !json.Valid(got) {
		t.Errorf("Finish does not parse: %s", got)
	}
}

func TestEmitterPanics(t *testing.T) {
	mtest.MustPanic(t, func() { jspan.NewEmitter(64, 0) })
	mtest.MustPanic(t, func() { jspan.NewEmitter(64, -3) })
}
