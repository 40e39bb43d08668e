// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package jspan implements a span-reporting JSON scanner and a bounded JSON
// emitter, built for hot-path serialization in telemetry pipelines: neither
// allocates in steady state, and both may be reused across documents.
//
// # Scanning
//
// The Scanner type tokenizes an in-memory payload. Construct a scanner from
// a read-only view of the payload and call its Next method to iterate over
// the token stream. Each token is reported as a segment of the payload;
// string bodies are decoded only when asked for:
//
//	s := jspan.NewScanner(mem.S(input), 0, 8)
//	for s.Next() {
//	   log.Printf("Next token: %v %v", s.Kind(), s.Segment())
//	}
//
// Next returns false once the root value has ended (Complete; input after it
// is not read) or the payload is found to be malformed (Invalid). Both states
// are sticky. The End token of an array,
// object, or property spans the whole container, opening delimiter through
// closing delimiter.
//
// Typed accessors convert the current token on demand: Bool, Int64, Uint64,
// Float64, and Unescape, each reporting false when the token does not carry
// a value of that type. Unsigned integers admit hexadecimal literals of the
// form 0x1F, an extension this package shares with the payloads it was built
// to read.
//
// # Emitting
//
// The Emitter type builds a document inside a buffer of fixed capacity.
// Writes that would overflow instead produce a well-formed truncated form,
// marked with the literal {"(truncated)":true}:
//
//	e := jspan.NewEmitter(256, 8)
//	e.OpenObject()
//	e.OpenProperty("name")
//	e.WriteString(name)
//	doc := e.Finish()
//
// Finish closes every open container, so the result always parses. Clear
// resets an emitter for the next document without reallocating.
//
// # Streaming
//
// Parse bridges a scanner to a Handler, delivering one event per token with
// containers correctly balanced, and Transcode copies a token stream into an
// emitter to re-bound an oversized payload.
package jspan
