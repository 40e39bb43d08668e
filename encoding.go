// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jspan

import (
	"errors"

	"go4.org/mem"

	"github.com/creachadair/jspan/internal/charbuf"
	"github.com/creachadair/jspan/internal/escape"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string {
	b := charbuf.New(2 + 6*len(src))
	b.AppendByte('"', 0)
	escape.Append(b, mem.S(src), 0)
	b.AppendByte('"', 0)
	return b.String()
}

// Unquote decodes a JSON string value. Double quotation marks are removed,
// and escape sequences are replaced with their unescaped equivalents.
func Unquote(src string) ([]byte, error) {
	if len(src) < 2 || src[0] != '"' || src[len(src)-1] != '"' {
		return nil, errors.New("missing quotations")
	}
	b := charbuf.New(len(src))
	if !escape.Decode(b, mem.S(src[1:len(src)-1])) {
		return nil, errors.New("invalid escape sequence")
	}
	return b.Bytes(), nil
}
