package jsonvalue

import (
	"errors"
	"fmt"
)

// ParseErrorKind classifies why Parse failed.
type ParseErrorKind string

const (
	MissingComma       ParseErrorKind = "missing comma"
	MissingColon       ParseErrorKind = "missing colon"
	UnterminatedString ParseErrorKind = "unterminated string"
	InvalidSymbol      ParseErrorKind = "invalid symbol"
	InvalidNumber      ParseErrorKind = "invalid number"
	UnexpectedEOF      ParseErrorKind = "unexpected end of input"
	TrailingGarbage    ParseErrorKind = "trailing garbage"
)

// ParseError reports a parse failure at a byte offset into the input.
type ParseError struct {
	Kind   ParseErrorKind
	Offset int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("jsonvalue: parse error at offset %d: %s", e.Offset, e.Kind)
}

// WrongTypeError reports that an exact-type accessor was called on a Value
// of a different Kind.
type WrongTypeError struct {
	Want Kind
	Got  Kind
}

func (e *WrongTypeError) Error() string {
	return fmt.Sprintf("jsonvalue: wrong type: want %s, got %s", e.Want, e.Got)
}

// ErrArrayMarkerLeaked is returned by Serialize if it is ever asked to
// serialize a KindArrayMarker value, which must never happen for any Value
// built through the public constructors.
var ErrArrayMarkerLeaked = errors.New("jsonvalue: ArrayMarker value cannot be serialized")
