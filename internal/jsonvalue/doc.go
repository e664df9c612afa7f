// Package jsonvalue implements the DAB broker's wire format: a tagged-union
// JSON value with a pragmatic, non-standard grammar (bare-symbol object
// keys, trailing commas, no \uXXXX escapes, %HH escaping for control and
// non-ASCII bytes).
//
// Copying a Value by plain assignment shares its array elements and object
// fields with the original; Clone deep-copies, the same way the original
// C++ jsonElement's copy constructor deep-copies its std::variant. The
// constructors and setters (Arr, Obj, Push, Set, SetField) clone what they
// are given. Object field order is always lexicographic by key; there is
// no way to construct a Value whose object fields serialize out of order.
package jsonvalue
