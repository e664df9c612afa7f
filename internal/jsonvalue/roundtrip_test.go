package jsonvalue

import "testing"

// TestRoundTripPreservesShape checks that parsing
// a serialized Value and re-serializing it yields the same wire text,
// because object key order is always lexicographic regardless of
// construction or parse order.
func TestRoundTripPreservesShape(t *testing.T) {
	cases := []string{
		`{}`,
		`[]`,
		`{"a":1,"b":2}`,
		`{"b":2,"a":1}`,
		`[1,2,3]`,
		`{"nested":{"z":1,"a":2},"list":[true,false,null]}`,
		`"hi there"`,
		`42`,
		`-17`,
		`3.25`,
	}

	for _, in := range cases {
		v, err := Parse([]byte(in))
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", in, err)
		}
		out, err := Serialize(v, true)
		if err != nil {
			t.Fatalf("Serialize() error = %v", err)
		}

		v2, err := Parse([]byte(out))
		if err != nil {
			t.Fatalf("Parse(Serialize(Parse(%q))) error = %v", in, err)
		}
		out2, err := Serialize(v2, true)
		if err != nil {
			t.Fatalf("Serialize() error = %v", err)
		}
		if out != out2 {
			t.Fatalf("round trip unstable: %q -> %q -> %q", in, out, out2)
		}
	}
}

// TestRoundTripNormalizesKeyOrder covers S2: regardless of the order keys
// appear on the wire, the serialized form is always lexicographic.
func TestRoundTripNormalizesKeyOrder(t *testing.T) {
	a, err := Parse([]byte(`{"b":2,"a":1,"c":3}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	out, err := Serialize(a, true)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if out != `{"a":1,"b":2,"c":3}` {
		t.Fatalf("Serialize() = %q, want lexicographic key order", out)
	}
}

// TestRoundTripPreservesNumericKind covers S3: a value parsed as Int64
// serializes without a decimal point, and one parsed as Float64 always
// keeps one, even when the float happens to be a whole number.
func TestRoundTripPreservesNumericKind(t *testing.T) {
	i, err := Parse([]byte(`7`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !i.IsInt64() {
		t.Fatalf("Kind() = %s, want int64", i.Kind())
	}

	f, err := Parse([]byte(`7.0`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !f.IsFloat() {
		t.Fatalf("Kind() = %s, want float64", f.Kind())
	}

	fOut, err := Serialize(f, true)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if fOut == "7" {
		t.Fatalf("Serialize(7.0) = %q, lost float identity", fOut)
	}
}
