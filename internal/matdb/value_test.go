package matdb

import "testing"

func TestValueFieldLookup(t *testing.T) {
	v := StructValue([]string{"a", "b"}, map[string]Value{
		"a": Int64Value(KindInt32, 7),
		"b": BoolValue(true),
	})
	got, ok := v.Field("a")
	if !ok || got.I64 != 7 {
		t.Errorf("Field(a) = %+v, %v, want I64=7, true", got, ok)
	}
	if _, ok := v.Field("missing"); ok {
		t.Error("Field(missing) = true, want false")
	}
}

func TestValueFieldOnNonStructIsSafe(t *testing.T) {
	v := StringValue("x")
	if _, ok := v.Field("anything"); ok {
		t.Error("Field on a non-struct Value returned true, want false")
	}
}

func TestAsFloat32Coercion(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want float32
	}{
		{"float32", Float32Value(1.5), 1.5},
		{"float64", Float64Value(2.5), 2.5},
		{"int32", Int64Value(KindInt32, -3), -3},
		{"uint32", UInt64Value(KindUInt32, 9), 9},
	}
	for _, c := range cases {
		got, ok := c.v.AsFloat32()
		if !ok || got != c.want {
			t.Errorf("%s: AsFloat32() = %v, %v, want %v, true", c.name, got, ok, c.want)
		}
	}
}

func TestAsFloat32RejectsNonNumeric(t *testing.T) {
	if _, ok := StringValue("x").AsFloat32(); ok {
		t.Error("AsFloat32() on a string Value returned true, want false")
	}
}

func TestAsBoolAndAsString(t *testing.T) {
	if b, ok := BoolValue(true).AsBool(); !ok || !b {
		t.Errorf("AsBool() = %v, %v, want true, true", b, ok)
	}
	if _, ok := StringValue("x").AsBool(); ok {
		t.Error("AsBool() on a string Value returned true, want false")
	}
	if s, ok := StringValue("hi").AsString(); !ok || s != "hi" {
		t.Errorf("AsString() = %q, %v, want %q, true", s, ok, "hi")
	}
	if _, ok := BoolValue(true).AsString(); ok {
		t.Error("AsString() on a bool Value returned true, want false")
	}
}

func TestValueStringRendering(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{NullValue(), "null"},
		{StringValue("hi"), `"hi"`},
		{BoolValue(true), "true"},
		{Value{Kind: KindList, List: []Value{NullValue(), NullValue()}}, "list(2)"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("%+v.String() = %q, want %q", c.v, got, c.want)
		}
	}
}
