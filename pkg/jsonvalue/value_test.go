package jsonvalue

import "testing"

func TestRefRoundTrip(t *testing.T) {
	ref := Ref("User:1")
	key, ok := RefKey(ref)
	if !ok {
		t.Fatalf("RefKey(%v) returned ok=false", ref)
	}
	if key != "User:1" {
		t.Errorf("got key %q, want %q", key, "User:1")
	}
}

func TestRefKeyRejectsNonRef(t *testing.T) {
	cases := []any{
		map[string]any{"id": "1"},
		map[string]any{"__ref": "User:1", "extra": true},
		map[string]any{"__ref": 1},
		"not an object",
		nil,
	}
	for _, c := range cases {
		if _, ok := RefKey(c); ok {
			t.Errorf("RefKey(%#v) = ok, want not-ok", c)
		}
	}
}

func TestCanonicalSortsKeys(t *testing.T) {
	a, err := Canonical(map[string]any{"b": 1, "a": 2})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Canonical(map[string]any{"a": 2, "b": 1})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("canonical forms differ: %q vs %q", a, b)
	}
	if a != `{"a":2,"b":1}` {
		t.Errorf("got %q", a)
	}
}

func TestDecodePreservesNumberLiteral(t *testing.T) {
	v, err := Decode([]byte(`{"price": 19.90}`))
	if err != nil {
		t.Fatal(err)
	}
	obj, _ := Object(v)
	out, err := Encode(obj)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"price":19.90}` {
		t.Errorf("got %s, want number literal preserved", out)
	}
}

func TestCloneObjectIsIndependent(t *testing.T) {
	orig := map[string]any{"a": 1}
	clone := CloneObject(orig)
	clone["a"] = 2
	if orig["a"] != 1 {
		t.Errorf("mutating clone affected original: %v", orig)
	}
}
