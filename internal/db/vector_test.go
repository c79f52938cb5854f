package db

import "testing"

func TestEncodeDecodeVector(t *testing.T) {
	v := []float32{1.0, -2.5, 0}
	blob := EncodeVector(v)
	if len(blob) != 12 {
		t.Fatalf("expected 12 bytes, got %d", len(blob))
	}
	got := DecodeVector(blob)
	if len(got) != 3 {
		t.Fatalf("expected 3 floats, got %d", len(got))
	}
	for i := range v {
		if got[i] != v[i] {
			t.Errorf("got[%d] = %f, want %f", i, got[i], v[i])
		}
	}
}

func TestDecodeVector_Partial(t *testing.T) {
	blob := EncodeVector([]float32{1}) + "\x00\x00"
	if got := DecodeVector(blob); len(got) != 1 {
		t.Errorf("expected 1 float, got %d", len(got))
	}
	if got := DecodeVector(""); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"local-docs-collection", "docs:idx", "a_b"}
	for _, s := range valid {
		if !IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = false", s)
		}
	}
	invalid := []string{"", "has space", "a*b", "ä"}
	for _, s := range invalid {
		if IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = true", s)
		}
	}
}

func TestError_Unwrap(t *testing.T) {
	err := &Error{Op: OpSearch, Err: ErrIndexNotFound}
	if err.Error() != "FT.SEARCH: db: index not found" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Unwrap() != ErrIndexNotFound {
		t.Error("Unwrap mismatch")
	}
}
