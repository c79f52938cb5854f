package filter

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFromMap_Scalars(t *testing.T) {
	expr, err := FromMap(map[string]any{
		"filename": "a.md",
		"location": 3,
		"draft":    false,
		"score":    json.Number("0.5"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conds := expr.Conditions()
	if len(conds) != 4 {
		t.Fatalf("expected 4 conditions, got %d", len(conds))
	}

	// sorted by key
	wantKeys := []string{"draft", "filename", "location", "score"}
	for i, k := range wantKeys {
		if conds[i].Key() != k {
			t.Errorf("conds[%d].Key() = %q, want %q", i, conds[i].Key(), k)
		}
	}
	if conds[0].Kind() != KindBool || conds[0].BoolValue() {
		t.Errorf("draft: kind=%v value=%v", conds[0].Kind(), conds[0].BoolValue())
	}
	if conds[1].Kind() != KindString || conds[1].StringValue() != "a.md" {
		t.Errorf("filename: kind=%v value=%q", conds[1].Kind(), conds[1].StringValue())
	}
	if conds[2].Kind() != KindNumber || conds[2].NumberValue() != 3 {
		t.Errorf("location: kind=%v value=%v", conds[2].Kind(), conds[2].NumberValue())
	}
	if conds[3].NumberValue() != 0.5 {
		t.Errorf("score = %v", conds[3].NumberValue())
	}
}

func TestFromMap_Empty(t *testing.T) {
	expr, err := FromMap(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !expr.IsEmpty() {
		t.Error("expected empty expression")
	}
}

func TestFromMap_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want string
	}{
		{"nested object", map[string]any{"location": map[string]any{"start": 1, "end": 3}}, "must be a string"},
		{"array", map[string]any{"tags": []string{"a"}}, "must be a string"},
		{"null", map[string]any{"filename": nil}, "null"},
		{"bad key", map[string]any{"file name": "a"}, "invalid filter key"},
		{"empty key", map[string]any{"": "a"}, "required"},
		{"bad number", map[string]any{"n": json.Number("x")}, "filter value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.in)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestFromMap_TooMany(t *testing.T) {
	m := make(map[string]any, MaxConditions+1)
	for i := 0; i <= MaxConditions; i++ {
		m[strings.Repeat("k", i+1)] = "v"
	}
	if _, err := FromMap(m); err == nil {
		t.Fatal("expected error for too many conditions")
	}
}

func TestNewExpression_TooMany(t *testing.T) {
	conds := make([]Condition, MaxConditions+1)
	if _, err := NewExpression(conds...); err == nil {
		t.Fatal("expected error")
	}
}

func TestCondition_Matches(t *testing.T) {
	s, _ := NewString("filename", "a.md")
	n, _ := NewNumber("location", 2)
	b, _ := NewBool("draft", true)

	tests := []struct {
		name   string
		cond   Condition
		stored string
		want   bool
	}{
		{"string exact", s, "a.md", true},
		{"string differs", s, "b.md", false},
		{"string prefix", s, "a.md.bak", false},
		{"number equal", n, "2", true},
		{"number float form", n, "2.0", true},
		{"number differs", n, "3", false},
		{"number garbage", n, "two", false},
		{"bool true", b, "true", true},
		{"bool false", b, "false", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cond.Matches(tt.stored); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.stored, got, tt.want)
			}
		})
	}
}

func TestNewNumber_NonFinite(t *testing.T) {
	zero := 0.0
	if _, err := NewNumber("n", 1/zero); err == nil {
		t.Error("expected error for +Inf")
	}
}
