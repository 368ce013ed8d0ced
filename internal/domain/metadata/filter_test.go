package metadata

import (
	"fmt"
	"testing"
)

func TestNewFilter_Valid(t *testing.T) {
	f, err := NewFilter(map[string]Value{
		"city":   String("Mumbai"),
		"senior": Bool(true),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Len() != 2 {
		t.Errorf("Len() = %d", f.Len())
	}
	if f.IsEmpty() {
		t.Error("filter with conditions should not be empty")
	}
}

func TestNewFilter_EmptyKey(t *testing.T) {
	_, err := NewFilter(map[string]Value{"": String("x")})
	if err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestNewFilter_InvalidValue(t *testing.T) {
	_, err := NewFilter(map[string]Value{"k": {}})
	if err == nil {
		t.Fatal("expected error for invalid value")
	}
}

func TestNewFilter_TooManyConditions(t *testing.T) {
	conds := make(map[string]Value, MaxConditions+1)
	for i := 0; i <= MaxConditions; i++ {
		conds[fmt.Sprintf("field-%d", i)] = Number(float64(i))
	}
	_, err := NewFilter(conds)
	if err == nil {
		t.Fatal("expected error for too many conditions")
	}
}

func TestNewFilter_ClonesConditions(t *testing.T) {
	conds := map[string]Value{"city": String("Mumbai")}
	f, _ := NewFilter(conds)
	conds["city"] = String("Delhi")

	if !f.Matches(Metadata{"city": String("Mumbai")}) {
		t.Error("mutation of the input map leaked into the filter")
	}
}

func TestFilter_ZeroMatchesEverything(t *testing.T) {
	var f Filter
	if !f.IsEmpty() {
		t.Error("zero filter should be empty")
	}
	if !f.Matches(Metadata{"anything": String("x")}) {
		t.Error("empty filter should match any record")
	}
	if !f.Matches(nil) {
		t.Error("empty filter should match nil metadata")
	}
}

func TestFilter_Matches(t *testing.T) {
	f, _ := NewFilter(map[string]Value{"city": String("Mumbai")})

	if !f.Matches(Metadata{"city": String("Mumbai"), "extra": Number(1)}) {
		t.Error("matching metadata with extra fields should pass")
	}
	if f.Matches(Metadata{"city": String("Delhi")}) {
		t.Error("different value should not match")
	}
}

func TestFilter_AbsentKeyExcludes(t *testing.T) {
	f, _ := NewFilter(map[string]Value{"city": String("Mumbai")})

	if f.Matches(Metadata{"skills": StringSet("go")}) {
		t.Error("record missing a filtered field must not match")
	}
	if f.Matches(nil) {
		t.Error("nil metadata must not match a non-empty filter")
	}
}

func TestFilter_Conjunction(t *testing.T) {
	f, _ := NewFilter(map[string]Value{
		"city":   String("Mumbai"),
		"senior": Bool(true),
	})

	if !f.Matches(Metadata{"city": String("Mumbai"), "senior": Bool(true)}) {
		t.Error("all conditions met should match")
	}
	if f.Matches(Metadata{"city": String("Mumbai"), "senior": Bool(false)}) {
		t.Error("one failed condition should exclude the record")
	}
}

func TestFilter_StringSetExactEquality(t *testing.T) {
	f, _ := NewFilter(map[string]Value{"skills": StringSet("go", "sql")})

	if !f.Matches(Metadata{"skills": StringSet("sql", "go")}) {
		t.Error("same members, different order should match")
	}
	if f.Matches(Metadata{"skills": StringSet("go", "sql", "k8s")}) {
		t.Error("superset is not an exact match")
	}
}
