package record

import (
	"strings"
	"testing"

	"github.com/talentgrid/matchengine/internal/domain/metadata"
)

func TestNew_Valid(t *testing.T) {
	meta := metadata.Metadata{"city": metadata.String("Mumbai")}

	rec, err := New("cand-1", []float32{1, 0, 0}, meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID() != "cand-1" {
		t.Errorf("ID() = %q", rec.ID())
	}
	if rec.Dimension() != 3 {
		t.Errorf("Dimension() = %d", rec.Dimension())
	}
	if got, _ := rec.Metadata()["city"].AsString(); got != "Mumbai" {
		t.Errorf("Metadata() = %v", rec.Metadata())
	}
}

func TestNew_ClonesInputs(t *testing.T) {
	vec := []float32{1, 2, 3}
	meta := metadata.Metadata{"k": metadata.String("v")}

	rec, _ := New("cand-1", vec, meta)

	vec[0] = 99
	meta["k"] = metadata.String("mutated")

	if rec.Vector()[0] != 1 {
		t.Error("vector mutation leaked into record")
	}
	if got, _ := rec.Metadata()["k"].AsString(); got != "v" {
		t.Error("metadata mutation leaked into record")
	}
}

func TestNew_EmptyID(t *testing.T) {
	_, err := New("", []float32{1}, nil)
	if err == nil {
		t.Fatal("expected error for empty ID")
	}
}

func TestNew_IDTooLong(t *testing.T) {
	_, err := New(strings.Repeat("a", MaxIDLength+1), []float32{1}, nil)
	if err == nil {
		t.Fatal("expected error for ID too long")
	}
	if !strings.Contains(err.Error(), "too long") {
		t.Errorf("error = %q", err)
	}
}

func TestNew_EmptyVector(t *testing.T) {
	_, err := New("cand-1", nil, nil)
	if err == nil {
		t.Fatal("expected error for empty vector")
	}
}

func TestNew_NilMetadata(t *testing.T) {
	rec, err := New("cand-1", []float32{1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Metadata() != nil {
		t.Errorf("Metadata() = %v, want nil", rec.Metadata())
	}
}

func TestReconstruct_NoCopy(t *testing.T) {
	vec := []float32{1, 2}
	rec := Reconstruct("cand-1", vec, nil)

	// Hydration path aliases the input on purpose.
	vec[0] = 99
	if rec.Vector()[0] != 99 {
		t.Error("Reconstruct should not copy the vector")
	}
}
