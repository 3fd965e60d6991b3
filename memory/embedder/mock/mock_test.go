package mock

import (
	"context"
	"math"
	"reflect"
	"testing"
)

func TestEmbedDeterministic(t *testing.T) {
	e := New(32)

	a, err := e.Embed(context.Background(), "the same text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := e.Embed(context.Background(), "the same text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical texts must embed identically")
	}

	c, _ := e.Embed(context.Background(), "different text")
	if reflect.DeepEqual(a, c) {
		t.Error("different texts should not embed identically")
	}
}

func TestEmbedUnitVector(t *testing.T) {
	e := New(48)
	if e.Dimensions() != 48 {
		t.Fatalf("Dimensions = %d, want 48", e.Dimensions())
	}

	vec, err := e.Embed(context.Background(), "normalize me")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 48 {
		t.Fatalf("embedding length = %d, want 48", len(vec))
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(sum)-1.0) > 1e-5 {
		t.Errorf("norm = %v, want 1.0", math.Sqrt(sum))
	}
}
