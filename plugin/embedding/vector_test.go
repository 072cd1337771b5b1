package embedding

import (
	"math"
	"testing"
)

func TestCosine_Reflexive(t *testing.T) {
	vectors := []Vector{
		{1, 0, 0},
		{0.3, -0.7, 0.2, 0.9},
		{5, 5, 5, 5, 5},
	}
	for _, v := range vectors {
		sim := Cosine(v, v)
		if math.Abs(sim-1.0) > 1e-3 {
			t.Errorf("Cosine(v, v) = %f, want 1.0 for %v", sim, v)
		}
	}
}

func TestCosine_Commutative(t *testing.T) {
	a := Vector{0.1, 0.5, -0.3, 0.8}
	b := Vector{-0.2, 0.4, 0.9, 0.1}

	if Cosine(a, b) != Cosine(b, a) {
		t.Errorf("Cosine(a, b) = %f, Cosine(b, a) = %f, want equal", Cosine(a, b), Cosine(b, a))
	}
}

func TestCosine_ScaleInvariant(t *testing.T) {
	a := Vector{0.2, -0.6, 0.4}
	for _, k := range []float32{0.5, 2, 100} {
		scaled := make(Vector, len(a))
		for i := range a {
			scaled[i] = a[i] * k
		}
		sim := Cosine(a, scaled)
		if math.Abs(sim-1.0) > 1e-3 {
			t.Errorf("Cosine(a, %f*a) = %f, want 1.0", k, sim)
		}
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	a := Vector{1, 0}
	b := Vector{0, 1}
	if sim := Cosine(a, b); math.Abs(sim) > 1e-9 {
		t.Errorf("Cosine of orthogonal unit vectors = %f, want 0", sim)
	}
}

func TestCosine_DegenerateInputs(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
	}{
		{"zero left", Vector{0, 0, 0}, Vector{1, 2, 3}},
		{"zero right", Vector{1, 2, 3}, Vector{0, 0, 0}},
		{"both zero", Vector{0, 0}, Vector{0, 0}},
		{"empty left", Vector{}, Vector{1, 2}},
		{"empty both", Vector{}, Vector{}},
		{"length mismatch", Vector{1, 2}, Vector{1, 2, 3}},
		{"nil", nil, Vector{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := Cosine(tt.a, tt.b)
			if sim != 0 {
				t.Errorf("Cosine = %f, want exactly 0", sim)
			}
			if math.IsNaN(sim) {
				t.Error("Cosine returned NaN")
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	v := Vector{3, 4}
	Normalize(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("Normalize({3,4}) = %v, want {0.6, 0.8}", v)
	}

	zero := Vector{0, 0, 0}
	Normalize(zero)
	if !zero.IsZero() {
		t.Errorf("Normalize of zero vector mutated it: %v", zero)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	v := Vector{0.1, -2.5, 3.14159, 0, float32(math.Inf(1)), 1e-30}
	decoded, err := Unmarshal(Marshal(v))
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(decoded) != len(v) {
		t.Fatalf("length = %d, want %d", len(decoded), len(v))
	}
	for i := range v {
		if math.Float32bits(decoded[i]) != math.Float32bits(v[i]) {
			t.Errorf("component %d: got %v, want %v (bit-exact)", i, decoded[i], v[i])
		}
	}
}

func TestMarshal_LittleEndian(t *testing.T) {
	buf := Marshal(Vector{1.0})
	// 1.0 as IEEE-754 float32 is 0x3F800000, little-endian on the wire.
	want := []byte{0x00, 0x00, 0x80, 0x3F}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("Marshal({1.0}) = % X, want % X", buf, want)
		}
	}
}

func TestUnmarshal_BadLength(t *testing.T) {
	if _, err := Unmarshal([]byte{1, 2, 3}); err == nil {
		t.Error("Unmarshal accepted a buffer that is not a multiple of 4 bytes")
	}
}

func TestUnmarshal_Empty(t *testing.T) {
	v, err := Unmarshal(nil)
	if err != nil {
		t.Fatalf("Unmarshal(nil) returned error: %v", err)
	}
	if len(v) != 0 {
		t.Errorf("Unmarshal(nil) = %v, want empty vector", v)
	}
}
