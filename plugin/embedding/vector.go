// Package embedding provides the face embedding vector type and its
// similarity and serialization primitives.
package embedding

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// DefaultDim is the dimensionality produced by the ArcFace-style face
// embedding models the capture layer ships with.
const DefaultDim = 512

// Vector is a fixed-length face embedding. The length is carried by the
// data itself; all callers must treat mismatched lengths as "no similarity"
// rather than an error.
type Vector []float32

// Cosine calculates cosine similarity between two vectors.
// Returns 0 when the vectors differ in length, are empty, or either one is
// all-zero. The result is clamped to [-1, 1] to absorb floating point error.
func Cosine(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	similarity := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	if similarity > 1 {
		similarity = 1
	}
	if similarity < -1 {
		similarity = -1
	}
	return similarity
}

// Normalize performs L2 normalization in-place. Zero vectors are left as-is.
func Normalize(v Vector) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := float32(math.Sqrt(sum))
	if norm > 0 {
		for i := range v {
			v[i] /= norm
		}
	}
}

// IsZero reports whether every component is zero. Zero vectors carry no
// identity signal and are skipped by the matcher.
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Marshal encodes the vector as a little-endian IEEE-754 float32 array.
// The encoding is lossless and is the only binary format this module owns.
func Marshal(v Vector) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(x))
	}
	return buf
}

// Unmarshal decodes a little-endian float32 array produced by Marshal.
func Unmarshal(b []byte) (Vector, error) {
	if len(b)%4 != 0 {
		return nil, errors.Errorf("embedding buffer length %d is not a multiple of 4", len(b))
	}
	v := make(Vector, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
