package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)

	assert.InDelta(t, 1.0, Norm(v), 1e-5)
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)
}

func TestNormalizeZeroVector(t *testing.T) {
	v := []float32{0, 0, 0}
	Normalize(v)

	assert.Equal(t, []float32{0, 0, 0}, v)
}

func TestIsNormalized(t *testing.T) {
	v := make([]float32, 512)
	for i := range v {
		v[i] = 1
	}
	assert.False(t, IsNormalized(v, 1e-5))

	Normalize(v)
	assert.True(t, IsNormalized(v, 1e-5))
}
